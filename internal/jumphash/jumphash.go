// Package jumphash implements the Jump consistent hash function from
// Lamping & Veach, "A Fast, Minimal Memory, Consistent Hash Algorithm".
package jumphash

// Hash maps key to a bucket in [0, buckets). Adding a bucket moves only
// 1/buckets of the keys. For buckets < 1 it returns 0.
func Hash(key uint64, buckets int) int {
	if buckets <= 1 {
		return 0
	}

	var b, j int64 = -1, 0
	for j < int64(buckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}
	return int(b)
}
