package reply

// IOStats is a point-in-time copy of a builder's counters, safe to hand to
// a monitoring goroutine while the builder keeps serving.
type IOStats struct {
	WriteCount uint64
	WriteBytes uint64
	Errors     map[string]uint64
}

// SnapshotStats copies b's counters. Must be called from the goroutine that
// owns the builder; builders are unlocked by design.
func SnapshotStats(b ReplyBuilder) IOStats {
	src := b.ErrCount()
	errs := make(map[string]uint64, len(src))
	for k, v := range src {
		errs[k] = v
	}
	return IOStats{
		WriteCount: b.IOWriteCount(),
		WriteBytes: b.IOWriteBytes(),
		Errors:     errs,
	}
}
