package reply

import "github.com/zeebo/xxh3"

// Recorder captures outbound replies for observability. What reaches it is
// filtered by the builder's ReplyMode; recording never gates sending.
// Recorders are called from the connection's owning goroutine only.
type Recorder interface {
	// RecordReply receives the full payload of one send call.
	RecordReply(payload []byte)

	// RecordError receives the resolved counter key and message of an
	// error reply.
	RecordError(errType, msg string)
}

// RecordedReply is one distinct captured payload and how often it was seen.
type RecordedReply struct {
	Payload []byte
	Count   uint64
}

// DedupRecorder keeps one sample per distinct payload, keyed by its xxh3
// hash, and counts repeats. A hot loop replying the same bytes costs one
// entry instead of unbounded capture growth.
type DedupRecorder struct {
	replies map[uint64]*RecordedReply
	errors  map[string]uint64
}

// NewDedupRecorder returns an empty recorder.
func NewDedupRecorder() *DedupRecorder {
	return &DedupRecorder{
		replies: make(map[uint64]*RecordedReply),
		errors:  make(map[string]uint64),
	}
}

func (r *DedupRecorder) RecordReply(payload []byte) {
	h := xxh3.Hash(payload)
	if e, ok := r.replies[h]; ok {
		e.Count++
		return
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	r.replies[h] = &RecordedReply{Payload: cp, Count: 1}
}

func (r *DedupRecorder) RecordError(errType, msg string) {
	r.errors[errType]++
}

// Replies returns the distinct captured payloads, in no particular order.
func (r *DedupRecorder) Replies() []*RecordedReply {
	out := make([]*RecordedReply, 0, len(r.replies))
	for _, e := range r.replies {
		out = append(out, e)
	}
	return out
}

// Errors returns recorded error counts keyed by error type.
func (r *DedupRecorder) Errors() map[string]uint64 {
	return r.errors
}

// Reset drops everything captured so far.
func (r *DedupRecorder) Reset() {
	clear(r.replies)
	clear(r.errors)
}
