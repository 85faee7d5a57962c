package reply

import (
	"io"
	"net"
)

// ReplyBuilder is the protocol-agnostic capability set the dispatcher holds
// per connection. The concrete encoder (Redis or memcached) is picked once
// at connection setup, after protocol negotiation, and held through this
// interface for the rest of the connection.
type ReplyBuilder interface {
	SendError(msg string, errType string)
	SendStored()
	SendSetSkipped()
	SendMGetResponse(resp []OptResp)
	SendLong(val int64)
	SendSimpleString(s string)
	SendProtocolError(msg string)

	// Shared mechanics, promoted from the embedded core.
	SendRaw(s string)
	SendRawVec(bufs ...[]byte)
	SetBatchMode(enabled bool)
	FlushBatch()
	StartAggregate()
	StopAggregate()
	Aggregating() bool
	ExpectReply()
	HasReplied() bool
	CloseConnection()
	GetError() error
	SetReplyMode(mode ReplyMode)
	SetRecorder(r Recorder)
	IOWriteCount() uint64
	IOWriteBytes() uint64
	ErrCount() map[string]uint64
	ResetIOStats()
}

// SinkReplyBuilder is the shared core under both protocol encoders: the
// single choke point for every byte sent to a client. It owns the
// accumulation buffer used by batch and aggregate mode, the sticky sink
// error, and the per-connection counters.
//
// A builder is bound to exactly one connection's sink and must not be
// copied: two copies would buffer one ordered stream independently and
// corrupt framing. It is driven synchronously by the connection's owning
// goroutine and holds no locks.
type SinkReplyBuilder struct {
	sink Sink
	err  error

	// Accumulation buffer shared by batch and aggregate mode. Bytes only
	// ever leave through FlushBatch, so a flush groups writes without
	// reordering them.
	batch []byte

	shouldBatch     bool
	shouldAggregate bool
	hasReplied      bool

	writeCnt   uint64
	writeBytes uint64
	errCount   map[string]uint64

	mode     ReplyMode
	recorder Recorder
}

func newSinkReplyBuilder(sink Sink) SinkReplyBuilder {
	return SinkReplyBuilder{
		sink:       sink,
		hasReplied: true,
		errCount:   make(map[string]uint64),
	}
}

// SendRaw writes s as-is, without any protocol formatting.
func (b *SinkReplyBuilder) SendRaw(s string) {
	b.send([]byte(s))
}

// SendRawVec writes the byte spans back to back, without formatting. On a
// net.Conn sink the spans go out in a single vectored write.
func (b *SinkReplyBuilder) SendRawVec(bufs ...[]byte) {
	b.send(bufs...)
}

// send is the single entry point for outgoing bytes: it either appends to
// the accumulation buffer or issues an immediate write, depending on the
// current mode flags.
func (b *SinkReplyBuilder) send(bufs ...[]byte) {
	b.hasReplied = true

	if b.recorder != nil && b.mode == ReplyModeFull {
		b.recorder.RecordReply(concat(bufs))
	}

	if b.shouldBatch || b.shouldAggregate {
		for _, p := range bufs {
			b.batch = append(b.batch, p...)
		}
		return
	}
	b.write(bufs...)
}

// write issues one write operation to the sink. A send that fails leaves
// the error observable via GetError; later sends still attempt to write,
// the caller decides when to tear the connection down.
func (b *SinkReplyBuilder) write(bufs ...[]byte) {
	var total int
	for _, p := range bufs {
		total += len(p)
	}
	if total == 0 {
		return
	}

	b.writeCnt++
	b.writeBytes += uint64(total)

	v := make(net.Buffers, 0, len(bufs))
	for _, p := range bufs {
		if len(p) > 0 {
			v = append(v, p)
		}
	}
	if _, err := v.WriteTo(b.sink); err != nil && b.err == nil {
		b.err = err
	}
}

// SetBatchMode toggles session-level batching. The connection state machine
// enables it when more pipelined requests are already queued, so many small
// replies collapse into few writes. Turning it off does not flush; call
// FlushBatch.
func (b *SinkReplyBuilder) SetBatchMode(enabled bool) {
	b.shouldBatch = enabled
}

// FlushBatch writes the accumulation buffer in one write and clears it,
// regardless of the current mode flags. The buffer is cleared even when the
// write fails: once the sink errors the connection is going away, and
// retrying could replay a partial frame.
func (b *SinkReplyBuilder) FlushBatch() {
	if len(b.batch) == 0 {
		return
	}
	b.write(b.batch)
	b.batch = b.batch[:0]
}

// StartAggregate begins operation-scoped buffering, normally entered via
// NewReplyAggregator rather than directly.
func (b *SinkReplyBuilder) StartAggregate() {
	b.shouldAggregate = true
}

// StopAggregate ends operation-scoped buffering and flushes, unless session
// batching is still holding bytes back for a later FlushBatch.
func (b *SinkReplyBuilder) StopAggregate() {
	b.shouldAggregate = false
	if !b.shouldBatch {
		b.FlushBatch()
	}
}

// Aggregating reports whether operation-scoped buffering is active.
func (b *SinkReplyBuilder) Aggregating() bool {
	return b.shouldAggregate
}

// ExpectReply arms the reply-tracking flag before a command is dispatched,
// so the dispatcher can tell "command sent no reply" from "reply already
// sent". The first subsequent send clears it.
func (b *SinkReplyBuilder) ExpectReply() {
	b.hasReplied = false
}

// HasReplied reports whether any send happened since ExpectReply.
func (b *SinkReplyBuilder) HasReplied() bool {
	return b.hasReplied
}

// CloseConnection requests teardown of the underlying sink, for
// protocol-level termination commands such as QUIT.
func (b *SinkReplyBuilder) CloseConnection() {
	if b.err == nil {
		b.err = ErrConnectionClosed
	}
	if c, ok := b.sink.(io.Closer); ok {
		_ = c.Close()
	}
}

// GetError returns the sticky transport error state. It is never cleared by
// the builder itself.
func (b *SinkReplyBuilder) GetError() error {
	return b.err
}

// SetReplyMode selects which replies the recorder captures. It never gates
// whether a reply is sent.
func (b *SinkReplyBuilder) SetReplyMode(mode ReplyMode) {
	b.mode = mode
}

// SetRecorder installs a reply capture hook, filtered by the reply mode.
func (b *SinkReplyBuilder) SetRecorder(r Recorder) {
	b.recorder = r
}

// IOWriteCount returns the number of write operations issued to the sink
// since the last ResetIOStats.
func (b *SinkReplyBuilder) IOWriteCount() uint64 {
	return b.writeCnt
}

// IOWriteBytes returns the number of bytes written to the sink since the
// last ResetIOStats.
func (b *SinkReplyBuilder) IOWriteBytes() uint64 {
	return b.writeBytes
}

// ErrCount returns occurrence counts of error replies keyed by resolved
// error type. The returned map is the live one; treat it as read-only.
func (b *SinkReplyBuilder) ErrCount() map[string]uint64 {
	return b.errCount
}

// ResetIOStats zeroes the write counters and clears the error counts.
// Already-sent bytes are unaffected.
func (b *SinkReplyBuilder) ResetIOStats() {
	b.writeCnt = 0
	b.writeBytes = 0
	clear(b.errCount)
}

// countError bumps the error counter under key and forwards the error to
// the recorder when the reply mode admits errors.
func (b *SinkReplyBuilder) countError(key, msg string) {
	b.errCount[key]++
	if b.recorder != nil && b.mode >= ReplyModeOnlyErr {
		b.recorder.RecordError(key, msg)
	}
}

func concat(bufs [][]byte) []byte {
	var total int
	for _, p := range bufs {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range bufs {
		out = append(out, p...)
	}
	return out
}

// ReplyAggregator scopes aggregate mode around one compound reply. If the
// builder is already aggregating when the scope opens, both ends are
// no-ops, so an inner scope never flushes bytes an outer scope is still
// assembling (as in a MULTI/EXEC reply).
type ReplyAggregator struct {
	b      ReplyBuilder
	nested bool
}

// NewReplyAggregator opens an aggregate scope on b. Callers must Close it.
func NewReplyAggregator(b ReplyBuilder) ReplyAggregator {
	ra := ReplyAggregator{b: b, nested: b.Aggregating()}
	if !ra.nested {
		b.StartAggregate()
	}
	return ra
}

// Close ends the scope, flushing if this was the outermost one.
func (ra ReplyAggregator) Close() {
	if !ra.nested {
		ra.b.StopAggregate()
	}
}

// WithAggregate runs fn inside an aggregate scope.
func WithAggregate(b ReplyBuilder, fn func()) {
	ra := NewReplyAggregator(b)
	defer ra.Close()
	fn()
}

// SendOK sends the protocol's canonical success status.
func SendOK(b ReplyBuilder) {
	b.SendSimpleString("OK")
}

// SendErrorReply encodes a structured error through b's protocol form.
func SendErrorReply(b ReplyBuilder, e ErrorReply) {
	b.SendError(e.Message, e.Type)
}

// SendStatus sends the canonical reply for status: OK as a simple string,
// everything else through the protocol's error form.
func SendStatus(b ReplyBuilder, status OpStatus) {
	if status == StatusOK {
		b.SendSimpleString("OK")
		return
	}
	e := status.errorReply()
	b.SendError(e.Message, e.Type)
}
