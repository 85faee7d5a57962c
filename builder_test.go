package reply

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchModeHoldsBytesUntilFlush(t *testing.T) {
	rb, sink := newTestRedis(false)

	rb.SetBatchMode(true)
	rb.SendSimpleString("OK")
	rb.SendLong(1)
	rb.SendLong(2)

	require.Empty(t, sink.String())
	require.Zero(t, rb.IOWriteCount())

	rb.FlushBatch()

	require.Equal(t, "+OK\r\n:1\r\n:2\r\n", sink.String())
	require.Equal(t, 1, sink.writes, "a flush must be one write")
	require.Equal(t, uint64(1), rb.IOWriteCount())
	require.Equal(t, uint64(len(sink.String())), rb.IOWriteBytes())
}

func TestDisablingBatchModeDoesNotFlush(t *testing.T) {
	rb, sink := newTestRedis(false)

	rb.SetBatchMode(true)
	rb.SendSimpleString("OK")
	rb.SetBatchMode(false)

	require.Empty(t, sink.String())

	rb.FlushBatch()
	require.Equal(t, "+OK\r\n", sink.String())
}

func TestAggregatorFlushesOnceOnOutermostClose(t *testing.T) {
	rb, sink := newTestRedis(false)

	outer := NewReplyAggregator(rb)
	rb.SendSimpleString("a")

	inner := NewReplyAggregator(rb)
	rb.SendSimpleString("b")
	inner.Close()

	// Inner teardown must not flush bytes the outer scope still owns.
	require.Empty(t, sink.String())
	require.True(t, rb.Aggregating())

	rb.SendSimpleString("c")
	outer.Close()

	require.Equal(t, "+a\r\n+b\r\n+c\r\n", sink.String())
	require.Equal(t, 1, sink.writes)
}

func TestWithAggregate(t *testing.T) {
	rb, sink := newTestRedis(false)

	WithAggregate(rb, func() {
		rb.SendLong(1)
		WithAggregate(rb, func() {
			rb.SendLong(2)
		})
		require.Empty(t, sink.String())
	})

	require.Equal(t, ":1\r\n:2\r\n", sink.String())
	require.Equal(t, uint64(1), rb.IOWriteCount())
}

func TestStopAggregateDefersToBatchMode(t *testing.T) {
	rb, sink := newTestRedis(false)

	rb.SetBatchMode(true)
	rb.StartAggregate()
	rb.SendSimpleString("OK")
	rb.StopAggregate()

	// Batch mode still owns the buffer.
	require.Empty(t, sink.String())

	rb.FlushBatch()
	require.Equal(t, "+OK\r\n", sink.String())
}

func TestSinkErrorIsStickyAndSendsContinue(t *testing.T) {
	sink := &failSink{err: errSinkBroken}
	rb := NewRedisReplyBuilder(sink)

	rb.SendSimpleString("OK")
	require.ErrorIs(t, rb.GetError(), errSinkBroken)

	// Best effort: later sends still attempt the write.
	rb.SendLong(1)
	require.Equal(t, uint64(2), rb.IOWriteCount())
	require.ErrorIs(t, rb.GetError(), errSinkBroken)
}

func TestFailedFlushClearsBuffer(t *testing.T) {
	sink := &failSink{err: errSinkBroken}
	rb := NewRedisReplyBuilder(sink)

	rb.SetBatchMode(true)
	rb.SendSimpleString("OK")
	rb.FlushBatch()

	require.ErrorIs(t, rb.GetError(), errSinkBroken)
	require.Equal(t, uint64(1), rb.IOWriteCount())

	// The buffer was dropped with the failed flush.
	rb.FlushBatch()
	require.Equal(t, uint64(1), rb.IOWriteCount())
}

func TestExpectReply(t *testing.T) {
	rb, _ := newTestRedis(false)

	require.True(t, rb.HasReplied())

	rb.ExpectReply()
	require.False(t, rb.HasReplied())

	rb.SendSimpleString("OK")
	require.True(t, rb.HasReplied())

	// Buffered sends count as replies too.
	rb.SetBatchMode(true)
	rb.ExpectReply()
	rb.SendLong(1)
	require.True(t, rb.HasReplied())
}

func TestResetIOStats(t *testing.T) {
	rb, sink := newTestRedis(false)

	rb.SendSimpleString("OK")
	rb.SendError("boom", TypeGenericError)

	require.NotZero(t, rb.IOWriteCount())
	require.NotZero(t, rb.IOWriteBytes())
	require.NotEmpty(t, rb.ErrCount())

	sent := sink.String()
	rb.ResetIOStats()

	require.Zero(t, rb.IOWriteCount())
	require.Zero(t, rb.IOWriteBytes())
	require.Empty(t, rb.ErrCount())
	require.Equal(t, sent, sink.String(), "reset must not touch sent bytes")
}

func TestCloseConnection(t *testing.T) {
	sink := &closeSink{}
	rb := NewRedisReplyBuilder(sink)

	rb.CloseConnection()

	require.True(t, sink.closed)
	require.ErrorIs(t, rb.GetError(), ErrConnectionClosed)
}

func TestCloseConnectionKeepsEarlierError(t *testing.T) {
	rb := NewRedisReplyBuilder(&failSink{err: errSinkBroken})

	rb.SendSimpleString("OK")
	rb.CloseConnection()

	require.ErrorIs(t, rb.GetError(), errSinkBroken)
}

func TestSendStatus(t *testing.T) {
	rb, sink := newTestRedis(false)

	SendStatus(rb, StatusOK)
	require.Equal(t, "+OK\r\n", sink.String())
	require.Empty(t, rb.ErrCount())

	sink.Reset()
	SendStatus(rb, StatusWrongType)
	require.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n", sink.String())
	require.Equal(t, uint64(1), rb.ErrCount()[TypeWrongTypeError])
}

func TestSendErrorReply(t *testing.T) {
	rb, sink := newTestRedis(false)

	SendErrorReply(rb, ErrorReply{Message: "quota exceeded", Type: "QUOTA"})

	require.Equal(t, "-QUOTA quota exceeded\r\n", sink.String())
	require.Equal(t, uint64(1), rb.ErrCount()["QUOTA"])
}

func TestSendOK(t *testing.T) {
	mb, sink := newTestMC()
	SendOK(mb)
	require.Equal(t, "OK\r\n", sink.String())
}

func TestRecorderModes(t *testing.T) {
	tests := []struct {
		name        string
		mode        ReplyMode
		wantReplies int
		wantErrors  int
	}{
		{name: "none records nothing", mode: ReplyModeNone, wantReplies: 0, wantErrors: 0},
		{name: "only errors", mode: ReplyModeOnlyErr, wantReplies: 0, wantErrors: 1},
		{name: "full records both", mode: ReplyModeFull, wantReplies: 2, wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb, _ := newTestRedis(false)
			rec := NewDedupRecorder()
			rb.SetRecorder(rec)
			rb.SetReplyMode(tt.mode)

			rb.SendSimpleString("OK")
			rb.SendError("boom", TypeGenericError)

			require.Len(t, rec.Replies(), tt.wantReplies)
			require.Len(t, rec.Errors(), tt.wantErrors)
		})
	}
}

func TestSendRawVec(t *testing.T) {
	rb, sink := newTestRedis(false)

	rb.SendRawVec([]byte("+OK"), []byte("\r\n"))

	require.Equal(t, "+OK\r\n", sink.String())
	require.Equal(t, uint64(1), rb.IOWriteCount())
	require.Equal(t, uint64(5), rb.IOWriteBytes())
}

func TestSnapshotStats(t *testing.T) {
	rb, _ := newTestRedis(false)

	rb.SendLong(7)
	rb.SendError("boom", "")

	stats := SnapshotStats(rb)
	require.Equal(t, uint64(2), stats.WriteCount)
	require.Equal(t, uint64(1), stats.Errors["boom"])

	// The snapshot is detached from the live counters.
	rb.ResetIOStats()
	require.Equal(t, uint64(1), stats.Errors["boom"])
}
