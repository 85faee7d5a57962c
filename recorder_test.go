package reply

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupRecorderCountsRepeats(t *testing.T) {
	rec := NewDedupRecorder()

	rec.RecordReply([]byte("+OK\r\n"))
	rec.RecordReply([]byte("+OK\r\n"))
	rec.RecordReply([]byte(":1\r\n"))

	replies := rec.Replies()
	require.Len(t, replies, 2)

	counts := make(map[string]uint64)
	for _, r := range replies {
		counts[string(r.Payload)] = r.Count
	}
	require.Equal(t, uint64(2), counts["+OK\r\n"])
	require.Equal(t, uint64(1), counts[":1\r\n"])
}

func TestDedupRecorderCopiesPayload(t *testing.T) {
	rec := NewDedupRecorder()

	payload := []byte("+OK\r\n")
	rec.RecordReply(payload)
	payload[0] = 'X'

	require.Equal(t, "+OK\r\n", string(rec.Replies()[0].Payload))
}

func TestDedupRecorderErrors(t *testing.T) {
	rec := NewDedupRecorder()

	rec.RecordError("ERR", "boom")
	rec.RecordError("ERR", "other boom")
	rec.RecordError("WRONGTYPE", "bad op")

	require.Equal(t, uint64(2), rec.Errors()["ERR"])
	require.Equal(t, uint64(1), rec.Errors()["WRONGTYPE"])
}

func TestDedupRecorderReset(t *testing.T) {
	rec := NewDedupRecorder()

	rec.RecordReply([]byte("+OK\r\n"))
	rec.RecordError("ERR", "boom")
	rec.Reset()

	require.Empty(t, rec.Replies())
	require.Empty(t, rec.Errors())
}

func TestRecorderSeesBufferedSends(t *testing.T) {
	rb, _ := newTestRedis(false)
	rec := NewDedupRecorder()
	rb.SetRecorder(rec)
	rb.SetReplyMode(ReplyModeFull)

	// Recording happens at send time, not at flush time.
	rb.SetBatchMode(true)
	rb.SendLong(1)

	require.Len(t, rec.Replies(), 1)
	require.Equal(t, ":1\r\n", string(rec.Replies()[0].Payload))
}
