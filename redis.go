package reply

import (
	"math"
	"strconv"
)

// CollectionType is the logical kind of a multi-element reply. RESP3 gives
// each kind its own wire type; RESP2 collapses all of them to plain arrays.
type CollectionType int

const (
	CollectionArray CollectionType = iota
	CollectionSet
	CollectionMap
	CollectionPush
)

// ScoredMember pairs a sorted-set member with its score.
type ScoredMember struct {
	Member string
	Score  float64
}

// RedisReplyBuilder encodes every RESP reply shape across both protocol
// versions. The RESP3 flag is negotiated once per connection by the HELLO
// handshake and changes several wire encodings below without changing the
// call surface.
type RedisReplyBuilder struct {
	SinkReplyBuilder
	resp3 bool
}

// NewRedisReplyBuilder returns a builder writing RESP2 to sink.
func NewRedisReplyBuilder(sink Sink) *RedisReplyBuilder {
	return &RedisReplyBuilder{SinkReplyBuilder: newSinkReplyBuilder(sink)}
}

// SetResp3 switches between the RESP2 and RESP3 wire encodings.
func (rb *RedisReplyBuilder) SetResp3(enabled bool) {
	rb.resp3 = enabled
}

// IsResp3 reports the negotiated protocol version.
func (rb *RedisReplyBuilder) IsResp3() bool {
	return rb.resp3
}

// SendSimpleString sends +s.
func (rb *RedisReplyBuilder) SendSimpleString(s string) {
	buf := make([]byte, 0, len(s)+3)
	buf = append(buf, respSimpleMarker)
	buf = append(buf, s...)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// SendBulkString sends s length-prefixed. An empty string is a valid
// zero-length bulk string, distinct from null (see SendNull).
func (rb *RedisReplyBuilder) SendBulkString(s string) {
	buf := make([]byte, 0, len(s)+16)
	buf = appendBulkHeader(buf, len(s))
	buf = append(buf, s...)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// sendBulkBytes is SendBulkString for borrowed bytes; the value span goes
// out as part of the vectored write instead of being copied.
func (rb *RedisReplyBuilder) sendBulkBytes(p []byte) {
	h := make([]byte, 0, 16)
	h = appendBulkHeader(h, len(p))
	rb.send(h, p, crlfBytes)
}

func appendBulkHeader(buf []byte, n int) []byte {
	buf = append(buf, respBulkMarker)
	buf = strconv.AppendInt(buf, int64(n), 10)
	return append(buf, crlf...)
}

// SendLong sends :val.
func (rb *RedisReplyBuilder) SendLong(val int64) {
	buf := make([]byte, 0, 24)
	buf = append(buf, respIntMarker)
	buf = strconv.AppendInt(buf, val, 10)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// SendDouble sends a native RESP3 double, or the bulk-string form RESP2
// clients expect. Formatting is deterministic; see FormatDouble.
func (rb *RedisReplyBuilder) SendDouble(val float64) {
	s := FormatDouble(val)
	if !rb.resp3 {
		rb.SendBulkString(s)
		return
	}
	buf := make([]byte, 0, len(s)+3)
	buf = append(buf, respDoubleMarker)
	buf = append(buf, s...)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// FormatDouble renders val the way the protocol expects: the shortest
// decimal form that round-trips, with the infinities and NaN as fixed
// tokens instead of locale-dependent numeric text. The same input always
// yields the same bytes.
func FormatDouble(val float64) string {
	switch {
	case math.IsInf(val, 1):
		return "inf"
	case math.IsInf(val, -1):
		return "-inf"
	case math.IsNaN(val):
		return "nan"
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// SendNull sends the protocol's absent-value sentinel: the dedicated null
// type under RESP3, a null bulk string under RESP2.
func (rb *RedisReplyBuilder) SendNull() {
	if rb.resp3 {
		rb.SendRaw(nullStringV3)
		return
	}
	rb.SendRaw(nullBulkStringV2)
}

// SendNullArray sends *-1.
func (rb *RedisReplyBuilder) SendNullArray() {
	rb.SendRaw(nullArray)
}

// SendEmptyArray sends *0.
func (rb *RedisReplyBuilder) SendEmptyArray() {
	rb.StartArray(0)
}

// StartCollection opens a collection header only; the elements follow as
// independent sends. Compound replies should therefore run inside an
// aggregate scope so they do not cost one write per element.
//
// Under RESP2 every kind is a plain array, and a map is flattened into
// interleaved key/value elements, doubling the declared length. n counts
// logical elements: pairs for a map, members otherwise.
func (rb *RedisReplyBuilder) StartCollection(n int, ct CollectionType) {
	marker := byte(respArrayMarker)
	mult := 1
	if rb.resp3 {
		switch ct {
		case CollectionSet:
			marker = respSetMarker
		case CollectionMap:
			marker = respMapMarker
		case CollectionPush:
			marker = respPushMarker
		}
	} else if ct == CollectionMap {
		mult = 2
	}

	buf := make([]byte, 0, 16)
	buf = append(buf, marker)
	buf = strconv.AppendInt(buf, int64(n*mult), 10)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// StartArray is StartCollection(n, CollectionArray).
func (rb *RedisReplyBuilder) StartArray(n int) {
	rb.StartCollection(n, CollectionArray)
}

// SendSimpleStrArr sends the span as an array of simple strings.
func (rb *RedisReplyBuilder) SendSimpleStrArr(arr StrSpan) {
	ra := NewReplyAggregator(rb)
	defer ra.Close()

	rb.StartArray(arr.Len())
	if arr.bufs != nil {
		for _, p := range arr.bufs {
			rb.send([]byte{respSimpleMarker}, p, crlfBytes)
		}
		return
	}
	for _, s := range arr.strs {
		rb.SendSimpleString(s)
	}
}

// SendStringArr sends the span as a collection of bulk strings.
func (rb *RedisReplyBuilder) SendStringArr(arr StrSpan, ct CollectionType) {
	ra := NewReplyAggregator(rb)
	defer ra.Close()

	rb.StartCollection(arr.Len(), ct)
	if arr.bufs != nil {
		for _, p := range arr.bufs {
			rb.sendBulkBytes(p)
		}
		return
	}
	for _, s := range arr.strs {
		rb.SendBulkString(s)
	}
}

// SendScoredArray encodes sorted-set range results. Without scores it is a
// flat array of members. With scores, RESP2 interleaves member and score
// while RESP3 sends one 2-element sub-array per pair.
func (rb *RedisReplyBuilder) SendScoredArray(members []ScoredMember, withScores bool) {
	ra := NewReplyAggregator(rb)
	defer ra.Close()

	switch {
	case !withScores:
		rb.StartArray(len(members))
		for _, m := range members {
			rb.SendBulkString(m.Member)
		}
	case rb.resp3:
		rb.StartArray(len(members))
		for _, m := range members {
			rb.StartArray(2)
			rb.SendBulkString(m.Member)
			rb.SendDouble(m.Score)
		}
	default:
		rb.StartArray(len(members) * 2)
		for _, m := range members {
			rb.SendBulkString(m.Member)
			rb.SendDouble(m.Score)
		}
	}
}

// SendMGetResponse emits one array entry per requested key, preserving the
// request order; misses become nulls.
func (rb *RedisReplyBuilder) SendMGetResponse(resp []OptResp) {
	ra := NewReplyAggregator(rb)
	defer ra.Close()

	rb.StartArray(len(resp))
	for _, r := range resp {
		if r == nil {
			rb.SendNull()
			continue
		}
		rb.sendBulkBytes(r.Value)
	}
}

// SendStored sends the Redis success status for a store command.
func (rb *RedisReplyBuilder) SendStored() {
	rb.SendSimpleString("OK")
}

// SendSetSkipped reports a conditional SET that did not run (NX/XX miss).
func (rb *RedisReplyBuilder) SendSetSkipped() {
	rb.SendNull()
}

// SendError sends -<TYPE> <msg> and bumps the error counter for the
// resolved type, or for the message itself when no type is given.
func (rb *RedisReplyBuilder) SendError(msg string, errType string) {
	key := errType
	typ := errType
	if typ == "" {
		typ = TypeGenericError
		key = msg
	}
	rb.countError(key, msg)

	buf := make([]byte, 0, len(typ)+len(msg)+4)
	buf = append(buf, respErrorMarker)
	buf = append(buf, typ...)
	buf = append(buf, ' ')
	buf = append(buf, msg...)
	buf = append(buf, crlf...)
	rb.send(buf)
}

// SendProtocolError reports malformed input detected by the command layer.
// The caller is expected to close the connection afterwards.
func (rb *RedisReplyBuilder) SendProtocolError(msg string) {
	rb.SendError("Protocol error: "+msg, TypeGenericError)
}
