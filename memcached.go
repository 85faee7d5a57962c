package reply

import "strconv"

// MCReplyBuilder encodes the memcached ASCII reply vocabulary.
//
// With the noreply flag set, every reply on this builder is a silent no-op:
// no bytes are buffered or written and no counters move, matching the
// protocol's promise that the client will read nothing for that command.
type MCReplyBuilder struct {
	SinkReplyBuilder
	noreply bool
}

// NewMCReplyBuilder returns a memcached builder writing to sink.
func NewMCReplyBuilder(sink Sink) *MCReplyBuilder {
	return &MCReplyBuilder{SinkReplyBuilder: newSinkReplyBuilder(sink)}
}

// SetNoreply toggles reply suppression for the current command.
func (mb *MCReplyBuilder) SetNoreply(enabled bool) {
	mb.noreply = enabled
}

// Noreply reports whether replies are currently suppressed.
func (mb *MCReplyBuilder) Noreply() bool {
	return mb.noreply
}

// SendSimpleString sends s as one reply line.
func (mb *MCReplyBuilder) SendSimpleString(s string) {
	if mb.noreply {
		return
	}
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, s...)
	buf = append(buf, crlf...)
	mb.send(buf)
}

// SendStored acknowledges a successful store.
func (mb *MCReplyBuilder) SendStored() {
	mb.SendSimpleString(mcStored)
}

// SendSetSkipped reports a store the server declined (add on an existing
// key, replace on a missing one).
func (mb *MCReplyBuilder) SendSetSkipped() {
	mb.SendSimpleString(mcNotStored)
}

// SendNotFound reports a miss for commands that require the item to exist.
func (mb *MCReplyBuilder) SendNotFound() {
	mb.SendSimpleString(mcNotFound)
}

// SendLong sends the decimal reply of the incr/decr commands.
func (mb *MCReplyBuilder) SendLong(val int64) {
	if mb.noreply {
		return
	}
	buf := make([]byte, 0, 24)
	buf = strconv.AppendInt(buf, val, 10)
	buf = append(buf, crlf...)
	mb.send(buf)
}

// SendError reports a server-side failure as SERVER_ERROR <msg>, or the
// bare ERROR line when there is no message.
func (mb *MCReplyBuilder) SendError(msg string, errType string) {
	if mb.noreply {
		return
	}
	key := errType
	if key == "" {
		key = msg
	}
	mb.countError(key, msg)

	if msg == "" {
		mb.SendSimpleString(mcError)
		return
	}
	mb.SendSimpleString(mcServerError + msg)
}

// SendClientError reports a malformed request as CLIENT_ERROR <msg>.
// Client errors share the error counters with server errors.
func (mb *MCReplyBuilder) SendClientError(msg string) {
	if mb.noreply {
		return
	}
	mb.countError(mcClientErrorKey, msg)
	mb.SendSimpleString(mcClientError + msg)
}

// SendProtocolError reports malformed input; memcached frames it as a
// client error.
func (mb *MCReplyBuilder) SendProtocolError(msg string) {
	mb.SendClientError(msg)
}

// SendMGetResponse writes one VALUE block per hit, in request order, and a
// single END line. Misses contribute nothing; the protocol has no per-key
// miss marker. The CAS field appears only when the fetch populated a
// version.
func (mb *MCReplyBuilder) SendMGetResponse(resp []OptResp) {
	if mb.noreply {
		return
	}
	ra := NewReplyAggregator(mb)
	defer ra.Close()

	for _, r := range resp {
		if r == nil {
			continue
		}
		h := make([]byte, 0, len(r.Key)+48)
		h = append(h, mcValuePrefix...)
		h = append(h, r.Key...)
		h = append(h, ' ')
		h = strconv.AppendUint(h, uint64(r.Flags), 10)
		h = append(h, ' ')
		h = strconv.AppendInt(h, int64(len(r.Value)), 10)
		if r.Version != 0 {
			h = append(h, ' ')
			h = strconv.AppendUint(h, r.Version, 10)
		}
		h = append(h, crlf...)
		mb.send(h, r.Value, crlfBytes)
	}
	mb.SendSimpleString(mcEnd)
}
