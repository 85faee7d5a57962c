package reply

// ResponseValue is one key/value hit of a multi-key fetch. It is produced
// by the storage engine, consumed once by a send call, and never retained
// by the builder.
type ResponseValue struct {
	Key   string
	Value []byte

	// Version is the CAS version for the memcached encoding. Zero means
	// the client did not ask for it and the field is omitted on the wire.
	Version uint64

	// Flags is the opaque client-flags field of the memcached encoding.
	Flags uint32
}

// OptResp is a per-key result of a multi-get: nil marks a miss. A slice of
// them represents the whole reply, in the original key order.
type OptResp = *ResponseValue

// ReplyMode filters what a Recorder captures. It never gates sending.
type ReplyMode int8

const (
	// ReplyModeNone records nothing.
	ReplyModeNone ReplyMode = iota
	// ReplyModeOnlyErr records error replies only.
	ReplyModeOnlyErr
	// ReplyModeFull records every reply.
	ReplyModeFull
)

// ErrorReply is a structured application error handed down by the command
// layer. Type selects the protocol error token and the counter key; when
// empty, the message itself keys the counter.
type ErrorReply struct {
	Message string
	Type    string
}

func (e ErrorReply) Error() string {
	return e.Message
}

// OpStatus is the result code of an executed operation, as produced by the
// storage engine.
type OpStatus int

const (
	StatusOK OpStatus = iota
	StatusKeyNotFound
	StatusWrongType
	StatusOutOfRange
	StatusInvalidValue
	StatusOutOfMemory
	StatusTimedOut
)

// errorReply resolves a non-OK status to its canonical message/type pair.
func (s OpStatus) errorReply() ErrorReply {
	switch s {
	case StatusKeyNotFound:
		return ErrorReply{Message: "no such key", Type: TypeGenericError}
	case StatusWrongType:
		return ErrorReply{
			Message: "Operation against a key holding the wrong kind of value",
			Type:    TypeWrongTypeError,
		}
	case StatusOutOfRange:
		return ErrorReply{Message: "index out of range", Type: TypeGenericError}
	case StatusInvalidValue:
		return ErrorReply{Message: "value is not a valid number", Type: TypeGenericError}
	case StatusOutOfMemory:
		return ErrorReply{Message: "out of memory", Type: TypeOOMError}
	case StatusTimedOut:
		return ErrorReply{Message: "request timed out", Type: TypeGenericError}
	default:
		return ErrorReply{Message: "internal error", Type: TypeGenericError}
	}
}

// StrSpan is a read-only view over either an owned []string or a borrowed
// [][]byte, so callers whose data already outlives the call do not copy it
// into the other representation just to reply with it.
type StrSpan struct {
	strs []string
	bufs [][]byte
}

// StringSpan wraps an owned string slice.
func StringSpan(ss []string) StrSpan {
	return StrSpan{strs: ss}
}

// BytesSpan wraps a borrowed byte-slice sequence.
func BytesSpan(bb [][]byte) StrSpan {
	return StrSpan{bufs: bb}
}

// Len returns the number of elements in the span.
func (s StrSpan) Len() int {
	if s.bufs != nil {
		return len(s.bufs)
	}
	return len(s.strs)
}
