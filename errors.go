package reply

import "errors"

var (
	// ErrConnectionClosed is recorded as the builder's error state after
	// CloseConnection, so later sends observe a dead connection.
	ErrConnectionClosed = errors.New("reply: connection closed")

	// ErrMalformedReply reports a downstream reply that does not follow
	// the RESP framing rules.
	ErrMalformedReply = errors.New("reply: malformed downstream reply")

	// ErrNoEndpoints is returned by the client when it has nowhere to
	// route a command.
	ErrNoEndpoints = errors.New("reply: no endpoints configured")
)

// DownstreamError is an error reply received from a downstream instance,
// as opposed to a transport failure.
type DownstreamError struct {
	Message string
}

func (e *DownstreamError) Error() string {
	return "reply: downstream error: " + e.Message
}
