package reply

import (
	"strconv"
	"strings"
)

// ReqSerializer encodes outbound command invocations as RESP multi-bulk
// arrays, for the occasions this process issues commands toward another
// instance. It surfaces the sink's error state the same way the builders
// do: sticky, observable, never auto-cleared.
type ReqSerializer struct {
	sink Sink
	err  error
}

// NewReqSerializer returns a serializer writing to sink.
func NewReqSerializer(sink Sink) *ReqSerializer {
	return &ReqSerializer{sink: sink}
}

// SendCommand tokenizes cmd on whitespace and sends one bulk string per
// token. Callers whose arguments may themselves contain spaces must
// pre-split and use SendCommandArgs instead.
func (rs *ReqSerializer) SendCommand(cmd string) {
	rs.SendCommandArgs(strings.Fields(cmd))
}

// SendCommandArgs sends args as a RESP array of bulk strings, exactly one
// element per argument.
func (rs *ReqSerializer) SendCommandArgs(args []string) {
	size := 16
	for _, a := range args {
		size += len(a) + 16
	}

	buf := make([]byte, 0, size)
	buf = append(buf, respArrayMarker)
	buf = strconv.AppendInt(buf, int64(len(args)), 10)
	buf = append(buf, crlf...)
	for _, a := range args {
		buf = append(buf, respBulkMarker)
		buf = strconv.AppendInt(buf, int64(len(a)), 10)
		buf = append(buf, crlf...)
		buf = append(buf, a...)
		buf = append(buf, crlf...)
	}

	if _, err := rs.sink.Write(buf); err != nil && rs.err == nil {
		rs.err = err
	}
}

// Err returns the sticky sink error state.
func (rs *ReqSerializer) Err() error {
	return rs.err
}
