package reply

import (
	"bufio"
	"io"
	"math"
	"strconv"
)

// ReplyKind classifies a decoded downstream reply.
type ReplyKind int

const (
	ReplyString ReplyKind = iota // simple or bulk string
	ReplyError
	ReplyInteger
	ReplyDouble
	ReplyNull
	ReplyArray // array, set, push, or a map flattened to key/value pairs
)

// Reply is one decoded RESP value read back from a downstream instance.
type Reply struct {
	Kind   ReplyKind
	Str    string
	Int    int64
	Double float64
	Elems  []Reply
}

// Err returns the reply's error when it is an error reply, nil otherwise.
func (r Reply) Err() error {
	if r.Kind == ReplyError {
		return &DownstreamError{Message: r.Str}
	}
	return nil
}

// ReadReply decodes a single RESP2/RESP3 value from r, including nested
// collections. Map replies come back as a flat array of 2N elements in
// key/value order.
func ReadReply(r *bufio.Reader) (Reply, error) {
	line, err := readLine(r)
	if err != nil {
		return Reply{}, err
	}
	if len(line) == 0 {
		return Reply{}, ErrMalformedReply
	}

	marker, rest := line[0], line[1:]
	switch marker {
	case respSimpleMarker:
		return Reply{Kind: ReplyString, Str: string(rest)}, nil

	case respErrorMarker:
		return Reply{Kind: ReplyError, Str: string(rest)}, nil

	case respIntMarker:
		n, err := strconv.ParseInt(string(rest), 10, 64)
		if err != nil {
			return Reply{}, ErrMalformedReply
		}
		return Reply{Kind: ReplyInteger, Int: n}, nil

	case respDoubleMarker:
		d, err := parseDouble(string(rest))
		if err != nil {
			return Reply{}, err
		}
		return Reply{Kind: ReplyDouble, Double: d}, nil

	case respNullMarker:
		return Reply{Kind: ReplyNull}, nil

	case respBulkMarker:
		n, err := strconv.ParseInt(string(rest), 10, 64)
		if err != nil || n < -1 {
			return Reply{}, ErrMalformedReply
		}
		if n == -1 {
			return Reply{Kind: ReplyNull}, nil
		}
		return readBulkBody(r, int(n))

	case respArrayMarker, respSetMarker, respPushMarker:
		return readElements(r, string(rest), 1)

	case respMapMarker:
		return readElements(r, string(rest), 2)
	}
	return Reply{}, ErrMalformedReply
}

func readBulkBody(r *bufio.Reader, n int) (Reply, error) {
	body := make([]byte, n+2)
	if _, err := io.ReadFull(r, body); err != nil {
		return Reply{}, err
	}
	if body[n] != '\r' || body[n+1] != '\n' {
		return Reply{}, ErrMalformedReply
	}
	return Reply{Kind: ReplyString, Str: string(body[:n])}, nil
}

func readElements(r *bufio.Reader, header string, mult int) (Reply, error) {
	n, err := strconv.ParseInt(header, 10, 32)
	if err != nil || n < -1 {
		return Reply{}, ErrMalformedReply
	}
	if n == -1 {
		return Reply{Kind: ReplyNull}, nil
	}

	elems := make([]Reply, 0, int(n)*mult)
	for i := 0; i < int(n)*mult; i++ {
		e, err := ReadReply(r)
		if err != nil {
			return Reply{}, err
		}
		elems = append(elems, e)
	}
	return Reply{Kind: ReplyArray, Elems: elems}, nil
}

// parseDouble accepts the protocol's sentinel tokens alongside numeric
// text, mirroring FormatDouble.
func parseDouble(s string) (float64, error) {
	switch s {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrMalformedReply
	}
	return d, nil
}

// readLine reads one CRLF-terminated line and strips the terminator.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrMalformedReply
	}
	return line[:len(line)-2], nil
}
