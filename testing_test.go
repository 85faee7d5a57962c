package reply

import (
	"bufio"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// captureSink records everything written to it and counts Write calls.
type captureSink struct {
	writes int
	buf    strings.Builder
}

func (s *captureSink) Write(p []byte) (int, error) {
	s.writes++
	return s.buf.Write(p)
}

func (s *captureSink) String() string {
	return s.buf.String()
}

func (s *captureSink) Reset() {
	s.writes = 0
	s.buf.Reset()
}

// failSink fails every write with a fixed error.
type failSink struct {
	err error
}

func (s *failSink) Write(p []byte) (int, error) {
	return 0, s.err
}

// closeSink records whether CloseConnection reached it.
type closeSink struct {
	captureSink
	closed bool
}

func (s *closeSink) Close() error {
	s.closed = true
	return nil
}

func newTestRedis(resp3 bool) (*RedisReplyBuilder, *captureSink) {
	sink := &captureSink{}
	rb := NewRedisReplyBuilder(sink)
	rb.SetResp3(resp3)
	return rb, sink
}

func newTestMC() (*MCReplyBuilder, *captureSink) {
	sink := &captureSink{}
	return NewMCReplyBuilder(sink), sink
}

var errSinkBroken = errors.New("sink broken")

// createListener starts a real TCP listener serving handler per connection.
func createListener(t testing.TB, handler func(conn net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	// Give the server time to start
	time.Sleep(10 * time.Millisecond)

	return listener.Addr().String()
}

// respResponder answers each inbound multi-bulk command with the next
// canned reply, then lets the connection idle.
func respResponder(replies ...string) func(conn net.Conn) {
	return func(conn net.Conn) {
		r := bufio.NewReader(conn)
		for _, rep := range replies {
			if err := skipCommandFrame(r); err != nil {
				return
			}
			if _, err := conn.Write([]byte(rep)); err != nil {
				return
			}
		}
	}
}

// skipCommandFrame consumes one *N multi-bulk request frame.
func skipCommandFrame(r *bufio.Reader) error {
	header, err := r.ReadString('\n')
	if err != nil {
		return err
	}
	header = strings.TrimRight(header, "\r\n")
	if len(header) < 2 || header[0] != '*' {
		return errors.New("unexpected frame header: " + header)
	}
	n, err := strconv.Atoi(header[1:])
	if err != nil {
		return err
	}
	// Each bulk argument is a length line plus a payload line.
	for i := 0; i < n*2; i++ {
		if _, err := r.ReadString('\n'); err != nil {
			return err
		}
	}
	return nil
}
