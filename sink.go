package reply

import "io"

// Sink is the ordered byte-output destination of a connection, usually the
// connection's outbound half. The builder treats it as append-only and
// never reads from it. A sink that also implements io.Closer is closed by
// CloseConnection.
//
// Vectored sends are issued through net.Buffers, so a *net.TCPConn sink
// receives one writev per send operation; other writers receive the spans
// as ordered sequential writes.
type Sink interface {
	io.Writer
}
