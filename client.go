package reply

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	"github.com/edwingeng/deque/v2"
	"github.com/jackc/puddle/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ClientConfig configures the downstream client.
type ClientConfig struct {
	// Addrs lists the downstream instances. Required: at least one.
	Addrs []string

	// MaxConns is the connection pool size per endpoint. Defaults to 4.
	MaxConns int32

	// DialTimeout bounds connection establishment. Defaults to 5s.
	DialTimeout time.Duration

	// Selector routes a key to an endpoint index. If nil, uses
	// DefaultEndpointSelector.
	Selector EndpointSelector

	// NewBreaker creates a circuit breaker per endpoint, typically from
	// NewBreakerConfig. If nil, no circuit breaker is used.
	NewBreaker func(addr string) *gobreaker.CircuitBreaker[Reply]

	// Logger receives connection lifecycle events. The zero value is
	// silent.
	Logger zerolog.Logger
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.Selector == nil {
		c.Selector = DefaultEndpointSelector
	}
	return c
}

// Client speaks the Redis protocol to downstream instances: commands out
// through ReqSerializer, replies back through ReadReply. Each endpoint gets
// its own connection pool and optional circuit breaker; multi-endpoint
// deployments route by key hash.
type Client struct {
	endpoints []*endpoint
	selector  EndpointSelector
	logger    zerolog.Logger
}

type endpoint struct {
	addr    string
	pool    *puddle.Pool[*clientConn]
	breaker *gobreaker.CircuitBreaker[Reply]
}

// clientConn is one pooled downstream connection. pending holds the names
// of commands written but not yet answered, so pipelined replies pair up
// FIFO and a dying connection can report what it abandoned.
type clientConn struct {
	conn    net.Conn
	ser     *ReqSerializer
	reader  *bufio.Reader
	pending *deque.Deque[string]
}

// NewClient builds a client for cfg.Addrs. Connections are established
// lazily on first use.
func NewClient(cfg ClientConfig) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoEndpoints
	}
	cfg = cfg.withDefaults()

	c := &Client{
		selector: cfg.Selector,
		logger:   cfg.Logger,
	}

	for _, addr := range cfg.Addrs {
		ep, err := newEndpoint(addr, cfg, c.logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.endpoints = append(c.endpoints, ep)
	}
	return c, nil
}

func newEndpoint(addr string, cfg ClientConfig, logger zerolog.Logger) (*endpoint, error) {
	constructor := func(ctx context.Context) (*clientConn, error) {
		d := net.Dialer{Timeout: cfg.DialTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			logger.Warn().Str("addr", addr).Err(err).Msg("dial failed")
			return nil, err
		}
		logger.Debug().Str("addr", addr).Msg("connected")
		return &clientConn{
			conn:    conn,
			ser:     NewReqSerializer(conn),
			reader:  bufio.NewReader(conn),
			pending: deque.NewDeque[string](),
		}, nil
	}
	destructor := func(cc *clientConn) {
		if n := cc.pending.Len(); n > 0 {
			logger.Debug().Str("addr", addr).Int("abandoned", n).Msg("closing with unanswered commands")
			cc.pending.Clear()
		}
		_ = cc.conn.Close()
	}

	pool, err := puddle.NewPool(&puddle.Config[*clientConn]{
		Constructor: constructor,
		Destructor:  destructor,
		MaxSize:     cfg.MaxConns,
	})
	if err != nil {
		return nil, err
	}

	ep := &endpoint{addr: addr, pool: pool}
	if cfg.NewBreaker != nil {
		ep.breaker = cfg.NewBreaker(addr)
	}
	return ep, nil
}

// Do sends one command and waits for its reply. The routing key is the
// token after the command name; single-endpoint deployments ignore it.
// An error reply from the downstream comes back inside the Reply, not as a
// Go error; use Reply.Err to surface it.
func (c *Client) Do(ctx context.Context, cmd string) (Reply, error) {
	ep := c.route(cmd)
	if ep.breaker != nil {
		return ep.breaker.Execute(func() (Reply, error) {
			return ep.do(ctx, cmd)
		})
	}
	return ep.do(ctx, cmd)
}

// Pipeline writes cmds back to back on one connection, then reads the
// replies in order. All commands route by the first command's key.
// Per-command error replies come back inside the Reply values; a transport
// failure aborts the whole batch.
func (c *Client) Pipeline(ctx context.Context, cmds []string) ([]Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	ep := c.route(cmds[0])
	res, err := ep.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	cc := res.Value()

	for _, cmd := range cmds {
		cc.ser.SendCommand(cmd)
		cc.pending.PushBack(commandName(cmd))
	}
	if err := cc.ser.Err(); err != nil {
		res.Destroy()
		return nil, err
	}

	replies := make([]Reply, 0, len(cmds))
	for cc.pending.Len() > 0 {
		rep, err := ReadReply(cc.reader)
		if err != nil {
			res.Destroy()
			return nil, err
		}
		cc.pending.PopFront()
		replies = append(replies, rep)
	}

	res.Release()
	return replies, nil
}

func (ep *endpoint) do(ctx context.Context, cmd string) (Reply, error) {
	res, err := ep.pool.Acquire(ctx)
	if err != nil {
		return Reply{}, err
	}
	cc := res.Value()

	cc.ser.SendCommand(cmd)
	cc.pending.PushBack(commandName(cmd))
	if err := cc.ser.Err(); err != nil {
		res.Destroy()
		return Reply{}, err
	}

	rep, err := ReadReply(cc.reader)
	if err != nil {
		res.Destroy()
		return Reply{}, err
	}
	cc.pending.PopFront()

	res.Release()
	return rep, nil
}

func (c *Client) route(cmd string) *endpoint {
	if len(c.endpoints) == 1 {
		return c.endpoints[0]
	}
	idx := c.selector(routingKey(cmd), len(c.endpoints))
	return c.endpoints[idx]
}

// routingKey extracts the token after the command name, falling back to
// the command name for key-less commands.
func routingKey(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) >= 2 {
		return fields[1]
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return ""
}

func commandName(cmd string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	return name
}

// EndpointStats snapshots one endpoint's pool and breaker state.
type EndpointStats struct {
	Addr          string
	TotalConns    int32
	IdleConns     int32
	BreakerState  gobreaker.State
	BreakerCounts gobreaker.Counts
}

// Stats returns a snapshot per endpoint.
func (c *Client) Stats() []EndpointStats {
	out := make([]EndpointStats, 0, len(c.endpoints))
	for _, ep := range c.endpoints {
		s := ep.pool.Stat()
		es := EndpointStats{
			Addr:       ep.addr,
			TotalConns: s.TotalResources(),
			IdleConns:  s.IdleResources(),
		}
		if ep.breaker != nil {
			es.BreakerState = ep.breaker.State()
			es.BreakerCounts = ep.breaker.Counts()
		}
		out = append(out, es)
	}
	return out
}

// Close shuts down all endpoint pools.
func (c *Client) Close() {
	for _, ep := range c.endpoints {
		ep.pool.Close()
	}
}
