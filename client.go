package integra

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/sync/cio"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/j-keck/arping"
	"golang.org/x/time/rate"
)

// DefaultPort is the integration port of the ETHM-1 module.
const DefaultPort = "7094"

const (
	defaultConnectTimeout = 2 * time.Second
	defaultReadTimeout    = 30 * time.Second
	defaultSendInterval   = time.Second
	defaultBusyInitial    = 5 * time.Second
	defaultBusyMax        = 30 * time.Second
	defaultBusyRetries    = 5
	defaultMaxFrameSize   = 1024
)

// Dialer opens connections to the module. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client talks to an INTEGRA panel through its ETHM-1 module.
//
// Every command is sent over a new connection, and only one command is in
// flight at a time. The module refuses commands sent too close to each
// other, so sends are spaced by the configured interval.
type Client struct {
	addr     string
	dialer   Dialer
	log      *log.Logger
	catalog  EventCatalog
	decoders dispatcher

	connectTimeout time.Duration
	readTimeout    time.Duration
	limiter        *rate.Limiter
	busyInitial    time.Duration
	busyMax        time.Duration
	busyRetries    uint64
	maxFrameSize   int

	mu sync.Mutex
}

type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithCatalog(catalog EventCatalog) Option {
	return func(c *Client) { c.catalog = catalog }
}

func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = connect
		c.readTimeout = read
	}
}

// WithSendInterval sets the minimum time between two commands. Zero
// disables the spacing.
func WithSendInterval(d time.Duration) Option {
	return func(c *Client) { c.limiter = newLimiter(d) }
}

// WithBusyRetry sets how a command answered with "Busy!" is resent: the
// first wait, the longest wait, and how many times it is resent at most.
func WithBusyRetry(initial, longest time.Duration, retries uint64) Option {
	return func(c *Client) {
		c.busyInitial = initial
		c.busyMax = longest
		c.busyRetries = retries
	}
}

// WithMaxFrameSize caps how many bytes are read for a single reply.
func WithMaxFrameSize(n int) Option {
	return func(c *Client) { c.maxFrameSize = n }
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// New creates a client for the module at host:port. No connection is made
// until a command is sent.
func New(host, port string, opts ...Option) (*Client, error) {
	c := &Client{
		addr:           net.JoinHostPort(host, port),
		dialer:         &net.Dialer{},
		log:            NewLogger(os.Stderr, true, false),
		connectTimeout: defaultConnectTimeout,
		readTimeout:    defaultReadTimeout,
		limiter:        newLimiter(defaultSendInterval),
		busyInitial:    defaultBusyInitial,
		busyMax:        defaultBusyMax,
		busyRetries:    defaultBusyRetries,
		maxFrameSize:   defaultMaxFrameSize,
		decoders:       newDispatcher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		catalog, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}
	return c, nil
}

func MacAddress(ip string) (string, error) {
	hw, _, err := arping.Ping(net.ParseIP(ip))
	if err != nil {
		return "", fmt.Errorf("could not get the mac address: %w", err)
	}
	return hw.String(), nil
}

// Send sends the command and decodes its reply.
func (c *Client) Send(ctx context.Context, cmd Command) (Result, error) {
	resp, err := c.exchange(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return c.decoders.dispatch(ctx, decodeEnv{
		names:   c,
		catalog: c.catalog,
		log:     c.log,
	}, resp)
}

// exchange sends the command until the module stops answering "Busy!" and
// returns the validated reply.
func (c *Client) exchange(ctx context.Context, cmd Command) (Response, error) {
	frame := Encode(cmd.Bytes())

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.busyInitial
	bo.MaxInterval = c.busyMax
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var resp Response
	err := backoff.RetryNotify(func() error {
		reply, err := c.roundTrip(ctx, frame)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("could not send %s: %w", cmd, err))
		}
		if len(reply) == 0 {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrEmptyResponse, cmd))
		}
		if isBusy(reply) {
			return fmt.Errorf("%w: %s", ErrBusy, cmd)
		}
		resp, err = Decode(reply)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("could not decode reply to %s: %w", cmd, err))
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.busyRetries), ctx), func(_ error, d time.Duration) {
		c.log.Info("module is busy, will resend", "command", cmd, "in", d)
	})
	if errors.Is(err, ErrBusy) {
		return Response{}, fmt.Errorf("gave up after %d retries: %w", c.busyRetries, err)
	}
	return resp, err
}

// roundTrip writes a frame on a new connection and reads what comes back.
func (c *Client) roundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// the deadline expires before the next send slot.
		return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()
	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, c.addr, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			c.log.Debug("could not close connection", "err", err)
		}
	}()
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c.log.Debug("send", "frame", hex.EncodeToString(frame))
	if _, err := conn.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: could not write: %w", ErrConnection, err)
	}

	reply, err := c.readReply(conn)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: could not read: %w", ErrConnection, err)
	}
	c.log.Debug("recv", "frame", hex.EncodeToString(reply))
	return reply, nil
}

// readReply reads until a whole frame or the busy reply arrived, the
// module hung up, or the size cap was reached.
func (c *Client) readReply(conn net.Conn) ([]byte, error) {
	r := cio.TimeoutReader(conn, c.readTimeout)
	buf := make([]byte, 256)
	var reply []byte
	for !complete(reply) && len(reply) < c.maxFrameSize {
		n, err := r.Read(buf[:min(len(buf), c.maxFrameSize-len(reply))])
		reply = append(reply, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// call sends the command and asserts the type of its result.
func call[T Result](ctx context.Context, c *Client, cmd Command) (T, error) {
	var zero T
	res, err := c.Send(ctx, cmd)
	if err != nil {
		return zero, err
	}
	switch v := res.(type) {
	case T:
		return v, nil
	case CommandResult:
		return zero, fmt.Errorf("%w: %s answered with %q", ErrUnexpectedReply, cmd, v)
	default:
		return zero, fmt.Errorf("%w: %s answered with %T", ErrUnexpectedReply, cmd, res)
	}
}

// ObjectName reads the name of a partition, zone, user, expander or output.
func (c *Client) ObjectName(ctx context.Context, typ ObjectType, number int) (ObjectName, error) {
	return call[ObjectName](ctx, c, NewCommand(OpObjectName, byte(typ), byte(number)))
}

// Zones returns the zones in the given state along with their names.
// Each name costs one more command.
func (c *Client) Zones(ctx context.Context, state ZoneState) (ZoneSet, error) {
	return call[ZoneSet](ctx, c, NewCommand(byte(state)))
}

// ZoneNumbers returns the numbers of the zones in the given state.
func (c *Client) ZoneNumbers(ctx context.Context, state ZoneState) ([]int, error) {
	cmd := NewCommand(byte(state))
	resp, err := c.exchange(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if resp.Opcode != cmd.Opcode() {
		return nil, fmt.Errorf("%w: %s answered with opcode %02X", ErrUnexpectedReply, cmd, resp.Opcode)
	}
	return zoneBitmap(resp)
}

func (c *Client) OpenedDoors(ctx context.Context, long bool) (Doors, error) {
	op := OpDoorsOpened
	if long {
		op = OpDoorsOpenedLong
	}
	return call[Doors](ctx, c, NewCommand(op))
}

func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	return call[SystemStatus](ctx, c, NewCommand(OpSystemStatus))
}

func (c *Client) ModuleVersion(ctx context.Context) (ModuleVersion, error) {
	return call[ModuleVersion](ctx, c, NewCommand(OpModuleVersion))
}

func (c *Client) PanelVersion(ctx context.Context) (PanelVersion, error) {
	return call[PanelVersion](ctx, c, NewCommand(OpPanelVersion))
}

// Event reads one record of the event log. Use LatestEvent for the most
// recent one, and the Index of a record to read the one before it.
func (c *Client) Event(ctx context.Context, idx EventIndex) (EventRecord, error) {
	return call[EventRecord](ctx, c, NewCommand(OpReadEvent, idx[:]...))
}

// Events reads the event log backwards from the most recent event until an
// empty record is found, the module repeats an index, or limit events were
// read. A limit of 0 or less
// reads the whole log.
func (c *Client) Events(ctx context.Context, limit int) ([]EventRecord, error) {
	var events []EventRecord
	idx := LatestEvent
	for limit <= 0 || len(events) < limit {
		ev, err := c.Event(ctx, idx)
		if err != nil {
			return events, err
		}
		if !ev.NotEmpty || ev.Index == idx {
			break
		}
		events = append(events, ev)
		idx = ev.Index
	}
	return events, nil
}
