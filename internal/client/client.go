// Package client sends PINE batches over one transport.Conn.
//
// A Client serializes whole round trips: a request is written and its
// response fully read before any other caller touches the stream.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/pine/internal/observability"
	"github.com/danmuck/pine/internal/protocol"
	"github.com/danmuck/pine/internal/protocol/frame"
	"github.com/danmuck/pine/internal/transport"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrClosed = errors.New("client: closed")
	// ErrBroken is returned after an I/O failure left the stream at an
	// unknown frame boundary. Reconnect to continue.
	ErrBroken = errors.New("client: stream desynchronized by earlier i/o failure")
)

type Config struct {
	// IOTimeout bounds one write-then-read exchange. Zero blocks until the
	// peer answers or ctx carries a deadline.
	IOTimeout time.Duration
	Limits    frame.Limits
	// Tracer overrides the global otel tracer.
	Tracer trace.Tracer
	// DisableMetrics skips prometheus recording.
	DisableMetrics bool
}

func DefaultConfig() Config {
	return Config{
		Limits: frame.DefaultLimits(),
	}
}

type Client struct {
	mu     sync.Mutex
	conn   transport.Conn
	cfg    Config
	closed atomic.Bool
	// broken is guarded by mu.
	broken error
}

// New wraps an already connected stream.
func New(conn transport.Conn, cfg Config) *Client {
	if cfg.Limits.MaxPayloadBytes == 0 {
		cfg.Limits = frame.DefaultLimits()
	}
	return &Client{conn: conn, cfg: cfg}
}

// Dial connects to target and returns a ready client.
func Dial(ctx context.Context, target transport.Target, cfg Config) (*Client, error) {
	conn, err := transport.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("target", target.Name).Uint16("slot", target.Slot).Str("addr", conn.Addr()).Msg("client.Dial connected")
	return New(conn, cfg), nil
}

// Conn returns the underlying stream.
func (c *Client) Conn() transport.Conn {
	return c.conn
}

// Close shuts the stream down in both directions and releases it. It does
// not wait for an in-flight exchange; a blocked call returns ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// SendRaw writes one finalized request and returns the response payload.
// A non-zero status yields protocol.ErrCommandFailed.
func (c *Client) SendRaw(ctx context.Context, req []byte) ([]byte, error) {
	start := time.Now()
	payload, err := c.exchange(ctx, req)
	c.record(err, nil, time.Since(start))
	return payload, err
}

// Send finalizes b, performs one round trip and decodes one response per
// command, in command order.
func (c *Client) Send(ctx context.Context, b *protocol.Batch) ([]protocol.Response, error) {
	if b.Len() == 0 {
		return nil, protocol.ErrEmptyBatch
	}
	req := b.Finalize()
	cmds := b.Commands()

	ctx, span := observability.StartBatchSpan(ctx, c.cfg.Tracer, len(cmds), len(req))
	start := time.Now()
	payload, err := c.exchange(ctx, req)
	var resps []protocol.Response
	if err == nil {
		resps, err = protocol.DecodeResponses(cmds, payload)
		if err != nil {
			log.Warn().Err(err).Int("commands", len(cmds)).Msg("client.Send decode failed")
		}
	}
	c.record(err, cmds, time.Since(start))
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return resps, nil
}

func (c *Client) exchange(ctx context.Context, req []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.broken != nil {
		return nil, fmt.Errorf("%w: %v", ErrBroken, c.broken)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reset := c.applyDeadline(ctx)
	defer reset()

	if _, err := c.conn.Write(req); err != nil {
		return nil, c.fail("write request", err)
	}
	resp, err := frame.ReadResponse(c.conn, c.cfg.Limits)
	if err != nil {
		if !resp.Header.OK() {
			// The failure status was read but its frame could not be skipped.
			err = fmt.Errorf("%w: %w", protocol.ErrCommandFailed, err)
		}
		return nil, c.fail("read response", err)
	}
	log.Debug().
		Int("request_bytes", len(req)).
		Uint32("response_bytes", resp.Header.Size).
		Uint8("status", resp.Header.Status).
		Msg("client.exchange")
	if !resp.Header.OK() {
		log.Warn().Uint8("status", resp.Header.Status).Msg("client.exchange command failed")
		return nil, protocol.ErrCommandFailed
	}
	return resp.Payload, nil
}

// fail latches err so later calls report ErrBroken. Errors caused by Close
// are reported as ErrClosed.
func (c *Client) fail(stage string, err error) error {
	c.broken = err
	if c.closed.Load() {
		return fmt.Errorf("%w: %s: %v", ErrClosed, stage, err)
	}
	log.Warn().Err(err).Str("stage", stage).Msg("client.exchange stream broken")
	return fmt.Errorf("client: %s: %w", stage, err)
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// applyDeadline sets the earlier of ctx's deadline and IOTimeout on conns
// that support deadlines, and returns the reset func.
func (c *Client) applyDeadline(ctx context.Context) func() {
	d, ok := c.conn.(deadliner)
	if !ok {
		return func() {}
	}
	deadline, has := ctx.Deadline()
	if c.cfg.IOTimeout > 0 {
		t := time.Now().Add(c.cfg.IOTimeout)
		if !has || t.Before(deadline) {
			deadline, has = t, true
		}
	}
	if !has {
		return func() {}
	}
	_ = d.SetDeadline(deadline)
	return func() { _ = d.SetDeadline(time.Time{}) }
}

func (c *Client) record(err error, cmds []protocol.Command, d time.Duration) {
	if c.cfg.DisableMetrics {
		return
	}
	ops := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		ops = append(ops, cmd.Opcode().String())
	}
	observability.RecordBatch(outcomeOf(err), ops, d)
}

// outcomeOf maps an exchange error to its metrics label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, protocol.ErrCommandFailed):
		return observability.OutcomeCommandFail
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return observability.OutcomeCanceled
	case errors.Is(err, ErrClosed):
		return observability.OutcomeClosed
	case errors.Is(err, protocol.ErrEmptyBatch),
		errors.Is(err, protocol.ErrUnknownOpcode),
		errors.Is(err, protocol.ErrInvalidLength),
		errors.Is(err, protocol.ErrShortPayload),
		errors.Is(err, protocol.ErrTrailingBytes),
		errors.Is(err, protocol.ErrInvalidUTF8),
		errors.Is(err, protocol.ErrEmptyString),
		errors.Is(err, protocol.ErrMissingTerminator):
		return observability.OutcomeDecodeError
	default:
		return observability.OutcomeIOError
	}
}
