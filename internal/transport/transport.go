package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnsupportedOS  = errors.New("transport: unsupported operating system")
	ErrSocketNotFound = errors.New("transport: unix socket not found")
	ErrUnknownKind    = errors.New("transport: unknown transport kind")
)

// SocketNotFoundError reports the resolved path that did not exist.
type SocketNotFoundError struct {
	Path string
}

func (e *SocketNotFoundError) Error() string {
	return fmt.Sprintf("transport: unix socket not found: %s", e.Path)
}

func (e *SocketNotFoundError) Is(target error) bool {
	return target == ErrSocketNotFound
}

// Kind selects a binding.
type Kind string

const (
	KindAuto Kind = "auto"
	KindUnix Kind = "unix"
	KindTCP  Kind = "tcp"
)

// ParseKind accepts "", auto, unix and tcp.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindAuto:
		return KindAuto, nil
	case KindUnix:
		return KindUnix, nil
	case KindTCP:
		return KindTCP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

const DefaultTCPHost = "127.0.0.1"

// Conn is a connected duplex stream.
type Conn interface {
	io.Reader
	io.Writer
	// Shutdown half-closes both directions without releasing the descriptor.
	Shutdown() error
	Close() error
	// Addr describes the remote end for logs.
	Addr() string
}

// Target names the emulator endpoint to reach.
type Target struct {
	Name string
	Slot uint16
	// Auto selects <name>.sock instead of <name>.sock.<slot>.
	Auto bool
	Kind Kind
	// Host overrides the TCP host. Empty means 127.0.0.1.
	Host string
	// RuntimeDir overrides the socket directory.
	RuntimeDir string
	// ConnectTimeout bounds the dial. Zero means no bound beyond ctx.
	ConnectTimeout time.Duration
}

// Resolve reports which binding Dial would use for t on goos.
func Resolve(t Target, goos string) (Kind, error) {
	switch t.Kind {
	case "", KindAuto:
		if goos == "windows" {
			return KindTCP, nil
		}
		return KindUnix, nil
	case KindUnix:
		if goos == "windows" {
			return "", ErrUnsupportedOS
		}
		return KindUnix, nil
	case KindTCP:
		return KindTCP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
}

// Dial connects to t using the binding chosen for the current host.
func Dial(ctx context.Context, t Target) (Conn, error) {
	kind, err := Resolve(t, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	if kind == KindTCP {
		return DialTCP(ctx, t.Host, t.Slot, t.ConnectTimeout)
	}

	dir := t.RuntimeDir
	if dir == "" {
		dir, err = RuntimeDir(runtime.GOOS, os.Getenv)
		if err != nil {
			return nil, err
		}
	}
	path := SocketPath(dir, t.Name, t.Slot, t.Auto)
	return DialUnix(ctx, path, t.ConnectTimeout)
}

// DialUnix connects to the socket at path. The path must already exist.
func DialUnix(ctx context.Context, path string, timeout time.Duration) (Conn, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &SocketNotFoundError{Path: path}
		}
		return nil, err
	}
	return dial(ctx, "unix", path, timeout)
}

// DialTCP connects to host:port. An empty host means loopback.
func DialTCP(ctx context.Context, host string, port uint16, timeout time.Duration) (Conn, error) {
	if strings.TrimSpace(host) == "" {
		host = DefaultTCPHost
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	return dial(ctx, "tcp", addr, timeout)
}

func dial(ctx context.Context, network, addr string, timeout time.Duration) (Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	c, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		log.Debug().Str("network", network).Str("addr", addr).Err(err).Msg("transport.dial failed")
		return nil, err
	}
	log.Debug().Str("network", network).Str("addr", addr).Msg("transport.dial connected")
	return Wrap(c), nil
}

// Wrap adapts an established net.Conn.
func Wrap(c net.Conn) Conn {
	addr := ""
	if ra := c.RemoteAddr(); ra != nil {
		addr = ra.Network() + "://" + ra.String()
	}
	return &streamConn{Conn: c, addr: addr}
}

type streamConn struct {
	net.Conn
	addr string
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

func (c *streamConn) Addr() string {
	return c.addr
}

func (c *streamConn) Shutdown() error {
	hc, ok := c.Conn.(halfCloser)
	if !ok {
		return c.Conn.Close()
	}
	rerr := hc.CloseRead()
	werr := hc.CloseWrite()
	return errors.Join(rerr, werr)
}

func (c *streamConn) Close() error {
	_ = c.Shutdown()
	err := c.Conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
