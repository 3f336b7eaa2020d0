package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/pine/internal/testutil/testlog"
	"github.com/gorilla/websocket"
)

func dialWatch(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestWatchStreamsChanges(t *testing.T) {
	testlog.Start(t)
	s, emu := newBridge(t)
	emu.Poke(0x40, 32, 1)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	conn, _, err := dialWatch(t, srv, "/watch/32/0x40?interval=10ms")
	if err != nil {
		t.Fatalf("dial watch: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first watchUpdate
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first update: %v", err)
	}
	if first.Seq != 1 || first.Value != 1 || first.Addr != 0x40 || first.Width != 32 {
		t.Fatalf("unexpected first update: %+v", first)
	}

	emu.Poke(0x40, 32, 0xBEEF)
	var next watchUpdate
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read change: %v", err)
	}
	if next.Seq != 2 || next.Value != 0xBEEF {
		t.Fatalf("unexpected change update: %+v", next)
	}
}

func TestWatchRejectsBadParams(t *testing.T) {
	testlog.Start(t)
	s, _ := newBridge(t)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	for _, path := range []string{
		"/watch/24/0",
		"/watch/8/0?interval=1ms",
		"/watch/8/0?interval=often",
	} {
		_, resp, err := dialWatch(t, srv, path)
		if err == nil {
			t.Fatalf("%s: expected handshake failure", path)
		}
		if resp == nil || resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", path, resp)
		}
	}
}

func TestWatchChecksOrigin(t *testing.T) {
	testlog.Start(t)
	s, _ := newBridge(t)
	if !s.checkOrigin(&http.Request{Header: http.Header{}}) {
		t.Fatalf("missing origin should pass")
	}
	ok := &http.Request{Header: http.Header{"Origin": {"http://localhost:3000"}}}
	if !s.checkOrigin(ok) {
		t.Fatalf("default origin rejected")
	}
	bad := &http.Request{Header: http.Header{"Origin": {"http://evil.example"}}}
	if s.checkOrigin(bad) {
		t.Fatalf("foreign origin accepted")
	}
}
