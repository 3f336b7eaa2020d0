package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/protocol"
	"github.com/danmuck/pine/internal/testutil/pinetest"
	"github.com/danmuck/pine/internal/testutil/testlog"
	"github.com/danmuck/pine/internal/transport"
	"github.com/rs/zerolog/log"
)

func newBridge(t *testing.T) (*Server, *pinetest.Emulator) {
	t.Helper()
	emu := pinetest.NewEmulator()
	c := client.New(transport.Wrap(emu.Pipe(t)), client.DefaultConfig())
	t.Cleanup(func() { _ = c.Close() })
	return New("pcsx2", ":0", c, nil), emu
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	log.Info().Msgf("bridge/http: %s %s status=%d", method, path, rr.Code)
	return rr, out
}

func TestHealth(t *testing.T) {
	testlog.Start(t)
	s, _ := newBridge(t)
	rr, body := do(t, s, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || body["status"] != "ok" || body["target"] != "pcsx2" {
		t.Fatalf("unexpected health: %d %#v", rr.Code, body)
	}
}

func TestInfo(t *testing.T) {
	testlog.Start(t)
	s, emu := newBridge(t)
	rr, body := do(t, s, http.MethodGet, "/info", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %#v", rr.Code, body)
	}
	if body["title"] != emu.Title || body["id"] != emu.ID || body["status"] != protocol.EmuRunning.String() {
		t.Fatalf("unexpected info: %#v", body)
	}
}

func TestMemoryWriteThenRead(t *testing.T) {
	testlog.Start(t)
	s, emu := newBridge(t)

	rr, body := do(t, s, http.MethodPut, "/memory/16/0x200", `{"value": 4660}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("write: %d %#v", rr.Code, body)
	}
	if got := emu.Peek(0x200, 16); got != 4660 {
		t.Fatalf("emulator memory = %d", got)
	}

	rr, body = do(t, s, http.MethodGet, "/memory/16/512", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("read: %d %#v", rr.Code, body)
	}
	if body["value"] != float64(4660) {
		t.Fatalf("read value = %#v", body["value"])
	}
}

func TestMemoryBadRequests(t *testing.T) {
	testlog.Start(t)
	s, emu := newBridge(t)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/memory/12/0", ""},
		{http.MethodGet, "/memory/eight/0", ""},
		{http.MethodGet, "/memory/8/0xZZ", ""},
		{http.MethodPut, "/memory/8/0", `{"value": 256}`},
		{http.MethodPut, "/memory/8/0", `{}`},
		{http.MethodPost, "/state/300/save", ""},
	}
	for _, tc := range cases {
		rr, body := do(t, s, tc.method, tc.path, tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d %#v", tc.method, tc.path, rr.Code, body)
		}
	}
	if n := len(emu.Requests()); n != 0 {
		t.Fatalf("bad requests reached the emulator: %d", n)
	}
}

func TestStateSaveLoad(t *testing.T) {
	testlog.Start(t)
	s, emu := newBridge(t)
	emu.Poke(0x10, 8, 9)

	if rr, body := do(t, s, http.MethodPost, "/state/2/save", ""); rr.Code != http.StatusOK {
		t.Fatalf("save: %d %#v", rr.Code, body)
	}
	emu.Poke(0x10, 8, 1)
	if rr, body := do(t, s, http.MethodPost, "/state/2/load", ""); rr.Code != http.StatusOK {
		t.Fatalf("load: %d %#v", rr.Code, body)
	}
	if got := emu.Peek(0x10, 8); got != 9 {
		t.Fatalf("state not restored: %d", got)
	}

	rr, body := do(t, s, http.MethodPost, "/state/7/load", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("missing slot: expected 502, got %d %#v", rr.Code, body)
	}
}
