package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/danmuck/pine/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	defaultWatchInterval = 100 * time.Millisecond
	minWatchInterval     = 10 * time.Millisecond
	watchWriteTimeout    = 5 * time.Second
)

// watchUpdate is pushed whenever the watched value changes.
type watchUpdate struct {
	Seq   uint64 `json:"seq"`
	Width int    `json:"width"`
	Addr  uint32 `json:"addr"`
	Value uint64 `json:"value"`
	Error string `json:"error,omitempty"`
}

// handleWatch polls one address and streams changes over a websocket until
// the peer disconnects or a read fails.
func (s *Server) handleWatch(c *gin.Context) {
	width, addr, ok := memoryParams(c)
	if !ok {
		return
	}
	if _, err := protocol.NewRead(width, addr); err != nil {
		respondError(c, err)
		return
	}
	interval := defaultWatchInterval
	if raw := c.Query("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < minWatchInterval {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be a duration of at least 10ms"})
			return
		}
		interval = d
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("bridge.watch upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		// Drain peer frames so close and ping are processed.
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Debug().Int("width", width).Uint32("addr", addr).Dur("interval", interval).Msg("bridge.watch started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		seq  uint64
		last uint64
	)
	for {
		value, err := s.emu.ReadMemory(ctx, width, addr)
		if err != nil {
			if ctx.Err() == nil {
				update := watchUpdate{Seq: seq + 1, Width: width, Addr: addr, Error: err.Error()}
				_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
				_ = conn.WriteJSON(update)
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "read failed"))
			}
			return
		}
		if seq == 0 || value != last {
			seq++
			last = value
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(watchUpdate{Seq: seq, Width: width, Addr: addr, Value: value}); err != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
