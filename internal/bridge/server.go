// Package bridge exposes one emulator connection over HTTP.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/observability"
	"github.com/danmuck/pine/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Emulator is the subset of *client.Client the bridge drives.
type Emulator interface {
	Info(ctx context.Context) (client.Info, error)
	ReadMemory(ctx context.Context, width int, addr uint32) (uint64, error)
	WriteMemory(ctx context.Context, width int, addr uint32, value uint64) error
	SaveState(ctx context.Context, slot uint8) error
	LoadState(ctx context.Context, slot uint8) error
}

var _ Emulator = (*client.Client)(nil)

type Server struct {
	Target   string
	Addr     string
	Appeared time.Time

	emu      Emulator
	router   *gin.Engine
	origins  []string
	upgrader websocket.Upgrader
}

func New(target, addr string, emu Emulator, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(observability.InitLogger("pine-bridge")))
	r.Use(observability.RequestMetricsMiddleware())
	origins := normalizeOrigins(corsOrigins)
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "PUT", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Target:   target,
		Addr:     addr,
		Appeared: time.Now(),
		emu:      emu,
		router:   r,
		origins:  origins,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve listens on Addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr).Str("target", s.Target).Msg("bridge.Serve listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Str("addr", s.Addr).Msg("bridge.Serve shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"target":  s.Target,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/info", func(c *gin.Context) {
		info, err := s.emu.Info(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	})

	s.router.GET("/memory/:width/:addr", func(c *gin.Context) {
		width, addr, ok := memoryParams(c)
		if !ok {
			return
		}
		value, err := s.emu.ReadMemory(c.Request.Context(), width, addr)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"width": width, "addr": addr, "value": value})
	})

	s.router.PUT("/memory/:width/:addr", func(c *gin.Context) {
		width, addr, ok := memoryParams(c)
		if !ok {
			return
		}
		var body struct {
			Value *uint64 `json:"value"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Value == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"value\": <uint>}"})
			return
		}
		if err := s.emu.WriteMemory(c.Request.Context(), width, addr, *body.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.GET("/watch/:width/:addr", s.handleWatch)

	s.router.POST("/state/:slot/save", func(c *gin.Context) {
		slot, ok := slotParam(c)
		if !ok {
			return
		}
		if err := s.emu.SaveState(c.Request.Context(), slot); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "slot": slot})
	})

	s.router.POST("/state/:slot/load", func(c *gin.Context) {
		slot, ok := slotParam(c)
		if !ok {
			return
		}
		if err := s.emu.LoadState(c.Request.Context(), slot); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "slot": slot})
	})
}

func memoryParams(c *gin.Context) (int, uint32, bool) {
	width, err := strconv.Atoi(c.Param("width"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid width"})
		return 0, 0, false
	}
	addr, err := strconv.ParseUint(c.Param("addr"), 0, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid addr"})
		return 0, 0, false
	}
	return width, uint32(addr), true
}

func slotParam(c *gin.Context) (uint8, bool) {
	slot, err := strconv.ParseUint(c.Param("slot"), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return 0, false
	}
	return uint8(slot), true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, protocol.ErrInvalidWidth), errors.Is(err, protocol.ErrValueOverflow):
		status = http.StatusBadRequest
	case errors.Is(err, protocol.ErrCommandFailed):
		status = http.StatusBadGateway
	case errors.Is(err, client.ErrClosed), errors.Is(err, client.ErrBroken):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
