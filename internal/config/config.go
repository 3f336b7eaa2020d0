// Package config loads pinectl settings from TOML.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/emulator"
	"github.com/danmuck/pine/internal/logging"
	"github.com/danmuck/pine/internal/transport"
)

var ErrInvalid = errors.New("config: invalid")

type BridgeConfig struct {
	Addr        string
	CorsOrigins []string
}

type Config struct {
	Target string
	// Slot of 0 means the target's default slot.
	Slot       uint16
	Auto       bool
	Transport  transport.Kind
	TCPHost    string
	RuntimeDir string
	IOTimeout  time.Duration
	LogLevel   string
	Bridge     BridgeConfig
}

type fileConfig struct {
	Target     string     `toml:"target"`
	Slot       int64      `toml:"slot"`
	Auto       bool       `toml:"auto"`
	Transport  string     `toml:"transport"`
	TCPHost    string     `toml:"tcp_host"`
	RuntimeDir string     `toml:"runtime_dir"`
	IOTimeout  string     `toml:"io_timeout"`
	LogLevel   string     `toml:"log_level"`
	Bridge     fileBridge `toml:"bridge"`
}

type fileBridge struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func Default() Config {
	return Config{
		Target:    "pcsx2",
		Auto:      true,
		Transport: transport.KindAuto,
		TCPHost:   transport.DefaultTCPHost,
		LogLevel:  "info",
		Bridge: BridgeConfig{
			Addr:        "127.0.0.1:9280",
			CorsOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load overlays the keys present in path onto Default and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("target") {
		cfg.Target = strings.TrimSpace(raw.Target)
	}
	if meta.IsDefined("slot") {
		if raw.Slot < 0 || raw.Slot > 0xFFFF {
			return Config{}, fmt.Errorf("%w: slot %d out of range", ErrInvalid, raw.Slot)
		}
		cfg.Slot = uint16(raw.Slot)
	}
	if meta.IsDefined("auto") {
		cfg.Auto = raw.Auto
	}
	if meta.IsDefined("transport") {
		kind, err := transport.ParseKind(raw.Transport)
		if err != nil {
			return Config{}, fmt.Errorf("parse transport: %w", err)
		}
		cfg.Transport = kind
	}
	if meta.IsDefined("tcp_host") {
		cfg.TCPHost = strings.TrimSpace(raw.TCPHost)
	}
	if meta.IsDefined("runtime_dir") {
		cfg.RuntimeDir = strings.TrimSpace(raw.RuntimeDir)
	}
	if meta.IsDefined("io_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IOTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse io_timeout: %w", err)
		}
		cfg.IOTimeout = d
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("bridge", "addr") {
		cfg.Bridge.Addr = strings.TrimSpace(raw.Bridge.Addr)
	}
	if meta.IsDefined("bridge", "cors_origins") {
		cfg.Bridge.CorsOrigins = normalizeOrigins(raw.Bridge.CorsOrigins)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("%w: target is required", ErrInvalid)
	}
	if c.Slot == 0 && emulator.DefaultSlot(c.Target) == 0 {
		return fmt.Errorf("%w: slot required for unknown target %q", ErrInvalid, c.Target)
	}
	if _, err := transport.ParseKind(string(c.Transport)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.IOTimeout < 0 {
		return fmt.Errorf("%w: io_timeout must not be negative", ErrInvalid)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if strings.TrimSpace(c.Bridge.Addr) == "" {
		return fmt.Errorf("%w: bridge.addr is required", ErrInvalid)
	}
	return nil
}

// EffectiveSlot is Slot, or the target default when Slot is 0.
func (c Config) EffectiveSlot() uint16 {
	if c.Slot != 0 {
		return c.Slot
	}
	return emulator.DefaultSlot(c.Target)
}

func (c Config) TransportTarget() transport.Target {
	return transport.Target{
		Name:       c.Target,
		Slot:       c.EffectiveSlot(),
		Auto:       c.Auto,
		Kind:       c.Transport,
		Host:       c.TCPHost,
		RuntimeDir: c.RuntimeDir,
	}
}

func (c Config) ClientConfig() client.Config {
	cc := client.DefaultConfig()
	cc.IOTimeout = c.IOTimeout
	return cc
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
