package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Marshal renders cfg as TOML that Load reads back unchanged.
func Marshal(cfg Config) ([]byte, error) {
	raw := fileConfig{
		Target:     cfg.Target,
		Slot:       int64(cfg.Slot),
		Auto:       cfg.Auto,
		Transport:  string(cfg.Transport),
		TCPHost:    cfg.TCPHost,
		RuntimeDir: cfg.RuntimeDir,
		IOTimeout:  cfg.IOTimeout.String(),
		LogLevel:   cfg.LogLevel,
		Bridge: fileBridge{
			Addr:        cfg.Bridge.Addr,
			CorsOrigins: cfg.Bridge.CorsOrigins,
		},
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
