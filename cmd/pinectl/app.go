package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/config"
	"github.com/danmuck/pine/internal/logging"
	"github.com/danmuck/pine/internal/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries settings resolved from the config file and flags.
type app struct {
	configPath string
	target     string
	slot       uint16
	auto       bool
	transport  string
	tcpHost    string
	runtimeDir string
	ioTimeout  time.Duration
	logLevel   string
	output     string

	cfg config.Config
}

func (a *app) bindFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")
	f.StringVarP(&a.target, "target", "t", "", "emulator name (pcsx2, rpcs3, duckstation)")
	f.Uint16VarP(&a.slot, "slot", "s", 0, "IPC slot; 0 uses the target default")
	f.BoolVar(&a.auto, "auto", true, "use the unnumbered <target>.sock socket")
	f.StringVar(&a.transport, "transport", "", "auto, unix or tcp")
	f.StringVar(&a.tcpHost, "tcp-host", "", "host for the tcp transport")
	f.StringVar(&a.runtimeDir, "runtime-dir", "", "directory holding emulator sockets")
	f.DurationVar(&a.ioTimeout, "io-timeout", 0, "per-exchange timeout; 0 waits forever")
	f.StringVar(&a.logLevel, "log-level", "", "trace, debug, info, warn or error")
	f.StringVarP(&a.output, "output", "o", outputText, "text, json or yaml")
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	logging.ConfigureRuntime()

	format, err := parseOutput(a.output)
	if err != nil {
		return err
	}
	a.output = format

	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := a.applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if os.Getenv(logging.EnvLogLevel) == "" || cmd.Flags().Changed("log-level") {
		logging.SetLevel(cfg.LogLevel)
	}
	log.Debug().
		Str("target", cfg.Target).
		Uint16("slot", cfg.EffectiveSlot()).
		Str("transport", string(cfg.Transport)).
		Msg("pinectl.setup")
	return nil
}

// applyFlags overlays only the flags the user set.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target = a.target
	}
	if flags.Changed("slot") {
		cfg.Slot = a.slot
	}
	if flags.Changed("auto") {
		cfg.Auto = a.auto
	}
	if flags.Changed("transport") {
		kind, err := transport.ParseKind(a.transport)
		if err != nil {
			return err
		}
		cfg.Transport = kind
	}
	if flags.Changed("tcp-host") {
		cfg.TCPHost = a.tcpHost
	}
	if flags.Changed("runtime-dir") {
		cfg.RuntimeDir = a.runtimeDir
	}
	if flags.Changed("io-timeout") {
		cfg.IOTimeout = a.ioTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	return nil
}

func (a *app) connect(ctx context.Context) (*client.Client, error) {
	c, err := client.Dial(ctx, a.cfg.TransportTarget(), a.cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to %s slot %d: %w", a.cfg.Target, a.cfg.EffectiveSlot(), err)
	}
	return c, nil
}

// withClient dials, runs fn, and closes the connection.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
