package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/config"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

// emulatorClient is what the one-shot commands and the shell call.
type emulatorClient interface {
	Info(ctx context.Context) (client.Info, error)
	ReadMemory(ctx context.Context, width int, addr uint32) (uint64, error)
	WriteMemory(ctx context.Context, width int, addr uint32, value uint64) error
	SaveState(ctx context.Context, slot uint8) error
	LoadState(ctx context.Context, slot uint8) error
}

// runOp executes one textual operation such as "read 32 0x347d34".
func runOp(ctx context.Context, c emulatorClient, out io.Writer, format string, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch strings.ToLower(args[0]) {
	case "info":
		info, err := c.Info(ctx)
		if err != nil {
			return err
		}
		return emit(out, format, infoText(info), info)

	case "read":
		if len(args) != 3 {
			return fmt.Errorf("%w: read <width> <addr>", errUsage)
		}
		width, addr, err := parseWidthAddr(args[1], args[2])
		if err != nil {
			return err
		}
		v, err := c.ReadMemory(ctx, width, addr)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("%#08x = %#x (%d)\n", addr, v, v)
		return emit(out, format, text, memoryResult{Width: width, Addr: addr, Value: v})

	case "write":
		if len(args) != 4 {
			return fmt.Errorf("%w: write <width> <addr> <value>", errUsage)
		}
		width, addr, err := parseWidthAddr(args[1], args[2])
		if err != nil {
			return err
		}
		value, err := strconv.ParseUint(args[3], 0, 64)
		if err != nil {
			return fmt.Errorf("parse value %q: %w", args[3], err)
		}
		if err := c.WriteMemory(ctx, width, addr, value); err != nil {
			return err
		}
		text := fmt.Sprintf("%#08x <- %#x\n", addr, value)
		return emit(out, format, text, memoryResult{Width: width, Addr: addr, Value: value})

	case "save", "load":
		if len(args) != 2 {
			return fmt.Errorf("%w: %s <slot>", errUsage, args[0])
		}
		slot, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return fmt.Errorf("parse slot %q: %w", args[1], err)
		}
		if strings.ToLower(args[0]) == "save" {
			err = c.SaveState(ctx, uint8(slot))
		} else {
			err = c.LoadState(ctx, uint8(slot))
		}
		if err != nil {
			return err
		}
		op := strings.ToLower(args[0])
		text := fmt.Sprintf("%s slot %d ok\n", op, slot)
		return emit(out, format, text, stateResult{Op: op, Slot: uint8(slot)})

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func parseWidthAddr(rawWidth, rawAddr string) (int, uint32, error) {
	width, err := strconv.Atoi(rawWidth)
	if err != nil {
		return 0, 0, fmt.Errorf("parse width %q: %w", rawWidth, err)
	}
	addr, err := strconv.ParseUint(rawAddr, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("parse addr %q: %w", rawAddr, err)
	}
	return width, uint32(addr), nil
}

type memoryResult struct {
	Width int    `json:"width" yaml:"width"`
	Addr  uint32 `json:"addr" yaml:"addr"`
	Value uint64 `json:"value" yaml:"value"`
}

type stateResult struct {
	Op   string `json:"op" yaml:"op"`
	Slot uint8  `json:"slot" yaml:"slot"`
}

func infoText(info client.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:      %s\n", info.Version)
	fmt.Fprintf(&b, "status:       %s\n", info.StatusName)
	fmt.Fprintf(&b, "title:        %s\n", info.Title)
	fmt.Fprintf(&b, "id:           %s\n", info.ID)
	fmt.Fprintf(&b, "uuid:         %s\n", info.UUID)
	fmt.Fprintf(&b, "game version: %s\n", info.GameVersion)
	return b.String()
}

func opCmd(a *app, use, short string, args cobra.PositionalArgs) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return runOp(ctx, c, cmd.OutOrStdout(), a.output, append([]string{name}, args...))
			})
		},
	}
}

func infoCmd(a *app) *cobra.Command {
	return opCmd(a, "info", "Show emulator and game metadata", cobra.NoArgs)
}

func readCmd(a *app) *cobra.Command {
	return opCmd(a, "read <width> <addr>", "Read 8, 16, 32 or 64 bits of guest memory", cobra.ExactArgs(2))
}

func writeCmd(a *app) *cobra.Command {
	return opCmd(a, "write <width> <addr> <value>", "Write 8, 16, 32 or 64 bits of guest memory", cobra.ExactArgs(3))
}

func saveCmd(a *app) *cobra.Command {
	return opCmd(a, "save <slot>", "Save emulator state into a slot", cobra.ExactArgs(1))
}

func loadCmd(a *app) *cobra.Command {
	return opCmd(a, "load <slot>", "Load emulator state from a slot", cobra.ExactArgs(1))
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create pinectl config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a starter config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config after file and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
