package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/pine/internal/client"
	"github.com/spf13/cobra"
)

const shellHelp = `commands:
  info                          emulator and game metadata
  read <width> <addr>           read 8/16/32/64 bits
  write <width> <addr> <value>  write 8/16/32/64 bits
  save <slot>                   save state
  load <slot>                   load state
  help                          this text
  quit                          leave the shell
`

type lineReader interface {
	GetLine(prompt string) (string, error)
}

func shellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session over one emulator connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				ed := newLineEditor(cmd.InOrStdin(), cmd.OutOrStdout())
				defer ed.Close()
				prompt := fmt.Sprintf("%s:%d> ", a.cfg.Target, a.cfg.EffectiveSlot())
				return runShell(ctx, c, ed, cmd.OutOrStdout(), a.output, prompt)
			})
		},
	}
}

// runShell reads lines until quit or EOF. Command errors are printed and
// the session continues; only input errors end it.
func runShell(ctx context.Context, c emulatorClient, in lineReader, out io.Writer, format, prompt string) error {
	for {
		line, err := in.GetLine(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprint(out, shellHelp)
			continue
		}
		if err := runOp(ctx, c, out, format, fields); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
