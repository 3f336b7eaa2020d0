package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pinectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pinectl",
		Short: "Talk to PINE-enabled emulators",
		Long: `pinectl drives emulators that expose the PINE IPC protocol
(PCSX2, RPCS3, DuckStation): read and write guest memory, save and load
states, query game metadata, or bridge a connection to HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	a.bindFlags(root)

	root.AddCommand(
		infoCmd(a),
		readCmd(a),
		writeCmd(a),
		saveCmd(a),
		loadCmd(a),
		shellCmd(a),
		serveCmd(a),
		configCmd(a),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pinectl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pinectl", version)
		},
	}
}
