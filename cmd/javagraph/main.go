// Command javagraph extracts a package/class/method/field graph from a Java
// source tree and writes it as Neo4j bulk-import CSV files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	flags := &exportFlags{}

	root := &cobra.Command{
		Use:   "javagraph [root]",
		Short: "Export a Java source tree as a Neo4j bulk-import graph",
		Long: `javagraph walks the .java files under root (default "."), extracts packages,
classes, interfaces, enums, methods and fields with their containment,
inheritance and import relationships, and writes Neo4j bulk-import CSV files
together with the neo4j-admin command that loads them.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runExport(cmd, dir, flags)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flags.register(root)

	root.AddCommand(newInspectCmd(), newServeCmd(), newVersionCmd())
	return root
}

// setupLogging installs a text handler on w as the default slog logger.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "javagraph", version)
		},
	}
}
