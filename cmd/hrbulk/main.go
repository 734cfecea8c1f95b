// Command hrbulk inspects, imports and tracks bulk HR spreadsheets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "hrbulk"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	envFiles []string
	logLevel string
	jsonOut  bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Bulk HR spreadsheet ingestion",
		Long: `hrbulk ingests messy employee spreadsheets into the HR store.

It provides:
- structure inspection with fuzzy column matching
- employee imports and manager reassignment with per-row reports
- an inbox watcher that runs dropped files through the same pipeline

Configuration comes from the environment and optional .env files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, "Env files to load (default .env, .env.local)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "Print machine-readable JSON instead of styled output")

	cmd.AddCommand(
		migrateCmd(g),
		employerCmd(g),
		inspectCmd(g),
		runCmd(g, "import", "Import employees from a CSV/TSV/XLSX file", "import_employees"),
		runCmd(g, "update-managers", "Reassign managers from a CSV/TSV/XLSX file", "update_managers"),
		watchCmd(g),
		healthCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
