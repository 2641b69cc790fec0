package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/weeklyreport/weeklyreport/internal/config"
	"github.com/weeklyreport/weeklyreport/internal/mcpserver"
)

const programName = "weeklyreport"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", programName)
}

// setupLogging installs the default logger. Logs go to stderr because stdout
// carries the MCP stdio stream and one-shot command output.
func setupLogging() error {
	level := slog.LevelInfo
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: globalFlags.debug,
		Level:     level,
	})))

	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		return fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	return nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), programName, mcpserver.Version)
		},
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Answer who has and has not submitted this week's report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "config.yaml", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		if cmd.Name() == "version" {
			return nil
		}

		// A .env file is optional; it only seeds WEEKLYREPORT_* and *_env secrets.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		slog.Debug("config loaded",
			"config", configFile,
			"members", len(cfg.Roster),
			"worksheet", cfg.Sheet.Worksheet,
			"rows", fmt.Sprintf("%d..%d", cfg.Sheet.FirstRow, cfg.Sheet.LastRow),
			"transport", cfg.Server.Transport,
		)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(statusCommand())
	rootCmd.AddCommand(statsCommand())
	rootCmd.AddCommand(membersCommand())
	rootCmd.AddCommand(personCommand())
	rootCmd.AddCommand(remindCommand())
	rootCmd.AddCommand(metricsCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

// execute runs the root command with args and reports a failure once on
// stderr. It returns the process exit code.
func execute(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}
