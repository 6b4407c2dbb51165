package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"seatview/config"
	"seatview/telemetry"
	"seatview/tui"
)

const appName = "seatview"

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

var (
	cfg      config.Config
	shutdown telemetry.ShutdownFunc

	version = "dev"
	commit  = "none"

	serverFlags  []string
	intervalFlag time.Duration
	timeoutFlag  time.Duration
	logFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Watch seat availability and book seats from the terminal",
	Long:          `Polls a seat booking server, shows every seat and its status, and books available seats.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		shutdown, err = telemetry.Setup(cmd.Context(), version)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		}
		return nil
	},
	RunE: runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of seatview",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s", appName, version)
		if commit != "none" && commit != "" {
			fmt.Fprintf(out, " (%s)", commit)
		}
		fmt.Fprintln(out)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVar(&serverFlags, "server", nil, "seat server base URL (repeatable; the first one is used at startup)")
	flags.DurationVar(&intervalFlag, "interval", config.DefaultInterval, "seat poll interval")
	flags.DurationVar(&timeoutFlag, "timeout", config.DefaultTimeout, "per-request timeout")
	flags.StringVar(&logFileFlag, "log-file", "", "write logs to this file while the TUI runs")

	rootCmd.AddCommand(versionCmd, seatsCmd, bookCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute(buildVersion string, buildCommit string) int {
	version = buildVersion
	commit = buildCommit

	err := rootCmd.Execute()
	if shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if shutdownErr := shutdown(ctx); shutdownErr != nil {
			log.Printf("flush traces: %v", shutdownErr)
		}
		cancel()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// loadConfig layers command-line flags over the environment and .env file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	loaded, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		loaded.Servers = serverFlags
	}
	if flags.Changed("interval") {
		loaded.Interval = intervalFlag
	}
	if flags.Changed("timeout") {
		loaded.Timeout = timeoutFlag
	}
	if flags.Changed("log-file") {
		loaded.LogFile = logFileFlag
	}

	if err := loaded.Validate(); err != nil {
		return config.Config{}, err
	}
	return loaded, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	closeLog, err := setupTUILog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	model := tui.New(tui.Options{
		Servers:  cfg.Servers,
		Interval: cfg.Interval,
		Timeout:  cfg.Timeout,
	})
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if final != nil {
		tui.Shutdown(final)
	}
	return err
}

// setupTUILog routes the log package away from the terminal the TUI owns.
func setupTUILog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, appName)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return func() { _ = f.Close() }, nil
}
