package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/config"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/existflow/deadlines/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	storageArg string
	ephemeral  bool
)

// appClock is the time source for every command
var appClock clock.Clock = clock.System

// cfg is loaded once per invocation by the root pre-run hook
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "deadlines",
	Short: "Deadlines - countdown cards for the people you are waiting on",
	Long: `Deadlines tracks who owes what by when, with a live countdown per card
that turns from green to yellow to red as time runs out.

Run 'deadlines' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		var changes []func(*config.Config)
		if cmd.Flags().Changed("log-level") {
			changes = append(changes, func(c *config.Config) { c.LogLevel = logLevel })
		}
		if cmd.Flags().Changed("log-file") {
			changes = append(changes, func(c *config.Config) { c.LogFile = logFile })
		}
		if cmd.Flags().Changed("log-console") {
			changes = append(changes, func(c *config.Config) { c.LogConsole = logConsole })
		}
		if cmd.Flags().Changed("storage") {
			changes = append(changes, func(c *config.Config) { c.Storage.Driver = storageArg })
		}
		applyFlags := func(c *config.Config) {
			for _, change := range changes {
				change(c)
			}
		}
		applyFlags(cfg)

		// Save only what the flags changed, over the file as it was
		if len(changes) > 0 {
			if err := config.Update(applyFlags); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		// --ephemeral is per run and never saved
		if ephemeral {
			cfg.Storage.Driver = storage.DriverMemory
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Deadlines started", logger.F("command", cmd.Name()), logger.F("storage", cfg.Storage.Driver))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			logger.Debug("Stdout is not a terminal, printing list")
			return runList(cmd, args)
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(s)

		loc, err := location()
		if err != nil {
			return err
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(tui.Options{
			Store:          s,
			Clock:          appClock,
			Location:       loc,
			TruncateLength: cfg.TruncateLength,
			Logger:         logger.L(),
		})
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Deadlines exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Storage flags
	rootCmd.PersistentFlags().StringVar(&storageArg, "storage", "", "Storage driver (sqlite, postgres, redis, memory)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep deadlines in memory for this run only")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)
}
