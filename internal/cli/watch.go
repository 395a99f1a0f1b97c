package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the countdowns every second",
	Long: `Reprint the deadline table once per second until interrupted.
Useful in a tmux pane or over ssh without a full screen UI.`,
	RunE: runWatch,
}

var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Refresh interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s)

	loc, err := location()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	clearScreen := term.IsTerminal(int(os.Stdout.Fd()))

	render := func(now time.Time) {
		if clearScreen {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		printDeadlines(out, s.List(), now, loc)
	}

	render(appClock.Now())
	ticker := clock.NewTicker(appClock, watchInterval, render)
	ticker.Start(ctx)
	logger.Info("Watching deadlines", logger.F("interval", watchInterval))

	<-ctx.Done()
	ticker.Stop()
	logger.Info("Watch stopped")
	return nil
}
