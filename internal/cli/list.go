package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/present"
	"github.com/existflow/deadlines/internal/tui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List deadlines",
	Long: `List every deadline with its countdown and urgency.

Examples:
  deadlines list
  deadlines ls --json`,
	RunE: runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the stored JSON instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	deadlines := s.List()
	out := cmd.OutOrStdout()

	if listJSON {
		data, err := model.EncodeCollection(deadlines)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(deadlines) == 0 {
		fmt.Fprintln(out, "No deadlines yet. Add one with: deadlines add NAME --task \"...\" --due \"YYYY-MM-DD HH:MM\"")
		return nil
	}

	loc, err := location()
	if err != nil {
		return err
	}
	printDeadlines(out, deadlines, appClock.Now(), loc)
	return nil
}

// printDeadlines writes one line per deadline, all evaluated at now
func printDeadlines(w io.Writer, deadlines []model.Deadline, now time.Time, loc *time.Location) {
	states := countdown.DeriveAll(deadlines, now)
	counts := countdown.CountByTier(states)

	fmt.Fprintf(w, "\n⏳ %d deadlines (%d safe, %d warning, %d critical) at %s\n",
		len(deadlines), counts[countdown.Safe], counts[countdown.Warning], counts[countdown.Critical],
		now.In(loc).Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w, strings.Repeat("─", 78))

	for i, d := range deadlines {
		printDeadline(w, d, states[i], loc)
	}
	fmt.Fprintln(w)
}

func printDeadline(w io.Writer, d model.Deadline, state countdown.State, loc *time.Location) {
	tier := lipgloss.NewStyle().Foreground(tui.TierColor(state.Tier)).Render(fmt.Sprintf("%-8s", state.Tier))

	top, bottom := present.FormatCountdown(state.TimeLeft)
	left := strings.TrimSpace(top + " " + bottom)

	// Short ID
	shortID := d.ID
	if len(shortID) > 13 {
		shortID = shortID[:13]
	}

	fmt.Fprintf(w, "  %-13s  %-12s  %-28s  %-16s  %-14s  %s %3.0f%%\n",
		shortID,
		present.Truncate(present.SingleLine(d.Name), 12),
		present.Truncate(present.SingleLine(d.Task), truncateLength()),
		present.FormatDue(d.DueDate, loc),
		left,
		tier,
		state.RemainingPercent,
	)
}
