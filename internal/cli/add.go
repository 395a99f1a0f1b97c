package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/deadlines/internal/present"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new deadline",
	Long: `Add a deadline for a person. The due time is read in the configured
timezone (Europe/Madrid by default).

Examples:
  deadlines add Maria --task "Quarterly report" --due "2026-03-01 18:00"
  deadlines add Carlos Ruiz -t "Review pull requests" -d 2026-02-10T09:30`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addTask string
	addDue  string
)

func init() {
	addCmd.Flags().StringVarP(&addTask, "task", "t", "", "What needs to be done")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date and time (YYYY-MM-DD HH:MM)")
	_ = addCmd.MarkFlagRequired("task")
	_ = addCmd.MarkFlagRequired("due")
}

func runAdd(cmd *cobra.Command, args []string) error {
	loc, err := location()
	if err != nil {
		return err
	}

	due, err := present.ParseDue(addDue, loc)
	if err != nil {
		return err
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	name := strings.Join(args, " ")
	d, err := s.Add(cmd.Context(), name, addTask, due)
	if err != nil {
		return fmt.Errorf("failed to add deadline: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s: \"%s\" due %s (ID: %s)\n",
		d.Name, present.Truncate(d.Task, truncateLength()), present.FormatDue(d.DueDate, loc), d.ID)
	return nil
}
