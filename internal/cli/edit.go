package cli

import (
	"fmt"

	"github.com/existflow/deadlines/internal/present"
	"github.com/existflow/deadlines/internal/store"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [deadline-id]",
	Short: "Edit a deadline",
	Long: `Change the name, task or due time of a deadline. Fields that are not
given keep their value; the id and creation time never change.

Examples:
  deadlines edit 1770454800000 --due "2026-02-12 10:00"
  deadlines edit 177045 --task "Send the signed contract"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editName string
	editTask string
	editDue  string
)

func init() {
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "New name")
	editCmd.Flags().StringVarP(&editTask, "task", "t", "", "New task")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "New due date and time (YYYY-MM-DD HH:MM)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	var patch store.Patch
	if cmd.Flags().Changed("name") {
		patch.Name = &editName
	}
	if cmd.Flags().Changed("task") {
		patch.Task = &editTask
	}
	if cmd.Flags().Changed("due") {
		loc, err := location()
		if err != nil {
			return err
		}
		due, err := present.ParseDue(editDue, loc)
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	if patch.Name == nil && patch.Task == nil && patch.DueDate == nil {
		return fmt.Errorf("nothing to change: use --name, --task or --due")
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	d, err := resolveID(s, args[0])
	if err != nil {
		return err
	}

	updated, found, err := s.Update(cmd.Context(), d.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update deadline: %w", err)
	}
	if !found {
		return fmt.Errorf("deadline not found: %s", args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s (ID: %s)\n", updated.Name, updated.ID)
	return nil
}
