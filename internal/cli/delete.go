package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [deadline-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a deadline",
	Long: `Delete a deadline by its ID or a unique ID prefix.

Examples:
  deadlines delete 1770454800000
  deadlines rm 4`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	d, err := resolveID(s, args[0])
	if err != nil {
		return err
	}

	if _, err := s.Remove(cmd.Context(), d.ID); err != nil {
		return fmt.Errorf("failed to delete deadline: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted: %s \"%s\"\n", d.Name, d.Task)
	return nil
}
