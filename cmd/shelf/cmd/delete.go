package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newDeleteCmd represents the delete command
func newDeleteCmd(c *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book from the catalog",
		Long: `Remove a book from the catalog and rewrite the data file.
Deleting an id that is not present succeeds without changes.

Example:
  shelf delete LIB-001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			bookStore, err := loadedStore(cmd.Context(), c)
			if err != nil {
				return err
			}
			_, present := bookStore.FindByID(id)

			if err := bookStore.DeleteByID(id); err != nil {
				return err
			}
			if err := checkPersisted(bookStore); err != nil {
				return err
			}

			if !present {
				fmt.Fprintf(cmd.OutOrStdout(), "%s not present\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
