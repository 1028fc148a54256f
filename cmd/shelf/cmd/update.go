package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/di"
	"github.com/ssargent/shelfdb/pkg/store"
)

// newUpdateCmd represents the update command
func newUpdateCmd(c *di.Container) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing book",
		Long: `Change fields of an existing book. Only the flags given are changed;
the id itself cannot be changed.

Example:
  shelf update LIB-001 --quantity 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookStore, err := loadedStore(cmd.Context(), c)
			if err != nil {
				return err
			}

			book, ok := bookStore.FindByID(args[0])
			if !ok {
				return &store.NotFoundError{ID: args[0]}
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				book.Title, _ = flags.GetString("title")
			}
			if flags.Changed("author") {
				book.Author, _ = flags.GetString("author")
			}
			if flags.Changed("catalog") {
				book.CatalogNumber, _ = flags.GetString("catalog")
			}
			if flags.Changed("published") {
				raw, _ := flags.GetString("published")
				published, err := codec.ParseDate(raw)
				if err != nil {
					return fmt.Errorf("invalid --published %q: expected YYYY-MM-DD", raw)
				}
				book.PublicationDate = published
			}
			if flags.Changed("quantity") {
				book.Quantity, _ = flags.GetInt("quantity")
			}

			if err := bookStore.Update(book); err != nil {
				return err
			}
			if err := checkPersisted(bookStore); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", book)
			return nil
		},
	}

	flags := updateCmd.Flags()
	flags.String("title", "", "Title")
	flags.String("author", "", "Author")
	flags.String("catalog", "", "Catalog number")
	flags.String("published", "", "Publication date (YYYY-MM-DD)")
	flags.Int("quantity", 0, "Copies on hand")
	return updateCmd
}
