package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newAddCmd represents the add command
func newAddCmd(c *di.Container) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Long: `Add a book to the catalog and rewrite the data file.

Example:
  shelf add --id LIB-001 --title Dune --author Herbert \
    --catalog 978-0-44-117271-9 --published 1965-08-01 --quantity 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			title, _ := cmd.Flags().GetString("title")
			author, _ := cmd.Flags().GetString("author")
			catalogNumber, _ := cmd.Flags().GetString("catalog")
			publishedRaw, _ := cmd.Flags().GetString("published")
			quantity, _ := cmd.Flags().GetInt("quantity")

			published, err := codec.ParseDate(publishedRaw)
			if err != nil {
				return fmt.Errorf("invalid --published %q: expected YYYY-MM-DD", publishedRaw)
			}

			bookStore, err := c.BookStore()
			if err != nil {
				return err
			}

			book := codec.NewBook(id, title, author, catalogNumber, published, quantity)
			if err := bookStore.Add(book); err != nil {
				return err
			}
			if err := checkPersisted(bookStore); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", book)
			return nil
		},
	}

	flags := addCmd.Flags()
	flags.String("id", "", "Book id (LIB-nnn)")
	flags.String("title", "", "Title")
	flags.String("author", "", "Author")
	flags.String("catalog", "", "13-digit catalog number, plain or hyphenated")
	flags.String("published", "", "Publication date (YYYY-MM-DD)")
	flags.Int("quantity", 1, "Copies on hand")
	for _, name := range []string{"id", "title", "author", "catalog", "published"} {
		if err := addCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return addCmd
}
