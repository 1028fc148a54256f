package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/di"
	"github.com/ssargent/shelfdb/pkg/store"
)

// newGetCmd represents the get command
func newGetCmd(c *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single book",
		Long: `Show a single book from the catalog.

Example:
  shelf get LIB-001`,
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

			printBook(cmd.OutOrStdout(), book)
			return nil
		},
	}
}

func printBook(w io.Writer, b codec.Book) {
	fmt.Fprintf(w, "ID:         %s\n", b.ID)
	fmt.Fprintf(w, "Title:      %s\n", b.Title)
	fmt.Fprintf(w, "Author:     %s\n", b.Author)
	fmt.Fprintf(w, "Catalog:    %s\n", b.CatalogNumber)
	fmt.Fprintf(w, "Published:  %s\n", b.PublicationDate.Format(codec.DateLayout))
	fmt.Fprintf(w, "Quantity:   %d\n", b.Quantity)
}
