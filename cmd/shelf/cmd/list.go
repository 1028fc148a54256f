package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/catalog"
	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newListCmd represents the list command
func newListCmd(c *di.Container) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books with search, sort and paging",
		Long: `List books from the catalog.

Examples:
  shelf list
  shelf list --search herbert --sort date --page 2
  shelf list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			sortKey, _ := cmd.Flags().GetString("sort")
			page, _ := cmd.Flags().GetInt("page")
			pageSize, _ := cmd.Flags().GetInt("page-size")
			asJSON, _ := cmd.Flags().GetBool("json")

			if !cmd.Flags().Changed("page-size") {
				pageSize = c.Config().Server.PageSize
			}

			bookStore, err := loadedStore(cmd.Context(), c)
			if err != nil {
				return err
			}

			result := catalog.List(bookStore.List(), catalog.Query{
				Search:   search,
				Sort:     sortKey,
				Page:     page,
				PageSize: pageSize,
			})

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATALOG\tPUBLISHED\tQTY")
			for _, b := range result.Books {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
					b.ID, b.Title, b.Author, b.CatalogNumber, b.PublicationDate.Format(codec.DateLayout), b.Quantity)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d books, sorted by %s)\n",
				result.Page, max(result.TotalPages, 1), result.TotalItems, result.Sort)
			return nil
		},
	}

	flags := listCmd.Flags()
	flags.String("search", "", "Case-insensitive filter over id, title, author and catalog number")
	flags.String("sort", catalog.SortByID, "Sort key: id, title, author, catalog, date, quantity")
	flags.Int("page", 1, "1-based page number")
	flags.Int("page-size", catalog.DefaultPageSize, "Books per page")
	flags.Bool("json", false, "Print the page as JSON")
	return listCmd
}
