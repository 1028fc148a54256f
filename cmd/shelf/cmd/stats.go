package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newStatsCmd represents the stats command
func newStatsCmd(c *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bookStore, err := loadedStore(cmd.Context(), c)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(bookStore.Stats())
		},
	}
}
