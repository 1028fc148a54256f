/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/config"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newInitCmd represents the init command
func newInitCmd(c *di.Container) *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a ShelfDB configuration with a fresh API key",
		Long: `Create the ShelfDB configuration file for local use.

This command will:
- Write the config file with secure permissions
- Generate an API key for the REST server
- Record where the catalog data file lives

Examples:
  shelf init
  shelf init --data-file ./data/library_data.txt --config ./shelf.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := configPath(cmd)

			if config.ConfigExists(path) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", path)
				return nil
			}

			cfg, err := config.BootstrapConfig(path, c.Config().DataFile)
			if err != nil {
				return err
			}

			cmd.Printf("✅ ShelfDB configuration written to %s\n", path)
			cmd.Printf("Data file: %s\n", cfg.DataFile)
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
			cmd.Printf("\nYou can now start the server with:\n")
			cmd.Printf("  shelf serve --config %s\n", path)
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	return initCmd
}
