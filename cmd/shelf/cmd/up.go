/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/config"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newUpCmd represents the up command
func newUpCmd(c *di.Container) *cobra.Command {
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap and start the ShelfDB server",
		Long: `Bootstrap ShelfDB by creating the configuration and API key if they don't
exist, then start the REST API server. This is the recommended way to get
ShelfDB running.

Examples:
  shelf up
  shelf up --data-file ./mydata/books.txt --port 9000
  shelf up --config ./custom-config.yaml --print-keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeys, _ := cmd.Flags().GetBool("print-keys")
			path := configPath(cmd)
			cfg := c.Config()

			if config.ConfigExists(path) {
				cmd.Printf("✅ Loaded existing configuration from %s\n", path)
			} else {
				cmd.Printf("🔧 First run detected. Bootstrapping ShelfDB...\n")

				bootstrapped, err := config.BootstrapConfig(path, cfg.DataFile)
				if err != nil {
					return err
				}
				// Environment and flags still win over the new file.
				if cfg.Security.APIKey == "auto" {
					cfg.Security.APIKey = bootstrapped.Security.APIKey
				}

				cmd.Printf("✅ Configuration created at %s\n", path)
				if printKeys {
					cmd.Printf("\n🔑 API Key: %s\n", bootstrapped.Security.APIKey)
					cmd.Printf("\n⚠️  Store this key securely! It is also saved in %s\n", path)
				}
			}

			applyServerFlags(cmd, cfg)

			cmd.Printf("🚀 Starting ShelfDB server on %s\n", cfg.Addr())
			cmd.Printf("📁 Data file: %s\n", cfg.DataFile)
			return runServer(cmd, c)
		},
	}

	addServerFlags(upCmd)
	upCmd.Flags().Bool("print-keys", false, "Print the generated API key to the console")
	return upCmd
}
