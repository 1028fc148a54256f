/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/api"
	"github.com/ssargent/shelfdb/pkg/config"
	"github.com/ssargent/shelfdb/pkg/di"
)

// newServeCmd represents the serve command
func newServeCmd(c *di.Container) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the ShelfDB REST API server.

The catalog loads in the background; requests are served immediately and
writes wait for the load to finish. An API key of "auto" generates a
key for this run only.

Examples:
  shelf serve
  shelf serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServerFlags(cmd, c.Config())
			return runServer(cmd, c)
		},
	}

	addServerFlags(serveCmd)
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	return serveCmd
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
}

// applyServerFlags copies explicitly set server flags over the configuration
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("bind") {
		cfg.Bind, _ = flags.GetString("bind")
	}
	if flags.Lookup("api-key") != nil && flags.Changed("api-key") {
		cfg.Security.APIKey, _ = flags.GetString("api-key")
	}
}

// runServer opens the shared store and serves the API until interrupted
func runServer(cmd *cobra.Command, c *di.Container) error {
	cfg := c.Config()

	if cfg.Security.APIKey == "auto" {
		key, err := config.GenerateSecureKey(32)
		if err != nil {
			return err
		}
		cfg.Security.APIKey = key
		cmd.Printf("Generated API key for this run: %s\n", key)
	}

	bookStore, err := c.BookStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		result, err := bookStore.WaitLoaded(ctx)
		if err == nil && result.Err != nil {
			c.Logger().Warn("data file only partially loaded", "loaded", result.Loaded, "error", result.Err)
		}
	}()

	starter := c.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, bookStore, api.ServerConfig{
		Bind:      cfg.Bind,
		Port:      cfg.Port,
		APIKey:    cfg.Security.APIKey,
		PageSize:  cfg.Server.PageSize,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	}, c.Logger())
}
