/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/ssargent/shelfdb/pkg/config"
	"github.com/ssargent/shelfdb/pkg/di"
	"github.com/ssargent/shelfdb/pkg/logging"
	"github.com/ssargent/shelfdb/pkg/store"
)

// loadTimeout bounds how long read commands wait for the data file to load.
const loadTimeout = 30 * time.Second

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// Execute builds the command tree and runs it.
// This is called by main.main().
func Execute() {
	if container == nil {
		container = di.NewContainer()
	}
	if err := newRootCmd(container).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd represents the base command when called without any subcommands
func newRootCmd(c *di.Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shelf",
		Short: "ShelfDB - file-backed library catalog",
		Long: `ShelfDB keeps a library catalog in memory and mirrors every change
to a flat, pipe-delimited data file.

Configuration is read from the config file, then SHELF_* environment
variables (optionally from a .env file), then command line flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configure(cmd, c)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file path (default is ~/.config/shelf/config.yaml)")
	flags.String("env-file", ".env", "Environment file with SHELF_* overrides")
	flags.StringP("data-file", "f", "", "Data file holding the catalog")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(c),
		newServeCmd(c),
		newUpCmd(c),
		newAddCmd(c),
		newGetCmd(c),
		newListCmd(c),
		newUpdateCmd(c),
		newDeleteCmd(c),
		newStatsCmd(c),
	)

	return rootCmd
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}

// configure resolves file, environment and flag settings into the container
func configure(cmd *cobra.Command, c *di.Container) error {
	path := configPath(cmd)

	cfg := config.DefaultConfig()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return err
	}

	if cmd.Flags().Changed("data-file") {
		cfg.DataFile, _ = cmd.Flags().GetString("data-file")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	logger, err := logging.New(cfg.Logging.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.Configure(cfg, logger)
	return nil
}

// loadedStore returns the shared store once its data file has been read
func loadedStore(ctx context.Context, c *di.Container) (*store.BookStore, error) {
	s, err := c.BookStore()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	result, err := s.WaitLoaded(ctx)
	if err != nil {
		return nil, fmt.Errorf("data file did not finish loading: %w", err)
	}
	if result.Err != nil {
		c.Logger().Warn("data file only partially loaded", "loaded", result.Loaded, "error", result.Err)
	}
	return s, nil
}

// checkPersisted turns a swallowed write-path persist failure into an
// error so the command exits non-zero.
func checkPersisted(s *store.BookStore) error {
	stats := s.Stats()
	if stats.PersistFailures > 0 {
		return errors.New("change kept in memory but the data file was not updated: " + stats.LastPersistError)
	}
	return nil
}
