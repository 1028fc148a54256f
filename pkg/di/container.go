// Package di provides dependency injection container
package di

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ssargent/shelfdb/pkg/api" //nolint:depguard
	"github.com/ssargent/shelfdb/pkg/config"
	"github.com/ssargent/shelfdb/pkg/store"
)

// Container holds all the dependencies for the application. It owns the
// single process-wide book store, which is opened on first use.
type Container struct {
	serverFactory api.ServerFactory

	config *config.Config
	logger *slog.Logger

	storeOnce sync.Once
	store     *store.BookStore
	storeErr  error
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		config:        config.DefaultConfig(),
		logger:        slog.Default(),
	}
}

// Configure sets the configuration and logger used to build dependencies.
// It has no effect on a store that is already open.
func (c *Container) Configure(cfg *config.Config, logger *slog.Logger) {
	if cfg != nil {
		c.config = cfg
	}
	if logger != nil {
		c.logger = logger
	}
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// BookStore returns the shared book store, opening it on the first call.
// Every caller gets the same instance, or the same error.
func (c *Container) BookStore() (*store.BookStore, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = store.Open(store.BookStoreConfig{
			FilePath: c.config.DataFile,
			Logger:   c.logger,
		})
		if c.storeErr != nil {
			c.storeErr = fmt.Errorf("failed to open book store: %w", c.storeErr)
		}
	})
	return c.store, c.storeErr
}

// Close closes the book store if it was opened
func (c *Container) Close() error {
	c.storeOnce.Do(func() {
		// Never opened; later BookStore calls fail instead of opening.
		c.storeErr = store.ErrStoreClosed
	})
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
