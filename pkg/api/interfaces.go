// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/store"
)

// BookRepository is the slice of the book store the HTTP layer depends on
type BookRepository interface {
	Add(book codec.Book) error
	Update(book codec.Book) error
	DeleteByID(id string) error
	FindByID(id string) (codec.Book, bool)
	List() []codec.Book
	Stats() store.Stats
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, repo BookRepository, config ServerConfig, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
