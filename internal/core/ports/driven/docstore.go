package driven

import (
	"context"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// DocumentStore persists parsed documents keyed by their corpus key.
// The in-memory adapter backs the default engine; the SQLite adapter
// lets host applications keep a corpus across restarts.
type DocumentStore interface {
	// Save stores or replaces the document under its key.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by key. Returns domain.ErrNotFound
	// when the key is unknown.
	Get(ctx context.Context, key string) (*domain.Document, error)

	// Delete removes a document. Deleting an unknown key is a no-op.
	Delete(ctx context.Context, key string) error

	// Keys returns all known document keys in unspecified order.
	Keys(ctx context.Context) ([]string, error)

	// List returns all documents in unspecified order.
	List(ctx context.Context) ([]domain.Document, error)

	// Clear removes every document.
	Clear(ctx context.Context) error
}
