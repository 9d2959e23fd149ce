package driving

import (
	"context"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// RawDocument is the engine's input boundary: UTF-8 text plus a
// stable, path-like key. File discovery is the caller's concern.
type RawDocument struct {
	Key  string
	Text string
}

// BatchResult summarises a batch ingestion run.
type BatchResult struct {
	// Ingested counts documents accepted in this run.
	Ingested int

	// Failures lists documents whose ingestion failed. A failure
	// never aborts the rest of the batch.
	Failures []domain.ParseFailure
}

// Indexer is the engine's driving port: a caller-owned corpus index
// with lifecycle New → Ingest* → Query*/Report → Reset.
type Indexer interface {
	// Ingest parses and indexes one document, replacing any prior
	// contribution under the same key atomically: concurrent queries
	// see fully-old or fully-new state, never a mix. A parse failure
	// leaves prior state for the key untouched.
	Ingest(ctx context.Context, key, text string) (*domain.IngestResult, error)

	// IngestBatch ingests documents on a bounded worker pool.
	// Cancelling the context stops scheduling further documents
	// without corrupting already-completed ones.
	IngestBatch(ctx context.Context, docs []RawDocument) (*BatchResult, error)

	// Remove drops a document's contribution from the corpus.
	Remove(ctx context.Context, key string) error

	// QueryByHeading returns headings whose text or slug contains the
	// given substring, case-insensitively.
	QueryByHeading(ctx context.Context, substr string) ([]domain.HeadingHit, error)

	// QueryByLanguage returns code blocks whose normalised language
	// tag matches exactly.
	QueryByLanguage(ctx context.Context, lang string) ([]domain.CodeBlockRecord, error)

	// QueryBrokenLinks returns all broken anchors, broken relative
	// links and dangling TOC links across the corpus.
	QueryBrokenLinks(ctx context.Context) ([]domain.ValidationIssue, error)

	// QueryExternalLinks returns every recorded external link.
	// Nothing is ever dereferenced.
	QueryExternalLinks(ctx context.Context) ([]domain.ExternalRef, error)

	// Documents returns per-document stats, sorted by key.
	Documents(ctx context.Context) ([]domain.Stats, error)

	// Report generates the deterministic validation report.
	Report(ctx context.Context) (*domain.Report, error)

	// Reset clears all corpus state.
	Reset(ctx context.Context) error
}
