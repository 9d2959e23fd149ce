// Package sqlite provides a persistent DocumentStore so host
// applications can keep an ingested corpus across restarts. The core
// engine defines no file format; this adapter is optional and plugs
// into the same driven port as the in-memory store.
//
// The index itself holds its query structures in memory, so after a
// restart a host rebuilds them by listing the reopened store and
// re-ingesting each document's raw text:
//
//	store, _ := sqlite.NewDocumentStore(dir)
//	idx := services.NewIndexService(store, settings)
//	docs, _ := store.List(ctx)
//	for _, doc := range docs {
//		idx.Ingest(ctx, doc.Key, doc.Raw)
//	}
//
// Get and List return fully rehydrated documents (the derived parse
// state round-trips through the JSON column and the heading tree's
// slug lookup is rebuilt), so hosts can also read persisted artifacts
// directly without an index.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mdcorpus/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mdcorpus/internal/core/domain"
	"github.com/custodia-labs/mdcorpus/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// derivedDoc bundles the parse artifacts persisted as one JSON value.
// The raw text and code blocks are stored in their own columns.
type derivedDoc struct {
	Blocks     []domain.Block      `json:"blocks"`
	Headings   *domain.HeadingTree `json:"headings"`
	Links      []domain.Link       `json:"links"`
	TocEntries []domain.TocEntry   `json:"toc_entries,omitempty"`
}

// DocumentStore is a SQLite-backed implementation of
// driven.DocumentStore.
type DocumentStore struct {
	db   *sql.DB
	path string
}

// NewDocumentStore opens (or creates) the corpus database at dataDir.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("open corpus database: %w: empty data directory", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")

	// WAL mode for concurrent readers during ingestion.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &DocumentStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *DocumentStore) Path() string {
	return s.path
}

// Save stores or replaces a document and its code block rows in one
// transaction.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	derivedJSON, err := json.Marshal(derivedDoc{
		Blocks:     doc.Blocks,
		Headings:   doc.Headings,
		Links:      doc.Links,
		TocEntries: doc.TocEntries,
	})
	if err != nil {
		return fmt.Errorf("marshalling derived state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (key, revision, raw, derived, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			revision = excluded.revision,
			raw = excluded.raw,
			derived = excluded.derived,
			ingested_at = excluded.ingested_at
	`, doc.Key, doc.Revision, doc.Raw, string(derivedJSON), doc.IngestedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	// Code block rows are regenerated wholesale with the document.
	if _, err := tx.ExecContext(ctx, "DELETE FROM code_blocks WHERE document_key = ?", doc.Key); err != nil {
		return fmt.Errorf("clearing code blocks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO code_blocks (id, document_key, language, is_diagram, body, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, cb := range doc.CodeBlocks {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), cb.DocumentKey,
			cb.Language, cb.IsDiagram, cb.Body, cb.StartLine, cb.EndLine); err != nil {
			return fmt.Errorf("saving code block: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a document by key.
func (s *DocumentStore) Get(ctx context.Context, key string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, revision, raw, derived, ingested_at
		FROM documents WHERE key = ?
	`, key)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	doc.CodeBlocks, err = s.codeBlocks(ctx, key)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and, through the foreign key cascade, its
// code block rows.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Keys returns all document keys.
func (s *DocumentStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM documents")
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// List returns all documents with their code blocks.
func (s *DocumentStore) List(ctx context.Context) ([]domain.Document, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	docs := make([]domain.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := s.Get(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // deleted between queries
			}
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Clear removes every document.
func (s *DocumentStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// codeBlocks loads the code block rows for a document.
func (s *DocumentStore) codeBlocks(ctx context.Context, key string) ([]domain.CodeBlockRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_key, language, is_diagram, body, start_line, end_line
		FROM code_blocks WHERE document_key = ?
		ORDER BY start_line
	`, key)
	if err != nil {
		return nil, fmt.Errorf("querying code blocks: %w", err)
	}
	defer rows.Close()

	var records []domain.CodeBlockRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.CodeBlockRecord
		if err := rows.Scan(&r.DocumentKey, &r.Language, &r.IsDiagram,
			&r.Body, &r.StartLine, &r.EndLine); err != nil {
			return nil, fmt.Errorf("scanning code block: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating code blocks: %w", err)
	}
	return records, nil
}

// scanDocument scans a single document row and rehydrates its derived
// state.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var derivedJSON string

	if err := row.Scan(&doc.Key, &doc.Revision, &doc.Raw, &derivedJSON, &doc.IngestedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	var derived derivedDoc
	if err := json.Unmarshal([]byte(derivedJSON), &derived); err != nil {
		return nil, fmt.Errorf("unmarshalling derived state: %w", err)
	}
	doc.Blocks = derived.Blocks
	doc.Headings = derived.Headings
	doc.Links = derived.Links
	doc.TocEntries = derived.TocEntries

	// The slug lookup is not serialised; rebuild it.
	if doc.Headings != nil {
		doc.Headings.Reindex()
	}

	return &doc, nil
}

// migrate runs all pending migrations.
func (s *DocumentStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
