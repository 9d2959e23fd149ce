package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
	"github.com/custodia-labs/mdcorpus/internal/core/ports/driven"
	"github.com/custodia-labs/mdcorpus/internal/core/ports/driving"
	"github.com/custodia-labs/mdcorpus/internal/graph"
	"github.com/custodia-labs/mdcorpus/internal/logger"
	"github.com/custodia-labs/mdcorpus/internal/parsers/blocks"
	"github.com/custodia-labs/mdcorpus/internal/parsers/codefence"
	"github.com/custodia-labs/mdcorpus/internal/parsers/headings"
	"github.com/custodia-labs/mdcorpus/internal/parsers/links"
	"github.com/custodia-labs/mdcorpus/internal/report"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// headingEntry is the pre-lowered form of one heading for substring
// queries.
type headingEntry struct {
	slug      string
	text      string
	path      []string
	lowerSlug string
	lowerText string
}

// IndexService is the caller-owned corpus index. There is no hidden
// singleton: lifecycle is NewIndexService → Ingest* → Query*/Report →
// drop. Ingestion is serialized per document key; queries run
// concurrently with updates to other keys.
type IndexService struct {
	settings domain.Settings
	store    driven.DocumentStore
	graph    *graph.LinkGraph

	splitter   *blocks.Splitter
	resolver   *headings.Resolver
	classifier *codefence.Classifier
	extractor  *links.Extractor

	keys keyLocks

	// mu guards the derived lookup structures below. Per-key ingest
	// replaces a key's entries in one critical section so readers see
	// fully-old or fully-new state for that key.
	mu            sync.RWMutex
	headingsByDoc map[string][]headingEntry
	codeByDoc     map[string][]domain.CodeBlockRecord
	tocIssues     map[string][]domain.ValidationIssue
	failures      map[string]domain.ParseFailure
	stats         map[string]domain.Stats
	revisions     map[string]uint64
}

// NewIndexService creates an index backed by the given document store.
func NewIndexService(store driven.DocumentStore, settings domain.Settings) *IndexService {
	return &IndexService{
		settings:      settings.Normalised(),
		store:         store,
		graph:         graph.New(),
		splitter:      blocks.New(),
		resolver:      headings.New(),
		classifier:    codefence.New(),
		extractor:     links.New(),
		headingsByDoc: make(map[string][]headingEntry),
		codeByDoc:     make(map[string][]domain.CodeBlockRecord),
		tocIssues:     make(map[string][]domain.ValidationIssue),
		failures:      make(map[string]domain.ParseFailure),
		stats:         make(map[string]domain.Stats),
		revisions:     make(map[string]uint64),
	}
}

// Ingest parses and indexes one document.
//
// A tokenizer failure is fatal for this document only: it is recorded
// as a parse failure, prior state for the key stays untouched, and the
// error is returned. Validation issues are not errors; they ride along
// in the result.
func (s *IndexService) Ingest(ctx context.Context, key, text string) (*domain.IngestResult, error) {
	if key == "" {
		return nil, fmt.Errorf("ingest: %w: empty document key", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("ingest %s: %w", key, domain.ErrInvalidEncoding)
	}

	unlock := s.keys.lock(key)
	defer unlock()

	blks, err := s.splitter.Split(text)
	if err != nil {
		s.recordFailure(key, err)
		return nil, fmt.Errorf("tokenize %s: %w", key, err)
	}

	tree := s.resolver.Resolve(blks)

	var entries []domain.TocEntry
	if toc := headings.DetectTOC(blks, s.settings.FlattenNestedTOC); toc != nil {
		entries = toc.Entries
	}
	tocIssues := headings.ValidateTOC(key, tree, entries, s.settings)

	records := s.classifier.Classify(key, blks)
	docLinks := s.extractor.Extract(blks)

	doc := &domain.Document{
		Key:        key,
		Raw:        text,
		Blocks:     blks,
		Headings:   tree,
		CodeBlocks: records,
		Links:      docLinks,
		TocEntries: entries,
		IngestedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	doc.Revision = s.revisions[key] + 1

	if err := s.store.Save(ctx, doc); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("save document %s: %w", key, err)
	}

	linkIssues := s.graph.AddDocument(doc)

	s.headingsByDoc[key] = headingEntries(tree)
	s.codeByDoc[key] = records
	s.tocIssues[key] = tocIssues
	s.stats[key] = domain.StatsOf(doc)
	s.revisions[key] = doc.Revision
	delete(s.failures, key)
	s.mu.Unlock()

	logger.Debug("Ingested %s: %d blocks, %d headings, %d issues",
		key, len(blks), tree.Len(), len(tocIssues)+len(linkIssues))

	issues := make([]domain.ValidationIssue, 0, len(tocIssues)+len(linkIssues))
	issues = append(issues, tocIssues...)
	issues = append(issues, linkIssues...)
	domain.SortIssues(issues)

	return &domain.IngestResult{
		DocumentKey: key,
		Blocks:      len(blks),
		Headings:    tree.Len(),
		CodeBlocks:  len(records),
		Links:       len(docLinks),
		Issues:      issues,
	}, nil
}

// IngestBatch ingests documents on a bounded worker pool. One bad
// document never aborts the batch; its failure is reported in the
// result. Context cancellation stops scheduling further documents and
// returns the context error alongside the partial result.
func (s *IndexService) IngestBatch(ctx context.Context, docs []driving.RawDocument) (*driving.BatchResult, error) {
	result := &driving.BatchResult{}
	var resultMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.BatchWorkers)

	for _, raw := range docs {
		if err := gctx.Err(); err != nil {
			break // stop scheduling, completed documents stand
		}
		g.Go(func() error {
			if _, err := s.Ingest(gctx, raw.Key, raw.Text); err != nil {
				resultMu.Lock()
				result.Failures = append(result.Failures, failureOf(raw.Key, err))
				resultMu.Unlock()
				return nil
			}
			resultMu.Lock()
			result.Ingested++
			resultMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].DocumentKey < result.Failures[j].DocumentKey
	})
	logger.Info("Batch ingest complete: %d ingested, %d failed", result.Ingested, len(result.Failures))
	return result, ctx.Err()
}

// Remove drops a document's contribution. Removing an unknown key is
// a no-op.
func (s *IndexService) Remove(ctx context.Context, key string) error {
	unlock := s.keys.lock(key)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	s.graph.RemoveDocument(key)
	delete(s.headingsByDoc, key)
	delete(s.codeByDoc, key)
	delete(s.tocIssues, key)
	delete(s.failures, key)
	delete(s.stats, key)
	delete(s.revisions, key)
	return nil
}

// QueryByHeading returns headings whose text or slug contains substr,
// case-insensitively, sorted by (document key, slug).
func (s *IndexService) QueryByHeading(_ context.Context, substr string) ([]domain.HeadingHit, error) {
	needle := strings.ToLower(substr)

	s.mu.RLock()
	var hits []domain.HeadingHit
	for key, entries := range s.headingsByDoc {
		for _, e := range entries {
			if strings.Contains(e.lowerText, needle) || strings.Contains(e.lowerSlug, needle) {
				hits = append(hits, domain.HeadingHit{
					DocumentKey: key,
					Slug:        e.slug,
					Text:        e.text,
					Path:        e.path,
				})
			}
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DocumentKey != hits[j].DocumentKey {
			return hits[i].DocumentKey < hits[j].DocumentKey
		}
		return hits[i].Slug < hits[j].Slug
	})
	return hits, nil
}

// QueryByLanguage returns code blocks whose normalised language tag
// matches exactly, sorted by (document key, start line). Querying the
// empty string returns untagged blocks.
func (s *IndexService) QueryByLanguage(_ context.Context, lang string) ([]domain.CodeBlockRecord, error) {
	needle := strings.ToLower(strings.TrimSpace(lang))

	s.mu.RLock()
	var out []domain.CodeBlockRecord
	for _, records := range s.codeByDoc {
		for _, r := range records {
			if r.Language == needle {
				out = append(out, r)
			}
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentKey != out[j].DocumentKey {
			return out[i].DocumentKey < out[j].DocumentKey
		}
		return out[i].StartLine < out[j].StartLine
	})
	return out, nil
}

// QueryBrokenLinks returns all broken references in the corpus:
// broken anchors, broken relative links and dangling TOC links.
// Advisory unlisted-heading findings are report-only.
func (s *IndexService) QueryBrokenLinks(_ context.Context) ([]domain.ValidationIssue, error) {
	s.mu.RLock()
	issues := s.graph.BrokenLinks()
	for _, docIssues := range s.tocIssues {
		for _, issue := range docIssues {
			if issue.Kind == domain.IssueDanglingTocLink {
				issues = append(issues, issue)
			}
		}
	}
	s.mu.RUnlock()

	domain.SortIssues(issues)
	return issues, nil
}

// QueryExternalLinks returns every recorded external link.
func (s *IndexService) QueryExternalLinks(_ context.Context) ([]domain.ExternalRef, error) {
	return s.graph.ExternalRefs(), nil
}

// Documents returns per-document stats sorted by key.
func (s *IndexService) Documents(_ context.Context) ([]domain.Stats, error) {
	s.mu.RLock()
	out := make([]domain.Stats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DocumentKey < out[j].DocumentKey })
	return out, nil
}

// Report generates the deterministic validation report for the
// current corpus state.
func (s *IndexService) Report(_ context.Context) (*domain.Report, error) {
	s.mu.RLock()
	issues := s.graph.BrokenLinks()
	for _, docIssues := range s.tocIssues {
		issues = append(issues, docIssues...)
	}
	failures := make([]domain.ParseFailure, 0, len(s.failures))
	for _, f := range s.failures {
		failures = append(failures, f)
	}
	total := len(s.stats)
	s.mu.RUnlock()

	return report.Generate(total, failures, issues), nil
}

// Reset clears all corpus state.
func (s *IndexService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.graph.Reset()
	s.headingsByDoc = make(map[string][]headingEntry)
	s.codeByDoc = make(map[string][]domain.CodeBlockRecord)
	s.tocIssues = make(map[string][]domain.ValidationIssue)
	s.failures = make(map[string]domain.ParseFailure)
	s.stats = make(map[string]domain.Stats)
	s.revisions = make(map[string]uint64)
	return nil
}

// recordFailure stores a parse failure for the report without
// disturbing any prior state for the key.
func (s *IndexService) recordFailure(key string, err error) {
	s.mu.Lock()
	s.failures[key] = failureOf(key, err)
	s.mu.Unlock()
	logger.Warn("Parse failure for %s: %v", key, err)
}

// failureOf converts an ingest error into a report entry, pulling the
// line number out of fence errors.
func failureOf(key string, err error) domain.ParseFailure {
	f := domain.ParseFailure{DocumentKey: key, Reason: err.Error()}
	var fence *domain.UnterminatedFenceError
	if errors.As(err, &fence) {
		f.Line = fence.Line
		f.Reason = fence.Error()
	}
	return f
}

// headingEntries pre-lowers a tree's headings for substring queries.
func headingEntries(tree *domain.HeadingTree) []headingEntry {
	entries := make([]headingEntry, 0, tree.Len())
	for i, n := range tree.Nodes {
		entries = append(entries, headingEntry{
			slug:      n.Slug,
			text:      n.Text,
			path:      tree.Path(i),
			lowerSlug: strings.ToLower(n.Slug),
			lowerText: strings.ToLower(n.Text),
		})
	}
	return entries
}
