package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/mdcorpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mdcorpus/internal/core/domain"
	"github.com/custodia-labs/mdcorpus/internal/core/ports/driving"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestIndex() *IndexService {
	return NewIndexService(memory.NewDocumentStore(), domain.DefaultSettings())
}

const guideDoc = `# Guide

## Table of Contents

- [Setup](#setup)
- [Setup](#setup-1)

## Setup

First pass.

## Setup

Second pass, see [details](#setup).

` + "```RUST\nfn main() {}\n```\n\n```mermaid\ngraph TD\n```\n"

func TestIngest_Basics(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	result, err := idx.Ingest(ctx, "guide.md", guideDoc)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "guide.md", result.DocumentKey)
	assert.Equal(t, 4, result.Headings) // Guide, TOC, Setup, Setup
	assert.Equal(t, 2, result.CodeBlocks)
	assert.Empty(t, result.Issues)
}

func TestIngest_EmptyKey(t *testing.T) {
	idx := newTestIndex()
	_, err := idx.Ingest(context.Background(), "", "# x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_InvalidEncoding(t *testing.T) {
	idx := newTestIndex()
	_, err := idx.Ingest(context.Background(), "bad.md", string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
}

func TestIngest_Idempotent(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	first, err := idx.Ingest(ctx, "guide.md", guideDoc)
	require.NoError(t, err)
	hitsBefore, err := idx.QueryByHeading(ctx, "setup")
	require.NoError(t, err)

	second, err := idx.Ingest(ctx, "guide.md", guideDoc)
	require.NoError(t, err)
	hitsAfter, err := idx.QueryByHeading(ctx, "setup")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, hitsBefore, hitsAfter)

	stats, err := idx.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, uint64(2), stats[0].Revision)
}

func TestIngest_ParseFailureKeepsPriorState(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "doc.md", "# Good\n")
	require.NoError(t, err)

	_, err = idx.Ingest(ctx, "doc.md", "# Broken\n\n```go\nnever closed\n")
	require.Error(t, err)
	var fence *domain.UnterminatedFenceError
	require.True(t, errors.As(err, &fence))
	assert.Equal(t, 3, fence.Line)

	// The previous revision is still queryable.
	hits, err := idx.QueryByHeading(ctx, "good")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "good", hits[0].Slug)

	// And the failure shows up in the report.
	rep, err := idx.Report(ctx)
	require.NoError(t, err)
	require.Len(t, rep.ParseFailures, 1)
	assert.Equal(t, "doc.md", rep.ParseFailures[0].DocumentKey)
	assert.Equal(t, 3, rep.ParseFailures[0].Line)
}

func TestIngest_TocScenario(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	// Valid TOC against duplicate headings: zero TOC issues.
	result, err := idx.Ingest(ctx, "guide.md", guideDoc)
	require.NoError(t, err)
	assert.Empty(t, result.Issues)

	// Pointing the second entry at setup-2 produces exactly one
	// dangling TOC link.
	broken := `# Guide

## Table of Contents

- [Setup](#setup)
- [Setup](#setup-2)

## Setup

## Setup
`
	result, err = idx.Ingest(ctx, "guide.md", broken)
	require.NoError(t, err)

	var dangling int
	for _, issue := range result.Issues {
		if issue.Kind == domain.IssueDanglingTocLink {
			dangling++
			assert.Equal(t, "setup-2", issue.Anchor)
		}
	}
	assert.Equal(t, 1, dangling)
}

func TestIngestBatch_PartialFailure(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	// Pre-existing state for the key that will fail.
	_, err := idx.Ingest(ctx, "two.md", "# Old Two\n")
	require.NoError(t, err)

	result, err := idx.IngestBatch(ctx, []driving.RawDocument{
		{Key: "one.md", Text: "# One\n"},
		{Key: "two.md", Text: "# Two\n\n```\nunclosed\n"},
		{Key: "three.md", Text: "# Three\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Ingested)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "two.md", result.Failures[0].DocumentKey)

	// Documents 1 and 3 are queryable.
	hits, err := idx.QueryByHeading(ctx, "one")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	hits, err = idx.QueryByHeading(ctx, "three")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// two.md keeps its prior revision.
	hits, err = idx.QueryByHeading(ctx, "old-two")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "two.md", hits[0].DocumentKey)
}

func TestIngestBatch_Cancelled(t *testing.T) {
	idx := newTestIndex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := make([]driving.RawDocument, 50)
	for i := range docs {
		docs[i] = driving.RawDocument{Key: fmt.Sprintf("doc-%02d.md", i), Text: "# D\n"}
	}

	result, err := idx.IngestBatch(ctx, docs)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	// Whatever completed is intact; nothing is half-indexed.
	stats, err := idx.Documents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Ingested, len(stats))
}

func TestQueryByLanguage(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "guide.md", guideDoc)
	require.NoError(t, err)

	rust, err := idx.QueryByLanguage(ctx, "Rust")
	require.NoError(t, err)
	require.Len(t, rust, 1)
	assert.Equal(t, "rust", rust[0].Language)
	assert.False(t, rust[0].IsDiagram)

	mermaid, err := idx.QueryByLanguage(ctx, "mermaid")
	require.NoError(t, err)
	require.Len(t, mermaid, 1)
	assert.True(t, mermaid[0].IsDiagram)

	none, err := idx.QueryByLanguage(ctx, "cobol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueryByHeading_Substring(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.md", "# Reverse Engineering\n\n## Engine Room\n")
	require.NoError(t, err)

	hits, err := idx.QueryByHeading(ctx, "engine")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// Hits carry the heading path.
	assert.Equal(t, []string{"Reverse Engineering", "Engine Room"}, hits[0].Path)
}

func TestQueryBrokenLinks(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.md", "# A\n\n[bad](#does-not-exist)\n\n[gone](missing.md)\n")
	require.NoError(t, err)

	issues, err := idx.QueryBrokenLinks(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, domain.IssueBrokenAnchor, issues[0].Kind)
	assert.Equal(t, 3, issues[0].Line)
	assert.Equal(t, domain.IssueBrokenRelativeLink, issues[1].Kind)

	// Ingesting the missing target repairs the relative link.
	_, err = idx.Ingest(ctx, "missing.md", "# Found\n")
	require.NoError(t, err)
	issues, err = idx.QueryBrokenLinks(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueBrokenAnchor, issues[0].Kind)
}

func TestQueryExternalLinks(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.md", "[x](https://example.com/page)\n")
	require.NoError(t, err)

	refs, err := idx.QueryExternalLinks(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://example.com/page", refs[0].URL)
}

func TestRemove(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.md", "# A\n")
	require.NoError(t, err)
	_, err = idx.Ingest(ctx, "b.md", "[a](a.md)\n")
	require.NoError(t, err)

	require.NoError(t, idx.Remove(ctx, "a.md"))

	hits, err := idx.QueryByHeading(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, hits) // b.md has no headings

	// b.md's link to a.md is now broken.
	issues, err := idx.QueryBrokenLinks(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueBrokenRelativeLink, issues[0].Kind)
}

func TestReset(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.md", "# A\n")
	require.NoError(t, err)
	require.NoError(t, idx.Reset(ctx))

	stats, err := idx.Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)

	rep, err := idx.Report(ctx)
	require.NoError(t, err)
	assert.Zero(t, rep.TotalDocuments)
}

func TestConcurrentIngestAndQuery(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				key := fmt.Sprintf("doc-%d.md", i%5)
				_, err := idx.Ingest(ctx, key, fmt.Sprintf("# Doc %d\n\n[s](#doc-%d)\n", i, i))
				if err != nil {
					t.Errorf("ingest %s: %v", key, err)
					return
				}
				if _, err := idx.QueryByHeading(ctx, "doc"); err != nil {
					t.Errorf("query: %v", err)
					return
				}
				if _, err := idx.QueryBrokenLinks(ctx); err != nil {
					t.Errorf("broken links: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	stats, err := idx.Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 5)
}
