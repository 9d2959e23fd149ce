// Package graph maintains the corpus-wide cross-reference graph:
// every document's outgoing links, resolved against its own heading
// slugs and the set of known document keys. Updates are local to the
// changed document; the effect a change has on links pointing *at*
// that document is recomputed lazily on the next query, so a single
// document update never costs a full corpus rebuild.
package graph

import (
	"sort"
	"sync"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
	"github.com/custodia-labs/mdcorpus/internal/parsers/links"
)

// node is one document's contribution to the graph.
type node struct {
	links []domain.Link

	// slugs are the document's own heading anchors.
	slugs map[string]struct{}

	// anchorIssues are stable for the document's lifetime: internal
	// anchors only depend on the document itself.
	anchorIssues []domain.ValidationIssue

	// relativeIssues are a cache against the key set that existed at
	// the last validation; invalidated whenever the corpus changes.
	relativeIssues []domain.ValidationIssue
}

// LinkGraph resolves links across the corpus. The zero value is not
// usable; call New.
type LinkGraph struct {
	mu    sync.RWMutex
	nodes map[string]*node

	// stale is set by any add or remove: relative-link resolution for
	// every document must be recomputed on the next query.
	stale bool
}

// New creates an empty link graph.
func New() *LinkGraph {
	return &LinkGraph{nodes: make(map[string]*node)}
}

// AddDocument inserts or replaces a document's edge set and returns
// the document's link issues as of this update. Only this document's
// edges are recomputed; other documents are revalidated lazily.
func (g *LinkGraph) AddDocument(doc *domain.Document) []domain.ValidationIssue {
	slugs := make(map[string]struct{})
	if doc.Headings != nil {
		for _, s := range doc.Headings.Slugs() {
			slugs[s] = struct{}{}
		}
	}

	n := &node{
		links: doc.Links,
		slugs: slugs,
	}
	for _, l := range doc.Links {
		if l.Kind != domain.LinkInternal {
			continue
		}
		if _, ok := slugs[l.Target]; !ok {
			n.anchorIssues = append(n.anchorIssues, domain.ValidationIssue{
				Kind:        domain.IssueBrokenAnchor,
				DocumentKey: doc.Key,
				Line:        l.Line,
				Anchor:      l.Target,
			})
		}
	}

	g.mu.Lock()
	g.nodes[doc.Key] = n
	n.relativeIssues = g.resolveRelative(doc.Key, n)
	g.stale = true

	// Snapshot while still holding the lock: the stale recompute in
	// BrokenLinks rewrites relativeIssues on every node.
	issues := make([]domain.ValidationIssue, 0, len(n.anchorIssues)+len(n.relativeIssues))
	issues = append(issues, n.anchorIssues...)
	issues = append(issues, n.relativeIssues...)
	g.mu.Unlock()

	domain.SortIssues(issues)
	return issues
}

// RemoveDocument drops a document's edges. Links from other documents
// that targeted it become broken on the next query.
func (g *LinkGraph) RemoveDocument(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[key]; !ok {
		return
	}
	delete(g.nodes, key)
	g.stale = true
}

// BrokenLinks returns every broken anchor and broken relative link in
// the corpus, sorted by (document key, line, kind). Stale relative
// resolutions are recomputed here, not on update.
func (g *LinkGraph) BrokenLinks() []domain.ValidationIssue {
	g.mu.Lock()
	if g.stale {
		for key, n := range g.nodes {
			n.relativeIssues = g.resolveRelative(key, n)
		}
		g.stale = false
	}

	var issues []domain.ValidationIssue
	for _, n := range g.nodes {
		issues = append(issues, n.anchorIssues...)
		issues = append(issues, n.relativeIssues...)
	}
	g.mu.Unlock()

	domain.SortIssues(issues)
	return issues
}

// ExternalRefs returns every recorded external link, sorted by
// (document key, line, url). Targets are terminal nodes: nothing is
// ever dereferenced.
func (g *LinkGraph) ExternalRefs() []domain.ExternalRef {
	g.mu.RLock()
	var refs []domain.ExternalRef
	for key, n := range g.nodes {
		for _, l := range n.links {
			if l.Kind == domain.LinkExternal {
				refs = append(refs, domain.ExternalRef{
					DocumentKey: key,
					URL:         l.Target,
					Line:        l.Line,
				})
			}
		}
	}
	g.mu.RUnlock()

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].DocumentKey != refs[j].DocumentKey {
			return refs[i].DocumentKey < refs[j].DocumentKey
		}
		if refs[i].Line != refs[j].Line {
			return refs[i].Line < refs[j].Line
		}
		return refs[i].URL < refs[j].URL
	})
	return refs
}

// Len returns the number of documents in the graph.
func (g *LinkGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Reset drops all graph state.
func (g *LinkGraph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = make(map[string]*node)
	g.stale = false
}

// resolveRelative validates one document's relative links against the
// current key set. Caller must hold the write lock.
func (g *LinkGraph) resolveRelative(key string, n *node) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, l := range n.links {
		if l.Kind != domain.LinkRelative {
			continue
		}
		if g.keyKnown(links.Resolve(key, l.Target)) || g.keyKnown(links.Normalise(l.Target)) {
			continue
		}
		issues = append(issues, domain.ValidationIssue{
			Kind:        domain.IssueBrokenRelativeLink,
			DocumentKey: key,
			Line:        l.Line,
			Path:        l.Target,
		})
	}
	return issues
}

// keyKnown reports membership in the document key set.
func (g *LinkGraph) keyKnown(key string) bool {
	_, ok := g.nodes[key]
	return ok
}
