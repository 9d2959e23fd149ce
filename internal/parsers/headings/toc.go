package headings

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// anchorLinkRe matches a markdown link whose target is an in-document
// anchor, e.g. [Setup](#setup).
var anchorLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(#([^)\s]+)\)`)

// TocBlock is a detected table-of-contents list.
type TocBlock struct {
	Entries []domain.TocEntry

	// Line is the first list item's source line.
	Line int
}

// DetectTOC identifies the table-of-contents list in a block sequence,
// returning nil when no list qualifies. A list qualifies when it
// immediately follows a heading titled "Table of Contents" (or "TOC",
// or "Contents"), or when every one of its items is an internal anchor
// link. The heuristic lives here, in one place, so it can be tested on
// its own.
func DetectTOC(blks []domain.Block, flattenNested bool) *TocBlock {
	for i := 0; i < len(blks); i++ {
		b := blks[i]

		if b.Kind == domain.BlockHeading && isTocTitle(b.Text) {
			if toc := collectList(blks, nextListItem(blks, i+1), flattenNested, false); toc != nil {
				return toc
			}
			continue
		}

		if b.Kind == domain.BlockListItem {
			if toc := collectList(blks, i, flattenNested, true); toc != nil {
				return toc
			}
			// Skip past this list so we do not re-test its tail.
			for i < len(blks) && blks[i].Kind == domain.BlockListItem {
				i++
			}
			i--
		}
	}
	return nil
}

// isTocTitle reports whether heading text names a table of contents.
func isTocTitle(text string) bool {
	switch Slugify(text) {
	case "table-of-contents", "toc", "contents":
		return true
	}
	return false
}

// nextListItem returns the index of the first list item at or after
// start, skipping nothing else: a TOC list must immediately follow its
// heading, so any intervening non-list block disqualifies it.
func nextListItem(blks []domain.Block, start int) int {
	if start < len(blks) && blks[start].Kind == domain.BlockListItem {
		return start
	}
	return -1
}

// collectList gathers the contiguous run of list items starting at
// idx into TOC entries. When strict is true every item must be an
// internal anchor link for the list to qualify. When flattenNested is
// false, nested sub-bullets are skipped instead of collected.
func collectList(blks []domain.Block, idx int, flattenNested, strict bool) *TocBlock {
	if idx < 0 {
		return nil
	}

	toc := &TocBlock{Line: blks[idx].Line}
	for ; idx < len(blks) && blks[idx].Kind == domain.BlockListItem; idx++ {
		item := blks[idx]
		m := anchorLinkRe.FindStringSubmatch(item.Text)
		if m == nil {
			if strict {
				return nil
			}
			continue
		}
		if !flattenNested && item.Depth > 0 {
			continue
		}
		toc.Entries = append(toc.Entries, domain.TocEntry{
			Text:   m[1],
			Anchor: m[2],
			Line:   item.Line,
			Depth:  item.Depth,
		})
	}

	if len(toc.Entries) == 0 {
		return nil
	}
	return toc
}

// ValidateTOC cross-checks declared TOC entries against the resolved
// heading tree. Each entry whose anchor matches no slug yields a
// dangling-TOC-link issue; each heading inside the configured level
// window with no entry yields an advisory unlisted-heading issue.
func ValidateTOC(
	docKey string,
	tree *domain.HeadingTree,
	entries []domain.TocEntry,
	settings domain.Settings,
) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	for _, e := range entries {
		if !tree.HasSlug(e.Anchor) {
			issues = append(issues, domain.ValidationIssue{
				Kind:        domain.IssueDanglingTocLink,
				DocumentKey: docKey,
				Line:        e.Line,
				Anchor:      e.Anchor,
				Detail:      "TOC entry " + strings.TrimSpace(e.Text),
			})
		}
	}

	// The unlisted-heading check only applies when the document
	// declares a TOC at all.
	if len(entries) == 0 {
		return issues
	}

	listed := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		listed[e.Anchor] = struct{}{}
	}
	for _, n := range tree.Nodes {
		if n.Level < settings.TocMinLevel || n.Level > settings.TocMaxLevel {
			continue
		}
		// The TOC's own heading never lists itself.
		if isTocTitle(n.Text) {
			continue
		}
		if _, ok := listed[n.Slug]; !ok {
			issues = append(issues, domain.ValidationIssue{
				Kind:        domain.IssueUnlistedHeading,
				DocumentKey: docKey,
				Line:        n.Line,
				Slug:        n.Slug,
			})
		}
	}

	return issues
}
