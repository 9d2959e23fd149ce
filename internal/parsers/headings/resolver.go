// Package headings builds heading trees from block sequences, computes
// GitHub-style slug anchors, detects table-of-contents lists and
// cross-validates them against the resolved tree.
package headings

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// Resolver turns heading blocks into a slugged heading tree.
type Resolver struct{}

// New creates a new heading resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve builds the heading tree for a block sequence. A heading at
// level L attaches to the nearest preceding heading with a smaller
// level that is still open; level skips (H1 directly to H3) attach to
// the nearest valid ancestor without error.
func (r *Resolver) Resolve(blks []domain.Block) *domain.HeadingTree {
	tree := domain.NewHeadingTree()
	seen := make(map[string]int)

	// Stack of open arena indices, one per level currently nested.
	var open []int

	for _, b := range blks {
		if b.Kind != domain.BlockHeading {
			continue
		}

		// Pop anything at the same or deeper level.
		for len(open) > 0 && tree.Nodes[open[len(open)-1]].Level >= b.Level {
			open = open[:len(open)-1]
		}
		parent := -1
		if len(open) > 0 {
			parent = open[len(open)-1]
		}

		idx := tree.Add(domain.HeadingNode{
			Level:  b.Level,
			Text:   b.Text,
			Slug:   uniqueSlug(b.Text, seen),
			Line:   b.Line,
			Parent: parent,
		})
		open = append(open, idx)
	}

	return tree
}

// Slugify computes the bare GitHub-style anchor for heading text:
// lowercase, strip everything except alphanumerics, spaces and
// hyphens, collapse space runs to single hyphens, trim hyphens.
// It does not apply collision suffixes; see uniqueSlug.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte('-')
			}
			lastSpace = true
		}
	}

	return strings.Trim(b.String(), "-")
}

// uniqueSlug applies the first-occurrence-wins collision rule: the
// first "setup" keeps the bare slug, repeats become setup-1, setup-2…
// in document order.
func uniqueSlug(text string, seen map[string]int) string {
	base := Slugify(text)
	n, dup := seen[base]
	seen[base] = n + 1
	if !dup {
		return base
	}
	// A generated suffix slug may itself collide with a literal
	// heading; keep counting until it is free.
	for {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}
