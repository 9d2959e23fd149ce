// Package links finds outgoing references in text-bearing blocks and
// classifies them as internal anchors, relative document paths or
// external URLs. It also owns the path normalisation used to resolve
// relative links against corpus keys.
package links

import (
	"path"
	"regexp"
	"strings"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// linkRe matches markdown links and images: [text](target) and
// ![alt](target). Image targets are references too and get checked
// the same way.
var linkRe = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// Extractor finds links in a block sequence.
type Extractor struct{}

// New creates a new link extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns all links in document order with exact line
// attribution. Fenced code bodies are never scanned; a link inside a
// code sample is content, not a reference.
func (e *Extractor) Extract(blks []domain.Block) []domain.Link {
	var out []domain.Link
	for _, b := range blks {
		switch b.Kind {
		case domain.BlockParagraph, domain.BlockBlockquote:
			// Multi-line text: attribute each match to its own line.
			for offset, line := range strings.Split(b.Text, "\n") {
				out = append(out, extractLine(line, b.Line+offset)...)
			}
		case domain.BlockHeading, domain.BlockListItem:
			out = append(out, extractLine(b.Text, b.Line)...)
		case domain.BlockTableRow:
			for _, cell := range b.Cells {
				out = append(out, extractLine(cell, b.Line)...)
			}
		case domain.BlockFencedCode:
			// Skipped.
		}
	}
	return out
}

// extractLine finds links in a single line of text.
func extractLine(text string, lineNo int) []domain.Link {
	var out []domain.Link
	for _, m := range linkRe.FindAllStringSubmatch(text, -1) {
		target := m[2]
		link := domain.Link{
			RawText: m[1],
			Line:    lineNo,
		}
		switch {
		case strings.HasPrefix(target, "#"):
			link.Kind = domain.LinkInternal
			link.Target = strings.TrimPrefix(target, "#")
		case isExternal(target):
			link.Kind = domain.LinkExternal
			link.Target = target
		default:
			link.Kind = domain.LinkRelative
			// A fragment on a relative link targets the document;
			// cross-document anchors are not resolved.
			if idx := strings.IndexByte(target, '#'); idx >= 0 {
				target = target[:idx]
			}
			link.Target = target
		}
		if link.Kind == domain.LinkRelative && link.Target == "" {
			continue
		}
		out = append(out, link)
	}
	return out
}

// isExternal reports whether a target leaves the corpus.
func isExternal(target string) bool {
	return strings.Contains(target, "://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "//")
}

// Resolve normalises a relative target against the linking document's
// key: leading ./ is stripped and ../ segments collapse through the
// source document's directory.
func Resolve(sourceKey, target string) string {
	dir := path.Dir(sourceKey)
	if dir == "." {
		dir = ""
	}
	return path.Join(dir, target)
}

// Normalise cleans a relative target without joining it to a source
// directory: ./a/../b.md becomes b.md. Used as a fallback for corpora
// keyed by flat names.
func Normalise(target string) string {
	cleaned := path.Clean(target)
	if cleaned == "." {
		return ""
	}
	return cleaned
}
