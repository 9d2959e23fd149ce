// Package blocks splits raw document text into a flat sequence of
// block-level units. It operates strictly line by line and never
// interprets inline formatting; that is left to later passes.
package blocks

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// Heading detection is ATX style only. Setext headings (underline
// style) are treated as paragraphs; this is a documented limitation.
var (
	headingRe  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*))?$`)
	listItemRe = regexp.MustCompile(`^([ \t]*)(?:[-*+]|\d{1,9}[.)])[ \t]+(.*)$`)
)

// Splitter tokenizes document text into blocks.
type Splitter struct{}

// New creates a new block splitter.
func New() *Splitter {
	return &Splitter{}
}

// Split tokenizes raw text into blocks. It is a pure function of its
// input. The only hard failure is a fenced code block left open at end
// of input, returned as *domain.UnterminatedFenceError; every other
// malformed construct degrades to a paragraph.
func (s *Splitter) Split(raw string) ([]domain.Block, error) {
	lines := strings.Split(raw, "\n")

	var out []domain.Block

	// Paragraph and blockquote accumulation state.
	var paraLines []string
	paraStart := 0
	var quoteLines []string
	quoteStart := 0

	flushPara := func() {
		if len(paraLines) == 0 {
			return
		}
		out = append(out, domain.Block{
			Kind:    domain.BlockParagraph,
			Line:    paraStart,
			EndLine: paraStart + len(paraLines) - 1,
			Text:    strings.Join(paraLines, "\n"),
		})
		paraLines = nil
	}
	flushQuote := func() {
		if len(quoteLines) == 0 {
			return
		}
		out = append(out, domain.Block{
			Kind:    domain.BlockBlockquote,
			Line:    quoteStart,
			EndLine: quoteStart + len(quoteLines) - 1,
			Text:    strings.Join(quoteLines, "\n"),
		})
		quoteLines = nil
	}
	flushAll := func() {
		flushPara()
		flushQuote()
	}

	// Open fence state.
	inFence := false
	var fenceChar byte
	fenceLen := 0
	fenceStart := 0
	fenceLang := ""
	var fenceBody []string

	for i, rawLine := range lines {
		lineNo := i + 1
		line := strings.TrimRight(rawLine, "\r")

		if inFence {
			if closesFence(line, fenceChar, fenceLen) {
				out = append(out, domain.Block{
					Kind:    domain.BlockFencedCode,
					Line:    fenceStart,
					EndLine: lineNo,
					Lang:    fenceLang,
					Body:    strings.Join(fenceBody, "\n"),
				})
				inFence = false
				fenceBody = nil
				continue
			}
			fenceBody = append(fenceBody, line)
			continue
		}

		if ch, n, info, ok := opensFence(line); ok {
			flushAll()
			inFence = true
			fenceChar = ch
			fenceLen = n
			fenceStart = lineNo
			fenceLang = info
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushAll()
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushAll()
			out = append(out, domain.Block{
				Kind:    domain.BlockHeading,
				Line:    lineNo,
				EndLine: lineNo,
				Level:   len(m[1]),
				Text:    trimClosingHashes(m[2]),
			})
			continue
		}

		if strings.HasPrefix(trimmed, ">") {
			flushPara()
			if len(quoteLines) == 0 {
				quoteStart = lineNo
			}
			quoteLines = append(quoteLines, stripQuoteMarker(trimmed))
			continue
		}
		flushQuote()

		if m := listItemRe.FindStringSubmatch(line); m != nil {
			flushPara()
			out = append(out, domain.Block{
				Kind:    domain.BlockListItem,
				Line:    lineNo,
				EndLine: lineNo,
				Depth:   indentWidth(m[1]) / 2,
				Text:    strings.TrimSpace(m[2]),
			})
			continue
		}

		if cells, ok := splitTableRow(trimmed); ok {
			flushPara()
			out = append(out, domain.Block{
				Kind:    domain.BlockTableRow,
				Line:    lineNo,
				EndLine: lineNo,
				Cells:   cells,
			})
			continue
		}

		if len(paraLines) == 0 {
			paraStart = lineNo
		}
		paraLines = append(paraLines, line)
	}

	if inFence {
		return nil, &domain.UnterminatedFenceError{Line: fenceStart}
	}
	flushAll()

	return out, nil
}

// opensFence reports whether a line opens a fenced code block and
// returns the fence character, its length and the info string.
func opensFence(line string) (byte, int, string, bool) {
	rest := strings.TrimLeft(line, " ")
	if len(line)-len(rest) > 3 || rest == "" {
		return 0, 0, "", false
	}
	ch := rest[0]
	if ch != '`' && ch != '~' {
		return 0, 0, "", false
	}
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(rest[n:])
	// The info string is the first word only; ```go title=x declares "go".
	if idx := strings.IndexAny(info, " \t"); idx >= 0 {
		info = info[:idx]
	}
	return ch, n, info, true
}

// closesFence reports whether a line closes a fence opened with the
// given character and length. The closer must be at least as long as
// the opener and carry no info string.
func closesFence(line string, ch byte, openLen int) bool {
	rest := strings.TrimLeft(line, " ")
	if len(line)-len(rest) > 3 {
		return false
	}
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < openLen {
		return false
	}
	return strings.TrimSpace(rest[n:]) == ""
}

// trimClosingHashes removes an optional trailing closing sequence of
// hashes from ATX heading text ("## Title ##" -> "Title").
func trimClosingHashes(text string) string {
	text = strings.TrimSpace(text)
	trimmed := strings.TrimRight(text, "#")
	if trimmed == text {
		return text
	}
	// Only a space-separated hash run is a closing sequence.
	if strings.HasSuffix(trimmed, " ") || trimmed == "" {
		return strings.TrimRight(trimmed, " ")
	}
	return text
}

// stripQuoteMarker removes the leading > and one optional space.
func stripQuoteMarker(line string) string {
	line = strings.TrimPrefix(line, ">")
	return strings.TrimPrefix(line, " ")
}

// indentWidth counts leading whitespace with tabs as four columns.
func indentWidth(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}
	return width
}

// splitTableRow splits a pipe-delimited row into trimmed cells.
// A row must start with | and contain at least one more |; anything
// else is not a table row and degrades to a paragraph.
func splitTableRow(trimmed string) ([]string, bool) {
	if !strings.HasPrefix(trimmed, "|") || strings.Count(trimmed, "|") < 2 {
		return nil, false
	}
	inner := strings.TrimPrefix(trimmed, "|")
	inner = strings.TrimSuffix(inner, "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells, true
}
