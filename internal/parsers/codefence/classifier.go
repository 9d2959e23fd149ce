// Package codefence extracts fenced code blocks from a block sequence
// and classifies them by declared language. Mermaid blocks are tagged
// as diagram source. Code bodies are never semantically validated;
// they are illustrative snippets, not compiled artifacts.
package codefence

import (
	"strings"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// Classifier converts fenced code blocks into code block records.
type Classifier struct{}

// New creates a new fenced-code classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify produces one record per fenced code block, in document
// order. The declared language tag is lowercased; an empty tag stays
// empty. It is a pure transform over the block sequence.
func (c *Classifier) Classify(docKey string, blks []domain.Block) []domain.CodeBlockRecord {
	var records []domain.CodeBlockRecord
	for _, b := range blks {
		if b.Kind != domain.BlockFencedCode {
			continue
		}
		lang := strings.ToLower(strings.TrimSpace(b.Lang))
		records = append(records, domain.CodeBlockRecord{
			DocumentKey: docKey,
			Language:    lang,
			IsDiagram:   domain.IsMermaid(lang),
			Body:        b.Body,
			StartLine:   b.Line,
			EndLine:     b.EndLine,
		})
	}
	return records
}
