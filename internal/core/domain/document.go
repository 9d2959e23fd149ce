package domain

import "time"

// Document is one fully parsed corpus member. It owns its derived
// artifacts exclusively; re-ingestion replaces the whole value,
// never mutates parts of it.
type Document struct {
	// Key is the stable path-like identifier, typically a relative
	// file path supplied by the caller.
	Key string

	// Revision counts successful ingestions of this key,
	// starting at 1.
	Revision uint64

	// Raw is the original UTF-8 text.
	Raw string

	// Blocks is the flat block sequence produced by the tokenizer.
	Blocks []Block

	// Headings is the resolved heading tree.
	Headings *HeadingTree

	// CodeBlocks are the classified fenced code blocks.
	CodeBlocks []CodeBlockRecord

	// Links are all outgoing references in document order.
	Links []Link

	// TocEntries are the declared table-of-contents entries,
	// empty when no TOC list was detected.
	TocEntries []TocEntry

	// IngestedAt is when this revision was produced.
	IngestedAt time.Time
}

// Stats summarises one document's derived artifacts.
type Stats struct {
	DocumentKey string `json:"document_key"`
	Revision    uint64 `json:"revision"`
	Blocks      int    `json:"blocks"`
	Headings    int    `json:"headings"`
	CodeBlocks  int    `json:"code_blocks"`
	Links       int    `json:"links"`
}

// StatsOf derives the summary for a document.
func StatsOf(doc *Document) Stats {
	s := Stats{
		DocumentKey: doc.Key,
		Revision:    doc.Revision,
		Blocks:      len(doc.Blocks),
		CodeBlocks:  len(doc.CodeBlocks),
		Links:       len(doc.Links),
	}
	if doc.Headings != nil {
		s.Headings = doc.Headings.Len()
	}
	return s
}
