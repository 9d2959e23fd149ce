package domain

// IngestResult summarises one successful ingestion. It is a pure
// function of the document text and settings: re-ingesting unchanged
// text yields an identical result.
type IngestResult struct {
	DocumentKey string `json:"document_key"`
	Blocks      int    `json:"blocks"`
	Headings    int    `json:"headings"`
	CodeBlocks  int    `json:"code_blocks"`
	Links       int    `json:"links"`

	// Issues are the validation findings for this document as of
	// ingestion time: TOC issues plus link issues against the corpus
	// state at the moment of ingest.
	Issues []ValidationIssue `json:"issues"`
}

// HeadingHit is one match of a heading query.
type HeadingHit struct {
	DocumentKey string `json:"document_key"`
	Slug        string `json:"slug"`
	Text        string `json:"text"`

	// Path is the heading texts from the outermost ancestor down
	// to the matched heading.
	Path []string `json:"path"`
}

// ExternalRef is one recorded external link occurrence.
type ExternalRef struct {
	DocumentKey string `json:"document_key"`
	URL         string `json:"url"`
	Line        int    `json:"line"`
}
