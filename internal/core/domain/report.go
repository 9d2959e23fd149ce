package domain

// ParseFailure records a document whose ingestion failed outright.
// Failed documents keep their previous state in the corpus, if any.
type ParseFailure struct {
	DocumentKey string `json:"document_key"`
	Line        int    `json:"line"`
	Reason      string `json:"reason"`
}

// IssueCount is the number of recorded issues of one kind.
type IssueCount struct {
	Kind  IssueKind `json:"kind"`
	Count int       `json:"count"`
}

// ReportLine is one rendered issue in the final report.
type ReportLine struct {
	DocumentKey string    `json:"document_key"`
	Line        int       `json:"line"`
	Kind        IssueKind `json:"kind"`
	Message     string    `json:"message"`
}

// Report is the structured validation output for the whole corpus.
// Its ordering is deterministic: repeated runs over unchanged input
// produce byte-identical reports, so they can be diffed in review.
type Report struct {
	// TotalDocuments is the number of successfully ingested documents.
	TotalDocuments int `json:"total_documents"`

	// Counts holds per-kind issue totals, ordered by kind discriminant.
	// Kinds with zero occurrences are omitted.
	Counts []IssueCount `json:"counts"`

	// Issues is the full list sorted by
	// (document key, line, kind discriminant).
	Issues []ReportLine `json:"issues"`

	// ParseFailures lists documents that failed ingestion,
	// sorted by document key.
	ParseFailures []ParseFailure `json:"parse_failures"`
}
