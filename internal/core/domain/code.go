package domain

// mermaidTag is the normalised language tag that marks diagram sources.
const mermaidTag = "mermaid"

// CodeBlockRecord is one classified fenced code block.
// Records are created at parse time, immutable, and regenerated
// wholesale when their document is re-ingested.
type CodeBlockRecord struct {
	// DocumentKey identifies the owning document.
	DocumentKey string

	// Language is the normalised (lowercased) language tag,
	// empty when the fence declared none.
	Language string

	// IsDiagram is true when the block is Mermaid diagram source.
	IsDiagram bool

	// Body is the code content without the fence lines.
	Body string

	// StartLine and EndLine span the block including fences, 1-based.
	StartLine int
	EndLine   int
}

// IsMermaid reports whether a normalised language tag denotes diagram source.
func IsMermaid(lang string) bool {
	return lang == mermaidTag
}
