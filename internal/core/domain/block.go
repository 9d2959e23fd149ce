package domain

// BlockKind identifies the block-level construct a Block represents.
type BlockKind int

const (
	// BlockHeading is an ATX heading (# through ######).
	BlockHeading BlockKind = iota

	// BlockParagraph is a run of plain text lines.
	BlockParagraph

	// BlockFencedCode is a fenced code block (``` or ~~~).
	BlockFencedCode

	// BlockListItem is a single bulleted or numbered list item.
	BlockListItem

	// BlockTableRow is a single pipe-delimited table row.
	BlockTableRow

	// BlockBlockquote is a run of > quoted lines.
	BlockBlockquote
)

// String returns a short name for the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockFencedCode:
		return "fenced-code"
	case BlockListItem:
		return "list-item"
	case BlockTableRow:
		return "table-row"
	case BlockBlockquote:
		return "blockquote"
	default:
		return "unknown"
	}
}

// Block is one block-level unit produced by the tokenizer.
// Blocks are immutable once produced; only the fields relevant
// to the Kind are populated.
type Block struct {
	// Kind discriminates which fields below are meaningful.
	Kind BlockKind

	// Line is the 1-based source line the block starts on.
	Line int

	// EndLine is the 1-based line the block ends on.
	// For single-line blocks it equals Line. For fenced code it is
	// the line of the closing fence. Invariant: Line <= EndLine.
	EndLine int

	// Level is the heading level (1..6). Heading only.
	Level int

	// Text is the textual content. For paragraphs and blockquotes
	// it preserves interior newlines so line attribution stays exact.
	Text string

	// Lang is the raw info string of a fenced code block as declared,
	// empty when no language tag was given. FencedCode only.
	Lang string

	// Body is the fenced code content without the fence lines.
	Body string

	// Depth is the nesting depth of a list item (0 = top level).
	Depth int

	// Cells are the column values of a table row.
	Cells []string
}
