package domain

// LinkKind classifies where a link points.
type LinkKind int

const (
	// LinkInternal targets a heading anchor within the same document.
	LinkInternal LinkKind = iota

	// LinkRelative targets another document in the corpus by path.
	LinkRelative

	// LinkExternal targets a URL outside the corpus. External links
	// are recorded but never dereferenced.
	LinkExternal
)

// String returns a short name for the link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkInternal:
		return "internal"
	case LinkRelative:
		return "relative"
	case LinkExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Link is one outgoing reference found in a document.
type Link struct {
	// Kind classifies the target.
	Kind LinkKind

	// Target is the anchor (without '#') for internal links, the raw
	// path (before normalisation) for relative links, or the full URL
	// for external links.
	Target string

	// RawText is the link's display text.
	RawText string

	// Line is the 1-based source line the link appears on.
	Line int
}

// TocEntry is one declared entry of a table-of-contents list:
// a display text paired with the anchor it claims to target.
type TocEntry struct {
	Text   string
	Anchor string
	Line   int

	// Depth is the nesting depth of the entry's list item.
	Depth int
}
