package domain

import (
	"fmt"
	"sort"
)

// IssueKind identifies a category of validation issue. The numeric
// value is the tie-break discriminant in report ordering, so new kinds
// must be appended, never reordered.
type IssueKind int

const (
	// IssueDanglingTocLink is a TOC entry whose anchor matches no heading slug.
	IssueDanglingTocLink IssueKind = iota

	// IssueUnlistedHeading is a heading within the configured level window
	// that has no TOC entry. Advisory, not fatal.
	IssueUnlistedHeading

	// IssueBrokenAnchor is an internal link to a non-existent slug.
	IssueBrokenAnchor

	// IssueBrokenRelativeLink is a relative link to an unknown document key.
	IssueBrokenRelativeLink
)

// String returns the stable name used in reports.
func (k IssueKind) String() string {
	switch k {
	case IssueDanglingTocLink:
		return "dangling-toc-link"
	case IssueUnlistedHeading:
		return "unlisted-heading"
	case IssueBrokenAnchor:
		return "broken-anchor"
	case IssueBrokenRelativeLink:
		return "broken-relative-link"
	default:
		return "unknown"
	}
}

// ValidationIssue is one non-fatal finding. Issues are data, not
// control-flow errors: a document with issues is still queryable.
type ValidationIssue struct {
	Kind        IssueKind `json:"kind"`
	DocumentKey string    `json:"document_key"`

	// Line is the 1-based source line of the offending construct.
	Line int `json:"line"`

	// Anchor is the missing slug for DanglingTocLink and BrokenAnchor.
	Anchor string `json:"anchor,omitempty"`

	// Path is the unresolvable target for BrokenRelativeLink.
	Path string `json:"path,omitempty"`

	// Slug is the heading slug for UnlistedHeading.
	Slug string `json:"slug,omitempty"`

	// Detail is extra human-readable context.
	Detail string `json:"detail,omitempty"`
}

// Message renders the issue for human consumption.
func (i ValidationIssue) Message() string {
	switch i.Kind {
	case IssueDanglingTocLink:
		return fmt.Sprintf("TOC entry targets missing anchor %q", i.Anchor)
	case IssueUnlistedHeading:
		return fmt.Sprintf("heading %q has no TOC entry", i.Slug)
	case IssueBrokenAnchor:
		return fmt.Sprintf("link targets missing anchor %q", i.Anchor)
	case IssueBrokenRelativeLink:
		return fmt.Sprintf("link targets unknown document %q", i.Path)
	default:
		return i.Detail
	}
}

// SortIssues orders issues in place by (document key, line, kind
// discriminant), the canonical report order.
func SortIssues(issues []ValidationIssue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].DocumentKey != issues[j].DocumentKey {
			return issues[i].DocumentKey < issues[j].DocumentKey
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Kind < issues[j].Kind
	})
}
