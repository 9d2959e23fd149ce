package blocks

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

func TestSplit_Headings(t *testing.T) {
	s := New()

	blks, err := s.Split("# Title\n\n## Section One\n\n###### Deep")
	require.NoError(t, err)
	require.Len(t, blks, 3)

	assert.Equal(t, domain.BlockHeading, blks[0].Kind)
	assert.Equal(t, 1, blks[0].Level)
	assert.Equal(t, "Title", blks[0].Text)
	assert.Equal(t, 1, blks[0].Line)

	assert.Equal(t, 2, blks[1].Level)
	assert.Equal(t, "Section One", blks[1].Text)
	assert.Equal(t, 3, blks[1].Line)

	assert.Equal(t, 6, blks[2].Level)
	assert.Equal(t, "Deep", blks[2].Text)
}

func TestSplit_HeadingEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind domain.BlockKind
		wantText string
	}{
		{
			name:     "closing hashes trimmed",
			input:    "## Title ##",
			wantKind: domain.BlockHeading,
			wantText: "Title",
		},
		{
			name:     "no space after hashes is a paragraph",
			input:    "#hashtag",
			wantKind: domain.BlockParagraph,
			wantText: "#hashtag",
		},
		{
			name:     "seven hashes is a paragraph",
			input:    "####### too deep",
			wantKind: domain.BlockParagraph,
			wantText: "####### too deep",
		},
		{
			name:     "setext underline stays a paragraph",
			input:    "Title\n=====",
			wantKind: domain.BlockParagraph,
			wantText: "Title\n=====",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blks, err := New().Split(tt.input)
			require.NoError(t, err)
			require.Len(t, blks, 1)
			assert.Equal(t, tt.wantKind, blks[0].Kind)
			assert.Equal(t, tt.wantText, blks[0].Text)
		})
	}
}

func TestSplit_FencedCode(t *testing.T) {
	s := New()
	input := strings.Join([]string{
		"before",
		"```go",
		"func main() {}",
		"```",
		"after",
	}, "\n")

	blks, err := s.Split(input)
	require.NoError(t, err)
	require.Len(t, blks, 3)

	code := blks[1]
	assert.Equal(t, domain.BlockFencedCode, code.Kind)
	assert.Equal(t, "go", code.Lang)
	assert.Equal(t, "func main() {}", code.Body)
	assert.Equal(t, 2, code.Line)
	assert.Equal(t, 4, code.EndLine)
	assert.LessOrEqual(t, code.Line, code.EndLine)
}

func TestSplit_TildeFence(t *testing.T) {
	blks, err := New().Split("~~~python\nprint('hi')\n~~~")
	require.NoError(t, err)
	require.Len(t, blks, 1)
	assert.Equal(t, "python", blks[0].Lang)
	assert.Equal(t, "print('hi')", blks[0].Body)
}

func TestSplit_FenceCloserRules(t *testing.T) {
	t.Run("longer closer closes", func(t *testing.T) {
		blks, err := New().Split("````\ncode\n`````")
		require.NoError(t, err)
		require.Len(t, blks, 1)
		assert.Equal(t, "code", blks[0].Body)
	})

	t.Run("shorter closer does not close", func(t *testing.T) {
		_, err := New().Split("````\ncode\n```")
		require.Error(t, err)
	})

	t.Run("different character does not close", func(t *testing.T) {
		_, err := New().Split("```\ncode\n~~~")
		require.Error(t, err)
	})

	t.Run("backticks nest inside tilde fence", func(t *testing.T) {
		blks, err := New().Split("~~~\n```\ninner\n```\n~~~")
		require.NoError(t, err)
		require.Len(t, blks, 1)
		assert.Equal(t, "```\ninner\n```", blks[0].Body)
	})
}

func TestSplit_UnterminatedFence(t *testing.T) {
	s := New()

	_, err := s.Split("# Doc\n\n```rust\nfn main() {}\n")
	require.Error(t, err)

	var fence *domain.UnterminatedFenceError
	require.True(t, errors.As(err, &fence))
	assert.Equal(t, 3, fence.Line)
}

func TestSplit_ListItems(t *testing.T) {
	input := strings.Join([]string{
		"- top",
		"  - nested",
		"    - deeper",
		"1. numbered",
	}, "\n")

	blks, err := New().Split(input)
	require.NoError(t, err)
	require.Len(t, blks, 4)

	for _, b := range blks {
		assert.Equal(t, domain.BlockListItem, b.Kind)
	}
	assert.Equal(t, 0, blks[0].Depth)
	assert.Equal(t, 1, blks[1].Depth)
	assert.Equal(t, 2, blks[2].Depth)
	assert.Equal(t, "top", blks[0].Text)
	assert.Equal(t, "numbered", blks[3].Text)
}

func TestSplit_TableRows(t *testing.T) {
	blks, err := New().Split("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	require.Len(t, blks, 3)

	assert.Equal(t, domain.BlockTableRow, blks[0].Kind)
	assert.Equal(t, []string{"a", "b"}, blks[0].Cells)
	assert.Equal(t, []string{"1", "2"}, blks[2].Cells)
}

func TestSplit_MalformedTableRowDegrades(t *testing.T) {
	// A single pipe is not a table row; it degrades to a paragraph.
	blks, err := New().Split("| lonely pipe")
	require.NoError(t, err)
	require.Len(t, blks, 1)
	assert.Equal(t, domain.BlockParagraph, blks[0].Kind)
}

func TestSplit_Blockquote(t *testing.T) {
	blks, err := New().Split("> first\n> second")
	require.NoError(t, err)
	require.Len(t, blks, 1)
	assert.Equal(t, domain.BlockBlockquote, blks[0].Kind)
	assert.Equal(t, "first\nsecond", blks[0].Text)
	assert.Equal(t, 1, blks[0].Line)
	assert.Equal(t, 2, blks[0].EndLine)
}

func TestSplit_ParagraphLineAttribution(t *testing.T) {
	blks, err := New().Split("first line\nsecond line\n\nnext para")
	require.NoError(t, err)
	require.Len(t, blks, 2)

	assert.Equal(t, "first line\nsecond line", blks[0].Text)
	assert.Equal(t, 1, blks[0].Line)
	assert.Equal(t, 2, blks[0].EndLine)
	assert.Equal(t, 4, blks[1].Line)
}

func TestSplit_Empty(t *testing.T) {
	blks, err := New().Split("")
	require.NoError(t, err)
	assert.Empty(t, blks)
}

func TestSplit_Pure(t *testing.T) {
	input := "# A\n\ntext with [link](#a)\n\n```go\nx\n```\n"
	a, err := New().Split(input)
	require.NoError(t, err)
	b, err := New().Split(input)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
