package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple heading", "# Hello World\n\nbody", "Hello World"},
		{"surrounding whitespace", "#    Spaced Out   \n", "Spaced Out"},
		{"no space after marker", "#Tight\n", "Tight"},
		{"first heading wins", "intro\n# First\n# Second\n", "First"},
		{"sub headings skipped", "## Sub\n### Deeper\n# Real\n", "Real"},
		{"no heading", "just text\nmore text\n", UntitledTitle},
		{"empty file", "", UntitledTitle},
		{"indented marker is not a heading line", "  # Indented\n", UntitledTitle},
		{"crlf line endings", "intro\r\n# Windows\r\n", "Windows"},
		{"heading after a very long line", strings.Repeat("a", 2<<20) + "\n# After Long\n", "After Long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle([]byte(tt.src)))
		})
	}
}

func TestConvert_RendersGFMAndRawHTML(t *testing.T) {
	c := NewConverter(Options{})

	src := "# Post\n\n<div class=\"note\">raw</div>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n"
	doc, err := c.Convert("post.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "post.md", doc.Filename)
	assert.Equal(t, "Post", doc.Title)
	assert.Contains(t, doc.HTML, "<h1>Post</h1>")
	assert.Contains(t, doc.HTML, `<div class="note">raw</div>`)
	assert.Contains(t, doc.HTML, "<table>")
	assert.Contains(t, doc.HTML, "<del>gone</del>")
}

func TestConvert_AllowsNonStandardLinkProtocols(t *testing.T) {
	c := NewConverter(Options{})

	doc, err := c.Convert("links.md", []byte("[run](javascript:alert(1))\n"))
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, `href="javascript:alert(1)"`)
}

func TestConvert_FrontMatterTitleWins(t *testing.T) {
	c := NewConverter(Options{})

	src := "---\ntitle: From Meta\n---\n# From Heading\n\ntext\n"
	doc, err := c.Convert("meta.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "From Meta", doc.Title)
	assert.NotContains(t, doc.HTML, "title: From Meta")
	assert.Contains(t, doc.HTML, "<h1>From Heading</h1>")
}

func TestConvert_LeadingThematicBreakIsNotFrontMatter(t *testing.T) {
	c := NewConverter(Options{})

	src := "---\n\n# Hello World\n\nintro - a: b\n\n---\n\nrest\n"
	doc, err := c.Convert("breaks.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Hello World", doc.Title)
	assert.Contains(t, doc.HTML, "<h1>Hello World</h1>")
	assert.Contains(t, doc.HTML, "<hr")
	assert.Contains(t, doc.HTML, "intro - a: b")
	assert.Contains(t, doc.HTML, "rest")
}

func TestConvert_HeadingInsideBreaksKeepsColon(t *testing.T) {
	c := NewConverter(Options{})

	src := "---\n# Title: with colon\n\nbody text\n\n---\n\nfooter\n"
	doc, err := c.Convert("colon.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Title: with colon", doc.Title)
	assert.Contains(t, doc.HTML, "<h1>Title: with colon</h1>")
	assert.Contains(t, doc.HTML, "body text")
	assert.Contains(t, doc.HTML, "footer")
}

func TestConvert_Sanitize(t *testing.T) {
	c := NewConverter(Options{Sanitize: true})

	doc, err := c.Convert("x.md", []byte("# T\n\n<script>alert(1)</script>\n\n[ok](https://example.com)\n"))
	require.NoError(t, err)

	assert.NotContains(t, doc.HTML, "<script>")
	assert.Contains(t, doc.HTML, `rel="nofollow"`)
}

func TestConvert_InvalidUTF8(t *testing.T) {
	c := NewConverter(Options{})

	_, err := c.Convert("bad.md", []byte{'#', ' ', 0xff, 0xfe})
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "bad.md", convErr.File)
}
