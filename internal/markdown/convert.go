package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// UntitledTitle is used when a file has neither a front matter title nor a
// level-one heading.
const UntitledTitle = "Untitled"

// Document is the converted form of one markdown file.
type Document struct {
	Filename string
	Title    string
	HTML     string
}

// ConversionError reports a file that could not be turned into a Document.
type ConversionError struct {
	File string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.File, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

type Options struct {
	// Sanitize runs the rendered HTML through a UGC policy. Off by default:
	// the source directory is trusted and raw HTML passes through.
	Sanitize bool
}

// Converter renders markdown with GFM extensions. It holds no per-call state
// and is safe to share.
type Converter struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
}

func NewConverter(opts Options) *Converter {
	c := &Converter{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		c.policy = p
	}
	return c
}

// frontMatterKeys are the keys that mark a leading "---" block as front
// matter rather than a thematic break.
var frontMatterKeys = []string{"title", "slug", "summary", "author", "date", "tags", "draft", "status", "template"}

// splitFrontMatter separates a YAML front matter block from the body. A block
// that does not parse, or carries none of frontMatterKeys, is left in the
// body untouched.
func splitFrontMatter(source []byte) (map[string]any, []byte) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil || !hasFrontMatterKey(meta) {
		return nil, source
	}
	return meta, body
}

func hasFrontMatterKey(meta map[string]any) bool {
	for _, k := range frontMatterKeys {
		if _, ok := meta[k]; ok {
			return true
		}
	}
	return false
}

// Convert turns the raw bytes of filename into a Document.
func (c *Converter) Convert(filename string, source []byte) (Document, error) {
	if !utf8.Valid(source) {
		return Document{}, &ConversionError{File: filename, Err: fmt.Errorf("not valid UTF-8")}
	}

	meta, body := splitFrontMatter(source)

	var title string
	if t, ok := meta["title"].(string); ok {
		title = strings.TrimSpace(t)
	}
	if title == "" {
		title = ExtractTitle(body)
	}

	var buf bytes.Buffer
	if err := c.engine.Convert(body, &buf); err != nil {
		return Document{}, &ConversionError{File: filename, Err: fmt.Errorf("markdown: %w", err)}
	}

	out := buf.String()
	if c.policy != nil {
		out = c.policy.Sanitize(out)
	}

	return Document{Filename: filename, Title: title, HTML: out}, nil
}

// ExtractTitle returns the text of the first "# " heading line, or
// UntitledTitle. Deeper headings ("## ...") are not titles.
func ExtractTitle(source []byte) string {
	for _, raw := range bytes.Split(source, []byte("\n")) {
		line := string(raw)
		if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "##") {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "#"))
	}
	return UntitledTitle
}
