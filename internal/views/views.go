package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"mdblog/pkg/models"
)

//go:embed templates/*.tmpl templates/partials/*.tmpl
var templateFS embed.FS

// View names.
const (
	ViewIndex    = "index"
	ViewArticles = "articles"
)

// ArticleView is the template-facing form of an article. Content is trusted
// HTML produced by the markdown converter.
type ArticleView struct {
	ID      string
	Title   string
	Author  string
	Date    string
	Views   int64
	Content template.HTML
}

// Page is the data passed to every view.
type Page struct {
	SiteTitle string
	Owner     string
	Year      int
	Articles  []ArticleView
	Article   *ArticleView
}

func NewArticleView(a models.Article) ArticleView {
	return ArticleView{
		ID:      a.ID.String(),
		Title:   a.Title,
		Author:  a.Author,
		Date:    a.DisplayDate(),
		Views:   a.Views,
		Content: template.HTML(a.Content),
	}
}

type Renderer struct {
	tmpl      *template.Template
	siteTitle string
	owner     string
	now       func() time.Time
}

// New parses the embedded templates.
func New(siteTitle, owner string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl", "templates/partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, siteTitle: siteTitle, owner: owner, now: time.Now}, nil
}

// ListPage builds page data for a list of articles.
func (r *Renderer) ListPage(list []models.Article) Page {
	p := r.page()
	p.Articles = make([]ArticleView, 0, len(list))
	for _, a := range list {
		p.Articles = append(p.Articles, NewArticleView(a))
	}
	return p
}

// ArticlePage builds page data for a single article.
func (r *Renderer) ArticlePage(a models.Article) Page {
	p := r.page()
	v := NewArticleView(a)
	p.Article = &v
	return p
}

func (r *Renderer) page() Page {
	return Page{SiteTitle: r.siteTitle, Owner: r.owner, Year: r.now().Year()}
}

// Render executes view into w. Output is buffered so a failing template
// writes nothing.
func (r *Renderer) Render(w io.Writer, view string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, view, data); err != nil {
		return fmt.Errorf("render %s: %w", view, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
