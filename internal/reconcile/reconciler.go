package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mdblog/internal/markdown"
	"mdblog/internal/metrics"
	"mdblog/pkg/models"
)

// MatchBy selects the key the upsert pass uses to find an existing article.
type MatchBy string

const (
	// MatchFilename keys both passes on the source filename.
	MatchFilename MatchBy = "filename"
	// MatchTitle keys the upsert pass on the extracted title. Two files with
	// the same title collapse into one article.
	MatchTitle MatchBy = "title"
)

// ParseMatchBy accepts "filename" or "title".
func ParseMatchBy(s string) (MatchBy, error) {
	switch MatchBy(s) {
	case MatchFilename, MatchTitle:
		return MatchBy(s), nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want filename or title)", s)
	}
}

// Store is the subset of the article store the reconciler mutates.
type Store interface {
	List(ctx context.Context) ([]models.Article, error)
	Create(ctx context.Context, a models.Article) (*models.Article, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Article, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Article, error)
}

// Converter turns one file into a markdown.Document.
type Converter interface {
	Convert(filename string, source []byte) (markdown.Document, error)
}

type Reconciler struct {
	Store     Store
	Converter Converter
	Dir       string
	Author    string
	MatchBy   MatchBy
	Logger    *slog.Logger

	Now   func() time.Time
	NewID func() uuid.UUID
}

func New(store Store, conv Converter, dir, author string, matchBy MatchBy, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		Store:     store,
		Converter: conv,
		Dir:       dir,
		Author:    author,
		MatchBy:   matchBy,
		Logger:    logger,
		Now:       time.Now,
		NewID:     uuid.New,
	}
}

// Result counts what a run did.
type Result struct {
	Deleted   int `json:"deleted"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// Run plans and applies one reconciliation. Mutations applied before a
// failure are kept.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	plan, err := r.Plan(ctx)
	if err != nil {
		return Result{}, err
	}
	return r.Apply(ctx, plan)
}

// Plan reads the directory and the store and computes the actions needed to
// make the store mirror the directory. It does not mutate anything.
func (r *Reconciler) Plan(ctx context.Context) (*Plan, error) {
	files, err := r.listFiles()
	if err != nil {
		return nil, err
	}

	existing, err := r.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	plan := &Plan{}
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}

	// deletion pass: keyed on filename in every mode
	index := make(map[string]*models.Article, len(existing))
	for i := range existing {
		a := existing[i]
		if _, ok := present[a.Filename]; !ok {
			plan.Actions = append(plan.Actions, Action{Kind: ActionDelete, Article: a})
			continue
		}
		key := r.key(a.Filename, a.Title)
		if _, dup := index[key]; !dup {
			index[key] = &existing[i]
		}
	}

	for _, name := range files {
		src, err := os.ReadFile(filepath.Join(r.Dir, name))
		if err != nil {
			return nil, &markdown.ConversionError{File: name, Err: err}
		}
		doc, err := r.Converter.Convert(name, src)
		if err != nil {
			return nil, err
		}

		key := r.key(name, doc.Title)
		cur, ok := index[key]
		if !ok {
			a := models.Article{
				ID:        r.NewID(),
				Filename:  name,
				Title:     doc.Title,
				Author:    r.Author,
				Content:   doc.HTML,
				CreatedAt: r.Now().UTC().Format(time.RFC3339),
				Views:     0,
			}
			plan.Actions = append(plan.Actions, Action{Kind: ActionInsert, Article: a})
			index[key] = &a
			continue
		}

		contentChanged := cur.Content != doc.HTML
		titleChanged := r.MatchBy != MatchTitle && cur.Title != doc.Title
		if !contentChanged && !titleChanged {
			plan.Actions = append(plan.Actions, Action{Kind: ActionKeep, Article: *cur})
			continue
		}

		next := *cur
		next.Content = doc.HTML
		if titleChanged {
			next.Title = doc.Title
		}
		plan.Actions = append(plan.Actions, Action{
			Kind:           ActionUpdate,
			Article:        next,
			ContentChanged: contentChanged,
			TitleChanged:   titleChanged,
		})
		*cur = next
	}

	return plan, nil
}

// Apply executes plan actions in order and stops at the first store error.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan) (Result, error) {
	var res Result
	for _, act := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		a := act.Article
		switch act.Kind {
		case ActionDelete:
			if _, err := r.Store.Delete(ctx, a.ID); err != nil {
				return res, fmt.Errorf("delete %s (%s): %w", a.Filename, a.ID, err)
			}
			r.Logger.Info("deleted article", "filename", a.Filename, "title", a.Title, "id", a.ID)
			metrics.RecordSyncAction(string(ActionDelete))
			res.Deleted++

		case ActionInsert:
			if _, err := r.Store.Create(ctx, a); err != nil {
				return res, fmt.Errorf("insert %s: %w", a.Filename, err)
			}
			r.Logger.Info("inserted article", "filename", a.Filename, "title", a.Title, "id", a.ID)
			metrics.RecordSyncAction(string(ActionInsert))
			res.Inserted++

		case ActionUpdate:
			if act.ContentChanged {
				if _, err := r.Store.UpdateContent(ctx, a.ID, a.Content); err != nil {
					return res, fmt.Errorf("update content %s: %w", a.Filename, err)
				}
			}
			if act.TitleChanged {
				if _, err := r.Store.UpdateTitle(ctx, a.ID, a.Title); err != nil {
					return res, fmt.Errorf("update title %s: %w", a.Filename, err)
				}
			}
			r.Logger.Info("updated article", "filename", a.Filename, "title", a.Title, "id", a.ID)
			metrics.RecordSyncAction(string(ActionUpdate))
			res.Updated++

		case ActionKeep:
			res.Unchanged++
		}
	}
	return res, nil
}

func (r *Reconciler) key(filename, title string) string {
	if r.MatchBy == MatchTitle {
		return title
	}
	return filename
}

// listFiles returns regular file names in Dir in lexical order.
func (r *Reconciler) listFiles() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", r.Dir, err)
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}
