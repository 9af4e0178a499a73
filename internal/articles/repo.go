package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mdblog/pkg/database"
	"mdblog/pkg/models"
)

const articleColumns = `id, filename, title, author, content, created_at, views`

// Repo is the article store. Every method runs a single statement; callers
// get driver errors wrapped, never retried.
type Repo struct {
	DB     *sql.DB
	Driver string
}

func NewRepo(db *sql.DB, driver string) *Repo {
	return &Repo{DB: db, Driver: driver}
}

func (r *Repo) q(query string) string {
	return database.Rebind(r.Driver, query)
}

// List returns every article in storage order.
func (r *Repo) List(ctx context.Context) ([]models.Article, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+articleColumns+` FROM blogs`)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	return collect(rows)
}

// GetByID bumps the view counter and returns the updated row.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, r.q(`
		UPDATE blogs
		SET views = views + 1
		WHERE id = ?
		RETURNING `+articleColumns), id)
	return scanOne("get by id", row)
}

// Create inserts a fully formed article. A duplicate id matches ErrConflict.
func (r *Repo) Create(ctx context.Context, a models.Article) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, r.q(`
		INSERT INTO blogs (id, filename, title, author, content, created_at, views)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+articleColumns),
		a.ID, a.Filename, a.Title, a.Author, a.Content, a.CreatedAt, a.Views,
	)
	return scanOne("create", row)
}

func (r *Repo) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, r.q(`
		UPDATE blogs
		SET content = ?
		WHERE id = ?
		RETURNING `+articleColumns), content, id)
	return scanOne("update content", row)
}

func (r *Repo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, r.q(`
		UPDATE blogs
		SET title = ?
		WHERE id = ?
		RETURNING `+articleColumns), title, id)
	return scanOne("update title", row)
}

// Delete removes the row and returns its last state.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := r.DB.QueryRowContext(ctx, r.q(`
		DELETE FROM blogs
		WHERE id = ?
		RETURNING `+articleColumns), id)
	return scanOne("delete", row)
}

// Search matches text as a case-insensitive substring of the title.
// Both sides are folded by the database's LOWER so they always agree.
// An empty text matches every article.
func (r *Repo) Search(ctx context.Context, text string) ([]models.Article, error) {
	rows, err := r.DB.QueryContext(ctx, r.q(`
		SELECT `+articleColumns+`
		FROM blogs
		WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\'`),
		"%"+escapeLike(text)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	return collect(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner, a *models.Article) error {
	return s.Scan(&a.ID, &a.Filename, &a.Title, &a.Author, &a.Content, &a.CreatedAt, &a.Views)
}

func scanOne(op string, row *sql.Row) (*models.Article, error) {
	var a models.Article
	if err := scanArticle(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, classify(op, err)
	}
	return &a, nil
}

func collect(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()

	out := make([]models.Article, 0)
	for rows.Next() {
		var a models.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
