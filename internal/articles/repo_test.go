package articles

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/pkg/database"
	"mdblog/pkg/models"
)

// openTestRepo creates a migrated sqlite Repo in a temp dir.
func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, DSN: filepath.Join(t.TempDir(), "blog.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg.Driver))
	return NewRepo(db, cfg.Driver)
}

func newArticle(filename, title string) models.Article {
	return models.Article{
		ID:        uuid.New(),
		Filename:  filename,
		Title:     title,
		Author:    "Author",
		Content:   "<p>" + title + "</p>",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
	}
}

func mustCreate(t *testing.T, r *Repo, a models.Article) *models.Article {
	t.Helper()
	got, err := r.Create(context.Background(), a)
	require.NoError(t, err)
	return got
}

// --- Create + GetByID roundtrip ---

func TestCreate_GetByID_Roundtrip(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	a := newArticle("hello.md", "Hello World")
	created := mustCreate(t, r, a)
	assert.Equal(t, a, *created)

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)

	want := a
	want.Views = 1
	assert.Equal(t, want, *got)
}

func TestGetByID_ViewsIncreaseByOne(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	a := mustCreate(t, r, newArticle("a.md", "A"))

	for i := int64(1); i <= 5; i++ {
		got, err := r.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.Views)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	r := openTestRepo(t)

	_, err := r.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_DuplicateIDConflicts(t *testing.T) {
	r := openTestRepo(t)
	a := mustCreate(t, r, newArticle("a.md", "A"))

	dup := newArticle("b.md", "B")
	dup.ID = a.ID
	_, err := r.Create(context.Background(), dup)
	assert.ErrorIs(t, err, ErrConflict)
}

// --- updates ---

func TestUpdateContent_OnlyTouchesContent(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	a := mustCreate(t, r, newArticle("a.md", "A"))
	_, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)

	got, err := r.UpdateContent(ctx, a.ID, "<p>new</p>")
	require.NoError(t, err)

	want := *a
	want.Content = "<p>new</p>"
	want.Views = 1
	assert.Equal(t, want, *got)
}

func TestUpdateTitle(t *testing.T) {
	r := openTestRepo(t)
	a := mustCreate(t, r, newArticle("a.md", "A"))

	got, err := r.UpdateTitle(context.Background(), a.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, a.Content, got.Content)
}

func TestUpdate_NotFound(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	_, err := r.UpdateContent(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.UpdateTitle(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- delete ---

func TestDelete_ReturnsLastState(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	a := mustCreate(t, r, newArticle("a.md", "A"))

	got, err := r.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)

	_, err = r.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// --- list + search ---

func TestList(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	a := mustCreate(t, r, newArticle("a.md", "A"))
	b := mustCreate(t, r, newArticle("b.md", "B"))

	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Article{*a, *b}, list)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	titles := []string{"Hello World", "Go Concurrency", "hello again", "Rust notes", "100% done", "snake_case", "Über Go"}
	for i, title := range titles {
		mustCreate(t, r, newArticle(strings.Repeat("x", i+1)+".md", title))
	}

	all, err := r.List(ctx)
	require.NoError(t, err)

	tests := []struct {
		text string
		want []string
	}{
		{"", titles},
		{"HELLO", []string{"Hello World", "hello again"}},
		{"o c", []string{"Go Concurrency"}},
		{"%", []string{"100% done"}},
		{"_", []string{"snake_case"}},
		{"Über", []string{"Über Go"}},
		{"über", []string{"Über Go"}},
		{"ÜBER G", []string{"Über Go"}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := r.Search(ctx, tt.text)
			require.NoError(t, err)

			gotTitles := make([]string, 0, len(got))
			for _, a := range got {
				gotTitles = append(gotTitles, a.Title)
			}
			assert.ElementsMatch(t, tt.want, gotTitles)

			// search results are always a subset of List
			for _, a := range got {
				assert.Contains(t, all, a)
			}
		})
	}
}
