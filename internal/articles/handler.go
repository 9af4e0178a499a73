package articles

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mdblog/internal/metrics"
	"mdblog/internal/views"
)

type Handler struct {
	Repo   *Repo
	Views  *views.Renderer
	Logger *slog.Logger
}

func NewHandler(repo *Repo, renderer *views.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Repo: repo, Views: renderer, Logger: logger}
}

// RegisterRoutes mounts the page routes. searchMW runs in front of the
// search handler only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, searchMW ...gin.HandlerFunc) {
	rg.GET("/", h.index)            // GET /
	rg.GET("/articles/:id", h.show) // GET /articles/:id
	rg.POST("/search", append(searchMW, h.search)...)
}

func (h *Handler) index(c *gin.Context) {
	list, err := h.Repo.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list articles", err)
		return
	}
	h.render(c, views.ViewIndex, h.Views.ListPage(list))
}

func (h *Handler) show(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid article id")
		return
	}

	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.String(http.StatusNotFound, "article not found")
		return
	}
	if err != nil {
		h.fail(c, "get article", err)
		return
	}
	metrics.RecordView()

	h.render(c, views.ViewIndex, h.Views.ArticlePage(*a))
}

func (h *Handler) search(c *gin.Context) {
	text, ok := c.GetPostForm("search")
	if !ok {
		c.String(http.StatusBadRequest, "missing search field")
		return
	}

	found, err := h.Repo.Search(c.Request.Context(), text)
	if err != nil {
		h.fail(c, "search articles", err)
		return
	}
	h.render(c, views.ViewArticles, h.Views.ListPage(found))
}

func (h *Handler) render(c *gin.Context, view string, data views.Page) {
	var buf bytes.Buffer
	if err := h.Views.Render(&buf, view, data); err != nil {
		h.fail(c, "render "+view, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	_ = c.Error(err)
	h.Logger.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "internal server error")
}
