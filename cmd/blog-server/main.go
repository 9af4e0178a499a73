package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mdblog/internal/articles"
	"mdblog/internal/markdown"
	"mdblog/internal/middleware"
	"mdblog/internal/reconcile"
	"mdblog/internal/views"
	"mdblog/pkg/database"
	"mdblog/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()
	logger := utils.NewLogger(cfg)

	matchBy, err := reconcile.ParseMatchBy(cfg.MatchBy)
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Error("could not connect to database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB.Driver); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	renderer, err := views.New("Blog", cfg.Author)
	if err != nil {
		logger.Error("could not load templates", "error", err)
		os.Exit(1)
	}

	repo := articles.NewRepo(db, cfg.DB.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup sync runs beside the server; requests may see a partial set.
	rec := reconcile.New(
		repo,
		markdown.NewConverter(markdown.Options{Sanitize: cfg.SanitizeHTML}),
		cfg.MarkdownDir,
		cfg.Author,
		matchBy,
		logger.With("component", "sync"),
	)
	syncTask := reconcile.Start(ctx, rec, logger.With("component", "sync"))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Static("/public", cfg.PublicDir)
	router.Static("/client", cfg.ClientDir)

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{
			"sync_status": syncTask.Status(),
			"sync_result": syncTask.Result(),
		}
		if err := syncTask.Err(); err != nil {
			body["sync_error"] = err.Error()
		}

		if err := db.PingContext(pingCtx); err != nil {
			body["status"] = "not_ready"
			body["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ok"
		c.JSON(http.StatusOK, body)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.SearchRPS, cfg.SearchBurst)
	go sweepLimiter(ctx, limiter)

	handler := articles.NewHandler(repo, renderer, logger)
	handler.RegisterRoutes(&router.RouterGroup, limiter.Middleware())

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Addr, "markdown_dir", cfg.MarkdownDir)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	select {
	case <-syncTask.Done():
	case <-shutdownCtx.Done():
		logger.Warn("markdown sync still running at shutdown")
	}
	logger.Info("server stopped")
}

func sweepLimiter(ctx context.Context, l *middleware.RateLimiter) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
