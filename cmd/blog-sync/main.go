package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mdblog/internal/articles"
	"mdblog/internal/markdown"
	"mdblog/internal/reconcile"
	"mdblog/pkg/database"
	"mdblog/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	fs := flag.NewFlagSet("blog-sync", flag.ExitOnError)
	dir := fs.String("dir", cfg.MarkdownDir, "markdown source directory")
	dbURL := fs.String("db", "", "database URL (overrides DATABASE_URL)")
	matchBy := fs.String("match-by", cfg.MatchBy, "match existing articles by filename or title")
	dryRun := fs.Bool("dry-run", false, "print the plan without applying it")
	timeout := fs.Duration("timeout", 60*time.Second, "overall timeout")
	_ = fs.Parse(os.Args[1:])

	logger := utils.NewLogger(cfg)

	mode, err := reconcile.ParseMatchBy(*matchBy)
	if err != nil {
		logger.Error("invalid flag", "error", err)
		os.Exit(2)
	}

	if *dbURL != "" {
		cfg.DB = database.ParseURL(*dbURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db := database.MustOpen(cfg.DB)
	defer db.Close()

	if err := database.Migrate(db, cfg.DB.Driver); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	rec := reconcile.New(
		articles.NewRepo(db, cfg.DB.Driver),
		markdown.NewConverter(markdown.Options{Sanitize: cfg.SanitizeHTML}),
		*dir,
		cfg.Author,
		mode,
		logger,
	)

	plan, err := rec.Plan(ctx)
	if err != nil {
		logger.Error("sync plan failed", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		if err := plan.Print(os.Stdout); err != nil {
			logger.Error("print plan", "error", err)
			os.Exit(1)
		}
		return
	}

	res, err := rec.Apply(ctx, plan)
	if err != nil {
		logger.Error("sync failed", "error", err,
			"deleted", res.Deleted, "inserted", res.Inserted, "updated", res.Updated)
		os.Exit(1)
	}

	logger.Info("sync finished",
		"deleted", res.Deleted,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged)
}
