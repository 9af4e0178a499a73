package utils

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"mdblog/pkg/database"
)

const (
	DefaultAddr        = "0.0.0.0:8080"
	DefaultMarkdownDir = "src/markdown"
	DefaultAuthor      = "Maneesh Wijewardhana"

	DefaultSearchRPS   = 5
	DefaultSearchBurst = 10
)

type Config struct {
	Addr        string
	DB          database.Config
	MarkdownDir string
	PublicDir   string
	ClientDir   string

	Author       string
	MatchBy      string // "filename" or "title"
	SanitizeHTML bool

	SearchRPS   float64
	SearchBurst int

	LogLevel  string
	LogFormat string
}

// LoadConfig reads .env (if present) and then the process environment.
// Values that fail to parse fall back to their defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	db := database.DefaultConfig()
	db.MaxOpenConns = envInt("BLOG_DB_MAX_OPEN_CONNS", db.MaxOpenConns)

	return Config{
		Addr:        envString("BLOG_ADDR", DefaultAddr),
		DB:          db,
		MarkdownDir: envString("BLOG_MARKDOWN_DIR", DefaultMarkdownDir),
		PublicDir:   envString("BLOG_PUBLIC_DIR", "public"),
		ClientDir:   envString("BLOG_CLIENT_DIR", "client"),

		Author:       envString("BLOG_AUTHOR", DefaultAuthor),
		MatchBy:      strings.ToLower(envString("BLOG_MATCH_BY", "filename")),
		SanitizeHTML: envBool("BLOG_SANITIZE_HTML", false),

		SearchRPS:   envFloat("BLOG_SEARCH_RPS", DefaultSearchRPS),
		SearchBurst: envInt("BLOG_SEARCH_BURST", DefaultSearchBurst),

		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "text"),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt and envFloat also fall back on non-positive values; none of the
// numeric settings has a meaningful zero.
func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return b
}
