package models

import (
	"time"

	"github.com/google/uuid"
)

// DisplayDateLayout is the layout used when showing an article's creation date.
const DisplayDateLayout = "2006-01-02 15:04:05"

// Article is a single blog post generated from one markdown file.
type Article struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"` // source file base name
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`    // rendered HTML
	CreatedAt string    `json:"created_at"` // RFC 3339, set once on insert
	Views     int64     `json:"views"`
}

// DisplayDate renders CreatedAt in UTC for templates. Unparsable values
// come back as "Invalid date".
func (a Article) DisplayDate() string {
	t, err := time.Parse(time.RFC3339, a.CreatedAt)
	if err != nil {
		return "Invalid date"
	}
	return t.UTC().Format(DisplayDateLayout)
}
