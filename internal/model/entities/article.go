package entities

import "time"

// Article is a normalized agricultural news item from one of the
// configured feeds.
type Article struct {
	ID          string    `json:"id"` // sha256 of the item GUID or link
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}
