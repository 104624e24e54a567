package model

import "time"

// Movie is a film that can be scheduled as one or more shows.  Titles
// are unique.
type Movie struct {
	ID          uint64    `json:"id"`                     // movies.id
	Title       string    `json:"title"`                  // movies.title
	Language    *string   `json:"language,omitempty"`     // movies.language (nullable)
	DurationMin *int      `json:"duration_min,omitempty"` // movies.duration_min (nullable)
	CreatedAt   time.Time `json:"created_at"`             // movies.created_at
}
