package domain

import "time"

// Article is the normalized article shape the backend returns. Articles are
// immutable once received; views deduplicate them by Identity.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage,omitempty"`
	Source      Source    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    string    `json:"category,omitempty"`
}

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity is the key used to tell articles apart in a rendered list:
// URL when present, falling back to ID, falling back to Title.
func (a Article) Identity() string {
	if a.URL != "" {
		return a.URL
	}
	if a.ID != "" {
		return a.ID
	}
	return a.Title
}

// NewsPage is one page of results for a feed query.
type NewsPage struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`

	// FromCache reports whether this page was served from the local cache.
	// It is attached when the page is read back, never when it is stored.
	FromCache bool `json:"-"`
}
