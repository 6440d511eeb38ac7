package database

import (
	"time"
)

// PublishedPaper records a paper the bot has already tweeted, so it is
// never summarized twice.
type PublishedPaper struct {
	ArxivID     string
	Title       string
	TweetID     string
	TweetURL    string
	PublishedOn *time.Time
	CreatedAt   time.Time
}

// Action records a star or note click coming back through a signed
// digest link.
type Action struct {
	ID          int64
	Action      string // star or note
	ContentID   string
	Title       string
	URL         string
	ContentType string
	ContentDate string
	Note        string
	CreatedAt   time.Time
}
