package database

import (
	"database/sql"
	"fmt"
)

// PaperRepository handles database operations for published papers
type PaperRepository struct {
	db *DB
}

func NewPaperRepository(db *DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// Has reports whether a paper was already published in a previous run.
func (r *PaperRepository) Has(arxivID string) (bool, error) {
	var exists int
	err := r.db.QueryRow(`
		SELECT 1 FROM published_papers WHERE arxiv_id = ?
	`, arxivID).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check published paper: %w", err)
	}

	return true, nil
}

// Get returns the stored record for a paper, or nil when unknown.
func (r *PaperRepository) Get(arxivID string) (*PublishedPaper, error) {
	var paper PublishedPaper
	err := r.db.QueryRow(`
		SELECT arxiv_id, title, tweet_id, tweet_url, published_on, created_at
		FROM published_papers
		WHERE arxiv_id = ?
	`, arxivID).Scan(&paper.ArxivID, &paper.Title, &paper.TweetID,
		&paper.TweetURL, &paper.PublishedOn, &paper.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get published paper: %w", err)
	}

	return &paper, nil
}

// Record stores (or overwrites) the publication record for a paper.
func (r *PaperRepository) Record(paper PublishedPaper) error {
	_, err := r.db.Exec(`
		INSERT INTO published_papers (arxiv_id, title, tweet_id, tweet_url, published_on)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (arxiv_id) DO UPDATE SET
			title = excluded.title,
			tweet_id = excluded.tweet_id,
			tweet_url = excluded.tweet_url,
			published_on = excluded.published_on
	`, paper.ArxivID, paper.Title, paper.TweetID, paper.TweetURL, paper.PublishedOn)

	if err != nil {
		return fmt.Errorf("failed to record published paper: %w", err)
	}

	return nil
}

// Count returns the number of recorded papers.
func (r *PaperRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM published_papers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count published papers: %w", err)
	}
	return count, nil
}
