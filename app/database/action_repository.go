package database

import (
	"fmt"
)

// ActionRepository handles database operations for digest actions
type ActionRepository struct {
	db *DB
}

func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Record stores a verified star or note action.
func (r *ActionRepository) Record(action Action) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO actions (action, content_id, title, url, content_type, content_date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, action.Action, action.ContentID, action.Title, action.URL,
		action.ContentType, action.ContentDate, action.Note)

	if err != nil {
		return 0, fmt.Errorf("failed to record action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get action id: %w", err)
	}

	return id, nil
}

// ListRecent returns the latest actions, newest first.
func (r *ActionRepository) ListRecent(limit int) ([]Action, error) {
	rows, err := r.db.Query(`
		SELECT id, action, content_id, title, url, content_type, content_date, note, created_at
		FROM actions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Action, &a.ContentID, &a.Title, &a.URL,
			&a.ContentType, &a.ContentDate, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}

	return actions, rows.Err()
}
