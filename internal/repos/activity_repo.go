package repos

import (
	"github.com/jmoiron/sqlx"

	"productos/internal/domain"
)

type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Insert(e domain.ActivityEntry) error {
	_, err := r.db.NamedExec(`
		INSERT INTO activity(id, session_id, request_id, action, product_id, outcome, message, created_at)
		VALUES(:id, :session_id, :request_id, :action, :product_id, :outcome, :message, :created_at)
	`, e)
	return err
}

// Latest returns up to limit entries, newest first.
func (r *ActivityRepo) Latest(limit int) ([]domain.ActivityEntry, error) {
	var out []domain.ActivityEntry
	err := r.db.Select(&out, `
		SELECT id, session_id, request_id, action, product_id, outcome, message, created_at
		FROM activity
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	return out, err
}
