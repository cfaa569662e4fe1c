package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"productos/internal/domain"
)

type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

type sessionRow struct {
	ID          string        `db:"id"`
	EditorOpen  bool          `db:"editor_open"`
	EditingID   sql.NullInt64 `db:"editing_id"`
	Name        string        `db:"draft_name"`
	Description string        `db:"draft_description"`
	Price       string        `db:"draft_price"`
	Stock       string        `db:"draft_stock"`
	Error       string        `db:"error_msg"`
}

// Load returns the stored view state for sid. A session never saved yields
// sql.ErrNoRows.
func (r *SessionRepo) Load(sid string) (domain.ViewState, error) {
	var row sessionRow
	err := r.db.Get(&row, `
		SELECT id, editor_open, editing_id, draft_name, draft_description,
		       draft_price, draft_stock, error_msg
		FROM sessions
		WHERE id = ?
	`, sid)
	if err != nil {
		return domain.ViewState{}, err
	}
	st := domain.ViewState{
		EditorOpen: row.EditorOpen,
		Error:      row.Error,
		Draft: domain.Draft{
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Stock:       row.Stock,
		},
	}
	if row.EditingID.Valid {
		id := row.EditingID.Int64
		st.Draft.EditingID = &id
	}
	return st, nil
}

// Save upserts the view state for sid.
func (r *SessionRepo) Save(sid string, st domain.ViewState) error {
	return r.SaveAt(sid, st, time.Now())
}

// SaveAt upserts the view state for sid, stamping it with at.
func (r *SessionRepo) SaveAt(sid string, st domain.ViewState, at time.Time) error {
	var editing sql.NullInt64
	if st.Draft.EditingID != nil {
		editing = sql.NullInt64{Int64: *st.Draft.EditingID, Valid: true}
	}
	_, err := r.db.Exec(`
		INSERT INTO sessions(id, editor_open, editing_id, draft_name, draft_description,
		                     draft_price, draft_stock, error_msg, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  editor_open = excluded.editor_open,
		  editing_id = excluded.editing_id,
		  draft_name = excluded.draft_name,
		  draft_description = excluded.draft_description,
		  draft_price = excluded.draft_price,
		  draft_stock = excluded.draft_stock,
		  error_msg = excluded.error_msg,
		  updated_at = excluded.updated_at
	`, sid, st.EditorOpen, editing, st.Draft.Name, st.Draft.Description,
		st.Draft.Price, st.Draft.Stock, st.Error, at.UTC().Format(time.RFC3339))
	return err
}

// Delete forgets a session.
func (r *SessionRepo) Delete(sid string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, sid)
	return err
}

// DeleteIdle removes sessions not saved since before and reports how many
// went away.
func (r *SessionRepo) DeleteIdle(before time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE updated_at < ?`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
