package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the local UI store. It only holds per-session view state and
// the activity journal; products live in the remote service.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: ":memory:" databases are per connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- View state per browser session (sid cookie)
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  editor_open INTEGER NOT NULL DEFAULT 0,
  editing_id INTEGER NULL,
  draft_name TEXT NOT NULL DEFAULT '',
  draft_description TEXT NOT NULL DEFAULT '',
  draft_price TEXT NOT NULL DEFAULT '',
  draft_stock TEXT NOT NULL DEFAULT '',
  error_msg TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

-- Mutation journal
CREATE TABLE IF NOT EXISTS activity(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  action TEXT NOT NULL CHECK (action IN ('create','update','delete')),
  product_id INTEGER NOT NULL DEFAULT 0,
  outcome TEXT NOT NULL CHECK (outcome IN ('ok','error')),
  message TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at);
CREATE INDEX IF NOT EXISTS idx_activity_session    ON activity(session_id);
`
	_, err := db.Exec(schema)
	return err
}
