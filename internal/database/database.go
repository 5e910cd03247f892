// Package database keeps the bot's per-chat UI state in SQLite: the
// usage form values and the plans picked for comparison. Plan and
// provider data always come from the backend and are never stored here.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"energy-analyzer/internal/analytics"
	errx "energy-analyzer/internal/core/errx"
	logx "energy-analyzer/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

// MaxSelections is how many plans a chat can compare at once.
const MaxSelections = analytics.MaxComparePlans

var (
	// ErrSelectionFull is returned when a chat already has MaxSelections plans.
	ErrSelectionFull = errors.New("comparison already holds the maximum number of plans")
	// ErrAlreadySelected is returned when the plan is already in the comparison.
	ErrAlreadySelected = errors.New("plan already selected")
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// ChatSettings are the usage form values of a chat.
type ChatSettings struct {
	ChatID   int64
	UsageKwh float64
	BaseFee  float64
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errx.WrapStorage(fmt.Errorf("open sqlite %s: %w", dbPath, err))
	}

	db := &DB{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logx.Info().Str("path", dbPath).Msg("state database ready")
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_settings (
		chat_id INTEGER PRIMARY KEY,
		usage_kwh REAL NOT NULL,
		base_fee REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS selections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		plan_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (chat_id, plan_id)
	);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return errx.WrapStorage(fmt.Errorf("apply schema: %w", err))
	}
	return nil
}

// Settings returns the stored settings of chatID, or defaults when the
// chat never set any.
func (db *DB) Settings(ctx context.Context, chatID int64, defaults ChatSettings) (ChatSettings, error) {
	s := ChatSettings{ChatID: chatID}
	err := db.conn.QueryRowContext(ctx,
		"SELECT usage_kwh, base_fee FROM chat_settings WHERE chat_id = ?",
		chatID,
	).Scan(&s.UsageKwh, &s.BaseFee)
	if errors.Is(err, sql.ErrNoRows) {
		defaults.ChatID = chatID
		return defaults, nil
	}
	if err != nil {
		return ChatSettings{}, errx.WrapStorage(fmt.Errorf("load settings of chat %d: %w", chatID, err))
	}
	return s, nil
}

// SaveSettings inserts or replaces the settings of s.ChatID.
func (db *DB) SaveSettings(ctx context.Context, s ChatSettings) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO chat_settings (chat_id, usage_kwh, base_fee, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id) DO UPDATE SET
			usage_kwh = excluded.usage_kwh,
			base_fee = excluded.base_fee,
			updated_at = CURRENT_TIMESTAMP`,
		s.ChatID, s.UsageKwh, s.BaseFee,
	)
	if err != nil {
		return errx.WrapStorage(fmt.Errorf("save settings of chat %d: %w", s.ChatID, err))
	}
	return nil
}

// Selections returns the plan ids picked by chatID in the order they were
// added.
func (db *DB) Selections(ctx context.Context, chatID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT plan_id FROM selections WHERE chat_id = ? ORDER BY id",
		chatID,
	)
	if err != nil {
		return nil, errx.WrapStorage(fmt.Errorf("list selections of chat %d: %w", chatID, err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errx.WrapStorage(err)
		}
		ids = append(ids, id)
	}
	return ids, errx.WrapStorage(rows.Err())
}

// AddSelection appends planID to the comparison of chatID.
func (db *DB) AddSelection(ctx context.Context, chatID, planID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapStorage(err)
	}
	defer tx.Rollback()

	var count int
	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(plan_id = ?), 0) FROM selections WHERE chat_id = ?",
		planID, chatID,
	).Scan(&count, &exists)
	if err != nil {
		return errx.WrapStorage(fmt.Errorf("count selections of chat %d: %w", chatID, err))
	}
	if exists {
		return ErrAlreadySelected
	}
	if count >= MaxSelections {
		return ErrSelectionFull
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO selections (chat_id, plan_id) VALUES (?, ?)",
		chatID, planID,
	); err != nil {
		return errx.WrapStorage(fmt.Errorf("add selection %d to chat %d: %w", planID, chatID, err))
	}
	return errx.WrapStorage(tx.Commit())
}

// RemoveSelection drops planID from the comparison of chatID and reports
// whether it was there.
func (db *DB) RemoveSelection(ctx context.Context, chatID, planID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM selections WHERE chat_id = ? AND plan_id = ?",
		chatID, planID,
	)
	if err != nil {
		return false, errx.WrapStorage(fmt.Errorf("remove selection %d of chat %d: %w", planID, chatID, err))
	}
	n, err := res.RowsAffected()
	return n > 0, errx.WrapStorage(err)
}

// ClearSelections empties the comparison of chatID and returns how many
// plans were removed.
func (db *DB) ClearSelections(ctx context.Context, chatID int64) (int64, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM selections WHERE chat_id = ?", chatID)
	if err != nil {
		return 0, errx.WrapStorage(fmt.Errorf("clear selections of chat %d: %w", chatID, err))
	}
	n, err := res.RowsAffected()
	return n, errx.WrapStorage(err)
}
