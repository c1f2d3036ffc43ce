// Package directory maps chat users to their linked spreadsheet.
package directory

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/tracker/internal/model"
)

// Migrations holds the schema of the user table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// ErrNotLinked is returned when a user has no spreadsheet on record.
var ErrNotLinked = errors.New("directory: user has not linked a sheet")

// Directory stores one row per chat user.
type Directory struct {
	db *sqlx.DB
}

// New returns a Directory on db. The schema must already be migrated.
func New(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Exists reports whether userID has linked a sheet.
func (d *Directory) Exists(ctx context.Context, userID int64) (bool, error) {
	var n int
	q := d.db.Rebind(`SELECT COUNT(1) FROM user_table WHERE telegram_id = ?`)
	if err := d.db.GetContext(ctx, &n, q, key(userID)); err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return n > 0, nil
}

// SheetID returns the sheet linked to userID or ErrNotLinked.
func (d *Directory) SheetID(ctx context.Context, userID int64) (string, error) {
	var rec model.UserRecord
	q := d.db.Rebind(`SELECT telegram_id, sheet_id FROM user_table WHERE telegram_id = ?`)
	err := d.db.GetContext(ctx, &rec, q, key(userID))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotLinked
	}
	if err != nil {
		return "", fmt.Errorf("lookup sheet: %w", err)
	}
	return rec.SheetID, nil
}

// Link stores sheetID for userID, replacing any previous link.
func (d *Directory) Link(ctx context.Context, userID int64, sheetID string) error {
	rec := model.UserRecord{TelegramID: key(userID), SheetID: sheetID}
	_, err := d.db.NamedExecContext(ctx, `
		INSERT INTO user_table (telegram_id, sheet_id) VALUES (:telegram_id, :sheet_id)
		ON CONFLICT (telegram_id) DO UPDATE SET sheet_id = EXCLUDED.sheet_id`, rec)
	if err != nil {
		return fmt.Errorf("link sheet: %w", err)
	}
	return nil
}
