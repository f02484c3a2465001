package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned by repos when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate key")

// IsDuplicateKey recognizes unique violations from gorm's error
// translation, a raw pgconn error, or the sqlite/postgres driver text.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Wrap maps unique violations to ErrDuplicate and passes everything else
// through unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKey(err) && !errors.Is(err, ErrDuplicate) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
