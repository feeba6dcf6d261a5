// Package store persists contracts, their versions and change requests.
// Every mutation of a status-bearing row is conditional on the status the
// caller last read, so concurrent writers cannot silently overwrite each
// other.
package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrStaleWrite = errors.New("record changed since it was read")
	ErrDuplicate  = errors.New("unique constraint violated")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// forUpdate adds a row lock on dialects that support it. SQLite serializes
// writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
