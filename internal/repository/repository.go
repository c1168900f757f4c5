// Package repository is the query client for the golf trips database.
// Every read and write the service layer needs goes through a Repository
// method, so handlers and services never build GORM queries themselves.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the requested row does not exist (or is not part of
	// the given event).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique value such as an event slug is taken.
	ErrDuplicate = errors.New("already exists")
	// ErrStaleWrite means a scorecard row changed between read and write:
	// either the version guard missed or someone inserted the same hole first.
	ErrStaleWrite = errors.New("scorecard entry was changed by someone else")
)

// Repository wraps a GORM handle.
type Repository struct {
	db *gorm.DB
}

// New returns a Repository using db.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// notFound maps GORM's record-not-found error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
