// Package resume persists generated resumes. Rows are append-only: the store
// exposes no update or delete.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/resumebuilder/internal/models"
)

var (
	ErrNotFound     = errors.New("resume not found")
	ErrEmptyContent = errors.New("resume content is empty")
)

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

type Store interface {
	Create(ctx context.Context, profession, content string, input json.RawMessage) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Resume, error)
	Ping(ctx context.Context) error
	Close()
}

func validate(profession, content string) (string, error) {
	if content == "" {
		return "", ErrEmptyContent
	}
	if profession == "" {
		profession = models.UnknownProfession
	}
	return profession, nil
}

func nullableInput(input json.RawMessage) *string {
	if len(input) == 0 {
		return nil
	}
	s := string(input)
	return &s
}
