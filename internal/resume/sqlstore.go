package resume

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/nikhilbhutani/resumebuilder/internal/models"
)

// SQLStore keeps resumes in the embedded libSQL file.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, profession, content string, input json.RawMessage) (int64, error) {
	profession, err := validate(profession, content)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO resumes (profession, generated_content, input_data, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		profession, content, nullableInput(input), time.Now().Unix(),
	).Scan(&id)
	if err != nil {
		return 0, &StorageError{Op: "insert resume", Err: err}
	}
	return id, nil
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (*models.Resume, error) {
	var (
		r         models.Resume
		input     sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, profession, generated_content, input_data, created_at
		 FROM resumes WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Profession, &r.GeneratedContent, &input, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get resume", Err: err}
	}
	if input.Valid {
		r.InputData = json.RawMessage(input.String)
	}
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &r, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() {
	s.db.Close()
}
