package resume

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/resumebuilder/internal/models"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, profession, content string, input json.RawMessage) (int64, error) {
	profession, err := validate(profession, content)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRow(ctx,
		`INSERT INTO resumes (profession, generated_content, input_data)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		profession, content, nullableInput(input),
	).Scan(&id)
	if err != nil {
		return 0, &StorageError{Op: "insert resume", Err: err}
	}
	return id, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*models.Resume, error) {
	var (
		r     models.Resume
		input *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, profession, generated_content, input_data, created_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Profession, &r.GeneratedContent, &input, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get resume", Err: err}
	}
	if input != nil {
		r.InputData = json.RawMessage(*input)
	}
	return &r, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
