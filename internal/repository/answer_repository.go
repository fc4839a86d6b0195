package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// AnswerRepository stores the answers submitted for an exam instance.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Save stores the answers of an instance. Answers are written once.
func (r *AnswerRepository) Save(ctx context.Context, instanceID int64, answers model.Answers) error {
	if answers == nil {
		answers = model.Answers{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO answers (exam_instance_id, answers) VALUES ($1, $2)`,
		instanceID, json.RawMessage(raw))
	switch pgCode(err) {
	case pgUniqueViolation:
		return ErrDuplicate
	case pgForeignKeyViolation:
		return ErrNotFound
	}
	return err
}

// Get retrieves the answers of an instance.
func (r *AnswerRepository) Get(ctx context.Context, instanceID int64) (model.Answers, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT answers FROM answers WHERE exam_instance_id = $1`, instanceID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var answers model.Answers
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("instance %d: broken answers in database: %w", instanceID, err)
	}
	return answers, nil
}
