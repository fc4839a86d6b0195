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

// ExamRepository handles exam metadata access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts the exam metadata and all of its questions in one
// transaction, assigning ID and CreatedOn.
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		m := &exam.Metadata
		err := tx.QueryRow(ctx,
			`INSERT INTO exams (spreadsheet_id, sheet_name, owner_user_id, duration_minutes)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_on`,
			m.SpreadsheetID, m.SheetName, m.OwnerUserID, m.DurationMinutes,
		).Scan(&m.ID, &m.CreatedOn)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return fmt.Errorf("owner %s: %w", m.OwnerUserID, ErrNotFound)
			}
			return err
		}

		rows := make([][]interface{}, len(exam.Questions))
		for i, q := range exam.Questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %d: %w", q.Number(), err)
			}
			rows[i] = []interface{}{m.ID, q.Number(), json.RawMessage(raw)}
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"questions"},
			[]string{"exam_id", "question_number", "question"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
}

// GetMetadata retrieves exam metadata by id.
func (r *ExamRepository) GetMetadata(ctx context.Context, id int64) (*model.ExamMetadata, error) {
	m := &model.ExamMetadata{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, spreadsheet_id, sheet_name, owner_user_id, duration_minutes, created_on
		 FROM exams WHERE id = $1`, id,
	).Scan(&m.ID, &m.SpreadsheetID, &m.SheetName, &m.OwnerUserID, &m.DurationMinutes, &m.CreatedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByOwner retrieves the metadata of every exam a paper setter owns, newest first.
func (r *ExamRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]model.ExamMetadata, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, spreadsheet_id, sheet_name, owner_user_id, duration_minutes, created_on
		 FROM exams WHERE owner_user_id = $1
		 ORDER BY created_on DESC, id DESC`, ownerUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.ExamMetadata
	for rows.Next() {
		var m model.ExamMetadata
		if err := rows.Scan(&m.ID, &m.SpreadsheetID, &m.SheetName, &m.OwnerUserID, &m.DurationMinutes, &m.CreatedOn); err != nil {
			return nil, err
		}
		exams = append(exams, m)
	}
	return exams, rows.Err()
}
