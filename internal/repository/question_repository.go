package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam retrieves all questions for a given exam, ordered by question number.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID int64) (model.QuestionList, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question FROM questions
		 WHERE exam_id = $1
		 ORDER BY question_number`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions model.QuestionList
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		q, err := model.DecodeQuestion(raw)
		if err != nil {
			return nil, fmt.Errorf("exam %d: broken question in database: %w", examID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
