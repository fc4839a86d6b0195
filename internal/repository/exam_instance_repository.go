package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// ExamInstanceRepository handles exam instance data access.
type ExamInstanceRepository struct {
	pool *pgxpool.Pool
}

// NewExamInstanceRepository creates a new ExamInstanceRepository.
func NewExamInstanceRepository(pool *pgxpool.Pool) *ExamInstanceRepository {
	return &ExamInstanceRepository{pool: pool}
}

const instanceColumns = `id, exam_id, student_user_id, student_roll_num, start_time, end_time`

func scanInstance(row pgx.Row) (*model.ExamInstance, error) {
	i := &model.ExamInstance{}
	err := row.Scan(&i.ID, &i.ExamID, &i.StudentUserID, &i.StudentRollNum, &i.StartTime, &i.EndTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Create inserts a new in-progress instance. A second instance for the same
// (exam, roll number) is rejected by the unique constraint with ErrDuplicate.
func (r *ExamInstanceRepository) Create(ctx context.Context, i *model.ExamInstance) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_instances (exam_id, student_user_id, student_roll_num, start_time)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, student_roll_num) DO NOTHING
		 RETURNING id`,
		i.ExamID, i.StudentUserID, i.StudentRollNum, i.StartTime,
	).Scan(&i.ID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrDuplicate
	case pgCode(err) == pgForeignKeyViolation:
		return ErrNotFound
	}
	return err
}

// GetByID retrieves an instance by id.
func (r *ExamInstanceRepository) GetByID(ctx context.Context, id int64) (*model.ExamInstance, error) {
	return scanInstance(r.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM exam_instances WHERE id = $1`, id))
}

// GetByExamAndRoll retrieves the instance for an exam and roll number.
func (r *ExamInstanceRepository) GetByExamAndRoll(ctx context.Context, examID int64, rollNum int) (*model.ExamInstance, error) {
	return scanInstance(r.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM exam_instances
		 WHERE exam_id = $1 AND student_roll_num = $2`, examID, rollNum))
}

// MarkSubmitted sets the end time of an in-progress instance. It returns
// ErrNotFound when the instance does not exist or has already ended.
func (r *ExamInstanceRepository) MarkSubmitted(ctx context.Context, id int64, endTime time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_instances SET end_time = $1
		 WHERE id = $2 AND end_time IS NULL`, endTime, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
