package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/repository"
)

// PaperSource returns an exam with its questions, or ErrExamNotFound.
type PaperSource interface {
	Paper(ctx context.Context, examID int64) (*model.Exam, error)
}

// ResponseQueue defers a response row append to a background worker.
type ResponseQueue interface {
	Enqueue(ctx context.Context, instanceID int64) error
}

// ExamInstanceService runs the examinee side of an exam: one attempt per
// roll number and one submission per attempt.
type ExamInstanceService struct {
	instances ExamInstanceStore
	answers   AnswerStore
	tokens    UserTokenStore
	papers    PaperSource
	writer    *ResponseSheetWriter
	policy    MissingAnswerPolicy
	retry     ResponseQueue
	now       func() time.Time
	log       zerolog.Logger
}

// NewExamInstanceService creates a new ExamInstanceService.
func NewExamInstanceService(
	instances ExamInstanceStore,
	answers AnswerStore,
	tokens UserTokenStore,
	papers PaperSource,
	writer *ResponseSheetWriter,
	policy MissingAnswerPolicy,
	log zerolog.Logger,
) *ExamInstanceService {
	return &ExamInstanceService{
		instances: instances,
		answers:   answers,
		tokens:    tokens,
		papers:    papers,
		writer:    writer,
		policy:    policy,
		now:       time.Now,
		log:       log.With().Str("component", "exam_instance_service").Logger(),
	}
}

// Start opens an attempt for a roll number and returns it with the exam paper.
func (s *ExamInstanceService) Start(ctx context.Context, examID int64, rollNum int, studentUserID string) (*model.ExamInstance, *model.Exam, error) {
	// Early exit only; the unique constraint on insert is authoritative.
	_, err := s.instances.GetByExamAndRoll(ctx, examID, rollNum)
	if err == nil {
		return nil, nil, ErrExamAlreadyTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("check existing instance: %w", err)
	}

	exam, err := s.papers.Paper(ctx, examID)
	if err != nil {
		if errors.Is(err, ErrExamNotFound) {
			return nil, nil, ErrIncorrectExamID
		}
		return nil, nil, err
	}

	inst := &model.ExamInstance{
		ExamID:         examID,
		StudentUserID:  studentUserID,
		StudentRollNum: rollNum,
		StartTime:      s.now().UTC(),
	}
	if err := s.instances.Create(ctx, inst); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, nil, ErrExamAlreadyTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, nil, ErrIncorrectExamID
		}
		return nil, nil, fmt.Errorf("create instance: %w", err)
	}

	s.log.Info().
		Int64("instance_id", inst.ID).
		Int64("exam_id", examID).
		Int("roll_number", rollNum).
		Msg("Exam started")
	return inst, exam, nil
}

// SetRetryQueue makes Submit also queue failed response rows for a
// background append. Submit still reports them. A nil queue disables it.
func (s *ExamInstanceService) SetRetryQueue(q ResponseQueue) {
	s.retry = q
}

// SubmitInput is an examinee's claim about the instance being submitted.
type SubmitInput struct {
	InstanceID    int64
	ExamID        int64
	StudentUserID string
	RollNum       int
	Answers       model.Answers
}

// Submit closes an attempt: end time first, then answers, then the
// response sheet row. A failed sheet append is always reported as
// ErrResponseNotRecorded with the submitted instance. The stored end time
// and answers are kept, and the row is also handed to the retry queue when
// one is set and the failure is not a missing owner credential.
func (s *ExamInstanceService) Submit(ctx context.Context, in SubmitInput) (*model.ExamInstance, error) {
	inst, err := s.instances.GetByID(ctx, in.InstanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMalformedRequest
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}

	if inst.ExamID != in.ExamID ||
		inst.StudentUserID != in.StudentUserID ||
		inst.StudentRollNum != in.RollNum ||
		inst.EndTime != nil {
		return nil, ErrMalformedRequest
	}

	exam, err := s.papers.Paper(ctx, inst.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load exam %d: %w", inst.ExamID, err)
	}

	if s.policy == MissingAnswerReject {
		if missing := in.Answers.Missing(exam.Questions); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrIncompleteAnswers, missing)
		}
	}

	end := s.now().UTC()
	if err := s.instances.MarkSubmitted(ctx, inst.ID, end); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMalformedRequest
		}
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	inst.EndTime = &end

	if err := s.answers.Save(ctx, inst.ID, in.Answers); err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}
	inst.Answers = in.Answers

	s.log.Info().
		Int64("instance_id", inst.ID).
		Int64("exam_id", inst.ExamID).
		Int("answers", len(in.Answers)).
		Msg("Exam submitted")

	if err := s.appendResponse(ctx, inst, exam); err != nil {
		s.log.Error().Err(err).Int64("instance_id", inst.ID).Msg("Response row not appended")
		if s.retry != nil && !errors.Is(err, ErrNotAuthorized) {
			if qerr := s.retry.Enqueue(ctx, inst.ID); qerr != nil {
				s.log.Error().Err(qerr).Int64("instance_id", inst.ID).Msg("Failed to queue response row")
			} else {
				s.log.Info().Int64("instance_id", inst.ID).Msg("Response row queued for retry")
			}
		}
		return inst, fmt.Errorf("%w: %w", ErrResponseNotRecorded, err)
	}
	return inst, nil
}

// RecordResponse appends the response row of an already submitted
// instance. The retry worker calls it for rows that failed at submit time.
func (s *ExamInstanceService) RecordResponse(ctx context.Context, instanceID int64) error {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return fmt.Errorf("get instance %d: %w", instanceID, err)
	}
	if inst.EndTime == nil {
		return fmt.Errorf("instance %d is not submitted", instanceID)
	}

	answers, err := s.answers.Get(ctx, instanceID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get answers: %w", err)
	}
	inst.Answers = answers

	exam, err := s.papers.Paper(ctx, inst.ExamID)
	if err != nil {
		return fmt.Errorf("load exam %d: %w", inst.ExamID, err)
	}
	return s.appendResponse(ctx, inst, exam)
}

func (s *ExamInstanceService) appendResponse(ctx context.Context, inst *model.ExamInstance, exam *model.Exam) error {
	owner, err := s.tokens.Get(ctx, exam.Metadata.OwnerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAuthorized
		}
		return fmt.Errorf("get owner token: %w", err)
	}
	_, err = s.writer.AppendResponse(ctx, *owner, inst, exam)
	return err
}
