package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
	"github.com/stemsi/gscribe-backend/internal/examsheet"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/repository"
)

// ExamService ingests exams from spreadsheets and serves them back.
type ExamService struct {
	exams     ExamStore
	questions QuestionStore
	tokens    UserTokenStore
	reader    *ExamSourceReader
	writer    *ResponseSheetWriter
	rdb       *redis.Client
	paperTTL  time.Duration
	log       zerolog.Logger
}

// NewExamService creates a new ExamService. rdb may be nil, in which case
// exam papers are always read from the store.
func NewExamService(
	exams ExamStore,
	questions QuestionStore,
	tokens UserTokenStore,
	reader *ExamSourceReader,
	writer *ResponseSheetWriter,
	rdb *redis.Client,
	paperTTL time.Duration,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		tokens:    tokens,
		reader:    reader,
		writer:    writer,
		rdb:       rdb,
		paperTTL:  paperTTL,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create reads, validates and stores the exam in the given sheet, then
// prepares its response sheet. Validation failures are *examsheet.FormatError.
// If the response sheet cannot be prepared the exam stays stored and the
// error is returned.
func (s *ExamService) Create(ctx context.Context, ownerUserID string, req model.CreateExamRequest) (*model.Exam, error) {
	owner, err := s.tokens.Get(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("get user token: %w", err)
	}

	src := examsheet.Source{SpreadsheetID: req.SpreadsheetID, SheetName: req.SheetName}
	grid, tok, err := s.reader.Read(ctx, *owner, src)
	if err != nil {
		return nil, err
	}

	if err := examsheet.Validate(grid); err != nil {
		return nil, err
	}
	exam := examsheet.Generate(grid, src, ownerUserID)

	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("store exam: %w", err)
	}

	s.log.Info().
		Int64("exam_id", exam.Metadata.ID).
		Str("owner", ownerUserID).
		Int("questions", len(exam.Questions)).
		Msg("Exam ingested")

	if _, err := s.writer.EnsureTemplate(ctx, tok, exam); err != nil {
		s.log.Error().Err(err).Int64("exam_id", exam.Metadata.ID).Msg("Response sheet not prepared")
		return nil, err
	}
	return exam, nil
}

// List returns the metadata of every exam the user owns.
func (s *ExamService) List(ctx context.Context, ownerUserID string) ([]model.ExamMetadata, error) {
	exams, err := s.exams.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.ExamMetadata{}
	}
	return exams, nil
}

// Get returns an exam owned by the user. Exams owned by someone else are
// reported as not found.
func (s *ExamService) Get(ctx context.Context, ownerUserID string, examID int64) (*model.Exam, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Metadata.OwnerUserID != ownerUserID {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// Paper returns the exam as shown to examinees. Exams never change after
// ingestion, so cached papers do not expire early.
func (s *ExamService) Paper(ctx context.Context, examID int64) (*model.Exam, error) {
	key := config.CacheKey.ExamPaperKey(examID)

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var exam model.Exam
			if err := json.Unmarshal(data, &exam); err == nil {
				return &exam, nil
			}
			s.log.Warn().Int64("exam_id", examID).Msg("Discarding unreadable cached paper")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Int64("exam_id", examID).Msg("Paper cache unavailable")
		}
	}

	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(exam); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.paperTTL).Err(); err != nil {
				s.log.Warn().Err(err).Int64("exam_id", examID).Msg("Failed to cache paper")
			}
		}
	}
	return exam, nil
}

// load reads an exam with its questions. An exam without questions is
// treated as missing.
func (s *ExamService) load(ctx context.Context, examID int64) (*model.Exam, error) {
	meta, err := s.exams.GetMetadata(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrExamNotFound
	}

	return &model.Exam{Metadata: *meta, Questions: questions}, nil
}
