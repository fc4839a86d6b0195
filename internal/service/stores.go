package service

import (
	"context"
	"time"

	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// Stores return repository.ErrNotFound for missing rows and
// repository.ErrDuplicate for unique constraint hits.

type ExamStore interface {
	Create(ctx context.Context, exam *model.Exam) error
	GetMetadata(ctx context.Context, id int64) (*model.ExamMetadata, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]model.ExamMetadata, error)
}

type QuestionStore interface {
	ListByExam(ctx context.Context, examID int64) (model.QuestionList, error)
}

type ExamInstanceStore interface {
	Create(ctx context.Context, inst *model.ExamInstance) error
	GetByID(ctx context.Context, id int64) (*model.ExamInstance, error)
	GetByExamAndRoll(ctx context.Context, examID int64, rollNum int) (*model.ExamInstance, error)
	MarkSubmitted(ctx context.Context, id int64, endTime time.Time) error
}

type AnswerStore interface {
	Save(ctx context.Context, instanceID int64, answers model.Answers) error
	Get(ctx context.Context, instanceID int64) (model.Answers, error)
}

type UserTokenStore interface {
	Get(ctx context.Context, userID string) (*model.UserToken, error)
	Save(ctx context.Context, token model.UserToken) error
}

// IdentityVerifier resolves an identity token to a user id.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// TokenProvider is the OAuth token endpoint of the identity provider.
type TokenProvider interface {
	ExchangeAuthCode(ctx context.Context, code string) (identity.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (identity.Tokens, error)
}
