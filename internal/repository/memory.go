package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/stemsi/gscribe-backend/internal/model"
)

type rollKey struct {
	examID  int64
	rollNum int
}

// memoryDB is the shared state behind the in-memory repositories. One mutex
// guards every table so check-and-insert is atomic.
type memoryDB struct {
	mu sync.Mutex

	exams     map[int64]model.ExamMetadata
	questions map[int64]model.QuestionList
	instances map[int64]model.ExamInstance
	rollIndex map[rollKey]int64
	answers   map[int64]model.Answers
	tokens    map[string]model.UserToken
	nextExam  int64
	nextInst  int64
	clock     func() time.Time
}

// MemoryRepositories are in-memory stores with the same constraints as the
// Postgres schema, for local runs and tests.
type MemoryRepositories struct {
	Exams     *MemoryExamRepository
	Questions *MemoryQuestionRepository
	Instances *MemoryExamInstanceRepository
	Answers   *MemoryAnswerRepository
	Tokens    *MemoryUserTokenRepository
}

// NewMemoryRepositories creates an empty set of in-memory repositories.
func NewMemoryRepositories() *MemoryRepositories {
	db := &memoryDB{
		exams:     make(map[int64]model.ExamMetadata),
		questions: make(map[int64]model.QuestionList),
		instances: make(map[int64]model.ExamInstance),
		rollIndex: make(map[rollKey]int64),
		answers:   make(map[int64]model.Answers),
		tokens:    make(map[string]model.UserToken),
		clock:     time.Now,
	}
	return &MemoryRepositories{
		Exams:     &MemoryExamRepository{db: db},
		Questions: &MemoryQuestionRepository{db: db},
		Instances: &MemoryExamInstanceRepository{db: db},
		Answers:   &MemoryAnswerRepository{db: db},
		Tokens:    &MemoryUserTokenRepository{db: db},
	}
}

type MemoryExamRepository struct{ db *memoryDB }

func (r *MemoryExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tokens[exam.Metadata.OwnerUserID]; !ok {
		return ErrNotFound
	}

	r.db.nextExam++
	exam.Metadata.ID = r.db.nextExam
	exam.Metadata.CreatedOn = r.db.clock().UTC()
	r.db.exams[exam.Metadata.ID] = exam.Metadata
	r.db.questions[exam.Metadata.ID] = slices.Clone(exam.Questions)
	return nil
}

func (r *MemoryExamRepository) GetMetadata(ctx context.Context, id int64) (*model.ExamMetadata, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryExamRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]model.ExamMetadata, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []model.ExamMetadata
	for _, m := range r.db.exams {
		if m.OwnerUserID == ownerUserID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b model.ExamMetadata) int {
		return int(b.ID - a.ID)
	})
	return out, nil
}

type MemoryQuestionRepository struct{ db *memoryDB }

func (r *MemoryQuestionRepository) ListByExam(ctx context.Context, examID int64) (model.QuestionList, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return slices.Clone(r.db.questions[examID]), nil
}

type MemoryExamInstanceRepository struct{ db *memoryDB }

func (r *MemoryExamInstanceRepository) Create(ctx context.Context, i *model.ExamInstance) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.exams[i.ExamID]; !ok {
		return ErrNotFound
	}
	key := rollKey{examID: i.ExamID, rollNum: i.StudentRollNum}
	if _, taken := r.db.rollIndex[key]; taken {
		return ErrDuplicate
	}

	r.db.nextInst++
	i.ID = r.db.nextInst
	r.db.instances[i.ID] = *i
	r.db.rollIndex[key] = i.ID
	return nil
}

func (r *MemoryExamInstanceRepository) GetByID(ctx context.Context, id int64) (*model.ExamInstance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i, ok := r.db.instances[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &i, nil
}

func (r *MemoryExamInstanceRepository) GetByExamAndRoll(ctx context.Context, examID int64, rollNum int) (*model.ExamInstance, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, ok := r.db.rollIndex[rollKey{examID: examID, rollNum: rollNum}]
	if !ok {
		return nil, ErrNotFound
	}
	i := r.db.instances[id]
	return &i, nil
}

func (r *MemoryExamInstanceRepository) MarkSubmitted(ctx context.Context, id int64, endTime time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i, ok := r.db.instances[id]
	if !ok || i.EndTime != nil {
		return ErrNotFound
	}
	i.EndTime = &endTime
	r.db.instances[id] = i
	return nil
}

type MemoryAnswerRepository struct{ db *memoryDB }

func (r *MemoryAnswerRepository) Save(ctx context.Context, instanceID int64, answers model.Answers) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.instances[instanceID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.db.answers[instanceID]; ok {
		return ErrDuplicate
	}
	r.db.answers[instanceID] = slices.Clone(answers)
	return nil
}

func (r *MemoryAnswerRepository) Get(ctx context.Context, instanceID int64) (model.Answers, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.answers[instanceID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(a), nil
}

type MemoryUserTokenRepository struct{ db *memoryDB }

func (r *MemoryUserTokenRepository) Get(ctx context.Context, userID string) (*model.UserToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tokens[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryUserTokenRepository) Save(ctx context.Context, t model.UserToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokens[t.UserID] = t
	return nil
}
