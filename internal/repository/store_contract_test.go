package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stemsi/gscribe-backend/internal/model"
)

// storeSet is the behaviour shared by the Postgres and in-memory stores.
type storeSet struct {
	exams interface {
		Create(ctx context.Context, exam *model.Exam) error
		GetMetadata(ctx context.Context, id int64) (*model.ExamMetadata, error)
		ListByOwner(ctx context.Context, ownerUserID string) ([]model.ExamMetadata, error)
	}
	questions interface {
		ListByExam(ctx context.Context, examID int64) (model.QuestionList, error)
	}
	instances interface {
		Create(ctx context.Context, inst *model.ExamInstance) error
		GetByID(ctx context.Context, id int64) (*model.ExamInstance, error)
		GetByExamAndRoll(ctx context.Context, examID int64, rollNum int) (*model.ExamInstance, error)
		MarkSubmitted(ctx context.Context, id int64, endTime time.Time) error
	}
	answers interface {
		Save(ctx context.Context, instanceID int64, answers model.Answers) error
		Get(ctx context.Context, instanceID int64) (model.Answers, error)
	}
	tokens interface {
		Get(ctx context.Context, userID string) (*model.UserToken, error)
		Save(ctx context.Context, token model.UserToken) error
	}
}

func contractExam(owner string) *model.Exam {
	return &model.Exam{
		Metadata: model.ExamMetadata{SpreadsheetID: "sheet-1", SheetName: "Exam", OwnerUserID: owner, DurationMinutes: 30},
		Questions: model.QuestionList{
			model.MultipleChoice{Statement: "Pick", Points: 2, QuestionNumber: 1, Options: [4]string{"a", "b", "c", "d"}},
			model.Subjective{Statement: "Explain", Points: 5, QuestionNumber: 2},
		},
	}
}

// runStoreContract checks a fresh, empty store set.
func runStoreContract(t *testing.T, s storeSet) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.tokens.Get(ctx, "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("tokens.Get(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.exams.Create(ctx, contractExam("owner-1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("exams.Create(unknown owner) error = %v, want ErrNotFound", err)
	}

	tok := model.UserToken{UserID: "owner-1", AccessToken: "a1", RefreshToken: "r1", UpdatedAt: now}
	if err := s.tokens.Save(ctx, tok); err != nil {
		t.Fatalf("tokens.Save() error = %v", err)
	}
	if err := s.tokens.Save(ctx, tok.WithAccessToken("a2", now)); err != nil {
		t.Fatalf("tokens.Save(update) error = %v", err)
	}
	got, err := s.tokens.Get(ctx, "owner-1")
	if err != nil || got.AccessToken != "a2" || got.RefreshToken != "r1" {
		t.Fatalf("tokens.Get() = %+v, %v", got, err)
	}

	exam := contractExam("owner-1")
	if err := s.exams.Create(ctx, exam); err != nil {
		t.Fatalf("exams.Create() error = %v", err)
	}
	if exam.Metadata.ID == 0 || exam.Metadata.CreatedOn.IsZero() {
		t.Fatalf("exams.Create() did not assign id and created_on: %+v", exam.Metadata)
	}
	id := exam.Metadata.ID

	meta, err := s.exams.GetMetadata(ctx, id)
	if err != nil || meta.DurationMinutes != 30 || meta.OwnerUserID != "owner-1" {
		t.Fatalf("exams.GetMetadata() = %+v, %v", meta, err)
	}
	if _, err := s.exams.GetMetadata(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("exams.GetMetadata(missing) error = %v, want ErrNotFound", err)
	}
	if list, err := s.exams.ListByOwner(ctx, "owner-1"); err != nil || len(list) != 1 {
		t.Errorf("exams.ListByOwner() = %v, %v", list, err)
	}
	if list, err := s.exams.ListByOwner(ctx, "owner-2"); err != nil || len(list) != 0 {
		t.Errorf("exams.ListByOwner(other) = %v, %v", list, err)
	}

	qs, err := s.questions.ListByExam(ctx, id)
	if err != nil || len(qs) != 2 {
		t.Fatalf("questions.ListByExam() = %v, %v", qs, err)
	}
	if mc, ok := qs[0].(model.MultipleChoice); !ok || mc.Options[3] != "d" {
		t.Errorf("first question = %#v", qs[0])
	}
	if _, ok := qs[1].(model.Subjective); !ok {
		t.Errorf("second question = %#v", qs[1])
	}

	inst := &model.ExamInstance{ExamID: id, StudentUserID: "student-1", StudentRollNum: 9, StartTime: now}
	if err := s.instances.Create(ctx, inst); err != nil {
		t.Fatalf("instances.Create() error = %v", err)
	}
	dup := &model.ExamInstance{ExamID: id, StudentUserID: "student-2", StudentRollNum: 9, StartTime: now}
	if err := s.instances.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("instances.Create(same roll) error = %v, want ErrDuplicate", err)
	}
	orphan := &model.ExamInstance{ExamID: id + 100, StudentUserID: "student-1", StudentRollNum: 1, StartTime: now}
	if err := s.instances.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Errorf("instances.Create(unknown exam) error = %v, want ErrNotFound", err)
	}

	byRoll, err := s.instances.GetByExamAndRoll(ctx, id, 9)
	if err != nil || byRoll.ID != inst.ID || byRoll.EndTime != nil {
		t.Fatalf("instances.GetByExamAndRoll() = %+v, %v", byRoll, err)
	}

	if err := s.answers.Save(ctx, inst.ID, model.Answers{{QuestionNumber: 2, Answer: "because"}}); err != nil {
		t.Fatalf("answers.Save() error = %v", err)
	}
	if err := s.answers.Save(ctx, inst.ID, nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("answers.Save(again) error = %v, want ErrDuplicate", err)
	}
	if answers, err := s.answers.Get(ctx, inst.ID); err != nil || len(answers) != 1 || answers[0].Answer != "because" {
		t.Errorf("answers.Get() = %v, %v", answers, err)
	}

	end := now.Add(20 * time.Minute)
	if err := s.instances.MarkSubmitted(ctx, inst.ID, end); err != nil {
		t.Fatalf("instances.MarkSubmitted() error = %v", err)
	}
	if err := s.instances.MarkSubmitted(ctx, inst.ID, end); !errors.Is(err, ErrNotFound) {
		t.Errorf("instances.MarkSubmitted(again) error = %v, want ErrNotFound", err)
	}
	byID, err := s.instances.GetByID(ctx, inst.ID)
	if err != nil || byID.EndTime == nil || !byID.EndTime.Equal(end) {
		t.Fatalf("instances.GetByID() = %+v, %v", byID, err)
	}

	// Racing starts for one roll number: the store admits exactly one.
	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.instances.Create(ctx, &model.ExamInstance{
				ExamID: id, StudentUserID: fmt.Sprintf("racer-%d", i), StudentRollNum: 21, StartTime: now,
			})
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, ErrDuplicate):
			t.Errorf("instances.Create(racing) error = %v, want ErrDuplicate", err)
		}
	}
	if created != 1 {
		t.Errorf("%d instances created for one roll number, want 1", created)
	}
}
