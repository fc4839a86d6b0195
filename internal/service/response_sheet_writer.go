package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/sheets"
)

// MissingAnswerPolicy decides what happens when a submission lacks an
// answer for some question.
type MissingAnswerPolicy string

const (
	// MissingAnswerBlank leaves the cell empty.
	MissingAnswerBlank MissingAnswerPolicy = "blank"
	// MissingAnswerReject refuses the submission before anything is stored.
	MissingAnswerReject MissingAnswerPolicy = "reject"
)

// ParseMissingAnswerPolicy validates a configured policy name.
func ParseMissingAnswerPolicy(s string) (MissingAnswerPolicy, error) {
	switch p := MissingAnswerPolicy(s); p {
	case MissingAnswerBlank, MissingAnswerReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown missing answer policy %q", s)
	}
}

const (
	responseStartTimeLayout = "2006-01-02 15:04:05"
	finalPointsPlaceholder  = "-"
)

// ResponseSheetWriter maintains the per-exam response sheet in the owner's spreadsheet.
type ResponseSheetWriter struct {
	client sheets.Client
	access *SpreadsheetAccess
	log    zerolog.Logger
}

// NewResponseSheetWriter creates a new ResponseSheetWriter.
func NewResponseSheetWriter(client sheets.Client, access *SpreadsheetAccess, log zerolog.Logger) *ResponseSheetWriter {
	return &ResponseSheetWriter{
		client: client,
		access: access,
		log:    log.With().Str("component", "response_sheet_writer").Logger(),
	}
}

// ResponseHeader is the first row of a response sheet.
func ResponseHeader(questions model.QuestionList) []string {
	row := make([]string, 0, len(questions)+3)
	row = append(row, "Start time", "RollNumber")
	row = append(row, questions.Statements()...)
	return append(row, "Final Points")
}

// ResponseRow is the response sheet row for a submitted instance. Answers
// are placed by question number; unanswered questions get an empty cell.
func ResponseRow(inst *model.ExamInstance, questions model.QuestionList) []string {
	byNum := inst.Answers.ByQuestion()

	ordered := slices.Clone(questions)
	slices.SortStableFunc(ordered, func(a, b model.Question) int {
		return a.Number() - b.Number()
	})

	row := make([]string, 0, len(questions)+3)
	row = append(row,
		inst.StartTime.UTC().Format(responseStartTimeLayout),
		strconv.Itoa(inst.StudentRollNum),
	)
	for _, q := range ordered {
		row = append(row, byNum[q.Number()])
	}
	return append(row, finalPointsPlaceholder)
}

// EnsureTemplate creates the exam's response sheet, or clears it if it
// already exists, and writes the header row.
func (w *ResponseSheetWriter) EnsureTemplate(ctx context.Context, owner model.UserToken, exam *model.Exam) (model.UserToken, error) {
	m := exam.Metadata
	name := model.ResponseSheetName(m.ID)
	header := [][]string{ResponseHeader(exam.Questions)}

	owner, err := Do(ctx, w.access, owner, func(ctx context.Context, accessToken string) error {
		titles, err := w.client.ListSheetTitles(ctx, m.SpreadsheetID, accessToken)
		if err != nil {
			return err
		}

		if slices.Contains(titles, name) {
			err = w.client.ClearRange(ctx, m.SpreadsheetID, sheets.A1(name, ""), accessToken)
		} else {
			err = w.client.AddSheet(ctx, m.SpreadsheetID, name, accessToken)
		}
		if err != nil {
			return err
		}

		return w.client.WriteRange(ctx, m.SpreadsheetID, sheets.A1(name, "A1"), header, accessToken)
	})
	if err != nil {
		return owner, err
	}

	w.log.Info().
		Int64("exam_id", m.ID).
		Str("sheet", name).
		Msg("Response sheet ready")
	return owner, nil
}

// AppendResponse appends one row for a submitted instance.
func (w *ResponseSheetWriter) AppendResponse(ctx context.Context, owner model.UserToken, inst *model.ExamInstance, exam *model.Exam) (model.UserToken, error) {
	m := exam.Metadata
	name := model.ResponseSheetName(m.ID)
	rows := [][]string{ResponseRow(inst, exam.Questions)}

	owner, err := Do(ctx, w.access, owner, func(ctx context.Context, accessToken string) error {
		return w.client.AppendRange(ctx, m.SpreadsheetID, sheets.A1(name, ""), rows, accessToken)
	})
	if err != nil {
		return owner, err
	}

	w.log.Debug().
		Int64("exam_id", m.ID).
		Int64("instance_id", inst.ID).
		Dur("elapsed", time.Since(inst.StartTime)).
		Msg("Response appended")
	return owner, nil
}
