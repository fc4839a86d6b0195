package model

import (
	"strconv"
	"time"
)

// ExamMetadata describes an ingested exam and the spreadsheet it was read from.
type ExamMetadata struct {
	ID              int64     `json:"id"`
	SpreadsheetID   string    `json:"spreadsheet_id"`
	SheetName       string    `json:"sheet_name"`
	OwnerUserID     string    `json:"owner_user_id"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedOn       time.Time `json:"created_on"`
}

// Exam is the metadata plus the ordered questions of an exam.
type Exam struct {
	Metadata  ExamMetadata `json:"metadata"`
	Questions QuestionList `json:"questions"`
}

// ExamPaper is the examinee view of an exam. It leaves out the owner and
// the spreadsheet the exam was read from.
type ExamPaper struct {
	ID              int64        `json:"id"`
	DurationMinutes int          `json:"duration_minutes"`
	CreatedOn       time.Time    `json:"created_on"`
	Questions       QuestionList `json:"questions"`
}

// Paper returns the examinee view of e.
func (e *Exam) Paper() *ExamPaper {
	return &ExamPaper{
		ID:              e.Metadata.ID,
		DurationMinutes: e.Metadata.DurationMinutes,
		CreatedOn:       e.Metadata.CreatedOn,
		Questions:       e.Questions,
	}
}

// ResponseSheetName returns the name of the tab that collects responses for an exam.
func ResponseSheetName(examID int64) string {
	return "Responses_" + strconv.FormatInt(examID, 10)
}

// CreateExamRequest is the payload for ingesting an exam from a spreadsheet.
type CreateExamRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" binding:"required,min=1,max=200"`
	SheetName     string `json:"sheet_name" binding:"required,sheetname"`
}
