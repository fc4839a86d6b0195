package model

import (
	"time"
)

// InstanceState is derived from an exam instance's end time.
type InstanceState string

const (
	InstanceStateInProgress InstanceState = "IN_PROGRESS"
	InstanceStateSubmitted  InstanceState = "SUBMITTED"
)

// ExamInstance is one examinee's single attempt at an exam.
type ExamInstance struct {
	ID             int64      `json:"id"`
	ExamID         int64      `json:"exam_id"`
	StudentUserID  string     `json:"student_user_id"`
	StudentRollNum int        `json:"roll_number"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Answers        Answers    `json:"answers,omitempty"`
}

// State reports whether the instance is still accepting a submission.
func (i *ExamInstance) State() InstanceState {
	if i.EndTime != nil {
		return InstanceStateSubmitted
	}
	return InstanceStateInProgress
}

// Answer is the examinee's answer text for one question.
type Answer struct {
	QuestionNumber int    `json:"question_number" binding:"min=1"`
	Answer         string `json:"answer"`
}

// Answers is the set of answers submitted for one exam instance.
type Answers []Answer

// ByQuestion indexes answers by question number. Later duplicates win.
func (a Answers) ByQuestion() map[int]string {
	out := make(map[int]string, len(a))
	for _, ans := range a {
		out[ans.QuestionNumber] = ans.Answer
	}
	return out
}

// Missing returns the question numbers of qs that have no answer.
func (a Answers) Missing(qs QuestionList) []int {
	byNum := a.ByQuestion()
	var missing []int
	for _, q := range qs {
		if _, ok := byNum[q.Number()]; !ok {
			missing = append(missing, q.Number())
		}
	}
	return missing
}

// StartExamRequest is the payload for an examinee starting an exam.
type StartExamRequest struct {
	ExamID     int64 `json:"exam_id" binding:"required,min=1"`
	RollNumber int   `json:"roll_number" binding:"required,min=1"`
}

// SubmitExamRequest is the payload for an examinee submitting answers.
type SubmitExamRequest struct {
	ExamInstanceID int64   `json:"exam_instance_id" binding:"required,min=1"`
	ExamID         int64   `json:"exam_id" binding:"required,min=1"`
	RollNumber     int     `json:"roll_number" binding:"required,min=1"`
	Answers        Answers `json:"answers" binding:"dive"`
}

// ExamInstanceResponse is returned when an exam is started.
type ExamInstanceResponse struct {
	Instance *ExamInstance `json:"instance"`
	Exam     *ExamPaper    `json:"exam"`
}
