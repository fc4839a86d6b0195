package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the discriminator written in column A of a question row.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MCQ"
	QuestionTypeSubjective     QuestionType = "SUBJECTIVE"
)

// OptionCount is the number of options every multiple choice question carries.
const OptionCount = 4

// Question is implemented only by MultipleChoice and Subjective.
type Question interface {
	Kind() QuestionType
	Number() int
	Text() string
	Score() int
	sealed()
}

// MultipleChoice is a question answered by picking one of four options.
type MultipleChoice struct {
	Statement      string
	Points         int
	QuestionNumber int
	Options        [OptionCount]string
}

// Subjective is a free-text question.
type Subjective struct {
	Statement      string
	Points         int
	QuestionNumber int
}

func (q MultipleChoice) Kind() QuestionType { return QuestionTypeMultipleChoice }
func (q MultipleChoice) Number() int        { return q.QuestionNumber }
func (q MultipleChoice) Text() string       { return q.Statement }
func (q MultipleChoice) Score() int         { return q.Points }
func (MultipleChoice) sealed()              {}

func (q Subjective) Kind() QuestionType { return QuestionTypeSubjective }
func (q Subjective) Number() int        { return q.QuestionNumber }
func (q Subjective) Text() string       { return q.Statement }
func (q Subjective) Score() int         { return q.Points }
func (Subjective) sealed()              {}

// questionJSON is the wire and storage shape shared by both variants.
type questionJSON struct {
	Type           QuestionType `json:"type"`
	Statement      string       `json:"statement"`
	Points         int          `json:"points"`
	QuestionNumber int          `json:"question_number"`
	Options        []string     `json:"options,omitempty"`
}

func (q MultipleChoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{
		Type:           QuestionTypeMultipleChoice,
		Statement:      q.Statement,
		Points:         q.Points,
		QuestionNumber: q.QuestionNumber,
		Options:        q.Options[:],
	})
}

func (q Subjective) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{
		Type:           QuestionTypeSubjective,
		Statement:      q.Statement,
		Points:         q.Points,
		QuestionNumber: q.QuestionNumber,
	})
}

// DecodeQuestion decodes a single question, dispatching on its "type" field.
func DecodeQuestion(data []byte) (Question, error) {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case QuestionTypeMultipleChoice:
		if len(raw.Options) != OptionCount {
			return nil, fmt.Errorf("question %d: expected %d options, got %d", raw.QuestionNumber, OptionCount, len(raw.Options))
		}
		q := MultipleChoice{
			Statement:      raw.Statement,
			Points:         raw.Points,
			QuestionNumber: raw.QuestionNumber,
		}
		copy(q.Options[:], raw.Options)
		return q, nil
	case QuestionTypeSubjective:
		return Subjective{
			Statement:      raw.Statement,
			Points:         raw.Points,
			QuestionNumber: raw.QuestionNumber,
		}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", raw.Type)
	}
}

// QuestionList is an ordered list of questions that survives a JSON round trip.
type QuestionList []Question

func (l *QuestionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(QuestionList, 0, len(raws))
	for _, r := range raws {
		q, err := DecodeQuestion(r)
		if err != nil {
			return err
		}
		out = append(out, q)
	}
	*l = out
	return nil
}

// Statements returns the statement of every question in order.
func (l QuestionList) Statements() []string {
	out := make([]string, len(l))
	for i, q := range l {
		out[i] = q.Text()
	}
	return out
}
