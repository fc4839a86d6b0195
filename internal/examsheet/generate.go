package examsheet

import (
	"strconv"

	"github.com/stemsi/gscribe-backend/internal/model"
)

// Source identifies where a grid was read from.
type Source struct {
	SpreadsheetID string
	SheetName     string
}

// Generate builds an exam from a grid that has already passed Validate.
// ID and CreatedOn are left for the store to assign.
func Generate(grid [][]string, src Source, ownerUserID string) *model.Exam {
	duration, _ := strconv.Atoi(cell(grid[0], 1))

	questions := make(model.QuestionList, 0, len(grid)-firstQuestionRow)
	for i := firstQuestionRow; i < len(grid); i++ {
		row := grid[i]
		number := i - 1
		points, _ := strconv.Atoi(cell(row, colPoints))
		statement := cell(row, colStatement)

		switch model.QuestionType(cell(row, colType)) {
		case model.QuestionTypeMultipleChoice:
			q := model.MultipleChoice{
				Statement:      statement,
				Points:         points,
				QuestionNumber: number,
			}
			for o := range q.Options {
				q.Options[o] = cell(row, colFirstOpt+o)
			}
			questions = append(questions, q)
		case model.QuestionTypeSubjective:
			questions = append(questions, model.Subjective{
				Statement:      statement,
				Points:         points,
				QuestionNumber: number,
			})
		}
	}

	return &model.Exam{
		Metadata: model.ExamMetadata{
			SpreadsheetID:   src.SpreadsheetID,
			SheetName:       src.SheetName,
			OwnerUserID:     ownerUserID,
			DurationMinutes: duration,
		},
		Questions: questions,
	}
}
