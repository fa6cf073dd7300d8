package dto

import "github.com/noah-isme/hackathon-go-api/internal/models"

// QuestionRequest creates or replaces a question.
type QuestionRequest struct {
	Title               string                  `json:"title" validate:"required,max=255"`
	Description         string                  `json:"description" validate:"required"`
	Round               int                     `json:"round" validate:"required,oneof=1 2"`
	Type                string                  `json:"type" validate:"required,oneof=mcq aptitude code ai_ml"`
	Points              int                     `json:"points" validate:"omitempty,min=1"`
	Options             []models.QuestionOption `json:"options" validate:"omitempty,dive"`
	CorrectAnswer       string                  `json:"correct_answer" validate:"omitempty,max=255"`
	TestCases           []models.TestCase       `json:"test_cases"`
	DefaultCodeSnippets []models.CodeSnippet    `json:"default_code_snippets"`
}

// QuestionResponse is the admin view of a question, answer key included.
type QuestionResponse struct {
	models.Question
}

// NewQuestionResponses converts a slice of questions.
func NewQuestionResponses(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, QuestionResponse{Question: question})
	}
	return responses
}
