package dto

import (
	"time"

	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/pkg/judge"
)

// AnswerInput is a single answer in a round submission.
type AnswerInput struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	Language   string `json:"language" validate:"omitempty,max=32"`
}

// SubmitRoundRequest is the body of a round submission.
type SubmitRoundRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// SubmitRoundResponse acknowledges a persisted submission.
type SubmitRoundResponse struct {
	SubmissionID uint    `json:"submission_id"`
	Round        int     `json:"round"`
	TotalScore   float64 `json:"total_score"`
	Status       string  `json:"status"`
}

// RunCodeRequest asks for a practice run against the visible test cases.
type RunCodeRequest struct {
	Code       string `json:"code" validate:"required"`
	Language   string `json:"language" validate:"omitempty,max=32"`
	QuestionID uint   `json:"question_id" validate:"required"`
}

// RunCodeResponse mirrors the judge result of a practice run.
type RunCodeResponse struct {
	Status    string   `json:"status"`
	IsCorrect bool     `json:"is_correct"`
	Message   string   `json:"message"`
	Outputs   []string `json:"outputs"`
	Score     float64  `json:"score"`
}

// NewRunCodeResponse converts a judge result.
func NewRunCodeResponse(result judge.Result) RunCodeResponse {
	return RunCodeResponse{
		Status:    result.Status,
		IsCorrect: result.IsCorrect,
		Message:   result.Message,
		Outputs:   result.Outputs,
		Score:     result.Score,
	}
}

// VisibleTestCase exposes a test case input without its expected output.
type VisibleTestCase struct {
	Input string `json:"input"`
}

// ParticipantQuestion is a question as shown to a competing team.
type ParticipantQuestion struct {
	ID                  uint                    `json:"id"`
	Title               string                  `json:"title"`
	Description         string                  `json:"description"`
	Round               int                     `json:"round"`
	Type                string                  `json:"type"`
	Points              int                     `json:"points"`
	Options             []models.QuestionOption `json:"options,omitempty"`
	TestCases           []VisibleTestCase       `json:"test_cases,omitempty"`
	DefaultCodeSnippets []models.CodeSnippet    `json:"default_code_snippets,omitempty"`
	ImageURL            string                  `json:"image_url,omitempty"`
}

// NewParticipantQuestion strips answer keys and hidden test cases.
func NewParticipantQuestion(question models.Question) ParticipantQuestion {
	view := ParticipantQuestion{
		ID:                  question.ID,
		Title:               question.Title,
		Description:         question.Description,
		Round:               question.Round,
		Type:                question.Type,
		Points:              question.Points,
		Options:             question.Options,
		DefaultCodeSnippets: question.DefaultCodeSnippets,
		ImageURL:            question.ImageURL,
	}
	for _, testCase := range question.VisibleTestCases() {
		view.TestCases = append(view.TestCases, VisibleTestCase{Input: testCase.Input})
	}
	return view
}

// SubmissionSummary is a past submission as listed on the dashboard.
type SubmissionSummary struct {
	ID          uint      `json:"id"`
	Round       int       `json:"round"`
	TotalScore  float64   `json:"total_score"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewSubmissionSummary converts a submission model.
func NewSubmissionSummary(submission models.Submission) SubmissionSummary {
	return SubmissionSummary{
		ID:          submission.ID,
		Round:       submission.Round,
		TotalScore:  submission.TotalScore,
		Status:      submission.Status,
		SubmittedAt: submission.SubmittedAt,
	}
}
