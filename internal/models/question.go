package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Question types.
const (
	QuestionTypeMCQ      = "mcq"
	QuestionTypeAptitude = "aptitude"
	QuestionTypeCode     = "code"
	QuestionTypeAIML     = "ai_ml"
)

// DefaultQuestionPoints is applied when a question is stored without points.
const DefaultQuestionPoints = 10

var (
	// ErrMissingCorrectAnswer is returned for objective questions without an answer key.
	ErrMissingCorrectAnswer = errors.New("objective question requires a correct answer")
	// ErrMissingTestCases is returned for judged questions without test cases.
	ErrMissingTestCases = errors.New("judged question requires at least one test case")
	// ErrUnknownQuestionType is returned for types outside the supported set.
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// TestCase is a single stdin/expected-output pair used by the judge.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// QuestionOption is a selectable choice of an MCQ.
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// CodeSnippet is the starter code offered for a language.
type CodeSnippet struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Question belongs to one round and is either objective or judged.
type Question struct {
	ID                  uint                                `gorm:"primaryKey" json:"id"`
	Title               string                              `gorm:"size:255;not null" json:"title"`
	Description         string                              `gorm:"type:text;not null" json:"description"`
	Round               int                                 `gorm:"not null;index" json:"round"`
	Type                string                              `gorm:"size:16;not null" json:"type"`
	Points              int                                 `gorm:"not null;default:10" json:"points"`
	Options             datatypes.JSONSlice[QuestionOption] `json:"options"`
	CorrectAnswer       string                              `gorm:"size:255" json:"correct_answer,omitempty"`
	TestCases           datatypes.JSONSlice[TestCase]       `json:"test_cases"`
	DefaultCodeSnippets datatypes.JSONSlice[CodeSnippet]    `json:"default_code_snippets"`
	ImageURL            string                              `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt           time.Time                           `json:"created_at"`
	UpdatedAt           time.Time                           `json:"updated_at"`
}

// Evaluation is the scoring rule carried by a question.
type Evaluation interface {
	isEvaluation()
}

// ObjectiveEvaluation scores by exact match against a single answer key.
type ObjectiveEvaluation struct {
	CorrectAnswer string
}

// JudgedEvaluation scores by running source code against test cases.
type JudgedEvaluation struct {
	TestCases []TestCase
}

func (ObjectiveEvaluation) isEvaluation() {}
func (JudgedEvaluation) isEvaluation()    {}

// IsObjective reports whether the type is scored against an answer key.
func IsObjective(questionType string) bool {
	return questionType == QuestionTypeMCQ || questionType == QuestionTypeAptitude
}

// IsJudged reports whether the type is scored by the judge.
func IsJudged(questionType string) bool {
	return questionType == QuestionTypeCode || questionType == QuestionTypeAIML
}

// Evaluation returns the variant matching the question type.
func (q Question) Evaluation() (Evaluation, error) {
	switch {
	case IsObjective(q.Type):
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, ErrMissingCorrectAnswer
		}
		return ObjectiveEvaluation{CorrectAnswer: q.CorrectAnswer}, nil
	case IsJudged(q.Type):
		if len(q.TestCases) == 0 {
			return nil, ErrMissingTestCases
		}
		cases := make([]TestCase, len(q.TestCases))
		copy(cases, q.TestCases)
		return JudgedEvaluation{TestCases: cases}, nil
	default:
		return nil, ErrUnknownQuestionType
	}
}

// Validate checks the per-type invariants.
func (q Question) Validate() error {
	_, err := q.Evaluation()
	return err
}

// VisibleTestCases returns at most the first two test cases.
func (q Question) VisibleTestCases() []TestCase {
	limit := len(q.TestCases)
	if limit > 2 {
		limit = 2
	}
	visible := make([]TestCase, limit)
	copy(visible, q.TestCases[:limit])
	return visible
}
