package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission statuses.
const (
	SubmissionStatusSubmitted = "Submitted"
	SubmissionStatusPending   = "Pending"
	SubmissionStatusEvaluated = "Evaluated"
)

// Answer is a scored response to a single question.
type Answer struct {
	QuestionID uint    `json:"question_id"`
	Answer     string  `json:"answer"`
	Language   string  `json:"language,omitempty"`
	IsCorrect  bool    `json:"is_correct"`
	Score      float64 `json:"score"`
	Review     string  `json:"review,omitempty"`
}

// Submission is a team's one-shot answer set for a round.
type Submission struct {
	ID          uint                       `gorm:"primaryKey" json:"id"`
	TeamID      uint                       `gorm:"not null;index:idx_submission_team_round" json:"team_id"`
	Round       int                        `gorm:"not null;index:idx_submission_team_round" json:"round"`
	Answers     datatypes.JSONSlice[Answer] `json:"answers"`
	TotalScore  float64                    `gorm:"not null;default:0" json:"total_score"`
	Status      string                     `gorm:"size:16;not null" json:"status"`
	SubmittedAt time.Time                  `gorm:"not null" json:"submitted_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Team        Team                       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
