package dto

import (
	"time"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// SetTeamStatusRequest overrides a team's round 2 qualification.
type SetTeamStatusRequest struct {
	Qualified *bool `json:"qualified" validate:"required"`
}

// UpdateScoreRequest manually overrides a submission's total score.
type UpdateScoreRequest struct {
	TotalScore *float64 `json:"total_score" validate:"required,min=0"`
	Status     string   `json:"status" validate:"omitempty,oneof=Submitted Pending Evaluated"`
}

// StatsResponse summarises registrations and revenue.
type StatsResponse struct {
	TotalTeams       int64 `json:"total_teams"`
	VerifiedPayments int64 `json:"verified_payments"`
	Revenue          int64 `json:"revenue"`
}

// QualificationResponse reports the outcome of a finalize batch.
type QualificationResponse struct {
	Round            int     `json:"round"`
	TotalSubmissions int     `json:"total_submissions"`
	Qualified        int     `json:"qualified"`
	RankCutoff       int     `json:"rank_cutoff"`
	ScoreMark        float64 `json:"score_mark,omitempty"`
}

// PublishResponse reports how many teams had results published.
type PublishResponse struct {
	Round          int `json:"round"`
	TeamsPublished int `json:"teams_published"`
}

// CertificateBatchResponse reports a certificate generation run.
type CertificateBatchResponse struct {
	Issued int    `json:"issued"`
	Policy string `json:"policy"`
}

// AdminSubmissionResponse is a submission with its answers and team.
type AdminSubmissionResponse struct {
	ID          uint            `json:"id"`
	TeamID      uint            `json:"team_id"`
	TeamName    string          `json:"team_name"`
	Round       int             `json:"round"`
	Answers     []models.Answer `json:"answers"`
	TotalScore  float64         `json:"total_score"`
	Status      string          `json:"status"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// NewAdminSubmissionResponse converts a submission with its preloaded team.
func NewAdminSubmissionResponse(submission models.Submission) AdminSubmissionResponse {
	return AdminSubmissionResponse{
		ID:          submission.ID,
		TeamID:      submission.TeamID,
		TeamName:    submission.Team.Name,
		Round:       submission.Round,
		Answers:     submission.Answers,
		TotalScore:  submission.TotalScore,
		Status:      submission.Status,
		SubmittedAt: submission.SubmittedAt,
	}
}

// LeaderboardEntry is a ranked team within a round.
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	TeamID     uint    `json:"team_id"`
	TeamName   string  `json:"team_name"`
	TotalScore float64 `json:"total_score"`
	Status     string  `json:"status"`
}

// ReviewRequest selects the judged answer to review.
type ReviewRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`
}

// ReviewResponse carries AI feedback for a judged answer.
type ReviewResponse struct {
	SubmissionID uint     `json:"submission_id"`
	QuestionID   uint     `json:"question_id"`
	Verdict      string   `json:"verdict"`
	Feedback     string   `json:"feedback"`
	Suggestions  []string `json:"suggestions,omitempty"`
	Model        string   `json:"model"`
}

// AdminActivityListRequest defines filters for retrieving activity logs.
type AdminActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
}

// AdminActivityResponse serializes activity log entries.
type AdminActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AdminActivityListResponse wraps paginated activity logs.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewAdminActivityResponse converts an activity log model.
func NewAdminActivityResponse(entry models.ActivityLog) AdminActivityResponse {
	metadata := make(map[string]interface{}, len(entry.Metadata))
	for key, value := range entry.Metadata {
		metadata[key] = value
	}
	return AdminActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
