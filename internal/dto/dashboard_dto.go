package dto

import "github.com/noah-isme/hackathon-go-api/internal/models"

// CompetitionStatusResponse is a team's position in the round pipeline.
type CompetitionStatusResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Link        string `json:"link,omitempty"`
}

// DashboardResponse aggregates everything a team sees after login.
type DashboardResponse struct {
	Team        TeamResponse              `json:"team"`
	Competition CompetitionStatusResponse `json:"competition_status"`
	Submissions []SubmissionSummary       `json:"submissions"`
	Settings    models.Settings           `json:"settings"`
}
