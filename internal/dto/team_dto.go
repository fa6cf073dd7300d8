package dto

import (
	"time"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// MemberResponse is a team member without credentials.
type MemberResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsLeader bool   `json:"is_leader"`
}

// TeamResponse is the public shape of a team.
type TeamResponse struct {
	ID                     uint             `json:"id"`
	Name                   string           `json:"team_name"`
	PaymentStatus          string           `json:"payment_status"`
	QualifiedForRound2     bool             `json:"qualified_for_round2"`
	QualifiedForRound3     bool             `json:"qualified_for_round3"`
	Round1ResultsPublished bool             `json:"round1_results_published"`
	Round2ResultsPublished bool             `json:"round2_results_published"`
	Members                []MemberResponse `json:"members"`
	CreatedAt              time.Time        `json:"created_at"`
}

// NewTeamResponse converts a team model, marking its leader.
func NewTeamResponse(team models.Team) TeamResponse {
	members := make([]MemberResponse, 0, len(team.Members))
	for _, member := range team.Members {
		members = append(members, MemberResponse{
			ID:       member.ID,
			Name:     member.Name,
			Email:    member.Email,
			Role:     member.Role,
			IsLeader: team.LeaderID != nil && *team.LeaderID == member.ID,
		})
	}

	return TeamResponse{
		ID:                     team.ID,
		Name:                   team.Name,
		PaymentStatus:          team.PaymentStatus,
		QualifiedForRound2:     team.QualifiedForRound2,
		QualifiedForRound3:     team.QualifiedForRound3,
		Round1ResultsPublished: team.Round1ResultsPublished,
		Round2ResultsPublished: team.Round2ResultsPublished,
		Members:                members,
		CreatedAt:              team.CreatedAt,
	}
}

// NewTeamResponses converts a slice of teams.
func NewTeamResponses(teams []models.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, NewTeamResponse(team))
	}
	return responses
}
