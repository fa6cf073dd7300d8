package service

import (
	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// Competition status identifiers reported on the dashboard.
const (
	StatusCompletedPendingR2 = "Completed_Pending_R2"
	StatusQualifiedFinal     = "Qualified_Final"
	StatusNotQualified       = "Not_Qualified"
	StatusCompletedPendingR1 = "Completed_Pending_R1"
	StatusQualifiedLive      = "Qualified_Live"
	StatusQualifiedWaiting   = "Qualified_Waiting"
	StatusLive               = "Live"
	StatusLocked             = "Locked"
)

// CompetitionStatus derives a team's position in the round pipeline. Checks
// run from the most advanced round down, so a round 2 submission always wins
// over round 1 state.
func CompetitionStatus(team models.Team, submissions []models.Submission, settings models.Settings) dto.CompetitionStatusResponse {
	var submittedRound1, submittedRound2 bool
	for _, submission := range submissions {
		switch submission.Round {
		case 1:
			submittedRound1 = true
		case 2:
			submittedRound2 = true
		}
	}

	if submittedRound2 {
		switch {
		case !team.Round2ResultsPublished:
			return dto.CompetitionStatusResponse{
				Name:        "Round 2: Completed",
				Description: "Your Round 2 submission has been received. Results are being finalized, please check back soon.",
				Status:      StatusCompletedPendingR2,
			}
		case team.QualifiedForRound3:
			return dto.CompetitionStatusResponse{
				Name:        "Round 3: Offline Hackathon",
				Description: "Congratulations! Your team has qualified for the final offline hackathon. We will contact you with the details.",
				Status:      StatusQualifiedFinal,
			}
		default:
			return dto.CompetitionStatusResponse{
				Name:        "Round 2: Completed",
				Description: "Thank you for taking part in Round 2. Your team did not qualify for the final round this time.",
				Status:      StatusNotQualified,
			}
		}
	}

	if submittedRound1 {
		switch {
		case !team.Round1ResultsPublished:
			return dto.CompetitionStatusResponse{
				Name:        "Round 1: Completed",
				Description: "Your Round 1 submission has been received. Results are being processed, please check back later.",
				Status:      StatusCompletedPendingR1,
			}
		case !team.QualifiedForRound2:
			return dto.CompetitionStatusResponse{
				Name:        "Round 1: Completed",
				Description: "Thank you for taking part in Round 1. Your team did not qualify for the next round this time.",
				Status:      StatusNotQualified,
			}
		case settings.Round2Live:
			return dto.CompetitionStatusResponse{
				Name:        "Round 2: AI/ML Challenges",
				Description: "Congratulations! Your team has qualified for Round 2, which is now live.",
				Status:      StatusQualifiedLive,
				Link:        "/round-2",
			}
		default:
			return dto.CompetitionStatusResponse{
				Name:        "Round 1: Completed",
				Description: "Congratulations! Your team has qualified for Round 2. Please wait for the announcement of its start.",
				Status:      StatusQualifiedWaiting,
			}
		}
	}

	if settings.Round1Live {
		return dto.CompetitionStatusResponse{
			Name:        "Round 1: MCQ & Aptitude",
			Description: "The first online round is now live. You have 60 minutes to complete it.",
			Status:      StatusLive,
			Link:        "/round-1",
		}
	}

	return dto.CompetitionStatusResponse{
		Name:        "Round 1: Online Test",
		Description: "Round 1 has not started yet. Please wait for the official announcement.",
		Status:      StatusLocked,
	}
}
