package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// CertificatePolicy controls how many tiers a single team may receive.
type CertificatePolicy string

// Certificate dedup policies.
const (
	// CertificatePolicyFirstMatch issues only the first tier a team earns.
	CertificatePolicyFirstMatch CertificatePolicy = "first-match"
	// CertificatePolicyAllTiers issues every distinct tier a team earns.
	CertificatePolicyAllTiers CertificatePolicy = "all-tiers"
)

// ParseCertificatePolicy validates a configured policy name.
func ParseCertificatePolicy(value string) (CertificatePolicy, error) {
	switch CertificatePolicy(value) {
	case "", CertificatePolicyFirstMatch:
		return CertificatePolicyFirstMatch, nil
	case CertificatePolicyAllTiers:
		return CertificatePolicyAllTiers, nil
	default:
		return "", fmt.Errorf("unknown certificate policy %q", value)
	}
}

// Round1Qualification is the outcome of the round 1 cutoff.
type Round1Qualification struct {
	ScoreMark  float64
	RankCutoff int
	Qualified  []uint
}

// Round2Qualification is the outcome of the round 2 cutoff.
type Round2Qualification struct {
	RankCutoff int
	Qualified  []uint
}

// CertificateAward is a planned certificate before it receives a verification id.
type CertificateAward struct {
	TeamID      uint
	TeamName    string
	Achievement string
}

// RankSubmissions returns a copy ordered by total score, highest first.
// Equal scores keep their input order.
func RankSubmissions(submissions []models.Submission) []models.Submission {
	ranked := make([]models.Submission, len(submissions))
	copy(ranked, submissions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	return ranked
}

// ceilPercent computes ceil(n * percent / 100) without floating point drift.
func ceilPercent(n, percent int) int {
	return (n*percent + 99) / 100
}

// QualifyRound1 admits a team when it scores at least half of the round's
// points or ranks within the top 75% of submissions.
func QualifyRound1(submissions []models.Submission, totalPoints int) Round1Qualification {
	ranked := RankSubmissions(submissions)
	result := Round1Qualification{
		ScoreMark:  float64(totalPoints) / 2,
		RankCutoff: ceilPercent(len(ranked), 75),
		Qualified:  make([]uint, 0, len(ranked)),
	}

	for index, submission := range ranked {
		rank := index + 1
		if submission.TotalScore >= result.ScoreMark || rank <= result.RankCutoff {
			result.Qualified = append(result.Qualified, submission.TeamID)
		}
	}
	return result
}

// QualifyRound2 admits exactly the top half of round 2 submissions, rounded up.
func QualifyRound2(submissions []models.Submission) Round2Qualification {
	ranked := RankSubmissions(submissions)
	result := Round2Qualification{RankCutoff: ceilPercent(len(ranked), 50)}
	result.Qualified = make([]uint, 0, result.RankCutoff)
	for _, submission := range ranked[:result.RankCutoff] {
		result.Qualified = append(result.Qualified, submission.TeamID)
	}
	return result
}

// PlanCertificates assigns achievement tiers from round 2 standings and team
// flags. Tiers are considered in priority order: winners, outstanding,
// appreciation, then participation.
func PlanCertificates(round2 []models.Submission, round2TotalPoints int, teams []models.Team, policy CertificatePolicy) []CertificateAward {
	ranked := RankSubmissions(round2)
	awards := make([]CertificateAward, 0, len(teams)+len(ranked))
	seen := make(map[string]struct{})

	issue := func(teamID uint, teamName, achievement string) {
		key := fmt.Sprintf("%d", teamID)
		if policy == CertificatePolicyAllTiers {
			key = fmt.Sprintf("%d:%s", teamID, achievement)
		}
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		awards = append(awards, CertificateAward{TeamID: teamID, TeamName: teamName, Achievement: achievement})
	}

	winnerTiers := []string{models.AchievementWinnerFirst, models.AchievementWinnerSecond, models.AchievementWinnerThird}
	for index, tier := range winnerTiers {
		if index >= len(ranked) {
			break
		}
		issue(ranked[index].TeamID, ranked[index].Team.Name, tier)
	}

	outstandingMark := float64(round2TotalPoints) * 0.8
	outstandingCutoff := ceilPercent(len(ranked), 10)
	for _, submission := range ranked[:outstandingCutoff] {
		if submission.TotalScore >= outstandingMark {
			issue(submission.TeamID, submission.Team.Name, models.AchievementOutstanding)
		}
	}

	for _, team := range teams {
		if team.IsAdmin {
			continue
		}
		if team.QualifiedForRound2 {
			issue(team.ID, team.Name, models.AchievementAppreciation)
		}
		issue(team.ID, team.Name, models.AchievementParticipation)
	}

	return awards
}
