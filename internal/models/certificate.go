package models

import "time"

// Certificate achievement tiers.
const (
	AchievementWinnerFirst   = "Winner - 1st Place"
	AchievementWinnerSecond  = "Winner - 2nd Place"
	AchievementWinnerThird   = "Winner - 3rd Place"
	AchievementOutstanding   = "Outstanding"
	AchievementAppreciation  = "Appreciation"
	AchievementParticipation = "Participation"
)

// Certificate is an issued award that can be verified publicly.
type Certificate struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TeamID         uint      `gorm:"not null;index" json:"team_id"`
	TeamName       string    `gorm:"size:255;not null" json:"team_name"`
	Achievement    string    `gorm:"size:64;not null" json:"achievement"`
	VerificationID string    `gorm:"size:64;uniqueIndex;not null" json:"verification_id"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`
}
