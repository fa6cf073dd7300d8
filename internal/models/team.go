package models

import "time"

// Payment statuses recorded on a team.
const (
	PaymentStatusPending  = "Pending"
	PaymentStatusVerified = "Verified"
)

// Team is a registered hackathon team together with its progression flags.
type Team struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"size:255;uniqueIndex;not null" json:"team_name"`
	PasswordHash           string    `gorm:"size:255;not null" json:"-"`
	LeaderID               *uint     `json:"leader_id"`
	IsAdmin                bool      `gorm:"not null;default:false" json:"is_admin"`
	PaymentStatus          string    `gorm:"size:32;not null;default:Pending" json:"payment_status"`
	PaymentOrderID         string    `gorm:"size:128" json:"payment_order_id,omitempty"`
	PaymentID              string    `gorm:"size:128" json:"payment_id,omitempty"`
	PaymentSignature       string    `gorm:"size:255" json:"-"`
	QualifiedForRound2     bool      `gorm:"not null;default:false" json:"qualified_for_round2"`
	QualifiedForRound3     bool      `gorm:"not null;default:false" json:"qualified_for_round3"`
	Round1ResultsPublished bool      `gorm:"not null;default:false" json:"round1_results_published"`
	Round2ResultsPublished bool      `gorm:"not null;default:false" json:"round2_results_published"`
	Members                []User    `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Leader returns the member flagged as team leader, if loaded.
func (t Team) Leader() (User, bool) {
	for _, member := range t.Members {
		if t.LeaderID != nil && member.ID == *t.LeaderID {
			return member, true
		}
	}
	return User{}, false
}
