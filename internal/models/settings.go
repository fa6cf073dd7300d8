package models

import "time"

// SettingsSingletonKey identifies the global settings row.
const SettingsSingletonKey = "global_settings"

// Settings holds the competition-wide deployment and publication flags.
type Settings struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Singleton             string    `gorm:"size:32;uniqueIndex;not null" json:"-"`
	Round1Live            bool      `gorm:"not null;default:false" json:"round1_live"`
	Round1Finalized       bool      `gorm:"not null;default:false" json:"round1_finalized"`
	Round1Published       bool      `gorm:"not null;default:false" json:"round1_published"`
	Round2Live            bool      `gorm:"not null;default:false" json:"round2_live"`
	Round2Finalized       bool      `gorm:"not null;default:false" json:"round2_finalized"`
	Round2Published       bool      `gorm:"not null;default:false" json:"round2_published"`
	CertificatesPublished bool      `gorm:"not null;default:false" json:"certificates_published"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// RoundLive reports whether the given round has been deployed.
func (s Settings) RoundLive(round int) bool {
	switch round {
	case 1:
		return s.Round1Live
	case 2:
		return s.Round2Live
	default:
		return false
	}
}

// RoundFinalized reports whether qualification has been decided for the round.
func (s Settings) RoundFinalized(round int) bool {
	switch round {
	case 1:
		return s.Round1Finalized
	case 2:
		return s.Round2Finalized
	default:
		return false
	}
}
