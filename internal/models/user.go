package models

import "time"

// Member roles.
const (
	UserRoleLeader = "leader"
	UserRoleMember = "member"
	UserRoleAdmin  = "admin"
)

// User is a single person belonging to a team.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	TeamID    *uint     `gorm:"index" json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
