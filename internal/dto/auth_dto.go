package dto

// MemberInput is a member listed at registration. The first member leads the team.
type MemberInput struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// PaymentProof is the gateway reference presented at registration.
type PaymentProof struct {
	OrderID   string `json:"order_id" validate:"required,max=128"`
	PaymentID string `json:"payment_id" validate:"required,max=128"`
	Signature string `json:"signature" validate:"required,max=255"`
}

// RegisterRequest creates a team and its members.
type RegisterRequest struct {
	TeamName string        `json:"team_name" validate:"required,min=2,max=255"`
	Password string        `json:"password" validate:"required,min=8,max=72"`
	Members  []MemberInput `json:"members" validate:"required,min=1,max=4,dive"`
	Payment  PaymentProof  `json:"payment" validate:"required"`
}

// LoginRequest authenticates a member with the team password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an issued token and the caller's team.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	User      MemberResponse `json:"user"`
	Team      TeamResponse   `json:"team"`
}

// ProfileResponse describes the authenticated member and their team.
type ProfileResponse struct {
	User MemberResponse `json:"user"`
	Team TeamResponse   `json:"team"`
}
