package dto

import (
	"time"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// CertificateResponse is the verifiable view of a certificate.
type CertificateResponse struct {
	TeamName       string    `json:"team_name"`
	Achievement    string    `json:"achievement"`
	VerificationID string    `json:"verification_id"`
	IssuedAt       time.Time `json:"issued_at"`
}

// NewCertificateResponse converts a certificate model.
func NewCertificateResponse(certificate models.Certificate) CertificateResponse {
	return CertificateResponse{
		TeamName:       certificate.TeamName,
		Achievement:    certificate.Achievement,
		VerificationID: certificate.VerificationID,
		IssuedAt:       certificate.IssuedAt,
	}
}
