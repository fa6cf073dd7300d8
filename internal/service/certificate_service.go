package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

// CertificateService exposes issued certificates to teams and verifiers.
type CertificateService interface {
	Verify(ctx context.Context, verificationID string) (dto.CertificateResponse, error)
	ListForTeam(ctx context.Context, teamID uint) ([]dto.CertificateResponse, error)
}

type certificateService struct {
	certificates repository.CertificateRepository
	settings     repository.SettingsRepository
	logger       zerolog.Logger
}

// NewCertificateService constructs the certificate lookup service.
func NewCertificateService(certificates repository.CertificateRepository, settings repository.SettingsRepository, logger zerolog.Logger) CertificateService {
	return &certificateService{
		certificates: certificates,
		settings:     settings,
		logger:       logger.With().Str("component", "certificate_service").Logger(),
	}
}

func (s *certificateService) Verify(ctx context.Context, verificationID string) (dto.CertificateResponse, error) {
	id := strings.ToLower(strings.TrimSpace(verificationID))
	if id == "" {
		return dto.CertificateResponse{}, ErrCertificateNotFound
	}

	certificate, err := s.certificates.GetByVerificationID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CertificateResponse{}, ErrCertificateNotFound
		}
		return dto.CertificateResponse{}, persistenceError("verify certificate", err)
	}
	return dto.NewCertificateResponse(certificate), nil
}

func (s *certificateService) ListForTeam(ctx context.Context, teamID uint) ([]dto.CertificateResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, persistenceError("load settings", err)
	}
	if !settings.CertificatesPublished {
		return nil, ErrCertificatesNotPublished
	}

	certificates, err := s.certificates.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, persistenceError("list certificates", err)
	}

	responses := make([]dto.CertificateResponse, 0, len(certificates))
	for _, certificate := range certificates {
		responses = append(responses, dto.NewCertificateResponse(certificate))
	}
	return responses, nil
}
