package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// CertificateRepository persists issued certificates.
type CertificateRepository interface {
	ReplaceAll(ctx context.Context, certificates []models.Certificate) error
	GetByVerificationID(ctx context.Context, verificationID string) (models.Certificate, error)
	ListByTeam(ctx context.Context, teamID uint) ([]models.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository constructs the certificate repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

// ReplaceAll deletes every certificate and inserts the new set atomically.
func (r *certificateRepository) ReplaceAll(ctx context.Context, certificates []models.Certificate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Certificate{}).Error; err != nil {
			return err
		}
		if len(certificates) == 0 {
			return nil
		}
		return tx.CreateInBatches(certificates, 100).Error
	})
}

func (r *certificateRepository) GetByVerificationID(ctx context.Context, verificationID string) (models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.WithContext(ctx).Where("verification_id = ?", verificationID).First(&certificate).Error
	return certificate, err
}

func (r *certificateRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.Certificate, error) {
	var certificates []models.Certificate
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id ASC").Find(&certificates).Error
	return certificates, err
}
