package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// TeamRepository persists teams, their members and progression flags.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uint) (models.Team, error)
	GetAdminTeam(ctx context.Context) (models.Team, error)
	NameExists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Team, error)
	Recent(ctx context.Context, limit int) ([]models.Team, error)
	CountParticipants(ctx context.Context) (int64, error)
	CountVerifiedPayments(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	ReplaceQualified(ctx context.Context, column string, teamIDs []uint) error
	MarkPublished(ctx context.Context, column string, teamIDs []uint) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository constructs the team repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// Create inserts the team and its members, then links the first member as leader.
func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if len(team.Members) == 0 {
			return nil
		}
		leaderID := team.Members[0].ID
		team.LeaderID = &leaderID
		return tx.Model(team).Update("leader_id", leaderID).Error
	})
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&team, id).Error
	return team, err
}

func (r *teamRepository) GetAdminTeam(ctx context.Context) (models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).Preload("Members").Where("is_admin = ?", true).First(&team).Error
	return team, err
}

func (r *teamRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *teamRepository) List(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("is_admin = ?", false).
		Order("created_at DESC").
		Order("id DESC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepository) Recent(ctx context.Context, limit int) ([]models.Team, error) {
	if limit <= 0 {
		limit = 5
	}
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("is_admin = ?", false).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&teams).Error
	return teams, err
}

func (r *teamRepository) CountParticipants(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).Where("is_admin = ?", false).Count(&count).Error
	return count, err
}

func (r *teamRepository) CountVerifiedPayments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).
		Where("is_admin = ?", false).
		Where("payment_status = ?", models.PaymentStatusVerified).
		Count(&count).Error
	return count, err
}

// Delete removes the team along with its members, submissions and certificates.
func (r *teamRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, id).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.Certificate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
}

func (r *teamRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceQualified clears column on every non-admin team and sets it on teamIDs.
func (r *teamRepository) ReplaceQualified(ctx context.Context, column string, teamIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Team{}).Where("is_admin = ?", false).Update(column, false).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		return tx.Model(&models.Team{}).Where("id IN ?", teamIDs).Update(column, true).Error
	})
}

func (r *teamRepository) MarkPublished(ctx context.Context, column string, teamIDs []uint) error {
	if len(teamIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Team{}).Where("id IN ?", teamIDs).Update(column, true).Error
}
