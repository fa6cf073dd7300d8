package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	TeamID *uint
	Round  *int
}

// SubmissionRepository persists round submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Exists(ctx context.Context, teamID uint, round int) (bool, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByRound(ctx context.Context, round int) ([]models.Submission, error)
	Leaderboard(ctx context.Context, round int) ([]models.Submission, error)
	UpdateScore(ctx context.Context, id uint, totalScore float64, status string) (models.Submission, error)
	UpdateAnswers(ctx context.Context, id uint, answers []models.Answer) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs the submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Team").Create(submission).Error
}

func (r *submissionRepository) Exists(ctx context.Context, teamID uint, round int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("team_id = ? AND round = ?", teamID, round).
		Count(&count).Error
	return count > 0, err
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Preload("Team").First(&submission, id).Error
	return submission, err
}

// List returns submissions newest first.
func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).Preload("Team")
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.Round != nil {
		query = query.Where("round = ?", *filter.Round)
	}

	var submissions []models.Submission
	err := query.Order("submitted_at DESC").Order("id DESC").Find(&submissions).Error
	return submissions, err
}

// ListByRound returns a round's submissions in insertion order, which keeps
// later stable sorts deterministic.
func (r *submissionRepository) ListByRound(ctx context.Context, round int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Team").
		Joins("JOIN teams ON teams.id = submissions.team_id AND teams.is_admin = ?", false).
		Where("submissions.round = ?", round).
		Order("submissions.id ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) Leaderboard(ctx context.Context, round int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("round = ?", round).
		Order("total_score DESC").
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) UpdateScore(ctx context.Context, id uint, totalScore float64, status string) (models.Submission, error) {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Updates(map[string]interface{}{"total_score": totalScore, "status": status})
	if result.Error != nil {
		return models.Submission{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdateAnswers rewrites the stored answers without touching the score.
func (r *submissionRepository) UpdateAnswers(ctx context.Context, id uint, answers []models.Answer) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).
		Update("answers", datatypes.NewJSONSlice(answers))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
