package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// QuestionRepository persists round questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Question, error)
	ListByRound(ctx context.Context, round int) ([]models.Question, error)
	TotalPoints(ctx context.Context, round int) (int, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs the question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).First(&question, id).Error
	return question, err
}

func (r *questionRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Question, error) {
	result := make(map[uint]models.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var questions []models.Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for _, question := range questions {
		result[question.ID] = question
	}
	return result, nil
}

func (r *questionRepository) ListByRound(ctx context.Context, round int) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Where("round = ?", round).Order("id ASC").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) TotalPoints(ctx context.Context, round int) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("round = ?", round).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}
