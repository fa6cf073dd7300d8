package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

// SettingsRepository reads and mutates the global settings singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, updates map[string]interface{}) (models.Settings, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository constructs the settings repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the singleton, creating it with every flag off when absent.
func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).
		Where(models.Settings{Singleton: models.SettingsSingletonKey}).
		FirstOrCreate(&settings).Error
	return settings, err
}

func (r *settingsRepository) Update(ctx context.Context, updates map[string]interface{}) (models.Settings, error) {
	settings, err := r.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if err := r.db.WithContext(ctx).Model(&settings).Updates(updates).Error; err != nil {
		return models.Settings{}, err
	}
	return r.Get(ctx)
}
