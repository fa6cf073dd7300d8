package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedTeam(t *testing.T, db *gorm.DB, name string, mutate func(*models.Team)) models.Team {
	t.Helper()

	team := models.Team{
		Name:          name,
		PasswordHash:  "hash",
		PaymentStatus: models.PaymentStatusVerified,
		Members: []models.User{{
			Name:  name + " Lead",
			Email: strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
			Role:  models.UserRoleLeader,
		}},
	}
	if mutate != nil {
		mutate(&team)
	}
	require.NoError(t, db.Create(&team).Error)
	return team
}

type stubActivityRecorder struct {
	entries []ActivityEntry
}

func (s *stubActivityRecorder) Record(_ context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error) {
	s.entries = append(s.entries, entry)
	return dto.AdminActivityResponse{Action: entry.Action, EntityType: entry.EntityType, EntityID: entry.EntityID}, nil
}

type recordingInvalidator struct {
	teams []uint
	all   int
}

func (r *recordingInvalidator) Invalidate(_ context.Context, teamID uint) {
	r.teams = append(r.teams, teamID)
}

func (r *recordingInvalidator) InvalidateAll(context.Context) {
	r.all++
}
