package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

// ErrSeedDisabled indicates no admin account is configured.
var ErrSeedDisabled = errors.New("admin account is not configured")

// AdminAccount is the organizer login created at startup.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
	TeamName string
}

// SeedService prepares the records every deployment needs before serving traffic.
type SeedService interface {
	Bootstrap(ctx context.Context) error
}

type seedService struct {
	teams    repository.TeamRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	admin    AdminAccount
	logger   zerolog.Logger
}

// NewSeedService constructs the bootstrap seeder.
func NewSeedService(teams repository.TeamRepository, users repository.UserRepository, settings repository.SettingsRepository, admin AdminAccount, logger zerolog.Logger) SeedService {
	if strings.TrimSpace(admin.TeamName) == "" {
		admin.TeamName = "AdminTeam"
	}
	if strings.TrimSpace(admin.Name) == "" {
		admin.Name = "Admin"
	}
	return &seedService{
		teams:    teams,
		users:    users,
		settings: settings,
		admin:    admin,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

// Bootstrap creates the settings singleton and, when configured, the admin team.
// Running it again is a no-op.
func (s *seedService) Bootstrap(ctx context.Context) error {
	if _, err := s.settings.Get(ctx); err != nil {
		return persistenceError("seed settings", err)
	}

	err := s.ensureAdmin(ctx)
	if errors.Is(err, ErrSeedDisabled) {
		s.logger.Warn().Msg("admin credentials not configured, skipping admin seed")
		return nil
	}
	return err
}

func (s *seedService) ensureAdmin(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if email == "" || s.admin.Password == "" {
		return ErrSeedDisabled
	}

	if _, err := s.teams.GetAdminTeam(ctx); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return persistenceError("load admin team", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.logger.Warn().Msg("admin email belongs to a participant, skipping admin seed")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return persistenceError("load admin user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	team := models.Team{
		Name:          s.admin.TeamName,
		PasswordHash:  string(hash),
		IsAdmin:       true,
		PaymentStatus: models.PaymentStatusVerified,
		Members: []models.User{{
			Name:  s.admin.Name,
			Email: email,
			Role:  models.UserRoleAdmin,
		}},
	}
	if err := s.teams.Create(ctx, &team); err != nil {
		return persistenceError("create admin team", err)
	}

	s.logger.Info().Uint("team_id", team.ID).Msg("admin team seeded")
	return nil
}
