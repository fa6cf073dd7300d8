package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthService registers teams and authenticates their members.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.ProfileResponse, error)
}

type authService struct {
	teams     repository.TeamRepository
	users     repository.UserRepository
	payments  PaymentVerifier
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	config    AuthConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(teams repository.TeamRepository, users repository.UserRepository, payments PaymentVerifier, validate *validator.Validate, config AuthConfig, logger zerolog.Logger) AuthService {
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &authService{
		teams:     teams,
		users:     users,
		payments:  payments,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		config:    config,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	teamName := s.clean(req.TeamName)
	if teamName == "" {
		return dto.AuthResponse{}, ErrInvalidRegistration
	}

	if !s.payments.Verify(req.Payment.OrderID, req.Payment.PaymentID, req.Payment.Signature) {
		s.logger.Warn().Str("order_id", req.Payment.OrderID).Msg("payment signature mismatch")
		return dto.AuthResponse{}, ErrPaymentVerification
	}

	taken, err := s.teams.NameExists(ctx, teamName)
	if err != nil {
		return dto.AuthResponse{}, persistenceError("check team name", err)
	}
	if taken {
		return dto.AuthResponse{}, ErrTeamNameTaken
	}

	members := make([]models.User, 0, len(req.Members))
	emails := make([]string, 0, len(req.Members))
	seen := make(map[string]struct{}, len(req.Members))
	for index, input := range req.Members {
		name := s.clean(input.Name)
		if name == "" {
			return dto.AuthResponse{}, ErrInvalidRegistration
		}
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if _, dup := seen[email]; dup {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		seen[email] = struct{}{}
		emails = append(emails, email)

		role := models.UserRoleMember
		if index == 0 {
			role = models.UserRoleLeader
		}
		members = append(members, models.User{Name: name, Email: email, Role: role})
	}

	existing, err := s.users.ExistingEmails(ctx, emails)
	if err != nil {
		return dto.AuthResponse{}, persistenceError("check member emails", err)
	}
	if len(existing) > 0 {
		return dto.AuthResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	team := models.Team{
		Name:             teamName,
		PasswordHash:     string(hash),
		PaymentStatus:    models.PaymentStatusVerified,
		PaymentOrderID:   req.Payment.OrderID,
		PaymentID:        req.Payment.PaymentID,
		PaymentSignature: req.Payment.Signature,
		Members:          members,
	}
	if err := s.teams.Create(ctx, &team); err != nil {
		return dto.AuthResponse{}, persistenceError("create team", err)
	}

	s.logger.Info().Uint("team_id", team.ID).Int("members", len(team.Members)).Msg("team registered")
	return s.issue(team.Members[0], team)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, persistenceError("load user", err)
	}
	if user.TeamID == nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	team, err := s.teams.GetByID(ctx, *user.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, persistenceError("load team", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info().Str("email", maskEmailAddress(req.Email)).Uint("team_id", team.ID).Msg("login rejected")
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user, team)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrTeamNotFound
		}
		return dto.ProfileResponse{}, persistenceError("load user", err)
	}
	if user.TeamID == nil {
		return dto.ProfileResponse{}, ErrTeamNotFound
	}

	team, err := s.teams.GetByID(ctx, *user.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrTeamNotFound
		}
		return dto.ProfileResponse{}, persistenceError("load team", err)
	}

	response := dto.NewTeamResponse(team)
	return dto.ProfileResponse{User: memberOf(response, user), Team: response}, nil
}

func (s *authService) issue(user models.User, team models.Team) (dto.AuthResponse, error) {
	token, err := IssueToken(s.config, user, team.ID, s.now())
	if err != nil {
		return dto.AuthResponse{}, err
	}

	response := dto.NewTeamResponse(team)
	return dto.AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TTL.Seconds()),
		User:      memberOf(response, user),
		Team:      response,
	}, nil
}

func (s *authService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

// IssueToken signs an HS256 token carrying the user id, team id and role.
func IssueToken(config AuthConfig, user models.User, teamID uint, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(user.ID), 10),
		"team_id": teamID,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(config.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.Secret))
}

func memberOf(team dto.TeamResponse, user models.User) dto.MemberResponse {
	for _, member := range team.Members {
		if member.ID == user.ID {
			return member
		}
	}
	return dto.MemberResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}
