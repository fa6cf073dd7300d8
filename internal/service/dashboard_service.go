package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

const dashboardCachePattern = "dashboard:team:*"

// DashboardInvalidator drops cached dashboards after state changes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, teamID uint)
	InvalidateAll(ctx context.Context)
}

// DashboardService produces a team's dashboard.
type DashboardService interface {
	DashboardInvalidator
	GetDashboard(ctx context.Context, teamID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	settings    repository.SettingsRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables caching.
func NewDashboardService(teams repository.TeamRepository, submissions repository.SubmissionRepository, settings repository.SettingsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		teams:       teams,
		submissions: submissions,
		settings:    settings,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardCacheKey(teamID uint) string {
	return fmt.Sprintf("dashboard:team:%d", teamID)
}

func (s *dashboardService) GetDashboard(ctx context.Context, teamID uint) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(teamID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("team_id", teamID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	var (
		team        models.Team
		submissions []models.Submission
		settings    models.Settings
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		team, err = s.teams.GetByID(groupCtx, teamID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		if err != nil {
			return persistenceError("load team", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		submissions, err = s.submissions.List(groupCtx, repository.SubmissionFilter{TeamID: &teamID})
		if err != nil {
			return persistenceError("list submissions", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		settings, err = s.settings.Get(groupCtx)
		if err != nil {
			return persistenceError("load settings", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return dto.DashboardResponse{}, err
	}

	summaries := make([]dto.SubmissionSummary, 0, len(submissions))
	for _, submission := range submissions {
		summaries = append(summaries, dto.NewSubmissionSummary(submission))
	}

	response := dto.DashboardResponse{
		Team:        dto.NewTeamResponse(team),
		Competition: CompetitionStatus(team, submissions, settings),
		Submissions: summaries,
		Settings:    settings,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, teamID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(teamID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("team_id", teamID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}

	var cursor uint64
	for {
		keys, next, err := s.cache.Scan(ctx, cursor, dashboardCachePattern, 100).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to scan dashboard cache")
			return
		}
		if len(keys) > 0 {
			if err := s.cache.Del(ctx, keys...).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
