package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

func setupDashboardService(t *testing.T) (DashboardService, *miniredis.Miniredis, *redis.Client, models.Team) {
	t.Helper()

	db := setupServiceDB(t)
	team := seedTeam(t, db, "Dashboarded", nil)
	require.NoError(t, db.Create(&models.Settings{Singleton: models.SettingsSingletonKey, Round1Live: true}).Error)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewDashboardService(
		repository.NewTeamRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewSettingsRepository(db),
		client,
		time.Minute,
		zerolog.Nop(),
	)
	return svc, mr, client, team
}

func TestDashboardServiceCachesAndInvalidates(t *testing.T) {
	svc, mr, _, team := setupDashboardService(t)
	ctx := context.Background()

	response, err := svc.GetDashboard(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, "Dashboarded", response.Team.Name)
	require.Equal(t, StatusLive, response.Competition.Status)
	require.True(t, response.Settings.Round1Live)
	require.True(t, mr.Exists(dashboardCacheKey(team.ID)))

	svc.Invalidate(ctx, team.ID)
	require.False(t, mr.Exists(dashboardCacheKey(team.ID)))

	_, err = svc.GetDashboard(ctx, team.ID)
	require.NoError(t, err)
	require.NoError(t, mr.Set(dashboardCacheKey(team.ID+100), "{}"))

	svc.InvalidateAll(ctx)
	require.False(t, mr.Exists(dashboardCacheKey(team.ID)))
	require.False(t, mr.Exists(dashboardCacheKey(team.ID+100)))
}

func TestDashboardServiceServesFromCache(t *testing.T) {
	svc, mr, _, team := setupDashboardService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(dashboardCacheKey(team.ID), `{"team":{"id":1,"team_name":"Cached"},"competition_status":{"name":"x","description":"y","status":"cached"}}`))

	response, err := svc.GetDashboard(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, "Cached", response.Team.Name)
	require.Equal(t, "cached", response.Competition.Status)
}

func TestDashboardServiceUnknownTeam(t *testing.T) {
	svc, _, _, _ := setupDashboardService(t)

	_, err := svc.GetDashboard(context.Background(), 4242)
	require.ErrorIs(t, err, ErrTeamNotFound)
}
