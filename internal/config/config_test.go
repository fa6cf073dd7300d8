package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("HACKATHON_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, JudgeBackendJudge0, cfg.JudgeBackend)
	require.Equal(t, 30, cfg.JudgeMaxPolls)
	require.Equal(t, time.Second, cfg.JudgePollInterval)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 5*time.Second, cfg.ExecutionTimeout)
	require.Equal(t, int64(1000), cfg.RegistrationFee)
	require.Equal(t, "first-match", cfg.CertificateDedupPolicy)
	require.False(t, cfg.CloudinaryEnabled())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("HACKATHON_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownJudgeBackend(t *testing.T) {
	t.Setenv("HACKATHON_JWT_SECRET", "secret")
	t.Setenv("HACKATHON_JUDGE_BACKEND", "piston")

	_, err := Load()
	require.ErrorContains(t, err, "unsupported judge backend")
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("HACKATHON_JWT_SECRET", "secret")
	t.Setenv("HACKATHON_JUDGE_BACKEND", "Docker")
	t.Setenv("HACKATHON_JUDGE_POLL_INTERVAL", "250ms")
	t.Setenv("HACKATHON_REGISTRATION_FEE", "2500")
	t.Setenv("HACKATHON_APP_PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, JudgeBackendDocker, cfg.JudgeBackend)
	require.Equal(t, 250*time.Millisecond, cfg.JudgePollInterval)
	require.Equal(t, int64(2500), cfg.RegistrationFee)
	require.Equal(t, ":9090", cfg.HTTPAddress())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("HACKATHON_JWT_SECRET", "secret")
	t.Setenv("HACKATHON_JWT_TTL", "forever")

	_, err := Load()
	require.ErrorContains(t, err, "jwt.ttl")
}
