package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Judge backends selectable through judge.backend.
const (
	JudgeBackendJudge0 = "judge0"
	JudgeBackendDocker = "docker"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string

	NATSURL         string
	NATSChannelBase string

	JWTSecret string
	JWTTTL    time.Duration

	DashboardCacheTTL time.Duration

	JudgeBackend      string
	JudgeBaseURL      string
	JudgeHost         string
	JudgeAPIKey       string
	JudgePollInterval time.Duration
	JudgeMaxPolls     int
	DockerHost        string
	ExecutionTimeout  time.Duration
	CodeRunMemoryMB   int
	CodeRunCPUShares  int

	PaymentKeySecret       string
	RegistrationFee        int64
	CertificateDedupPolicy string
	SubmitRateLimit        int
	SubmitRateLimitWindow  time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminTeam     string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	AIProvider   string
	OpenAIAPIKey string
	OpenAIModel  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// CloudinaryEnabled reports whether question image uploads can be served.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HACKATHON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Hackathon API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.channel_base", "hackathon")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("dashboard.cache_ttl", "2m")
	v.SetDefault("judge.backend", JudgeBackendJudge0)
	v.SetDefault("judge.host", "judge0-ce.p.rapidapi.com")
	v.SetDefault("judge.poll_interval", "1s")
	v.SetDefault("judge.max_polls", 30)
	v.SetDefault("execution_timeout_ms", 5000)
	v.SetDefault("code_run_memory_mb", 256)
	v.SetDefault("code_run_cpu_shares", 512)
	v.SetDefault("registration.fee", 1000)
	v.SetDefault("certificates.dedup_policy", "first-match")
	v.SetDefault("submit.rate_limit", 5)
	v.SetDefault("submit.rate_limit_window", "1m")
	v.SetDefault("admin.name", "Admin")
	v.SetDefault("admin.team", "AdminTeam")
	v.SetDefault("cloudinary.folder", "hackathon/questions")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")

	durations := map[string]*time.Duration{}
	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		NATSChannelBase:        v.GetString("nats.channel_base"),
		JWTSecret:              v.GetString("jwt.secret"),
		JudgeBackend:           strings.ToLower(strings.TrimSpace(v.GetString("judge.backend"))),
		JudgeBaseURL:           v.GetString("judge.base_url"),
		JudgeHost:              v.GetString("judge.host"),
		JudgeAPIKey:            v.GetString("judge.api_key"),
		JudgeMaxPolls:          v.GetInt("judge.max_polls"),
		DockerHost:             v.GetString("docker_host"),
		CodeRunMemoryMB:        v.GetInt("code_run_memory_mb"),
		CodeRunCPUShares:       v.GetInt("code_run_cpu_shares"),
		PaymentKeySecret:       v.GetString("payment.key_secret"),
		RegistrationFee:        v.GetInt64("registration.fee"),
		CertificateDedupPolicy: v.GetString("certificates.dedup_policy"),
		SubmitRateLimit:        v.GetInt("submit.rate_limit"),
		AdminEmail:             v.GetString("admin.email"),
		AdminPassword:          v.GetString("admin.password"),
		AdminName:              v.GetString("admin.name"),
		AdminTeam:              v.GetString("admin.team"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai_model"),
	}

	durations["jwt.ttl"] = &cfg.JWTTTL
	durations["dashboard.cache_ttl"] = &cfg.DashboardCacheTTL
	durations["judge.poll_interval"] = &cfg.JudgePollInterval
	durations["submit.rate_limit_window"] = &cfg.SubmitRateLimitWindow
	for key, target := range durations {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = parsed
	}

	timeoutMs := v.GetInt("execution_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	cfg.ExecutionTimeout = time.Duration(timeoutMs) * time.Millisecond

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.JudgeBackend {
	case JudgeBackendJudge0, JudgeBackendDocker:
	default:
		return Config{}, fmt.Errorf("unsupported judge backend %q", cfg.JudgeBackend)
	}

	if cfg.JudgeMaxPolls <= 0 {
		cfg.JudgeMaxPolls = 30
	}

	if cfg.CodeRunMemoryMB <= 0 {
		cfg.CodeRunMemoryMB = 256
	}

	if cfg.CodeRunCPUShares <= 0 {
		cfg.CodeRunCPUShares = 512
	}

	return cfg, nil
}
