package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Judge0Config holds the connection settings of a Judge0 deployment.
type Judge0Config struct {
	BaseURL      string
	Host         string
	APIKey       string
	PollInterval time.Duration
	MaxPolls     int
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// Judge0Backend submits programs to a remote Judge0 instance and polls for verdicts.
type Judge0Backend struct {
	client *http.Client
	cfg    Judge0Config
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

type judge0Request struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type judge0Token struct {
	Token string `json:"token"`
}

type judge0Result struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
}

// NewJudge0Backend builds a backend. BaseURL defaults to https://<Host>.
func NewJudge0Backend(cfg Judge0Config) *Judge0Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Judge0Backend{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "judge0").Logger(),
		sleep:  sleepContext,
	}
}

// Execute creates a submission and polls until Judge0 leaves the queued states.
func (b *Judge0Backend) Execute(ctx context.Context, submission Submission) (Execution, error) {
	token, err := b.submit(ctx, submission)
	if err != nil {
		return Execution{}, err
	}

	for poll := 0; poll < b.cfg.MaxPolls; poll++ {
		result, err := b.fetch(ctx, token)
		if err != nil {
			return Execution{}, err
		}
		if result.Status.ID > StatusProcessing {
			return Execution{
				StatusID:      result.Status.ID,
				Status:        result.Status.Description,
				Stdout:        decodeField(result.Stdout),
				Stderr:        decodeField(result.Stderr),
				CompileOutput: decodeField(result.CompileOutput),
			}, nil
		}
		if err := b.sleep(ctx, b.cfg.PollInterval); err != nil {
			return Execution{}, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
		}
	}

	b.logger.Warn().Str("token", token).Int("max_polls", b.cfg.MaxPolls).Msg("judge0 submission did not finish in time")
	return Execution{}, fmt.Errorf("%w: submission %s still queued after %d polls", ErrJudgeUnavailable, token, b.cfg.MaxPolls)
}

func (b *Judge0Backend) submit(ctx context.Context, submission Submission) (string, error) {
	payload, err := json.Marshal(judge0Request{
		SourceCode:     encodeField(submission.SourceCode),
		LanguageID:     LanguageID(submission.Language),
		Stdin:          encodeField(submission.Stdin),
		ExpectedOutput: encodeField(submission.ExpectedOutput),
	})
	if err != nil {
		return "", fmt.Errorf("encode judge0 payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/submissions?base64_encoded=true&wait=false", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrJudgeUnavailable, err)
	}

	var token judge0Token
	if err := b.do(req, &token); err != nil {
		return "", err
	}
	if token.Token == "" {
		return "", fmt.Errorf("%w: failed to get submission token", ErrJudgeUnavailable)
	}
	return token.Token, nil
}

func (b *Judge0Backend) fetch(ctx context.Context, token string) (judge0Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/submissions/%s?base64_encoded=true", b.cfg.BaseURL, token), nil)
	if err != nil {
		return judge0Result{}, fmt.Errorf("%w: build request: %v", ErrJudgeUnavailable, err)
	}

	var result judge0Result
	if err := b.do(req, &result); err != nil {
		return judge0Result{}, err
	}
	return result, nil
}

func (b *Judge0Backend) do(req *http.Request, target interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", b.cfg.APIKey)
	}
	if b.cfg.Host != "" {
		req.Header.Set("X-RapidAPI-Host", b.cfg.Host)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrJudgeUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		b.logger.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("judge0 request rejected")
		return fmt.Errorf("%w: judge0 responded with status %d", ErrJudgeUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrJudgeUnavailable, err)
	}
	return nil
}

func encodeField(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

func decodeField(value *string) string {
	if value == nil || *value == "" {
		return ""
	}
	// Judge0 wraps base64 output at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(*value, "\n", ""))
	if err != nil {
		return *value
	}
	return string(decoded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
