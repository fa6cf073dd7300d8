package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	reviewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackathon",
		Subsystem: "ai",
		Name:      "review_duration_seconds",
		Help:      "Duration of AI review requests",
	}, []string{"model"})

	reviewFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackathon",
		Subsystem: "ai",
		Name:      "review_failures_total",
		Help:      "Number of AI review failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI reviewer.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIReviewer implements Reviewer against the chat completion API.
type OpenAIReviewer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIReviewer builds a reviewer using the provided configuration.
func NewOpenAIReviewer(cfg OpenAIConfig) (*OpenAIReviewer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIReviewer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/hackathon-go-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_reviewer").Logger(),
	}, nil
}

// Review asks the model for feedback on a judged answer.
func (r *OpenAIReviewer) Review(parent context.Context, input ReviewInput) (Review, error) {
	ctx, span := r.tracer.Start(parent, "openai.review", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
		attribute.String("language", input.Language),
	))
	defer span.End()

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reviewerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildReviewPrompt(input)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	reviewDuration.WithLabelValues(r.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return Review{}, r.fail(span, fmt.Errorf("openai review: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Review{}, r.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	review, err := parseReview(resp.Choices[0].Message.Content)
	if err != nil {
		return Review{}, r.fail(span, err)
	}
	review.Model = r.cfg.Model
	r.logger.Debug().Str("verdict", review.Verdict).Int("total_tokens", resp.Usage.TotalTokens).Msg("review generated")
	return review, nil
}

func (r *OpenAIReviewer) fail(span trace.Span, err error) error {
	reviewFailures.WithLabelValues(r.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

const reviewerSystemPrompt = "You review hackathon code submissions that were already graded by an automatic judge. " +
	"Respond with a JSON object containing verdict, feedback and an optional suggestions array. " +
	"Do not grade; comment on correctness, complexity and edge cases."

func buildReviewPrompt(input ReviewInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(input.QuestionTitle)
	builder.WriteString("\n\n## Prompt\n")
	builder.WriteString(input.QuestionPrompt)
	builder.WriteString("\n\n## Language\n")
	builder.WriteString(input.Language)
	builder.WriteString("\n\n## Submission\n")
	builder.WriteString(input.SourceCode)
	builder.WriteString("\n\n## Judge Verdict\n")
	builder.WriteString(input.JudgeStatus)
	if input.JudgeMessage != "" {
		builder.WriteString(" (")
		builder.WriteString(input.JudgeMessage)
		builder.WriteString(")")
	}
	for _, output := range input.JudgeOutputs {
		builder.WriteString("\n")
		builder.WriteString(output)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseReview(content string) (Review, error) {
	var review Review
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &review); err != nil {
		return Review{}, fmt.Errorf("parse review json: %w", err)
	}
	if review.Verdict == "" {
		review.Verdict = "unknown"
	}
	return review, nil
}
