package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackathon",
		Subsystem: "judge",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of multi test case evaluations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	testCaseVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackathon",
		Subsystem: "judge",
		Name:      "test_case_verdicts_total",
		Help:      "Test case verdicts grouped by status",
	}, []string{"status"})

	backendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hackathon",
		Subsystem: "judge",
		Name:      "backend_failures_total",
		Help:      "Number of test cases that failed because the backend was unavailable",
	})
)

// Client evaluates source code against ordered test cases using a Backend.
type Client struct {
	backend Backend
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewClient wraps the backend with evaluation semantics.
func NewClient(backend Backend, logger zerolog.Logger) *Client {
	return &Client{
		backend: backend,
		tracer:  otel.Tracer("github.com/noah-isme/hackathon-go-api/pkg/judge"),
		logger:  logger.With().Str("component", "judge_client").Logger(),
	}
}

// Evaluate runs each test case in order and stops at the first failure.
// Backend errors are reported as a failed test case, never returned.
func (c *Client) Evaluate(parent context.Context, code, language string, testCases []TestCase) Result {
	language = NormalizeLanguage(language)
	ctx, span := c.tracer.Start(parent, "judge.evaluate", trace.WithAttributes(
		attribute.String("judge.language", language),
		attribute.Int("judge.test_cases", len(testCases)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		evaluationDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())
	}()

	result := Result{Status: "Accepted", Outputs: make([]string, 0, len(testCases))}
	passed := 0

	for index, testCase := range testCases {
		execution := c.run(ctx, Submission{
			SourceCode:     code,
			Language:       language,
			Stdin:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
		testCaseVerdicts.WithLabelValues(execution.Status).Inc()
		result.Outputs = append(result.Outputs, fmt.Sprintf("Test Case %d: %s\nOutput:\n%s\n", index+1, execution.Status, execution.Output()))

		if !execution.Accepted() {
			result.Status = execution.Status
			result.Message = fmt.Sprintf("Failed on Test Case %d.", index+1)
			span.SetStatus(codes.Error, result.Message)
			break
		}
		passed++
	}

	if passed == len(testCases) {
		result.Message = fmt.Sprintf("Passed %d/%d test cases.", passed, len(testCases))
	}
	result.IsCorrect = passed == len(testCases)
	if len(testCases) > 0 {
		result.Score = float64(passed) / float64(len(testCases)) * 100
	}

	span.SetAttributes(attribute.Int("judge.passed", passed))
	return result
}

func (c *Client) run(ctx context.Context, submission Submission) Execution {
	execution, err := c.backend.Execute(ctx, submission)
	if err == nil {
		return execution
	}

	if !errors.Is(err, ErrJudgeUnavailable) {
		err = fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	backendFailures.Inc()
	trace.SpanFromContext(ctx).RecordError(err)
	c.logger.Warn().Err(err).Str("language", submission.Language).Msg("judge backend failed")

	return Execution{Status: StatusError, Stdout: err.Error()}
}
