package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/observability"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

// TestService serves round questions, practice runs and graded submissions.
type TestService interface {
	GetRoundQuestions(ctx context.Context, teamID uint, round int) ([]dto.ParticipantQuestion, error)
	RunPractice(ctx context.Context, req dto.RunCodeRequest) (dto.RunCodeResponse, error)
	SubmitRound(ctx context.Context, teamID uint, round int, req dto.SubmitRoundRequest) (dto.SubmitRoundResponse, error)
}

type testService struct {
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
	teams       repository.TeamRepository
	settings    repository.SettingsRepository
	judge       CodeJudge
	dashboards  DashboardInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewTestService wires the participant test flow.
func NewTestService(
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	teams repository.TeamRepository,
	settings repository.SettingsRepository,
	codeJudge CodeJudge,
	dashboards DashboardInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) TestService {
	return &testService{
		questions:   questions,
		submissions: submissions,
		teams:       teams,
		settings:    settings,
		judge:       codeJudge,
		dashboards:  dashboards,
		validator:   validate,
		logger:      logger.With().Str("component", "test_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hackathon-go-api/internal/service/test"),
		now:         time.Now,
	}
}

func (s *testService) GetRoundQuestions(ctx context.Context, teamID uint, round int) ([]dto.ParticipantQuestion, error) {
	if err := ValidateRound(round); err != nil {
		return nil, err
	}
	if err := s.ensureNotSubmitted(ctx, teamID, round); err != nil {
		return nil, err
	}
	if err := s.ensureEligible(ctx, teamID, round); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByRound(ctx, round)
	if err != nil {
		return nil, persistenceError("list questions", err)
	}

	views := make([]dto.ParticipantQuestion, 0, len(questions))
	for _, question := range questions {
		views = append(views, dto.NewParticipantQuestion(question))
	}
	return views, nil
}

func (s *testService) RunPractice(ctx context.Context, req dto.RunCodeRequest) (dto.RunCodeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RunCodeResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RunCodeResponse{}, ErrQuestionNotFound
		}
		return dto.RunCodeResponse{}, persistenceError("get question", err)
	}

	visible := question.VisibleTestCases()
	if len(visible) == 0 {
		return dto.RunCodeResponse{
			Status:  "No Visible Test Cases",
			Message: "No visible test cases to run against.",
			Outputs: []string{"N/A"},
		}, nil
	}

	result := s.judge.Evaluate(ctx, req.Code, req.Language, toJudgeTestCases(visible))
	return dto.NewRunCodeResponse(result), nil
}

func (s *testService) SubmitRound(ctx context.Context, teamID uint, round int, req dto.SubmitRoundRequest) (dto.SubmitRoundResponse, error) {
	ctx, span := s.tracer.Start(ctx, "test.submit_round", trace.WithAttributes(
		attribute.Int("team.id", int(teamID)),
		attribute.Int("round", round),
		attribute.Int("answers", len(req.Answers)),
	))
	defer span.End()

	if err := ValidateRound(round); err != nil {
		return dto.SubmitRoundResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmitRoundResponse{}, err
	}
	if err := s.ensureNotSubmitted(ctx, teamID, round); err != nil {
		return dto.SubmitRoundResponse{}, err
	}
	if err := s.ensureEligible(ctx, teamID, round); err != nil {
		return dto.SubmitRoundResponse{}, err
	}

	ids := make([]uint, 0, len(req.Answers))
	for _, answer := range req.Answers {
		ids = append(ids, answer.QuestionID)
	}
	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load questions")
		return dto.SubmitRoundResponse{}, persistenceError("load questions", err)
	}

	submission := models.Submission{
		TeamID:  teamID,
		Round:   round,
		Answers: make([]models.Answer, 0, len(req.Answers)),
		Status:  models.SubmissionStatusEvaluated,
	}
	containsJudged := false

	for _, input := range req.Answers {
		question, ok := questions[input.QuestionID]
		if !ok {
			continue
		}

		answer, judged, err := scoreAnswer(ctx, s.judge, question, input)
		if err != nil {
			s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("question cannot be scored, awarding zero")
		}
		containsJudged = containsJudged || judged
		submission.TotalScore += answer.Score
		submission.Answers = append(submission.Answers, answer)
	}

	if containsJudged {
		submission.Status = models.SubmissionStatusPending
	}
	submission.SubmittedAt = s.now().UTC()

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist submission")
		return dto.SubmitRoundResponse{}, persistenceError("create submission", err)
	}

	roundLabel := strconv.Itoa(round)
	observability.Submissions().WithLabelValues(roundLabel, submission.Status).Inc()
	observability.SubmissionScores().WithLabelValues(roundLabel).Observe(submission.TotalScore)
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, teamID)
	}

	s.logger.Info().
		Uint("team_id", teamID).
		Int("round", round).
		Float64("total_score", submission.TotalScore).
		Str("status", submission.Status).
		Msg("round submission stored")

	return dto.SubmitRoundResponse{
		SubmissionID: submission.ID,
		Round:        round,
		TotalScore:   submission.TotalScore,
		Status:       submission.Status,
	}, nil
}

func (s *testService) ensureNotSubmitted(ctx context.Context, teamID uint, round int) error {
	exists, err := s.submissions.Exists(ctx, teamID, round)
	if err != nil {
		return persistenceError("check submission", err)
	}
	if exists {
		return ErrDuplicateSubmission
	}
	return nil
}

func (s *testService) ensureEligible(ctx context.Context, teamID uint, round int) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return persistenceError("load settings", err)
	}
	if !settings.RoundLive(round) {
		return ErrRoundLocked
	}
	if round == 1 {
		return nil
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return persistenceError("load team", err)
	}
	if !team.QualifiedForRound2 {
		return ErrNotQualified
	}
	return nil
}
