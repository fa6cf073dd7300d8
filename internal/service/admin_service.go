package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
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

// AdminConfig tunes the admin control surface.
type AdminConfig struct {
	RegistrationFee   int64
	CertificatePolicy CertificatePolicy
}

// AdminService drives the competition lifecycle on behalf of organizers.
type AdminService interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	DeployRound(ctx context.Context, actor ActivityActor, round int) (models.Settings, error)
	FinalizeRound1(ctx context.Context, actor ActivityActor) (dto.QualificationResponse, error)
	FinalizeRound2(ctx context.Context, actor ActivityActor) (dto.QualificationResponse, error)
	PublishRound(ctx context.Context, actor ActivityActor, round int) (dto.PublishResponse, error)
	GenerateCertificates(ctx context.Context, actor ActivityActor) (dto.CertificateBatchResponse, error)

	SetTeamQualification(ctx context.Context, actor ActivityActor, teamID uint, req dto.SetTeamStatusRequest) (dto.TeamResponse, error)
	VerifyPayment(ctx context.Context, actor ActivityActor, teamID uint) (dto.TeamResponse, error)
	DeleteTeam(ctx context.Context, actor ActivityActor, teamID uint) error
	Stats(ctx context.Context) (dto.StatsResponse, error)
	RecentTeams(ctx context.Context, limit int) ([]dto.TeamResponse, error)
	AllTeams(ctx context.Context) ([]dto.TeamResponse, error)

	ListSubmissions(ctx context.Context, round *int) ([]dto.AdminSubmissionResponse, error)
	UpdateSubmissionScore(ctx context.Context, actor ActivityActor, submissionID uint, req dto.UpdateScoreRequest) (dto.AdminSubmissionResponse, error)
	Leaderboard(ctx context.Context, round int) ([]dto.LeaderboardEntry, error)
}

type adminService struct {
	teams        repository.TeamRepository
	submissions  repository.SubmissionRepository
	questions    repository.QuestionRepository
	settings     repository.SettingsRepository
	certificates repository.CertificateRepository
	activity     ActivityRecorder
	events       CompetitionEvents
	dashboards   DashboardInvalidator
	validator    *validator.Validate
	config       AdminConfig
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
	newID        func() (string, error)

	// batch serializes every transition that reads and rewrites team flags.
	batch sync.Mutex
}

// NewAdminService wires the admin control surface.
func NewAdminService(
	teams repository.TeamRepository,
	submissions repository.SubmissionRepository,
	questions repository.QuestionRepository,
	settings repository.SettingsRepository,
	certificates repository.CertificateRepository,
	activity ActivityRecorder,
	events CompetitionEvents,
	dashboards DashboardInvalidator,
	validate *validator.Validate,
	config AdminConfig,
	logger zerolog.Logger,
) AdminService {
	if config.CertificatePolicy == "" {
		config.CertificatePolicy = CertificatePolicyFirstMatch
	}
	return &adminService{
		teams:        teams,
		submissions:  submissions,
		questions:    questions,
		settings:     settings,
		certificates: certificates,
		activity:     activity,
		events:       events,
		dashboards:   dashboards,
		validator:    validate,
		config:       config,
		logger:       logger.With().Str("component", "admin_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/hackathon-go-api/internal/service/admin"),
		now:          time.Now,
		newID:        newVerificationID,
	}
}

func (s *adminService) GetSettings(ctx context.Context) (models.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.Settings{}, persistenceError("load settings", err)
	}
	return settings, nil
}

func (s *adminService) DeployRound(ctx context.Context, actor ActivityActor, round int) (models.Settings, error) {
	if err := ValidateRound(round); err != nil {
		return models.Settings{}, err
	}

	settings, err := s.settings.Update(ctx, map[string]interface{}{fmt.Sprintf("round%d_live", round): true})
	if err != nil {
		s.failed("deploy_round")
		return models.Settings{}, persistenceError("deploy round", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "round.deployed",
		entity:   "settings",
		entityID: &settings.ID,
		metadata: map[string]interface{}{"round": round},
		event:    CompetitionEvent{Type: EventRoundDeployed, Round: round, Message: fmt.Sprintf("Round %d is now live.", round)},
	})
	return settings, nil
}

func (s *adminService) FinalizeRound1(ctx context.Context, actor ActivityActor) (dto.QualificationResponse, error) {
	s.batch.Lock()
	defer s.batch.Unlock()

	ctx, span := s.tracer.Start(ctx, "admin.finalize_round1")
	defer span.End()

	totalPoints, err := s.questions.TotalPoints(ctx, 1)
	if err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round1", persistenceError("sum round points", err))
	}
	submissions, err := s.submissions.ListByRound(ctx, 1)
	if err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round1", persistenceError("list submissions", err))
	}
	if len(submissions) == 0 {
		return dto.QualificationResponse{}, fmt.Errorf("%w for round 1", ErrNoSubmissions)
	}

	result := QualifyRound1(submissions, totalPoints)
	if err := s.teams.ReplaceQualified(ctx, "qualified_for_round2", result.Qualified); err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round1", persistenceError("store qualifiers", err))
	}
	if _, err := s.settings.Update(ctx, map[string]interface{}{"round1_finalized": true}); err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round1", persistenceError("mark finalized", err))
	}

	response := dto.QualificationResponse{
		Round:            1,
		TotalSubmissions: len(submissions),
		Qualified:        len(result.Qualified),
		RankCutoff:       result.RankCutoff,
		ScoreMark:        result.ScoreMark,
	}
	span.SetAttributes(attribute.Int("qualified", response.Qualified))

	s.afterTransition(ctx, actor, transition{
		action:   "round.finalized",
		entity:   "round",
		metadata: map[string]interface{}{"round": 1, "qualified": response.Qualified, "total": response.TotalSubmissions, "score_mark": result.ScoreMark},
		event:    CompetitionEvent{Type: EventRoundFinalized, Round: 1, Message: "Round 1 has been finalized."},
	})
	return response, nil
}

func (s *adminService) FinalizeRound2(ctx context.Context, actor ActivityActor) (dto.QualificationResponse, error) {
	s.batch.Lock()
	defer s.batch.Unlock()

	ctx, span := s.tracer.Start(ctx, "admin.finalize_round2")
	defer span.End()

	submissions, err := s.submissions.ListByRound(ctx, 2)
	if err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round2", persistenceError("list submissions", err))
	}
	if len(submissions) == 0 {
		return dto.QualificationResponse{}, fmt.Errorf("%w for round 2", ErrNoSubmissions)
	}

	result := QualifyRound2(submissions)
	if err := s.teams.ReplaceQualified(ctx, "qualified_for_round3", result.Qualified); err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round2", persistenceError("store qualifiers", err))
	}
	if _, err := s.settings.Update(ctx, map[string]interface{}{"round2_finalized": true}); err != nil {
		return dto.QualificationResponse{}, s.spanError(span, "finalize_round2", persistenceError("mark finalized", err))
	}

	response := dto.QualificationResponse{
		Round:            2,
		TotalSubmissions: len(submissions),
		Qualified:        len(result.Qualified),
		RankCutoff:       result.RankCutoff,
	}

	s.afterTransition(ctx, actor, transition{
		action:   "round.finalized",
		entity:   "round",
		metadata: map[string]interface{}{"round": 2, "qualified": response.Qualified, "total": response.TotalSubmissions},
		event:    CompetitionEvent{Type: EventRoundFinalized, Round: 2, Message: "Round 2 has been finalized."},
	})
	return response, nil
}

func (s *adminService) PublishRound(ctx context.Context, actor ActivityActor, round int) (dto.PublishResponse, error) {
	if err := ValidateRound(round); err != nil {
		return dto.PublishResponse{}, err
	}

	s.batch.Lock()
	defer s.batch.Unlock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.failed("publish_round")
		return dto.PublishResponse{}, persistenceError("load settings", err)
	}
	if !settings.RoundFinalized(round) {
		return dto.PublishResponse{}, fmt.Errorf("%w: round %d", ErrRoundNotFinalized, round)
	}

	submissions, err := s.submissions.ListByRound(ctx, round)
	if err != nil {
		s.failed("publish_round")
		return dto.PublishResponse{}, persistenceError("list submissions", err)
	}

	teamIDs := make([]uint, 0, len(submissions))
	for _, submission := range submissions {
		teamIDs = append(teamIDs, submission.TeamID)
	}

	column := fmt.Sprintf("round%d_results_published", round)
	if err := s.teams.MarkPublished(ctx, column, teamIDs); err != nil {
		s.failed("publish_round")
		return dto.PublishResponse{}, persistenceError("publish results", err)
	}
	if _, err := s.settings.Update(ctx, map[string]interface{}{fmt.Sprintf("round%d_published", round): true}); err != nil {
		s.failed("publish_round")
		return dto.PublishResponse{}, persistenceError("mark published", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "results.published",
		entity:   "round",
		metadata: map[string]interface{}{"round": round, "teams": len(teamIDs)},
		event:    CompetitionEvent{Type: EventResultsPublished, Round: round, Message: fmt.Sprintf("Round %d results are now published.", round)},
	})
	return dto.PublishResponse{Round: round, TeamsPublished: len(teamIDs)}, nil
}

func (s *adminService) GenerateCertificates(ctx context.Context, actor ActivityActor) (dto.CertificateBatchResponse, error) {
	s.batch.Lock()
	defer s.batch.Unlock()

	ctx, span := s.tracer.Start(ctx, "admin.generate_certificates", trace.WithAttributes(
		attribute.String("certificates.policy", string(s.config.CertificatePolicy)),
	))
	defer span.End()

	round2, err := s.submissions.ListByRound(ctx, 2)
	if err != nil {
		return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", persistenceError("list submissions", err))
	}
	totalPoints, err := s.questions.TotalPoints(ctx, 2)
	if err != nil {
		return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", persistenceError("sum round points", err))
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", persistenceError("list teams", err))
	}

	awards := PlanCertificates(round2, totalPoints, teams, s.config.CertificatePolicy)
	issuedAt := s.now().UTC()
	certificates := make([]models.Certificate, 0, len(awards))
	for _, award := range awards {
		verificationID, err := s.newID()
		if err != nil {
			return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", fmt.Errorf("generate verification id: %w", err))
		}
		certificates = append(certificates, models.Certificate{
			TeamID:         award.TeamID,
			TeamName:       award.TeamName,
			Achievement:    award.Achievement,
			VerificationID: verificationID,
			IssuedAt:       issuedAt,
		})
	}

	if err := s.certificates.ReplaceAll(ctx, certificates); err != nil {
		return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", persistenceError("store certificates", err))
	}
	if _, err := s.settings.Update(ctx, map[string]interface{}{"certificates_published": true}); err != nil {
		return dto.CertificateBatchResponse{}, s.spanError(span, "generate_certificates", persistenceError("mark certificates published", err))
	}

	s.afterTransition(ctx, actor, transition{
		action:   "certificates.generated",
		entity:   "certificate",
		metadata: map[string]interface{}{"issued": len(certificates), "policy": string(s.config.CertificatePolicy)},
		event:    CompetitionEvent{Type: EventCertificatesGenerated, Message: "Certificates have been published."},
	})
	return dto.CertificateBatchResponse{Issued: len(certificates), Policy: string(s.config.CertificatePolicy)}, nil
}

func (s *adminService) SetTeamQualification(ctx context.Context, actor ActivityActor, teamID uint, req dto.SetTeamStatusRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeamResponse{}, err
	}

	s.batch.Lock()
	defer s.batch.Unlock()

	if err := s.teams.UpdateFields(ctx, teamID, map[string]interface{}{"qualified_for_round2": *req.Qualified}); err != nil {
		return dto.TeamResponse{}, s.teamError("set_team_status", err)
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return dto.TeamResponse{}, s.teamError("set_team_status", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "team.qualification_overridden",
		entity:   "team",
		entityID: &team.ID,
		metadata: map[string]interface{}{"qualified_for_round2": *req.Qualified},
	})
	return dto.NewTeamResponse(team), nil
}

func (s *adminService) VerifyPayment(ctx context.Context, actor ActivityActor, teamID uint) (dto.TeamResponse, error) {
	if err := s.teams.UpdateFields(ctx, teamID, map[string]interface{}{"payment_status": models.PaymentStatusVerified}); err != nil {
		return dto.TeamResponse{}, s.teamError("verify_payment", err)
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return dto.TeamResponse{}, s.teamError("verify_payment", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "payment.verified",
		entity:   "team",
		entityID: &team.ID,
	})
	return dto.NewTeamResponse(team), nil
}

func (s *adminService) DeleteTeam(ctx context.Context, actor ActivityActor, teamID uint) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return s.teamError("delete_team", err)
	}
	if team.IsAdmin {
		return ErrProtectedTeam
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return s.teamError("delete_team", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "team.deleted",
		entity:   "team",
		entityID: &teamID,
		metadata: map[string]interface{}{"team_name": team.Name, "members": len(team.Members)},
	})
	return nil
}

func (s *adminService) Stats(ctx context.Context) (dto.StatsResponse, error) {
	total, err := s.teams.CountParticipants(ctx)
	if err != nil {
		return dto.StatsResponse{}, persistenceError("count teams", err)
	}
	verified, err := s.teams.CountVerifiedPayments(ctx)
	if err != nil {
		return dto.StatsResponse{}, persistenceError("count payments", err)
	}
	return dto.StatsResponse{
		TotalTeams:       total,
		VerifiedPayments: verified,
		Revenue:          total * s.config.RegistrationFee,
	}, nil
}

func (s *adminService) RecentTeams(ctx context.Context, limit int) ([]dto.TeamResponse, error) {
	teams, err := s.teams.Recent(ctx, limit)
	if err != nil {
		return nil, persistenceError("recent teams", err)
	}
	return dto.NewTeamResponses(teams), nil
}

func (s *adminService) AllTeams(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, persistenceError("list teams", err)
	}
	return dto.NewTeamResponses(teams), nil
}

func (s *adminService) ListSubmissions(ctx context.Context, round *int) ([]dto.AdminSubmissionResponse, error) {
	if round != nil {
		if err := ValidateRound(*round); err != nil {
			return nil, err
		}
	}
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{Round: round})
	if err != nil {
		return nil, persistenceError("list submissions", err)
	}

	responses := make([]dto.AdminSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewAdminSubmissionResponse(submission))
	}
	return responses, nil
}

func (s *adminService) UpdateSubmissionScore(ctx context.Context, actor ActivityActor, submissionID uint, req dto.UpdateScoreRequest) (dto.AdminSubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminSubmissionResponse{}, err
	}
	status := req.Status
	if status == "" {
		status = models.SubmissionStatusEvaluated
	}

	submission, err := s.submissions.UpdateScore(ctx, submissionID, *req.TotalScore, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.AdminSubmissionResponse{}, persistenceError("update score", err)
	}

	s.afterTransition(ctx, actor, transition{
		action:   "submission.score_overridden",
		entity:   "submission",
		entityID: &submission.ID,
		metadata: map[string]interface{}{"total_score": submission.TotalScore, "status": submission.Status, "team_id": submission.TeamID},
	})
	return dto.NewAdminSubmissionResponse(submission), nil
}

func (s *adminService) Leaderboard(ctx context.Context, round int) ([]dto.LeaderboardEntry, error) {
	if err := ValidateRound(round); err != nil {
		return nil, err
	}
	submissions, err := s.submissions.Leaderboard(ctx, round)
	if err != nil {
		return nil, persistenceError("leaderboard", err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(submissions))
	for index, submission := range submissions {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:       index + 1,
			TeamID:     submission.TeamID,
			TeamName:   submission.Team.Name,
			TotalScore: submission.TotalScore,
			Status:     submission.Status,
		})
	}
	return entries, nil
}

type transition struct {
	action   string
	entity   string
	entityID *uint
	metadata map[string]interface{}
	event    CompetitionEvent
}

// afterTransition records the audit entry, notifies listeners and drops
// cached dashboards. None of these steps can fail the transition itself.
func (s *adminService) afterTransition(ctx context.Context, actor ActivityActor, t transition) {
	observability.Transitions().WithLabelValues(t.action, "success").Inc()

	if s.activity != nil {
		if _, err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     t.action,
			EntityType: t.entity,
			EntityID:   t.entityID,
			Metadata:   t.metadata,
		}); err != nil {
			s.logger.Warn().Err(err).Str("action", t.action).Msg("failed to record admin activity")
		}
	}

	if s.events != nil && t.event.Type != "" {
		if t.event.Metadata == nil {
			t.event.Metadata = t.metadata
		}
		s.events.Publish(ctx, t.event)
	}

	if s.dashboards != nil {
		s.dashboards.InvalidateAll(ctx)
	}

	s.logger.Info().Uint("actor_id", actor.ID).Str("action", t.action).Interface("metadata", t.metadata).Msg("competition transition applied")
}

func (s *adminService) failed(action string) {
	observability.Transitions().WithLabelValues(action, "failure").Inc()
}

func (s *adminService) spanError(span trace.Span, action string, err error) error {
	s.failed(action)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error().Err(err).Str("action", action).Msg("competition transition failed")
	return err
}

func (s *adminService) teamError(action string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTeamNotFound
	}
	s.failed(action)
	return persistenceError(action, err)
}

func newVerificationID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
