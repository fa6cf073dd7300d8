package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
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

const maxQuestionImageBytes = 5 << 20

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// ErrImageTooLarge is returned when a question image exceeds the upload limit.
var ErrImageTooLarge = errors.New("question image exceeds 5MB")

// ImageUploader stores question images and returns their public URL.
type ImageUploader interface {
	UploadQuestionImage(ctx context.Context, questionID uint, filename string, reader io.Reader) (string, error)
}

// QuestionService manages the question bank.
type QuestionService interface {
	Create(ctx context.Context, actor ActivityActor, req dto.QuestionRequest) (dto.QuestionResponse, error)
	Update(ctx context.Context, actor ActivityActor, id uint, req dto.QuestionRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, actor ActivityActor, id uint) error
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	ListByRound(ctx context.Context, round int) ([]dto.QuestionResponse, error)
	UploadImage(ctx context.Context, actor ActivityActor, id uint, filename string, reader io.Reader) (dto.QuestionResponse, error)
}

type questionService struct {
	repo      repository.QuestionRepository
	images    ImageUploader
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewQuestionService constructs the question bank service. images may be nil
// when no image store is configured.
func NewQuestionService(repo repository.QuestionRepository, images ImageUploader, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		images:    images,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/hackathon-go-api/internal/service/question"),
	}
}

func (s *questionService) Create(ctx context.Context, actor ActivityActor, req dto.QuestionRequest) (dto.QuestionResponse, error) {
	question, err := s.build(req)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.repo.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, persistenceError("create question", err)
	}

	s.record(ctx, actor, "question.created", question)
	return dto.QuestionResponse{Question: question}, nil
}

func (s *questionService) Update(ctx context.Context, actor ActivityActor, id uint, req dto.QuestionRequest) (dto.QuestionResponse, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.build(req)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	question.ID = existing.ID
	question.ImageURL = existing.ImageURL
	question.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, persistenceError("update question", err)
	}

	s.record(ctx, actor, "question.updated", question)
	return dto.QuestionResponse{Question: question}, nil
}

func (s *questionService) Delete(ctx context.Context, actor ActivityActor, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return persistenceError("delete question", err)
	}

	s.record(ctx, actor, "question.deleted", models.Question{ID: id})
	return nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.load(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	return dto.QuestionResponse{Question: question}, nil
}

func (s *questionService) ListByRound(ctx context.Context, round int) ([]dto.QuestionResponse, error) {
	if err := ValidateRound(round); err != nil {
		return nil, err
	}
	questions, err := s.repo.ListByRound(ctx, round)
	if err != nil {
		return nil, persistenceError("list questions", err)
	}
	return dto.NewQuestionResponses(questions), nil
}

func (s *questionService) UploadImage(ctx context.Context, actor ActivityActor, id uint, filename string, reader io.Reader) (dto.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "questions.upload_image", trace.WithAttributes(
		attribute.Int("question.id", int(id)),
	))
	defer span.End()

	if s.images == nil {
		return dto.QuestionResponse{}, errors.New("image storage is not configured")
	}

	question, err := s.load(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, maxQuestionImageBytes+1)); err != nil {
		span.RecordError(err)
		return dto.QuestionResponse{}, fmt.Errorf("read question image: %w", err)
	}
	if buf.Len() > maxQuestionImageBytes {
		observability.ImageRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.QuestionResponse{}, ErrImageTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		observability.ImageRejected().WithLabelValues("type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.QuestionResponse{}, ErrUnsupportedImage
	}

	url, err := s.images.UploadQuestionImage(ctx, question.ID, filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.ImageRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.QuestionResponse{}, err
	}

	question.ImageURL = url
	if err := s.repo.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, persistenceError("store image url", err)
	}

	s.record(ctx, actor, "question.image_uploaded", question)
	return dto.QuestionResponse{Question: question}, nil
}

func (s *questionService) build(req dto.QuestionRequest) (models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Question{}, err
	}

	points := req.Points
	if points == 0 {
		points = models.DefaultQuestionPoints
	}

	question := models.Question{
		Title:               strings.TrimSpace(req.Title),
		Description:         strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		Round:               req.Round,
		Type:                req.Type,
		Points:              points,
		Options:             req.Options,
		CorrectAnswer:       strings.TrimSpace(req.CorrectAnswer),
		TestCases:           req.TestCases,
		DefaultCodeSnippets: req.DefaultCodeSnippets,
	}
	if err := question.Validate(); err != nil {
		return models.Question{}, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	return question, nil
}

func (s *questionService) load(ctx context.Context, id uint) (models.Question, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, persistenceError("get question", err)
	}
	return question, nil
}

func (s *questionService) record(ctx context.Context, actor ActivityActor, action string, question models.Question) {
	if s.activity == nil {
		return
	}
	metadata := map[string]interface{}{}
	if question.Title != "" {
		metadata["title"] = question.Title
		metadata["round"] = question.Round
		metadata["type"] = question.Type
	}
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "question",
		EntityID:   &question.ID,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record question activity")
	}
}
