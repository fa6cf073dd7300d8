package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// ImageStore uploads question images to Cloudinary.
type ImageStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary-backed image store.
func New(cfg Config, logger zerolog.Logger) (*ImageStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &ImageStore{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// UploadQuestionImage stores the image under a stable per-question public id,
// replacing any previous upload, and returns its secure URL.
func (s *ImageStore) UploadQuestionImage(ctx context.Context, questionID uint, filename string, reader io.Reader) (string, error) {
	publicID := QuestionPublicID(questionID, filename)
	result, err := s.client.Upload.Upload(ctx, reader, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload question image: %w", err)
	}

	s.logger.Info().Uint("question_id", questionID).Str("public_id", result.PublicID).Msg("question image uploaded")
	return result.SecureURL, nil
}

// QuestionPublicID derives the asset id for a question image.
func QuestionPublicID(questionID uint, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		return fmt.Sprintf("question-%d", questionID)
	}
	return fmt.Sprintf("question-%d-%s", questionID, base)
}
