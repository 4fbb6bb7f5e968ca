package profiles

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/storage"
)

const (
	defaultMaxImageBytes int64 = 5 << 20
	sniffBytes                 = 3072
)

// raster formats only; SVG can carry script and the bucket is public
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type profileRepository interface {
	Find(ctx context.Context, userID uuid.UUID) (*models.WatchPreference, error)
	Upsert(ctx context.Context, row *models.WatchPreference) error
	SetImage(ctx context.Context, userID uuid.UUID, url string, at time.Time) error
}

// ImageUpload is one multipart image part.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ServiceParams struct {
	Repo          profileRepository
	Storage       storage.Uploader
	MaxImageBytes int64
	Logger        *logger.Logger
	Now           func() time.Time
}

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	Upsert(ctx context.Context, userID uuid.UUID, input UpsertProfileInput) (ProfileDTO, error)
	UploadImage(ctx context.Context, userID uuid.UUID, upload ImageUpload) (string, error)
}

type service struct {
	repo     profileRepository
	storage  storage.Uploader
	maxBytes int64
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	maxBytes := params.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		storage:  params.Storage,
		maxBytes: maxBytes,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	row, err := s.repo.Find(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(row), nil
}

func (s *service) Upsert(ctx context.Context, userID uuid.UUID, input UpsertProfileInput) (ProfileDTO, error) {
	if err := validatePriceRange(input); err != nil {
		return ProfileDTO{}, err
	}
	row := input.toModel(userID)
	row.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, row); err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return s.Get(ctx, userID)
}

// UploadImage stores the image under <user_id>/<uuid><ext> and records its
// public URL on the profile. The type is sniffed from the bytes, never taken
// from the client. A replaced image is removed from the bucket.
func (s *service) UploadImage(ctx context.Context, userID uuid.UUID, upload ImageUpload) (string, error) {
	if s.storage == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	if upload.Body == nil || upload.Size <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	if upload.Size > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image must be 5MB or smaller").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file must be a JPEG, PNG, GIF or WebP image").
			WithDetails(map[string]any{"detected": detected.String()})
	}

	previous := s.currentImage(ctx, userID)

	key := userID.String() + "/" + uuid.NewString() + detected.Extension()
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Body), s.maxBytes)
	url, err := s.storage.Upload(ctx, key, body, upload.Size, detected.String())
	if err != nil {
		return "", err
	}

	if err := s.repo.SetImage(ctx, userID, url, s.now()); err != nil {
		s.deleteObject(ctx, key)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile image")
	}
	if previous != "" && previous != url {
		if oldKey, ok := s.storage.KeyFromURL(previous); ok {
			s.deleteObject(ctx, oldKey)
		}
	}
	return url, nil
}

func (s *service) currentImage(ctx context.Context, userID uuid.UUID) string {
	row, err := s.repo.Find(ctx, userID)
	if err != nil || row == nil || row.ProfileImage == nil {
		return ""
	}
	return *row.ProfileImage
}

func (s *service) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"key":   key,
			"error": err.Error(),
		}), "profiles.image_cleanup_failed")
	}
}

func validatePriceRange(input UpsertProfileInput) error {
	if input.PriceRangeMin != nil && input.PriceRangeMin.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_range_min must not be negative")
	}
	if input.PriceRangeMax != nil && input.PriceRangeMax.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_range_max must not be negative")
	}
	if input.PriceRangeMin != nil && input.PriceRangeMax != nil && input.PriceRangeMin.GreaterThan(*input.PriceRangeMax) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_range_min must not exceed price_range_max")
	}
	return nil
}
