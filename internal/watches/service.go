package watches

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

// Service exposes the read side of the watch catalog.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (WatchDTO, error)
	ListByBrand(ctx context.Context, brandID int64, params pagination.Params) (pagination.Page[WatchDTO], error)
}

type reader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Watch, error)
	ListByBrand(ctx context.Context, brandID int64, params pagination.Params) (pagination.Page[models.Watch], error)
}

type service struct {
	repo reader
}

func NewService(repo reader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "watch repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (WatchDTO, error) {
	if id == uuid.Nil {
		return WatchDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "watch id is required")
	}
	watch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WatchDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "watch not found")
		}
		return WatchDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load watch")
	}
	return FromModel(watch), nil
}

func (s *service) ListByBrand(ctx context.Context, brandID int64, params pagination.Params) (pagination.Page[WatchDTO], error) {
	if brandID <= 0 {
		return pagination.Page[WatchDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	page, err := s.repo.ListByBrand(ctx, brandID, params)
	if err != nil {
		if pagination.IsCursorError(err) {
			return pagination.Page[WatchDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[WatchDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brand watches")
	}
	return pagination.Page[WatchDTO]{
		Items:      FromModels(page.Items),
		NextCursor: page.NextCursor,
	}, nil
}
