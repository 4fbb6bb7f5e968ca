package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/pkg/db"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

type favoritesRepository interface {
	Add(ctx context.Context, userID, watchID uuid.UUID, at time.Time) (bool, error)
	Remove(ctx context.Context, userID, watchID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, watchID uuid.UUID) (bool, error)
	ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[FavoriteDTO], error)
}

type watchLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo    favoritesRepository
	Watches watchLookup
	Now     func() time.Time
}

// Service exposes the favorites rules.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[FavoriteDTO], error)
	IDs(ctx context.Context, userID uuid.UUID) (IDsDTO, error)
	Is(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error)
	Add(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error)
	Remove(ctx context.Context, userID, watchID uuid.UUID) error
	Toggle(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error)
}

type service struct {
	repo    favoritesRepository
	watches watchLookup
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.Watches == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "watch repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, watches: params.Watches, now: now}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[FavoriteDTO], error) {
	page, err := s.repo.List(ctx, userID, params)
	if err != nil {
		if pagination.IsCursorError(err) {
			return pagination.Page[FavoriteDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[FavoriteDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return page, nil
}

func (s *service) IDs(ctx context.Context, userID uuid.UUID) (IDsDTO, error) {
	ids, err := s.repo.ListIDs(ctx, userID)
	if err != nil {
		return IDsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorite ids")
	}
	return IDsDTO{WatchIDs: ids}, nil
}

func (s *service) Is(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error) {
	ok, err := s.repo.Exists(ctx, userID, watchID)
	if err != nil {
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load favorite")
	}
	return StatusDTO{WatchID: watchID, Favorite: ok}, nil
}

// Add is idempotent; adding an existing favorite succeeds.
func (s *service) Add(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error) {
	if err := s.ensureWatch(ctx, watchID); err != nil {
		return StatusDTO{}, err
	}
	if _, err := s.repo.Add(ctx, userID, watchID, s.now()); err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "watch not found")
		}
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return StatusDTO{WatchID: watchID, Favorite: true}, nil
}

func (s *service) Remove(ctx context.Context, userID, watchID uuid.UUID) error {
	if _, err := s.repo.Remove(ctx, userID, watchID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

func (s *service) Toggle(ctx context.Context, userID, watchID uuid.UUID) (StatusDTO, error) {
	removed, err := s.repo.Remove(ctx, userID, watchID)
	if err != nil {
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	if removed {
		return StatusDTO{WatchID: watchID, Favorite: false}, nil
	}
	return s.Add(ctx, userID, watchID)
}

func (s *service) ensureWatch(ctx context.Context, watchID uuid.UUID) error {
	if watchID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "watch id is required")
	}
	ok, err := s.watches.Exists(ctx, watchID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load watch")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "watch not found")
	}
	return nil
}
