package watchlists

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

type listRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, list *models.WatchList) error
	FindOwned(ctx context.Context, userID, listID uuid.UUID) (*models.WatchList, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ListDTO, error)
	CountItems(ctx context.Context, listID uuid.UUID) (int, error)
	Rename(ctx context.Context, listID uuid.UUID, name string) error
	Delete(ctx context.Context, listID uuid.UUID) error
	AddItem(ctx context.Context, listID, watchID uuid.UUID, at time.Time) error
	RemoveItem(ctx context.Context, listID, watchID uuid.UUID) error
	Items(ctx context.Context, listID uuid.UUID) ([]ItemDTO, error)
}

type watchLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceParams struct {
	Repo    listRepository
	Watches watchLookup
	Now     func() time.Time
}

// Service manages a user's named watch lists. Lists owned by someone else
// are reported as not found.
type Service interface {
	Lists(ctx context.Context, userID uuid.UUID) ([]ListDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateListInput) (ListDTO, error)
	Rename(ctx context.Context, userID, listID uuid.UUID, name string) (ListDTO, error)
	Delete(ctx context.Context, userID, listID uuid.UUID) error
	Items(ctx context.Context, userID, listID uuid.UUID) ([]ItemDTO, error)
	AddItem(ctx context.Context, userID, listID, watchID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, listID, watchID uuid.UUID) error
}

type service struct {
	repo    listRepository
	watches watchLookup
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "watch list repo is required")
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

func (s *service) Lists(ctx context.Context, userID uuid.UUID) ([]ListDTO, error) {
	lists, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list watch lists")
	}
	return lists, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateListInput) (ListDTO, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return ListDTO{}, err
	}
	if input.WatchID != nil {
		if err := s.ensureWatch(ctx, *input.WatchID); err != nil {
			return ListDTO{}, err
		}
	}

	// the list and its first item land together or not at all
	list := &models.WatchList{UserID: userID, Name: name, CreatedAt: s.now().UTC()}
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, list); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create watch list")
		}
		if input.WatchID == nil {
			return nil
		}
		if err := s.repo.AddItem(ctx, list.ID, *input.WatchID, s.now()); err != nil {
			return addItemError(err)
		}
		return nil
	})
	if err != nil {
		return ListDTO{}, err
	}

	dto := ListDTO{ID: list.ID, Name: list.Name, CreatedAt: list.CreatedAt}
	if input.WatchID != nil {
		dto.ItemCount = 1
	}
	return dto, nil
}

func (s *service) Rename(ctx context.Context, userID, listID uuid.UUID, name string) (ListDTO, error) {
	name, err := normalizeName(name)
	if err != nil {
		return ListDTO{}, err
	}
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return ListDTO{}, err
	}
	if err := s.repo.Rename(ctx, list.ID, name); err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename watch list")
	}
	count, err := s.repo.CountItems(ctx, list.ID)
	if err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count watch list items")
	}
	return ListDTO{ID: list.ID, Name: name, ItemCount: count, CreatedAt: list.CreatedAt}, nil
}

func (s *service) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, list.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete watch list")
	}
	return nil
}

func (s *service) Items(ctx context.Context, userID, listID uuid.UUID) ([]ItemDTO, error) {
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, list.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list watch list items")
	}
	return items, nil
}

func (s *service) AddItem(ctx context.Context, userID, listID, watchID uuid.UUID) error {
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return err
	}
	if err := s.ensureWatch(ctx, watchID); err != nil {
		return err
	}
	if err := s.repo.AddItem(ctx, list.ID, watchID, s.now()); err != nil {
		return addItemError(err)
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, listID, watchID uuid.UUID) error {
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, list.ID, watchID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove watch from list")
	}
	return nil
}

// addItemError maps a watch deleted between the existence check and the
// insert to not found.
func addItemError(err error) error {
	if db.IsForeignKeyViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "watch not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add watch to list")
}

func (s *service) owned(ctx context.Context, userID, listID uuid.UUID) (*models.WatchList, error) {
	list, err := s.repo.FindOwned(ctx, userID, listID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "watch list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load watch list")
	}
	return list, nil
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

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "list name must be at most 100 characters")
	}
	return name, nil
}
