package brands

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

const (
	cacheScope = "brands"
	cacheTTL   = 10 * time.Minute
)

type brandRepository interface {
	List(ctx context.Context) ([]models.Brand, error)
	FindByID(ctx context.Context, id int64) (*models.Brand, error)
}

// Cache is the JSON cache used for the brand list.
type Cache interface {
	CacheKey(scope string, parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type ServiceParams struct {
	Repo   brandRepository
	Cache  Cache
	Logger *logger.Logger
}

type Service interface {
	Directory(ctx context.Context, query string) (DirectoryDTO, error)
	Get(ctx context.Context, id int64) (BrandDTO, error)
	Invalidate(ctx context.Context) error
}

type service struct {
	repo  brandRepository
	cache Cache
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand repo is required")
	}
	return &service{repo: params.Repo, cache: params.Cache, logg: params.Logger}, nil
}

// Directory groups brands by the upper-cased first letter of their name.
// A non-empty query keeps only names containing it, case-insensitively.
func (s *service) Directory(ctx context.Context, query string) (DirectoryDTO, error) {
	all, err := s.all(ctx)
	if err != nil {
		return DirectoryDTO{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	grouped := map[string][]BrandDTO{}
	total := 0
	for _, b := range all {
		if needle != "" && !strings.Contains(strings.ToLower(b.Name), needle) {
			continue
		}
		letter := groupLetter(b.Name)
		grouped[letter] = append(grouped[letter], b)
		total++
	}

	letters := make([]string, 0, len(grouped))
	for letter := range grouped {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	groups := make([]Group, 0, len(letters))
	for _, letter := range letters {
		members := grouped[letter]
		sort.SliceStable(members, func(i, j int) bool {
			return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
		})
		groups = append(groups, Group{Letter: letter, Brands: members})
	}
	return DirectoryDTO{Groups: groups, Total: total}, nil
}

func (s *service) Get(ctx context.Context, id int64) (BrandDTO, error) {
	brand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return BrandDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "brand not found")
		}
		return BrandDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	return FromModel(*brand), nil
}

// Invalidate drops the cached brand list after an import.
func (s *service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, s.cache.CacheKey(cacheScope, "all"))
}

func (s *service) all(ctx context.Context) ([]BrandDTO, error) {
	var key string
	if s.cache != nil {
		key = s.cache.CacheKey(cacheScope, "all")
		var cached []BrandDTO
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.warn(ctx, "brands.cache_read_failed", err)
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	out := make([]BrandDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, cacheTTL); err != nil {
			s.warn(ctx, "brands.cache_write_failed", err)
		}
	}
	return out, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func groupLetter(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "#"
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(r))
}
