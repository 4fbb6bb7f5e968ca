package search

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/internal/quota"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
)

// Service routes a search request to the selected provider.
type Service interface {
	Search(ctx context.Context, req Request) (Result, error)
}

type quotaConsumer interface {
	Consume(ctx context.Context, userID uuid.UUID) (quota.Status, error)
}

type ServiceParams struct {
	Providers       map[string]Provider
	DefaultProvider string
	Quota           quotaConsumer
	Metrics         *metrics.SearchMetrics
	Logger          *logger.Logger
}

type service struct {
	providers       map[string]Provider
	defaultProvider string
	quota           quotaConsumer
	metrics         *metrics.SearchMetrics
	logg            *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if len(params.Providers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "at least one search provider is required")
	}
	def := normalizeProvider(params.DefaultProvider)
	if def == "" {
		def = config.SearchProviderDatabase
	}
	if _, ok := params.Providers[def]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "default search provider is not registered").
			WithDetails(map[string]any{"provider": def})
	}
	return &service{
		providers:       params.Providers,
		defaultProvider: def,
		quota:           params.Quota,
		metrics:         params.Metrics,
		logg:            params.Logger,
	}, nil
}

func (s *service) Search(ctx context.Context, req Request) (Result, error) {
	name := normalizeProvider(req.Provider)
	if name == "" {
		name = s.defaultProvider
	}
	provider, ok := s.providers[name]
	if !ok {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid provider parameter").
			WithDetails(map[string]any{"provider": req.Provider})
	}

	if req.UserID != nil && s.quota != nil {
		if _, err := s.quota.Consume(ctx, *req.UserID); err != nil {
			return Result{}, err
		}
	}

	result, err := provider.Search(ctx, req)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"provider": name,
				"error":    err.Error(),
			})
			s.logg.Warn(logCtx, "search.failed")
		}
		return Result{}, err
	}
	s.metrics.ObserveSearch(result.Source, result.Count)
	return result, nil
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
