package quota

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
)

const dayLayout = "2006-01-02"

// Status is the caller's usage for the current UTC day.
type Status struct {
	Date      string `json:"date"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// Service enforces the per-user daily search allowance. It is independent
// of the per-IP request limiter.
type Service interface {
	Check(ctx context.Context, userID uuid.UUID) (Status, error)
	Record(ctx context.Context, userID uuid.UUID) (Status, error)
	Consume(ctx context.Context, userID uuid.UUID) (Status, error)
	Status(ctx context.Context, userID uuid.UUID) (Status, error)
}

type counter interface {
	Count(ctx context.Context, userID uuid.UUID, day string) (int, error)
	Increment(ctx context.Context, userID uuid.UUID, day string, at time.Time) (int, error)
	IncrementBelow(ctx context.Context, userID uuid.UUID, day string, limit int, at time.Time) (int, bool, error)
}

type ServiceParams struct {
	Repo       counter
	DailyLimit int
	Metrics    *metrics.SearchMetrics
	Now        func() time.Time
}

type service struct {
	repo    counter
	limit   int
	metrics *metrics.SearchMetrics
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "quota repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		limit:   params.DailyLimit,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Check rejects with RATE_LIMIT_EXCEEDED once the daily limit is used up.
// A limit of zero or less disables the check.
func (s *service) Check(ctx context.Context, userID uuid.UUID) (Status, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if s.limit > 0 && status.Used >= s.limit {
		return status, s.rejected(status)
	}
	return status, nil
}

func (s *service) rejected(status Status) error {
	if s.metrics != nil {
		s.metrics.IncQuotaRejected()
	}
	return pkgerrors.New(pkgerrors.CodeRateLimit, "Daily search limit reached").WithDetails(status)
}

func (s *service) Record(ctx context.Context, userID uuid.UUID) (Status, error) {
	if userID == uuid.Nil {
		return Status{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	now := s.now().UTC()
	used, err := s.repo.Increment(ctx, userID, now.Format(dayLayout), now)
	if err != nil {
		return Status{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record search")
	}
	return s.status(now, used), nil
}

// Consume checks and records one search in a single conditional upsert, so
// concurrent searches cannot overshoot the limit.
func (s *service) Consume(ctx context.Context, userID uuid.UUID) (Status, error) {
	if s.limit <= 0 {
		return s.Record(ctx, userID)
	}
	if userID == uuid.Nil {
		return Status{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	now := s.now().UTC()
	used, ok, err := s.repo.IncrementBelow(ctx, userID, now.Format(dayLayout), s.limit, now)
	if err != nil {
		return Status{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record search")
	}
	if !ok {
		return Status{}, s.rejected(s.status(now, s.limit))
	}
	return s.status(now, used), nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (Status, error) {
	if userID == uuid.Nil {
		return Status{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	now := s.now().UTC()
	used, err := s.repo.Count(ctx, userID, now.Format(dayLayout))
	if err != nil {
		return Status{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load search quota")
	}
	return s.status(now, used), nil
}

func (s *service) status(now time.Time, used int) Status {
	remaining := 0
	if s.limit > 0 && used < s.limit {
		remaining = s.limit - used
	}
	return Status{
		Date:      now.Format(dayLayout),
		Used:      used,
		Limit:     s.limit,
		Remaining: remaining,
	}
}
