// Package catalogimport copies the RapidAPI watch catalog into the local
// brands and watches tables.
package catalogimport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

const (
	defaultPageSize  = 20
	defaultPageDelay = 1100 * time.Millisecond

	jobBrands  = "brands"
	jobWatches = "watches"
)

// ErrLocked is returned when another importer holds the lock.
var ErrLocked = errors.New("another catalog import is running")

type catalog interface {
	ListMakes(ctx context.Context) ([]watchdb.Make, error)
	ListWatchesByMake(ctx context.Context, makeID string, page, limit int) (*watchdb.WatchPage, error)
}

type brandStore interface {
	Upsert(ctx context.Context, rows []models.Brand) (int64, error)
	IDs(ctx context.Context) ([]int64, error)
}

type watchStore interface {
	Upsert(ctx context.Context, rows []models.Watch) (int64, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Params struct {
	Catalog   catalog
	Brands    brandStore
	Watches   watchStore
	Embedder  llm.Embedder
	Lock      Lock
	BrandDir  cacheInvalidator
	Metrics   *metrics.ImportMetrics
	Logger    *logger.Logger
	PageSize  int
	PageDelay time.Duration
}

// Importer pages the catalog at a fixed request rate and upserts each page.
type Importer struct {
	catalog  catalog
	brands   brandStore
	watches  watchStore
	embedder llm.Embedder
	lock     Lock
	brandDir cacheInvalidator
	metrics  *metrics.ImportMetrics
	logg     *logger.Logger
	pageSize int
	limiter  *rate.Limiter
}

func New(params Params) (*Importer, error) {
	if params.Catalog == nil {
		return nil, errors.New("catalog client required")
	}
	if params.Brands == nil || params.Watches == nil {
		return nil, errors.New("brand and watch repositories required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	delay := params.PageDelay
	if delay <= 0 {
		delay = defaultPageDelay
	}
	return &Importer{
		catalog:  params.Catalog,
		brands:   params.Brands,
		watches:  params.Watches,
		embedder: params.Embedder,
		lock:     params.Lock,
		brandDir: params.BrandDir,
		metrics:  params.Metrics,
		logg:     params.Logger,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}, nil
}

// Options select what a run imports. An empty MakeIDs list with AllMakes
// imports every brand already stored.
type Options struct {
	Brands   bool
	Watches  bool
	MakeIDs  []string
	AllMakes bool
	MaxPages int
}

// Run executes the selected jobs under the import lock.
func (i *Importer) Run(ctx context.Context, opts Options) (Result, error) {
	if i.lock != nil {
		ok, err := i.lock.Acquire(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("acquire import lock: %w", err)
		}
		if !ok {
			return Result{}, ErrLocked
		}
		defer func() {
			if err := i.lock.Release(context.WithoutCancel(ctx)); err != nil {
				i.logg.Error(ctx, "catalog import lock release failed", err)
			}
		}()
	}

	var total Result
	var errs error
	if opts.Brands {
		res, err := i.ImportBrands(ctx)
		total.add(res)
		errs = multierr.Append(errs, err)
	}
	if opts.Watches {
		makeIDs := opts.MakeIDs
		if opts.AllMakes {
			ids, err := i.brands.IDs(ctx)
			if err != nil {
				return total, multierr.Append(errs, fmt.Errorf("load brand ids: %w", err))
			}
			makeIDs = make([]string, 0, len(ids))
			for _, id := range ids {
				makeIDs = append(makeIDs, strconv.FormatInt(id, 10))
			}
		}
		res, err := i.ImportWatches(ctx, makeIDs, opts.MaxPages)
		total.add(res)
		errs = multierr.Append(errs, err)
	}
	return total, errs
}

// ImportBrands copies the catalog makes into brands.
func (i *Importer) ImportBrands(ctx context.Context) (Result, error) {
	start := time.Now()
	defer func() { i.metrics.ObserveDuration(jobBrands, time.Since(start)) }()

	var res Result
	if err := i.limiter.Wait(ctx); err != nil {
		return res, err
	}
	makes, err := i.catalog.ListMakes(ctx)
	if err != nil {
		i.metrics.IncFailure("all", "fetch")
		res.fail("makes", err)
		return res, fmt.Errorf("fetch makes: %w", err)
	}
	res.Pages = 1
	res.Fetched = len(makes)

	rows := make([]models.Brand, 0, len(makes))
	seen := make(map[int64]struct{}, len(makes))
	for _, m := range makes {
		id, err := strconv.ParseInt(strings.TrimSpace(m.MakeID.String()), 10, 64)
		name := strings.TrimSpace(m.MakeName)
		if err != nil || name == "" {
			res.Skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			res.Skipped++
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, models.Brand{ID: id, Name: name})
	}

	n, err := i.brands.Upsert(ctx, rows)
	if err != nil {
		i.metrics.IncFailure("all", "upsert")
		res.fail("brands", err)
		return res, fmt.Errorf("upsert brands: %w", err)
	}
	res.Upserted = n
	i.metrics.AddRows("all", "upserted", int(n))
	i.metrics.AddRows("all", "skipped", res.Skipped)

	if i.brandDir != nil {
		if err := i.brandDir.Invalidate(ctx); err != nil {
			i.logg.Warn(i.logg.WithField(ctx, "error", err.Error()), "catalog import brand cache invalidation failed")
		}
	}
	i.logg.Info(i.logg.WithField(ctx, "result", res.String()), "catalog brands imported")
	return res, nil
}

// ImportWatches pages each make until an empty page, an error or maxPages.
// A failing make is recorded and the run moves on to the next one.
func (i *Importer) ImportWatches(ctx context.Context, makeIDs []string, maxPages int) (Result, error) {
	start := time.Now()
	defer func() { i.metrics.ObserveDuration(jobWatches, time.Since(start)) }()

	var total Result
	var errs error
	for _, makeID := range normalizeMakeIDs(makeIDs) {
		if ctx.Err() != nil {
			return total, multierr.Append(errs, ctx.Err())
		}
		res, err := i.importMake(ctx, makeID, maxPages)
		res.Makes = 1
		total.add(res)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("make %s: %w", makeID, err))
		}
	}
	i.logg.Info(i.logg.WithField(ctx, "result", total.String()), "catalog watches imported")
	return total, errs
}

func (i *Importer) importMake(ctx context.Context, makeID string, maxPages int) (Result, error) {
	var res Result
	brandID, _ := strconv.ParseInt(makeID, 10, 64)
	logCtx := i.logg.WithField(ctx, "make_id", makeID)

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		if err := i.limiter.Wait(ctx); err != nil {
			return res, err
		}
		resp, err := i.catalog.ListWatchesByMake(ctx, makeID, page, i.pageSize)
		if err != nil {
			i.metrics.IncFailure(makeID, "fetch")
			res.fail(fmt.Sprintf("make %s page %d", makeID, page), err)
			return res, err
		}
		if resp == nil || len(resp.Watches) == 0 {
			return res, nil
		}
		res.Pages++
		res.Fetched += len(resp.Watches)

		rows, skipped, embedFailures := i.mapPage(ctx, resp.Watches, brandID)
		res.Skipped += skipped
		res.EmbeddingFailures += embedFailures
		i.metrics.AddRows(makeID, "skipped", skipped)
		if embedFailures > 0 {
			i.metrics.IncFailure(makeID, "embedding")
		}

		n, err := i.watches.Upsert(ctx, rows)
		if err != nil {
			i.metrics.IncFailure(makeID, "upsert")
			res.fail(fmt.Sprintf("make %s page %d", makeID, page), err)
			return res, err
		}
		res.Upserted += n
		i.metrics.AddRows(makeID, "upserted", int(n))
		i.logg.Debug(i.logg.WithFields(logCtx, map[string]any{
			"page":     page,
			"fetched":  len(resp.Watches),
			"upserted": n,
		}), "catalog page imported")

		if resp.TotalPages > 0 && page >= resp.TotalPages {
			return res, nil
		}
	}
	return res, nil
}

// mapPage converts a catalog page into rows, dropping rows without a model
// name and duplicate external ids within the page.
func (i *Importer) mapPage(ctx context.Context, page []watchdb.Watch, brandID int64) ([]models.Watch, int, int) {
	rows := make([]models.Watch, 0, len(page))
	seen := make(map[string]struct{}, len(page))
	skipped, embedFailures := 0, 0
	for _, w := range page {
		row, ok := watches.ModelFromCatalog(w, brandID)
		if !ok {
			skipped++
			continue
		}
		if row.ExternalID != nil {
			if _, dup := seen[*row.ExternalID]; dup {
				skipped++
				continue
			}
			seen[*row.ExternalID] = struct{}{}
		}
		if i.embedder != nil {
			vector, err := i.embedder.Embed(ctx, watches.EmbeddingText(w))
			if err != nil {
				embedFailures++
				i.logg.Warn(i.logg.WithFields(ctx, map[string]any{
					"external_id": w.WatchID.String(),
					"error":       err.Error(),
				}), "catalog embedding failed")
			} else {
				v := pgvector.NewVector(vector)
				row.Embedding = &v
			}
		}
		rows = append(rows, row)
	}
	return rows, skipped, embedFailures
}

// normalizeMakeIDs splits comma separated values, trims them and drops
// blanks and duplicates.
func normalizeMakeIDs(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
