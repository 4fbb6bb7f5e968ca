package search

import (
	"context"
	"strings"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

type catalogSearcher interface {
	Search(ctx context.Context, filter map[string]any) ([]watchdb.Watch, error)
}

// CatalogProvider forwards the criteria to the RapidAPI catalog search.
type CatalogProvider struct {
	client catalogSearcher
}

func NewCatalogProvider(client catalogSearcher) *CatalogProvider {
	return &CatalogProvider{client: client}
}

func (p *CatalogProvider) Search(ctx context.Context, req Request) (Result, error) {
	if p.client == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeDependency, "watch catalog is not configured")
	}
	rows, err := p.client.Search(ctx, CatalogFilter(req.Criteria))
	if err != nil {
		return Result{}, err
	}
	out := make([]watches.WatchDTO, 0, len(rows))
	for _, w := range rows {
		if strings.TrimSpace(w.ModelName) == "" {
			continue
		}
		out = append(out, watches.FromCatalog(w, SourceCatalog))
	}
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return newResult(SourceCatalog, out), nil
}

// CatalogFilter maps criteria onto the catalog's camelCase filter body.
// Wildcards and unset values are left out.
func CatalogFilter(c criteria.Criteria) map[string]any {
	filter := map[string]any{}
	put := func(key string, values ...*string) {
		for _, value := range values {
			if criteria.Meaningful(value) {
				filter[key] = strings.TrimSpace(*value)
				return
			}
		}
	}

	put("modelName", c.ModelName)
	put("familyName", c.FamilyName, c.Type)
	put("movementName", c.MovementName)
	put("functionName", c.FunctionName, c.Features)
	put("yearProducedName", c.YearProduced)
	put("dialColor", c.DialColorName, c.DialColor)
	put("style", c.Style)
	put("use", c.Use)
	if c.BrandID != nil {
		filter["makeId"] = *c.BrandID
	}
	if c.LimitedEdition != nil {
		filter["limitedEdition"] = *c.LimitedEdition
	}
	if c.PriceEURMin != nil {
		filter["priceInEuroMin"] = c.PriceEURMin.InexactFloat64()
	}
	if c.PriceEURMax != nil {
		filter["priceInEuroMax"] = c.PriceEURMax.InexactFloat64()
	}
	return filter
}
