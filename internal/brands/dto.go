package brands

import "github.com/watchengine/watch-engine-backend/pkg/db/models"

type BrandDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group collects the brands whose names start with Letter.
type Group struct {
	Letter string     `json:"letter"`
	Brands []BrandDTO `json:"brands"`
}

// DirectoryDTO is the grouped A-Z brand listing.
type DirectoryDTO struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

func FromModel(b models.Brand) BrandDTO {
	return BrandDTO{ID: b.ID, Name: b.Name}
}
