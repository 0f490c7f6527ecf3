// Package store persists hoardings and users. Stores assume their inputs were
// validated by the caller, but geospatial queries still refuse an invalid
// center or radius rather than querying with garbage.
package store

import (
	"context"

	"hoarding-server/geo"
	"hoarding-server/models"
	apperrors "hoarding-server/utils/errors"
)

// ErrNotFound is returned when no document matches an id.
var ErrNotFound = apperrors.NotFound("document")

// HoardingStore is the geospatial collection of listings.
type HoardingStore interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, h *models.Hoarding) error
	FindByID(ctx context.Context, id string) (models.Hoarding, error)
	// FindNear returns listings within maxDistance meters of center,
	// nearest first. limit <= 0 means no limit.
	FindNear(ctx context.Context, center geo.Coordinate, maxDistance float64, limit int) ([]models.Hoarding, error)
	FindAll(ctx context.Context) ([]models.Hoarding, error)
	UpdateByID(ctx context.Context, id string, u models.HoardingUpdate) (models.Hoarding, error)
	DeleteByID(ctx context.Context, id string) error
}

// UserStore holds registered accounts.
type UserStore interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = apperrors.NewAPIError(apperrors.ErrConflict.Code, "Email already registered", apperrors.ErrConflict.Status)

func checkQuery(center geo.Coordinate, maxDistance float64) error {
	if _, err := geo.ValidateCoordinate(center.Lon, center.Lat); err != nil {
		return err
	}
	return geo.ValidateRadius(maxDistance)
}
