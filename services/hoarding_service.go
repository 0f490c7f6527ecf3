package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hoarding-server/geo"
	"hoarding-server/models"
	"hoarding-server/store"
	"hoarding-server/telemetry"
	apperrors "hoarding-server/utils/errors"
)

// DefaultNearbyRadius is used when a nearby query names no radius, in meters.
const DefaultNearbyRadius = 5000

// CreatorResolver looks up the public identity of listing creators.
type CreatorResolver interface {
	Creators(ctx context.Context, ids []string) (map[string]models.Creator, error)
}

type HoardingService struct {
	hoardings store.HoardingStore
	creators  CreatorResolver
	log       *zap.SugaredLogger
	now       func() time.Time
}

func NewHoardingService(hoardings store.HoardingStore, creators CreatorResolver, log *zap.SugaredLogger) *HoardingService {
	return &HoardingService{
		hoardings: hoardings,
		creators:  creators,
		log:       log,
		now:       time.Now,
	}
}

// AddHoarding validates and stores a new listing on behalf of actor.
func (s *HoardingService) AddHoarding(ctx context.Context, draft models.HoardingDraft, actor Actor) (_ models.Hoarding, err error) {
	ctx, span := telemetry.StartSpan(ctx, "HoardingService.AddHoarding")
	defer func() { telemetry.EndSpan(span, err) }()

	if !actor.CanAddHoardings() {
		return models.Hoarding{}, apperrors.ErrAuthorization
	}

	h, err := draft.Validate()
	if err != nil {
		return models.Hoarding{}, err
	}
	now := s.now().UTC()
	h.CreatedBy = actor.UserID
	h.CreatedAt = now
	h.UpdatedAt = now

	if err := s.hoardings.Insert(ctx, &h); err != nil {
		s.log.Errorw("failed to save hoarding", "user_id", actor.UserID, "error", err)
		return models.Hoarding{}, apperrors.Store(err, "failed to save hoarding")
	}
	hoardingsCreated.Inc()
	s.log.Infow("hoarding added", "id", h.ID, "user_id", actor.UserID,
		"lon", h.Location.Lon(), "lat", h.Location.Lat())
	return h, nil
}

// ListNearby returns listings within radius meters of (lat, lng), nearest
// first. limit <= 0 returns every match.
func (s *HoardingService) ListNearby(ctx context.Context, lat, lng, radius float64, limit int) (_ []models.Hoarding, err error) {
	ctx, span := telemetry.StartSpan(ctx, "HoardingService.ListNearby")
	defer func() { telemetry.EndSpan(span, err) }()

	center, err := geo.ValidateCoordinate(lng, lat)
	if err != nil {
		return nil, err
	}
	if err := geo.ValidateRadius(radius); err != nil {
		return nil, err
	}

	hoardings, err := s.hoardings.FindNear(ctx, center, radius, limit)
	if err != nil {
		return nil, err
	}
	nearbyResults.Observe(float64(len(hoardings)))
	s.log.Debugw("nearby query", "lat", lat, "lng", lng, "radius", radius, "limit", limit, "count", len(hoardings))
	return s.attachCreators(ctx, hoardings)
}

// ListAll returns every listing with its creator joined.
func (s *HoardingService) ListAll(ctx context.Context) (_ []models.Hoarding, err error) {
	ctx, span := telemetry.StartSpan(ctx, "HoardingService.ListAll")
	defer func() { telemetry.EndSpan(span, err) }()

	hoardings, err := s.hoardings.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachCreators(ctx, hoardings)
}

func (s *HoardingService) GetHoarding(ctx context.Context, id string) (models.Hoarding, error) {
	h, err := s.find(ctx, id)
	if err != nil {
		return models.Hoarding{}, err
	}
	out, err := s.attachCreators(ctx, []models.Hoarding{h})
	if err != nil {
		return models.Hoarding{}, err
	}
	return out[0], nil
}

// UpdateHoarding merges patch into the listing. Only the creator may update.
// The ownership check and the write are separate store calls.
func (s *HoardingService) UpdateHoarding(ctx context.Context, id string, patch models.HoardingPatch, actor Actor) (_ models.Hoarding, err error) {
	ctx, span := telemetry.StartSpan(ctx, "HoardingService.UpdateHoarding")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.CheckOwner(ctx, id, actor); err != nil {
		return models.Hoarding{}, err
	}
	update, err := patch.Validate()
	if err != nil {
		return models.Hoarding{}, err
	}
	update.UpdatedAt = s.now().UTC()

	h, err := s.hoardings.UpdateByID(ctx, id, update)
	if errors.Is(err, store.ErrNotFound) {
		return models.Hoarding{}, apperrors.NotFound("Hoarding")
	}
	if err != nil {
		return models.Hoarding{}, apperrors.Store(err, "failed to update hoarding")
	}
	s.log.Infow("hoarding updated", "id", id, "user_id", actor.UserID)
	return h, nil
}

// DeleteHoarding removes the listing. Only the creator may delete.
func (s *HoardingService) DeleteHoarding(ctx context.Context, id string, actor Actor) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "HoardingService.DeleteHoarding")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.CheckOwner(ctx, id, actor); err != nil {
		return err
	}
	err = s.hoardings.DeleteByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Hoarding")
	}
	if err != nil {
		return apperrors.Store(err, "failed to delete hoarding")
	}
	s.log.Infow("hoarding removed", "id", id, "user_id", actor.UserID)
	return nil
}

func (s *HoardingService) find(ctx context.Context, id string) (models.Hoarding, error) {
	h, err := s.hoardings.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Hoarding{}, apperrors.NotFound("Hoarding")
	}
	if err != nil {
		return models.Hoarding{}, apperrors.Store(err, "failed to load hoarding")
	}
	return h, nil
}

// CheckOwner fails with NOT_FOUND or OWNERSHIP_ERROR unless actor created the listing.
func (s *HoardingService) CheckOwner(ctx context.Context, id string, actor Actor) error {
	h, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if actor.UserID == "" || h.CreatedBy != actor.UserID {
		return apperrors.ErrOwnership
	}
	return nil
}

func (s *HoardingService) attachCreators(ctx context.Context, hoardings []models.Hoarding) ([]models.Hoarding, error) {
	if len(hoardings) == 0 || s.creators == nil {
		return hoardings, nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, h := range hoardings {
		if _, ok := seen[h.CreatedBy]; !ok && h.CreatedBy != "" {
			seen[h.CreatedBy] = struct{}{}
			ids = append(ids, h.CreatedBy)
		}
	}
	creators, err := s.creators.Creators(ctx, ids)
	if err != nil {
		return nil, apperrors.Store(err, "failed to load hoarding creators")
	}
	for i := range hoardings {
		if c, ok := creators[hoardings[i].CreatedBy]; ok {
			creator := c
			hoardings[i].Creator = &creator
		}
	}
	return hoardings, nil
}
