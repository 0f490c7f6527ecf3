package client

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"hoarding-server/geo"
	"hoarding-server/models"
	apperrors "hoarding-server/utils/errors"
)

// DefaultRadius is the nearby radius used when none is given, in meters.
const DefaultRadius = 5000

// Source says where a nearby result came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceStale   Source = "stale"
)

// Result is a nearby result and its provenance.
type Result struct {
	Listings  []models.Hoarding
	Source    Source
	FetchedAt time.Time
}

// Client drives the listings API on behalf of a user: cached nearby reads,
// session-gated writes and cache invalidation after them.
type Client struct {
	api   *API
	cache Cache
	ttl   time.Duration
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(api *API, cache Cache, log *zap.SugaredLogger) *Client {
	return &Client{
		api:   api,
		cache: cache,
		ttl:   DefaultCacheTTL,
		log:   log,
		now:   time.Now,
	}
}

// Login authenticates and starts session on success. A failed login leaves
// session untouched.
func (c *Client) Login(ctx context.Context, session *Session, email, password string) (models.User, error) {
	res, err := c.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return models.User{}, err
	}
	session.Begin(res.Token, res.User)
	c.log.Infow("logged in", "user_id", res.User.ID, "role", res.User.Role)
	return res.User, nil
}

func (c *Client) Register(ctx context.Context, session *Session, email, password string, role models.Role) (models.User, error) {
	res, err := c.api.Register(ctx, strings.TrimSpace(email), password, role)
	if err != nil {
		return models.User{}, err
	}
	session.Begin(res.Token, res.User)
	c.log.Infow("registered", "user_id", res.User.ID, "role", res.User.Role)
	return res.User, nil
}

func (c *Client) Logout(session *Session) {
	session.End()
}

// Nearby returns listings around (lat, lng). A fresh cache entry is returned
// without touching the network. Otherwise the API is asked; on success the
// entry is rewritten, and on a network or server failure a stale entry, if
// any, is returned instead of the error.
func (c *Client) Nearby(ctx context.Context, lat, lng, radius float64) (Result, error) {
	if _, err := geo.ValidateCoordinate(lng, lat); err != nil {
		return Result{}, err
	}
	if radius == 0 {
		radius = DefaultRadius
	}
	if err := geo.ValidateRadius(radius); err != nil {
		return Result{}, err
	}

	key := NearbyKey(lat, lng, radius)
	cached, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warnw("cache read failed", "key", key, "error", err)
		found = false
	}
	if found && cached.Fresh(c.now(), c.ttl) {
		nearbyReads.WithLabelValues(string(SourceCache)).Inc()
		return Result{Listings: cached.Data, Source: SourceCache, FetchedAt: time.UnixMilli(cached.Timestamp)}, nil
	}

	listings, err := c.api.Nearby(ctx, lat, lng, radius)
	if err != nil {
		if found && fallsBackToCache(err) {
			c.log.Warnw("nearby fetch failed, serving stale cache", "key", key, "error", err)
			nearbyReads.WithLabelValues(string(SourceStale)).Inc()
			return Result{Listings: cached.Data, Source: SourceStale, FetchedAt: time.UnixMilli(cached.Timestamp)}, nil
		}
		return Result{}, err
	}

	// Stamped on completion, so the last response to land wins.
	fetchedAt := c.now()
	if err := c.cache.Set(ctx, key, Entry{Data: listings, Timestamp: fetchedAt.UnixMilli()}); err != nil {
		c.log.Warnw("cache write failed", "key", key, "error", err)
	}
	nearbyReads.WithLabelValues(string(SourceNetwork)).Inc()
	return Result{Listings: listings, Source: SourceNetwork, FetchedAt: fetchedAt}, nil
}

// All lists every listing. It is not cached.
func (c *Client) All(ctx context.Context) ([]models.Hoarding, error) {
	return c.api.All(ctx)
}

// AddListing submits draft once. The session must hold the authorized role
// and the draft must pass the same checks the server applies. On success all
// cached nearby results are dropped.
func (c *Client) AddListing(ctx context.Context, session *Session, draft models.HoardingDraft) (models.Hoarding, error) {
	if !session.LoggedIn() {
		return models.Hoarding{}, apperrors.ErrUnauthorized
	}
	if !session.CanAddListings() {
		return models.Hoarding{}, apperrors.ErrAuthorization
	}
	if err := ValidateDraft(draft); err != nil {
		return models.Hoarding{}, err
	}

	h, err := c.api.Add(ctx, session.Token(), draft)
	if err != nil {
		return models.Hoarding{}, err
	}
	c.invalidateNearby(ctx)
	return h, nil
}

func (c *Client) UpdateListing(ctx context.Context, session *Session, id string, patch models.HoardingPatch) (models.Hoarding, error) {
	if !session.LoggedIn() {
		return models.Hoarding{}, apperrors.ErrUnauthorized
	}
	if _, err := patch.Validate(); err != nil {
		return models.Hoarding{}, err
	}
	h, err := c.api.Update(ctx, session.Token(), id, patch)
	if err != nil {
		return models.Hoarding{}, err
	}
	c.invalidateNearby(ctx)
	return h, nil
}

func (c *Client) DeleteListing(ctx context.Context, session *Session, id string) error {
	if !session.LoggedIn() {
		return apperrors.ErrUnauthorized
	}
	if err := c.api.Delete(ctx, session.Token(), id); err != nil {
		return err
	}
	c.invalidateNearby(ctx)
	return nil
}

func (c *Client) invalidateNearby(ctx context.Context) {
	n, err := c.cache.DeleteByPrefix(ctx, NearbyKeyPrefix)
	if err != nil {
		c.log.Warnw("cache invalidation failed", "prefix", NearbyKeyPrefix, "error", err)
		return
	}
	c.log.Debugw("nearby cache invalidated", "entries", n)
}

// fallsBackToCache is true for failures a retry later might not hit:
// transport errors and 5xx responses.
func fallsBackToCache(err error) bool {
	apiErr, ok := apperrors.As(err)
	if !ok {
		return true
	}
	return apiErr.Code == apperrors.ErrNetwork.Code || apiErr.Status >= 500
}

// ValidateDraft applies the server's add-listing checks before submitting.
func ValidateDraft(d models.HoardingDraft) error {
	_, err := d.Validate()
	return err
}
