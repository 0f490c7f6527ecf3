package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hoarding-server/models"
	"hoarding-server/store"
)

const userCachePrefix = "user:"

type UserService struct {
	users       store.UserStore
	redisClient *redis.Client
	jwtSecret   string
	tokenTTL    time.Duration
	cacheTTL    time.Duration
	log         *zap.SugaredLogger
	now         func() time.Time
}

// NewUserService wires account storage and token signing. redisClient may be
// nil, in which case lookups always go to the store.
func NewUserService(users store.UserStore, redisClient *redis.Client, jwtSecret string, tokenTTL, cacheTTL time.Duration, log *zap.SugaredLogger) *UserService {
	return &UserService{
		users:       users,
		redisClient: redisClient,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		cacheTTL:    cacheTTL,
		log:         log,
		now:         time.Now,
	}
}

// GetUser retrieves a user from Redis or the store
func (s *UserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User

	if s.redisClient != nil {
		userJSON, err := s.redisClient.Get(ctx, userCachePrefix+userID).Result()
		if err == nil {
			if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
				s.log.Warnw("failed to unmarshal cached user", "user_id", userID, "error", err)
			} else {
				return user, nil
			}
		} else if err != redis.Nil {
			s.log.Warnw("redis user lookup failed", "user_id", userID, "error", err)
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	s.cacheUser(ctx, user)
	return user, nil
}

// Creators resolves the public identity of each creator id. Unknown ids are
// left out of the result.
func (s *UserService) Creators(ctx context.Context, ids []string) (map[string]models.Creator, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Creator, len(users))
	for id, u := range users {
		out[id] = models.Creator{ID: u.ID, Email: u.Email}
	}
	return out, nil
}

func (s *UserService) cacheUser(ctx context.Context, user models.User) {
	if s.redisClient == nil {
		return
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		s.log.Warnw("failed to marshal user for cache", "user_id", user.ID, "error", err)
		return
	}
	if err := s.redisClient.Set(ctx, userCachePrefix+user.ID, userJSON, s.cacheTTL).Err(); err != nil {
		s.log.Warnw("failed to cache user", "user_id", user.ID, "error", err)
	}
}
