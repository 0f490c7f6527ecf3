package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"hoarding-server/geo"
	"hoarding-server/models"
)

// MemoryHoardingStore is an in-process HoardingStore. Distances use the
// same sphere as MongoDB's 2dsphere index.
type MemoryHoardingStore struct {
	mu     sync.RWMutex
	seq    int
	order  []string
	byID   map[string]models.Hoarding
	failOn error
}

func NewMemoryHoardingStore() *MemoryHoardingStore {
	return &MemoryHoardingStore{byID: make(map[string]models.Hoarding)}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *MemoryHoardingStore) FailWith(err error) {
	s.mu.Lock()
	s.failOn = err
	s.mu.Unlock()
}

// Len reports the number of stored listings.
func (s *MemoryHoardingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryHoardingStore) EnsureIndexes(ctx context.Context) error { return nil }

func (s *MemoryHoardingStore) Insert(ctx context.Context, h *models.Hoarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	if h.ID == "" {
		s.seq++
		h.ID = "h" + strconv.Itoa(s.seq)
	}
	s.byID[h.ID] = clone(*h)
	s.order = append(s.order, h.ID)
	return nil
}

func (s *MemoryHoardingStore) FindByID(ctx context.Context, id string) (models.Hoarding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failOn != nil {
		return models.Hoarding{}, s.failOn
	}
	h, ok := s.byID[id]
	if !ok {
		return models.Hoarding{}, ErrNotFound
	}
	return clone(h), nil
}

func (s *MemoryHoardingStore) FindNear(ctx context.Context, center geo.Coordinate, maxDistance float64, limit int) ([]models.Hoarding, error) {
	if err := checkQuery(center, maxDistance); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failOn != nil {
		return nil, s.failOn
	}

	type hit struct {
		h    models.Hoarding
		dist float64
	}
	var hits []hit
	for _, id := range s.order {
		h := s.byID[id]
		c := geo.Coordinate{Lon: h.Location.Lon(), Lat: h.Location.Lat()}
		if d := geo.Distance(center, c); d <= maxDistance {
			hits = append(hits, hit{h: h, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]models.Hoarding, 0, len(hits))
	for _, x := range hits {
		out = append(out, clone(x.h))
	}
	return out, nil
}

func (s *MemoryHoardingStore) FindAll(ctx context.Context) ([]models.Hoarding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failOn != nil {
		return nil, s.failOn
	}
	out := make([]models.Hoarding, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.byID[id]))
	}
	return out, nil
}

func (s *MemoryHoardingStore) UpdateByID(ctx context.Context, id string, u models.HoardingUpdate) (models.Hoarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return models.Hoarding{}, s.failOn
	}
	h, ok := s.byID[id]
	if !ok {
		return models.Hoarding{}, ErrNotFound
	}
	u.Apply(&h)
	h = clone(h)
	s.byID[id] = h
	return clone(h), nil
}

func (s *MemoryHoardingStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(h models.Hoarding) models.Hoarding {
	h.Location.Coordinates = append([]float64(nil), h.Location.Coordinates...)
	h.Creator = nil
	return h
}

// MemoryUserStore is an in-process UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	seq   int
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) EnsureIndexes(ctx context.Context) error { return nil }

func (s *MemoryUserStore) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		s.seq++
		u.ID = "u" + strconv.Itoa(s.seq)
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.match(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	return s.match(func(u models.User) bool { return u.ID == id })
}

func (s *MemoryUserStore) match(pred func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if pred(u) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
