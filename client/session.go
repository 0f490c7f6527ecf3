package client

import (
	"sync"

	"hoarding-server/models"
)

// Session is the signed-in state of one client. It starts signed out;
// Begin and End are its only transitions.
type Session struct {
	mu    sync.RWMutex
	token string
	user  models.User
}

func NewSession() *Session {
	return &Session{}
}

// Begin records a successful login or registration.
func (s *Session) Begin(token string, user models.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// End signs out.
func (s *Session) End() {
	s.mu.Lock()
	s.token = ""
	s.user = models.User{}
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// CanAddListings gates the add-listing flow.
func (s *Session) CanAddListings() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.CanAddHoardings()
}
