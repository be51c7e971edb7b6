// Package services implements the behaviour behind MapStack's views:
// session lifecycle, catalog CRUD, and ticket management. Services mutate
// the shared state store, talk to the backend through app/backend, and
// surface every failure as a transient notification.
package services

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/pkg/auth"
	"github.com/shashiranjanraj/mapstack/pkg/crypt"
	"github.com/shashiranjanraj/mapstack/pkg/database"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/logger"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

// ErrNotAuthenticated blocks authenticated operations before any network
// call when no session is present.
var ErrNotAuthenticated = errors.New("services: not logged in")

// SessionService owns the bearer token. The token is held in memory for
// the life of the process and mirrored, encrypted, into the state store so
// the next run can restore the session.
type SessionService struct {
	store *state.Store

	mu    sync.RWMutex
	token string

	// login is injected to break the cycle with backend.Client, which
	// needs a token source from this service.
	login func(email, password string) (string, error)
}

// NewSessionService wires a session service to the store. login performs
// the credential exchange (backend.Client.Login in production).
func NewSessionService(store *state.Store, login func(email, password string) (string, error)) *SessionService {
	s := &SessionService{store: store, login: login}

	// Any component seeing an invalid-token response fires auth.expired;
	// the reaction is always the same forced logout.
	event.Listen(event.AuthExpired, func(payload interface{}) {
		s.forceLogout()
	})

	return s
}

// Token returns the current bearer token, empty when logged out.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a session is active.
func (s *SessionService) Authenticated() bool { return s.Token() != "" }

// Login exchanges credentials for a token and persists it encrypted.
func (s *SessionService) Login(email, password string) error {
	token, err := s.login(email, password)
	if err != nil {
		notify.Showf("Login failed: %s", err)
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.persistToken(token)
	return nil
}

// Logout clears the token, the persisted session row, and all in-memory
// catalog/ticket state.
func (s *SessionService) Logout() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.deleteTokenRecord()
	s.store.Reset()
}

// Restore loads the persisted token on process start. An expired JWT takes
// the same forced-logout path as a backend invalid-token response.
// Returns true when a usable session was restored.
func (s *SessionService) Restore() bool {
	if database.DB == nil {
		return false
	}

	var rec models.SessionRecord
	if err := database.DB.Order("id desc").First(&rec).Error; err != nil {
		return false
	}

	token, err := crypt.Decrypt(rec.EncryptedToken)
	if err != nil {
		logger.Warn("session: stored token unreadable, discarding", "error", err)
		s.deleteTokenRecord()
		return false
	}

	if expired, ok := auth.Expired(token); ok && expired {
		s.deleteTokenRecord()
		notify.Show("Session expired. Please log in again.")
		return false
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return true
}

// forceLogout is the uniform reaction to an invalid-token response.
func (s *SessionService) forceLogout() {
	if !s.Authenticated() {
		return
	}
	s.Logout()
	notify.Show("Session expired. Please log in again.")
}

func (s *SessionService) persistToken(token string) {
	if database.DB == nil {
		return
	}

	encrypted, err := crypt.Encrypt(token)
	if err != nil {
		logger.Error("session: encrypt token", "error", err)
		return
	}

	s.deleteTokenRecord()
	if err := database.DB.Create(&models.SessionRecord{EncryptedToken: encrypted}).Error; err != nil {
		logger.Error("session: persist token", "error", err)
	}
}

func (s *SessionService) deleteTokenRecord() {
	if database.DB == nil {
		return
	}
	if err := database.DB.Where("1 = 1").Delete(&models.SessionRecord{}).Error; err != nil {
		logger.Warn("session: delete token record", "error", err)
	}
}

// requireAuth is shared by the catalog and ticket services.
func requireAuth(sessions *SessionService) error {
	if !sessions.Authenticated() {
		notify.Show("Please log in first.")
		return ErrNotAuthenticated
	}
	return nil
}
