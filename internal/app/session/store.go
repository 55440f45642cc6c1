// Package session holds the signed-in identity and keeps it in step with
// client-side storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/pkg/apperrors"
)

// Fixed storage keys
const (
	KeyUser = "user"
	KeyRole = "role"
)

// Storage is client-local key/value storage.
// Clear on a missing key is not an error.
type Storage interface {
	Load(key string) (string, bool)
	Save(key, value string) error
	Clear(key string) error
}

// Authenticator checks credentials with the backend
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.Identity, error)
	Register(ctx context.Context, req dto.RegisterRequest) (models.Identity, error)
}

// Store is the single source of the current identity. Every mutation is
// written through to Storage before it becomes visible.
type Store struct {
	mu       sync.RWMutex
	storage  Storage
	auth     Authenticator
	logger   zerolog.Logger
	identity *models.Identity
	err      string
	inflight int
}

// NewStore creates a Store and restores any identity already in storage.
// Restoring never contacts the backend.
func NewStore(storage Storage, auth Authenticator, logger zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		auth:    auth,
		logger:  logger.With().Str("component", "session").Logger(),
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	rawUser, okUser := s.storage.Load(KeyUser)
	rawRole, okRole := s.storage.Load(KeyRole)
	if !okUser || !okRole {
		return
	}

	role, ok := models.ParseRole(rawRole)
	if !ok {
		s.logger.Debug().Str("role", rawRole).Msg("Ignoring stored session with unknown role")
		return
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(rawUser), &id); err != nil {
		s.logger.Debug().Err(err).Msg("Ignoring malformed stored user")
		return
	}
	// The role entry is authoritative
	id.Role = role
	if !id.Valid() {
		s.logger.Debug().Msg("Ignoring incomplete stored user")
		return
	}

	s.identity = &id
}

// Login checks the credentials and, on success, replaces the current identity.
// On failure the previous identity stays and Err holds the message to show.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.begin()
	defer s.end()

	id, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.fail(err, apperrors.MsgLoginFailed)
		return false
	}
	return s.commit(id)
}

// Register creates an account and signs it in. The backend's register
// reply is the identity, so no second login round trip is made.
func (s *Store) Register(ctx context.Context, req dto.RegisterRequest) bool {
	s.begin()
	defer s.end()

	id, err := s.auth.Register(ctx, req)
	if err != nil {
		s.fail(err, apperrors.MsgRegisterFailed)
		return false
	}
	return s.commit(id)
}

// Logout forgets the identity in memory and in storage. Calling it while
// signed out is a no-op. The in-memory identity is dropped even if storage
// reports an error.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.err = ""
	errUser := s.storage.Clear(KeyUser)
	errRole := s.storage.Clear(KeyRole)
	if err := errors.Join(errUser, errRole); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear stored session")
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

// Identity returns the current identity, if any
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Authenticated reports whether an identity is present
func (s *Store) Authenticated() bool {
	_, ok := s.Identity()
	return ok
}

// Role returns the current role, or RoleNone when signed out
func (s *Store) Role() models.Role {
	id, ok := s.Identity()
	if !ok {
		return models.RoleNone
	}
	return id.Role
}

// Err is the message from the last failed Login or Register
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports whether a Login or Register call is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *Store) fail(err error, fallback string) {
	msg := apperrors.UserMessage(err, fallback)
	s.logger.Info().Err(err).Str("message", msg).Msg("Authentication failed")

	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Store) commit(id models.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(id); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session")
		s.err = apperrors.MsgStorage
		return false
	}
	s.identity = &id
	s.logger.Info().Str("email", id.Email).Str("role", string(id.Role)).Msg("Signed in")
	return true
}

// persist writes both entries. If either write fails the entries that were
// there before are put back so storage never holds half a session.
func (s *Store) persist(id models.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	prevUser, hadUser := s.storage.Load(KeyUser)
	prevRole, hadRole := s.storage.Load(KeyRole)

	err = s.storage.Save(KeyUser, string(raw))
	if err == nil {
		err = s.storage.Save(KeyRole, string(id.Role))
	}
	if err == nil {
		return nil
	}

	s.rollback(KeyUser, prevUser, hadUser)
	s.rollback(KeyRole, prevRole, hadRole)
	return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
}

func (s *Store) rollback(key, prev string, had bool) {
	var err error
	if had {
		err = s.storage.Save(key, prev)
	} else {
		err = s.storage.Clear(key)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to roll back stored session")
	}
}
