// Package session tracks which username is current on this device.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resume-roaster/internal/shared/storage/kv"
)

// Key is the kv key holding the current username.
const Key = "resume_roaster_user"

var ErrInvalidInput = errors.New("username is required")

// Session is the explicit current-user holder. Login overwrites, Logout clears.
type Session struct {
	store kv.Store

	mu   sync.RWMutex
	user string
}

// Load restores the persisted identity, if any.
func Load(ctx context.Context, store kv.Store) (*Session, error) {
	user, ok, err := store.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := &Session{store: store}
	if ok {
		s.user = strings.TrimSpace(user)
	}
	return s, nil
}

// Login sets and persists the current user. The name is a local label, not a credential.
func (s *Session) Login(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, Key, username); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	s.user = username
	return username, nil
}

// Logout clears the current user.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.user = ""
	return nil
}

// Current returns the logged-in username.
func (s *Session) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != ""
}
