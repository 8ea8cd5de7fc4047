// Package history keeps each user's past analyses, newest first, in the local kv store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/shared/storage/kv"
)

// KeyPrefix namespaces per-user history lists in the kv store.
const KeyPrefix = "resume_roaster_data_"

var (
	ErrNotFound     = errors.New("history item not found")
	ErrInvalidInput = errors.New("username is required")
	ErrCorrupt      = errors.New("stored history is corrupt")
)

// Store maps a username to an ordered list of Items.
type Store struct {
	kv kv.Store

	// mu serializes read-modify-write cycles across users.
	mu    sync.Mutex
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewStore builds a history store on top of kv.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now, newID: uuid.NewV7}
}

// Key returns the kv key holding the list for username.
func Key(username string) string {
	return KeyPrefix + username
}

// Save derives an Item from result, prepends it and persists the whole list.
func (s *Store) Save(ctx context.Context, username, jobDescription string, result analysis.Result) (Item, error) {
	if strings.TrimSpace(username) == "" {
		return Item{}, ErrInvalidInput
	}
	id, err := s.newID()
	if err != nil {
		return Item{}, fmt.Errorf("generate history id: %w", err)
	}
	item := Item{
		ID:         id.String(),
		Timestamp:  s.now().UnixMilli(),
		JobPreview: JobPreview(jobDescription),
		MatchScore: result.MatchScore,
		Result:     result.Clone(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, username)
	if err != nil {
		return Item{}, err
	}
	items = append([]Item{item}, items...)
	if err := s.persist(ctx, username, items); err != nil {
		return Item{}, err
	}
	return item, nil
}

// List returns the user's items newest first. An absent list is empty, never nil.
func (s *Store) List(ctx context.Context, username string) ([]Item, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, username)
}

// Get returns a single item by id.
func (s *Store) Get(ctx context.Context, username, id string) (Item, error) {
	items, err := s.List(ctx, username)
	if err != nil {
		return Item{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, ErrNotFound
}

// Clear removes the user's whole list. Irreversible.
func (s *Store) Clear(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, Key(username)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, username string) ([]Item, error) {
	raw, ok, err := s.kv.Get(ctx, Key(username))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Store) persist(ctx context.Context, username string, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, Key(username), string(payload)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
