package emote

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"emotebot/pkg/persist"
)

// PrefixLength is the number of characters a user prefix must have.
const PrefixLength = 2

// PrefixStore maps user IDs to their personal two-character prefix.
// The whole table is rewritten through the backend after every change.
type PrefixStore struct {
	backend  persist.Backend
	document string

	mu       sync.Mutex
	prefixes map[string]string
}

// NewPrefixStore loads the prefix table from the backend. A missing document
// yields an empty table.
func NewPrefixStore(ctx context.Context, backend persist.Backend, document string) (*PrefixStore, error) {
	prefixes := make(map[string]string)
	if err := backend.Load(ctx, document, &prefixes); err != nil {
		return nil, fmt.Errorf("failed to load prefixes: %w", err)
	}
	if prefixes == nil {
		prefixes = make(map[string]string)
	}
	return &PrefixStore{
		backend:  backend,
		document: document,
		prefixes: prefixes,
	}, nil
}

// SetPrefix assigns prefix to userID, releasing any prefix the user held before.
func (s *PrefixStore) SetPrefix(ctx context.Context, userID, prefix string) error {
	if utf8.RuneCountInString(prefix) != PrefixLength {
		return ErrInvalidLength
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.owner(prefix); ok && owner != userID {
		return ErrPrefixTaken
	}
	s.prefixes[userID] = prefix
	return s.persist(ctx)
}

func (s *PrefixStore) GetPrefix(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix, ok := s.prefixes[userID]
	return prefix, ok
}

// Owner returns the user currently holding prefix.
func (s *PrefixStore) Owner(prefix string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner(prefix)
}

func (s *PrefixStore) owner(prefix string) (string, bool) {
	for userID, p := range s.prefixes {
		if p == prefix {
			return userID, true
		}
	}
	return "", false
}

// Flush writes the current table to the backend.
func (s *PrefixStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *PrefixStore) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.document, s.prefixes); err != nil {
		return fmt.Errorf("failed to save prefixes: %w", err)
	}
	return nil
}
