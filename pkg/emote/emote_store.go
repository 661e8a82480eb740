package emote

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"emotebot/pkg/persist"

	"github.com/samber/lo"
)

// Emote is a named shortcut owned by one user. Code holds the text or URL
// echoed back on invocation and is nil when the user saved a name only.
type Emote struct {
	Name string  `json:"name"`
	Code *string `json:"code"`
}

// Content returns the stored code, or "" when none was saved.
func (e Emote) Content() string {
	return lo.FromPtr(e.Code)
}

func (e Emote) equal(other Emote) bool {
	if e.Name != other.Name {
		return false
	}
	if e.Code == nil || other.Code == nil {
		return e.Code == other.Code
	}
	return *e.Code == *other.Code
}

// FullName joins a prefix and a suffix into the stored emote name.
func FullName(prefix, suffix string) string {
	return prefix + suffix
}

// EmoteStore keeps each user's emotes in insertion order.
type EmoteStore struct {
	backend  persist.Backend
	document string

	mu     sync.Mutex
	emotes map[string][]Emote
}

func NewEmoteStore(ctx context.Context, backend persist.Backend, document string) (*EmoteStore, error) {
	emotes := make(map[string][]Emote)
	if err := backend.Load(ctx, document, &emotes); err != nil {
		return nil, fmt.Errorf("failed to load emotes: %w", err)
	}
	if emotes == nil {
		emotes = make(map[string][]Emote)
	}
	return &EmoteStore{
		backend:  backend,
		document: document,
		emotes:   emotes,
	}, nil
}

// AddEmote appends prefix+name for userID. An identical name/code pair is
// rejected with ErrAlreadyExists. The returned Emote carries the full name.
func (s *EmoteStore) AddEmote(ctx context.Context, userID, prefix, name string, code *string) (Emote, error) {
	e := Emote{Name: FullName(prefix, name), Code: code}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.emotes[userID], e.equal) {
		return e, ErrAlreadyExists
	}
	s.emotes[userID] = append(s.emotes[userID], e)
	return e, s.persist(ctx)
}

// DeleteEmote removes the first emote named prefix+name.
func (s *EmoteStore) DeleteEmote(ctx context.Context, userID, prefix, name string) (Emote, error) {
	fullName := FullName(prefix, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.emotes[userID]
	e, idx, ok := lo.FindIndexOf(list, func(e Emote) bool { return e.Name == fullName })
	if !ok {
		return Emote{Name: fullName}, ErrNotFound
	}
	s.emotes[userID] = append(list[:idx:idx], list[idx+1:]...)
	return e, s.persist(ctx)
}

// Lookup returns the first of userID's emotes named exactly fullName.
func (s *EmoteStore) Lookup(userID, fullName string) (Emote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Find(s.emotes[userID], func(e Emote) bool { return e.Name == fullName })
}

// ListForUser returns userID's emotes whose names start with prefix. Entries
// saved under an older prefix are skipped.
func (s *EmoteStore) ListForUser(userID, prefix string) []Emote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.emotes[userID], func(e Emote, _ int) bool {
		return strings.HasPrefix(e.Name, prefix)
	})
}

// Count returns how many emotes userID has saved under any prefix.
func (s *EmoteStore) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.emotes[userID])
}

func (s *EmoteStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *EmoteStore) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.document, s.emotes); err != nil {
		return fmt.Errorf("failed to save emotes: %w", err)
	}
	return nil
}
