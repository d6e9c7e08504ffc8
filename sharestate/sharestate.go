// server/sharestate/sharestate.go

// Package sharestate keeps per-note sharing configuration on the client
// side. It is presentation metadata, not access control: the notes API never
// consults it. The whole map is persisted to one JSON file on every
// mutation, mirroring the browser's local-storage entry.
package sharestate

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

type Permission string

const (
	PermissionView    Permission = "view"
	PermissionComment Permission = "comment"
	PermissionEdit    Permission = "edit"
)

type SharedUser struct {
	Email      string     `json:"email"`
	Permission Permission `json:"permission"`
}

type State struct {
	Visibility    Visibility   `json:"visibility"`
	SharedUsers   []SharedUser `json:"sharedUsers"`
	AllowComments bool         `json:"allowComments"`
	ShowAuthor    bool         `json:"showAuthor"`
}

// DefaultState is what every note without a stored record gets.
func DefaultState() State {
	return State{
		Visibility:    VisibilityPrivate,
		SharedUsers:   []SharedUser{},
		AllowComments: false,
		ShowAuthor:    true,
	}
}

// Update is a partial State; nil fields leave the stored value alone.
type Update struct {
	Visibility    *Visibility
	SharedUsers   *[]SharedUser
	AllowComments *bool
	ShowAuthor    *bool
}

// Store holds the note-id → State map. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	states map[string]State
	log    zerolog.Logger
}

// NewStore loads the persisted map from path. Corrupt or unreadable data is
// logged and treated as empty; it never fails initialization.
func NewStore(path string, log zerolog.Logger) *Store {
	s := &Store{
		path:   path,
		states: make(map[string]State),
		log:    log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to load share states")
		}
		return s
	}
	if err := json.Unmarshal(data, &s.states); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("share state file is corrupt, starting empty")
		s.states = make(map[string]State)
	}
	return s
}

// Get returns the stored state for the note, or the default. Never fails.
func (s *Store) Get(noteID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[noteID]; ok {
		return state
	}
	return DefaultState()
}

// Set merges a partial update into the note's state (or the default when
// none exists yet).
func (s *Store) Set(noteID string, update Update) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[noteID]
	if !ok {
		state = DefaultState()
	}
	if update.Visibility != nil {
		state.Visibility = *update.Visibility
	}
	if update.SharedUsers != nil {
		state.SharedUsers = append([]SharedUser{}, (*update.SharedUsers)...)
	}
	if update.AllowComments != nil {
		state.AllowComments = *update.AllowComments
	}
	if update.ShowAuthor != nil {
		state.ShowAuthor = *update.ShowAuthor
	}

	s.states[noteID] = state
	s.save()
	return state
}

// AddSharedUser upserts a collaborator; an existing entry for the same email
// is replaced. Emails are compared as-is, no normalization.
func (s *Store) AddSharedUser(noteID string, user SharedUser) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[noteID]
	if !ok {
		state = DefaultState()
	}

	users := make([]SharedUser, 0, len(state.SharedUsers)+1)
	for _, u := range state.SharedUsers {
		if u.Email != user.Email {
			users = append(users, u)
		}
	}
	state.SharedUsers = append(users, user)

	s.states[noteID] = state
	s.save()
	return state
}

// RemoveSharedUser drops the entry for the email; a miss is a no-op.
func (s *Store) RemoveSharedUser(noteID, email string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[noteID]
	if !ok {
		return DefaultState()
	}

	users := make([]SharedUser, 0, len(state.SharedUsers))
	for _, u := range state.SharedUsers {
		if u.Email != email {
			users = append(users, u)
		}
	}
	state.SharedUsers = users

	s.states[noteID] = state
	s.save()
	return state
}

func (s *Store) save() {
	data, err := json.Marshal(s.states)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode share states")
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to save share states")
	}
}
