// Package memory keeps a bounded per-session message history that gives the
// LLM node short-term context across turns.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	DefaultMaxHistory = 10

	// EmptySummary is returned by Summary for a session with no messages.
	EmptySummary = "No previous conversation context."

	summaryHeader   = "Previous conversation context:"
	summaryMessages = 4
	previewRunes    = 100
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Backend stores session histories. Append must add msg and trim the session
// to the newest maxHistory messages as one atomic step.
type Backend interface {
	Append(ctx context.Context, sessionID string, msg Message, maxHistory int) error
	History(ctx context.Context, sessionID string) ([]Message, error)
}

// Store is the conversation memory handed to the engine.
type Store struct {
	backend    Backend
	maxHistory int
	now        func() time.Time
}

// NewStore wraps backend. A non-positive maxHistory means DefaultMaxHistory.
func NewStore(backend Backend, maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{backend: backend, maxHistory: maxHistory, now: time.Now}
}

func (s *Store) MaxHistory() int { return s.maxHistory }

// AddMessage appends a timestamped message to the session history.
func (s *Store) AddMessage(ctx context.Context, sessionID string, role Role, content string) error {
	msg := Message{Role: role, Content: content, Timestamp: s.now().UTC()}
	if err := s.backend.Append(ctx, sessionID, msg, s.maxHistory); err != nil {
		return fmt.Errorf("appending %s message to session %s: %w", role, sessionID, err)
	}
	return nil
}

// History returns the session messages, oldest first.
func (s *Store) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.backend.History(ctx, sessionID)
}

// Summary renders the last few messages of a session for prompt composition.
// A backend failure is treated as an empty history.
func (s *Store) Summary(ctx context.Context, sessionID string) string {
	history, err := s.backend.History(ctx, sessionID)
	if err != nil || len(history) == 0 {
		return EmptySummary
	}
	if len(history) > summaryMessages {
		history = history[len(history)-summaryMessages:]
	}

	lines := make([]string, 0, len(history)+1)
	lines = append(lines, summaryHeader)
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", speaker(m.Role), preview(m.Content)))
	}
	return strings.Join(lines, "\n")
}

func speaker(r Role) string {
	if r == RoleUser {
		return "User"
	}
	return "Assistant"
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "..."
}
