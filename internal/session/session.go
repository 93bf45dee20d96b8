// Package session persists conversation history between turns, keyed by
// session id.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

// ErrEmptyID is returned for blank session ids.
var ErrEmptyID = errors.New("session id cannot be empty")

// Store loads and extends the history of a session. Histories are
// append-only; Reset drops a session entirely.
type Store interface {
	Load(ctx context.Context, id string) ([]provider.Message, error)
	Append(ctx context.Context, id string, msgs ...provider.Message) error
	Reset(ctx context.Context, id string) error
}

// CheckID normalizes id and rejects blank ids.
func CheckID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyID
	}
	return id, nil
}

// Memory is an in-process Store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]provider.Message
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string][]provider.Message)}
}

// Load returns a copy of the session history. Unknown sessions are empty.
func (m *Memory) Load(ctx context.Context, id string) ([]provider.Message, error) {
	id, err := CheckID(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Clone(m.sessions[id]), nil
}

func (m *Memory) Append(ctx context.Context, id string, msgs ...provider.Message) error {
	id, err := CheckID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = append(m.sessions[id], Clone(msgs)...)
	return nil
}

func (m *Memory) Reset(ctx context.Context, id string) error {
	id, err := CheckID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Clone deep-copies messages so neither side can mutate the other's tool calls.
func Clone(msgs []provider.Message) []provider.Message {
	out := make([]provider.Message, len(msgs))
	for i, m := range msgs {
		if m.ToolCalls != nil {
			calls := make([]provider.ToolCall, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				tc.Function.Arguments = append([]byte(nil), tc.Function.Arguments...)
				tc.Signature = append([]byte(nil), tc.Signature...)
				calls[j] = tc
			}
			m.ToolCalls = calls
		}
		out[i] = m
	}
	return out
}
