package state

import (
	"sync"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager implementation.
// Sessions do not survive a restart; interrupted dialogs simply start over.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// Start begins a new flow for the user, replacing any session in progress.
func (m *memoryManager) Start(userID int64, flow Flow, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session{
		Flow:  flow,
		State: st,
		Data:  make(map[string]interface{}),
	}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetState advances the FSM step for the given user.
// It is a no-op when the user has no active session.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.State = st
	}
}

// State returns the current FSM step of a user, or StateIdle if none exists.
func (m *memoryManager) State(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// Flow returns the active flow of a user, or FlowNone.
func (m *memoryManager) Flow(userID int64) Flow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.Flow
	}
	return FlowNone
}

// InProgress reports whether the user currently has an active session.
func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.State != StateIdle
}

// Put stores a temporary key/value pair in the user's session.
// Values written without an active session are dropped.
func (m *memoryManager) Put(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.Data[key] = value
	}
}

// Get retrieves a temporary value by key from the user's session.
func (m *memoryManager) Get(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := sess.Data[key]
	return val, ok
}

// Int64 retrieves a temporary value by key and asserts it as int64.
func (m *memoryManager) Int64(userID int64, key string) (int64, bool) {
	val, found := m.Get(userID, key)
	if !found {
		return 0, false
	}
	v, ok := val.(int64)
	if !ok {
		return 0, false
	}
	return v, true
}

// String retrieves a temporary value by key and asserts it as string.
func (m *memoryManager) String(userID int64, key string) (string, bool) {
	val, found := m.Get(userID, key)
	if !found {
		return "", false
	}
	v, ok := val.(string)
	if !ok {
		return "", false
	}
	return v, true
}

// Float64 retrieves a temporary value by key and asserts it as float64.
func (m *memoryManager) Float64(userID int64, key string) (float64, bool) {
	val, found := m.Get(userID, key)
	if !found {
		return 0, false
	}
	v, ok := val.(float64)
	if !ok {
		return 0, false
	}
	return v, true
}

// Delete removes a temporary key/value pair from the user's session.
func (m *memoryManager) Delete(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		delete(sess.Data, key)
	}
}

// Handle associates a state with the handler invoked by Dispatch.
func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

// Dispatch executes the handler registered for the user's current state, if any.
func (m *memoryManager) Dispatch(c tele.Context) error {
	userID := c.Sender().ID

	m.mu.RLock()
	current := StateIdle
	flow := FlowNone
	if sess, ok := m.sessions[userID]; ok {
		current = sess.State
		flow = sess.Flow
	}
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	ctx := tghelpers.BuildContext(c)
	ctx = logger.WithFlow(ctx, string(flow), string(current))
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Bool("handled", ok),
	)

	if ok {
		return handler(c)
	}
	return nil
}
