package state

import tele "gopkg.in/telebot.v4"

// Flow identifies a multi-step conversation a user can be engaged in.
type Flow string

// State identifies a finite-state-machine step within a flow.
type State string

const (
	// FlowNone indicates there is no active conversation with the user.
	FlowNone Flow = ""
	// StateIdle indicates there is no pending step for the user.
	StateIdle State = "idle"
)

// Session stores the active flow, current step, and temporary data for a user.
type Session struct {
	Flow  Flow
	State State
	Data  map[string]interface{}
}

// Manager orchestrates user sessions and FSM state transitions.
// Implementations must be safe for concurrent use.
type Manager interface {
	// Start begins a new flow for the user, replacing any session in progress.
	Start(userID int64, flow Flow, st State)
	// Clear removes the entire session for a user.
	Clear(userID int64)

	SetState(userID int64, st State)
	State(userID int64) State
	Flow(userID int64) Flow
	InProgress(userID int64) bool

	Put(userID int64, key string, value interface{})
	Get(userID int64, key string) (interface{}, bool)
	Int64(userID int64, key string) (int64, bool)
	String(userID int64, key string) (string, bool)
	Float64(userID int64, key string) (float64, bool)
	Delete(userID int64, key string)

	// Handle associates a state with the handler invoked by Dispatch.
	Handle(st State, h tele.HandlerFunc)
	// Dispatch routes the update to the handler of the user's current state.
	Dispatch(c tele.Context) error
}
