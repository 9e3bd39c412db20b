package history

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for history operations.
var (
	// ErrInvalidEntry indicates the entry is missing required fields.
	ErrInvalidEntry = errors.New("history: invalid entry")
)

// Entry is one recorded power transition.
//
// Each entry captures the transition endpoints, the action delivered to
// the driver, how long the driver took and whether it failed. Entries
// form a local audit trail even when the time-series database is
// unavailable.
type Entry struct {
	// ID is the transition event identifier.
	ID string `json:"id"`

	// Device is the unique device identifier.
	Device string `json:"device"`

	// FromState is the committed state before the transition.
	FromState string `json:"from_state"`

	// ToState is the requested target state.
	ToState string `json:"to_state"`

	// Action is the driver action that was delivered.
	Action string `json:"action"`

	// Duration is how long the driver callback ran.
	Duration time.Duration `json:"duration_ms"`

	// Error holds the failure message for failed transitions, empty
	// otherwise.
	Error string `json:"error,omitempty"`

	// CreatedAt is the timestamp of the transition (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Succeeded reports whether the transition committed.
func (e Entry) Succeeded() bool {
	return e.Error == ""
}

// Repository stores and retrieves power transition history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// Record persists one transition entry.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - entry: Transition to persist
	//
	// Returns:
	//   - error: ErrInvalidEntry if required fields are missing,
	//     otherwise the underlying persistence error
	Record(ctx context.Context, entry Entry) error

	// List returns recent transitions for one device, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - device: Unique device identifier
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	List(ctx context.Context, device string, limit int) ([]Entry, error)

	// ListAll returns recent transitions across all devices, newest first.
	ListAll(ctx context.Context, limit int) ([]Entry, error)
}
