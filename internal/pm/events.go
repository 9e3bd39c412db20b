package pm

import (
	"time"

	"github.com/google/uuid"
)

// Event describes one attempted device transition, successful or not.
//
// When Err is nil the device committed the transition From -> To. When
// Err is non-nil the committed state is still From.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Device is the device name.
	Device string `json:"device"`

	// From is the committed state before the transition.
	From State `json:"-"`

	// To is the requested target state.
	To State `json:"-"`

	// Action is the semantic action delivered to the callback.
	Action Action `json:"-"`

	// Duration is how long the action callback ran.
	Duration time.Duration `json:"duration_ns"`

	// Err is the transition failure, nil on success.
	Err error `json:"-"`

	// At is the event timestamp (UTC).
	At time.Time `json:"at"`
}

// Sink receives transition events.
//
// Sinks are invoked synchronously after the transition settles, outside
// any device lock. They must not block; sinks that do slow work should
// hand the event off to their own goroutine or buffered channel.
type Sink func(Event)

// Notify registers a sink for transition events.
func (e *Engine) Notify(sink Sink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// emit delivers an event to all registered sinks.
func (e *Engine) emit(ev Event) {
	ev.ID = uuid.NewString()

	e.sinkMu.RLock()
	sinks := e.sinks
	e.sinkMu.RUnlock()

	for _, sink := range sinks {
		sink(ev)
	}
}
