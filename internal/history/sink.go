package history

import (
	"context"
	"time"

	"github.com/calegray/powercore/internal/pm"
)

// recordTimeout bounds the database insert for one event.
const recordTimeout = 5 * time.Second

// Logger is the logging interface used by the sink.
type Logger interface {
	Warn(msg string, args ...any)
}

// FromEvent converts a transition event to a history entry.
func FromEvent(ev pm.Event) Entry {
	entry := Entry{
		ID:        ev.ID,
		Device:    ev.Device,
		FromState: ev.From.String(),
		ToState:   ev.To.String(),
		Action:    ev.Action.String(),
		Duration:  ev.Duration,
		CreatedAt: ev.At,
	}
	if ev.Err != nil {
		entry.Error = ev.Err.Error()
	}
	return entry
}

// NewSink returns an event sink that persists every transition to the
// repository. Inserts run on a dedicated goroutine fed by a buffered
// channel so the engine's emit path never blocks on the database; if
// the buffer fills, events are dropped with a warning.
func NewSink(repo Repository, logger Logger) pm.Sink {
	events := make(chan pm.Event, 256)

	go func() {
		for ev := range events {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			if err := repo.Record(ctx, FromEvent(ev)); err != nil {
				logger.Warn("recording power transition failed",
					"device", ev.Device,
					"error", err,
				)
			}
			cancel()
		}
	}()

	return func(ev pm.Event) {
		select {
		case events <- ev:
		default:
			logger.Warn("transition history buffer full, dropping event",
				"device", ev.Device,
			)
		}
	}
}
