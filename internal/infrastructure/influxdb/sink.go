package influxdb

import (
	"github.com/calegray/powercore/internal/pm"
)

// Logger is the logging interface used by the transition sink.
type Logger interface {
	Warn(msg string, args ...any)
}

// NewTransitionSink returns an event sink that records every power
// transition as time-series points. Each event produces a
// power_transition point and, for successful transitions, a
// power_state gauge update.
//
// Writes go through the client's non-blocking batched write API, but
// the sink still hands events off through a buffered channel so the
// engine's emit path never waits on point construction; if the buffer
// fills, events are dropped with a warning.
func NewTransitionSink(c *Client, logger Logger) pm.Sink {
	events := make(chan pm.Event, 256)

	go func() {
		for ev := range events {
			c.WriteTransition(
				ev.Device,
				ev.Action.String(),
				ev.From.String(),
				ev.To.String(),
				ev.Duration,
				ev.Err != nil,
			)
			if ev.Err == nil {
				c.WriteStateGauge(ev.Device, ev.To.String())
			}
		}
	}()

	return func(ev pm.Event) {
		select {
		case events <- ev:
		default:
			logger.Warn("influxdb transition buffer full, dropping event",
				"device", ev.Device,
			)
		}
	}
}
