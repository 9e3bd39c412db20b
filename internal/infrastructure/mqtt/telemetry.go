package mqtt

import (
	"encoding/json"
	"time"

	"github.com/calegray/powercore/internal/pm"
)

// TransitionPayload is the JSON shape published for each transition.
type TransitionPayload struct {
	ID       string `json:"id"`
	Device   string `json:"device"`
	From     string `json:"from"`
	To       string `json:"to"`
	Action   string `json:"action"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
	At       string `json:"at"`
}

// StatePayload is the JSON shape published retained on the device state
// topic.
type StatePayload struct {
	Device string `json:"device"`
	State  string `json:"state"`
	At     string `json:"at"`
}

// NewTransitionSink returns an event sink that publishes every
// transition to the device's transition topic and, on success, updates
// the retained state topic.
//
// Publishes run on a dedicated goroutine fed by a buffered channel so
// the engine's emit path never blocks on the broker; if the buffer
// fills, events are dropped with a warning.
func NewTransitionSink(c *Client, logger Logger) pm.Sink {
	events := make(chan pm.Event, 256)
	topics := Topics{}

	go func() {
		for ev := range events {
			publishTransition(c, topics, logger, ev)
		}
	}()

	return func(ev pm.Event) {
		select {
		case events <- ev:
		default:
			if logger != nil {
				logger.Warn("mqtt telemetry buffer full, dropping event",
					"device", ev.Device,
				)
			}
		}
	}
}

func publishTransition(c *Client, topics Topics, logger Logger, ev pm.Event) {
	payload := TransitionPayload{
		ID:       ev.ID,
		Device:   ev.Device,
		From:     ev.From.String(),
		To:       ev.To.String(),
		Action:   ev.Action.String(),
		Duration: ev.Duration.String(),
		At:       ev.At.UTC().Format(time.RFC3339Nano),
	}
	if ev.Err != nil {
		payload.Error = ev.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		if logger != nil {
			logger.Error("marshalling transition payload", "error", err)
		}
		return
	}

	if err := c.Publish(topics.DeviceTransition(ev.Device), data, byte(c.cfg.QoS), false); err != nil {
		if logger != nil {
			logger.Warn("publishing transition event",
				"device", ev.Device,
				"error", err,
			)
		}
	}

	// Failed transitions leave the committed state unchanged, so the
	// retained state topic only moves on success.
	if ev.Err != nil {
		return
	}

	state, err := json.Marshal(StatePayload{
		Device: ev.Device,
		State:  ev.To.String(),
		At:     ev.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	if err := c.PublishRetained(topics.DeviceState(ev.Device), state); err != nil {
		if logger != nil {
			logger.Warn("publishing device state",
				"device", ev.Device,
				"error", err,
			)
		}
	}
}
