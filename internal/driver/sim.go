package driver

import (
	"fmt"
	"sync"
	"time"

	"github.com/calegray/powercore/internal/pm"
)

// Logger is the logging interface used by drivers.
type Logger interface {
	Debug(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// SimConfig configures a simulated device driver.
type SimConfig struct {
	// Latency is how long each transition takes.
	Latency time.Duration
}

// Sim is a simulated device driver. Each transition sleeps for the
// configured latency, so tests and demo configurations exercise the
// engine's in-flight transition handling with realistic timing.
//
// Fault injection via FailOn lets operators rehearse error paths:
// an injected action fails until cleared.
type Sim struct {
	latency time.Duration
	logger  Logger

	mu     sync.Mutex
	failOn map[pm.Action]struct{}
	counts map[pm.Action]int
}

// NewSim creates a simulated device driver.
func NewSim(cfg SimConfig, logger Logger) *Sim {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Sim{
		latency: cfg.Latency,
		logger:  logger,
		failOn:  make(map[pm.Action]struct{}),
		counts:  make(map[pm.Action]int),
	}
}

// Action is the pm.ActionFunc to register the device with.
func (s *Sim) Action(dev *pm.Device, action pm.Action) error {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	s.mu.Lock()
	s.counts[action]++
	_, fail := s.failOn[action]
	s.mu.Unlock()

	if fail {
		s.logger.Debug("sim driver injected failure",
			"device", dev.Name(),
			"action", action.String(),
		)
		return fmt.Errorf("sim: injected %s failure", action)
	}

	s.logger.Debug("sim driver transition",
		"device", dev.Name(),
		"action", action.String(),
	)
	return nil
}

// FailOn makes the given action fail until ClearFailure is called.
func (s *Sim) FailOn(action pm.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[action] = struct{}{}
}

// ClearFailure removes an injected failure.
func (s *Sim) ClearFailure(action pm.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failOn, action)
}

// Count returns how many times the driver has run the given action,
// including failed runs.
func (s *Sim) Count(action pm.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[action]
}
