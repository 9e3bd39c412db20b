package pm

import (
	"sync"
	"time"
)

// Logger defines the logging interface used by the Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Engine is the device power-state engine.
//
// It validates and executes single-device transitions, arbitrates
// concurrent runtime get/put users, orders devices by their dependency
// relation, and drives bulk suspend/resume walks over that order.
//
// All public methods are thread-safe. The engine never retries a failed
// transition on its own; retry policy belongs to the caller.
type Engine struct {
	reg    *Registry
	logger Logger

	// syncTimeout bounds synchronous waits. Zero means unbounded.
	syncTimeout time.Duration

	// domMu guards domain membership (Device.domain, Device.children)
	// across all devices, avoiding per-device lock ordering issues.
	domMu sync.Mutex

	// orderMu guards the dependency order and the saved-suspend set,
	// serialising bulk suspend/resume cycles.
	orderMu sync.Mutex
	order   []*Device
	saved   []*Device

	sinkMu sync.RWMutex
	sinks  []Sink
}

// NewEngine creates a power-state engine over the given registry.
func NewEngine(reg *Registry) *Engine {
	return &Engine{
		reg:    reg,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// SetSyncTimeout bounds how long GetSync and PutSync wait for an
// in-flight transition to settle. Zero (the default) waits forever.
func (e *Engine) SetSyncTimeout(d time.Duration) {
	e.syncTimeout = d
}

// Registry returns the device registry the engine operates on.
func (e *Engine) Registry() *Registry {
	return e.reg
}
