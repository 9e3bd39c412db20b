package pm

import "sync"

// ActionFunc is the driver-supplied callback that performs the actual
// hardware power transition. It is the only place hardware is touched.
//
// The callback is invoked without any engine or device lock held. It may
// block. A non-nil error aborts the transition and leaves the device's
// committed state unchanged.
type ActionFunc func(dev *Device, action Action) error

// DeviceConfig describes a device at registration time.
type DeviceConfig struct {
	// Name is the unique device identifier.
	Name string

	// Action performs hardware transitions. A device without an action
	// callback is excluded from power management entirely.
	Action ActionFunc

	// Requires lists the names of devices this device depends on.
	// Dependencies are resumed before, and suspended after, this device.
	Requires []string

	// WakeupCapable marks the device as able to generate wake events.
	WakeupCapable bool

	// IgnoreChildren stops this device's active state from holding its
	// power domain active.
	IgnoreChildren bool
}

// Device is the per-device power management record: the unit of truth
// for one power-manageable hardware device.
//
// Devices are created once at system init and live for the process
// lifetime. All exported methods are safe for concurrent use.
type Device struct {
	name     string
	action   ActionFunc
	requires []string

	flags Flags

	// mu guards state, target, transitioning, settled, usage and
	// enabled. It is a short-critical-section lock: it is never held
	// across the action callback.
	mu            sync.Mutex
	state         State
	target        State // in-flight target, meaningful while transitioning
	transitioning bool
	settled       chan struct{} // closed when the in-flight transition commits
	usage         int
	enabled       bool

	// domain and children are guarded by the engine's domain mutex,
	// not by mu. See Engine.domMu.
	domain   *Device
	children []*Device
}

// NewDevice creates a device record from its configuration.
// The device starts Active with runtime power management disabled.
func NewDevice(cfg DeviceConfig) *Device {
	d := &Device{
		name:     cfg.Name,
		action:   cfg.Action,
		requires: append([]string(nil), cfg.Requires...),
		state:    StateActive,
	}
	if cfg.WakeupCapable {
		d.flags.Set(FlagWakeupCapable)
	}
	if cfg.IgnoreChildren {
		d.flags.Set(FlagIgnoreChildren)
	}
	return d
}

// Name returns the unique device identifier.
func (d *Device) Name() string {
	return d.name
}

// Requires returns a copy of the device's declared dependency names.
func (d *Device) Requires() []string {
	return append([]string(nil), d.requires...)
}

// State returns the committed power state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// TransitionInProgress reports whether an action callback is currently
// executing for this device.
func (d *Device) TransitionInProgress() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transitioning
}

// waitSettled blocks until the in-flight transition, if any, commits.
func (d *Device) waitSettled() {
	d.mu.Lock()
	ch := d.settled
	d.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

// UsageCount returns the current runtime usage count.
func (d *Device) UsageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.usage
}

// RuntimeEnabled reports whether runtime power management is enabled.
func (d *Device) RuntimeEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// InitSuspended marks the device's initial state as Suspended without
// invoking the action callback. It is intended for devices whose
// hardware starts powered down, and must be called before the device is
// handed to the engine.
//
// Returns:
//   - error: ErrBusy if a transition is in flight
func (d *Device) InitSuspended() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transitioning {
		return ErrBusy
	}
	d.state = StateSuspended
	return nil
}

// SetBusy sets the busy flag, vetoing bulk suspend for this device.
func (d *Device) SetBusy() {
	d.flags.Set(FlagBusy)
}

// ClearBusy clears the busy flag.
func (d *Device) ClearBusy() {
	d.flags.Clear(FlagBusy)
}

// IsBusy reports whether the busy flag is set.
func (d *Device) IsBusy() bool {
	return d.flags.Test(FlagBusy)
}

// WakeupCapable reports whether the device can generate wake events.
func (d *Device) WakeupCapable() bool {
	return d.flags.Test(FlagWakeupCapable)
}

// EnableWakeup enables or disables wake events for the device.
//
// Parameters:
//   - enable: true to enable, false to disable
//
// Returns:
//   - bool: true if the request took effect; false if the device is not
//     wakeup capable
func (d *Device) EnableWakeup(enable bool) bool {
	if !d.flags.Test(FlagWakeupCapable) {
		return false
	}
	if enable {
		d.flags.Set(FlagWakeupEnabled)
	} else {
		d.flags.Clear(FlagWakeupEnabled)
	}
	return true
}

// WakeupEnabled reports whether wake events are enabled.
func (d *Device) WakeupEnabled() bool {
	return d.flags.Test(FlagWakeupEnabled)
}
