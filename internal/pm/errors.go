package pm

import "errors"

// Domain errors for the pm package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, pm.ErrBusy) {
//	    // a transition is already running on this device
//	}
var (
	// ErrNotSupported is returned when a device has no action callback
	// or the requested transition is structurally invalid.
	ErrNotSupported = errors.New("pm: not supported")

	// ErrBusy is returned when a transition is already in progress on
	// the device. Concurrent requests fail rather than queue silently.
	ErrBusy = errors.New("pm: transition in progress")

	// ErrAlreadyInState is returned when the requested state equals the
	// current committed state. Callers treat it as a no-op success.
	ErrAlreadyInState = errors.New("pm: already in state")

	// ErrDependencyCycle is returned when the requires relation between
	// devices contains a cycle.
	ErrDependencyCycle = errors.New("pm: dependency cycle")

	// ErrIOFailure is returned when a device action callback reports a
	// failure. The device state is left unchanged.
	ErrIOFailure = errors.New("pm: device action failed")

	// ErrTimeout is returned when a synchronous wait exceeded the
	// configured bound.
	ErrTimeout = errors.New("pm: wait timed out")

	// ErrDeviceNotFound is returned when a device name does not exist
	// in the registry.
	ErrDeviceNotFound = errors.New("pm: device not found")

	// ErrDeviceExists is returned when registering a device whose name
	// is already taken.
	ErrDeviceExists = errors.New("pm: device already exists")

	// ErrInvalidName is returned when a device name is empty.
	ErrInvalidName = errors.New("pm: invalid device name")

	// ErrDomainAssigned is returned when adding a device to a power
	// domain while it is still a member of another domain.
	ErrDomainAssigned = errors.New("pm: device already assigned to a domain")
)
