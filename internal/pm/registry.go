package pm

import "sync"

// Registry is the process-wide table of power-manageable devices.
//
// It is initialised once at startup from the device enumeration
// collaborator and is not expected to shrink afterwards. Tests construct
// isolated registries rather than sharing ambient global state.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	devices []*Device
	byName  map[string]*Device
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Device),
	}
}

// Add registers a device.
//
// Parameters:
//   - dev: Device record to register
//
// Returns:
//   - error: ErrInvalidName for an empty name, ErrDeviceExists if the
//     name is already registered
func (r *Registry) Add(dev *Device) error {
	if dev == nil || dev.name == "" {
		return ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[dev.name]; ok {
		return ErrDeviceExists
	}
	r.byName[dev.name] = dev
	r.devices = append(r.devices, dev)
	return nil
}

// Get retrieves a device by name.
//
// Returns ErrDeviceNotFound if the name is not registered.
func (r *Registry) Get(name string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.byName[name]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return dev, nil
}

// Devices returns all registered devices in registration order.
// The returned slice is a copy; callers may not mutate the records.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// AnyBusy reports whether any registered device has its busy flag set.
func (r *Registry) AnyBusy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dev := range r.devices {
		if dev.flags.Test(FlagBusy) {
			return true
		}
	}
	return false
}
