package pm

import (
	"fmt"
	"strings"
)

// visit markers for cycle detection.
const (
	unvisited = iota
	onStack
	visited
)

// BuildOrder constructs the dependency order: a linear sequence of all
// power-manageable devices in which every device's dependencies (its
// requires relation plus its power domain, if any) appear before it.
//
// The order is pure data, recomputed deterministically from the same
// inputs, and is cached for the bulk suspend/resume walks. Devices
// without an action callback are excluded.
//
// Returns:
//   - []*Device: The order, dependencies first
//   - error: ErrDependencyCycle (with the offending path) if the
//     requires relation is cyclic; ErrDeviceNotFound if a declared
//     dependency is not registered
func (e *Engine) BuildOrder() ([]*Device, error) {
	e.orderMu.Lock()
	defer e.orderMu.Unlock()
	return e.buildOrderLocked()
}

// buildOrderLocked rebuilds the cached order. Caller holds orderMu.
func (e *Engine) buildOrderLocked() ([]*Device, error) {
	devices := e.reg.Devices()
	marks := make(map[*Device]int, len(devices))
	order := make([]*Device, 0, len(devices))

	var visitDev func(dev *Device, path []string) error
	visitDev = func(dev *Device, path []string) error {
		switch marks[dev] {
		case visited:
			return nil
		case onStack:
			cycle := append(path, dev.name)
			return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(cycle, " -> "))
		}
		marks[dev] = onStack

		deps := dev.requires
		if domain := e.DomainOf(dev); domain != nil {
			deps = append(dev.Requires(), domain.name)
		}
		for _, name := range deps {
			dep, err := e.reg.Get(name)
			if err != nil {
				return fmt.Errorf("device %s requires %s: %w", dev.name, name, err)
			}
			if err := visitDev(dep, append(path, dev.name)); err != nil {
				return err
			}
		}

		marks[dev] = visited
		if dev.action != nil {
			order = append(order, dev)
		}
		return nil
	}

	for _, dev := range devices {
		if dev.action == nil {
			continue
		}
		if err := visitDev(dev, nil); err != nil {
			return nil, err
		}
	}

	e.order = order
	out := make([]*Device, len(order))
	copy(out, order)
	return out, nil
}

// orderLocked returns the cached order, building it on first use.
// Caller holds orderMu.
func (e *Engine) orderLocked() ([]*Device, error) {
	if e.order == nil {
		if _, err := e.buildOrderLocked(); err != nil {
			return nil, err
		}
	}
	return e.order, nil
}

// invalidateOrder drops the cached order so the next bulk walk rebuilds
// it. Called when domain membership changes.
func (e *Engine) invalidateOrder() {
	e.orderMu.Lock()
	e.order = nil
	e.orderMu.Unlock()
}
