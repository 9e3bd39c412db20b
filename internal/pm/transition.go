package pm

import (
	"context"
	"fmt"
	"time"
)

// SetState validates and executes a single device state transition.
//
// The action callback runs without the device lock held; a second
// request arriving during the callback fails with ErrBusy rather than
// queueing. On success the new state is committed, waiters blocked in
// GetSync/PutSync are woken, and a transition event is emitted.
//
// Parameters:
//   - dev: Device to transition
//   - target: Requested power state
//
// Returns:
//   - error: nil on success; ErrNotSupported if the device has no action
//     callback or the transition is structurally invalid; ErrBusy if a
//     transition is already in flight; ErrAlreadyInState if target equals
//     the committed state (callers treat this as a no-op success);
//     ErrIOFailure (wrapped) if the callback reported failure
func (e *Engine) SetState(dev *Device, target State) error {
	if dev == nil {
		return ErrDeviceNotFound
	}
	if dev.action == nil {
		return ErrNotSupported
	}

	dev.mu.Lock()
	if dev.transitioning {
		dev.mu.Unlock()
		return ErrBusy
	}
	if dev.state == target {
		dev.mu.Unlock()
		return ErrAlreadyInState
	}
	if !validTransition(dev.state, target) {
		from := dev.state
		dev.mu.Unlock()
		return fmt.Errorf("%w: transition %s -> %s", ErrNotSupported, from, target)
	}
	from := dev.state
	dev.transitioning = true
	dev.target = target
	dev.settled = make(chan struct{})
	dev.mu.Unlock()

	started := time.Now()
	err := e.runAction(dev, from, target)
	elapsed := time.Since(started)

	dev.mu.Lock()
	if err == nil {
		dev.state = target
	}
	dev.transitioning = false
	close(dev.settled)
	dev.settled = nil
	dev.mu.Unlock()

	if err != nil {
		e.logger.Debug("transition failed",
			"device", dev.name,
			"from", from.String(),
			"to", target.String(),
			"error", err,
		)
	}

	e.emit(Event{
		Device:   dev.name,
		From:     from,
		To:       target,
		Action:   actionFor(target),
		Duration: elapsed,
		Err:      err,
		At:       time.Now().UTC(),
	})

	return err
}

// runAction invokes the device action callback, bracketed by power
// domain accounting: a device entering Active takes a reference on its
// domain first, and a device leaving Active releases it afterwards.
// No lock is held on entry.
func (e *Engine) runAction(dev *Device, from, target State) error {
	entersActive := target == StateActive
	leavesActive := from == StateActive

	domain := e.DomainOf(dev)
	if dev.flags.Test(FlagIgnoreChildren) {
		domain = nil
	}

	if domain != nil && entersActive {
		if err := e.GetSync(context.Background(), domain); err != nil {
			return fmt.Errorf("powering domain %s: %w", domain.name, err)
		}
	}

	if err := dev.action(dev, actionFor(target)); err != nil {
		if domain != nil && entersActive {
			// Undo the domain reference taken above.
			if putErr := e.Put(domain); putErr != nil {
				e.logger.Warn("releasing domain after failed resume",
					"device", dev.name,
					"domain", domain.name,
					"error", putErr,
				)
			}
		}
		return fmt.Errorf("%w: %s %s: %w", ErrIOFailure, dev.name, actionFor(target), err)
	}

	if domain != nil && leavesActive {
		if err := e.Put(domain); err != nil {
			e.logger.Warn("releasing domain",
				"device", dev.name,
				"domain", domain.name,
				"error", err,
			)
		}
	}

	return nil
}
