package pm

import (
	"errors"
	"fmt"
)

// SuspendAll walks the dependency order in reverse, moving every
// eligible device into the target state. Dependents are therefore
// suspended before the resources they depend on.
//
// Devices are skipped when they are busy, wake-enabled, already Off, or
// already in the target state. Every device actually moved is recorded
// so ResumeAll can reactivate exactly those devices and no others.
//
// Suspending a domain member releases its domain asynchronously, so by
// the time the walk reaches the domain that release may still be in
// flight. An in-flight transition is waited out and the device retried,
// not treated as a failure; only the busy flag vetoes.
//
// A real transition failure aborts the walk and is reported upward: a
// failed suspend leaves the system in a known-safe, more-active state.
// Devices suspended before the failure stay recorded, so the caller can
// ResumeAll to roll back.
//
// Parameters:
//   - target: StateSuspended, StateLowPower or StateOff, chosen by the
//     external sleep policy
//
// Returns:
//   - error: nil if the walk completed; ErrNotSupported for an invalid
//     target; the first real transition failure otherwise
func (e *Engine) SuspendAll(target State) error {
	if target == StateActive {
		return fmt.Errorf("%w: suspend target %s", ErrNotSupported, target)
	}

	e.orderMu.Lock()
	defer e.orderMu.Unlock()

	order, err := e.orderLocked()
	if err != nil {
		return err
	}

	e.saved = e.saved[:0]
	for i := len(order) - 1; i >= 0; i-- {
		dev := order[i]

		// Sampled per device so a busy flag raised after the walk
		// started still vetoes.
		if dev.flags.Test(FlagBusy) || dev.flags.Test(FlagWakeupEnabled) {
			e.logger.Debug("bulk suspend skipping device",
				"device", dev.name,
				"busy", dev.flags.Test(FlagBusy),
				"wakeup_enabled", dev.flags.Test(FlagWakeupEnabled),
			)
			continue
		}
		if dev.State() == StateOff {
			continue
		}

		err := e.SetState(dev, target)
		for errors.Is(err, ErrBusy) {
			dev.waitSettled()
			err = e.SetState(dev, target)
		}
		switch {
		case err == nil:
			e.saved = append(e.saved, dev)
		case errors.Is(err, ErrAlreadyInState), errors.Is(err, ErrNotSupported):
			// Already where it needs to be, or cannot be managed.
		default:
			return fmt.Errorf("suspending %s: %w", dev.name, err)
		}
	}

	e.logger.Info("bulk suspend complete",
		"target", target.String(),
		"suspended", len(e.saved),
	)
	return nil
}

// ResumeAll transitions every device recorded by the last SuspendAll
// back to Active, in forward dependency order, then clears the record.
//
// Resume is best-effort: a failure on one device is logged and does not
// stop resumption of the rest, so a single bad device cannot strand
// unrelated ones.
func (e *Engine) ResumeAll() {
	e.orderMu.Lock()
	defer e.orderMu.Unlock()

	// saved was filled during the reverse walk, so iterating it
	// backwards restores forward dependency order.
	for i := len(e.saved) - 1; i >= 0; i-- {
		dev := e.saved[i]
		err := e.SetState(dev, StateActive)
		for errors.Is(err, ErrBusy) {
			dev.waitSettled()
			err = e.SetState(dev, StateActive)
		}
		if err != nil && !errors.Is(err, ErrAlreadyInState) {
			e.logger.Error("resume failed",
				"device", dev.name,
				"error", err,
			)
		}
	}
	e.saved = e.saved[:0]
}
