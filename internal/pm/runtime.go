package pm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Get asynchronously requests that the device become Active.
//
// The usage count is incremented; if the device is not already Active
// (or resuming), a resume is initiated in the background. Get never
// blocks and is therefore safe from contexts that cannot sleep.
//
// Returns:
//   - error: ErrNotSupported if the device has no action callback; nil
//     otherwise ("accepted, pending"). Background transition failures
//     are reported through the event sinks and the engine logger.
func (e *Engine) Get(dev *Device) error {
	return e.request(context.Background(), dev, StateActive, false)
}

// GetSync requests that the device become Active and blocks until the
// resulting transition settles.
//
// It must not be called from a context that cannot block; such callers
// use Get.
//
// Parameters:
//   - ctx: Context for cancellation
//   - dev: Device to activate
//
// Returns:
//   - error: nil if the device ended Active; ErrIOFailure if it settled
//     in a different state; ErrTimeout if the configured sync timeout
//     elapsed; the context error on cancellation
func (e *Engine) GetSync(ctx context.Context, dev *Device) error {
	return e.request(ctx, dev, StateActive, true)
}

// Put asynchronously releases one usage reference on the device.
//
// The usage count is decremented; when it reaches zero and the device
// is Active (or resuming), a suspend is initiated in the background.
func (e *Engine) Put(dev *Device) error {
	return e.request(context.Background(), dev, StateSuspended, false)
}

// PutSync releases one usage reference and blocks until the resulting
// transition settles. See GetSync for the blocking rules.
func (e *Engine) PutSync(ctx context.Context, dev *Device) error {
	return e.request(ctx, dev, StateSuspended, true)
}

// RuntimeEnable enables runtime power management for the device.
// Until enabled, Get and Put are no-ops that report success: the device
// is treated as always powered.
func (e *Engine) RuntimeEnable(dev *Device) {
	dev.mu.Lock()
	dev.enabled = true
	dev.mu.Unlock()
}

// RuntimeDisable disables runtime power management for the device.
// The usage count is retained so a later RuntimeEnable resumes
// arbitration where it left off.
func (e *Engine) RuntimeDisable(dev *Device) {
	dev.mu.Lock()
	dev.enabled = false
	dev.mu.Unlock()
}

// request adjusts the usage count and reconciles the device state with
// the new demand. Count adjustment and the decision to initiate a
// transition happen as one atomic unit under the device lock, so two
// racing callers can never both initiate, and a put can never race a
// get into an inconsistent count.
func (e *Engine) request(ctx context.Context, dev *Device, target State, wait bool) error {
	if dev == nil {
		return ErrDeviceNotFound
	}
	if dev.action == nil {
		return ErrNotSupported
	}

	dev.mu.Lock()
	if !dev.enabled {
		dev.mu.Unlock()
		return nil
	}

	if target == StateActive {
		dev.usage++
	} else {
		dev.usage--
		if dev.usage < 0 {
			// Unbalanced put. Resolve deterministically by clamping;
			// the device stays where demand says it should be.
			dev.usage = 0
			e.logger.Warn("unbalanced put", "device", dev.name)
		}
	}

	// Fast path: nothing in flight and the state already matches demand.
	if !dev.transitioning && reconciled(dev.state, dev.usage) {
		dev.mu.Unlock()
		return nil
	}
	dev.mu.Unlock()

	if !wait {
		go func() {
			if err := e.settle(context.Background(), dev, 0); err != nil {
				e.logger.Warn("async power request failed",
					"device", dev.name,
					"target", target.String(),
					"error", err,
				)
			}
		}()
		return nil
	}

	if err := e.settle(ctx, dev, e.syncTimeout); err != nil {
		return err
	}

	dev.mu.Lock()
	state := dev.state
	dev.mu.Unlock()
	satisfied := state == target
	if target == StateSuspended {
		// A released device already in a deeper state counts as settled.
		satisfied = state != StateActive
	}
	if !satisfied {
		return fmt.Errorf("%w: %s settled in %s, requested %s",
			ErrIOFailure, dev.name, state, target)
	}
	return nil
}

// reconciled reports whether the committed state satisfies the usage
// count: active while referenced, not active once fully released. A
// released device already in LowPower or Off is left alone.
func reconciled(state State, usage int) bool {
	if usage > 0 {
		return state == StateActive
	}
	return state != StateActive
}

// settle drives the device until its state matches its usage count,
// waiting out any in-flight transition before deciding. A get arriving
// while a put-triggered suspend is still running therefore reverses it
// as soon as it settles, instead of leaving the device suspended with a
// positive usage count.
func (e *Engine) settle(ctx context.Context, dev *Device, timeout time.Duration) error {
	var bound <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		bound = timer.C
	}

	for {
		dev.mu.Lock()
		if dev.transitioning {
			ch := dev.settled
			dev.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return fmt.Errorf("waiting for %s: %w", dev.name, ctx.Err())
			case <-bound:
				return fmt.Errorf("%w: waiting for %s", ErrTimeout, dev.name)
			}
			continue
		}

		var desired State
		switch {
		case dev.usage > 0 && dev.state != StateActive:
			desired = StateActive
		case dev.usage == 0 && dev.state == StateActive:
			desired = StateSuspended
		default:
			dev.mu.Unlock()
			return nil
		}
		dev.mu.Unlock()

		err := e.SetState(dev, desired)
		switch {
		case err == nil, errors.Is(err, ErrAlreadyInState):
			// Re-check: demand may have changed while the callback ran.
		case errors.Is(err, ErrBusy):
			// Raced with another initiator; wait for it to settle.
		default:
			return err
		}
	}
}
