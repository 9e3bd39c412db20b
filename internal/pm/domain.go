package pm

import "fmt"

// DomainAdd registers child as a member of the given power domain.
//
// Membership is dynamic: devices may join or leave a domain at any
// time. While a member, the child's transitions to and from Active take
// and release a runtime reference on the domain, so the domain only
// suspends once every child has released it. A child that is already
// Active when it joins takes that reference immediately: the domain
// must never undercount a live member.
//
// Parameters:
//   - child: Device that depends on the domain for power
//   - domain: Domain device (typically a shared rail or bus controller)
//
// Returns:
//   - error: ErrDomainAssigned if the child already belongs to another
//     domain; ErrNotSupported if child and domain are the same device;
//     ErrBusy if the child is mid-transition
func (e *Engine) DomainAdd(child, domain *Device) error {
	if child == nil || domain == nil {
		return ErrDeviceNotFound
	}
	if child == domain {
		return fmt.Errorf("%w: device cannot be its own domain", ErrNotSupported)
	}

	e.domMu.Lock()
	if child.domain == domain {
		e.domMu.Unlock()
		return nil
	}
	if child.domain != nil {
		err := fmt.Errorf("%w: %s is in domain %s", ErrDomainAssigned, child.name, child.domain.name)
		e.domMu.Unlock()
		return err
	}

	// A transition in flight may or may not have sampled the old
	// membership; the caller retries once it settles.
	child.mu.Lock()
	if child.transitioning {
		child.mu.Unlock()
		e.domMu.Unlock()
		return fmt.Errorf("%w: %s is mid-transition", ErrBusy, child.name)
	}
	active := child.state == StateActive
	child.mu.Unlock()

	child.domain = domain
	domain.children = append(domain.children, child)

	// An already-active child resumed before it joined, so the
	// reference its resume would have taken is taken here. Claimed
	// while domMu is still held: the child's next transition cannot
	// observe the membership before the domain is counted.
	if active && !child.flags.Test(FlagIgnoreChildren) {
		if err := e.Get(domain); err != nil {
			e.logger.Warn("claiming domain for active member",
				"child", child.name,
				"domain", domain.name,
				"error", err,
			)
		}
	}
	e.domMu.Unlock()

	e.invalidateOrder()
	return nil
}

// DomainRemove removes child from the given power domain.
//
// An Active child releases the domain reference it holds on the way
// out, mirroring DomainAdd.
//
// Returns ErrDeviceNotFound if the child is not a member of the domain,
// ErrBusy if the child is mid-transition.
func (e *Engine) DomainRemove(child, domain *Device) error {
	if child == nil || domain == nil {
		return ErrDeviceNotFound
	}

	e.domMu.Lock()
	if child.domain != domain {
		e.domMu.Unlock()
		return fmt.Errorf("%w: %s is not in domain %s", ErrDeviceNotFound, child.name, domain.name)
	}

	child.mu.Lock()
	if child.transitioning {
		child.mu.Unlock()
		e.domMu.Unlock()
		return fmt.Errorf("%w: %s is mid-transition", ErrBusy, child.name)
	}
	active := child.state == StateActive
	child.mu.Unlock()

	child.domain = nil
	for i, c := range domain.children {
		if c == child {
			domain.children = append(domain.children[:i], domain.children[i+1:]...)
			break
		}
	}

	if active && !child.flags.Test(FlagIgnoreChildren) {
		if err := e.Put(domain); err != nil {
			e.logger.Warn("releasing domain for departing member",
				"child", child.name,
				"domain", domain.name,
				"error", err,
			)
		}
	}
	e.domMu.Unlock()

	e.invalidateOrder()
	return nil
}

// DomainOf returns the power domain the device belongs to, or nil.
func (e *Engine) DomainOf(dev *Device) *Device {
	e.domMu.Lock()
	defer e.domMu.Unlock()
	return dev.domain
}

// Children returns a copy of the domain's current member list.
func (e *Engine) Children(domain *Device) []*Device {
	e.domMu.Lock()
	defer e.domMu.Unlock()
	return append([]*Device(nil), domain.children...)
}

// ChildrenAction delivers a cascade notification to every member of the
// domain. Domain drivers call this from their action callback: TurnOn
// after the domain's own resume succeeds, TurnOff before its suspend,
// so children always observe the rail state they are about to have.
//
// Cascade notifications are distinct from the children's own state
// transitions: a child may react (for example by reinitialising
// hardware) without its logical power state changing, and without the
// runtime arbiter's usage counts being touched.
//
// All children are notified even if one fails; the first failure is
// returned after the fan-out completes.
//
// Parameters:
//   - domain: Domain device whose members are notified
//   - action: ActionTurnOn or ActionTurnOff
//
// Returns:
//   - error: ErrNotSupported for other actions; otherwise the first
//     child failure, wrapped as ErrIOFailure
func (e *Engine) ChildrenAction(domain *Device, action Action) error {
	if action != ActionTurnOn && action != ActionTurnOff {
		return fmt.Errorf("%w: cascade action %s", ErrNotSupported, action)
	}

	var firstErr error
	for _, child := range e.Children(domain) {
		if child.action == nil {
			continue
		}
		if err := child.action(child, action); err != nil {
			e.logger.Warn("cascade notification failed",
				"domain", domain.name,
				"child", child.name,
				"action", action.String(),
				"error", err,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s %s: %w", ErrIOFailure, child.name, action, err)
			}
		}
	}
	return firstErr
}

// IsDomain reports whether the device currently has domain members.
func (e *Engine) IsDomain(dev *Device) bool {
	e.domMu.Lock()
	defer e.domMu.Unlock()
	return len(dev.children) > 0
}
