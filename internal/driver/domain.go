package driver

import (
	"github.com/calegray/powercore/internal/pm"
)

// SimDomain is a simulated power domain driver. It behaves like Sim
// for its own transitions and additionally cascades notifications to
// the domain's members: turn-off before power is cut, turn-on after
// power returns. Members adjust their internal bookkeeping in response
// without changing their logical power state.
type SimDomain struct {
	sim    *Sim
	engine *pm.Engine
}

// NewSimDomain creates a simulated power domain driver. The engine
// reference is needed for the member cascade.
func NewSimDomain(cfg SimConfig, engine *pm.Engine, logger Logger) *SimDomain {
	return &SimDomain{
		sim:    NewSim(cfg, logger),
		engine: engine,
	}
}

// Action is the pm.ActionFunc to register the domain device with.
func (d *SimDomain) Action(dev *pm.Device, action pm.Action) error {
	switch action {
	case pm.ActionSuspend, pm.ActionLowPower, pm.ActionTurnOff:
		// Members lose power when the rail goes down; warn them first.
		if err := d.engine.ChildrenAction(dev, pm.ActionTurnOff); err != nil {
			return err
		}
		return d.sim.Action(dev, action)

	case pm.ActionResume, pm.ActionTurnOn:
		if err := d.sim.Action(dev, action); err != nil {
			return err
		}
		return d.engine.ChildrenAction(dev, pm.ActionTurnOn)

	default:
		return d.sim.Action(dev, action)
	}
}

// FailOn makes the given action fail until ClearFailure is called.
func (d *SimDomain) FailOn(action pm.Action) {
	d.sim.FailOn(action)
}

// ClearFailure removes an injected failure.
func (d *SimDomain) ClearFailure(action pm.Action) {
	d.sim.ClearFailure(action)
}

// Count returns how many times the driver has run the given action.
func (d *SimDomain) Count(action pm.Action) int {
	return d.sim.Count(action)
}
