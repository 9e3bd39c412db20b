package pm

import "fmt"

// State is the committed, externally observable power state of a device.
type State uint8

// Device power states.
const (
	// StateActive means the device is fully powered and operational.
	StateActive State = iota

	// StateSuspended means the device is powered down but retains
	// enough context to resume without reinitialisation.
	StateSuspended

	// StateLowPower means the device is in a reduced-power mode while
	// remaining partially operational.
	StateLowPower

	// StateOff means the device is completely unpowered. Context is
	// lost; the only legal transition out of Off is to Active.
	StateOff
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateLowPower:
		return "low-power"
	case StateOff:
		return "off"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseState converts a state name to a State.
//
// Parameters:
//   - name: State name as produced by State.String()
//
// Returns:
//   - State: Parsed state
//   - error: ErrNotSupported if the name is not recognised
func ParseState(name string) (State, error) {
	switch name {
	case "active":
		return StateActive, nil
	case "suspended":
		return StateSuspended, nil
	case "low-power":
		return StateLowPower, nil
	case "off":
		return StateOff, nil
	default:
		return StateActive, fmt.Errorf("%w: unknown state %q", ErrNotSupported, name)
	}
}

// Action is the semantic operation passed to a device action callback.
//
// Resume, Suspend, LowPower and TurnOff accompany the device's own state
// transitions. TurnOn and TurnOff are additionally delivered to power
// domain children as cascade notifications: they inform a child that its
// power rail changed without the child's own logical state changing.
type Action uint8

// Device actions.
const (
	ActionResume Action = iota
	ActionSuspend
	ActionLowPower
	ActionTurnOff
	ActionTurnOn
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionSuspend:
		return "suspend"
	case ActionLowPower:
		return "low-power"
	case ActionTurnOff:
		return "turn-off"
	case ActionTurnOn:
		return "turn-on"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// actionFor maps a target state to the action delivered to the callback.
func actionFor(target State) Action {
	switch target {
	case StateActive:
		return ActionResume
	case StateLowPower:
		return ActionLowPower
	case StateOff:
		return ActionTurnOff
	case StateSuspended:
		return ActionSuspend
	default:
		return ActionSuspend
	}
}

// validTransition reports whether a transition is structurally legal.
// A device that is Off has lost all context, so the only way out is a
// full resume to Active.
func validTransition(from, to State) bool {
	if from == StateOff {
		return to == StateActive
	}
	return true
}
