package pm

import (
	"errors"
	"testing"
)

func TestStateStringRoundTrip(t *testing.T) {
	for _, s := range []State{StateActive, StateSuspended, StateLowPower, StateOff} {
		got, err := ParseState(s.String())
		if err != nil {
			t.Errorf("ParseState(%q) error = %v", s.String(), err)
			continue
		}
		if got != s {
			t.Errorf("ParseState(%q) = %v, want %v", s.String(), got, s)
		}
	}
}

func TestParseStateUnknown(t *testing.T) {
	if _, err := ParseState("hibernate"); !errors.Is(err, ErrNotSupported) {
		t.Errorf("ParseState() error = %v, want ErrNotSupported", err)
	}
}

func TestActionFor(t *testing.T) {
	cases := []struct {
		target State
		want   Action
	}{
		{StateActive, ActionResume},
		{StateSuspended, ActionSuspend},
		{StateLowPower, ActionLowPower},
		{StateOff, ActionTurnOff},
	}
	for _, c := range cases {
		if got := actionFor(c.target); got != c.want {
			t.Errorf("actionFor(%v) = %v, want %v", c.target, got, c.want)
		}
	}
}

func TestValidTransitionFromOff(t *testing.T) {
	if validTransition(StateOff, StateSuspended) {
		t.Error("validTransition(off, suspended) = true, want false")
	}
	if validTransition(StateOff, StateLowPower) {
		t.Error("validTransition(off, low-power) = true, want false")
	}
	if !validTransition(StateOff, StateActive) {
		t.Error("validTransition(off, active) = false, want true")
	}
	if !validTransition(StateActive, StateOff) {
		t.Error("validTransition(active, off) = false, want true")
	}
}
