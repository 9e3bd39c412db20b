package pm

import (
	"errors"
	"sync"
	"testing"
)

func TestSetStateCommitsOnSuccess(t *testing.T) {
	reg := NewRegistry()
	dev, rec := addDevice(t, reg, "uart0")
	engine := NewEngine(reg)

	if err := engine.SetState(dev, StateSuspended); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if got := dev.State(); got != StateSuspended {
		t.Errorf("State() = %v, want %v", got, StateSuspended)
	}
	if rec.count(ActionSuspend) != 1 {
		t.Errorf("suspend actions = %d, want 1", rec.count(ActionSuspend))
	}
}

func TestSetStateNoCallback(t *testing.T) {
	reg := NewRegistry()
	dev := NewDevice(DeviceConfig{Name: "rail"})
	if err := reg.Add(dev); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	engine := NewEngine(reg)

	if err := engine.SetState(dev, StateSuspended); !errors.Is(err, ErrNotSupported) {
		t.Errorf("SetState() error = %v, want ErrNotSupported", err)
	}
}

func TestSetStateIdempotent(t *testing.T) {
	reg := NewRegistry()
	dev, rec := addDevice(t, reg, "uart0")
	engine := NewEngine(reg)

	err := engine.SetState(dev, StateActive)
	if !errors.Is(err, ErrAlreadyInState) {
		t.Fatalf("SetState() error = %v, want ErrAlreadyInState", err)
	}
	if rec.total() != 0 {
		t.Errorf("action callback invoked %d times, want 0", rec.total())
	}
	if got := dev.State(); got != StateActive {
		t.Errorf("State() = %v, want unchanged %v", got, StateActive)
	}
}

func TestSetStateStructuralRules(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"off to suspended is invalid", StateOff, StateSuspended, ErrNotSupported},
		{"off to low-power is invalid", StateOff, StateLowPower, ErrNotSupported},
		{"off to active is valid", StateOff, StateActive, nil},
		{"active to off is valid", StateActive, StateOff, nil},
		{"suspended to low-power is valid", StateSuspended, StateLowPower, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			dev, _ := addDevice(t, reg, "dev")
			engine := NewEngine(reg)

			// Drive the device to the starting state directly; the
			// structural rules are what is under test here.
			dev.state = tt.from

			err := engine.SetState(dev, tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("SetState() error = %v, want nil", err)
				}
				if got := dev.State(); got != tt.to {
					t.Errorf("State() = %v, want %v", got, tt.to)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetState() error = %v, want %v", err, tt.wantErr)
			}
			if got := dev.State(); got != tt.from {
				t.Errorf("State() = %v, want unchanged %v", got, tt.from)
			}
		})
	}
}

func TestSetStateCallbackFailure(t *testing.T) {
	reg := NewRegistry()
	dev, rec := addDevice(t, reg, "uart0")
	engine := NewEngine(reg)

	driverErr := errors.New("register write failed")
	rec.failOn(ActionSuspend, driverErr)

	err := engine.SetState(dev, StateSuspended)
	if !errors.Is(err, ErrIOFailure) {
		t.Fatalf("SetState() error = %v, want ErrIOFailure", err)
	}
	if !errors.Is(err, driverErr) {
		t.Errorf("SetState() error = %v, want wrapped driver error", err)
	}
	if got := dev.State(); got != StateActive {
		t.Errorf("State() = %v, want unchanged %v after failure", got, StateActive)
	}
}

func TestSetStateConcurrentRequestFails(t *testing.T) {
	reg := NewRegistry()
	dev, rec := addDevice(t, reg, "uart0")
	engine := NewEngine(reg)

	rec.block = make(chan struct{})
	rec.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		done <- engine.SetState(dev, StateSuspended)
	}()
	<-rec.entered // first transition is inside the callback

	// A second request during the in-flight transition fails rather
	// than queueing.
	if err := engine.SetState(dev, StateLowPower); !errors.Is(err, ErrBusy) {
		t.Errorf("SetState() during transition error = %v, want ErrBusy", err)
	}

	close(rec.block)
	if err := <-done; err != nil {
		t.Fatalf("first SetState() error = %v", err)
	}
	if got := dev.State(); got != StateSuspended {
		t.Errorf("State() = %v, want %v", got, StateSuspended)
	}
}

func TestSetStateEmitsEvents(t *testing.T) {
	reg := NewRegistry()
	dev, rec := addDevice(t, reg, "uart0")
	engine := NewEngine(reg)

	var mu sync.Mutex
	var events []Event
	engine.Notify(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	if err := engine.SetState(dev, StateSuspended); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	driverErr := errors.New("boom")
	rec.failOn(ActionResume, driverErr)
	if err := engine.SetState(dev, StateActive); err == nil {
		t.Fatal("SetState() expected failure")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Device != "uart0" || events[0].From != StateActive || events[0].To != StateSuspended || events[0].Err != nil {
		t.Errorf("unexpected success event: %+v", events[0])
	}
	if events[1].Err == nil || !errors.Is(events[1].Err, ErrIOFailure) {
		t.Errorf("failure event Err = %v, want ErrIOFailure", events[1].Err)
	}
	if events[0].ID == "" || events[0].ID == events[1].ID {
		t.Errorf("event IDs not unique: %q, %q", events[0].ID, events[1].ID)
	}
}
