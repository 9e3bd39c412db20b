package pm

import (
	"sync"
	"testing"
	"time"
)

// actionRecorder is a test action callback that records every action it
// receives and can be told to fail or block.
type actionRecorder struct {
	mu    sync.Mutex
	calls []Action
	fail  map[Action]error

	// block, when non-nil, is waited on before the callback returns.
	block chan struct{}
	// entered, when non-nil, is signalled once per callback invocation.
	entered chan struct{}
}

func newActionRecorder() *actionRecorder {
	return &actionRecorder{}
}

func (r *actionRecorder) Action(_ *Device, act Action) error {
	r.mu.Lock()
	r.calls = append(r.calls, act)
	fail := r.fail[act]
	block := r.block
	entered := r.entered
	r.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return fail
}

func (r *actionRecorder) failOn(act Action, err error) {
	r.mu.Lock()
	if r.fail == nil {
		r.fail = make(map[Action]error)
	}
	r.fail[act] = err
	r.mu.Unlock()
}

func (r *actionRecorder) count(act Action) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == act {
			n++
		}
	}
	return n
}

func (r *actionRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// addDevice registers a new device backed by a fresh recorder.
func addDevice(t *testing.T, reg *Registry, name string, requires ...string) (*Device, *actionRecorder) {
	t.Helper()

	rec := newActionRecorder()
	dev := NewDevice(DeviceConfig{
		Name:     name,
		Action:   rec.Action,
		Requires: requires,
	})
	if err := reg.Add(dev); err != nil {
		t.Fatalf("adding device %s: %v", name, err)
	}
	return dev, rec
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
