package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/calegray/powercore/internal/pm"
)

type fakeRepo struct {
	mu      sync.Mutex
	entries []Entry
	fail    error
}

func (f *fakeRepo) Record(_ context.Context, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepo) List(context.Context, string, int) ([]Entry, error) { return nil, nil }
func (f *fakeRepo) ListAll(context.Context, int) ([]Entry, error)     { return nil, nil }

func (f *fakeRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type captureLogger struct {
	mu    sync.Mutex
	warns int
}

func (l *captureLogger) Warn(string, ...any) {
	l.mu.Lock()
	l.warns++
	l.mu.Unlock()
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	entry := FromEvent(pm.Event{
		ID:       "ev-1",
		Device:   "uart0",
		From:     pm.StateSuspended,
		To:       pm.StateActive,
		Action:   pm.ActionResume,
		Duration: 3 * time.Millisecond,
		Err:      errors.New("bus stuck"),
		At:       at,
	})

	if entry.ID != "ev-1" || entry.Device != "uart0" {
		t.Errorf("identity = %s/%s, want ev-1/uart0", entry.ID, entry.Device)
	}
	if entry.FromState != "suspended" || entry.ToState != "active" {
		t.Errorf("states = %q -> %q, want suspended -> active", entry.FromState, entry.ToState)
	}
	if entry.Action != "resume" {
		t.Errorf("Action = %q, want %q", entry.Action, "resume")
	}
	if entry.Error != "bus stuck" {
		t.Errorf("Error = %q, want %q", entry.Error, "bus stuck")
	}
	if !entry.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, at)
	}
}

func TestSinkRecordsEvents(t *testing.T) {
	repo := &fakeRepo{}
	sink := NewSink(repo, &captureLogger{})

	sink(pm.Event{ID: "ev-1", Device: "uart0", At: time.Now().UTC()})
	sink(pm.Event{ID: "ev-2", Device: "spi1", At: time.Now().UTC()})

	deadline := time.After(2 * time.Second)
	for repo.len() < 2 {
		select {
		case <-deadline:
			t.Fatalf("recorded %d entries, want 2", repo.len())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSinkWarnsOnFailure(t *testing.T) {
	repo := &fakeRepo{fail: errors.New("disk full")}
	logger := &captureLogger{}
	sink := NewSink(repo, logger)

	sink(pm.Event{ID: "ev-1", Device: "uart0", At: time.Now().UTC()})

	deadline := time.After(2 * time.Second)
	for {
		logger.mu.Lock()
		warned := logger.warns > 0
		logger.mu.Unlock()
		if warned {
			return
		}
		select {
		case <-deadline:
			t.Fatal("no warning logged for failed record")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
