package jobqueue

import (
	"testing"
	"time"
)

func TestManagerSingleton(t *testing.T) {
	a := GetManager()
	b := GetManager()
	if a != b {
		t.Fatal("GetManager must return the same instance")
	}
}

func TestManagerStartStopIdempotent(t *testing.T) {
	m := &Manager{stopCh: make(chan struct{})}

	m.Start()
	if !m.running {
		t.Fatal("manager should be running after Start")
	}
	// Second start is a no-op.
	m.Start()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	if m.running {
		t.Fatal("manager should not be running after Stop")
	}
	// Second stop is a no-op.
	m.Stop()
}
