package instance

import (
	"errors"
	"testing"
)

func TestPortIsStableAndInRange(t *testing.T) {
	l := New("radiobrowse-test")

	first := l.Port()
	second := l.Port()

	if first != second {
		t.Errorf("Port() not stable: %d then %d", first, second)
	}
	if first < portBase || first >= portBase+portRange {
		t.Errorf("Port() = %d, want within [%d, %d)", first, portBase, portBase+portRange)
	}
}

func TestPortDiffersPerApp(t *testing.T) {
	a := New("app-one").Port()
	b := New("app-two").Port()

	// Not guaranteed in theory, but a collision here would mean the
	// derivation ignores the app id.
	if a == b {
		t.Errorf("Port() identical for different app ids: %d", a)
	}
}

func TestAcquireAndRelease(t *testing.T) {
	first := New("radiobrowse-lock-test")
	if err := first.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer first.Release()

	second := New("radiobrowse-lock-test")
	err := second.Acquire()
	if err == nil {
		second.Release()
		t.Fatal("second Acquire() succeeded, want ErrAlreadyRunning")
	}
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Acquire() error = %v, want ErrAlreadyRunning", err)
	}

	first.Release()

	if err := second.Acquire(); err != nil {
		t.Errorf("Acquire() after Release() error = %v", err)
	}
	second.Release()
}

func TestAcquireIsIdempotent(t *testing.T) {
	l := New("radiobrowse-idempotent-test")
	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	if err := l.Acquire(); err != nil {
		t.Errorf("second Acquire() on same lock error = %v", err)
	}
}

func TestReleaseWithoutAcquire(t *testing.T) {
	New("radiobrowse-release-test").Release() // must not panic
}
