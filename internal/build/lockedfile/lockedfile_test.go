package lockedfile

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := MutexAt(path).Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	unlock()

	// Relocking after unlock must succeed immediately.
	unlock2, err := MutexAt(path).Lock()
	if err != nil {
		t.Fatalf("second Lock: %v", err)
	}
	unlock2()
}

func TestLockBlocksSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := MutexAt(path).Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		unlock2, err := MutexAt(path).Lock()
		if err != nil {
			t.Errorf("concurrent Lock: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		unlock2()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired lock while held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired lock after release")
	}
}

func TestLockMissingPathPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Lock with empty Path did not panic")
		}
	}()
	(&Mutex{}).Lock()
}
