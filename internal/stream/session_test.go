package stream

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestManagerSingleSlot(t *testing.T) {
	m := NewManager()

	if m.State() != StateIdle {
		t.Fatalf("fresh manager state = %v, want Idle", m.State())
	}

	s, err := m.TryAcquire("g", "c", "movie")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if m.State() != StateJoining {
		t.Errorf("state after acquire = %v, want Joining", m.State())
	}

	if _, err := m.TryAcquire("g", "c", "other"); !errors.Is(err, ErrBusy) {
		t.Errorf("second acquire = %v, want ErrBusy", err)
	}

	m.SetPlaying()
	if m.State() != StatePlaying {
		t.Errorf("state = %v, want Playing", m.State())
	}
	if _, err := m.TryAcquire("g", "c", "other"); !errors.Is(err, ErrBusy) {
		t.Errorf("acquire while playing = %v, want ErrBusy", err)
	}

	m.SetStopping()
	if _, err := m.TryAcquire("g", "c", "other"); !errors.Is(err, ErrBusy) {
		t.Errorf("acquire while stopping = %v, want ErrBusy", err)
	}

	m.Release()
	if m.State() != StateIdle {
		t.Errorf("state after release = %v, want Idle", m.State())
	}
	if _, ok := m.Current(); ok {
		t.Error("released manager still reports a current session")
	}

	select {
	case <-s.Done():
	default:
		// session context stays live until cancelled, release alone does not end it
	}
}

func TestManagerConcurrentAcquire(t *testing.T) {
	m := NewManager()

	const workers = 32
	var (
		start = make(chan struct{})
		wg    sync.WaitGroup
		mu    sync.Mutex
		won   int
		busy  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := m.TryAcquire("g", "c", fmt.Sprintf("movie-%d", i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, ErrBusy):
				busy++
			default:
				t.Errorf("acquire: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if busy != workers-1 {
		t.Errorf("busy rejections = %d, want %d", busy, workers-1)
	}
	if m.State() != StateJoining {
		t.Errorf("state = %v, want Joining", m.State())
	}
}

func TestSetPlayingOnlyFromJoining(t *testing.T) {
	m := NewManager()
	m.SetPlaying()
	if m.State() != StateIdle {
		t.Errorf("SetPlaying from Idle moved state to %v", m.State())
	}
}

func TestSessionCancelMarksUserStop(t *testing.T) {
	m := NewManager()
	s, err := m.TryAcquire("g", "c", "movie")
	if err != nil {
		t.Fatal(err)
	}

	if s.UserStopped() {
		t.Error("fresh session reports user stop")
	}
	s.Cancel(true)
	if !s.UserStopped() {
		t.Error("cancel(true) should mark user stop")
	}
	select {
	case <-s.Done():
	default:
		t.Error("cancel did not close the session context")
	}

	// repeated cancel with false must not clear the flag
	s.Cancel(false)
	if !s.UserStopped() {
		t.Error("user stop flag was cleared")
	}
}

func TestRegisterCleanupAfterTeardown(t *testing.T) {
	m := NewManager()
	s, err := m.TryAcquire("g", "c", "movie")
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	if !s.RegisterCleanup(func() error { calls++; return nil }) {
		t.Fatal("register on live session failed")
	}

	fn := s.takeCleanup()
	if fn == nil {
		t.Fatal("takeCleanup returned nil")
	}
	_ = fn()
	if calls != 1 {
		t.Fatalf("cleanup calls = %d, want 1", calls)
	}

	if s.takeCleanup() != nil {
		t.Error("second takeCleanup should return nil")
	}
	if s.RegisterCleanup(func() error { return nil }) {
		t.Error("register after teardown should fail so caller cleans up itself")
	}
}
