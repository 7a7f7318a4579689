package media

import "testing"

func newTestElement(dur float64) *ClockElement {
	e := NewClockElement(dur)
	return e
}

func TestClockElement_play_requires_duration(t *testing.T) {
	e := newTestElement(0)
	defer e.Close()

	if err := e.Play(); err != ErrUnplayable {
		t.Errorf("Play on zero-duration element: got %v, want ErrUnplayable", err)
	}
}

func TestClockElement_advance_and_loop(t *testing.T) {
	e := newTestElement(2)
	defer e.Close()

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	e.advance(1.5)
	if got := e.Position(); got != 1.5 {
		t.Errorf("position = %v, want 1.5", got)
	}

	// Crossing the duration boundary wraps back around.
	e.advance(1.0)
	if got := e.Position(); got != 0.5 {
		t.Errorf("position after loop = %v, want 0.5", got)
	}
}

func TestClockElement_pause_halts_advance(t *testing.T) {
	e := newTestElement(10)
	defer e.Close()

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.advance(1)
	e.Pause()
	e.advance(1)

	if got := e.Position(); got != 1 {
		t.Errorf("position = %v, want 1 (no advance while paused)", got)
	}
}

func TestClockElement_seek_clamps(t *testing.T) {
	e := newTestElement(5)
	defer e.Close()

	e.Seek(-3)
	if got := e.Position(); got != 0 {
		t.Errorf("seek below zero: position = %v", got)
	}
	e.Seek(99)
	if got := e.Position(); got != 5 {
		t.Errorf("seek past end: position = %v", got)
	}
}

func TestClockElement_tick_callback(t *testing.T) {
	e := newTestElement(4)
	defer e.Close()

	var gotPos, gotDur float64
	e.SetOnTick(func(pos, dur float64) { gotPos, gotDur = pos, dur })

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.advance(0.5)

	if gotPos != 0.5 || gotDur != 4 {
		t.Errorf("tick callback got pos=%v dur=%v", gotPos, gotDur)
	}
}
