// Package media defines the playable-element abstraction the deck binds
// to, plus a clock-driven implementation that keeps the server
// authoritative for playback position without a real renderer attached.
package media

import (
	"errors"
	"math"
	"sync"
	"time"
)

// ErrUnplayable is returned by Play when the source cannot be played.
var ErrUnplayable = errors.New("media: source is not playable")

// Element is a single playable media surface. Implementations own the
// actual output; callers drive transport and gain through this interface.
type Element interface {
	// Play starts or resumes playback. Callers decide whether a failure is
	// surfaced or swallowed.
	Play() error
	Pause()
	// Seek moves the playhead to the given offset in seconds.
	Seek(sec float64)
	// Position is the current playhead offset in seconds.
	Position() float64
	// Duration is the source length in seconds, 0 when unknown.
	Duration() float64
	// SetGain sets the linear output gain in [0, 1].
	SetGain(gain float64)
	SetMuted(muted bool)
	// SetOnTick registers the time-advance callback, invoked with the
	// current position and duration while playback advances.
	SetOnTick(fn func(pos, dur float64))
	// Close releases the element. The element must not be used afterwards.
	Close()
}

const tickInterval = 250 * time.Millisecond

// ClockElement models a looping media element against the wall clock. Play
// fails when no duration is known, mirroring a decode failure on a real
// surface.
type ClockElement struct {
	mu      sync.Mutex
	dur     float64
	pos     float64
	playing bool
	gain    float64
	muted   bool
	onTick  func(pos, dur float64)

	stop chan struct{}
	once sync.Once
}

// NewClockElement returns a running element for a source of the given
// duration in seconds. Pass 0 when the source could not be probed; such an
// element refuses to play.
func NewClockElement(duration float64) *ClockElement {
	e := &ClockElement{dur: duration, stop: make(chan struct{})}
	go e.run()
	return e
}

func (e *ClockElement) run() {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			e.advance(tickInterval.Seconds())
		}
	}
}

// advance moves the playhead forward while playing, looping at the
// duration boundary, and fires the tick callback outside the lock.
func (e *ClockElement) advance(seconds float64) {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.pos += seconds
	if e.dur > 0 && e.pos >= e.dur {
		e.pos = math.Mod(e.pos, e.dur)
	}
	fn, pos, dur := e.onTick, e.pos, e.dur
	e.mu.Unlock()

	if fn != nil {
		fn(pos, dur)
	}
}

// Play implements Element.Play.
func (e *ClockElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dur <= 0 {
		return ErrUnplayable
	}
	e.playing = true
	return nil
}

// Pause implements Element.Pause. Pausing a paused element is a no-op.
func (e *ClockElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

// Seek implements Element.Seek, clamping to [0, duration].
func (e *ClockElement) Seek(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sec < 0 {
		sec = 0
	}
	if e.dur > 0 && sec > e.dur {
		sec = e.dur
	}
	e.pos = sec
}

// Position implements Element.Position.
func (e *ClockElement) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// Duration implements Element.Duration.
func (e *ClockElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dur
}

// SetGain implements Element.SetGain.
func (e *ClockElement) SetGain(gain float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gain = gain
}

// SetMuted implements Element.SetMuted.
func (e *ClockElement) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
}

// SetOnTick implements Element.SetOnTick.
func (e *ClockElement) SetOnTick(fn func(pos, dur float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// Close implements Element.Close.
func (e *ClockElement) Close() {
	e.once.Do(func() { close(e.stop) })
}
