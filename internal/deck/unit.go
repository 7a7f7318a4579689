package deck

import (
	"log/slog"
	"sync"

	"vjdeck/internal/catalog"
	"vjdeck/internal/media"
)

// State is a playback unit's lifecycle state.
type State string

const (
	Stopped State = "stopped"
	Playing State = "playing"
	Paused  State = "paused"
)

// Unit binds one deck item to a media element and reacts to store
// broadcasts. The unit exclusively owns its transient playback fields; the
// store only broadcasts signals the unit chooses to react to.
type Unit struct {
	item  Item
	store *Store
	el    media.Element
	log   *slog.Logger

	mu          sync.Mutex
	state       State
	localVolume int // 0..100
	position    float64
	duration    float64
}

// Status is a read-side snapshot of a unit's transient playback state.
type Status struct {
	DeckID      string  `json:"deckId"`
	State       State   `json:"state"`
	LocalVolume int     `json:"localVolume"`
	Position    float64 `json:"position"`
	Duration    float64 `json:"duration"`
}

// NewUnit creates a unit for item bound to el and registers it on the
// store under the item's deck id. Units start Stopped with local volume 0;
// visual items are muted at the element level from the start.
func NewUnit(item Item, store *Store, el media.Element, log *slog.Logger) *Unit {
	u := &Unit{
		item:  item,
		store: store,
		el:    el,
		log:   log,
		state: Stopped,
	}
	el.SetOnTick(u.handleTick)
	u.applyMix(store.MasterVolume(), store.GlobalMute())
	store.Register(item.DeckID, u)
	return u
}

// EffectiveGain maps a 0-100 local volume and a master gain to the linear
// element gain. The local term is squared so the slider mid-point sounds
// half as loud rather than half the raw amplitude.
func EffectiveGain(localVolume int, master float64) float64 {
	v := float64(localVolume) / 100
	return v * v * master
}

// Item returns the deck item this unit plays.
func (u *Unit) Item() Item {
	return u.item
}

// State returns the unit's current playback state.
func (u *Unit) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// LocalVolume returns the stored 0-100 local volume.
func (u *Unit) LocalVolume() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.localVolume
}

// Status returns a snapshot of the unit's transient playback state.
func (u *Unit) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Status{
		DeckID:      u.item.DeckID,
		State:       u.state,
		LocalVolume: u.localVolume,
		Position:    u.position,
		Duration:    u.duration,
	}
}

// play attempts to start playback. A rejected start (decode failure,
// policy restriction on a real surface) leaves the unit in its prior state
// and is never surfaced.
func (u *Unit) play() {
	if err := u.el.Play(); err != nil {
		if u.log != nil {
			u.log.Debug("playback start rejected",
				slog.String("deck_id", u.item.DeckID),
				slog.String("name", u.item.Name),
				slog.String("error", err.Error()))
		}
		return
	}
	u.mu.Lock()
	u.state = Playing
	u.mu.Unlock()
}

func (u *Unit) pause() {
	u.el.Pause()
	u.mu.Lock()
	u.state = Paused
	u.mu.Unlock()
}

func (u *Unit) stopAndRewind() {
	u.el.Pause()
	u.el.Seek(0)
	u.mu.Lock()
	u.state = Stopped
	u.position = 0
	u.mu.Unlock()
}

// Toggle flips this unit between Playing and Paused, independent of every
// other unit.
func (u *Unit) Toggle() {
	if u.State() == Playing {
		u.pause()
		return
	}
	u.play()
}

// SetLocalVolume stores the 0-100 local volume and reapplies the gain
// pipeline.
func (u *Unit) SetLocalVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	u.mu.Lock()
	u.localVolume = v
	u.mu.Unlock()
	u.applyMix(u.store.MasterVolume(), u.store.GlobalMute())
}

// Seek moves the unit's playhead to the given offset in seconds.
func (u *Unit) Seek(sec float64) {
	u.el.Seek(sec)
	u.mu.Lock()
	u.position = u.el.Position()
	u.mu.Unlock()
}

// ToggleStage sends this unit's item to the stage slot, evicting whatever
// held it, or clears the slot when this unit already holds it. Taking the
// stage also starts playback if the unit was not playing. Non-video items
// have no stage control.
func (u *Unit) ToggleStage() {
	if u.item.Type != catalog.Video {
		return
	}
	if u.store.ActiveStageID() == u.item.DeckID {
		u.store.SetActiveStageID("")
		return
	}
	u.store.SetActiveStageID(u.item.DeckID)
	if u.State() != Playing {
		u.play()
	}
}

// applyMix pushes the computed gain and mute state down to the element.
// Visual items are always muted at the element level; their audio never
// enters the mix.
func (u *Unit) applyMix(master float64, muted bool) {
	if u.item.Category == catalog.Visual {
		u.el.SetGain(0)
		u.el.SetMuted(true)
		return
	}
	u.mu.Lock()
	local := u.localVolume
	u.mu.Unlock()
	u.el.SetGain(EffectiveGain(local, master))
	u.el.SetMuted(muted)
}

// handleTick records the advancing position. The duration is latched the
// first time it becomes known and not re-queried afterwards.
func (u *Unit) handleTick(pos, dur float64) {
	u.mu.Lock()
	u.position = pos
	if u.duration == 0 && dur > 0 {
		u.duration = dur
	}
	u.mu.Unlock()
}

// Close releases the unit's element and deregisters it from the store.
// Used when the deck is torn down wholesale; removal through the store
// goes through Removed instead.
func (u *Unit) Close() {
	u.store.Unregister(u.item.DeckID)
	u.el.Pause()
	u.el.Close()
}

// Transport implements Listener. A play command is ignored while already
// playing; pause and stop apply from any state.
func (u *Unit) Transport(cmd Command) {
	switch cmd {
	case Play:
		if u.State() != Playing {
			u.play()
		}
	case Pause:
		u.pause()
	case Stop:
		u.stopAndRewind()
	}
}

// MixChanged implements Listener.
func (u *Unit) MixChanged(master float64, muted bool) {
	u.applyMix(master, muted)
}

// Removed implements Listener. The unit releases its element when its own
// item leaves the deck.
func (u *Unit) Removed(deckID string) {
	if deckID != u.item.DeckID {
		return
	}
	u.el.Pause()
	u.el.Close()
}

// StageChanged implements Listener. Losing the stage slot is not a
// playback transition: an evicted item keeps playing exactly as it was, it
// simply stops being rendered full-screen.
func (u *Unit) StageChanged(string) {}
