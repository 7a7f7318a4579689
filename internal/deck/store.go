// Package deck owns the live mixing model: the deck item list, the shared
// transport state, and one playback unit per item.
package deck

import (
	"sync"

	"github.com/google/uuid"

	"vjdeck/internal/catalog"
)

// Item is a deck entry: a catalog media file plus deck-scoped identity.
// DeckID is distinct from the catalog ID so the same source file could in
// principle appear twice, though AddToDeck currently forbids that.
type Item struct {
	catalog.MediaFile
	DeckID   string `json:"deckId"`
	ThumbURL string `json:"thumbUrl,omitempty"`
}

// Command is a payload-free transport broadcast. Listeners treat delivery
// itself as "a command was issued now"; commands are idempotent and
// order-independent per unit.
type Command int

const (
	Play Command = iota
	Pause
	Stop
)

// Listener receives store broadcasts. Notifications are delivered
// synchronously on the mutating call, after the store lock is released;
// implementations may call back into the store but must not block.
type Listener interface {
	Transport(cmd Command)
	MixChanged(master float64, muted bool)
	Removed(deckID string)
	StageChanged(deckID string)
}

// Store is the single source of truth for the deck list and transport
// state. All operations are synchronous and atomic; no partial state is
// ever observable.
type Store struct {
	mu sync.RWMutex

	items              []Item
	masterVolume       float64
	globalMute         bool
	playTrigger        int64
	pauseTrigger       int64
	stopTrigger        int64
	activeStageID      string
	activeBackgroundID string
	panelsHidden       bool

	listeners map[string]Listener
}

// Snapshot is a point-in-time copy of the deck and transport state.
type Snapshot struct {
	Items              []Item  `json:"items"`
	MasterVolume       float64 `json:"masterVolume"`
	GlobalMute         bool    `json:"globalMute"`
	PlayTrigger        int64   `json:"playTrigger"`
	PauseTrigger       int64   `json:"pauseTrigger"`
	StopTrigger        int64   `json:"stopTrigger"`
	ActiveStageID      string  `json:"activeStageId,omitempty"`
	ActiveBackgroundID string  `json:"activeBackgroundId,omitempty"`
	PanelsHidden       bool    `json:"panelsHidden"`
}

// NewStore returns an empty store with master volume at full gain.
func NewStore() *Store {
	return &Store{
		masterVolume: 1,
		listeners:    make(map[string]Listener),
	}
}

// Register subscribes a listener under the given key, replacing any
// previous listener with that key. Playback units register under their
// deck id.
func (s *Store) Register(key string, l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[key] = l
}

// Unregister removes the listener registered under key.
func (s *Store) Unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, key)
}

func (s *Store) listenerList() []Listener {
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	return ls
}

// AddToDeck appends the given catalog files as new deck items, skipping
// any whose original id is already on the deck. sidecar, when non-nil,
// resolves an extension-stripped relative path to a sidecar image; a hit
// becomes the item's thumbnail URL. Existing deck order is preserved and
// appended items follow input order. The newly created items are returned.
func (s *Store) AddToDeck(files []catalog.MediaFile, sidecar func(key string) (string, bool)) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.items))
	for _, it := range s.items {
		existing[it.ID] = true
	}

	var added []Item
	for _, f := range files {
		if existing[f.ID] {
			continue
		}
		existing[f.ID] = true

		item := Item{
			MediaFile: f,
			DeckID:    "deck_" + uuid.NewString(),
		}
		if sidecar != nil {
			key := catalog.StripExt(f.RelPath)
			if _, ok := sidecar(key); ok {
				item.ThumbURL = "/thumbs/" + key
			}
		}
		s.items = append(s.items, item)
		added = append(added, item)
	}
	return added
}

// RemoveFromDeck removes the item with the given deck id. If that item
// held the stage or background slot, the slot is cleared. The removed
// item's listener is notified and unregistered. No-op when the id is not
// on the deck.
func (s *Store) RemoveFromDeck(deckID string) bool {
	s.mu.Lock()
	idx := -1
	for i, it := range s.items {
		if it.DeckID == deckID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	stageCleared := s.activeStageID == deckID
	if stageCleared {
		s.activeStageID = ""
	}
	if s.activeBackgroundID == deckID {
		s.activeBackgroundID = ""
	}

	removed := s.listeners[deckID]
	delete(s.listeners, deckID)
	var all []Listener
	if stageCleared {
		all = s.listenerList()
	}
	s.mu.Unlock()

	if removed != nil {
		removed.Removed(deckID)
	}
	for _, l := range all {
		l.StageChanged("")
	}
	return true
}

// SetActiveStageID sets the exclusive stage slot. Pass "" to clear it. The
// id is not validated; callers pass a live deck id or "".
func (s *Store) SetActiveStageID(deckID string) {
	s.mu.Lock()
	s.activeStageID = deckID
	ls := s.listenerList()
	s.mu.Unlock()

	for _, l := range ls {
		l.StageChanged(deckID)
	}
}

// SetActiveBackgroundID sets the exclusive background slot. Pass "" to
// clear it.
func (s *Store) SetActiveBackgroundID(deckID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeBackgroundID = deckID
}

func (s *Store) broadcast(cmd Command) {
	s.mu.Lock()
	switch cmd {
	case Play:
		s.playTrigger++
	case Pause:
		s.pauseTrigger++
	case Stop:
		s.stopTrigger++
	}
	ls := s.listenerList()
	s.mu.Unlock()

	for _, l := range ls {
		l.Transport(cmd)
	}
}

// PlayAll broadcasts a play command to every registered unit.
func (s *Store) PlayAll() { s.broadcast(Play) }

// PauseAll broadcasts a pause command to every registered unit.
func (s *Store) PauseAll() { s.broadcast(Pause) }

// StopAll broadcasts a stop command to every registered unit.
func (s *Store) StopAll() { s.broadcast(Stop) }

// SetMasterVolume sets the master gain, clamped to [0, 1], and notifies
// every unit's volume computation.
func (s *Store) SetMasterVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	s.masterVolume = v
	muted := s.globalMute
	ls := s.listenerList()
	s.mu.Unlock()

	for _, l := range ls {
		l.MixChanged(v, muted)
	}
}

// SetGlobalMute forces silence on every non-visual unit without touching
// their stored local volumes.
func (s *Store) SetGlobalMute(m bool) {
	s.mu.Lock()
	s.globalMute = m
	master := s.masterVolume
	ls := s.listenerList()
	s.mu.Unlock()

	for _, l := range ls {
		l.MixChanged(master, m)
	}
}

// TogglePanels flips the overlay-panels flag and returns the new value.
func (s *Store) TogglePanels() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelsHidden = !s.panelsHidden
	return s.panelsHidden
}

// Items returns a copy of the deck list in deck order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the deck entry with the given deck id.
func (s *Store) Item(deckID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.DeckID == deckID {
			return it, true
		}
	}
	return Item{}, false
}

// MasterVolume returns the current master gain.
func (s *Store) MasterVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.masterVolume
}

// GlobalMute returns the current global mute flag.
func (s *Store) GlobalMute() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalMute
}

// ActiveStageID returns the deck id holding the stage slot, or "".
func (s *Store) ActiveStageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeStageID
}

// ActiveBackgroundID returns the deck id holding the background slot, or "".
func (s *Store) ActiveBackgroundID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBackgroundID
}

// Snapshot returns a copy of the full deck and transport state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:              items,
		MasterVolume:       s.masterVolume,
		GlobalMute:         s.globalMute,
		PlayTrigger:        s.playTrigger,
		PauseTrigger:       s.pauseTrigger,
		StopTrigger:        s.stopTrigger,
		ActiveStageID:      s.activeStageID,
		ActiveBackgroundID: s.activeBackgroundID,
		PanelsHidden:       s.panelsHidden,
	}
}
