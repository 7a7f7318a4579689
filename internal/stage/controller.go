// Package stage renders the single exclusive full-screen output slot.
package stage

import (
	"log/slog"
	"sync"

	"vjdeck/internal/deck"
	"vjdeck/internal/media"
)

// listenerKey is the store registration key for the stage controller.
const listenerKey = "stage"

// Controller enforces the exclusivity invariant that at most one deck
// item is the live stage output. It binds and releases media elements as
// the slot changes; the slot's element is always muted because item
// audio, if any, is governed by the item's own playback unit.
type Controller struct {
	store *deck.Store
	bind  func(item deck.Item) media.Element
	log   *slog.Logger

	mu     sync.Mutex
	active string
	el     media.Element
}

// New registers a stage controller on store. bind creates the output
// element for an item taking the slot.
func New(store *deck.Store, bind func(deck.Item) media.Element, log *slog.Logger) *Controller {
	c := &Controller{store: store, bind: bind, log: log}
	store.Register(listenerKey, c)
	return c
}

// Active returns the deck id currently rendered full-screen, or "" when
// the placeholder is showing.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// StageChanged implements deck.Listener. The previous binding is stopped
// and released before the new item is bound and started; losing the slot
// never leaves a dangling element.
func (c *Controller) StageChanged(deckID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deckID == c.active {
		return
	}

	if c.el != nil {
		c.el.Pause()
		c.el.Close()
		c.el = nil
	}
	c.active = deckID
	if deckID == "" {
		return
	}

	item, ok := c.store.Item(deckID)
	if !ok {
		c.active = ""
		return
	}
	el := c.bind(item)
	if el == nil {
		return
	}
	el.SetMuted(true)
	if err := el.Play(); err != nil && c.log != nil {
		c.log.Debug("stage autoplay prevented",
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
	}
	c.el = el
}

// Transport implements deck.Listener. Global transport never drives the
// stage surface directly.
func (c *Controller) Transport(deck.Command) {}

// MixChanged implements deck.Listener. The stage is muted regardless of
// the mix.
func (c *Controller) MixChanged(float64, bool) {}

// Removed implements deck.Listener. Removal of the active item is handled
// through the store clearing the slot.
func (c *Controller) Removed(string) {}

// Close releases the current binding, if any.
func (c *Controller) Close() {
	c.store.Unregister(listenerKey)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.el != nil {
		c.el.Pause()
		c.el.Close()
		c.el = nil
	}
	c.active = ""
}
