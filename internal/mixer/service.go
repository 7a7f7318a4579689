// Package mixer ties the catalog, the deck, the stage, and thumbnail
// resolution together behind one service and exposes them over HTTP.
package mixer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vjdeck/internal/catalog"
	"vjdeck/internal/deck"
	"vjdeck/internal/media"
	"vjdeck/internal/selector"
	"vjdeck/internal/stage"
	"vjdeck/internal/thumb"
)

const (
	probeTimeout    = 5 * time.Second
	warmConcurrency = 4
)

// ElementFactory creates the playable element backing a deck item.
type ElementFactory func(item deck.Item) media.Element

// clockElements probes each source with ffprobe and backs it with a
// clock-driven element, keeping the server authoritative for positions.
func clockElements(ffprobe string) ElementFactory {
	return func(item deck.Item) media.Element {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return media.NewClockElement(media.ProbeDuration(ctx, ffprobe, item.Path))
	}
}

// Service owns the live mixing model: the loaded catalog, the deck store,
// one playback unit per deck item, the stage controller, and thumbnail
// resolution.
type Service struct {
	store    *deck.Store
	resolver *thumb.Resolver
	log      *slog.Logger
	elements ElementFactory
	stage    *stage.Controller

	mu    sync.Mutex
	cat   *catalog.Catalog
	units map[string]*deck.Unit
}

// NewService returns a service whose playback elements are clock-driven,
// probing durations with the given ffprobe binary.
func NewService(store *deck.Store, resolver *thumb.Resolver, log *slog.Logger, ffprobe string) *Service {
	return NewServiceWithElements(store, resolver, log, clockElements(ffprobe))
}

// NewServiceWithElements constructs a service with an explicit element
// factory. Useful for testing or for plugging in a different playback
// surface.
func NewServiceWithElements(store *deck.Store, resolver *thumb.Resolver, log *slog.Logger, elements ElementFactory) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		log:      log,
		elements: elements,
		units:    make(map[string]*deck.Unit),
	}
	s.stage = stage.New(store, elements, log)
	return s
}

// LoadFolder scans root into a new catalog and replaces the current one
// wholesale. The deck is cleared first so no playback unit outlives the
// media handles it was bound to.
func (s *Service) LoadFolder(root string) (*catalog.Catalog, error) {
	entries, err := catalog.ScanDir(root)
	if err != nil {
		return nil, err
	}
	cat := catalog.ProcessFiles(entries)

	for _, it := range s.store.Items() {
		s.store.RemoveFromDeck(it.DeckID)
	}

	s.mu.Lock()
	s.cat = cat
	s.units = make(map[string]*deck.Unit)
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info("catalog loaded",
			slog.Int("ambient", len(cat.Ambient)),
			slog.Int("visuals", len(cat.Visuals)),
			slog.Int("music", len(cat.Music)),
			slog.Int("thumbnails", len(cat.Thumbnails)))
	}
	return cat, nil
}

// Catalog returns the current catalog, or nil before the first load.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat
}

// Import commits a selection of catalog ids onto the deck. Items already
// on the deck (by original id) are skipped; each new item gets its own
// playback unit. The created deck items are returned in commit order.
func (s *Service) Import(ids []string) []deck.Item {
	s.mu.Lock()
	cat := s.cat
	s.mu.Unlock()
	if cat == nil {
		return nil
	}

	flow := selector.New(cat)
	flow.Select(ids...)
	files := flow.Commit()

	added := s.store.AddToDeck(files, cat.Thumbnail)
	for _, it := range added {
		u := deck.NewUnit(it, s.store, s.elements(it), s.log)
		s.mu.Lock()
		s.units[it.DeckID] = u
		s.mu.Unlock()
	}

	s.warmThumbnails(added, cat)
	return added
}

// warmThumbnails pre-resolves thumbnails for freshly imported items with
// bounded concurrency, so the first deck render does not stall on the
// illustration provider.
func (s *Service) warmThumbnails(items []deck.Item, cat *catalog.Catalog) {
	if s.resolver == nil || len(items) == 0 {
		return
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(warmConcurrency)
	for _, it := range items {
		it := it
		g.Go(func() error {
			s.resolver.Resolve(ctx, it.MediaFile, cat.Thumbnail)
			return nil
		})
	}
	go func() { _ = g.Wait() }()
}

// Remove takes an item off the deck and tears down its unit.
func (s *Service) Remove(deckID string) bool {
	ok := s.store.RemoveFromDeck(deckID)
	s.mu.Lock()
	delete(s.units, deckID)
	s.mu.Unlock()
	return ok
}

func (s *Service) unit(deckID string) *deck.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[deckID]
}

// TogglePlay flips one unit between playing and paused.
func (s *Service) TogglePlay(deckID string) bool {
	u := s.unit(deckID)
	if u == nil {
		return false
	}
	u.Toggle()
	return true
}

// SetLocalVolume sets one unit's 0-100 local volume.
func (s *Service) SetLocalVolume(deckID string, v int) bool {
	u := s.unit(deckID)
	if u == nil {
		return false
	}
	u.SetLocalVolume(v)
	return true
}

// SeekUnit moves one unit's playhead.
func (s *Service) SeekUnit(deckID string, sec float64) bool {
	u := s.unit(deckID)
	if u == nil {
		return false
	}
	u.Seek(sec)
	return true
}

// ToggleStage sends one unit's item to the stage slot or clears it.
func (s *Service) ToggleStage(deckID string) bool {
	u := s.unit(deckID)
	if u == nil {
		return false
	}
	u.ToggleStage()
	return true
}

// UnitStatuses returns every unit's transient state in deck order.
func (s *Service) UnitStatuses() []deck.Status {
	items := s.store.Items()
	out := make([]deck.Status, 0, len(items))
	for _, it := range items {
		if u := s.unit(it.DeckID); u != nil {
			out = append(out, u.Status())
		}
	}
	return out
}

// Thumbnail resolves the display image for a deck item, or nil.
func (s *Service) Thumbnail(ctx context.Context, deckID string) []byte {
	item, ok := s.store.Item(deckID)
	if !ok || s.resolver == nil {
		return nil
	}
	s.mu.Lock()
	cat := s.cat
	s.mu.Unlock()

	var sidecar func(key string) (string, bool)
	if cat != nil {
		sidecar = cat.Thumbnail
	}
	return s.resolver.Resolve(ctx, item.MediaFile, sidecar)
}

// SidecarPath resolves an extension-stripped relative path to the sidecar
// image file registered for it.
func (s *Service) SidecarPath(key string) (string, bool) {
	s.mu.Lock()
	cat := s.cat
	s.mu.Unlock()
	if cat == nil {
		return "", false
	}
	return cat.Thumbnail(key)
}

// MediaPath resolves a catalog id to the absolute file path behind its
// playable URL. Only entries of the current catalog are served; handles
// of a replaced catalog are gone.
func (s *Service) MediaPath(id string) (string, bool) {
	s.mu.Lock()
	cat := s.cat
	s.mu.Unlock()
	if cat == nil {
		return "", false
	}
	m, ok := cat.LookupByID(id)
	if !ok {
		return "", false
	}
	return m.Path, true
}

// Snapshot returns the deck and transport state.
func (s *Service) Snapshot() deck.Snapshot {
	return s.store.Snapshot()
}

// DeckSize returns the number of items on the deck, for metrics gauges.
func (s *Service) DeckSize() int {
	return len(s.store.Items())
}

// PlayAll broadcasts a play command to every unit.
func (s *Service) PlayAll() { s.store.PlayAll() }

// PauseAll broadcasts a pause command to every unit.
func (s *Service) PauseAll() { s.store.PauseAll() }

// StopAll broadcasts a stop command to every unit.
func (s *Service) StopAll() { s.store.StopAll() }

// SetMasterVolume sets the master gain.
func (s *Service) SetMasterVolume(v float64) { s.store.SetMasterVolume(v) }

// SetGlobalMute sets the global mute flag.
func (s *Service) SetGlobalMute(m bool) { s.store.SetGlobalMute(m) }

// SetActiveStageID sets the stage slot directly. The id is not validated;
// callers pass a live deck id or "".
func (s *Service) SetActiveStageID(deckID string) { s.store.SetActiveStageID(deckID) }

// SetActiveBackgroundID sets the background slot directly.
func (s *Service) SetActiveBackgroundID(deckID string) { s.store.SetActiveBackgroundID(deckID) }

// TogglePanels flips the overlay-panels flag and returns the new value.
func (s *Service) TogglePanels() bool { return s.store.TogglePanels() }

// StageActive returns the deck id the stage controller is rendering, or "".
func (s *Service) StageActive() string { return s.stage.Active() }

// Close tears down the stage binding and every playback unit.
func (s *Service) Close() {
	s.stage.Close()
	s.mu.Lock()
	units := s.units
	s.units = make(map[string]*deck.Unit)
	s.mu.Unlock()
	for _, u := range units {
		u.Close()
	}
}
