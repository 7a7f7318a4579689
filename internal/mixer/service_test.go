package mixer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"vjdeck/internal/catalog"
	"vjdeck/internal/deck"
	"vjdeck/internal/media"
)

type fakeElement struct {
	mu      sync.Mutex
	playing bool
	muted   bool
	closed  bool
	pos     float64
}

func (e *fakeElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	return nil
}

func (e *fakeElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *fakeElement) Seek(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = sec
}

func (e *fakeElement) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *fakeElement) Duration() float64                { return 60 }
func (e *fakeElement) SetGain(float64)                  {}
func (e *fakeElement) SetMuted(m bool)                  { e.mu.Lock(); e.muted = m; e.mu.Unlock() }
func (e *fakeElement) SetOnTick(func(pos, dur float64)) {}
func (e *fakeElement) Close()                           { e.mu.Lock(); e.closed = true; e.mu.Unlock() }

// writeMediaTree lays out a small library on disk. File contents are
// irrelevant; classification runs on paths alone.
func writeMediaTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		"Ambient/rain.mp3",
		"Ambient/rain.jpg",
		"Visuals/clip.mp4",
		"Music/Set1/song.mp3",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestService(t *testing.T) (*Service, map[string]*fakeElement) {
	t.Helper()
	elements := make(map[string]*fakeElement)
	var mu sync.Mutex
	svc := NewServiceWithElements(deck.NewStore(), nil, nil, func(item deck.Item) media.Element {
		el := &fakeElement{}
		mu.Lock()
		elements[item.DeckID] = el
		mu.Unlock()
		return el
	})
	t.Cleanup(svc.Close)
	return svc, elements
}

func allIDs(cat *catalog.Catalog) []string {
	var ids []string
	for _, list := range [][]catalog.MediaFile{cat.Ambient, cat.Visuals, cat.Music} {
		for _, m := range list {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func TestService_LoadFolder_classifies_tree(t *testing.T) {
	svc, _ := newTestService(t)

	cat, err := svc.LoadFolder(writeMediaTree(t))
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}

	if len(cat.Ambient) != 1 || len(cat.Visuals) != 1 || len(cat.Music) != 1 {
		t.Errorf("catalog counts ambient=%d visuals=%d music=%d, want 1/1/1",
			len(cat.Ambient), len(cat.Visuals), len(cat.Music))
	}
	if len(cat.Thumbnails) != 1 {
		t.Errorf("sidecar count = %d, want 1", len(cat.Thumbnails))
	}
	if got := cat.MusicGroups["Set1"]; len(got) != 1 {
		t.Errorf("Set1 group has %d items, want 1", len(got))
	}
}

func TestService_LoadFolder_missing_root(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.LoadFolder("/nonexistent/media"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestService_Import_creates_units(t *testing.T) {
	svc, elements := newTestService(t)
	cat, err := svc.LoadFolder(writeMediaTree(t))
	if err != nil {
		t.Fatal(err)
	}

	added := svc.Import(allIDs(cat))
	if len(added) != 3 {
		t.Fatalf("imported %d items, want 3", len(added))
	}
	// Commit order: ambient, visuals, music.
	if added[0].Category != catalog.Ambient || added[1].Category != catalog.Visual || added[2].Category != catalog.Music {
		t.Errorf("import order: %v %v %v", added[0].Category, added[1].Category, added[2].Category)
	}
	for _, it := range added {
		if elements[it.DeckID] == nil {
			t.Errorf("no element bound for %s", it.Name)
		}
	}
	if got := svc.UnitStatuses(); len(got) != 3 {
		t.Errorf("unit statuses = %d, want 3", len(got))
	}

	// The ambient sidecar became that item's thumbnail URL.
	if added[0].ThumbURL != "/thumbs/ambient/rain" {
		t.Errorf("ambient thumb url = %q", added[0].ThumbURL)
	}

	// Re-importing the same ids is a no-op.
	if again := svc.Import(allIDs(cat)); len(again) != 0 {
		t.Errorf("re-import added %d items", len(again))
	}
}

func TestService_Import_without_catalog(t *testing.T) {
	svc, _ := newTestService(t)
	if added := svc.Import([]string{"anything"}); added != nil {
		t.Errorf("import before load returned %v", added)
	}
}

func TestService_Remove_releases_unit(t *testing.T) {
	svc, elements := newTestService(t)
	cat, _ := svc.LoadFolder(writeMediaTree(t))
	added := svc.Import(allIDs(cat))

	target := added[0]
	if !svc.Remove(target.DeckID) {
		t.Fatal("remove reported failure")
	}
	if !elements[target.DeckID].closed {
		t.Error("removed item's element not released")
	}
	if len(svc.UnitStatuses()) != 2 {
		t.Errorf("unit statuses = %d, want 2", len(svc.UnitStatuses()))
	}
	if svc.Remove(target.DeckID) {
		t.Error("second remove should report failure")
	}
}

func TestService_LoadFolder_clears_deck(t *testing.T) {
	svc, elements := newTestService(t)
	cat, _ := svc.LoadFolder(writeMediaTree(t))
	added := svc.Import(allIDs(cat))

	if _, err := svc.LoadFolder(writeMediaTree(t)); err != nil {
		t.Fatal(err)
	}

	if n := len(svc.Snapshot().Items); n != 0 {
		t.Errorf("deck has %d items after reload, want 0", n)
	}
	for _, it := range added {
		if !elements[it.DeckID].closed {
			t.Errorf("element for %s survived the reload", it.Name)
		}
	}
}

func TestService_MediaPath(t *testing.T) {
	svc, _ := newTestService(t)
	cat, _ := svc.LoadFolder(writeMediaTree(t))

	path, ok := svc.MediaPath(cat.Music[0].ID)
	if !ok {
		t.Fatal("music item not resolvable")
	}
	if filepath.Base(path) != "song.mp3" {
		t.Errorf("resolved path = %q", path)
	}
	if _, ok := svc.MediaPath("unknown"); ok {
		t.Error("unknown id resolved")
	}
}

// Full session walk-through: load, import, stage a clip, run the global
// transport, and verify the stage survives a stop.
func TestService_session_scenario(t *testing.T) {
	svc, elements := newTestService(t)
	cat, err := svc.LoadFolder(writeMediaTree(t))
	if err != nil {
		t.Fatal(err)
	}

	added := svc.Import(allIDs(cat))
	if len(added) != 3 {
		t.Fatalf("imported %d items", len(added))
	}
	clip := added[1] // the visual

	if !svc.ToggleStage(clip.DeckID) {
		t.Fatal("stage toggle reported failure")
	}
	snap := svc.Snapshot()
	if snap.ActiveStageID != clip.DeckID {
		t.Fatalf("stage slot = %q, want %q", snap.ActiveStageID, clip.DeckID)
	}
	if !elements[clip.DeckID].playing {
		t.Error("staged clip not playing")
	}

	// Staging an audio item is refused at the unit level; slot unchanged.
	svc.ToggleStage(added[2].DeckID)
	if got := svc.Snapshot().ActiveStageID; got != clip.DeckID {
		t.Errorf("stage slot moved to %q", got)
	}

	svc.PlayAll()
	for _, st := range svc.UnitStatuses() {
		if st.State != deck.Playing {
			t.Errorf("unit %s state = %s after play all", st.DeckID, st.State)
		}
	}

	svc.SeekUnit(clip.DeckID, 12)
	svc.StopAll()
	for _, st := range svc.UnitStatuses() {
		if st.State != deck.Stopped || st.Position != 0 {
			t.Errorf("unit %s state=%s position=%v after stop all", st.DeckID, st.State, st.Position)
		}
	}
	// Stop is a playback transition, not a stage transition.
	if got := svc.Snapshot().ActiveStageID; got != clip.DeckID {
		t.Errorf("stage slot cleared by stop, got %q", got)
	}

	// Removing the staged clip finally clears the slot.
	svc.Remove(clip.DeckID)
	if got := svc.Snapshot().ActiveStageID; got != "" {
		t.Errorf("stage slot = %q after removal, want empty", got)
	}
}
