// Package selector implements the one-shot import flow: a transient
// selection over the catalog that commits into the deck as a batch.
package selector

import (
	"sync"

	"vjdeck/internal/catalog"
)

// Flow holds a selection of catalog item ids. The selection is scoped to
// one import session and never part of the deck store.
type Flow struct {
	cat *catalog.Catalog

	mu       sync.Mutex
	selected map[string]struct{}
}

// New returns an empty flow over cat.
func New(cat *catalog.Catalog) *Flow {
	return &Flow{
		cat:      cat,
		selected: make(map[string]struct{}),
	}
}

// Toggle flips the selection state of a single id and reports whether it
// is now selected.
func (f *Flow) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.selected[id]; ok {
		delete(f.selected, id)
		return false
	}
	f.selected[id] = struct{}{}
	return true
}

// Select adds the given ids to the selection without removing anything.
func (f *Flow) Select(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.selected[id] = struct{}{}
	}
}

// SelectGroup adds a whole category or subgroup to the selection,
// additively.
func (f *Flow) SelectGroup(items []catalog.MediaFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.selected[it.ID] = struct{}{}
	}
}

// Reset discards the selection without committing anything.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = make(map[string]struct{})
}

// Count returns the number of selected ids.
func (f *Flow) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.selected)
}

// Commit resolves the selection back to catalog records, ambient first,
// then visuals, then music, and clears the selection. Ids not present in
// the catalog are ignored.
func (f *Flow) Commit() []catalog.MediaFile {
	f.mu.Lock()
	selected := f.selected
	f.selected = make(map[string]struct{})
	f.mu.Unlock()

	var out []catalog.MediaFile
	appendSelected := func(list []catalog.MediaFile) {
		for _, it := range list {
			if _, ok := selected[it.ID]; ok {
				out = append(out, it)
			}
		}
	}
	appendSelected(f.cat.Ambient)
	appendSelected(f.cat.Visuals)
	appendSelected(f.cat.Music)
	return out
}
