package selector

import (
	"testing"

	"vjdeck/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.ProcessFiles([]catalog.FileEntry{
		{RelPath: "Ambient/rain.mp3", AbsPath: "/abs/rain.mp3"},
		{RelPath: "Visuals/clip.mp4", AbsPath: "/abs/clip.mp4"},
		{RelPath: "Music/Set1/song.mp3", AbsPath: "/abs/song.mp3"},
		{RelPath: "Music/Set1/other.mp3", AbsPath: "/abs/other.mp3"},
	})
}

func TestFlow_toggle(t *testing.T) {
	cat := testCatalog()
	f := New(cat)
	id := cat.Ambient[0].ID

	if !f.Toggle(id) {
		t.Error("first toggle should select")
	}
	if f.Count() != 1 {
		t.Errorf("count = %d", f.Count())
	}
	if f.Toggle(id) {
		t.Error("second toggle should deselect")
	}
	if f.Count() != 0 {
		t.Errorf("count = %d", f.Count())
	}
}

func TestFlow_select_group_is_additive(t *testing.T) {
	cat := testCatalog()
	f := New(cat)

	f.Toggle(cat.Ambient[0].ID)
	f.SelectGroup(cat.MusicGroups["Set1"])

	if f.Count() != 3 {
		t.Errorf("count = %d, want 3 (union of toggle and group)", f.Count())
	}

	// Selecting the group again must not lose anything.
	f.SelectGroup(cat.MusicGroups["Set1"])
	if f.Count() != 3 {
		t.Errorf("count after reselect = %d", f.Count())
	}
}

func TestFlow_commit_orders_by_category(t *testing.T) {
	cat := testCatalog()
	f := New(cat)

	// Select in reverse order; commit still yields ambient, visuals, music.
	f.Select(cat.Music[0].ID, cat.Visuals[0].ID, cat.Ambient[0].ID)

	got := f.Commit()
	if len(got) != 3 {
		t.Fatalf("committed %d items, want 3", len(got))
	}
	if got[0].Category != catalog.Ambient || got[1].Category != catalog.Visual || got[2].Category != catalog.Music {
		t.Errorf("commit order: %v %v %v", got[0].Category, got[1].Category, got[2].Category)
	}

	// Commit clears the selection.
	if f.Count() != 0 {
		t.Errorf("selection not cleared, count = %d", f.Count())
	}
}

func TestFlow_commit_ignores_unknown_ids(t *testing.T) {
	f := New(testCatalog())
	f.Select("not-a-real-id")
	if got := f.Commit(); len(got) != 0 {
		t.Errorf("committed %v for unknown id", got)
	}
}
