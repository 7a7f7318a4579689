package catalog

import "testing"

func entry(rel string) FileEntry {
	return FileEntry{RelPath: rel, AbsPath: "/abs/" + rel}
}

func TestProcessFiles_music_grouping(t *testing.T) {
	c := ProcessFiles([]FileEntry{
		entry("pack/Music/Foo/bar.mp3"),
		entry("pack/Music/solo.mp3"),
	})

	if len(c.Music) != 2 {
		t.Fatalf("expected 2 music entries, got %d", len(c.Music))
	}

	grouped := c.Music[0]
	if grouped.Category != Music || grouped.Group != "Foo" || grouped.RelPath != "music/Foo/bar.mp3" {
		t.Errorf("grouped file: category=%v group=%q relPath=%q", grouped.Category, grouped.Group, grouped.RelPath)
	}

	root := c.Music[1]
	if root.Group != RootGroup {
		t.Errorf("root-level music file group = %q, want %q", root.Group, RootGroup)
	}

	if len(c.MusicGroups["Foo"]) != 1 || len(c.MusicGroups[RootGroup]) != 1 {
		t.Errorf("music groups = %v", c.MusicGroups)
	}
}

func TestProcessFiles_nested_music_group(t *testing.T) {
	c := ProcessFiles([]FileEntry{entry("Music/A/B/deep.mp3")})
	if len(c.Music) != 1 || c.Music[0].Group != "A/B" {
		t.Fatalf("expected group A/B, got %v", c.Music)
	}
}

func TestProcessFiles_images_become_sidecars_only(t *testing.T) {
	c := ProcessFiles([]FileEntry{
		entry("Ambient/rain.mp3"),
		entry("Ambient/rain.jpg"),
	})

	if len(c.Ambient) != 1 {
		t.Fatalf("expected 1 ambient entry, got %d", len(c.Ambient))
	}
	if p, ok := c.Thumbnail("ambient/rain"); !ok || p != "/abs/Ambient/rain.jpg" {
		t.Errorf("Thumbnail(ambient/rain) = %q, %v", p, ok)
	}
}

func TestProcessFiles_drops_silently(t *testing.T) {
	c := ProcessFiles([]FileEntry{
		entry("notes.txt"),             // no category segment
		entry("Ambient/readme.txt"),    // unrecognized extension
		entry("Visuals/subtitles.srt"), // unrecognized extension
	})
	if c.Len() != 0 || len(c.Thumbnails) != 0 {
		t.Errorf("expected empty catalog, got %d items and %d thumbnails", c.Len(), len(c.Thumbnails))
	}
}

func TestProcessFiles_types_and_lookup(t *testing.T) {
	c := ProcessFiles([]FileEntry{
		entry("Visuals/clip.mp4"),
		entry("Ambient/rain.flac"),
	})

	if len(c.Visuals) != 1 || c.Visuals[0].Type != Video {
		t.Fatalf("visuals = %v", c.Visuals)
	}
	if len(c.Ambient) != 1 || c.Ambient[0].Type != Audio {
		t.Fatalf("ambient = %v", c.Ambient)
	}

	clip := c.Visuals[0]
	got, ok := c.LookupByID(clip.ID)
	if !ok || got.Name != "clip.mp4" {
		t.Errorf("LookupByID: ok=%v got=%v", ok, got)
	}
	if clip.URL != "/media/"+clip.ID {
		t.Errorf("URL = %q", clip.URL)
	}
}
