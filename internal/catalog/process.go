package catalog

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// FileEntry is one file handed over by the folder ingestion boundary: a
// slash-separated path relative to the scanned root, plus the absolute
// path used to read the file later.
type FileEntry struct {
	RelPath string
	AbsPath string
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".mkv": true, ".avi": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true, ".flac": true,
}

func isImage(name string) bool {
	return imageExts[strings.ToLower(path.Ext(name))]
}

func guessType(name string) (MediaType, bool) {
	ext := strings.ToLower(path.Ext(name))
	if videoExts[ext] {
		return Video, true
	}
	if audioExts[ext] {
		return Audio, true
	}
	return "", false
}

// StripExt drops the final extension from a path. This is the key form
// used for sidecar thumbnail lookups, so "music/Foo/bar.mp3" and
// "music/Foo/bar.jpg" meet at "music/Foo/bar".
func StripExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

// ProcessFiles classifies a flat set of files into a Catalog.
//
// Files without a category segment in their path are dropped silently, as
// are files with an unrecognized extension. Image files never become
// playable entries, even inside a category folder; they are indexed as
// sidecar thumbnails keyed by their extension-stripped relative path.
func ProcessFiles(entries []FileEntry) *Catalog {
	c := &Catalog{
		MusicGroups: make(map[string][]MediaFile),
		Thumbnails:  make(map[string]string),
	}

	for _, e := range entries {
		parts := strings.Split(e.RelPath, "/")
		cat, rootIdx, ok := Classify(parts)
		if !ok {
			continue
		}

		relParts := parts[rootIdx+1:]
		relPath := string(cat) + "/" + strings.Join(relParts, "/")
		name := parts[len(parts)-1]

		if isImage(name) {
			c.Thumbnails[StripExt(relPath)] = e.AbsPath
			continue
		}

		mediaType, ok := guessType(name)
		if !ok {
			continue
		}

		id := uuid.NewString()
		item := MediaFile{
			ID:       id,
			Name:     name,
			Path:     e.AbsPath,
			URL:      "/media/" + id,
			Type:     mediaType,
			Category: cat,
			RelPath:  relPath,
		}

		switch cat {
		case Ambient:
			c.Ambient = append(c.Ambient, item)
		case Visual:
			c.Visuals = append(c.Visuals, item)
		case Music:
			group := RootGroup
			if len(relParts) > 1 {
				group = strings.Join(relParts[:len(relParts)-1], "/")
			}
			item.Group = group
			c.Music = append(c.Music, item)
			c.MusicGroups[group] = append(c.MusicGroups[group], item)
		}
	}

	c.reindex()
	return c
}
