package thumb

import (
	"os"

	"github.com/dhowden/tag"
)

// EmbeddedArtwork returns cover art embedded in an audio file's tags, or
// nil when the file carries none or cannot be read.
func EmbeddedArtwork(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	p := m.Picture()
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	return p.Data
}
