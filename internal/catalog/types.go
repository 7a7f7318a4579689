package catalog

// Category says where a media file lives in the loaded folder tree.
type Category string

const (
	Ambient Category = "ambient"
	Visual  Category = "visual"
	Music   Category = "music"
)

// MediaType distinguishes audio sources from video sources.
type MediaType string

const (
	Audio MediaType = "audio"
	Video MediaType = "video"
)

// RootGroup is the sentinel group for music files sitting directly under
// the music folder, with no subfolder in between.
const RootGroup = "(Root)"

// MediaFile is a single playable catalog entry. Immutable once created;
// entries live until the whole catalog is replaced by a new folder load.
type MediaFile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Path     string    `json:"-"` // absolute path on disk, never exposed
	URL      string    `json:"url"`
	Type     MediaType `json:"type"`
	Category Category  `json:"category"`
	Group    string    `json:"group,omitempty"`
	RelPath  string    `json:"relPath"`
}

// Catalog is a classified snapshot of a loaded folder tree. It is replaced
// wholesale on reload; nothing mutates it after ProcessFiles returns.
type Catalog struct {
	Ambient []MediaFile
	Visuals []MediaFile
	Music   []MediaFile

	// MusicGroups maps a group name to its ordered music files. Every file
	// in Music appears in exactly one group, matching its Group field.
	MusicGroups map[string][]MediaFile

	// Thumbnails maps an extension-stripped category-relative path to the
	// absolute path of its sidecar image.
	Thumbnails map[string]string

	byID map[string]*MediaFile
}

// LookupByID returns the catalog entry with the given id.
func (c *Catalog) LookupByID(id string) (MediaFile, bool) {
	if m, ok := c.byID[id]; ok {
		return *m, true
	}
	return MediaFile{}, false
}

// Thumbnail returns the sidecar image path for an extension-stripped
// relative path key.
func (c *Catalog) Thumbnail(key string) (string, bool) {
	p, ok := c.Thumbnails[key]
	return p, ok
}

// Len is the number of playable entries across all categories.
func (c *Catalog) Len() int {
	return len(c.Ambient) + len(c.Visuals) + len(c.Music)
}

func (c *Catalog) reindex() {
	c.byID = make(map[string]*MediaFile, c.Len())
	for i := range c.Ambient {
		c.byID[c.Ambient[i].ID] = &c.Ambient[i]
	}
	for i := range c.Visuals {
		c.byID[c.Visuals[i].ID] = &c.Visuals[i]
	}
	for i := range c.Music {
		c.byID[c.Music[i].ID] = &c.Music[i]
	}
}
