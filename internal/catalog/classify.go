package catalog

import "strings"

func matchesCategory(cat Category, segment string) bool {
	switch cat {
	case Ambient:
		return strings.EqualFold(segment, "ambient")
	case Visual:
		return strings.EqualFold(segment, "visual") || strings.EqualFold(segment, "visuals")
	case Music:
		return strings.EqualFold(segment, "music")
	}
	return false
}

// Classify scans path segments for a category folder and returns the
// category together with the index of the matching segment. A file under
// more than one category folder resolves by priority ambient, then visual,
// then music, regardless of where the segments occur in the path. ok is
// false when no segment matches; such files are simply not catalog
// material.
func Classify(segments []string) (cat Category, rootIdx int, ok bool) {
	for _, candidate := range []Category{Ambient, Visual, Music} {
		for i, seg := range segments {
			if matchesCategory(candidate, seg) {
				return candidate, i, true
			}
		}
	}
	return "", -1, false
}
