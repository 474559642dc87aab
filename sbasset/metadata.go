package sbasset

import "github.com/starfall/sbon"

// Metadata is the archive's advisory information, projected from the
// top-level metadata map. Every field is optional: a key that is absent or
// holds an unexpected shape leaves the field at its zero value. Metadata
// never blocks access to file contents.
type Metadata struct {
	InternalName string   `json:"name,omitempty"`
	FriendlyName string   `json:"friendlyName,omitempty"`
	Author       string   `json:"author,omitempty"`
	Description  string   `json:"description,omitempty"`
	SteamID      string   `json:"steamContentId,omitempty"`
	Tags         string   `json:"tags,omitempty"`
	Version      string   `json:"version,omitempty"`
	Link         string   `json:"link,omitempty"`
	Includes     []string `json:"includes,omitempty"`
	Requires     []string `json:"requires,omitempty"`
}

// metadataFromMap leniently projects the raw metadata map. Indexing a Go
// map with a missing key yields the zero Dynamic (null), so the accessors
// uniformly report absence for missing and mis-shaped values alike.
func metadataFromMap(m map[string]sbon.Dynamic) Metadata {
	str := func(key string) string {
		s, _ := m[key].AsString()
		return s
	}
	strList := func(key string) []string {
		l, _ := m[key].AsStringList()
		return l
	}
	return Metadata{
		InternalName: str("name"),
		FriendlyName: str("friendlyName"),
		Author:       str("author"),
		Description:  str("description"),
		SteamID:      str("steamContentId"),
		Tags:         str("tags"),
		Version:      str("version"),
		Link:         str("link"),
		Includes:     strList("includes"),
		Requires:     strList("requires"),
	}
}
