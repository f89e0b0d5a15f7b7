package models

import "strings"

// MetadataKeyPrefix is the path-style identifier namespace used by a Plex
// server for library items.
const MetadataKeyPrefix = "/library/metadata/"

// WatchlistItem is one entry of an account's watchlist. Items carry two
// identifier namespaces that may refer to the same entry: a server-scoped
// path key and a provider-scoped GUID.
type WatchlistItem struct {
	RatingKey string `json:"ratingKey"`
	Key       string `json:"key"`
	GUID      string `json:"guid"`
	Title     string `json:"title"`
}

// Matches reports whether id (already normalized) identifies this item,
// accepting a match on either the path key or the GUID.
func (w WatchlistItem) Matches(id string) bool {
	return id != "" && (w.Key == id || w.GUID == id)
}

// NormalizeItemID canonicalizes an externally supplied identifier:
// a bare numeric rating key becomes a path-style metadata key, an already
// prefixed key passes through, and anything else is treated as a GUID.
func NormalizeItemID(raw string) string {
	id := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(id, MetadataKeyPrefix):
		return id
	case isDigits(id):
		return MetadataKeyPrefix + id
	default:
		return id
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
