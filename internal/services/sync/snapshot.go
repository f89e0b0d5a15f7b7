package sync

import (
	"context"
	"fmt"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/plex"
)

// snapshotSectionTypes are the library section kinds searched for
// collections.
var snapshotSectionTypes = map[string]bool{
	"movie": true,
	"show":  true,
}

// SnapshotReader resolves configured collection names to the set of stable
// identifiers of their members.
type SnapshotReader struct {
	server *plex.ServerClient
	logger *events.Logger
}

// NewSnapshotReader creates a snapshot reader.
func NewSnapshotReader(server *plex.ServerClient, logger *events.Logger) *SnapshotReader {
	return &SnapshotReader{
		server: server,
		logger: logger.WithField("component", "snapshot"),
	}
}

// Snapshot returns the union of identifiers in all named collections. For
// each name the first movie or show section containing a collection with
// that exact title wins; later sections are not searched. Names that match
// nothing are logged and skipped. Any media server failure aborts the whole
// snapshot.
func (r *SnapshotReader) Snapshot(ctx context.Context, token string, names []string) (map[string]struct{}, error) {
	sections, err := r.server.Sections(ctx, token)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{})

	for _, name := range names {
		collection, err := r.findCollection(ctx, token, sections, name)
		if err != nil {
			return nil, err
		}
		if collection == nil {
			r.logger.WithField("collection", name).Warn("Collection not found in any library section")
			continue
		}

		items, err := r.server.CollectionItems(ctx, token, collection.RatingKey)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			if id := itemIdentifier(item); id != "" {
				ids[id] = struct{}{}
			}
		}

		r.logger.WithFields(map[string]interface{}{
			"collection": name,
			"items":      len(items),
		}).Debug("Collection snapshotted")
	}

	return ids, nil
}

// findCollection returns the first section's collection titled name, or nil
// when no section has one.
func (r *SnapshotReader) findCollection(ctx context.Context, token string, sections []plex.Directory, name string) (*plex.Metadata, error) {
	for _, section := range sections {
		if !snapshotSectionTypes[section.Type] {
			continue
		}

		collections, err := r.server.Collections(ctx, token, section.Key)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", section.Title, err)
		}

		for i := range collections {
			if collections[i].Title == name {
				return &collections[i], nil
			}
		}
	}
	return nil, nil
}

// itemIdentifier picks the stable identifier for a library item. GUIDs
// survive library rebuilds; the metadata key is the fallback.
func itemIdentifier(item plex.Metadata) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Key
}
