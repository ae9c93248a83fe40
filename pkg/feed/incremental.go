package feed

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"golang.org/x/exp/slices"
)

// IncrementalUpdate is a batch of entity upserts and deletions for one feed stream.
// The last operation recorded for an entity id wins.
type IncrementalUpdate struct {
	updated map[string]*gtfs.FeedEntity
	deleted map[string]struct{}
}

func NewIncrementalUpdate() *IncrementalUpdate {
	return &IncrementalUpdate{
		updated: map[string]*gtfs.FeedEntity{},
		deleted: map[string]struct{}{},
	}
}

func (u *IncrementalUpdate) AddUpdated(entity *gtfs.FeedEntity) {
	id := entity.GetId()

	delete(u.deleted, id)
	u.updated[id] = entity
}

func (u *IncrementalUpdate) AddDeleted(id string) {
	delete(u.updated, id)
	u.deleted[id] = struct{}{}
}

// Updated returns the upserted entities ordered by id.
func (u *IncrementalUpdate) Updated() []*gtfs.FeedEntity {
	entities := make([]*gtfs.FeedEntity, 0, len(u.updated))
	for _, id := range sortedKeys(u.updated) {
		entities = append(entities, u.updated[id])
	}

	return entities
}

// Deleted returns the deleted entity ids in order.
func (u *IncrementalUpdate) Deleted() []string {
	return sortedKeys(u.deleted)
}

func (u *IncrementalUpdate) IsDeleted(id string) bool {
	_, ok := u.deleted[id]
	return ok
}

func (u *IncrementalUpdate) Empty() bool {
	return len(u.updated) == 0 && len(u.deleted) == 0
}

// Sink accepts incremental updates for one feed stream. Each update is applied atomically.
type Sink interface {
	HandleIncrementalUpdate(update *IncrementalUpdate)
}

// PublishIfNotEmpty hands the update to the sink unless it carries nothing.
func PublishIfNotEmpty(sink Sink, update *IncrementalUpdate) bool {
	if update == nil || update.Empty() {
		return false
	}

	sink.HandleIncrementalUpdate(update)
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}
