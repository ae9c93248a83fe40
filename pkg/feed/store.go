package feed

import (
	"sync"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

const gtfsRealtimeVersion = "2.0"

// Store keeps the full dataset of one feed stream and serves snapshots of it.
type Store struct {
	Name string

	mutex     sync.RWMutex
	entities  map[string]*gtfs.FeedEntity
	updatedAt time.Time

	now func() time.Time
}

func NewStore(name string) *Store {
	return &Store{
		Name:     name,
		entities: map[string]*gtfs.FeedEntity{},
		now:      time.Now,
	}
}

func (s *Store) HandleIncrementalUpdate(update *IncrementalUpdate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range update.Deleted() {
		delete(s.entities, id)
	}
	for _, entity := range update.Updated() {
		s.entities[entity.GetId()] = entity
	}

	s.updatedAt = s.now()
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entities)
}

func (s *Store) Entity(id string) (*gtfs.FeedEntity, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entity, ok := s.entities[id]
	return entity, ok
}

// IDs returns the ids of every stored entity in order.
func (s *Store) IDs() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return sortedKeys(s.entities)
}

// FeedMessage builds a full dataset snapshot of the stream.
func (s *Store) FeedMessage() *gtfs.FeedMessage {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	timestamp := s.updatedAt
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	message := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(timestamp.Unix())),
		},
		Entity: make([]*gtfs.FeedEntity, 0, len(s.entities)),
	}

	for _, id := range sortedKeys(s.entities) {
		message.Entity = append(message.Entity, s.entities[id])
	}

	return message
}
