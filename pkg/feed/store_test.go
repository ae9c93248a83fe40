package feed

import (
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementalUpdateLastOperationWins(t *testing.T) {
	update := NewIncrementalUpdate()
	assert.True(t, update.Empty())

	update.AddUpdated(VehicleEntity("a", &gtfs.VehiclePosition{}))
	update.AddDeleted("a")
	update.AddDeleted("b")
	update.AddUpdated(VehicleEntity("b", &gtfs.VehiclePosition{}))

	assert.False(t, update.Empty())
	assert.Equal(t, []string{"a"}, update.Deleted())
	require.Len(t, update.Updated(), 1)
	assert.Equal(t, "b", update.Updated()[0].GetId())
	assert.True(t, update.IsDeleted("a"))
	assert.False(t, update.IsDeleted("b"))
}

func TestStoreAppliesUpdates(t *testing.T) {
	store := NewStore("vehiclePositions")
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	first := NewIncrementalUpdate()
	first.AddUpdated(VehicleEntity("2024-03-01:ARR:1:2", &gtfs.VehiclePosition{}))
	first.AddUpdated(VehicleEntity("2024-03-01:ARR:1:1", &gtfs.VehiclePosition{}))
	store.HandleIncrementalUpdate(first)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"2024-03-01:ARR:1:1", "2024-03-01:ARR:1:2"}, store.IDs())

	second := NewIncrementalUpdate()
	second.AddDeleted("2024-03-01:ARR:1:1")
	second.AddDeleted("unknown")
	store.HandleIncrementalUpdate(second)

	_, ok := store.Entity("2024-03-01:ARR:1:1")
	assert.False(t, ok)

	message := store.FeedMessage()
	assert.Equal(t, "2.0", message.GetHeader().GetGtfsRealtimeVersion())
	assert.Equal(t, gtfs.FeedHeader_FULL_DATASET, message.GetHeader().GetIncrementality())
	assert.Equal(t, uint64(1700000000), message.GetHeader().GetTimestamp())
	require.Len(t, message.GetEntity(), 1)
	assert.Equal(t, "2024-03-01:ARR:1:2", message.GetEntity()[0].GetId())
}

type recordingSink struct {
	updates []*IncrementalUpdate
}

func (r *recordingSink) HandleIncrementalUpdate(update *IncrementalUpdate) {
	r.updates = append(r.updates, update)
}

func TestPublishIfNotEmpty(t *testing.T) {
	sink := &recordingSink{}

	assert.False(t, PublishIfNotEmpty(sink, NewIncrementalUpdate()))
	assert.Empty(t, sink.updates)

	update := NewIncrementalUpdate()
	update.AddDeleted("x")
	assert.True(t, PublishIfNotEmpty(sink, update))
	assert.Len(t, sink.updates, 1)
}
