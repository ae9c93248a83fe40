package tripregistry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	journeys map[string]*ridservice.Journey
	lookups  atomic.Int64
}

func (f *fakeResolver) ResolveTrip(ctx context.Context, tripKey string) (*ridservice.Journey, error) {
	f.lookups.Add(1)

	journey, ok := f.journeys[tripKey]
	if !ok {
		return nil, ridservice.ErrJourneyNotFound
	}
	return journey, nil
}

const tripKey = "2024-03-01:ARR:15002:1133"

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		journeys: map[string]*ridservice.Journey{
			tripKey: {Key: tripKey, OperatingDay: "2024-03-01", Stops: []ridservice.JourneyStop{{UserStopCode: "A"}}},
		},
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	resolver := newFakeResolver()
	registry := New(resolver)

	const callers = 64
	states := make([]*TripState, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			state, err := registry.GetOrCreate(context.Background(), tripKey)
			assert.NoError(t, err)
			states[i] = state
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, registry.Len())
	stored, ok := registry.Get(tripKey)
	require.True(t, ok)
	for _, state := range states {
		assert.Same(t, stored, state)
	}
	assert.GreaterOrEqual(t, resolver.lookups.Load(), int64(1))
}

func TestGetOrCreateMiss(t *testing.T) {
	registry := New(newFakeResolver())

	state, err := registry.GetOrCreate(context.Background(), "2024-03-01:ARR:1:1")
	assert.ErrorIs(t, err, ridservice.ErrJourneyNotFound)
	assert.Nil(t, state)
	assert.Equal(t, 0, registry.Len())
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	resolver := newFakeResolver()
	registry := New(resolver)

	first, err := registry.GetOrCreate(context.Background(), tripKey)
	require.NoError(t, err)
	second, err := registry.GetOrCreate(context.Background(), tripKey)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), resolver.lookups.Load())
	assert.Len(t, first.Progress.Stops, 1)
}

func TestRemoveAndSnapshot(t *testing.T) {
	resolver := newFakeResolver()
	resolver.journeys["2024-03-01:ARR:15002:1"] = &ridservice.Journey{Key: "2024-03-01:ARR:15002:1"}
	registry := New(resolver)

	_, err := registry.GetOrCreate(context.Background(), tripKey)
	require.NoError(t, err)
	_, err = registry.GetOrCreate(context.Background(), "2024-03-01:ARR:15002:1")
	require.NoError(t, err)

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "2024-03-01:ARR:15002:1", snapshot[0].Key)

	assert.True(t, registry.Remove(tripKey))
	assert.False(t, registry.Remove(tripKey))
	assert.Equal(t, 1, registry.Len())
}

func TestTripStatePositions(t *testing.T) {
	state := newTripState(tripKey, &ridservice.Journey{Key: tripKey})

	state.Lock()
	defer state.Unlock()

	state.SetPosition(&bison.KV6Posinfo{ReinforcementNumber: 0})
	state.SetPosition(&bison.KV6Posinfo{ReinforcementNumber: 3})
	state.SetPosition(&bison.KV6Posinfo{ReinforcementNumber: 2})

	assert.NotNil(t, state.Primary)
	assert.Equal(t, []int{2, 3}, state.ReinforcementNumbers())

	assert.True(t, state.RemoveReinforcement(2))
	assert.False(t, state.RemoveReinforcement(2))
	assert.Equal(t, []int{3}, state.ReinforcementNumbers())

	state.ClearPrimary()
	assert.Nil(t, state.Primary)
}

func TestExpireReinforcement(t *testing.T) {
	state := newTripState(tripKey, &ridservice.Journey{Key: tripKey})

	state.Lock()
	defer state.Unlock()

	assert.False(t, state.ExpireReinforcement(4))

	state.SetPosition(&bison.KV6Posinfo{ReinforcementNumber: 4})
	assert.True(t, state.ExpireReinforcement(4))
	assert.False(t, state.ExpireReinforcement(4))
	assert.Equal(t, []int{4}, state.ReinforcementNumbers())

	state.SetPosition(&bison.KV6Posinfo{ReinforcementNumber: 4})
	assert.True(t, state.ExpireReinforcement(4))
}
