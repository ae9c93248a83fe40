package bisontracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPositionsPrimaryEnd(t *testing.T) {
	journey := testJourney("2024-03-01", bison.DataOwnerARR, 1)
	tracker := newTestTracker(journey)

	tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
		testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow),
		testPosinfo(journey, bison.KV6PosinfoOnRoute, 2, testNow),
	})
	require.Equal(t, 2, tracker.vehiclePositions.Len())

	tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
		testPosinfo(journey, bison.KV6PosinfoEnd, 0, testNow),
	})

	assert.True(t, tracker.vehiclePositions.lastUpdate().IsDeleted(journey.Key))
	assert.Equal(t, []string{journey.Key + ":2"}, tracker.vehiclePositions.IDs())

	state, ok := tracker.Registry.Get(journey.Key)
	require.True(t, ok)
	assert.Nil(t, state.Primary)
	assert.Equal(t, []int{2}, state.ReinforcementNumbers())
	assert.Equal(t, 1, tracker.Registry.Len())
	// the END report of the primary vehicle is still matched
	assert.Equal(t, 2, tracker.matcher.positions)
}

func TestProcessPositionsScheduleHorizon(t *testing.T) {
	tests := []struct {
		name     string
		fromDate time.Time
		misses   int
	}{
		{
			name:     "before first operating day",
			fromDate: time.Date(2024, 3, 1, 0, 0, 0, 0, bison.Location),
			misses:   0,
		},
		{
			name:     "within schedule",
			fromDate: time.Date(2024, 2, 1, 0, 0, 0, 0, bison.Location),
			misses:   1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			journey := testJourney("2024-02-20", bison.DataOwnerARR, 1)
			tracker := newTestTracker()
			tracker.lookup.fromDate = test.fromDate

			tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
				testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow),
			})

			assert.Len(t, tracker.misses.events, test.misses)
			assert.Equal(t, 0, tracker.Registry.Len())
			assert.Equal(t, 0, tracker.vehiclePositions.updateCount())
		})
	}

	t.Run("configured first operating day", func(t *testing.T) {
		journey := testJourney("2024-02-20", bison.DataOwnerARR, 1)
		tracker := newTestTracker()
		fromDate := time.Date(2024, 3, 1, 0, 0, 0, 0, bison.Location)
		tracker.Settings.FromDate = &fromDate

		tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
			testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow),
		})

		assert.Empty(t, tracker.misses.events)
	})
}

func TestProcessPositionsOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome journeyprocessor.Outcome
		err     error
	}{
		{name: "unknown type", outcome: journeyprocessor.OutcomeUnknownType},
		{name: "too old", outcome: journeyprocessor.OutcomeTooOld},
		{name: "stop not found", outcome: journeyprocessor.OutcomeStopNotFound},
		{name: "too early", outcome: journeyprocessor.OutcomeTooEarly},
		{name: "matcher error", err: errors.New("progress corrupted")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			journey := testJourney("2024-03-01", bison.DataOwnerARR, 1)
			tracker := newTestTracker(journey)
			tracker.matcher.outcome = test.outcome
			tracker.matcher.err = test.err

			tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
				testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow),
			})

			assert.Equal(t, 1, tracker.matcher.positions)
			assert.Equal(t, 0, tracker.tripUpdates.updateCount())

			_, ok := tracker.vehiclePositions.Entity(journey.Key)
			assert.True(t, ok)

			state, ok := tracker.Registry.Get(journey.Key)
			require.True(t, ok)
			assert.NotNil(t, state.Primary)
		})
	}
}

func TestProcessPositionsRecoversFromPanic(t *testing.T) {
	failing := testJourney("2024-03-01", bison.DataOwnerARR, 1)
	following := testJourney("2024-03-01", bison.DataOwnerARR, 2)
	tracker := newTestTracker(failing, following)
	tracker.matcher.panicJourney = failing.JourneyNumber

	tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
		testPosinfo(failing, bison.KV6PosinfoOnRoute, 0, testNow),
		testPosinfo(following, bison.KV6PosinfoOnRoute, 0, testNow),
	})

	assert.Equal(t, 2, tracker.matcher.positions)
	assert.Equal(t, []string{following.Key}, tracker.tripUpdates.IDs())

	_, ok := tracker.vehiclePositions.Entity(following.Key)
	assert.True(t, ok)

	// the trip lock is released when the matcher panics
	state, ok := tracker.Registry.Get(failing.Key)
	require.True(t, ok)
	state.Lock()
	state.Unlock()
}

func TestProcessPositionsMissingDataOwner(t *testing.T) {
	journey := testJourney("2024-03-01", bison.DataOwnerARR, 1)
	tracker := newTestTracker(journey)

	posinfo := testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow)
	posinfo.DataOwnerCode = ""

	_, err := posinfo.TripKey()
	require.ErrorIs(t, err, bison.ErrMissingDataOwner)

	tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{posinfo})

	assert.Empty(t, tracker.lookup.resolvedTrips)
	assert.Empty(t, tracker.misses.events)
	assert.Equal(t, 0, tracker.Registry.Len())
	assert.Equal(t, 0, tracker.vehiclePositions.updateCount())
	assert.Equal(t, 0, tracker.matcher.positions)
}

func TestProcessPositionsResolvesBeforeGate(t *testing.T) {
	expired := testJourney("2024-03-01", bison.DataOwnerARR, 1)
	expired.EndEpoch = testNow.Add(-2 * time.Hour).Unix()
	fresh := testJourney("2024-03-01", bison.DataOwnerARR, 2)
	tracker := newTestTracker(expired, fresh)

	tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
		testPosinfo(expired, bison.KV6PosinfoOnRoute, 0, testNow),
	})
	require.Equal(t, 1, tracker.Registry.Len())

	resolving := make(chan struct{})
	release := make(chan struct{})
	tracker.lookup.resolveHook = func(tripKey string) {
		if tripKey == fresh.Key {
			close(resolving)
			<-release
		}
	}

	processed := make(chan struct{})
	go func() {
		tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
			testPosinfo(expired, bison.KV6PosinfoOnRoute, 0, testNow),
			testPosinfo(fresh, bison.KV6PosinfoOnRoute, 0, testNow),
		})
		close(processed)
	}()
	<-resolving

	collected := make(chan struct{})
	go func() {
		tracker.CollectGarbage(context.Background())
		close(collected)
	}()

	select {
	case <-collected:
	case <-time.After(time.Second):
		close(release)
		t.Fatal("garbage collection waited for a trip lookup")
	}

	close(release)
	<-processed

	_, ok := tracker.Registry.Get(expired.Key)
	assert.False(t, ok)
	_, ok = tracker.Registry.Get(fresh.Key)
	assert.True(t, ok)

	// the report of the trip expired in between is dropped
	_, ok = tracker.vehiclePositions.Entity(expired.Key)
	assert.False(t, ok)
	_, ok = tracker.tripUpdates.Entity(expired.Key)
	assert.False(t, ok)

	_, ok = tracker.vehiclePositions.Entity(fresh.Key)
	assert.True(t, ok)
}

func TestProcessPositionsConcurrentWithGarbageCollection(t *testing.T) {
	journey := testJourney("2024-03-01", bison.DataOwnerARR, 1)
	journey.EndEpoch = testNow.Add(-2 * time.Hour).Unix()
	tracker := newTestTracker(journey)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for range 50 {
			tracker.ProcessPositions(context.Background(), []*bison.KV6Posinfo{
				testPosinfo(journey, bison.KV6PosinfoOnRoute, 0, testNow),
				testPosinfo(journey, bison.KV6PosinfoOnRoute, 2, testNow),
			})
		}
	}()

	go func() {
		defer wg.Done()
		for range 50 {
			tracker.CollectGarbage(context.Background())
		}
	}()

	wg.Wait()

	// a position is only ever published for a registered trip
	_, registered := tracker.Registry.Get(journey.Key)
	_, positioned := tracker.vehiclePositions.Entity(journey.Key)
	_, reinforced := tracker.vehiclePositions.Entity(journey.Key + ":2")
	_, updated := tracker.tripUpdates.Entity(journey.Key)
	assert.Equal(t, registered, positioned)
	assert.Equal(t, registered, reinforced)
	assert.Equal(t, registered, updated)

	tracker.CollectGarbage(context.Background())

	assert.Equal(t, 0, tracker.Registry.Len())
	assert.Equal(t, 0, tracker.vehiclePositions.Len())
	assert.Equal(t, 0, tracker.tripUpdates.Len())
}
