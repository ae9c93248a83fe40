package bisontracker

import (
	"context"
	"errors"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/tripregistry"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/rs/zerolog/log"
)

// RunGarbageCollector sweeps the registry on every interval until the context is done.
func (t *Tracker) RunGarbageCollector(ctx context.Context) {
	ticker := time.NewTicker(t.Settings.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.CollectGarbage(ctx)
		}
	}
}

// CollectGarbage runs the three sweeps once.
func (t *Tracker) CollectGarbage(ctx context.Context) {
	now := t.now()

	t.markUnknown(ctx, now)
	t.expirePositions(ctx, now)
	t.expireTrips(ctx, now)

	t.Metrics.TripsRegistered(t.Registry.Len())
}

// markUnknown flags running trips without a recent position.
func (t *Tracker) markUnknown(ctx context.Context, now time.Time) {
	start := time.Now()

	journeys, err := t.Lookup.ActiveJourneys(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active journeys")
		return
	}

	marked := 0
	for _, journey := range journeys {
		if ctx.Err() != nil {
			return
		}

		if t.markJourneyUnknown(ctx, journey, now) {
			marked++
		}
	}

	t.Metrics.GarbageCollected("unknown", marked, time.Since(start))
	log.Debug().Int("journeys", len(journeys)).Int("marked", marked).Msg("Marked trips without position")
}

func (t *Tracker) markJourneyUnknown(ctx context.Context, journey *ridservice.Journey, now time.Time) (marked bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Str("trip", journey.Key).Msg("Failed to mark trip unknown")
		}
	}()

	state, err := t.Registry.GetOrCreate(ctx, journey.Key)
	if errors.Is(err, ridservice.ErrJourneyNotFound) {
		return false
	} else if err != nil {
		log.Error().Err(err).Str("trip", journey.Key).Msg("Failed to resolve trip")
		return false
	}

	state.Lock()
	defer state.Unlock()

	if state.Primary != nil && !t.isStale(state.Primary, now) {
		return false
	}

	result, err := t.Matcher.MarkUnknown(state.Journey, state.Progress, now)
	if err != nil {
		log.Error().Err(err).Str("trip", state.Key).Msg("Failed to mark trip unknown")
		return false
	}

	t.handleResult(state, result, nil)

	return len(result.ChangedPasstimes) > 0
}

// expirePositions withdraws positions older than the maximum age.
func (t *Tracker) expirePositions(ctx context.Context, now time.Time) {
	start := time.Now()

	t.gate.Lock()
	defer t.gate.Unlock()

	positions := feed.NewIncrementalUpdate()

	for _, state := range t.Registry.Snapshot() {
		if ctx.Err() != nil {
			return
		}

		t.expireTripPositions(state, now, positions)
	}

	t.publish(ctx, t.Feeds.VehiclePositions, positions)
	t.Metrics.GarbageCollected("positions", len(positions.Deleted()), time.Since(start))
}

func (t *Tracker) expireTripPositions(state *tripregistry.TripState, now time.Time, positions *feed.IncrementalUpdate) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Str("trip", state.Key).Msg("Failed to expire positions")
		}
	}()

	state.Lock()
	defer state.Unlock()

	if state.Primary != nil && t.isStale(state.Primary, now) {
		state.ClearPrimary()
		positions.AddDeleted(bison.PositionID(state.Key, 0))
	}

	for _, number := range state.ReinforcementNumbers() {
		if t.isStale(state.Reinforcements[number], now) && state.ExpireReinforcement(number) {
			positions.AddDeleted(bison.PositionID(state.Key, number))
		}
	}
}

// expireTrips removes trips whose service window ended longer than the expiration ago,
// withdrawing their trip update and positions in the same sweep.
func (t *Tracker) expireTrips(ctx context.Context, now time.Time) {
	start := time.Now()

	t.gate.Lock()
	defer t.gate.Unlock()

	tripUpdates := feed.NewIncrementalUpdate()
	positions := feed.NewIncrementalUpdate()
	var expired []string

	threshold := now.Add(-t.Settings.TripExpiration).Unix()

	for _, state := range t.Registry.Snapshot() {
		if ctx.Err() != nil {
			return
		}

		if state.Journey.EndEpoch >= threshold {
			continue
		}

		t.expireTrip(state, tripUpdates, positions)
		expired = append(expired, state.Key)
	}

	if ctx.Err() != nil {
		return
	}

	t.publish(ctx, t.Feeds.TripUpdates, tripUpdates)
	t.publish(ctx, t.Feeds.VehiclePositions, positions)

	for _, tripKey := range expired {
		t.Registry.Remove(tripKey)
	}

	t.Metrics.GarbageCollected("trips", len(expired), time.Since(start))
	if len(expired) > 0 {
		log.Info().Int("expired", len(expired)).Int("registered", t.Registry.Len()).Msg("Expired trips")
	}
}

func (t *Tracker) expireTrip(state *tripregistry.TripState, tripUpdates *feed.IncrementalUpdate, positions *feed.IncrementalUpdate) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Str("trip", state.Key).Msg("Failed to expire trip")
		}
	}()

	state.Lock()
	defer state.Unlock()

	tripUpdates.AddDeleted(state.Key)
	positions.AddDeleted(bison.PositionID(state.Key, 0))
	for _, number := range state.ReinforcementNumbers() {
		positions.AddDeleted(bison.PositionID(state.Key, number))
	}
}

func (t *Tracker) isStale(posinfo *bison.KV6Posinfo, now time.Time) bool {
	return now.Sub(posinfo.Timestamp) > t.Settings.PositionMaxAge
}
