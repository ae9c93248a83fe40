package bisontracker

import (
	"context"
	"errors"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/tripregistry"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const familyCirculation = "kv17cvlinfo"

// ProcessCirculation applies a batch of KV17 mutations. Mutations of one trip are applied
// together in arrival order.
func (t *Tracker) ProcessCirculation(ctx context.Context, cvlinfos []*bison.KV17Cvlinfo) {
	groups := map[string][]*bison.KV17Cvlinfo{}
	var tripKeys []string
	for _, cvlinfo := range cvlinfos {
		tripKey, err := cvlinfo.TripKey()
		if err != nil {
			log.Error().Err(err).Interface("cvlinfo", cvlinfo).Msg("Cannot key KV17 cvlinfo")
			continue
		}

		if _, exists := groups[tripKey]; !exists {
			tripKeys = append(tripKeys, tripKey)
		}
		groups[tripKey] = append(groups[tripKey], cvlinfo)
	}
	slices.Sort(tripKeys)

	var resolved []string
	for _, tripKey := range tripKeys {
		if ctx.Err() != nil {
			return
		}

		if t.resolveCirculationTrip(ctx, tripKey, groups[tripKey]) {
			resolved = append(resolved, tripKey)
		}
	}

	t.gate.RLock()
	defer t.gate.RUnlock()

	tripUpdates := feed.NewIncrementalUpdate()

	for _, tripKey := range resolved {
		if ctx.Err() != nil {
			return
		}

		state, ok := t.Registry.Get(tripKey)
		if !ok {
			log.Debug().Str("trip", tripKey).Msg("KV17 cvlinfo for expired trip")
			continue
		}

		t.processCirculationGroup(state, groups[tripKey], tripUpdates)
	}

	t.publish(ctx, t.Feeds.TripUpdates, tripUpdates)
}

// resolveCirculationTrip registers the trip of the mutations, reporting whether it is scheduled.
func (t *Tracker) resolveCirculationTrip(ctx context.Context, tripKey string, cvlinfos []*bison.KV17Cvlinfo) bool {
	_, err := t.Registry.GetOrCreate(ctx, tripKey)
	if errors.Is(err, ridservice.ErrJourneyNotFound) {
		log.Info().Str("trip", tripKey).Msg("KV17 cvlinfo for unknown trip")

		first := cvlinfos[0]
		t.recordMiss(familyCirculation, tripKey, first.DataOwnerCode, first.LinePlanningNumber, first.OperatingDay, first.JourneyNumber)
		return false
	} else if err != nil {
		log.Error().Err(err).Str("trip", tripKey).Msg("Failed to resolve trip")
		return false
	}

	return true
}

func (t *Tracker) processCirculationGroup(state *tripregistry.TripState, cvlinfos []*bison.KV17Cvlinfo, tripUpdates *feed.IncrementalUpdate) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Str("trip", state.Key).Interface("cvlinfos", cvlinfos).Msg("Failed to process KV17 cvlinfo")
		}
	}()

	state.Lock()
	defer state.Unlock()

	result, err := t.Matcher.ApplyCirculation(state.Journey, state.Progress, cvlinfos)
	if err != nil {
		log.Error().Err(err).Str("trip", state.Key).Interface("cvlinfos", cvlinfos).Msg("Failed to apply KV17 cvlinfo")
		return
	}

	t.Metrics.Outcome(result.Outcome)
	t.handleResult(state, result, tripUpdates)
}
