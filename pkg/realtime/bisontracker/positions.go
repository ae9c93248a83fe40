package bisontracker

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/jinzhu/copier"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/tripregistry"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

const familyPositions = "kv6posinfo"

// resolvedPosition is a report paired with the trip state it applies to.
type resolvedPosition struct {
	state   *tripregistry.TripState
	posinfo *bison.KV6Posinfo
}

// ProcessPositions applies a batch of KV6 reports in arrival order and publishes the
// resulting position and trip update increments. Trips are resolved before the batch
// takes the publication gate so slow lookups never hold up the garbage collector.
func (t *Tracker) ProcessPositions(ctx context.Context, posinfos []*bison.KV6Posinfo) {
	resolved := make([]resolvedPosition, 0, len(posinfos))
	for _, posinfo := range posinfos {
		if ctx.Err() != nil {
			return
		}

		if position, ok := t.resolvePosition(ctx, posinfo); ok {
			resolved = append(resolved, position)
		}
	}

	t.gate.RLock()
	defer t.gate.RUnlock()

	positions := feed.NewIncrementalUpdate()
	tripUpdates := feed.NewIncrementalUpdate()

	for _, position := range resolved {
		if ctx.Err() != nil {
			return
		}

		// the trip may have expired while the batch waited for the gate
		state, ok := t.Registry.Get(position.state.Key)
		if !ok {
			log.Debug().Str("trip", position.state.Key).Msg("KV6 posinfo for expired trip")
			continue
		}

		t.processPosition(state, position.posinfo, positions, tripUpdates)
	}

	t.publish(ctx, t.Feeds.TripUpdates, tripUpdates)
	t.publish(ctx, t.Feeds.VehiclePositions, positions)
}

func (t *Tracker) resolvePosition(ctx context.Context, posinfo *bison.KV6Posinfo) (position resolvedPosition, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Interface("posinfo", posinfo).Msg("Failed to resolve KV6 posinfo")
			ok = false
		}
	}()

	if posinfo.LinePlanningNumber == "" {
		return resolvedPosition{}, false
	}

	state, posinfo := t.resolvePositionTrip(ctx, posinfo)
	if state == nil {
		return resolvedPosition{}, false
	}

	return resolvedPosition{state: state, posinfo: posinfo}, true
}

func (t *Tracker) processPosition(state *tripregistry.TripState, posinfo *bison.KV6Posinfo, positions *feed.IncrementalUpdate, tripUpdates *feed.IncrementalUpdate) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Interface("posinfo", posinfo).Msg("Failed to process KV6 posinfo")
		}
	}()

	state.Lock()
	defer state.Unlock()

	positionID := bison.PositionID(state.Key, posinfo.ReinforcementNumber)

	if posinfo.MessageType == bison.KV6PosinfoEnd {
		if posinfo.IsPrimary() {
			state.ClearPrimary()
		} else {
			state.RemoveReinforcement(posinfo.ReinforcementNumber)
		}
		positions.AddDeleted(positionID)
	} else {
		vehiclePosition := newVehiclePosition(state.Journey, posinfo)
		if vehiclePosition != nil {
			positions.AddUpdated(feed.VehicleEntity(positionID, vehiclePosition))
		}

		if posinfo.IsPrimary() || vehiclePosition != nil {
			state.SetPosition(posinfo)
		}
	}

	// reinforcements are not matched against the schedule
	if !posinfo.IsPrimary() {
		return
	}

	result, err := t.Matcher.ApplyPosition(state.Journey, state.Progress, posinfo)
	if err != nil {
		log.Error().Err(err).Str("trip", state.Key).Interface("posinfo", posinfo).Msg("Failed to apply KV6 posinfo")
		return
	}

	t.Metrics.Outcome(result.Outcome)

	switch result.Outcome {
	case journeyprocessor.OutcomeOK:
		t.handleResult(state, result, tripUpdates)
	case journeyprocessor.OutcomeTooOld:
		log.Info().Str("trip", state.Key).Time("timestamp", posinfo.Timestamp).Msg("KV6 posinfo older than trip progress")
	case journeyprocessor.OutcomeStopNotFound:
		log.Debug().Str("trip", state.Key).Str("userstopcode", posinfo.UserStopCode).Msg("KV6 posinfo stop not on trip")
	case journeyprocessor.OutcomeTooEarly:
		log.Debug().Str("trip", state.Key).Interface("punctuality", posinfo.Punctuality).Msg("KV6 posinfo implausibly early")
	case journeyprocessor.OutcomeUnknownType:
		log.Trace().Str("trip", state.Key).Str("type", string(posinfo.MessageType)).Msg("KV6 posinfo type not matched")
	}
}

// resolvePositionTrip finds the trip state of the report. For the day rollover operator a
// report before the cutoff hour that misses is retried against the previous operating day,
// in which case the corrected report is returned.
func (t *Tracker) resolvePositionTrip(ctx context.Context, posinfo *bison.KV6Posinfo) (*tripregistry.TripState, *bison.KV6Posinfo) {
	tripKey, err := posinfo.TripKey()
	if err != nil {
		log.Error().Err(err).Interface("posinfo", posinfo).Msg("Cannot key KV6 posinfo")
		return nil, posinfo
	}

	state, err := t.Registry.GetOrCreate(ctx, tripKey)
	if err == nil {
		return state, posinfo
	}
	if !errors.Is(err, ridservice.ErrJourneyNotFound) {
		log.Error().Err(err).Str("trip", tripKey).Msg("Failed to resolve trip")
		return nil, posinfo
	}

	operatingDate, err := posinfo.OperatingDate(t.Settings.Location)
	if err != nil {
		log.Error().Err(err).Str("trip", tripKey).Msg("Invalid operating day")
		return nil, posinfo
	}

	if operatingDate.Before(t.fromDate(ctx)) {
		log.Debug().Str("trip", tripKey).Msg("KV6 posinfo before schedule horizon")
		return nil, posinfo
	}

	if posinfo.DataOwnerCode == t.Settings.DayRolloverOperator && t.beforeCutoff(posinfo) {
		var previous bison.KV6Posinfo
		if err := copier.Copy(&previous, posinfo); err != nil {
			log.Error().Err(err).Str("trip", tripKey).Msg("Failed to copy KV6 posinfo")
			return nil, posinfo
		}
		previous.OperatingDay = operatingDate.AddDate(0, 0, -1).Format(bison.OperatingDayFormat)

		previousKey, _ := previous.TripKey()
		state, err := t.Registry.GetOrCreate(ctx, previousKey)
		if err == nil {
			log.Debug().Str("trip", tripKey).Str("corrected", previousKey).Msg("Corrected KV6 operating day")
			return state, &previous
		}
		if !errors.Is(err, ridservice.ErrJourneyNotFound) {
			log.Error().Err(err).Str("trip", previousKey).Msg("Failed to resolve trip")
			return nil, posinfo
		}
	}

	log.Info().Str("trip", tripKey).Msg("KV6 posinfo for unknown trip")
	t.recordMiss(familyPositions, tripKey, posinfo.DataOwnerCode, posinfo.LinePlanningNumber, posinfo.OperatingDay, posinfo.JourneyNumber)

	return nil, posinfo
}

func (t *Tracker) beforeCutoff(posinfo *bison.KV6Posinfo) bool {
	timestamp := posinfo.Timestamp
	if timestamp.IsZero() {
		timestamp = t.now()
	}

	return timestamp.In(t.Settings.Location).Hour() < t.Settings.DayRolloverCutoffHour
}

func (t *Tracker) recordMiss(family string, tripKey string, dataOwnerCode bison.DataOwnerCode, linePlanningNumber string, operatingDay string, journeyNumber int) {
	t.Metrics.ResolutionMiss(family)
	t.Misses.RecordMiss(&ResolutionMissEvent{
		Timestamp:          t.now(),
		Family:             family,
		FailReason:         "NONREF_JOURNEY",
		TripKey:            tripKey,
		DataOwnerCode:      dataOwnerCode,
		LinePlanningNumber: linePlanningNumber,
		OperatingDay:       operatingDay,
		JourneyNumber:      journeyNumber,
	})
}

// newVehiclePosition returns nil for reports without a usable coordinate.
func newVehiclePosition(journey *ridservice.Journey, posinfo *bison.KV6Posinfo) *gtfs.VehiclePosition {
	latitude, longitude, ok := posinfo.Location()
	if !ok {
		return nil
	}

	vehiclePosition := &gtfs.VehiclePosition{
		Trip: &gtfs.TripDescriptor{
			TripId:    proto.String(journey.TripID),
			StartDate: proto.String(strings.ReplaceAll(journey.OperatingDay, "-", "")),
		},
		Vehicle: &gtfs.VehicleDescriptor{
			Label: proto.String(strconv.Itoa(posinfo.VehicleNumber)),
		},
		Position: &gtfs.Position{
			Latitude:  proto.Float32(float32(latitude)),
			Longitude: proto.Float32(float32(longitude)),
		},
		Timestamp: proto.Uint64(uint64(posinfo.Timestamp.Unix())),
	}

	if journey.RouteID != "" {
		vehiclePosition.Trip.RouteId = proto.String(journey.RouteID)
	}

	switch posinfo.MessageType {
	case bison.KV6PosinfoArrival, bison.KV6PosinfoOnStop:
		if index := journey.StopIndex(posinfo.UserStopCode, posinfo.PassageSequenceNumber); index >= 0 {
			vehiclePosition.StopId = proto.String(journey.Stops[index].StopID)
			vehiclePosition.CurrentStatus = gtfs.VehiclePosition_STOPPED_AT.Enum()
		}
	}

	return vehiclePosition
}
