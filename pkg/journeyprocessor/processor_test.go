package journeyprocessor

import (
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocation(t *testing.T) *time.Location {
	location, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return location
}

func clock(hour int, minute int) int {
	return hour*3600 + minute*60
}

func testJourney() *ridservice.Journey {
	return &ridservice.Journey{
		Key:                "2024-03-01:ARR:15002:1133",
		OperatingDay:       "2024-03-01",
		DataOwnerCode:      bison.DataOwnerARR,
		LinePlanningNumber: "15002",
		JourneyNumber:      1133,
		TripID:             "trip-1133",
		RouteID:            "route-15002",
		Stops: []ridservice.JourneyStop{
			{UserStopCode: "A", StopID: "stop-a", StopSequence: 1, TargetArrivalTime: clock(8, 0), TargetDepartureTime: clock(8, 0), IsTimingStop: true},
			{UserStopCode: "B", StopID: "stop-b", StopSequence: 2, TargetArrivalTime: clock(8, 10), TargetDepartureTime: clock(8, 10)},
			{UserStopCode: "C", StopID: "stop-c", StopSequence: 3, TargetArrivalTime: clock(8, 20), TargetDepartureTime: clock(8, 20), IsTimingStop: true},
			{UserStopCode: "D", StopID: "stop-d", StopSequence: 4, TargetArrivalTime: clock(8, 30), TargetDepartureTime: clock(8, 30)},
		},
	}
}

func posinfo(messageType bison.KV6PosinfoType, userStopCode string, punctuality int, timestamp time.Time) *bison.KV6Posinfo {
	return &bison.KV6Posinfo{
		MessageType:        messageType,
		DataOwnerCode:      bison.DataOwnerARR,
		LinePlanningNumber: "15002",
		OperatingDay:       "2024-03-01",
		JourneyNumber:      1133,
		UserStopCode:       userStopCode,
		Timestamp:          timestamp,
		VehicleNumber:      4021,
		Punctuality:        &punctuality,
	}
}

func TestApplyPositionPropagatesDelay(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	progress := NewProgress(journey)

	timestamp := time.Date(2024, 3, 1, 8, 2, 0, 0, location)
	result, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoDeparture, "A", 120, timestamp))
	require.NoError(t, err)

	assert.Equal(t, OutcomeOK, result.Outcome)
	assert.Len(t, result.ChangedPasstimes, 4)
	assert.Equal(t, TripStopStatusPassed, result.ChangedPasstimes[0].TripStopStatus)
	assert.Equal(t, TripStopStatusDriving, result.ChangedPasstimes[1].TripStopStatus)

	require.NotNil(t, result.TripUpdate)
	assert.Equal(t, "trip-1133", result.TripUpdate.GetTrip().GetTripId())
	assert.Equal(t, "20240301", result.TripUpdate.GetTrip().GetStartDate())
	assert.Equal(t, "4021", result.TripUpdate.GetVehicle().GetLabel())
	assert.Equal(t, int32(120), result.TripUpdate.GetDelay())

	stopTimeUpdates := result.TripUpdate.GetStopTimeUpdate()
	require.Len(t, stopTimeUpdates, 3)
	assert.Equal(t, "stop-b", stopTimeUpdates[0].GetStopId())
	assert.Equal(t, int32(120), stopTimeUpdates[0].GetArrival().GetDelay())
	assert.Equal(t, time.Date(2024, 3, 1, 8, 12, 0, 0, location).Unix(), stopTimeUpdates[0].GetArrival().GetTime())
}

func TestApplyPositionClampsEarlinessAtTimingPoints(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	progress := NewProgress(journey)

	result, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoDeparture, "A", -60, time.Date(2024, 3, 1, 7, 59, 0, 0, location)))
	require.NoError(t, err)

	stopTimeUpdates := result.TripUpdate.GetStopTimeUpdate()
	require.Len(t, stopTimeUpdates, 3)
	assert.Equal(t, int32(-60), stopTimeUpdates[0].GetArrival().GetDelay())
	assert.Equal(t, int32(-60), stopTimeUpdates[1].GetArrival().GetDelay())
	assert.Equal(t, int32(0), stopTimeUpdates[1].GetDeparture().GetDelay())
	assert.Equal(t, int32(0), stopTimeUpdates[2].GetArrival().GetDelay())
}

func TestApplyPositionOutcomes(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	timestamp := time.Date(2024, 3, 1, 8, 5, 0, 0, location)

	t.Run("too old", func(t *testing.T) {
		progress := NewProgress(journey)
		_, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoOnRoute, "B", 30, timestamp))
		require.NoError(t, err)

		result, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoOnRoute, "B", 60, timestamp.Add(-time.Second)))
		require.NoError(t, err)
		assert.Equal(t, OutcomeTooOld, result.Outcome)
		assert.Nil(t, result.TripUpdate)
		assert.Equal(t, 30, progress.Punctuality)
	})

	t.Run("stop not found", func(t *testing.T) {
		result, err := processor.ApplyPosition(journey, NewProgress(journey), posinfo(bison.KV6PosinfoArrival, "Z", 0, timestamp))
		require.NoError(t, err)
		assert.Equal(t, OutcomeStopNotFound, result.Outcome)
	})

	t.Run("too early", func(t *testing.T) {
		result, err := processor.ApplyPosition(journey, NewProgress(journey), posinfo(bison.KV6PosinfoOnRoute, "B", TooEarlyPunctuality-1, timestamp))
		require.NoError(t, err)
		assert.Equal(t, OutcomeTooEarly, result.Outcome)
	})

	t.Run("unknown type", func(t *testing.T) {
		result, err := processor.ApplyPosition(journey, NewProgress(journey), posinfo(bison.KV6PosinfoOffRoute, "B", 0, timestamp))
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnknownType, result.Outcome)
	})
}

func TestApplyPositionOnlyReportsChangedPasstimes(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	progress := NewProgress(journey)
	timestamp := time.Date(2024, 3, 1, 8, 5, 0, 0, location)

	first, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoOnRoute, "B", 60, timestamp))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ChangedPasstimes)

	second, err := processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoOnRoute, "B", 60, timestamp.Add(10*time.Second)))
	require.NoError(t, err)
	assert.Empty(t, second.ChangedPasstimes)
	assert.NotNil(t, second.TripUpdate)
}

func TestMarkUnknownIsIdempotent(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	progress := NewProgress(journey)
	now := time.Date(2024, 3, 1, 8, 5, 0, 0, location)

	first, err := processor.MarkUnknown(journey, progress, now)
	require.NoError(t, err)
	require.Len(t, first.ChangedPasstimes, 4)
	for _, passtime := range first.ChangedPasstimes {
		assert.Equal(t, TripStopStatusUnknown, passtime.TripStopStatus)
	}
	assert.True(t, progress.Unknown)

	second, err := processor.MarkUnknown(journey, progress, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, second.ChangedPasstimes)

	_, err = processor.ApplyPosition(journey, progress, posinfo(bison.KV6PosinfoOnRoute, "B", 0, now.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.False(t, progress.Unknown)
}

func TestApplyCirculation(t *testing.T) {
	location := testLocation(t)
	processor := NewProcessor(location)
	journey := testJourney()
	progress := NewProgress(journey)
	timestamp := time.Date(2024, 3, 1, 7, 30, 0, 0, location)

	t.Run("cancel and recover", func(t *testing.T) {
		result, err := processor.ApplyCirculation(journey, progress, []*bison.KV17Cvlinfo{
			{Type: bison.KV17Cancel, Timestamp: timestamp, ReasonType: "1"},
		})
		require.NoError(t, err)
		require.NotNil(t, result.ServiceInfo)
		assert.Equal(t, ServiceStatusCancelled, result.ServiceInfo.Status)
		assert.Equal(t, gtfs.TripDescriptor_CANCELED, result.TripUpdate.GetTrip().GetScheduleRelationship())
		assert.Len(t, result.ChangedPasstimes, 4)

		result, err = processor.ApplyCirculation(journey, progress, []*bison.KV17Cvlinfo{
			{Type: bison.KV17Recover, Timestamp: timestamp.Add(time.Minute)},
		})
		require.NoError(t, err)
		assert.Equal(t, ServiceStatusRestored, result.ServiceInfo.Status)
		assert.Equal(t, gtfs.TripDescriptor_SCHEDULED, result.TripUpdate.GetTrip().GetScheduleRelationship())
	})

	t.Run("lag shorten and change passtimes", func(t *testing.T) {
		result, err := processor.ApplyCirculation(journey, progress, []*bison.KV17Cvlinfo{
			{Type: bison.KV17Lag, Timestamp: timestamp, UserStopCode: "C", LagTime: 300},
			{Type: bison.KV17Shorten, Timestamp: timestamp, UserStopCode: "B"},
			{Type: bison.KV17ChangePasstimes, Timestamp: timestamp, UserStopCode: "D", TargetArrivalTime: "08:40:00", TargetDepartureTime: "08:41:00"},
			{Type: bison.KV17Lag, Timestamp: timestamp, UserStopCode: "unknown", LagTime: 60},
		})
		require.NoError(t, err)

		require.NotNil(t, result.ServiceInfo)
		assert.Equal(t, ServiceStatusShortened, result.ServiceInfo.Status)
		assert.Equal(t, []string{"B"}, result.ServiceInfo.UserStopCodes)

		stopTimeUpdates := result.TripUpdate.GetStopTimeUpdate()
		require.Len(t, stopTimeUpdates, 4)
		assert.Equal(t, gtfs.TripUpdate_StopTimeUpdate_SKIPPED, stopTimeUpdates[1].GetScheduleRelationship())
		assert.Equal(t, int32(300), stopTimeUpdates[2].GetDeparture().GetDelay())
		// the lag at C carries over to the changed passtime at D
		assert.Equal(t, time.Date(2024, 3, 1, 8, 45, 0, 0, location).Unix(), stopTimeUpdates[3].GetArrival().GetTime())
	})

	t.Run("invalid target time", func(t *testing.T) {
		_, err := processor.ApplyCirculation(journey, progress, []*bison.KV17Cvlinfo{
			{Type: bison.KV17ChangePasstimes, Timestamp: timestamp, UserStopCode: "D", TargetArrivalTime: "8h40"},
		})
		assert.Error(t, err)
	})
}

func TestParseTargetTime(t *testing.T) {
	seconds, err := parseTargetTime("25:10:05")
	require.NoError(t, err)
	require.NotNil(t, seconds)
	assert.Equal(t, 25*3600+10*60+5, *seconds)

	seconds, err = parseTargetTime("")
	require.NoError(t, err)
	assert.Nil(t, seconds)
}
