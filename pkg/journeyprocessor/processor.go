package journeyprocessor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"google.golang.org/protobuf/proto"
)

// TooEarlyPunctuality is the earliest plausible punctuality in seconds.
const TooEarlyPunctuality = -15 * 60

const gtfsDateFormat = "20060102"

// Processor matches position and circulation reports against the schedule of a journey
// and propagates the resulting delay over the remaining calls. It holds no state of its
// own and is safe for concurrent use.
type Processor struct {
	Location *time.Location
}

func NewProcessor(location *time.Location) *Processor {
	return &Processor{Location: location}
}

// ApplyPosition applies a primary vehicle position report.
func (p *Processor) ApplyPosition(journey *ridservice.Journey, progress *Progress, posinfo *bison.KV6Posinfo) (UpdateResult, error) {
	progress.ensureStops(journey)

	switch posinfo.MessageType {
	case bison.KV6PosinfoInit, bison.KV6PosinfoDelay, bison.KV6PosinfoArrival, bison.KV6PosinfoOnStop,
		bison.KV6PosinfoDeparture, bison.KV6PosinfoOnRoute, bison.KV6PosinfoOnPath, bison.KV6PosinfoEnd:
	default:
		return UpdateResult{Outcome: OutcomeUnknownType}, nil
	}

	if progress.hasReport() && posinfo.Timestamp.Before(progress.LastTimestamp) {
		return UpdateResult{Outcome: OutcomeTooOld}, nil
	}

	stopIndex := progress.StopIndex
	atStop := false
	finished := false

	switch posinfo.MessageType {
	case bison.KV6PosinfoInit, bison.KV6PosinfoDelay:
		stopIndex = -1
	case bison.KV6PosinfoEnd:
		stopIndex = len(journey.Stops) - 1
		finished = true
	default:
		index := findStop(journey, progress, posinfo.UserStopCode, posinfo.PassageSequenceNumber)
		if index < 0 {
			return UpdateResult{Outcome: OutcomeStopNotFound}, nil
		}
		stopIndex = index
		atStop = posinfo.MessageType == bison.KV6PosinfoArrival || posinfo.MessageType == bison.KV6PosinfoOnStop
	}

	punctuality := progress.Punctuality
	if posinfo.Punctuality != nil {
		punctuality = *posinfo.Punctuality
	}
	if punctuality < TooEarlyPunctuality {
		return UpdateResult{Outcome: OutcomeTooEarly}, nil
	}

	progress.LastTimestamp = posinfo.Timestamp
	progress.StopIndex = stopIndex
	progress.AtStop = atStop
	progress.Finished = finished
	progress.Punctuality = punctuality
	progress.VehicleNumber = posinfo.VehicleNumber
	progress.Unknown = false

	return p.update(journey, progress, posinfo.Timestamp)
}

// ApplyCirculation applies all circulation records of one journey together.
func (p *Processor) ApplyCirculation(journey *ridservice.Journey, progress *Progress, cvlinfos []*bison.KV17Cvlinfo) (UpdateResult, error) {
	progress.ensureStops(journey)

	var serviceInfo *ServiceInfo
	var timestamp time.Time

	for _, cvlinfo := range cvlinfos {
		if cvlinfo.Timestamp.After(timestamp) {
			timestamp = cvlinfo.Timestamp
		}

		if cvlinfo.IsJourneyMutation() {
			switch cvlinfo.Type {
			case bison.KV17Cancel:
				progress.Cancelled = true
				serviceInfo = newServiceInfo(journey, cvlinfo, ServiceStatusCancelled)
			case bison.KV17Recover:
				progress.Cancelled = false
				serviceInfo = newServiceInfo(journey, cvlinfo, ServiceStatusRestored)
			}
			continue
		}

		index := findStop(journey, progress, cvlinfo.UserStopCode, cvlinfo.PassageSequenceNumber)
		if index < 0 {
			continue
		}
		stop := &progress.Stops[index]

		switch cvlinfo.Type {
		case bison.KV17Shorten:
			stop.Cancelled = true
			if serviceInfo == nil {
				serviceInfo = newServiceInfo(journey, cvlinfo, ServiceStatusShortened)
			}
			if serviceInfo.Status == ServiceStatusShortened {
				serviceInfo.UserStopCodes = append(serviceInfo.UserStopCodes, cvlinfo.UserStopCode)
			}
		case bison.KV17Lag:
			stop.Lag = cvlinfo.LagTime
		case bison.KV17ChangePasstimes:
			arrival, err := parseTargetTime(cvlinfo.TargetArrivalTime)
			if err != nil {
				return UpdateResult{}, err
			}
			departure, err := parseTargetTime(cvlinfo.TargetDepartureTime)
			if err != nil {
				return UpdateResult{}, err
			}
			stop.TargetArrivalOverride = arrival
			stop.TargetDepartureOverride = departure
		}
	}

	if timestamp.IsZero() {
		timestamp = progress.LastTimestamp
	}

	result, err := p.update(journey, progress, timestamp)
	if err != nil {
		return result, err
	}
	result.ServiceInfo = serviceInfo

	return result, nil
}

// MarkUnknown flags a running journey as having no usable position. Repeated calls
// without an intervening report change nothing.
func (p *Processor) MarkUnknown(journey *ridservice.Journey, progress *Progress, now time.Time) (UpdateResult, error) {
	if progress.Unknown || progress.Finished || progress.Cancelled {
		return UpdateResult{Outcome: OutcomeOK}, nil
	}
	progress.ensureStops(journey)
	progress.Unknown = true

	serviceDay, err := serviceDayStart(journey, p.Location)
	if err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{Outcome: OutcomeOK}
	for index := range journey.Stops {
		stopProgress := &progress.Stops[index]
		if stopProgress.Status == TripStopStatusPassed || stopProgress.Cancelled {
			continue
		}

		arrival, departure := targetTimes(journey.Stops[index], stopProgress)
		result.ChangedPasstimes = append(result.ChangedPasstimes, p.recordStop(journey, index, stopProgress,
			serviceDay.Add(time.Duration(arrival)*time.Second),
			serviceDay.Add(time.Duration(departure)*time.Second),
			TripStopStatusUnknown, now)...)
	}

	return result, nil
}

func (p *Processor) update(journey *ridservice.Journey, progress *Progress, timestamp time.Time) (UpdateResult, error) {
	serviceDay, err := serviceDayStart(journey, p.Location)
	if err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{Outcome: OutcomeOK}
	tripUpdate := &gtfs.TripUpdate{
		Trip: &gtfs.TripDescriptor{
			TripId:               proto.String(journey.TripID),
			RouteId:              proto.String(journey.RouteID),
			StartDate:            proto.String(serviceDay.Format(gtfsDateFormat)),
			ScheduleRelationship: gtfs.TripDescriptor_SCHEDULED.Enum(),
		},
		Delay: proto.Int32(int32(progress.Punctuality)),
	}
	if !timestamp.IsZero() {
		tripUpdate.Timestamp = proto.Uint64(uint64(timestamp.Unix()))
	}
	if progress.VehicleNumber > 0 {
		tripUpdate.Vehicle = &gtfs.VehicleDescriptor{
			Label: proto.String(strconv.Itoa(progress.VehicleNumber)),
		}
	}

	if progress.Cancelled {
		tripUpdate.Trip.ScheduleRelationship = gtfs.TripDescriptor_CANCELED.Enum()
		tripUpdate.Delay = nil

		for index := range journey.Stops {
			stopProgress := &progress.Stops[index]
			arrival, departure := targetTimes(journey.Stops[index], stopProgress)
			result.ChangedPasstimes = append(result.ChangedPasstimes, p.recordStop(journey, index, stopProgress,
				serviceDay.Add(time.Duration(arrival)*time.Second),
				serviceDay.Add(time.Duration(departure)*time.Second),
				TripStopStatusCancelled, timestamp)...)
		}

		result.TripUpdate = tripUpdate
		return result, nil
	}

	// first call whose times are still predicted
	start := progress.StopIndex + 1
	if progress.StopIndex < 0 {
		start = 0
	} else if progress.AtStop {
		start = progress.StopIndex
	}

	delay := progress.Punctuality
	for index, stop := range journey.Stops {
		stopProgress := &progress.Stops[index]
		arrivalTarget, departureTarget := targetTimes(stop, stopProgress)

		if index < start || progress.Finished {
			// keep the last expectation of calls already passed
			expectedArrival := stopProgress.ExpectedArrival
			expectedDeparture := stopProgress.ExpectedDeparture
			if expectedArrival.IsZero() {
				expectedArrival = serviceDay.Add(time.Duration(arrivalTarget+delay) * time.Second)
				expectedDeparture = serviceDay.Add(time.Duration(departureTarget+delay) * time.Second)
			}
			result.ChangedPasstimes = append(result.ChangedPasstimes, p.recordStop(journey, index, stopProgress,
				expectedArrival, expectedDeparture, TripStopStatusPassed, timestamp)...)
			continue
		}

		arrivalDelay := delay
		departureDelay := delay
		if stop.IsTimingStop && departureDelay < 0 {
			departureDelay = 0
		}
		if stopProgress.Lag > departureDelay {
			departureDelay = stopProgress.Lag
		}

		expectedArrival := serviceDay.Add(time.Duration(arrivalTarget+arrivalDelay) * time.Second)
		expectedDeparture := serviceDay.Add(time.Duration(departureTarget+departureDelay) * time.Second)
		if expectedDeparture.Before(expectedArrival) {
			expectedDeparture = expectedArrival
		}
		delay = int(expectedDeparture.Sub(serviceDay).Seconds()) - departureTarget

		status := TripStopStatusDriving
		switch {
		case stopProgress.Cancelled:
			status = TripStopStatusCancelled
		case index == progress.StopIndex && progress.AtStop:
			status = TripStopStatusArrived
		case !progress.hasReport():
			status = TripStopStatusPlanned
		}

		result.ChangedPasstimes = append(result.ChangedPasstimes, p.recordStop(journey, index, stopProgress,
			expectedArrival, expectedDeparture, status, timestamp)...)

		stopTimeUpdate := &gtfs.TripUpdate_StopTimeUpdate{
			StopSequence: proto.Uint32(uint32(stop.StopSequence)),
		}
		if stop.StopID != "" {
			stopTimeUpdate.StopId = proto.String(stop.StopID)
		}
		if stopProgress.Cancelled {
			stopTimeUpdate.ScheduleRelationship = gtfs.TripUpdate_StopTimeUpdate_SKIPPED.Enum()
		} else {
			stopTimeUpdate.ScheduleRelationship = gtfs.TripUpdate_StopTimeUpdate_SCHEDULED.Enum()
			stopTimeUpdate.Arrival = &gtfs.TripUpdate_StopTimeEvent{
				Delay: proto.Int32(int32(expectedArrival.Sub(serviceDay.Add(time.Duration(stop.TargetArrivalTime) * time.Second)).Seconds())),
				Time:  proto.Int64(expectedArrival.Unix()),
			}
			stopTimeUpdate.Departure = &gtfs.TripUpdate_StopTimeEvent{
				Delay: proto.Int32(int32(expectedDeparture.Sub(serviceDay.Add(time.Duration(stop.TargetDepartureTime) * time.Second)).Seconds())),
				Time:  proto.Int64(expectedDeparture.Unix()),
			}
		}
		tripUpdate.StopTimeUpdate = append(tripUpdate.StopTimeUpdate, stopTimeUpdate)
	}

	result.TripUpdate = tripUpdate
	return result, nil
}

// recordStop stores the new expectation of a call and returns it as a changed passtime
// when it differs from the previous one.
func (p *Processor) recordStop(journey *ridservice.Journey, index int, stopProgress *StopProgress, expectedArrival time.Time, expectedDeparture time.Time, status TripStopStatus, timestamp time.Time) []ChangedPasstime {
	if stopProgress.Status == status &&
		stopProgress.ExpectedArrival.Equal(expectedArrival) &&
		stopProgress.ExpectedDeparture.Equal(expectedDeparture) {
		return nil
	}

	stopProgress.Status = status
	stopProgress.ExpectedArrival = expectedArrival
	stopProgress.ExpectedDeparture = expectedDeparture

	stop := journey.Stops[index]
	return []ChangedPasstime{{
		TripKey:               journey.Key,
		DataOwnerCode:         journey.DataOwnerCode,
		LinePlanningNumber:    journey.LinePlanningNumber,
		OperatingDay:          journey.OperatingDay,
		JourneyNumber:         journey.JourneyNumber,
		UserStopCode:          stop.UserStopCode,
		StopSequence:          stop.StopSequence,
		ExpectedArrivalTime:   expectedArrival,
		ExpectedDepartureTime: expectedDeparture,
		TripStopStatus:        status,
		LastUpdate:            timestamp,
	}}
}

// findStop prefers an occurrence of the stop at or after the current position, so loop
// journeys visiting a stop twice do not move backwards.
func findStop(journey *ridservice.Journey, progress *Progress, userStopCode string, passageSequenceNumber int) int {
	from := progress.StopIndex
	if from < 0 {
		from = 0
	}
	for index := from; index < len(journey.Stops); index++ {
		if journey.Stops[index].UserStopCode == userStopCode {
			return index
		}
	}

	return journey.StopIndex(userStopCode, passageSequenceNumber)
}

func targetTimes(stop ridservice.JourneyStop, stopProgress *StopProgress) (int, int) {
	arrival := stop.TargetArrivalTime
	departure := stop.TargetDepartureTime
	if stopProgress.TargetArrivalOverride != nil {
		arrival = *stopProgress.TargetArrivalOverride
	}
	if stopProgress.TargetDepartureOverride != nil {
		departure = *stopProgress.TargetDepartureOverride
	}

	return arrival, departure
}

// serviceDayStart returns the reference point of schedule times: noon minus twelve hours,
// which is midnight except on days with a DST transition.
func serviceDayStart(journey *ridservice.Journey, location *time.Location) (time.Time, error) {
	date, err := journey.OperatingDate(location)
	if err != nil {
		return time.Time{}, fmt.Errorf("journey %s has invalid operating day: %w", journey.Key, err)
	}

	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, location)
	return noon.Add(-12 * time.Hour), nil
}

// parseTargetTime parses a HH:MM:SS schedule time, hours may exceed 23.
func parseTargetTime(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid target time %q", value)
	}

	seconds := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid target time %q", value)
		}
		seconds = seconds*60 + n
	}

	return &seconds, nil
}

func newServiceInfo(journey *ridservice.Journey, cvlinfo *bison.KV17Cvlinfo, status ServiceStatus) *ServiceInfo {
	return &ServiceInfo{
		TripKey:            journey.Key,
		TripID:             journey.TripID,
		DataOwnerCode:      journey.DataOwnerCode,
		LinePlanningNumber: journey.LinePlanningNumber,
		OperatingDay:       journey.OperatingDay,
		JourneyNumber:      journey.JourneyNumber,
		Status:             status,
		ReasonType:         cvlinfo.ReasonType,
		SubReasonType:      cvlinfo.SubReasonType,
		ReasonContent:      cvlinfo.ReasonContent,
		AdviceContent:      cvlinfo.AdviceContent,
		Timestamp:          cvlinfo.Timestamp,
	}
}
