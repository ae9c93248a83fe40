package journeyprocessor

import (
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
)

type TripStopStatus string

const (
	TripStopStatusPlanned   TripStopStatus = "PLANNED"
	TripStopStatusDriving   TripStopStatus = "DRIVING"
	TripStopStatusArrived   TripStopStatus = "ARRIVED"
	TripStopStatusPassed    TripStopStatus = "PASSED"
	TripStopStatusCancelled TripStopStatus = "CANCEL"
	TripStopStatusUnknown   TripStopStatus = "UNKNOWN"
)

// StopProgress holds the realtime state of one call of a journey.
type StopProgress struct {
	Cancelled bool `json:"cancelled"`
	// Lag is the minimum departure delay in seconds announced through KV17.
	Lag                     int  `json:"lag"`
	TargetArrivalOverride   *int `json:"target_arrival_override,omitempty"`
	TargetDepartureOverride *int `json:"target_departure_override,omitempty"`

	ExpectedArrival   time.Time      `json:"expected_arrival"`
	ExpectedDeparture time.Time      `json:"expected_departure"`
	Status            TripStopStatus `json:"status"`
}

// Progress is the realtime state of one journey. It is owned by the trip state and must
// only be touched while the trip state is locked.
type Progress struct {
	LastTimestamp time.Time `json:"last_timestamp"`
	// StopIndex is the index of the last call the vehicle reached, -1 before departure.
	StopIndex     int  `json:"stop_index"`
	AtStop        bool `json:"at_stop"`
	Finished      bool `json:"finished"`
	Punctuality   int  `json:"punctuality"`
	VehicleNumber int  `json:"vehicle_number"`

	Cancelled bool `json:"cancelled"`
	Unknown   bool `json:"unknown"`

	Stops []StopProgress `json:"stops"`
}

func NewProgress(journey *ridservice.Journey) *Progress {
	return &Progress{
		StopIndex: -1,
		Stops:     make([]StopProgress, len(journey.Stops)),
	}
}

func (p *Progress) hasReport() bool {
	return !p.LastTimestamp.IsZero()
}

func (p *Progress) ensureStops(journey *ridservice.Journey) {
	if len(p.Stops) != len(journey.Stops) {
		p.Stops = make([]StopProgress, len(journey.Stops))
	}
}
