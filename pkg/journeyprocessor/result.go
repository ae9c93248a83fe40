package journeyprocessor

import (
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
)

// Outcome is the kind of result of applying a report to a journey. Everything but
// OutcomeOK is an expected condition that produces no output.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTooOld
	OutcomeStopNotFound
	OutcomeTooEarly
	OutcomeUnknownType
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTooOld:
		return "too_old"
	case OutcomeStopNotFound:
		return "stop_not_found"
	case OutcomeTooEarly:
		return "too_early"
	case OutcomeUnknownType:
		return "unknown_type"
	default:
		return "invalid"
	}
}

// ChangedPasstime is the new expectation for one call, exported to KV78turbo consumers.
type ChangedPasstime struct {
	TripKey            string              `json:"trip_key"`
	DataOwnerCode      bison.DataOwnerCode `json:"dataownercode"`
	LinePlanningNumber string              `json:"lineplanningnumber"`
	OperatingDay       string              `json:"operatingday"`
	JourneyNumber      int                 `json:"journeynumber"`

	UserStopCode          string         `json:"userstopcode"`
	StopSequence          int            `json:"stopsequence"`
	ExpectedArrivalTime   time.Time      `json:"expected_arrival_time"`
	ExpectedDepartureTime time.Time      `json:"expected_departure_time"`
	TripStopStatus        TripStopStatus `json:"tripstopstatus"`
	LastUpdate            time.Time      `json:"last_update"`
}

type ServiceStatus string

const (
	ServiceStatusCancelled ServiceStatus = "CANCELLED"
	ServiceStatusRestored  ServiceStatus = "RESTORED"
	ServiceStatusShortened ServiceStatus = "SHORTENED"
)

// ServiceInfo describes a trip level service change, exported to ARNU consumers.
type ServiceInfo struct {
	TripKey            string              `json:"trip_key"`
	TripID             string              `json:"trip_id"`
	DataOwnerCode      bison.DataOwnerCode `json:"dataownercode"`
	LinePlanningNumber string              `json:"lineplanningnumber"`
	OperatingDay       string              `json:"operatingday"`
	JourneyNumber      int                 `json:"journeynumber"`

	Status        ServiceStatus `json:"status"`
	UserStopCodes []string      `json:"userstopcodes,omitempty"`
	ReasonType    string        `json:"reasontype,omitempty"`
	SubReasonType string        `json:"subreasontype,omitempty"`
	ReasonContent string        `json:"reasoncontent,omitempty"`
	AdviceContent string        `json:"advicecontent,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// UpdateResult bundles the optional outputs of applying a report.
type UpdateResult struct {
	Outcome          Outcome
	ChangedPasstimes []ChangedPasstime
	ServiceInfo      *ServiceInfo
	TripUpdate       *gtfs.TripUpdate
}
