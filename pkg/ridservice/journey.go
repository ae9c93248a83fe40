package ridservice

import (
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
)

// JourneyStop is one scheduled call of a journey. Target times are seconds since
// midnight of the operating day and may exceed 24 hours for overnight services.
type JourneyStop struct {
	UserStopCode        string `bson:"userstopcode" json:"userstopcode"`
	StopID              string `bson:"stopid" json:"stopid"`
	StopSequence        int    `bson:"stopsequence" json:"stopsequence"`
	TargetArrivalTime   int    `bson:"targetarrivaltime" json:"targetarrivaltime"`
	TargetDepartureTime int    `bson:"targetdeparturetime" json:"targetdeparturetime"`
	IsTimingStop        bool   `bson:"istimingstop" json:"istimingstop"`
	ForBoarding         bool   `bson:"forboarding" json:"forboarding"`
	ForAlighting        bool   `bson:"foralighting" json:"foralighting"`
}

// Journey is the authoritative schedule record of one trip.
type Journey struct {
	Key                string              `bson:"key" json:"key" groups:"basic"`
	OperatingDay       string              `bson:"operatingday" json:"operatingday" groups:"basic"`
	DataOwnerCode      bison.DataOwnerCode `bson:"dataownercode" json:"dataownercode" groups:"basic"`
	LinePlanningNumber string              `bson:"lineplanningnumber" json:"lineplanningnumber" groups:"basic"`
	JourneyNumber      int                 `bson:"journeynumber" json:"journeynumber" groups:"basic"`

	TripID   string `bson:"tripid" json:"tripid" groups:"basic"`
	RouteID  string `bson:"routeid" json:"routeid" groups:"basic"`
	BlockRef string `bson:"blockref" json:"blockref" groups:"basic"`

	DepartureEpoch int64 `bson:"departureepoch" json:"departureepoch" groups:"basic"`
	EndEpoch       int64 `bson:"endepoch" json:"endepoch" groups:"basic"`

	Stops []JourneyStop `bson:"stops" json:"stops" groups:"detailed"`
}

// OperatingDate returns midnight of the operating day in the given location.
func (j *Journey) OperatingDate(location *time.Location) (time.Time, error) {
	return time.ParseInLocation(bison.OperatingDayFormat, j.OperatingDay, location)
}

// IsActive reports whether now lies strictly within the service window.
func (j *Journey) IsActive(now time.Time) bool {
	epoch := now.Unix()
	return j.DepartureEpoch < epoch && j.EndEpoch > epoch
}

// StopIndex returns the index of the call at the user stop, or -1. When a stop is
// visited more than once the passage sequence number selects the occurrence.
func (j *Journey) StopIndex(userStopCode string, passageSequenceNumber int) int {
	seen := 0
	for index, stop := range j.Stops {
		if stop.UserStopCode != userStopCode {
			continue
		}
		if seen == passageSequenceNumber {
			return index
		}
		seen++
	}

	return -1
}
