package bison

import (
	"time"
)

type KV6PosinfoType string

const (
	KV6PosinfoDelay     KV6PosinfoType = "DELAY"
	KV6PosinfoInit      KV6PosinfoType = "INIT"
	KV6PosinfoArrival   KV6PosinfoType = "ARRIVAL"
	KV6PosinfoOnStop    KV6PosinfoType = "ONSTOP"
	KV6PosinfoDeparture KV6PosinfoType = "DEPARTURE"
	KV6PosinfoOnRoute   KV6PosinfoType = "ONROUTE"
	KV6PosinfoOnPath    KV6PosinfoType = "ONPATH"
	KV6PosinfoOffRoute  KV6PosinfoType = "OFFROUTE"
	KV6PosinfoEnd       KV6PosinfoType = "END"
)

var kv6PosinfoTypes = map[string]KV6PosinfoType{
	"DELAY":     KV6PosinfoDelay,
	"INIT":      KV6PosinfoInit,
	"ARRIVAL":   KV6PosinfoArrival,
	"ONSTOP":    KV6PosinfoOnStop,
	"DEPARTURE": KV6PosinfoDeparture,
	"ONROUTE":   KV6PosinfoOnRoute,
	"ONPATH":    KV6PosinfoOnPath,
	"OFFROUTE":  KV6PosinfoOffRoute,
	"END":       KV6PosinfoEnd,
}

// MaxReinforcementNumber is the largest reinforcement number a KV6 record may carry.
const MaxReinforcementNumber = 99

// KV6Posinfo is a single vehicle position report.
type KV6Posinfo struct {
	MessageType KV6PosinfoType `xml:"-"`

	DataOwnerCode       DataOwnerCode `xml:"dataownercode"`
	LinePlanningNumber  string        `xml:"lineplanningnumber"`
	OperatingDay        string        `xml:"operatingday"`
	JourneyNumber       int           `xml:"journeynumber"`
	ReinforcementNumber int           `xml:"reinforcementnumber"`

	RawTimestamp string    `xml:"timestamp"`
	Timestamp    time.Time `xml:"-"`
	Source       string    `xml:"source"`

	UserStopCode          string `xml:"userstopcode"`
	PassageSequenceNumber int    `xml:"passagesequencenumber"`
	VehicleNumber         int    `xml:"vehiclenumber"`
	BlockCode             int    `xml:"blockcode"`
	WheelchairAccessible  string `xml:"wheelchairaccessible"`
	NumberOfCoaches       int    `xml:"numberofcoaches"`

	Punctuality               *int `xml:"punctuality"`
	RDX                       *int `xml:"rd-x"`
	RDY                       *int `xml:"rd-y"`
	DistanceSinceLastUserStop *int `xml:"distancesincelastuserstop"`
}

// IsPrimary reports whether the position belongs to the primary vehicle of the trip.
func (p *KV6Posinfo) IsPrimary() bool {
	return p.ReinforcementNumber == 0
}

// HasPosition reports whether the record carries a usable RD coordinate.
func (p *KV6Posinfo) HasPosition() bool {
	return p.RDX != nil && p.RDY != nil && *p.RDX > 0 && *p.RDY > 0
}

// Location converts the RD coordinate of the record to WGS84.
func (p *KV6Posinfo) Location() (latitude float64, longitude float64, ok bool) {
	if !p.HasPosition() {
		return 0, 0, false
	}

	latitude, longitude = RDToWGS84(float64(*p.RDX), float64(*p.RDY))
	return latitude, longitude, true
}
