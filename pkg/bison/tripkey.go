package bison

import (
	"errors"
	"fmt"
	"time"
)

const OperatingDayFormat = "2006-01-02"

var ErrMissingDataOwner = errors.New("record has no dataownercode")

// TripKey returns the trip level identifier, shared by the trip update entity and the
// position entity of the primary vehicle.
func TripKey(operatingDay string, dataOwner DataOwnerCode, linePlanningNumber string, journeyNumber int) string {
	return fmt.Sprintf("%s:%s:%s:%d", operatingDay, dataOwner, linePlanningNumber, journeyNumber)
}

// PositionID returns the position entity identifier of the vehicle with the given
// reinforcement number. The primary vehicle uses the plain trip key.
func PositionID(tripKey string, reinforcementNumber int) string {
	if reinforcementNumber == 0 {
		return tripKey
	}

	return fmt.Sprintf("%s:%d", tripKey, reinforcementNumber)
}

// TripKey returns the trip key of the report.
func (p *KV6Posinfo) TripKey() (string, error) {
	if p.DataOwnerCode == "" {
		return "", ErrMissingDataOwner
	}

	return TripKey(p.OperatingDay, p.DataOwnerCode, p.LinePlanningNumber, p.JourneyNumber), nil
}

// PositionID returns the position entity identifier for the vehicle of the report.
func (p *KV6Posinfo) PositionID() (string, error) {
	tripKey, err := p.TripKey()
	if err != nil {
		return "", err
	}

	return PositionID(tripKey, p.ReinforcementNumber), nil
}

// OperatingDate parses the operating day of the report in the given location.
func (p *KV6Posinfo) OperatingDate(location *time.Location) (time.Time, error) {
	return time.ParseInLocation(OperatingDayFormat, p.OperatingDay, location)
}

// TripKey returns the trip key the circulation record applies to.
func (c *KV17Cvlinfo) TripKey() (string, error) {
	if c.DataOwnerCode == "" {
		return "", ErrMissingDataOwner
	}

	return TripKey(c.OperatingDay, c.DataOwnerCode, c.LinePlanningNumber, c.JourneyNumber), nil
}
