package ridservice

import (
	"context"
	"errors"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
)

var ErrJourneyNotFound = errors.New("journey not found")

// Service resolves BISON identifiers against the schedule database.
type Service interface {
	// ResolveTrip returns ErrJourneyNotFound when the trip key is not a scheduled trip.
	ResolveTrip(ctx context.Context, tripKey string) (*Journey, error)
	ResolveStopIDs(ctx context.Context, dataOwner bison.DataOwnerCode, userStopCode string) ([]string, error)
	ResolveLineIDs(ctx context.Context, dataOwner bison.DataOwnerCode, linePlanningNumber string) ([]string, error)

	// FromDate is the first operating day the schedule database covers.
	FromDate(ctx context.Context) (time.Time, error)
	ActiveJourneys(ctx context.Context, now time.Time) ([]*Journey, error)
	ActiveDisruptions(ctx context.Context, now time.Time) ([]*bison.KV15Message, error)
}
