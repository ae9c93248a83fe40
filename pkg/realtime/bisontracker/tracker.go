package bisontracker

import (
	"context"
	"sync"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/tripregistry"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/rs/zerolog/log"
)

// Matcher applies BISON records to the progress of a journey.
type Matcher interface {
	ApplyPosition(journey *ridservice.Journey, progress *journeyprocessor.Progress, posinfo *bison.KV6Posinfo) (journeyprocessor.UpdateResult, error)
	ApplyCirculation(journey *ridservice.Journey, progress *journeyprocessor.Progress, cvlinfos []*bison.KV17Cvlinfo) (journeyprocessor.UpdateResult, error)
	MarkUnknown(journey *ridservice.Journey, progress *journeyprocessor.Progress, now time.Time) (journeyprocessor.UpdateResult, error)
}

type PasstimeExporter interface {
	ExportPasstimes(passtimes []journeyprocessor.ChangedPasstime) error
}

type ServiceInfoExporter interface {
	ExportServiceInfo(serviceInfo *journeyprocessor.ServiceInfo) error
}

type MissRecorder interface {
	RecordMiss(event *ResolutionMissEvent)
}

// Metrics receives counters about the processing. Every method must be safe for
// concurrent use.
type Metrics interface {
	PayloadProcessed(family string)
	ParseFailed(family string)
	Outcome(outcome journeyprocessor.Outcome)
	ResolutionMiss(family string)
	TripsRegistered(count int)
	GarbageCollected(pass string, deletions int, duration time.Duration)
}

type Settings struct {
	Location *time.Location

	Workers int

	PositionMaxAge time.Duration
	TripExpiration time.Duration
	GCInterval     time.Duration

	// FromDate overrides the first operating day reported by the lookup service.
	FromDate *time.Time

	CommercialExemptOperator bison.DataOwnerCode
	DayRolloverOperator      bison.DataOwnerCode
	DayRolloverCutoffHour    int
}

func DefaultSettings() Settings {
	return Settings{
		Location:                 bison.Location,
		Workers:                  16,
		PositionMaxAge:           2 * time.Minute,
		TripExpiration:           time.Hour,
		GCInterval:               time.Minute,
		CommercialExemptOperator: bison.DataOwnerQBUZZ,
		DayRolloverOperator:      bison.DataOwnerCXX,
		DayRolloverCutoffHour:    7,
	}
}

// Feeds are the three published streams.
type Feeds struct {
	TripUpdates      feed.Sink
	VehiclePositions feed.Sink
	Alerts           feed.Sink
}

type Tracker struct {
	Settings Settings

	Registry *tripregistry.Registry
	Lookup   ridservice.Service
	Matcher  Matcher
	Feeds    Feeds

	Passtimes   PasstimeExporter
	ServiceInfo ServiceInfoExporter
	Misses      MissRecorder
	Metrics     Metrics

	// gate is held shared by batches from their first mutation until publication and
	// exclusively by the expiry passes of the garbage collector. Trip lookups happen
	// before a batch takes it.
	gate sync.RWMutex

	now func() time.Time
}

func NewTracker(settings Settings, lookup ridservice.Service, matcher Matcher, feeds Feeds) *Tracker {
	return &Tracker{
		Settings:    settings,
		Registry:    tripregistry.New(lookup),
		Lookup:      lookup,
		Matcher:     matcher,
		Feeds:       feeds,
		Passtimes:   discardExporter{},
		ServiceInfo: discardExporter{},
		Misses:      discardMisses{},
		Metrics:     noopMetrics{},
		now:         time.Now,
	}
}

// handleResult forwards the outputs of an applied record. The caller holds the trip lock.
func (t *Tracker) handleResult(state *tripregistry.TripState, result journeyprocessor.UpdateResult, tripUpdates *feed.IncrementalUpdate) {
	if len(result.ChangedPasstimes) > 0 {
		if err := t.Passtimes.ExportPasstimes(result.ChangedPasstimes); err != nil {
			log.Error().Err(err).Str("trip", state.Key).Msg("Failed to export passtimes")
		}
	}

	if result.ServiceInfo != nil {
		if err := t.ServiceInfo.ExportServiceInfo(result.ServiceInfo); err != nil {
			log.Error().Err(err).Str("trip", state.Key).Msg("Failed to export service info")
		}
	}

	if result.TripUpdate != nil && tripUpdates != nil {
		tripUpdates.AddUpdated(feed.TripUpdateEntity(state.Key, result.TripUpdate))
	}
}

// publish hands the updates to their sinks unless shutdown has begun.
func (t *Tracker) publish(ctx context.Context, sink feed.Sink, update *feed.IncrementalUpdate) bool {
	if ctx.Err() != nil {
		return false
	}

	return feed.PublishIfNotEmpty(sink, update)
}

func (t *Tracker) fromDate(ctx context.Context) time.Time {
	if t.Settings.FromDate != nil {
		return *t.Settings.FromDate
	}

	fromDate, err := t.Lookup.FromDate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get first operating day")
		return time.Time{}
	}

	return fromDate
}

type discardExporter struct{}

func (discardExporter) ExportPasstimes([]journeyprocessor.ChangedPasstime) error {
	return nil
}

func (discardExporter) ExportServiceInfo(*journeyprocessor.ServiceInfo) error {
	return nil
}

type discardMisses struct{}

func (discardMisses) RecordMiss(*ResolutionMissEvent) {}

type noopMetrics struct{}

func (noopMetrics) PayloadProcessed(string)                     {}
func (noopMetrics) ParseFailed(string)                          {}
func (noopMetrics) Outcome(journeyprocessor.Outcome)            {}
func (noopMetrics) ResolutionMiss(string)                       {}
func (noopMetrics) TripsRegistered(int)                         {}
func (noopMetrics) GarbageCollected(string, int, time.Duration) {}
