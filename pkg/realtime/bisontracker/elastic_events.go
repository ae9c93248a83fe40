package bisontracker

import (
	"fmt"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/elastic_client"
)

type ResolutionMissEvent struct {
	Timestamp time.Time

	Family     string
	FailReason string

	TripKey            string
	DataOwnerCode      bison.DataOwnerCode
	LinePlanningNumber string
	OperatingDay       string
	JourneyNumber      int
}

// ElasticMissRecorder indexes resolution misses into a weekly index. Nothing is recorded
// when Elasticsearch is not configured.
type ElasticMissRecorder struct{}

func (ElasticMissRecorder) RecordMiss(event *ResolutionMissEvent) {
	yearNumber, weekNumber := event.Timestamp.ISOWeek()
	indexName := fmt.Sprintf("bison-resolution-events-%d-%d", yearNumber, weekNumber)

	elastic_client.IndexDocument(indexName, event)
}
