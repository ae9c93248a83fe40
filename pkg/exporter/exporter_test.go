package exporter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	payloads [][]byte
}

func (p *recordingPublisher) PublishBytes(payload ...[]byte) error {
	p.payloads = append(p.payloads, payload...)
	return nil
}

func TestExportPasstimes(t *testing.T) {
	passtimes := &recordingPublisher{}
	exporter := &QueueExporter{PasstimesQueue: passtimes, ServiceInfoQueue: &recordingPublisher{}}

	require.NoError(t, exporter.ExportPasstimes([]journeyprocessor.ChangedPasstime{
		{TripKey: "2024-03-01:ARR:15002:1133", UserStopCode: "A", TripStopStatus: journeyprocessor.TripStopStatusPassed},
		{TripKey: "2024-03-01:ARR:15002:1133", UserStopCode: "B", TripStopStatus: journeyprocessor.TripStopStatusDriving},
	}))
	require.Len(t, passtimes.payloads, 2)

	var decoded journeyprocessor.ChangedPasstime
	require.NoError(t, json.Unmarshal(passtimes.payloads[1], &decoded))
	assert.Equal(t, "B", decoded.UserStopCode)
	assert.Equal(t, journeyprocessor.TripStopStatusDriving, decoded.TripStopStatus)

	require.NoError(t, exporter.ExportPasstimes(nil))
	assert.Len(t, passtimes.payloads, 2)
}

func TestExportServiceInfo(t *testing.T) {
	serviceInfo := &recordingPublisher{}
	exporter := &QueueExporter{PasstimesQueue: &recordingPublisher{}, ServiceInfoQueue: serviceInfo}

	require.NoError(t, exporter.ExportServiceInfo(&journeyprocessor.ServiceInfo{
		TripKey:       "2024-03-01:ARR:15002:1133",
		DataOwnerCode: bison.DataOwnerARR,
		Status:        journeyprocessor.ServiceStatusCancelled,
		Timestamp:     time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC),
	}))
	require.Len(t, serviceInfo.payloads, 1)
	assert.Contains(t, string(serviceInfo.payloads[0]), `"status":"CANCELLED"`)
}
