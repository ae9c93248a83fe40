package exporter

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
)

const (
	PasstimesQueueName   = "kv78turbo-passtimes"
	ServiceInfoQueueName = "arnu-serviceinfo"
)

type publisher interface {
	PublishBytes(payload ...[]byte) error
}

// QueueExporter publishes changed passtimes and service info as JSON onto redis queues
// for downstream KV78turbo and ARNU consumers.
type QueueExporter struct {
	PasstimesQueue   publisher
	ServiceInfoQueue publisher
}

func NewQueueExporter(connection rmq.Connection) (*QueueExporter, error) {
	passtimesQueue, err := connection.OpenQueue(PasstimesQueueName)
	if err != nil {
		return nil, err
	}

	serviceInfoQueue, err := connection.OpenQueue(ServiceInfoQueueName)
	if err != nil {
		return nil, err
	}

	return &QueueExporter{
		PasstimesQueue:   passtimesQueue,
		ServiceInfoQueue: serviceInfoQueue,
	}, nil
}

// ExportPasstimes publishes one message per changed passtime.
func (e *QueueExporter) ExportPasstimes(passtimes []journeyprocessor.ChangedPasstime) error {
	payloads := make([][]byte, 0, len(passtimes))
	for _, passtime := range passtimes {
		payload, err := json.Marshal(passtime)
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}

	if len(payloads) == 0 {
		return nil
	}

	return e.PasstimesQueue.PublishBytes(payloads...)
}

func (e *QueueExporter) ExportServiceInfo(serviceInfo *journeyprocessor.ServiceInfo) error {
	payload, err := json.Marshal(serviceInfo)
	if err != nil {
		return err
	}

	return e.ServiceInfoQueue.PublishBytes(payload)
}
