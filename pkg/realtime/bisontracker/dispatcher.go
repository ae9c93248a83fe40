package bisontracker

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/relay"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Family returns the message family of a topic, or an empty string when it is not handled.
func Family(topic string) string {
	topic = strings.ToLower(topic)

	for _, family := range []string{familyPositions, familyCirculation, familyDisruptions} {
		if strings.HasSuffix(topic, family) {
			return family
		}
	}

	return ""
}

// Dispatch takes envelopes off the queue until the context is done and processes every
// payload as a task on a bounded pool. A full pool blocks the dispatcher.
func (t *Tracker) Dispatch(ctx context.Context, queue *relay.Queue) error {
	workers := pool.New().WithMaxGoroutines(t.Settings.Workers)
	defer workers.Wait()

	for {
		envelope, err := queue.Take(ctx)
		if err != nil {
			return err
		}

		family := Family(envelope.Topic())
		if family == "" {
			log.Warn().Str("topic", envelope.Topic()).Msg("Unknown topic")
			continue
		}

		for _, payload := range envelope.Payloads() {
			payload := payload
			workers.Go(func() {
				t.HandlePayload(ctx, family, payload)
			})
		}
	}
}

// HandlePayload decompresses, parses and processes one payload of a family.
func (t *Tracker) HandlePayload(ctx context.Context, family string, payload []byte) {
	document, err := Decompress(payload)
	if err != nil {
		t.Metrics.ParseFailed(family)
		log.Error().Err(err).Str("family", family).Msg("Failed to decompress payload")
		return
	}

	switch family {
	case familyPositions:
		posinfos, err := bison.ParseKV6(bytes.NewReader(document))
		if err != nil {
			t.Metrics.ParseFailed(family)
			log.Error().Err(err).Str("family", family).Msg("Failed to parse payload")
			return
		}
		t.ProcessPositions(ctx, posinfos)
	case familyCirculation:
		cvlinfos, err := bison.ParseKV17(bytes.NewReader(document))
		if err != nil {
			t.Metrics.ParseFailed(family)
			log.Error().Err(err).Str("family", family).Msg("Failed to parse payload")
			return
		}
		t.ProcessCirculation(ctx, cvlinfos)
	case familyDisruptions:
		messages, err := bison.ParseKV15(bytes.NewReader(document))
		if err != nil {
			t.Metrics.ParseFailed(family)
			log.Error().Err(err).Str("family", family).Msg("Failed to parse payload")
			return
		}
		t.ProcessDisruptions(ctx, messages)
	default:
		log.Warn().Str("family", family).Msg("Unknown family")
		return
	}

	t.Metrics.PayloadProcessed(family)
}

// Decompress gunzips a payload and strips a leading byte order mark. Payloads that are not
// gzip compressed are returned as is.
func Decompress(payload []byte) ([]byte, error) {
	document := payload

	if len(payload) >= 2 && payload[0] == 0x1f && payload[1] == 0x8b {
		gzipDecoder, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer gzipDecoder.Close()

		document, err = io.ReadAll(gzipDecoder)
		if err != nil {
			return nil, err
		}
	}

	return bytes.TrimPrefix(document, byteOrderMark), nil
}
