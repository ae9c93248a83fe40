package bisontracker

import (
	"context"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/alerts"
	"github.com/rs/zerolog/log"
)

const familyDisruptions = "kv15messages"

// ProcessDisruptions turns a batch of KV15 messages into one alert increment.
func (t *Tracker) ProcessDisruptions(ctx context.Context, messages []*bison.KV15Message) {
	update := feed.NewIncrementalUpdate()

	for _, message := range messages {
		if ctx.Err() != nil {
			return
		}

		t.processDisruption(ctx, message, update)
	}

	t.publish(ctx, t.Feeds.Alerts, update)
}

func (t *Tracker) processDisruption(ctx context.Context, message *bison.KV15Message, update *feed.IncrementalUpdate) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Interface("kv15message", message).Msg("Failed to process KV15 message")
		}
	}()

	id := message.ID()

	if message.IsDelete {
		update.AddDeleted(id)
		return
	}

	if message.MessagePriority == bison.MessagePriorityCommercial && message.DataOwnerCode != t.Settings.CommercialExemptOperator {
		log.Info().Str("kv15message", id).Str("dataownercode", string(message.DataOwnerCode)).Msg("Ignoring commercial KV15 message")
		return
	}

	alert, err := alerts.Translate(ctx, t.Lookup, message)
	if err != nil {
		log.Error().Err(err).Str("kv15message", id).Msg("Failed to translate KV15 message")
		return
	}

	if len(alert.GetInformedEntity()) == 0 {
		log.Debug().Str("kv15message", id).Msg("KV15 message without resolvable scope")
		return
	}

	update.AddUpdated(feed.AlertEntity(id, alert))
}

// ReplayDisruptions publishes the messages that are active at startup.
func (t *Tracker) ReplayDisruptions(ctx context.Context) error {
	messages, err := t.Lookup.ActiveDisruptions(ctx, t.now())
	if err != nil {
		return err
	}

	log.Info().Int("count", len(messages)).Msg("Replaying active KV15 messages")
	t.ProcessDisruptions(ctx, messages)

	return nil
}
