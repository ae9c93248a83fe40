package alerts

import (
	"context"
	"strings"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/util"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

const Language = "nl"

// StopLineResolver expands operator codes into the identifiers used by the published feeds.
type StopLineResolver interface {
	ResolveStopIDs(ctx context.Context, dataOwnerCode bison.DataOwnerCode, userStopCode string) ([]string, error)
	ResolveLineIDs(ctx context.Context, dataOwnerCode bison.DataOwnerCode, linePlanningNumber string) ([]string, error)
}

// Translate converts a KV15 message into a GTFS-realtime alert. An alert without any
// informed entity is still returned, callers decide whether to publish it.
func Translate(ctx context.Context, resolver StopLineResolver, message *bison.KV15Message) (*gtfs.Alert, error) {
	informedEntities, err := Scope(ctx, resolver, message)
	if err != nil {
		return nil, err
	}

	alert := &gtfs.Alert{
		Cause:          Cause(message).Enum(),
		Effect:         Effect(message).Enum(),
		InformedEntity: informedEntities,
	}

	if activePeriod := ActivePeriod(message); activePeriod != nil {
		alert.ActivePeriod = []*gtfs.TimeRange{activePeriod}
	}

	if message.MessageContent != nil {
		alert.HeaderText = translatedString(*message.MessageContent)
	}
	alert.DescriptionText = translatedString(Description(message))

	return alert, nil
}

func translatedString(text string) *gtfs.TranslatedString {
	return &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{
				Text:     proto.String(text),
				Language: proto.String(Language),
			},
		},
	}
}

// Description builds the multi-line body of the alert from the cause, effect and measure
// paragraphs, followed by the message content.
func Description(message *bison.KV15Message) string {
	var text strings.Builder

	var subReason *string
	if message.SubReasonType != nil && *message.SubReasonType != bison.SubReasonOnbekend {
		name := string(*message.SubReasonType)
		subReason = &name
	}
	writeParagraph(&text, "Cause : ", subReason, message.ReasonContent, message.MessageContent)

	var subEffect *string
	if message.SubEffectType != nil && *message.SubEffectType != bison.SubEffectUnknown {
		name := string(*message.SubEffectType)
		subEffect = &name
	}
	writeParagraph(&text, "Effect : ", subEffect, message.EffectContent, message.MessageContent)

	var subMeasure *string
	if message.SubMeasureType != nil && *message.SubMeasureType != bison.SubMeasureUnknown {
		name := string(*message.SubMeasureType)
		subMeasure = &name
	}
	writeParagraph(&text, "Measures : ", subMeasure, message.MeasureContent, message.MessageContent)

	if message.MessageContent != nil {
		text.WriteString(*message.MessageContent)
		text.WriteString("\n")
	}

	return text.String()
}

// writeParagraph skips content that only repeats the message content.
func writeParagraph(text *strings.Builder, label string, subType *string, content *string, messageContent *string) {
	hasContent := content != nil && (messageContent == nil || *content != *messageContent)
	if subType == nil && !hasContent {
		return
	}

	text.WriteString(label)
	if subType != nil {
		text.WriteString(*subType)
		text.WriteString(" ")
	}
	if hasContent {
		text.WriteString(*content)
	}
	text.WriteString("\n")
}

// ActivePeriod returns the validity window in epoch seconds, or nil when neither bound is set.
func ActivePeriod(message *bison.KV15Message) *gtfs.TimeRange {
	if message.MessageStartTime == nil && message.MessageEndTime == nil {
		return nil
	}

	timeRange := &gtfs.TimeRange{}
	if message.MessageStartTime != nil {
		timeRange.Start = proto.Uint64(uint64(message.MessageStartTime.Unix()))
	}
	if message.MessageEndTime != nil {
		timeRange.End = proto.Uint64(uint64(message.MessageEndTime.Unix()))
	}

	return timeRange
}

// Scope expands the stops and lines of the message into informed entities. Stops take
// precedence, a message naming both is scoped to the stops of those lines only.
func Scope(ctx context.Context, resolver StopLineResolver, message *bison.KV15Message) ([]*gtfs.EntitySelector, error) {
	var routeIDs []string
	for _, linePlanningNumber := range message.LinePlanningNumbers {
		lineIDs, err := resolver.ResolveLineIDs(ctx, message.DataOwnerCode, linePlanningNumber)
		if err != nil {
			return nil, err
		}
		if len(lineIDs) == 0 {
			log.Debug().Str("dataownercode", string(message.DataOwnerCode)).Str("lineplanningnumber", linePlanningNumber).Msg("KV15 line not resolvable")
		}
		routeIDs = append(routeIDs, lineIDs...)
	}
	routeIDs = util.RemoveDuplicateStrings(routeIDs, nil)

	var selectors []*gtfs.EntitySelector

	if len(message.UserStopCodes) > 0 {
		for _, userStopCode := range message.UserStopCodes {
			stopIDs, err := resolver.ResolveStopIDs(ctx, message.DataOwnerCode, userStopCode)
			if err != nil {
				return nil, err
			}
			if len(stopIDs) == 0 {
				log.Debug().Str("dataownercode", string(message.DataOwnerCode)).Str("userstopcode", userStopCode).Msg("KV15 stop not resolvable")
			}

			for _, stopID := range stopIDs {
				if len(message.LinePlanningNumbers) == 0 {
					selectors = append(selectors, &gtfs.EntitySelector{StopId: proto.String(stopID)})
					continue
				}

				for _, routeID := range routeIDs {
					selectors = append(selectors, &gtfs.EntitySelector{
						StopId:  proto.String(stopID),
						RouteId: proto.String(routeID),
					})
				}
			}
		}

		return selectors, nil
	}

	for _, routeID := range routeIDs {
		selectors = append(selectors, &gtfs.EntitySelector{RouteId: proto.String(routeID)})
	}

	return selectors, nil
}
