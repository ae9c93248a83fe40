package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	stops map[string][]string
	lines map[string][]string
	err   error
}

func (r *fakeResolver) ResolveStopIDs(ctx context.Context, dataOwnerCode bison.DataOwnerCode, userStopCode string) ([]string, error) {
	return r.stops[userStopCode], r.err
}

func (r *fakeResolver) ResolveLineIDs(ctx context.Context, dataOwnerCode bison.DataOwnerCode, linePlanningNumber string) ([]string, error) {
	return r.lines[linePlanningNumber], r.err
}

func stringPointer(value string) *string {
	return &value
}

func TestCauseCoversEverySubReason(t *testing.T) {
	for _, subReason := range bison.AllSubReasonTypes {
		subReason := subReason
		_, ok := subReasonCauses[subReason]
		assert.True(t, ok, "missing cause for %s", subReason)

		message := &bison.KV15Message{SubReasonType: &subReason}
		assert.Equal(t, Cause(message), Cause(message))
	}

	assert.Len(t, subReasonCauses, len(bison.AllSubReasonTypes))
}

func TestCause(t *testing.T) {
	werkzaamheden := bison.SubReasonWerkzaamheden
	staking := bison.SubReasonStaking
	kermis := bison.SubReasonKermis
	onbekend := bison.SubReasonOnbekend
	general := bison.ReasonTypeGeneral
	undefined := bison.ReasonTypeUndefined
	personnel := bison.ReasonTypePersonnel

	assert.Equal(t, gtfs.Alert_MAINTENANCE, Cause(&bison.KV15Message{SubReasonType: &werkzaamheden}))
	assert.Equal(t, gtfs.Alert_STRIKE, Cause(&bison.KV15Message{SubReasonType: &staking}))
	assert.Equal(t, gtfs.Alert_HOLIDAY, Cause(&bison.KV15Message{SubReasonType: &kermis}))
	assert.Equal(t, gtfs.Alert_UNKNOWN_CAUSE, Cause(&bison.KV15Message{SubReasonType: &onbekend, ReasonType: &general}))
	assert.Equal(t, gtfs.Alert_OTHER_CAUSE, Cause(&bison.KV15Message{ReasonType: &general}))
	assert.Equal(t, gtfs.Alert_UNKNOWN_CAUSE, Cause(&bison.KV15Message{ReasonType: &undefined}))
	assert.Equal(t, gtfs.Alert_UNKNOWN_CAUSE, Cause(&bison.KV15Message{ReasonType: &personnel}))
	assert.Equal(t, gtfs.Alert_UNKNOWN_CAUSE, Cause(&bison.KV15Message{}))
}

func TestEffectCoversEverySubType(t *testing.T) {
	for _, subMeasure := range bison.AllSubMeasureTypes {
		_, ok := subMeasureEffects[subMeasure]
		assert.True(t, ok, "missing effect for measure %s", subMeasure)
	}
	assert.Len(t, subMeasureEffects, len(bison.AllSubMeasureTypes))

	for _, subEffect := range bison.AllSubEffectTypes {
		_, ok := subEffectEffects[subEffect]
		assert.True(t, ok, "missing effect for %s", subEffect)
	}
	assert.Len(t, subEffectEffects, len(bison.AllSubEffectTypes))
}

func TestEffect(t *testing.T) {
	bus := bison.SubMeasureBus
	noTrain := bison.SubMeasureNoTrain
	delay := bison.SubEffectDelay1530
	diversion := bison.SubEffectDiversion

	assert.Equal(t, gtfs.Alert_MODIFIED_SERVICE, Effect(&bison.KV15Message{SubMeasureType: &bus, SubEffectType: &delay}))
	assert.Equal(t, gtfs.Alert_NO_SERVICE, Effect(&bison.KV15Message{SubMeasureType: &noTrain}))
	assert.Equal(t, gtfs.Alert_SIGNIFICANT_DELAYS, Effect(&bison.KV15Message{SubEffectType: &delay}))
	assert.Equal(t, gtfs.Alert_DETOUR, Effect(&bison.KV15Message{SubEffectType: &diversion}))
	assert.Equal(t, gtfs.Alert_UNKNOWN_EFFECT, Effect(&bison.KV15Message{}))
}

func TestDescription(t *testing.T) {
	werkzaamheden := bison.SubReasonWerkzaamheden

	t.Run("cause paragraph", func(t *testing.T) {
		message := &bison.KV15Message{
			SubReasonType:  &werkzaamheden,
			ReasonContent:  stringPointer("roadworks on Main St"),
			MessageContent: stringPointer("expect delays"),
		}

		assert.Equal(t, "Cause : Werkzaamheden roadworks on Main St\nexpect delays\n", Description(message))
	})

	t.Run("redundant content is omitted", func(t *testing.T) {
		unknownMeasure := bison.SubMeasureUnknown
		message := &bison.KV15Message{
			EffectContent:  stringPointer("expect delays"),
			SubMeasureType: &unknownMeasure,
			MessageContent: stringPointer("expect delays"),
		}

		assert.Equal(t, "expect delays\n", Description(message))
	})

	t.Run("all paragraphs", func(t *testing.T) {
		delay := bison.SubEffectDelay10
		bus := bison.SubMeasureBus
		message := &bison.KV15Message{
			SubReasonType:  &werkzaamheden,
			SubEffectType:  &delay,
			EffectContent:  stringPointer("ten minutes"),
			SubMeasureType: &bus,
		}

		assert.Equal(t, "Cause : Werkzaamheden \nEffect : "+string(delay)+" ten minutes\nMeasures : "+string(bus)+" \n", Description(message))
	})
}

func TestActivePeriod(t *testing.T) {
	assert.Nil(t, ActivePeriod(&bison.KV15Message{}))

	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	activePeriod := ActivePeriod(&bison.KV15Message{MessageStartTime: &start})
	require.NotNil(t, activePeriod)
	assert.Equal(t, uint64(start.Unix()), activePeriod.GetStart())
	assert.Nil(t, activePeriod.End)
}

func TestScope(t *testing.T) {
	resolver := &fakeResolver{
		stops: map[string][]string{
			"50000010": {"stop-1", "stop-2"},
			"50000020": {},
		},
		lines: map[string][]string{
			"1": {"route-1"},
			"2": {"route-2a", "route-2b"},
			"3": {"route-1"},
		},
	}

	t.Run("stops only", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{UserStopCodes: []string{"50000010", "50000020"}})
		require.NoError(t, err)
		require.Len(t, scope, 2)
		assert.Equal(t, "stop-1", scope[0].GetStopId())
		assert.Nil(t, scope[0].RouteId)
	})

	t.Run("stops and lines", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{
			UserStopCodes:       []string{"50000010"},
			LinePlanningNumbers: []string{"1", "2"},
		})
		require.NoError(t, err)
		require.Len(t, scope, 6)
		assert.Equal(t, "stop-1", scope[0].GetStopId())
		assert.Equal(t, "route-1", scope[0].GetRouteId())
		assert.Equal(t, "stop-2", scope[5].GetStopId())
		assert.Equal(t, "route-2b", scope[5].GetRouteId())
	})

	t.Run("lines only", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{LinePlanningNumbers: []string{"2"}})
		require.NoError(t, err)
		require.Len(t, scope, 2)
		assert.Nil(t, scope[0].StopId)
		assert.Equal(t, "route-2a", scope[0].GetRouteId())
	})

	t.Run("lines sharing a route", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{LinePlanningNumbers: []string{"1", "3"}})
		require.NoError(t, err)
		require.Len(t, scope, 1)
		assert.Equal(t, "route-1", scope[0].GetRouteId())
	})

	t.Run("unresolvable stops with lines", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{
			UserStopCodes:       []string{"50000020"},
			LinePlanningNumbers: []string{"1"},
		})
		require.NoError(t, err)
		assert.Empty(t, scope)
	})

	t.Run("empty", func(t *testing.T) {
		scope, err := Scope(context.Background(), resolver, &bison.KV15Message{})
		require.NoError(t, err)
		assert.Empty(t, scope)
	})

	t.Run("lookup failure", func(t *testing.T) {
		_, err := Scope(context.Background(), &fakeResolver{err: errors.New("offline")}, &bison.KV15Message{LinePlanningNumbers: []string{"1"}})
		assert.Error(t, err)
	})
}

func TestTranslate(t *testing.T) {
	resolver := &fakeResolver{lines: map[string][]string{"1": {"route-1"}}}
	werkzaamheden := bison.SubReasonWerkzaamheden
	end := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	alert, err := Translate(context.Background(), resolver, &bison.KV15Message{
		DataOwnerCode:       bison.DataOwnerQBUZZ,
		SubReasonType:       &werkzaamheden,
		MessageContent:      stringPointer("Lijn 1 rijdt om"),
		MessageEndTime:      &end,
		LinePlanningNumbers: []string{"1"},
	})
	require.NoError(t, err)

	assert.Equal(t, gtfs.Alert_MAINTENANCE, alert.GetCause())
	assert.Equal(t, gtfs.Alert_UNKNOWN_EFFECT, alert.GetEffect())
	require.Len(t, alert.GetActivePeriod(), 1)
	assert.Equal(t, uint64(end.Unix()), alert.GetActivePeriod()[0].GetEnd())
	require.Len(t, alert.GetInformedEntity(), 1)

	header := alert.GetHeaderText().GetTranslation()
	require.Len(t, header, 1)
	assert.Equal(t, "Lijn 1 rijdt om", header[0].GetText())
	assert.Equal(t, "nl", header[0].GetLanguage())
	assert.Equal(t, "Cause : Werkzaamheden \nLijn 1 rijdt om\n", alert.GetDescriptionText().GetTranslation()[0].GetText())
}
