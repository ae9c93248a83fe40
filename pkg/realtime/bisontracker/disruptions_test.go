package bisontracker

import (
	"bytes"
	"context"
	"testing"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestProcessDisruptionsLogsIgnoredCommercial(t *testing.T) {
	var output bytes.Buffer
	logger := log.Logger
	log.Logger = zerolog.New(&output)
	defer func() { log.Logger = logger }()

	tracker := newTestTracker()
	commercial := testDisruption(bison.DataOwnerARR, bison.MessagePriorityCommercial, 1)

	tracker.ProcessDisruptions(context.Background(), []*bison.KV15Message{commercial})

	assert.Equal(t, 0, tracker.alerts.Len())
	assert.Contains(t, output.String(), `"message":"Ignoring commercial KV15 message"`)
	assert.Contains(t, output.String(), `"kv15message":"`+commercial.ID()+`"`)
}
