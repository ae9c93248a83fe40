package ridservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBlocks(t *testing.T) {
	late := &Journey{Key: "late", BlockRef: "A", DepartureEpoch: 300}
	early := &Journey{Key: "early", BlockRef: "A", DepartureEpoch: 100}
	other := &Journey{Key: "other", BlockRef: "B", DepartureEpoch: 200}
	unblocked := &Journey{Key: "unblocked"}

	blocks := GroupBlocks([]*Journey{late, other, unblocked, early})
	require.Len(t, blocks, 2)

	assert.Equal(t, []*Journey{early, late}, blocks["A"].Journeys)
	assert.Equal(t, late, blocks["A"].Next("early"))
	assert.Nil(t, blocks["A"].Next("late"))
	assert.Equal(t, []*Journey{other}, blocks["B"].Journeys)
}

func TestBlockRejectsOtherBlock(t *testing.T) {
	block := &Block{Ref: "A"}

	err := block.AddJourney(&Journey{Key: "journey", BlockRef: "B"})
	assert.ErrorIs(t, err, ErrBlockMismatch)
	assert.Empty(t, block.Journeys)
}

func TestStopIndex(t *testing.T) {
	journey := &Journey{Stops: []JourneyStop{
		{UserStopCode: "10"},
		{UserStopCode: "20"},
		{UserStopCode: "10"},
	}}

	assert.Equal(t, 0, journey.StopIndex("10", 0))
	assert.Equal(t, 2, journey.StopIndex("10", 1))
	assert.Equal(t, 1, journey.StopIndex("20", 0))
	assert.Equal(t, -1, journey.StopIndex("30", 0))
}
