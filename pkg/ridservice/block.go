package ridservice

import (
	"errors"
	"fmt"
	"sort"
)

var ErrBlockMismatch = errors.New("journey belongs to another block")

// Block is the ordered sequence of journeys driven by one vehicle.
type Block struct {
	Ref      string     `json:"ref" groups:"basic"`
	Journeys []*Journey `json:"journeys" groups:"basic"`
}

// AddJourney inserts the journey in departure order. The journey's block reference must
// equal the block's by value.
func (b *Block) AddJourney(journey *Journey) error {
	if journey.BlockRef != b.Ref {
		return fmt.Errorf("%w: %s has block %q, expected %q", ErrBlockMismatch, journey.Key, journey.BlockRef, b.Ref)
	}

	b.Journeys = append(b.Journeys, journey)
	sort.SliceStable(b.Journeys, func(i, j int) bool {
		return b.Journeys[i].DepartureEpoch < b.Journeys[j].DepartureEpoch
	})

	return nil
}

// Next returns the journey following the given one in the block.
func (b *Block) Next(journeyKey string) *Journey {
	for index, journey := range b.Journeys {
		if journey.Key == journeyKey && index+1 < len(b.Journeys) {
			return b.Journeys[index+1]
		}
	}

	return nil
}

// GroupBlocks groups journeys that carry a block reference by that reference.
func GroupBlocks(journeys []*Journey) map[string]*Block {
	blocks := map[string]*Block{}

	for _, journey := range journeys {
		if journey.BlockRef == "" {
			continue
		}

		block, ok := blocks[journey.BlockRef]
		if !ok {
			block = &Block{Ref: journey.BlockRef}
			blocks[journey.BlockRef] = block
		}
		// cannot fail, the block was selected by reference
		_ = block.AddJourney(journey)
	}

	return blocks
}
