package tripregistry

import (
	"sort"
	"sync"

	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
)

// TripState is the realtime state of one trip. Every field but Key and Journey must only
// be accessed while the state is locked.
type TripState struct {
	mutex sync.Mutex

	Key     string
	Journey *ridservice.Journey

	Primary        *bison.KV6Posinfo
	Reinforcements map[int]*bison.KV6Posinfo
	Progress       *journeyprocessor.Progress

	// expired holds reinforcements whose position entity was deleted for being stale
	expired map[int]struct{}
}

func newTripState(key string, journey *ridservice.Journey) *TripState {
	return &TripState{
		Key:            key,
		Journey:        journey,
		Reinforcements: map[int]*bison.KV6Posinfo{},
		Progress:       journeyprocessor.NewProgress(journey),
		expired:        map[int]struct{}{},
	}
}

func (s *TripState) Lock() {
	s.mutex.Lock()
}

func (s *TripState) Unlock() {
	s.mutex.Unlock()
}

// SetPosition stores the latest report of the vehicle it belongs to.
func (s *TripState) SetPosition(posinfo *bison.KV6Posinfo) {
	if posinfo.IsPrimary() {
		s.Primary = posinfo
	} else {
		s.Reinforcements[posinfo.ReinforcementNumber] = posinfo
		delete(s.expired, posinfo.ReinforcementNumber)
	}
}

func (s *TripState) ClearPrimary() {
	s.Primary = nil
}

// RemoveReinforcement drops the entry of one secondary vehicle and reports whether it existed.
func (s *TripState) RemoveReinforcement(reinforcementNumber int) bool {
	if _, ok := s.Reinforcements[reinforcementNumber]; !ok {
		return false
	}

	delete(s.Reinforcements, reinforcementNumber)
	delete(s.expired, reinforcementNumber)
	return true
}

// ExpireReinforcement marks the position of a secondary vehicle as withdrawn from the feed
// while keeping its entry. It reports false when it was already marked.
func (s *TripState) ExpireReinforcement(reinforcementNumber int) bool {
	if _, ok := s.Reinforcements[reinforcementNumber]; !ok {
		return false
	}
	if _, ok := s.expired[reinforcementNumber]; ok {
		return false
	}

	s.expired[reinforcementNumber] = struct{}{}
	return true
}

// ReinforcementNumbers returns the numbers of the secondary vehicles in order.
func (s *TripState) ReinforcementNumbers() []int {
	numbers := make([]int, 0, len(s.Reinforcements))
	for number := range s.Reinforcements {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	return numbers
}

// TripView is a point in time copy of a trip state for inspection.
type TripView struct {
	Key            string                    `json:"key" groups:"basic"`
	Journey        *ridservice.Journey       `json:"journey" groups:"basic"`
	Primary        *bison.KV6Posinfo         `json:"primary" groups:"basic"`
	Reinforcements []*bison.KV6Posinfo       `json:"reinforcements" groups:"basic"`
	Progress       journeyprocessor.Progress `json:"progress" groups:"detailed"`
}

func (s *TripState) View() TripView {
	s.Lock()
	defer s.Unlock()

	view := TripView{
		Key:      s.Key,
		Journey:  s.Journey,
		Primary:  s.Primary,
		Progress: *s.Progress,
	}
	view.Progress.Stops = append([]journeyprocessor.StopProgress(nil), s.Progress.Stops...)

	for _, number := range s.ReinforcementNumbers() {
		view.Reinforcements = append(view.Reinforcements, s.Reinforcements[number])
	}

	return view
}
