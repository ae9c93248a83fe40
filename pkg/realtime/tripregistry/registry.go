package tripregistry

import (
	"context"
	"sort"
	"sync"

	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
)

type TripResolver interface {
	ResolveTrip(ctx context.Context, tripKey string) (*ridservice.Journey, error)
}

// Registry maps trip keys to their trip state. Only one state per key is ever stored.
type Registry struct {
	resolver TripResolver

	mutex  sync.RWMutex
	states map[string]*TripState
}

func New(resolver TripResolver) *Registry {
	return &Registry{
		resolver: resolver,
		states:   map[string]*TripState{},
	}
}

func (r *Registry) Get(tripKey string) (*TripState, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	state, ok := r.states[tripKey]
	return state, ok
}

// GetOrCreate returns the state of the trip, resolving and storing it when unknown.
// A trip that is not scheduled returns ridservice.ErrJourneyNotFound and is not stored.
// Concurrent callers may both resolve the trip, the first stored state wins.
func (r *Registry) GetOrCreate(ctx context.Context, tripKey string) (*TripState, error) {
	if state, ok := r.Get(tripKey); ok {
		return state, nil
	}

	journey, err := r.resolver.ResolveTrip(ctx, tripKey)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.states[tripKey]; ok {
		return existing, nil
	}

	state := newTripState(tripKey, journey)
	r.states[tripKey] = state

	return state, nil
}

func (r *Registry) Remove(tripKey string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.states[tripKey]; !ok {
		return false
	}

	delete(r.states, tripKey)
	return true
}

// Snapshot returns the currently registered states ordered by key.
func (r *Registry) Snapshot() []*TripState {
	r.mutex.RLock()
	states := make([]*TripState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, state)
	}
	r.mutex.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		return states[i].Key < states[j].Key
	})

	return states
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.states)
}
