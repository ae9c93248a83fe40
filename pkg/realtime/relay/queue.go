package relay

import (
	"context"
	"errors"
	"time"
)

var ErrQueueCapacity = errors.New("queue capacity must be positive")

// Envelope is one multi-frame message as received from the publisher. The first frame is
// the topic, the remaining frames are gzip compressed payloads.
type Envelope struct {
	Frames     [][]byte
	ReceivedAt time.Time
}

func (e Envelope) Topic() string {
	if len(e.Frames) == 0 {
		return ""
	}
	return string(e.Frames[0])
}

func (e Envelope) Payloads() [][]byte {
	if len(e.Frames) < 2 {
		return nil
	}
	return e.Frames[1:]
}

// Queue decouples network receipt from parsing. It holds at most its capacity and blocks
// producers when full instead of dropping envelopes.
type Queue struct {
	items chan Envelope
}

func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, ErrQueueCapacity
	}

	return &Queue{
		items: make(chan Envelope, capacity),
	}, nil
}

// Put blocks until there is room for the envelope or the context is done.
func (q *Queue) Put(ctx context.Context, envelope Envelope) error {
	select {
	case q.items <- envelope:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take blocks until an envelope is available or the context is done.
func (q *Queue) Take(ctx context.Context) (Envelope, error) {
	select {
	case envelope := <-q.items:
		return envelope, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Cap() int {
	return cap(q.items)
}
