package relay

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

var ErrIdleTimeout = errors.New("no messages received within idle timeout")

// Source opens subscriptions to the upstream publisher.
type Source interface {
	Name() string
	Connect(ctx context.Context) (Connection, error)
}

// Connection is one live subscription. Close must unblock a pending Receive.
type Connection interface {
	Receive() ([][]byte, error)
	Close() error
}

// Metrics is notified about relay activity. Nil is allowed.
type Metrics interface {
	EnvelopeReceived()
	Reconnected()
}

type Relay struct {
	Source      Source
	Queue       *Queue
	IdleTimeout time.Duration
	Metrics     Metrics

	newBackOff func() backoff.BackOff
	now        func() time.Time
}

func New(source Source, queue *Queue, idleTimeout time.Duration) *Relay {
	return &Relay{
		Source:      source,
		Queue:       queue,
		IdleTimeout: idleTimeout,
		newBackOff: func() backoff.BackOff {
			exponential := backoff.NewExponentialBackOff()
			exponential.MaxInterval = time.Minute
			exponential.MaxElapsedTime = 0
			return exponential
		},
		now: time.Now,
	}
}

// Run keeps a subscription open until the context is cancelled. A subscription that stays
// silent for the idle timeout, or fails, is closed and dialled again.
func (r *Relay) Run(ctx context.Context) error {
	for {
		connection, err := backoff.RetryWithData(func() (Connection, error) {
			connection, err := r.Source.Connect(ctx)
			if err != nil {
				log.Error().Err(err).Str("source", r.Source.Name()).Msg("Failed to connect to publisher")
			}
			return connection, err
		}, backoff.WithContext(r.newBackOff(), ctx))
		if err != nil {
			return ctx.Err()
		}

		log.Info().Str("source", r.Source.Name()).Msg("Subscribed to publisher")

		err = r.forward(ctx, connection)
		connection.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if errors.Is(err, ErrIdleTimeout) {
			log.Warn().Str("source", r.Source.Name()).Dur("timeout", r.IdleTimeout).Msg("Publisher idle, reconnecting")
		} else {
			log.Error().Err(err).Str("source", r.Source.Name()).Msg("Subscription failed, reconnecting")
		}

		if r.Metrics != nil {
			r.Metrics.Reconnected()
		}
	}
}

type received struct {
	frames [][]byte
	err    error
}

func (r *Relay) forward(ctx context.Context, connection Connection) error {
	done := make(chan struct{})
	defer close(done)

	messages := make(chan received)
	go func() {
		for {
			frames, err := connection.Receive()

			select {
			case messages <- received{frames: frames, err: err}:
			case <-done:
				return
			}

			if err != nil {
				return
			}
		}
	}()

	idle := time.NewTimer(r.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle.C:
			return ErrIdleTimeout
		case message := <-messages:
			if message.err != nil {
				return message.err
			}

			if r.Metrics != nil {
				r.Metrics.EnvelopeReceived()
			}

			if err := r.Queue.Put(ctx, Envelope{Frames: message.frames, ReceivedAt: r.now()}); err != nil {
				return err
			}

			idle.Reset(r.IdleTimeout)
		}
	}
}
