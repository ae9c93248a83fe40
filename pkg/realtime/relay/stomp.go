package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-stomp/stomp/v3"
)

var errSubscriptionClosed = errors.New("stomp subscription closed")

// StompSource subscribes to a STOMP mirror of the publisher. Every message becomes an
// envelope with the destination as topic and the body as its only payload.
type StompSource struct {
	Address     string
	Username    string
	Password    string
	Destination string
}

func (s *StompSource) Name() string {
	return s.Address + s.Destination
}

func (s *StompSource) Connect(ctx context.Context) (Connection, error) {
	var stompOptions []func(*stomp.Conn) error
	if s.Username != "" {
		stompOptions = append(stompOptions, stomp.ConnOpt.Login(s.Username, s.Password))
	}

	conn, err := stomp.Dial("tcp", s.Address, stompOptions...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.Address, err)
	}

	subscription, err := conn.Subscribe(s.Destination, stomp.AckAuto)
	if err != nil {
		conn.Disconnect()
		return nil, fmt.Errorf("subscribe %s: %w", s.Destination, err)
	}

	return &stompConnection{conn: conn, subscription: subscription}, nil
}

type stompConnection struct {
	conn         *stomp.Conn
	subscription *stomp.Subscription
}

func (c *stompConnection) Receive() ([][]byte, error) {
	message, ok := <-c.subscription.C
	if !ok {
		return nil, errSubscriptionClosed
	}
	if message.Err != nil {
		return nil, message.Err
	}

	return [][]byte{[]byte(message.Destination), message.Body}, nil
}

func (c *stompConnection) Close() error {
	c.subscription.Unsubscribe()
	return c.conn.Disconnect()
}
