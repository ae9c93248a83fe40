package relay

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// ZMQSource subscribes to a ZeroMQ publisher.
type ZMQSource struct {
	Endpoint string
	Topics   []string
}

func (s *ZMQSource) Name() string {
	return s.Endpoint
}

func (s *ZMQSource) Connect(ctx context.Context) (Connection, error) {
	socket := zmq4.NewSub(ctx)

	if err := socket.Dial(s.Endpoint); err != nil {
		socket.Close()
		return nil, fmt.Errorf("dial %s: %w", s.Endpoint, err)
	}

	topics := s.Topics
	if len(topics) == 0 {
		topics = []string{""}
	}
	for _, topic := range topics {
		if err := socket.SetOption(zmq4.OptionSubscribe, topic); err != nil {
			socket.Close()
			return nil, fmt.Errorf("subscribe %q: %w", topic, err)
		}
	}

	return &zmqConnection{socket: socket}, nil
}

type zmqConnection struct {
	socket zmq4.Socket
}

func (c *zmqConnection) Receive() ([][]byte, error) {
	message, err := c.socket.Recv()
	if err != nil {
		return nil, err
	}

	return message.Frames, nil
}

func (c *zmqConnection) Close() error {
	return c.socket.Close()
}
