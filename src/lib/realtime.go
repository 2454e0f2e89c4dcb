package lib

import (
	"log"

	"github.com/zishang520/socket.io/v2/socket"
)

// Publisher is the real-time broadcast channel used to nudge dashboards after
// a purchase or waitlist insert. Delivery is fire-and-forget: no persistence,
// no ordering, no guarantee anyone is listening. Consumers re-fetch state from
// the query APIs instead of trusting the payload.
type Publisher interface {
	Publish(event string, payload map[string]any) error
}

type SocketPublisher struct {
	server *socket.Server
}

func (s *SocketPublisher) Publish(event string, payload map[string]any) error {
	s.server.Emit(event, payload)
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(event string, payload map[string]any) error {
	return nil
}

var publisher Publisher

func GetPublisher() Publisher {
	if publisher != nil {
		return publisher
	}
	publisher = NoopPublisher{}
	return publisher
}

// NewPublisher Replace the process-wide publisher, used by main to install the
// socket.io-backed one and by tests to install a no-op
func NewPublisher(p Publisher) Publisher {
	publisher = p
	return publisher
}

func NewSocketPublisher(server *socket.Server) *SocketPublisher {
	return &SocketPublisher{server: server}
}

// Broadcast publishes through the process-wide publisher and swallows the
// error; callers never fail a request because a hint was not delivered.
func Broadcast(event string, payload map[string]any) {
	if err := GetPublisher().Publish(event, payload); err != nil {
		log.Printf("[realtime] Error broadcasting %s: %s\n", event, err.Error())
	}
}
