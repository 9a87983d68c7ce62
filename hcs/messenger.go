package hcs

import (
	"github.com/nats-io/nats.go"
)

// SubjectBroadcast is the NATS subject all agent broadcasts are published
// on, mirroring a single shared consensus topic.
const SubjectBroadcast = "hcs.topic"

// Messenger encapsulates a NATS connection to the in-process bus.
type Messenger struct {
	NC *nats.Conn
}

// NewMessenger connects to the given NATS URL.
func NewMessenger(url string) (*Messenger, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Messenger{NC: nc}, nil
}

// Publish sends raw payload bytes to a subject.
func (m *Messenger) Publish(subject string, payload []byte) error {
	return m.NC.Publish(subject, payload)
}

// Subscribe registers a handler for a subject.
func (m *Messenger) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return m.NC.Subscribe(subject, handler)
}

// Close drains and closes the connection.
func (m *Messenger) Close() {
	if m.NC != nil {
		m.NC.Close()
	}
}
