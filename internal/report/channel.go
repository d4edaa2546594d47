// Package report encodes machine state into the line-oriented ASCII protocol
// spoken to the host controller and routes the resulting records to one or all
// transport channels. Encoders run to completion without blocking; transport
// writes are fire-and-forget and a failed write drops that single record.
package report

import "fmt"

// Client addresses one transport channel, or all of them.
type Client uint8

const (
	ClientSerial Client = 1
	ClientSocket Client = 2
	ClientAll    Client = 0xFF
)

// Sink consumes complete, pre-terminated protocol records. Implementations
// must not block the control loop; buffering and flow control belong to the
// transport layer.
type Sink interface {
	Write(text string) error
}

// Broker routes protocol records to the registered channel sinks.
type Broker struct {
	sinks map[Client]Sink
}

// NewBroker creates a broker with no channels attached.
func NewBroker() *Broker {
	return &Broker{sinks: make(map[Client]Sink)}
}

// Register attaches a sink under a channel address, replacing any previous one.
func (b *Broker) Register(client Client, s Sink) {
	b.sinks[client] = s
}

// Send writes a pre-terminated record to one channel, or to every registered
// channel when client is ClientAll. A failed write drops the record for that
// channel only; the first error is returned for callers that care.
func (b *Broker) Send(client Client, text string) error {
	var firstErr error
	for c, s := range b.sinks {
		if client != ClientAll && client != c {
			continue
		}
		if err := s.Write(text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Sendf composes a record from a format string and sends it like Send.
func (b *Broker) Sendf(client Client, format string, args ...any) error {
	return b.Send(client, fmt.Sprintf(format, args...))
}
