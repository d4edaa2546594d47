// Package device provides the physical output channels of the controller:
// a serial port and a websocket hub. Both carry pre-terminated protocol
// records, so Write sends its argument verbatim with no added newline.
package device

import "time"

// Channel is an abstract bidirectional text channel.
type Channel interface {
	// ReadLine reads a single line terminated by '\n'.
	// If timeout > 0, it must return after timeout even if no data available.
	ReadLine(timeout time.Duration) (string, error)

	// Write sends text to the channel exactly as given. Protocol records
	// already carry their CRLF terminator.
	Write(text string) error

	// Close closes the channel and releases underlying resources.
	Close() error
}
