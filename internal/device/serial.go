package device

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// ErrReadTimeout is returned by ReadLine when the timeout elapses first.
var ErrReadTimeout = errors.New("read timeout")

// ErrChannelClosed is returned by ReadLine once the channel has shut down.
var ErrChannelClosed = errors.New("channel closed")

// SerialChannel implements Channel over a physical serial port using
// go.bug.st/serial. One goroutine owns the read side for the lifetime of the
// channel and feeds framed lines into a queue, so a ReadLine timeout never
// abandons a partially read host line.
type SerialChannel struct {
	port    io.ReadWriteCloser
	lines   chan string
	done    chan struct{}
	readErr error
	once    sync.Once
}

// OpenSerial opens a serial channel with given path and baudrate.
func OpenSerial(dev string, baud int) (*SerialChannel, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return newSerialChannel(p), nil
}

func newSerialChannel(port io.ReadWriteCloser) *SerialChannel {
	c := &SerialChannel{
		port:  port,
		lines: make(chan string, 16),
		done:  make(chan struct{}),
	}
	go c.readPump()
	return c
}

// readPump is the only reader of the port. It exits when the port errors out,
// which Close forces by closing the port under the blocked read.
func (c *SerialChannel) readPump() {
	r := bufio.NewReader(c.port)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			select {
			case c.lines <- line:
			case <-c.done:
				return
			}
		}
		if err != nil {
			c.readErr = err
			close(c.lines)
			return
		}
	}
}

// ReadLine returns the next queued line from the port with optional timeout.
func (c *SerialChannel) ReadLine(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return "", c.closeReason()
			}
			return line, nil
		case <-c.done:
			return "", ErrChannelClosed
		}
	}
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", c.closeReason()
		}
		return line, nil
	case <-c.done:
		return "", ErrChannelClosed
	case <-time.After(timeout):
		return "", ErrReadTimeout
	}
}

func (c *SerialChannel) closeReason() error {
	if c.readErr != nil {
		return c.readErr
	}
	return ErrChannelClosed
}

// Write sends text to the port verbatim.
func (c *SerialChannel) Write(text string) error {
	_, err := c.port.Write([]byte(text))
	return err
}

// Close shuts the channel down and unblocks the reader.
func (c *SerialChannel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.port.Close()
	})
	return err
}
