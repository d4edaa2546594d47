package core

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo2030/grblesp/internal/device"
	"github.com/apollo2030/grblesp/internal/model"
	"github.com/apollo2030/grblesp/internal/report"
)

// scriptChannel is an in-memory Channel fed by the test.
type scriptChannel struct {
	in     chan string
	closed chan struct{}
	once   sync.Once

	mu  sync.Mutex
	out []string
}

func newScriptChannel() *scriptChannel {
	return &scriptChannel{
		in:     make(chan string, 64),
		closed: make(chan struct{}),
	}
}

func (c *scriptChannel) ReadLine(timeout time.Duration) (string, error) {
	select {
	case line := <-c.in:
		return line, nil
	case <-c.closed:
		return "", errors.New("channel closed")
	case <-time.After(timeout):
		return "", device.ErrReadTimeout
	}
}

func (c *scriptChannel) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, text)
	return nil
}

func (c *scriptChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptChannel) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.out...)
}

func TestSystemSerializesChannelInput(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Report.AlarmSettleMs = 0
	sys := newSystem(cfg)

	serial := newScriptChannel()
	socket := newScriptChannel()
	sys.bind(report.ClientSerial, serial)
	sys.bind(report.ClientSocket, socket)
	require.NoError(t, sys.Start())

	// Concurrent status queries from both channels go through one dispatch
	// context, each answered with a status line and an acknowledgment.
	const queries = 25
	for i := 0; i < queries; i++ {
		serial.in <- "?\n"
		socket.in <- "?\n"
	}

	want := 1 + 2*queries // welcome, then two records per query
	require.Eventually(t, func() bool {
		return len(serial.lines()) >= want && len(socket.lines()) >= want
	}, 2*time.Second, 5*time.Millisecond)
	sys.Stop()

	for _, got := range [][]string{serial.lines(), socket.lines()} {
		require.Len(t, got, want)
		assert.Contains(t, got[0], "Grbl")
		for i := 1; i < len(got); i += 2 {
			assert.True(t, strings.HasPrefix(got[i], "<Idle|"), got[i])
			assert.Equal(t, "ok\r\n", got[i+1])
		}
	}
}

func TestSystemStopClosesChannels(t *testing.T) {
	cfg := model.DefaultConfig()
	sys := newSystem(cfg)
	serial := newScriptChannel()
	sys.bind(report.ClientSerial, serial)
	require.NoError(t, sys.Start())

	sys.Stop()
	select {
	case <-serial.closed:
	default:
		t.Fatal("channel left open after Stop")
	}
}
