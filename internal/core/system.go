package core

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/apollo2030/grblesp/internal/device"
	"github.com/apollo2030/grblesp/internal/model"
	"github.com/apollo2030/grblesp/internal/report"
)

// readPollInterval bounds how long a channel read blocks before the loop
// rechecks the stop signal.
const readPollInterval = 250 * time.Millisecond

// commandQueueDepth bounds lines in flight between the read loops and the
// dispatch loop.
const commandQueueDepth = 16

// channelBinding ties one input channel to its session and client identity.
type channelBinding struct {
	client  report.Client
	channel device.Channel
	session *Session
}

// inboundLine is one framed line on its way to the dispatch loop.
type inboundLine struct {
	session *Session
	text    string
}

// System manages the lifecycle of the controller: it builds the machine
// backend, the broker and the reporter from configuration, opens the
// configured channels and runs one read loop per channel. Every line is
// funneled through a single dispatch goroutine, so the machine and the
// reporter only ever run in one context.
type System struct {
	cfg      *model.Config
	machine  Machine
	broker   *report.Broker
	reporter *report.Reporter
	hub      *device.SocketHub
	bindings []channelBinding
	commands chan inboundLine

	stop      chan struct{}
	wg        sync.WaitGroup
	started   bool
	startLock sync.Mutex
}

// NewSystem reads the YAML configuration at cfgPath and wires the full stack.
// At least one channel must be configured.
func NewSystem(cfgPath string) (*System, error) {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	s := newSystem(cfg)
	if cfg.Serial.Device != "" {
		port, err := device.OpenSerial(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			return nil, err
		}
		s.bind(report.ClientSerial, port)
		log.Infof("[system] serial channel on %s @%d", cfg.Serial.Device, cfg.Serial.Baud)
	}
	if cfg.Socket.Addr != "" {
		s.hub = device.NewSocketHub(cfg.Socket.Addr)
		s.bind(report.ClientSocket, s.hub)
	}
	if len(s.bindings) == 0 {
		return nil, errors.New("no channels configured")
	}
	return s, nil
}

// newSystem wires the machine, the broker and the reporter without opening
// any channels.
func newSystem(cfg *model.Config) *System {
	s := &System{
		cfg:      cfg,
		broker:   report.NewBroker(),
		commands: make(chan inboundLine, commandQueueDepth),
		stop:     make(chan struct{}),
	}
	s.machine = NewSimMachine(cfg)
	s.reporter = report.NewReporter(s.broker, cfg.Report)
	return s
}

// bind registers a channel with the broker and creates its session. A Channel
// is also a broker sink, so the broker writes to it directly.
func (s *System) bind(client report.Client, ch device.Channel) {
	s.broker.Register(client, ch)
	s.bindings = append(s.bindings, channelBinding{
		client:  client,
		channel: ch,
		session: NewSession(client, s.reporter, s.machine, s.cfg.Report.Echo),
	})
}

// Start launches the socket hub and one read loop per channel, announces the
// controller and runs the stored startup blocks.
func (s *System) Start() error {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if s.started {
		return nil
	}

	if s.hub != nil {
		go s.hub.Start()
		log.Infof("[system] socket channel on %s", s.cfg.Socket.Addr)
	}

	if err := s.reporter.WelcomeMessage(report.ClientAll); err != nil {
		log.Warnf("[system] welcome: %v", err)
	}
	if s.machine.State() == model.StateAlarm {
		_ = s.reporter.FeedbackMessage(model.MessageAlarmLock)
	}
	for _, b := range s.bindings {
		if err := b.session.RunStartupLines(); err != nil {
			log.Warnf("[system] startup lines on %d: %v", b.client, err)
		}
	}

	s.wg.Add(1)
	go s.dispatchLoop()
	for _, b := range s.bindings {
		s.wg.Add(1)
		go s.readLoop(b)
	}
	s.started = true
	return nil
}

// readLoop frames lines from one channel and hands them to the dispatch loop.
func (s *System) readLoop(b channelBinding) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		line, err := b.channel.ReadLine(readPollInterval)
		if err != nil {
			if errors.Is(err, device.ErrReadTimeout) {
				continue
			}
			log.Warnf("[system] channel %d read: %v", b.client, err)
			return
		}
		select {
		case s.commands <- inboundLine{session: b.session, text: line}:
		case <-s.stop:
			return
		}
	}
}

// dispatchLoop executes lines from all channels one at a time.
func (s *System) dispatchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case in := <-s.commands:
			if err := in.session.Execute(in.text); err != nil {
				log.Warnf("[system] execute: %v", err)
			}
		}
	}
}

// Stop shuts down the read loops and closes every channel.
func (s *System) Stop() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if !s.started {
		return
	}
	close(s.stop)
	for _, b := range s.bindings {
		if err := b.channel.Close(); err != nil {
			log.Warnf("[system] channel %d close: %v", b.client, err)
		}
	}
	s.wg.Wait()
	s.started = false
}
