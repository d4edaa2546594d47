// Package core contains the control loop of the controller: it owns the
// machine backend, dispatches incoming command lines and drives the report
// encoders over the registered output channels.
package core

import (
	"sync"

	"github.com/apollo2030/grblesp/internal/model"
	"github.com/apollo2030/grblesp/internal/report"
)

// NumStartupLines is the number of stored startup blocks ($N0/$N1).
const NumStartupLines = 2

// Word is one letter/value pair extracted from a G-code line.
type Word struct {
	Letter byte
	Value  float64
}

// Machine is the execution backend behind the protocol boundary. The session
// parses lines and hands the structured result here; the machine owns all
// state the report encoders snapshot.
type Machine interface {
	// Snapshot builds the live view consumed by the real-time status encoder.
	Snapshot() *model.StatusSnapshot

	// Settings exposes the mutable settings snapshot.
	Settings() *model.Settings
	Capabilities() model.Capabilities
	Coordinates() report.CoordinateStore
	Probe() model.ProbeState
	State() model.State

	// ExecuteWords runs one parsed G-code block.
	ExecuteWords(words []Word) model.StatusCode

	// TakeAlarm drains the pending alarm raised by the last executed block,
	// if any. The machine is already in the alarm state when it reports one.
	TakeAlarm() (model.AlarmCode, bool)

	// Jog runs a $J= line. It bypasses the modal state entirely.
	Jog(words []Word) model.StatusCode

	Unlock() model.StatusCode
	Home() model.StatusCode
	Sleep() model.StatusCode
	ToggleCheckMode() (enabled bool, code model.StatusCode)

	// Realtime commands, triggered by single characters outside line framing.
	FeedHold()
	CycleStart()
	JogCancel()
	Reset()

	StartupLine(n int) string
	SetStartupLine(n int, line string) model.StatusCode

	BuildLine() string
	SetBuildLine(line string) model.StatusCode

	// Restore resets persisted data: '$' settings, '#' parameters, '*' both.
	Restore(kind byte) model.StatusCode
}

// SimMachine is a deterministic in-memory machine backend. Motions complete
// instantly; the modal interpreter, coordinate systems and probe record behave
// like the real controller so every report encoder can be exercised end to end.
type SimMachine struct {
	mu sync.Mutex

	settings model.Settings
	caps     model.Capabilities
	coords   model.CoordTable
	gc       model.ParserState
	probe    model.ProbeState

	state     model.State
	suspend   model.SuspendFlags
	position  [model.NumAxes]int32
	startup   [NumStartupLines]string
	buildLine string

	alarm        model.AlarmCode
	alarmPending bool

	overrideCtrl model.OverrideCtrl
	spindleState model.SpindleState
	coolant      model.CoolantState
}

// NewSimMachine seeds a machine from the configuration snapshot. With homing
// enabled the machine powers up locked, like stock firmware does.
func NewSimMachine(cfg *model.Config) *SimMachine {
	m := &SimMachine{
		settings: cfg.Settings,
		caps:     cfg.Capabilities,
		coords:   cfg.Coordinates,
	}
	for n, line := range cfg.StartupLines {
		if n >= NumStartupLines {
			break
		}
		m.startup[n] = line
	}
	m.gc.CoordSystem = m.coords[0]
	if m.settings.HomingEnable {
		m.state = model.StateAlarm
	}
	return m
}

// Snapshot implements Machine.
func (m *SimMachine) Snapshot() *model.StatusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	gc := m.gc
	return &model.StatusSnapshot{
		State:             m.state,
		Suspend:           m.suspend,
		Position:          m.position,
		Parser:            &gc,
		PlannerBlocksFree: 15,
		RxBytesFree:       128,
		FeedRate:          gc.FeedRate,
		SpindleSpeed:      gc.SpindleSpeed,
		FeedOverride:      100,
		RapidOverride:     100,
		SpindleOverride:   100,
		SpindleState:      m.spindleState,
		Coolant:           m.coolant,
		OverrideCtrl:      m.overrideCtrl,
	}
}

func (m *SimMachine) Settings() *model.Settings           { return &m.settings }
func (m *SimMachine) Capabilities() model.Capabilities    { return m.caps }
func (m *SimMachine) Coordinates() report.CoordinateStore { return &m.coords }

func (m *SimMachine) Probe() model.ProbeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probe
}

func (m *SimMachine) State() model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TakeAlarm implements Machine.
func (m *SimMachine) TakeAlarm() (model.AlarmCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alarmPending {
		return 0, false
	}
	m.alarmPending = false
	return m.alarm, true
}

// Unlock clears an alarm lock ($X).
func (m *SimMachine) Unlock() model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.StateAlarm {
		m.state = model.StateIdle
	}
	return model.StatusOK
}

// Home runs the homing cycle ($H). The simulated cycle completes instantly at
// the machine origin.
func (m *SimMachine) Home() model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = [model.NumAxes]int32{}
	m.state = model.StateIdle
	return model.StatusOK
}

// Sleep enters sleep mode ($SLP). Only a reset leaves it.
func (m *SimMachine) Sleep() model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = model.StateSleep
	m.spindleState = model.SpindleStateDisable
	m.coolant = 0
	return model.StatusOK
}

// ToggleCheckMode flips G-code check mode ($C). Leaving check mode resets the
// interpreter, so the modal state is cleared.
func (m *SimMachine) ToggleCheckMode() (bool, model.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.StateCheckMode {
		m.state = model.StateIdle
		m.gc = model.ParserState{CoordSystem: m.coords[0]}
		return false, model.StatusOK
	}
	if m.state != model.StateIdle {
		return false, model.StatusIdleError
	}
	m.state = model.StateCheckMode
	return true, model.StatusOK
}

// FeedHold implements the '!' realtime command.
func (m *SimMachine) FeedHold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.StateIdle || m.state == model.StateCycle || m.state == model.StateJog {
		m.state = model.StateHold
		m.suspend = model.SuspendHoldComplete
	}
}

// CycleStart implements the '~' realtime command.
func (m *SimMachine) CycleStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.StateHold {
		m.state = model.StateIdle
		m.suspend = model.SuspendDisable
	}
}

// JogCancel implements the jog-cancel realtime command. A hold entered through
// jog cancel keeps reporting the jog state until the motion settles; the
// instant simulation settles immediately.
func (m *SimMachine) JogCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == model.StateJog {
		m.state = model.StateIdle
		m.suspend = model.SuspendDisable
	}
}

// Reset implements the ctrl-x realtime command.
func (m *SimMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gc = model.ParserState{CoordSystem: m.coords[0]}
	m.suspend = model.SuspendDisable
	m.spindleState = model.SpindleStateDisable
	m.coolant = 0
	if m.settings.HomingEnable {
		m.state = model.StateAlarm
	} else {
		m.state = model.StateIdle
	}
}

// StartupLine returns stored startup block n, empty when unset.
func (m *SimMachine) StartupLine(n int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= NumStartupLines {
		return ""
	}
	return m.startup[n]
}

// SetStartupLine stores startup block n.
func (m *SimMachine) SetStartupLine(n int, line string) model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= NumStartupLines {
		return model.StatusInvalidStatement
	}
	m.startup[n] = line
	return model.StatusOK
}

// BuildLine returns the stored user build-info line.
func (m *SimMachine) BuildLine() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildLine
}

// SetBuildLine stores the user build-info line ($I=).
func (m *SimMachine) SetBuildLine(line string) model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildLine = line
	return model.StatusOK
}

// Restore resets persisted data to factory state.
func (m *SimMachine) Restore(kind byte) model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case '$':
		m.settings = model.DefaultSettings()
	case '#':
		m.coords = model.CoordTable{}
		m.startup = [NumStartupLines]string{}
		m.gc.CoordSystem = model.AxisVector{}
		m.gc.CoordOffset = model.AxisVector{}
	case '*':
		m.settings = model.DefaultSettings()
		m.coords = model.CoordTable{}
		m.startup = [NumStartupLines]string{}
		m.gc = model.ParserState{}
	default:
		return model.StatusInvalidStatement
	}
	return model.StatusOK
}
