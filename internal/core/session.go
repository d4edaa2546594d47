package core

import (
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
	"github.com/apollo2030/grblesp/internal/parser"
	"github.com/apollo2030/grblesp/internal/report"
)

// Realtime command characters, picked out of the byte stream before line
// framing. The extended set uses bytes above the printable ASCII range.
const (
	cmdStatusReport = '?'
	cmdCycleStart   = '~'
	cmdFeedHold     = '!'
	cmdReset        = 0x18
	cmdJogCancel    = 0x85
)

// Session binds one input channel to the machine: it strips realtime commands
// out of the stream, frames and sanitizes lines, dispatches system commands
// and G-code blocks and acknowledges every line on the channel it came from.
type Session struct {
	client   report.Client
	reporter *report.Reporter
	machine  Machine
	echo     bool
}

// NewSession creates a dispatcher for one input channel.
func NewSession(client report.Client, r *report.Reporter, m Machine, echo bool) *Session {
	return &Session{client: client, reporter: r, machine: m, echo: echo}
}

// Execute processes one received line, realtime characters included.
func (s *Session) Execute(raw string) error {
	line, handled, err := s.extractRealtime(raw)
	if err != nil {
		return err
	}
	line = sanitizeLine(line)
	if line == "" {
		// A bare realtime character carries no line terminator and gets no
		// acknowledgment; a terminated line always does, even when realtime
		// characters were all it held.
		if handled && !strings.ContainsAny(raw, "\r\n") {
			return nil
		}
		return s.reporter.StatusMessage(s.client, model.StatusOK)
	}
	if s.echo {
		if err := s.reporter.EchoLineReceived(s.client, line); err != nil {
			return err
		}
	}
	if line[0] == '$' {
		return s.systemCommand(line)
	}
	return s.gcodeLine(line)
}

// extractRealtime executes and removes realtime command characters, returning
// the remaining line text.
func (s *Session) extractRealtime(raw string) (string, bool, error) {
	var b strings.Builder
	handled := false
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case cmdStatusReport:
			handled = true
			snap := s.machine.Snapshot()
			err := s.reporter.RealtimeStatus(s.client, snap, s.machine.Settings(), s.machine.Capabilities())
			if err != nil {
				return "", handled, err
			}
		case cmdCycleStart:
			handled = true
			s.machine.CycleStart()
		case cmdFeedHold:
			handled = true
			s.machine.FeedHold()
		case cmdReset:
			handled = true
			s.machine.Reset()
		case cmdJogCancel:
			handled = true
			s.machine.JogCancel()
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String(), handled, nil
}

// sanitizeLine uppercases the block and removes whitespace, line terminators
// and both comment forms.
func sanitizeLine(raw string) string {
	var b strings.Builder
	inParen := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inParen:
			if c == ')' {
				inParen = false
			}
		case c == '(':
			inParen = true
		case c == ';':
			return b.String()
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// systemCommand dispatches a '$' line.
func (s *Session) systemCommand(line string) error {
	switch line {
	case "$":
		if err := s.reporter.HelpMessage(s.client); err != nil {
			return err
		}
		return s.ack(model.StatusOK)
	case "$$":
		if err := s.reporter.Settings(s.client, s.machine.Settings(), s.machine.Capabilities()); err != nil {
			return err
		}
		return s.ack(model.StatusOK)
	case "$G":
		snap := s.machine.Snapshot()
		err := s.reporter.GCodeModes(s.client, s.machine.Settings(), s.machine.Capabilities(), snap.Parser, snap.OverrideCtrl)
		if err != nil {
			return err
		}
		return s.ack(model.StatusOK)
	case "$#":
		if code := s.requireIdle(); code != model.StatusOK {
			return s.ack(code)
		}
		snap := s.machine.Snapshot()
		err := s.reporter.NGCParams(s.client, s.machine.Settings(), s.machine.Coordinates(), snap.Parser, s.machine.Probe())
		if err != nil {
			return err
		}
		return s.ack(model.StatusOK)
	case "$I":
		if err := s.reporter.BuildInfo(s.client, s.machine.BuildLine(), s.machine.Capabilities()); err != nil {
			return err
		}
		return s.ack(model.StatusOK)
	case "$N":
		for n := 0; n < NumStartupLines; n++ {
			if err := s.reporter.StartupLine(s.client, n, s.machine.StartupLine(n)); err != nil {
				return err
			}
		}
		return s.ack(model.StatusOK)
	case "$C":
		enabled, code := s.machine.ToggleCheckMode()
		if code == model.StatusOK {
			if enabled {
				_ = s.reporter.FeedbackMessage(model.MessageEnabled)
			} else {
				_ = s.reporter.FeedbackMessage(model.MessageDisabled)
			}
		}
		return s.ack(code)
	case "$X":
		if s.machine.State() == model.StateAlarm {
			if err := s.reporter.FeedbackMessage(model.MessageAlarmUnlock); err != nil {
				return err
			}
			return s.ack(s.machine.Unlock())
		}
		return s.ack(model.StatusOK)
	case "$H":
		if !s.machine.Settings().HomingEnable {
			return s.ack(model.StatusSettingDisabled)
		}
		return s.ack(s.machine.Home())
	case "$SLP":
		if err := s.reporter.FeedbackMessage(model.MessageSleepMode); err != nil {
			return err
		}
		return s.ack(s.machine.Sleep())
	}

	switch {
	case strings.HasPrefix(line, "$J="):
		words, code := parseWords(line, 3)
		if code != model.StatusOK {
			return s.ack(code)
		}
		return s.ack(s.machine.Jog(words))
	case strings.HasPrefix(line, "$I="):
		if !s.machine.Capabilities().BuildInfoWrite {
			return s.ack(model.StatusInvalidStatement)
		}
		return s.ack(s.machine.SetBuildLine(line[3:]))
	case strings.HasPrefix(line, "$RST="):
		return s.restore(line)
	case strings.HasPrefix(line, "$N"):
		return s.storeStartupLine(line)
	default:
		return s.storeSetting(line)
	}
}

// restore handles $RST= with per-target capability gates.
func (s *Session) restore(line string) error {
	if len(line) != 6 {
		return s.ack(model.StatusInvalidStatement)
	}
	caps := s.machine.Capabilities()
	kind := line[5]
	allowed := (kind == '$' && caps.RestoreDefaultSettings) ||
		(kind == '#' && caps.RestoreClearParameters) ||
		(kind == '*' && caps.RestoreWipeAll)
	if !allowed {
		return s.ack(model.StatusInvalidStatement)
	}
	code := s.machine.Restore(kind)
	if code == model.StatusOK {
		if err := s.reporter.FeedbackMessage(model.MessageRestoreDefaults); err != nil {
			return err
		}
	}
	return s.ack(code)
}

// storeStartupLine handles $N<n>=<block>.
func (s *Session) storeStartupLine(line string) error {
	value, pos, err := parser.ReadFloat(line, 2)
	if err != nil {
		return s.ack(model.StatusBadNumberFormat)
	}
	if pos >= len(line) || line[pos] != '=' {
		return s.ack(model.StatusInvalidStatement)
	}
	if code := s.requireIdle(); code != model.StatusOK {
		return s.ack(code)
	}
	block := line[pos+1:]
	// The block must parse cleanly before it is stored.
	if _, code := parseWords(block, 0); code != model.StatusOK {
		return s.ack(code)
	}
	return s.ack(s.machine.SetStartupLine(int(value), block))
}

// storeSetting handles $<num>=<value>.
func (s *Session) storeSetting(line string) error {
	num, pos, err := parser.ReadFloat(line, 1)
	if err != nil {
		return s.ack(model.StatusInvalidStatement)
	}
	if pos >= len(line) || line[pos] != '=' {
		return s.ack(model.StatusInvalidStatement)
	}
	value, pos, err := parser.ReadFloat(line, pos+1)
	if err != nil || pos != len(line) {
		return s.ack(model.StatusBadNumberFormat)
	}
	if code := s.requireIdle(); code != model.StatusOK {
		return s.ack(code)
	}
	return s.ack(s.machine.Settings().Set(int(num), value))
}

// gcodeLine parses and executes a plain G-code block.
func (s *Session) gcodeLine(line string) error {
	state := s.machine.State()
	if state == model.StateAlarm || state == model.StateSleep {
		return s.ack(model.StatusSystemGCLock)
	}
	words, code := parseWords(line, 0)
	if code != model.StatusOK {
		return s.ack(code)
	}
	if err := s.ack(s.machine.ExecuteWords(words)); err != nil {
		return err
	}
	if alarm, ok := s.machine.TakeAlarm(); ok {
		if err := s.reporter.AlarmMessage(alarm); err != nil {
			return err
		}
		return s.reporter.FeedbackMessage(model.MessageCriticalEvent)
	}
	return nil
}

// RunStartupLines executes the stored startup blocks, reporting each one with
// its result. Skipped entirely while the machine is locked.
func (s *Session) RunStartupLines() error {
	if s.machine.State() == model.StateAlarm {
		return nil
	}
	for n := 0; n < NumStartupLines; n++ {
		block := s.machine.StartupLine(n)
		if block == "" {
			continue
		}
		words, code := parseWords(block, 0)
		if code == model.StatusOK {
			code = s.machine.ExecuteWords(words)
		}
		if err := s.reporter.ExecuteStartupMessage(s.client, block, code); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) ack(code model.StatusCode) error {
	return s.reporter.StatusMessage(s.client, code)
}

// requireIdle gates commands that touch persisted data.
func (s *Session) requireIdle() model.StatusCode {
	switch s.machine.State() {
	case model.StateIdle, model.StateAlarm:
		return model.StatusOK
	default:
		return model.StatusIdleError
	}
}

// parseWords splits a block into letter/value words starting at offset start.
func parseWords(line string, start int) ([]Word, model.StatusCode) {
	var words []Word
	pos := start
	for pos < len(line) {
		letter := line[pos]
		if letter < 'A' || letter > 'Z' {
			return nil, model.StatusExpectedCommandLetter
		}
		pos++
		value, next, err := parser.ReadFloat(line, pos)
		if err != nil {
			return nil, model.StatusBadNumberFormat
		}
		pos = next
		words = append(words, Word{Letter: letter, Value: value})
	}
	return words, model.StatusOK
}
