package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/apollo2030/grblesp/internal/model"
)

// Protocol version identifiers emitted in the welcome and build-info records.
const (
	Version = "1.1f"
	Build   = "20180401"
)

// Reporter is the single feedback interface to the host: acknowledgments,
// alarms, bracketed messages and the report records all go through it. The
// only state it owns are the status-report throttle counters, touched from the
// control-loop context only.
type Reporter struct {
	broker      *Broker
	msgLevel    model.MsgLevel
	alarmSettle time.Duration

	wcoRefreshBusy int
	wcoRefreshIdle int
	ovrRefreshBusy int
	ovrRefreshIdle int
	wcoCounter     int
	ovrCounter     int
}

// NewReporter wires a reporter to a broker. Throttle counters start at zero so
// the first status report carries every throttled field.
func NewReporter(broker *Broker, cfg model.ReportConfig) *Reporter {
	settle := time.Duration(cfg.AlarmSettleMs) * time.Millisecond
	if settle < 0 {
		settle = 0
	}
	return &Reporter{
		broker:         broker,
		msgLevel:       model.ParseMsgLevel(cfg.MessageLevel),
		alarmSettle:    settle,
		wcoRefreshBusy: cfg.WCORefreshBusy,
		wcoRefreshIdle: cfg.WCORefreshIdle,
		ovrRefreshBusy: cfg.OvrRefreshBusy,
		ovrRefreshIdle: cfg.OvrRefreshIdle,
	}
}

// StatusMessage sends the per-line acknowledgment: "ok" for the success code,
// "error:<code>" for everything else.
func (r *Reporter) StatusMessage(client Client, code model.StatusCode) error {
	if code == model.StatusOK {
		return r.broker.Send(client, "ok\r\n")
	}
	return r.broker.Sendf(client, "error:%d\r\n", code)
}

// AlarmMessage broadcasts ALARM:<code> to every channel regardless of
// verbosity, then waits out the settle delay so the record clears transport
// buffering before the caller changes machine state.
func (r *Reporter) AlarmMessage(code model.AlarmCode) error {
	err := r.broker.Sendf(ClientAll, "ALARM:%d\r\n", code)
	time.Sleep(r.alarmSettle)
	return err
}

// Message wraps text as [MSG:<text>] and sends it when level is at or below
// the configured verbosity threshold. Above-threshold calls are no-ops.
func (r *Reporter) Message(client Client, level model.MsgLevel, format string, args ...any) error {
	if level > r.msgLevel {
		return nil
	}
	return r.broker.Sendf(client, "[MSG:%s]\r\n", fmt.Sprintf(format, args...))
}

// FeedbackMessage sends one of the fixed operator feedback messages.
func (r *Reporter) FeedbackMessage(code model.FeedbackCode) error {
	text, ok := model.FeedbackText[code]
	if !ok {
		return nil
	}
	return r.Message(ClientSerial, model.MsgLevelInfo, "%s", text)
}

// WelcomeMessage sends the startup banner.
func (r *Reporter) WelcomeMessage(client Client) error {
	return r.broker.Send(client, "\r\nGrbl "+Version+" ['$' for help]\r\n")
}

// HelpMessage sends the command summary line.
func (r *Reporter) HelpMessage(client Client) error {
	return r.broker.Send(client, "[HLP:$$ $+ $# $G $I $N $x=val $Nx=line $J=line $SLP $C $X $H ~ ! ? ctrl-x]\r\n")
}

// EchoLineReceived echoes a pre-parsed input line back to the sender.
func (r *Reporter) EchoLineReceived(client Client, line string) error {
	return r.broker.Sendf(client, "[echo: %s]\r\n", line)
}

// StartupLine prints stored startup line n.
func (r *Reporter) StartupLine(client Client, n int, line string) error {
	return r.broker.Sendf(client, "$N%d=%s\r\n", n, line)
}

// ExecuteStartupMessage reports the execution result of a startup line.
func (r *Reporter) ExecuteStartupMessage(client Client, line string, code model.StatusCode) error {
	if err := r.broker.Sendf(client, ">%s:", line); err != nil {
		return err
	}
	return r.StatusMessage(client, code)
}

// axisValues formats an axis vector with the display-unit conversion applied
// uniformly: 3 decimals in mm, 4 decimals in inches, comma-joined.
func axisValues(v model.AxisVector, inches bool) string {
	var b strings.Builder
	for idx := 0; idx < model.NumAxes; idx++ {
		if inches {
			fmt.Fprintf(&b, "%.4f", v[idx]/model.MMPerInch)
		} else {
			fmt.Fprintf(&b, "%.3f", v[idx])
		}
		if idx < model.NumAxes-1 {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func boolVal(b bool) int {
	if b {
		return 1
	}
	return 0
}
