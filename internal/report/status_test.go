package report

import (
	"strings"
	"testing"

	"github.com/apollo2030/grblesp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idleSnapshot() *model.StatusSnapshot {
	return &model.StatusSnapshot{
		State:             model.StateIdle,
		Parser:            &model.ParserState{},
		PlannerBlocksFree: 15,
		RxBytesFree:       128,
		FeedOverride:      100,
		RapidOverride:     100,
		SpindleOverride:   100,
	}
}

func statusLine(t *testing.T, r *Reporter, sink *memSink, snap *model.StatusSnapshot, s *model.Settings, caps model.Capabilities) string {
	t.Helper()
	before := len(sink.lines)
	require.NoError(t, r.RealtimeStatus(ClientSerial, snap, s, caps))
	require.Len(t, sink.lines, before+1)
	return sink.lines[before]
}

func TestRealtimeStatusIdle(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()
	snap := idleSnapshot()

	// First report: throttle counters are fresh, so WCO appears and the
	// override field is deferred by one report.
	line := statusLine(t, r, sink, snap, &s, caps)
	assert.Equal(t, "<Idle|MPos:0.000,0.000,0.000|Bf:15,128|FS:0,0|WCO:0.000,0.000,0.000>\r\n", line)

	line = statusLine(t, r, sink, snap, &s, caps)
	assert.Equal(t, "<Idle|MPos:0.000,0.000,0.000|Bf:15,128|FS:0,0|Ov:100,100,100>\r\n", line)
}

func TestRealtimeStatusHoldLabels(t *testing.T) {
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()

	cases := []struct {
		suspend model.SuspendFlags
		prefix  string
	}{
		{model.SuspendDisable, "<Hold:1|"},
		{model.SuspendHoldComplete, "<Hold:0|"},
		// A cancelled jog reports the jog state until fully settled.
		{model.SuspendJogCancel, "<Jog|"},
		{model.SuspendJogCancel | model.SuspendHoldComplete, "<Jog|"},
	}
	for _, c := range cases {
		r, sink := newTestReporter()
		snap := idleSnapshot()
		snap.State = model.StateHold
		snap.Suspend = c.suspend
		line := statusLine(t, r, sink, snap, &s, caps)
		assert.True(t, strings.HasPrefix(line, c.prefix), "suspend=%b got %q", c.suspend, line)
	}
}

func TestRealtimeStatusDoorLabels(t *testing.T) {
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()

	cases := []struct {
		suspend model.SuspendFlags
		prefix  string
	}{
		{model.SuspendInitiateRestore, "<Door:3|"},
		{model.SuspendRetractComplete | model.SuspendSafetyDoorAjar, "<Door:1|"},
		{model.SuspendRetractComplete, "<Door:0|"},
		{model.SuspendDisable, "<Door:2|"},
	}
	for _, c := range cases {
		r, sink := newTestReporter()
		snap := idleSnapshot()
		snap.State = model.StateSafetyDoor
		snap.Suspend = c.suspend
		line := statusLine(t, r, sink, snap, &s, caps)
		assert.True(t, strings.HasPrefix(line, c.prefix), "suspend=%b got %q", c.suspend, line)
	}
}

func TestRealtimeStatusSimpleLabels(t *testing.T) {
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()

	cases := map[model.State]string{
		model.StateCycle:     "<Run|",
		model.StateJog:       "<Jog|",
		model.StateHoming:    "<Home|",
		model.StateAlarm:     "<Alarm|",
		model.StateCheckMode: "<Check|",
		model.StateSleep:     "<Sleep|",
	}
	for state, prefix := range cases {
		r, sink := newTestReporter()
		snap := idleSnapshot()
		snap.State = state
		line := statusLine(t, r, sink, snap, &s, caps)
		assert.True(t, strings.HasPrefix(line, prefix), "state=%v got %q", state, line)
	}
}

func TestRealtimeStatusWorkPosition(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	s.StatusReportMask = model.ReportBufferState // WPos mode
	caps := model.DefaultCapabilities()

	snap := idleSnapshot()
	snap.Position = [model.NumAxes]int32{2500, 0, 0} // 10mm on X
	snap.Parser = &model.ParserState{
		CoordSystem:      model.AxisVector{10.0, 0.0, 0.0},
		ToolLengthOffset: 5.0,
	}

	line := statusLine(t, r, sink, snap, &s, caps)
	// WPos = MPos minus coordinate system, G92 and tool length offsets.
	assert.True(t, strings.HasPrefix(line, "<Idle|WPos:0.000,0.000,-5.000|"), line)
	assert.Contains(t, line, "|WCO:10.000,0.000,5.000")
}

func TestRealtimeStatusInchPosition(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	s.ReportInches = true
	caps := model.DefaultCapabilities()

	snap := idleSnapshot()
	snap.Position = [model.NumAxes]int32{63500, 0, -31750} // 254mm, 0, -127mm

	line := statusLine(t, r, sink, snap, &s, caps)
	assert.Contains(t, line, "|MPos:10.0000,0.0000,-5.0000")
}

func TestRealtimeStatusFeedSpeedInchMode(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	s.ReportInches = true
	caps := model.DefaultCapabilities()

	snap := idleSnapshot()
	snap.FeedRate = 100.0
	snap.SpindleSpeed = 254.0

	// With variable spindle only the spindle column is unit-converted;
	// the rate keeps its native value with one decimal. Wire parity.
	line := statusLine(t, r, sink, snap, &s, caps)
	assert.Contains(t, line, "|FS:100.0,10")
}

func TestRealtimeStatusLineNumber(t *testing.T) {
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()
	caps.LineNumbers = true

	r, sink := newTestReporter()
	snap := idleSnapshot()
	snap.LineNumber = 42
	assert.Contains(t, statusLine(t, r, sink, snap, &s, caps), "|Ln:42")

	// Line zero means no block in execution; the field is omitted.
	r, sink = newTestReporter()
	snap.LineNumber = 0
	assert.NotContains(t, statusLine(t, r, sink, snap, &s, caps), "|Ln:")
}

func TestRealtimeStatusPinState(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()

	snap := idleSnapshot()
	snap.Pins = model.PinState{
		Probe:   true,
		Limit:   1<<model.AxisX | 1<<model.AxisZ,
		Control: model.ControlPinReset | model.ControlPinCycleStart,
	}

	line := statusLine(t, r, sink, snap, &s, caps)
	assert.Contains(t, line, "|Pn:PXZRS")

	// No active pins, no field at all.
	r, sink = newTestReporter()
	snap.Pins = model.PinState{}
	assert.NotContains(t, statusLine(t, r, sink, snap, &s, caps), "|Pn:")
}

func TestRealtimeStatusAccessoryState(t *testing.T) {
	r, sink := newTestReporter()
	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()
	caps.ReportWCO = false // keep the override field on the first report

	snap := idleSnapshot()
	snap.SpindleState = model.SpindleStateCW
	snap.Coolant = model.CoolantFlood | model.CoolantMist

	// Mist is gated by its capability even when the state bit is set.
	line := statusLine(t, r, sink, snap, &s, caps)
	assert.Contains(t, line, "|Ov:100,100,100|A:SF>")

	r, sink = newTestReporter()
	caps.CoolantMist = true
	snap.SpindleState = model.SpindleStateCCW
	line = statusLine(t, r, sink, snap, &s, caps)
	assert.Contains(t, line, "|A:CFM>")
}

func TestRealtimeStatusWCOThrottle(t *testing.T) {
	cfg := testReportConfig()
	cfg.WCORefreshBusy = 5
	cfg.WCORefreshIdle = 2

	broker := NewBroker()
	sink := &memSink{}
	broker.Register(ClientSerial, sink)
	r := NewReporter(broker, cfg)

	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()
	snap := idleSnapshot()
	snap.State = model.StateCycle // busy refresh period applies

	var withWCO []int
	for i := 0; i < 11; i++ {
		line := statusLine(t, r, sink, snap, &s, caps)
		if strings.Contains(line, "|WCO:") {
			withWCO = append(withWCO, i)
		}
	}
	// Fresh counter fires immediately, then once per busy period.
	assert.Equal(t, []int{0, 5, 10}, withWCO)
}

func TestRealtimeStatusOverrideDeferredByWCO(t *testing.T) {
	cfg := testReportConfig()
	cfg.OvrRefreshIdle = 3

	broker := NewBroker()
	sink := &memSink{}
	broker.Register(ClientSerial, sink)
	r := NewReporter(broker, cfg)

	s := model.DefaultSettings()
	caps := model.DefaultCapabilities()
	snap := idleSnapshot()

	// Report 0 carries WCO and bumps the override counter to one, so the
	// override field lands on report 1 and then every idle period.
	var withOv []int
	for i := 0; i < 8; i++ {
		line := statusLine(t, r, sink, snap, &s, caps)
		if strings.Contains(line, "|Ov:") {
			withOv = append(withOv, i)
		}
	}
	assert.Equal(t, []int{1, 4, 7}, withOv)
}
