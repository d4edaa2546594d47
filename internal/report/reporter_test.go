package report

import (
	"testing"

	"github.com/apollo2030/grblesp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMessage(t *testing.T) {
	r, sink := newTestReporter()

	require.NoError(t, r.StatusMessage(ClientSerial, model.StatusOK))
	require.NoError(t, r.StatusMessage(ClientSerial, model.StatusBadNumberFormat))
	require.NoError(t, r.StatusMessage(ClientSerial, model.StatusSettingReadFail))

	assert.Equal(t, []string{"ok\r\n", "error:2\r\n", "error:7\r\n"}, sink.lines)
}

func TestAlarmMessageBroadcasts(t *testing.T) {
	broker := NewBroker()
	serial := &memSink{}
	socket := &memSink{}
	broker.Register(ClientSerial, serial)
	broker.Register(ClientSocket, socket)
	r := NewReporter(broker, testReportConfig())

	require.NoError(t, r.AlarmMessage(model.AlarmHardLimit))

	assert.Equal(t, []string{"ALARM:1\r\n"}, serial.lines)
	assert.Equal(t, []string{"ALARM:1\r\n"}, socket.lines)
}

func TestMessageVerbosityThreshold(t *testing.T) {
	r, sink := newTestReporter() // threshold: info

	require.NoError(t, r.Message(ClientSerial, model.MsgLevelDebug, "dropped"))
	assert.Empty(t, sink.lines)

	require.NoError(t, r.Message(ClientSerial, model.MsgLevelInfo, "kept %d", 5))
	assert.Equal(t, []string{"[MSG:kept 5]\r\n"}, sink.lines)
}

func TestFeedbackMessage(t *testing.T) {
	r, sink := newTestReporter()

	require.NoError(t, r.FeedbackMessage(model.MessageAlarmLock))
	assert.Equal(t, []string{"[MSG:'$H'|'$X' to unlock]\r\n"}, sink.lines)
}

func TestWelcomeAndHelp(t *testing.T) {
	r, sink := newTestReporter()

	require.NoError(t, r.WelcomeMessage(ClientSerial))
	require.NoError(t, r.HelpMessage(ClientSerial))

	assert.Equal(t, "\r\nGrbl "+Version+" ['$' for help]\r\n", sink.lines[0])
	assert.Equal(t, "[HLP:$$ $+ $# $G $I $N $x=val $Nx=line $J=line $SLP $C $X $H ~ ! ? ctrl-x]\r\n", sink.lines[1])
}

func TestEchoAndStartupLines(t *testing.T) {
	r, sink := newTestReporter()

	require.NoError(t, r.EchoLineReceived(ClientSerial, "G1X2"))
	require.NoError(t, r.StartupLine(ClientSerial, 0, "G54"))
	require.NoError(t, r.ExecuteStartupMessage(ClientSerial, "G54", model.StatusOK))

	assert.Equal(t, []string{"[echo: G1X2]\r\n", "$N0=G54\r\n", ">G54:", "ok\r\n"}, sink.lines)
}

func TestAxisValuesFormatting(t *testing.T) {
	v := model.AxisVector{10.0, 0.0, -5.0}
	assert.Equal(t, "10.000,0.000,-5.000", axisValues(v, false))

	// Inch display divides by 25.4 and widens to 4 decimals.
	v = model.AxisVector{254.0, 0.0, -127.0}
	assert.Equal(t, "10.0000,0.0000,-5.0000", axisValues(v, true))
}
