package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo2030/grblesp/internal/model"
)

func words(ws ...Word) []Word { return ws }

func TestExecuteWordsModalGroups(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	code := m.ExecuteWords(words(
		Word{'G', 20}, Word{'G', 91}, Word{'G', 18}, Word{'G', 93},
	))
	require.Equal(t, model.StatusOK, code)

	gc := m.Snapshot().Parser
	assert.Equal(t, model.UnitsInches, gc.Modal.Units)
	assert.Equal(t, model.DistanceIncremental, gc.Modal.Distance)
	assert.Equal(t, model.PlaneZX, gc.Modal.Plane)
	assert.Equal(t, model.FeedInverseTime, gc.Modal.FeedMode)
}

func TestExecuteWordsCoordSelectLoadsStoredSystem(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Coordinates[2] = model.AxisVector{1.5, -2.0, 0.0} // G56
	m := NewSimMachine(cfg)

	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 56})))
	gc := m.Snapshot().Parser
	assert.Equal(t, uint8(2), gc.Modal.CoordSelect)
	assert.Equal(t, model.AxisVector{1.5, -2.0, 0.0}, gc.CoordSystem)
}

func TestExecuteWordsAbsoluteMoveInWorkCoords(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Coordinates[0] = model.AxisVector{10.0, 0.0, 0.0}
	m := NewSimMachine(cfg)

	// X0 in G54 work coordinates sits at machine X10.
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', 0})))
	assert.Equal(t, int32(2500), m.Snapshot().Position[model.AxisX])
}

func TestExecuteWordsSoftLimitTripsAlarm(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Settings.SoftLimitEnable = true
	m := NewSimMachine(cfg)

	// The block is accepted, the motion is discarded and the alarm is left
	// pending for the session to report.
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', 10})))
	assert.Equal(t, model.StateAlarm, m.State())
	assert.Equal(t, [model.NumAxes]int32{}, m.Snapshot().Position)

	alarm, ok := m.TakeAlarm()
	require.True(t, ok)
	assert.Equal(t, model.AlarmSoftLimit, alarm)

	// The alarm is delivered exactly once.
	_, ok = m.TakeAlarm()
	assert.False(t, ok)
}

func TestExecuteWordsSoftLimitAllowsEnvelope(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Settings.SoftLimitEnable = true
	m := NewSimMachine(cfg)

	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', -10})))
	assert.Equal(t, model.StateIdle, m.State())
	assert.Equal(t, int32(-2500), m.Snapshot().Position[model.AxisX])
}

func TestExecuteWordsIncrementalMoves(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 91})))
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', 10})))
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', 10})))
	assert.Equal(t, int32(5000), m.Snapshot().Position[model.AxisX])
}

func TestExecuteWordsInchProgramming(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 20})))
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 0}, Word{'X', 1})))
	// 1 inch is 25.4mm at 250 steps/mm.
	assert.Equal(t, int32(6350), m.Snapshot().Position[model.AxisX])
}

func TestExecuteWordsG92Offset(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 92}, Word{'X', 5})))

	gc := m.Snapshot().Parser
	assert.InDelta(t, -5.0, gc.CoordOffset[model.AxisX], 1e-9)

	// G92.1 clears it again.
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 92.1})))
	assert.Equal(t, model.AxisVector{}, m.Snapshot().Parser.CoordOffset)
}

func TestExecuteWordsGotoPredefinedPosition(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Coordinates[model.CoordIndexG28] = model.AxisVector{5.0, 0.0, 0.0}
	m := NewSimMachine(cfg)

	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'G', 28})))
	assert.Equal(t, int32(1250), m.Snapshot().Position[model.AxisX])
}

func TestExecuteWordsProbeRecordsContact(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	code := m.ExecuteWords(words(Word{'G', 38.2}, Word{'Z', -5}, Word{'F', 100}))
	require.Equal(t, model.StatusOK, code)

	probe := m.Probe()
	assert.True(t, probe.Succeeded)
	assert.Equal(t, int32(-1250), probe.Position[model.AxisZ])
	assert.Equal(t, model.MotionModeProbeToward, m.Snapshot().Parser.Modal.Motion)
}

func TestExecuteWordsSpindleAndCoolant(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'M', 3}, Word{'S', 8000})))

	snap := m.Snapshot()
	assert.Equal(t, model.SpindleEnableCW, snap.Parser.Modal.Spindle)
	assert.Equal(t, model.SpindleStateCW, snap.SpindleState)
	assert.InDelta(t, 8000.0, snap.Parser.SpindleSpeed, 1e-9)

	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'M', 8})))
	assert.Equal(t, model.CoolantFlood, m.Snapshot().Coolant)

	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'M', 9}, Word{'M', 5})))
	snap = m.Snapshot()
	assert.Equal(t, model.CoolantState(0), snap.Coolant)
	assert.Equal(t, model.SpindleStateDisable, snap.SpindleState)
}

func TestExecuteWordsMistGatedByCapability(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	assert.Equal(t, model.StatusGcodeUnsupportedCommand, m.ExecuteWords(words(Word{'M', 7})))

	cfg := model.DefaultConfig()
	cfg.Capabilities.CoolantMist = true
	m = NewSimMachine(cfg)
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'M', 7})))
	assert.Equal(t, model.CoolantMist, m.Snapshot().Coolant)
}

func TestExecuteWordsParkingOverrideGatedByCapability(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	assert.Equal(t, model.StatusGcodeUnsupportedCommand, m.ExecuteWords(words(Word{'M', 56})))

	cfg := model.DefaultConfig()
	cfg.Capabilities.ParkingOverrideControl = true
	m = NewSimMachine(cfg)
	require.Equal(t, model.StatusOK, m.ExecuteWords(words(Word{'M', 56})))
	assert.Equal(t, model.OverrideParkingMotion, m.Snapshot().OverrideCtrl)
}

func TestJogRequiresIdleOrJog(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	m.FeedHold()
	code := m.Jog(words(Word{'X', 1}, Word{'F', 100}))
	assert.Equal(t, model.StatusIdleError, code)
}

func TestJogRejectsModalWords(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	code := m.Jog(words(Word{'G', 1}, Word{'X', 1}, Word{'F', 100}))
	assert.Equal(t, model.StatusInvalidStatement, code)

	// Unit and distance selectors are the allowed exceptions.
	code = m.Jog(words(Word{'G', 91}, Word{'X', 2}, Word{'F', 100}))
	assert.Equal(t, model.StatusOK, code)
	assert.Equal(t, int32(500), m.Snapshot().Position[model.AxisX])
}

func TestRestoreClearsParameters(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Coordinates[1] = model.AxisVector{3.0, 0.0, 0.0}
	cfg.StartupLines = []string{"G55"}
	m := NewSimMachine(cfg)

	require.Equal(t, model.StatusOK, m.Restore('#'))
	coord, err := m.Coordinates().ReadCoordData(1)
	require.NoError(t, err)
	assert.Equal(t, model.AxisVector{}, coord)
	assert.Equal(t, "", m.StartupLine(0))
}

func TestResetReturnsToIdleWithoutHoming(t *testing.T) {
	m := NewSimMachine(model.DefaultConfig())
	require.Equal(t, model.StatusOK, m.Sleep())
	m.Reset()
	assert.Equal(t, model.StateIdle, m.State())
}
