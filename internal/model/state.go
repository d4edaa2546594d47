// Package model defines the shared machine-state structures exchanged across the
// protocol boundary. All of them are built by the hosting control loop and passed
// to the encoders as read-only snapshots; the encoders never mutate them.
package model

// NumAxes is the number of machine axes compiled into the controller.
const NumAxes = 3

// Axis indices into an AxisVector. Limit pin characters follow the same order.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// ToolLengthOffsetAxis is the axis the tool length offset is applied to.
const ToolLengthOffsetAxis = AxisZ

// MMPerInch converts the stored millimeter representation to inch display units.
const MMPerInch = 25.4

// AxisVector is a fixed-length position or offset in machine or work coordinates.
// Values are always stored in millimeters; unit conversion happens at encode time.
type AxisVector [NumAxes]float64

// State is the machine operating state. Values are bit flags so that the busy
// group can be tested with a single mask.
type State uint16

const (
	StateIdle       State = 0
	StateAlarm      State = 1 << 0
	StateCheckMode  State = 1 << 1
	StateHoming     State = 1 << 2
	StateCycle      State = 1 << 3
	StateHold       State = 1 << 4
	StateJog        State = 1 << 5
	StateSafetyDoor State = 1 << 6
	StateSleep      State = 1 << 7
)

// BusyStates groups the states that use the fast status-report refresh periods.
const BusyStates = StateHoming | StateCycle | StateHold | StateJog | StateSafetyDoor

// SuspendFlags refine the Hold and SafetyDoor states with the progress of the
// hold/retract/restore sequence. Only meaningful while state is Hold or SafetyDoor.
type SuspendFlags uint8

const (
	SuspendDisable         SuspendFlags = 0
	SuspendHoldComplete    SuspendFlags = 1 << 0
	SuspendRestartRetract  SuspendFlags = 1 << 1
	SuspendRetractComplete SuspendFlags = 1 << 2
	SuspendInitiateRestore SuspendFlags = 1 << 3
	SuspendRestoreComplete SuspendFlags = 1 << 4
	SuspendSafetyDoorAjar  SuspendFlags = 1 << 5
	SuspendMotionCancel    SuspendFlags = 1 << 6
	SuspendJogCancel       SuspendFlags = 1 << 7
)

// MotionMode values mirror the G-code numbers they encode. The probe modes map to
// G38.2 through G38.5.
type MotionMode uint8

const (
	MotionModeSeek               MotionMode = 0 // G0
	MotionModeLinear             MotionMode = 1 // G1
	MotionModeCWArc              MotionMode = 2 // G2
	MotionModeCCWArc             MotionMode = 3 // G3
	MotionModeNone               MotionMode = 80
	MotionModeProbeToward        MotionMode = 140 // G38.2
	MotionModeProbeTowardNoError MotionMode = 141 // G38.3
	MotionModeProbeAway          MotionMode = 142 // G38.4
	MotionModeProbeAwayNoError   MotionMode = 143 // G38.5
)

// PlaneMode selects the active circular motion plane (G17/G18/G19).
type PlaneMode uint8

const (
	PlaneXY PlaneMode = 0
	PlaneZX PlaneMode = 1
	PlaneYZ PlaneMode = 2
)

// UnitsMode selects programmed units (G20/G21).
type UnitsMode uint8

const (
	UnitsMM     UnitsMode = 0
	UnitsInches UnitsMode = 1
)

// DistanceMode selects absolute or incremental motion (G90/G91).
type DistanceMode uint8

const (
	DistanceAbsolute    DistanceMode = 0
	DistanceIncremental DistanceMode = 1
)

// FeedRateMode selects units-per-minute or inverse-time feed (G94/G93).
type FeedRateMode uint8

const (
	FeedUnitsPerMin FeedRateMode = 0
	FeedInverseTime FeedRateMode = 1
)

// ProgramFlow values mirror the M-code numbers they encode where one exists.
type ProgramFlow uint8

const (
	ProgramFlowRunning      ProgramFlow = 0
	ProgramFlowCompletedM2  ProgramFlow = 2
	ProgramFlowPaused       ProgramFlow = 3 // M0
	ProgramFlowCompletedM30 ProgramFlow = 30
)

// SpindleMode is the modal spindle direction (M3/M4/M5).
type SpindleMode uint8

const (
	SpindleDisable   SpindleMode = 0
	SpindleEnableCW  SpindleMode = 1
	SpindleEnableCCW SpindleMode = 2
)

// CoolantState is a bitset; flood and mist may be active at the same time.
type CoolantState uint8

const (
	CoolantFlood CoolantState = 1 << 0
	CoolantMist  CoolantState = 1 << 1
)

// SpindleState is the live spindle output state, as opposed to the modal request.
type SpindleState uint8

const (
	SpindleStateDisable SpindleState = 0
	SpindleStateCW      SpindleState = 1 << 0
	SpindleStateCCW     SpindleState = 1 << 1
)

// OverrideCtrl selects the override control mode (M56).
type OverrideCtrl uint8

const (
	OverrideParkingDisabled OverrideCtrl = 0
	OverrideParkingMotion   OverrideCtrl = 1
)

// ControlPins is a bitset of active control inputs.
type ControlPins uint8

const (
	ControlPinSafetyDoor ControlPins = 1 << 0
	ControlPinReset      ControlPins = 1 << 1
	ControlPinFeedHold   ControlPins = 1 << 2
	ControlPinCycleStart ControlPins = 1 << 3
)

// PinState is the sampled input pin state included in the real-time report.
// Limit holds one bit per axis, ordered as the axis indices.
type PinState struct {
	Limit   uint8
	Control ControlPins
	Probe   bool
}

// Any reports whether at least one input is active.
func (p PinState) Any() bool {
	return p.Limit != 0 || p.Control != 0 || p.Probe
}

// ModalState holds the sticky G-code modal groups of the interpreter.
type ModalState struct {
	Motion      MotionMode
	CoordSelect uint8 // 0..5 select G54..G59
	Plane       PlaneMode
	Units       UnitsMode
	Distance    DistanceMode
	FeedMode    FeedRateMode
	ProgramFlow ProgramFlow
	Spindle     SpindleMode
	Coolant     CoolantState
}

// ParserState is the read-only view of the G-code interpreter state consumed by
// the modal-state and status encoders.
type ParserState struct {
	Modal            ModalState
	Tool             uint8
	FeedRate         float64
	SpindleSpeed     float64
	CoordSystem      AxisVector // active work coordinate system origin, machine coords
	CoordOffset      AxisVector // non-persistent G92 offset
	ToolLengthOffset float64
}

// WorkOffsets returns the combined work coordinate offset: coordinate system plus
// G92 offset, with the tool length offset folded into its designated axis.
func (g *ParserState) WorkOffsets() AxisVector {
	var wco AxisVector
	for idx := 0; idx < NumAxes; idx++ {
		wco[idx] = g.CoordSystem[idx] + g.CoordOffset[idx]
	}
	wco[ToolLengthOffsetAxis] += g.ToolLengthOffset
	return wco
}

// ProbeState is the last probe cycle result, retained until power cycle.
type ProbeState struct {
	Position [NumAxes]int32 // machine position in steps
	Succeeded bool
}

// StatusSnapshot is the live machine view consumed by the real-time status
// encoder. The hosting loop builds one per report.
type StatusSnapshot struct {
	State   State
	Suspend SuspendFlags

	Position [NumAxes]int32 // machine position in steps
	Parser   *ParserState

	PlannerBlocksFree int
	RxBytesFree       int
	LineNumber        int32
	FeedRate          float64 // realtime rate, mm/min
	SpindleSpeed      float64

	Pins PinState

	FeedOverride    uint8 // percent
	RapidOverride   uint8
	SpindleOverride uint8
	SpindleState    SpindleState
	Coolant         CoolantState
	OverrideCtrl    OverrideCtrl
}
