package core

import (
	"math"

	"github.com/apollo2030/grblesp/internal/model"
)

// ExecuteWords applies one parsed block to the modal interpreter and moves the
// machine. Motion completes instantly, so a block never leaves the machine in
// the cycle state.
func (m *SimMachine) ExecuteWords(words []Word) model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	var target model.AxisVector
	var hasAxis [model.NumAxes]bool
	anyAxis := false
	setOffset := false
	gotoStored := -1

	for _, w := range words {
		switch w.Letter {
		case 'G':
			if code := m.applyGWord(w.Value, &setOffset, &gotoStored); code != model.StatusOK {
				return code
			}
		case 'M':
			if code := m.applyMWord(w.Value); code != model.StatusOK {
				return code
			}
		case 'F':
			m.gc.FeedRate = m.toMM(w.Value)
		case 'S':
			if w.Value < 0 {
				return model.StatusNegativeValue
			}
			m.gc.SpindleSpeed = w.Value
		case 'T':
			m.gc.Tool = uint8(w.Value)
		case 'X', 'Y', 'Z':
			axis := int(w.Letter - 'X')
			target[axis] = m.toMM(w.Value)
			hasAxis[axis] = true
			anyAxis = true
		case 'I', 'J', 'K', 'L', 'N', 'P', 'R':
			// Arc, dwell and line-number parameters carry no modal state here.
		default:
			return model.StatusGcodeUnsupportedCommand
		}
	}

	if m.state == model.StateCheckMode {
		return model.StatusOK
	}

	if setOffset {
		// G92 shifts the work frame so the current position reads as given.
		mpos := m.settings.StepsToPosition(m.position)
		for axis := 0; axis < model.NumAxes; axis++ {
			if hasAxis[axis] {
				m.gc.CoordOffset[axis] = mpos[axis] - m.gc.CoordSystem[axis] - target[axis]
			}
		}
		return model.StatusOK
	}

	if gotoStored >= 0 {
		stored, err := m.coords.ReadCoordData(gotoStored)
		if err != nil {
			return model.StatusSettingReadFail
		}
		m.moveTo(stored, [model.NumAxes]bool{true, true, true})
		return model.StatusOK
	}

	if anyAxis {
		if m.gc.Modal.Motion >= model.MotionModeProbeToward {
			return m.runProbe(target, hasAxis)
		}
		wco := m.gc.WorkOffsets()
		mpos := m.settings.StepsToPosition(m.position)
		var machine model.AxisVector
		for axis := 0; axis < model.NumAxes; axis++ {
			switch {
			case !hasAxis[axis]:
				machine[axis] = mpos[axis]
			case m.gc.Modal.Distance == model.DistanceIncremental:
				machine[axis] = mpos[axis] + target[axis]
			default:
				machine[axis] = target[axis] + wco[axis]
			}
		}
		if m.violatesSoftLimits(machine) {
			// The block is accepted, then the soft-limit alarm fires and the
			// motion is discarded.
			m.state = model.StateAlarm
			m.alarm = model.AlarmSoftLimit
			m.alarmPending = true
			return model.StatusOK
		}
		m.moveTo(machine, [model.NumAxes]bool{true, true, true})
	}
	return model.StatusOK
}

// violatesSoftLimits reports whether a machine-frame target leaves the valid
// travel envelope. Travel spans from the stored negative limit up to the
// origin.
func (m *SimMachine) violatesSoftLimits(machine model.AxisVector) bool {
	if !m.settings.SoftLimitEnable {
		return false
	}
	for axis := 0; axis < model.NumAxes; axis++ {
		if machine[axis] > 0 || machine[axis] < m.settings.MaxTravel[axis] {
			return true
		}
	}
	return false
}

// applyGWord updates one modal group from a G word.
func (m *SimMachine) applyGWord(value float64, setOffset *bool, gotoStored *int) model.StatusCode {
	switch intVal := int(value*10.0 + 0.5); intVal {
	case 0, 10, 20, 30:
		m.gc.Modal.Motion = model.MotionMode(intVal / 10)
	case 40: // dwell
	case 170:
		m.gc.Modal.Plane = model.PlaneXY
	case 180:
		m.gc.Modal.Plane = model.PlaneZX
	case 190:
		m.gc.Modal.Plane = model.PlaneYZ
	case 200:
		m.gc.Modal.Units = model.UnitsInches
	case 210:
		m.gc.Modal.Units = model.UnitsMM
	case 280:
		*gotoStored = model.CoordIndexG28
	case 300:
		*gotoStored = model.CoordIndexG30
	case 382, 383, 384, 385:
		m.gc.Modal.Motion = model.MotionModeProbeToward + model.MotionMode(intVal-382)
	case 530: // non-modal machine coordinates, a no-op with zero offsets pending
	case 540, 550, 560, 570, 580, 590:
		idx := uint8(intVal/10 - 54)
		stored, err := m.coords.ReadCoordData(int(idx))
		if err != nil {
			return model.StatusSettingReadFail
		}
		m.gc.Modal.CoordSelect = idx
		m.gc.CoordSystem = stored
	case 800:
		m.gc.Modal.Motion = model.MotionModeNone
	case 900:
		m.gc.Modal.Distance = model.DistanceAbsolute
	case 910:
		m.gc.Modal.Distance = model.DistanceIncremental
	case 920:
		*setOffset = true
	case 921: // G92.1 clears the offset
		m.gc.CoordOffset = model.AxisVector{}
	case 930:
		m.gc.Modal.FeedMode = model.FeedInverseTime
	case 940:
		m.gc.Modal.FeedMode = model.FeedUnitsPerMin
	default:
		return model.StatusGcodeUnsupportedCommand
	}
	return model.StatusOK
}

// applyMWord updates one modal group from an M word.
func (m *SimMachine) applyMWord(value float64) model.StatusCode {
	switch int(value + 0.5) {
	case 0:
		m.gc.Modal.ProgramFlow = model.ProgramFlowPaused
	case 1: // optional stop, not supported as a stop
	case 2:
		m.gc.Modal.ProgramFlow = model.ProgramFlowCompletedM2
	case 30:
		m.gc.Modal.ProgramFlow = model.ProgramFlowCompletedM30
	case 3:
		m.gc.Modal.Spindle = model.SpindleEnableCW
		m.spindleState = model.SpindleStateCW
	case 4:
		m.gc.Modal.Spindle = model.SpindleEnableCCW
		m.spindleState = model.SpindleStateCCW
	case 5:
		m.gc.Modal.Spindle = model.SpindleDisable
		m.spindleState = model.SpindleStateDisable
	case 7:
		if !m.caps.CoolantMist {
			return model.StatusGcodeUnsupportedCommand
		}
		m.gc.Modal.Coolant |= model.CoolantMist
		m.coolant |= model.CoolantMist
	case 8:
		m.gc.Modal.Coolant |= model.CoolantFlood
		m.coolant |= model.CoolantFlood
	case 9:
		m.gc.Modal.Coolant = 0
		m.coolant = 0
	case 56:
		if !m.caps.ParkingOverrideControl {
			return model.StatusGcodeUnsupportedCommand
		}
		m.overrideCtrl = model.OverrideParkingMotion
	default:
		return model.StatusGcodeUnsupportedCommand
	}
	return model.StatusOK
}

// Jog executes a $J= block: axis words plus an F word, independent of the
// modal interpreter. Distance words follow the current G90/G91 and G20/G21.
func (m *SimMachine) Jog(words []Word) model.StatusCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != model.StateIdle && m.state != model.StateJog {
		return model.StatusIdleError
	}

	// Jog modifiers default to the modal state but never change it.
	inches := m.gc.Modal.Units == model.UnitsInches
	incremental := m.gc.Modal.Distance == model.DistanceIncremental
	machineFrame := false
	hasFeed := false
	anyAxis := false

	for _, w := range words {
		switch w.Letter {
		case 'X', 'Y', 'Z':
			anyAxis = true
		case 'F':
			hasFeed = true
		case 'G':
			switch int(w.Value*10.0 + 0.5) {
			case 200:
				inches = true
			case 210:
				inches = false
			case 530:
				machineFrame = true
			case 900:
				incremental = false
			case 910:
				incremental = true
			default:
				return model.StatusInvalidStatement
			}
		default:
			return model.StatusInvalidStatement
		}
	}
	if !anyAxis {
		return model.StatusInvalidStatement
	}
	if !hasFeed {
		return model.StatusGcodeUndefinedFeedRate
	}

	wco := m.gc.WorkOffsets()
	mpos := m.settings.StepsToPosition(m.position)
	machine := mpos
	for _, w := range words {
		if w.Letter < 'X' || w.Letter > 'Z' {
			continue
		}
		axis := int(w.Letter - 'X')
		value := w.Value
		if inches {
			value *= model.MMPerInch
		}
		switch {
		case incremental:
			machine[axis] = mpos[axis] + value
		case machineFrame:
			machine[axis] = value
		default:
			machine[axis] = value + wco[axis]
		}
	}
	m.moveTo(machine, [model.NumAxes]bool{true, true, true})
	return model.StatusOK
}

// runProbe moves toward the target and records the probe contact there.
func (m *SimMachine) runProbe(target model.AxisVector, hasAxis [model.NumAxes]bool) model.StatusCode {
	wco := m.gc.WorkOffsets()
	mpos := m.settings.StepsToPosition(m.position)
	var machine model.AxisVector
	for axis := 0; axis < model.NumAxes; axis++ {
		if hasAxis[axis] {
			machine[axis] = target[axis] + wco[axis]
		} else {
			machine[axis] = mpos[axis]
		}
	}
	m.moveTo(machine, [model.NumAxes]bool{true, true, true})
	m.probe = model.ProbeState{Position: m.position, Succeeded: true}
	return model.StatusOK
}

// moveTo sets the machine position in steps for the selected axes.
func (m *SimMachine) moveTo(machine model.AxisVector, axes [model.NumAxes]bool) {
	for axis := 0; axis < model.NumAxes; axis++ {
		if axes[axis] {
			m.position[axis] = int32(math.Round(machine[axis] * m.settings.StepsPerMM[axis]))
		}
	}
}

// toMM converts a programmed value to millimeters under the active units mode.
func (m *SimMachine) toMM(value float64) float64 {
	if m.gc.Modal.Units == model.UnitsInches {
		return value * model.MMPerInch
	}
	return value
}
