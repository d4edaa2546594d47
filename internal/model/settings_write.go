package model

// Set stores a `$<num>=<value>` write into the settings snapshot and returns
// the acknowledgment code. Axis settings live at base 100 with one decade per
// kind; acceleration is entered in mm/sec^2 and stored in mm/min^2, max travel
// is entered positive and stored negative.
func (s *Settings) Set(num int, value float64) StatusCode {
	if value < 0 {
		return StatusNegativeValue
	}

	if num >= AxisSettingsBase {
		kind := (num - AxisSettingsBase) / AxisSettingsStride
		axis := (num - AxisSettingsBase) % AxisSettingsStride
		if kind >= AxisSettingsCount || axis >= NumAxes {
			return StatusInvalidStatement
		}
		switch kind {
		case 0:
			s.StepsPerMM[axis] = value
		case 1:
			s.MaxRate[axis] = value
		case 2:
			s.Acceleration[axis] = value * 60 * 60
		case 3:
			s.MaxTravel[axis] = -value
		}
		return StatusOK
	}

	switch num {
	case 0:
		if value < 3 {
			return StatusSettingStepPulseMin
		}
		s.PulseMicroseconds = uint16(value)
	case 1:
		s.StepperIdleLockTime = uint16(value)
	case 2:
		s.StepInvertMask = uint8(value)
	case 3:
		s.DirInvertMask = uint8(value)
	case 4:
		s.InvertStEnable = value != 0
	case 5:
		s.InvertLimitPins = value != 0
	case 6:
		s.InvertProbePin = value != 0
	case 10:
		s.StatusReportMask = uint8(value)
	case 11:
		s.JunctionDeviation = value
	case 12:
		s.ArcTolerance = value
	case 13:
		s.ReportInches = value != 0
	case 20:
		// Soft limits need homing so machine extents are known.
		if value != 0 && !s.HomingEnable {
			return StatusSoftLimitError
		}
		s.SoftLimitEnable = value != 0
	case 21:
		s.HardLimitEnable = value != 0
	case 22:
		s.HomingEnable = value != 0
		if !s.HomingEnable {
			s.SoftLimitEnable = false
		}
	case 23:
		s.HomingDirMask = uint8(value)
	case 24:
		s.HomingFeedRate = value
	case 25:
		s.HomingSeekRate = value
	case 26:
		s.HomingDebounceDelay = uint16(value)
	case 27:
		s.HomingPulloff = value
	case 30:
		s.RPMMax = value
	case 31:
		s.RPMMin = value
	case 32:
		s.LaserMode = value != 0
	default:
		return StatusInvalidStatement
	}
	return StatusOK
}
