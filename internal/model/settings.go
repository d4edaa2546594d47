package model

import "fmt"

// Status report mask bits ($10).
const (
	ReportPositionMachine uint8 = 1 << 0 // MPos when set, WPos otherwise
	ReportBufferState     uint8 = 1 << 1
)

// Coordinate system indices. G54..G59 occupy 0..5; the two predefined positions
// use the conventional non-sequential labels G28 and G30.
const (
	NumCoordinateSystems = 6
	CoordIndexG28        = 6
	CoordIndexG30        = 7
	CoordSetCount        = 8
)

// Axis setting index scheme for the settings dump: $<base + stride*kind + axis>.
const (
	AxisSettingsBase   = 100
	AxisSettingsStride = 10
	AxisSettingsCount  = 4 // steps/mm, max rate, acceleration, max travel
)

// Settings is the persisted machine configuration snapshot read by the report
// encoders. Values are stored in the controller's native units: millimeters,
// mm/min, and mm/min^2 for acceleration, negative mm for max travel.
type Settings struct {
	PulseMicroseconds   uint16  `yaml:"pulse_microseconds"`
	StepperIdleLockTime uint16  `yaml:"stepper_idle_lock_time"`
	StepInvertMask      uint8   `yaml:"step_invert_mask"`
	DirInvertMask       uint8   `yaml:"dir_invert_mask"`
	InvertStEnable      bool    `yaml:"invert_st_enable"`
	InvertLimitPins     bool    `yaml:"invert_limit_pins"`
	InvertProbePin      bool    `yaml:"invert_probe_pin"`
	StatusReportMask    uint8   `yaml:"status_report_mask"`
	JunctionDeviation   float64 `yaml:"junction_deviation"`
	ArcTolerance        float64 `yaml:"arc_tolerance"`
	ReportInches        bool    `yaml:"report_inches"`
	SoftLimitEnable     bool    `yaml:"soft_limit_enable"`
	HardLimitEnable     bool    `yaml:"hard_limit_enable"`
	HomingEnable        bool    `yaml:"homing_enable"`
	HomingDirMask       uint8   `yaml:"homing_dir_mask"`
	HomingFeedRate      float64 `yaml:"homing_feed_rate"`
	HomingSeekRate      float64 `yaml:"homing_seek_rate"`
	HomingDebounceDelay uint16  `yaml:"homing_debounce_delay"`
	HomingPulloff       float64 `yaml:"homing_pulloff"`
	RPMMax              float64 `yaml:"rpm_max"`
	RPMMin              float64 `yaml:"rpm_min"`
	LaserMode           bool    `yaml:"laser_mode"`

	StepsPerMM   AxisVector `yaml:"steps_per_mm"`
	MaxRate      AxisVector `yaml:"max_rate"`
	Acceleration AxisVector `yaml:"acceleration"` // mm/min^2
	MaxTravel    AxisVector `yaml:"max_travel"`   // stored negative
}

// DefaultSettings mirrors the stock controller defaults.
func DefaultSettings() Settings {
	return Settings{
		PulseMicroseconds:   10,
		StepperIdleLockTime: 25,
		StatusReportMask:    ReportPositionMachine | ReportBufferState,
		JunctionDeviation:   0.01,
		ArcTolerance:        0.002,
		HomingDirMask:       0,
		HomingFeedRate:      25.0,
		HomingSeekRate:      500.0,
		HomingDebounceDelay: 250,
		HomingPulloff:       1.0,
		RPMMax:              1000.0,
		RPMMin:              0.0,
		StepsPerMM:          AxisVector{250.0, 250.0, 250.0},
		MaxRate:             AxisVector{500.0, 500.0, 500.0},
		Acceleration:        AxisVector{10.0 * 60 * 60, 10.0 * 60 * 60, 10.0 * 60 * 60},
		MaxTravel:           AxisVector{-200.0, -200.0, -200.0},
	}
}

// ReportMachinePosition reports whether the real-time status line carries MPos
// rather than WPos.
func (s *Settings) ReportMachinePosition() bool {
	return s.StatusReportMask&ReportPositionMachine != 0
}

// ReportBuffer reports whether the real-time status line carries the Bf field.
func (s *Settings) ReportBuffer() bool {
	return s.StatusReportMask&ReportBufferState != 0
}

// StepsToPosition converts a step-count position to millimeters per axis.
func (s *Settings) StepsToPosition(steps [NumAxes]int32) AxisVector {
	var pos AxisVector
	for idx := 0; idx < NumAxes; idx++ {
		pos[idx] = float64(steps[idx]) / s.StepsPerMM[idx]
	}
	return pos
}

// CoordTable is the host-side store of persisted coordinate system data,
// indexed G54..G59 then G28, G30.
type CoordTable [CoordSetCount]AxisVector

// ReadCoordData retrieves one coordinate system's offsets. An out-of-range
// index is the persisted-storage read failure of this stand-in store.
func (t *CoordTable) ReadCoordData(index int) (AxisVector, error) {
	if index < 0 || index >= CoordSetCount {
		return AxisVector{}, fmt.Errorf("coordinate system %d out of range", index)
	}
	return t[index], nil
}
