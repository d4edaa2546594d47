package report

import (
	"fmt"
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
)

// GCodeModes prints the [GC:...] record describing the interpreter's active
// modal groups. Token order is part of the wire contract.
func (r *Reporter) GCodeModes(client Client, s *model.Settings, caps model.Capabilities, gc *model.ParserState, ovr model.OverrideCtrl) error {
	var b strings.Builder
	m := gc.Modal

	b.WriteString("[GC:G")
	if m.Motion >= model.MotionModeProbeToward {
		fmt.Fprintf(&b, "38.%d", m.Motion-(model.MotionModeProbeToward-2))
	} else {
		fmt.Fprintf(&b, "%d", m.Motion)
	}

	fmt.Fprintf(&b, " G%d", m.CoordSelect+54)
	fmt.Fprintf(&b, " G%d", m.Plane+17)
	fmt.Fprintf(&b, " G%d", 21-m.Units)
	fmt.Fprintf(&b, " G%d", m.Distance+90)
	fmt.Fprintf(&b, " G%d", 94-m.FeedMode)

	// Program flow is only emitted when non-default. M1 is ignored.
	switch m.ProgramFlow {
	case model.ProgramFlowPaused:
		b.WriteString(" M0")
	case model.ProgramFlowCompletedM2, model.ProgramFlowCompletedM30:
		fmt.Fprintf(&b, " M%d", m.ProgramFlow)
	}

	switch m.Spindle {
	case model.SpindleEnableCW:
		b.WriteString(" M3")
	case model.SpindleEnableCCW:
		b.WriteString(" M4")
	case model.SpindleDisable:
		b.WriteString(" M5")
	}

	if caps.CoolantMist {
		// Multiple coolant states may be active at the same time.
		if m.Coolant != 0 {
			if m.Coolant&model.CoolantMist != 0 {
				b.WriteString(" M7")
			}
			if m.Coolant&model.CoolantFlood != 0 {
				b.WriteString(" M8")
			}
		} else {
			b.WriteString(" M9")
		}
	} else if m.Coolant != 0 {
		b.WriteString(" M8")
	} else {
		b.WriteString(" M9")
	}

	if caps.ParkingOverrideControl && ovr == model.OverrideParkingMotion {
		b.WriteString(" M56")
	}

	fmt.Fprintf(&b, " T%d", gc.Tool)

	if s.ReportInches {
		fmt.Fprintf(&b, " F%.1f", gc.FeedRate)
	} else {
		fmt.Fprintf(&b, " F%.0f", gc.FeedRate)
	}

	if caps.VariableSpindle {
		fmt.Fprintf(&b, " S%.3f", gc.SpindleSpeed)
	}

	b.WriteString("]\r\n")
	return r.broker.Send(client, b.String())
}
