package report

import (
	"fmt"
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
)

// CoordinateStore supplies persisted coordinate system data to the parameter
// report. Reads can fail; the report never emits partial output when they do.
type CoordinateStore interface {
	ReadCoordData(index int) (model.AxisVector, error)
}

// NGCParams prints the coordinate system and offset parameters: one [G<n>:...]
// line per stored system (G54..G59, then G28 and G30 by convention), the
// non-persistent G92 offset and the tool length offset. A storage read failure
// aborts the whole record and reports SettingReadFail instead. The probe
// parameters follow, as the host expects them with this record.
func (r *Reporter) NGCParams(client Client, s *model.Settings, store CoordinateStore, gc *model.ParserState, probe model.ProbeState) error {
	var b strings.Builder

	for sel := 0; sel < model.CoordSetCount; sel++ {
		coord, err := store.ReadCoordData(sel)
		if err != nil {
			return r.StatusMessage(client, model.StatusSettingReadFail)
		}
		b.WriteString("[G")
		switch sel {
		case model.CoordIndexG28:
			b.WriteString("28")
		case model.CoordIndexG30:
			b.WriteString("30")
		default:
			fmt.Fprintf(&b, "%d", sel+54)
		}
		b.WriteByte(':')
		b.WriteString(axisValues(coord, s.ReportInches))
		b.WriteString("]\r\n")
	}

	b.WriteString("[G92:")
	b.WriteString(axisValues(gc.CoordOffset, s.ReportInches))
	b.WriteString("]\r\n")

	// The tool length offset keeps 3 decimals in both unit modes.
	tlo := gc.ToolLengthOffset
	if s.ReportInches {
		tlo /= model.MMPerInch
	}
	fmt.Fprintf(&b, "[TLO:%.3f]\r\n", tlo)

	if err := r.broker.Send(client, b.String()); err != nil {
		return err
	}
	return r.ProbeParams(client, s, probe)
}

// ProbeParams prints the last probe position, converted from steps to the
// display unit system, with the success indicator.
func (r *Reporter) ProbeParams(client Client, s *model.Settings, probe model.ProbeState) error {
	pos := s.StepsToPosition(probe.Position)
	return r.broker.Sendf(client, "[PRB:%s:%d]\r\n", axisValues(pos, s.ReportInches), boolVal(probe.Succeeded))
}
