package report

import (
	"fmt"
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
)

// Settings prints the persisted settings dump, one $<index>=<value> line per
// setting. The index numbering must match the settings storage layout: scalar
// settings first in fixed order, then the per-axis block at base 100 with a
// stride of 10 per setting kind.
func (r *Reporter) Settings(client Client, s *model.Settings, caps model.Capabilities) error {
	var b strings.Builder

	fmt.Fprintf(&b, "$0=%d\r\n", s.PulseMicroseconds)
	fmt.Fprintf(&b, "$1=%d\r\n", s.StepperIdleLockTime)
	fmt.Fprintf(&b, "$2=%d\r\n", s.StepInvertMask)
	fmt.Fprintf(&b, "$3=%d\r\n", s.DirInvertMask)
	fmt.Fprintf(&b, "$4=%d\r\n", boolVal(s.InvertStEnable))
	fmt.Fprintf(&b, "$5=%d\r\n", boolVal(s.InvertLimitPins))
	fmt.Fprintf(&b, "$6=%d\r\n", boolVal(s.InvertProbePin))
	fmt.Fprintf(&b, "$10=%d\r\n", s.StatusReportMask)
	fmt.Fprintf(&b, "$11=%.3f\r\n", s.JunctionDeviation)
	fmt.Fprintf(&b, "$12=%.3f\r\n", s.ArcTolerance)
	fmt.Fprintf(&b, "$13=%d\r\n", boolVal(s.ReportInches))
	fmt.Fprintf(&b, "$20=%d\r\n", boolVal(s.SoftLimitEnable))
	fmt.Fprintf(&b, "$21=%d\r\n", boolVal(s.HardLimitEnable))
	fmt.Fprintf(&b, "$22=%d\r\n", boolVal(s.HomingEnable))
	fmt.Fprintf(&b, "$23=%d\r\n", s.HomingDirMask)
	fmt.Fprintf(&b, "$24=%.3f\r\n", s.HomingFeedRate)
	fmt.Fprintf(&b, "$25=%.3f\r\n", s.HomingSeekRate)
	fmt.Fprintf(&b, "$26=%d\r\n", s.HomingDebounceDelay)
	fmt.Fprintf(&b, "$27=%.3f\r\n", s.HomingPulloff)
	fmt.Fprintf(&b, "$30=%.3f\r\n", s.RPMMax)
	fmt.Fprintf(&b, "$31=%.3f\r\n", s.RPMMin)
	if caps.VariableSpindle {
		fmt.Fprintf(&b, "$32=%d\r\n", boolVal(s.LaserMode))
	} else {
		b.WriteString("$32=0\r\n")
	}

	// Per-axis settings: steps/mm, max rate, acceleration, max travel.
	// Acceleration is stored in mm/min^2 and reported in mm/sec^2; max travel
	// is stored negative and reported positive.
	value := model.AxisSettingsBase
	for kind := 0; kind < model.AxisSettingsCount; kind++ {
		for idx := 0; idx < model.NumAxes; idx++ {
			switch kind {
			case 0:
				fmt.Fprintf(&b, "$%d=%.3f\r\n", value+idx, s.StepsPerMM[idx])
			case 1:
				fmt.Fprintf(&b, "$%d=%.3f\r\n", value+idx, s.MaxRate[idx])
			case 2:
				fmt.Fprintf(&b, "$%d=%.3f\r\n", value+idx, s.Acceleration[idx]/(60*60))
			case 3:
				fmt.Fprintf(&b, "$%d=%.3f\r\n", value+idx, -s.MaxTravel[idx])
			}
		}
		value += model.AxisSettingsStride
	}

	return r.broker.Send(client, b.String())
}
