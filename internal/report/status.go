package report

import (
	"fmt"
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
)

// limitPinChars maps limit bit positions to their report characters.
const limitPinChars = "XYZABCDE"

// RealtimeStatus prints the real-time status line. This is the high-frequency
// report; it must stay as short as possible, so the throttled optional fields
// refresh on their own busy/idle cadence instead of appearing on every line.
func (r *Reporter) RealtimeStatus(client Client, snap *model.StatusSnapshot, s *model.Settings, caps model.Capabilities) error {
	printPosition := s.StepsToPosition(snap.Position)
	busy := snap.State&model.BusyStates != 0

	var b strings.Builder
	b.WriteByte('<')

	switch snap.State {
	case model.StateIdle:
		b.WriteString("Idle")
	case model.StateCycle:
		b.WriteString("Run")
	case model.StateHold:
		if snap.Suspend&model.SuspendJogCancel != 0 {
			// A cancelled jog keeps reporting the jog state until it settles.
			b.WriteString("Jog")
		} else if snap.Suspend&model.SuspendHoldComplete != 0 {
			b.WriteString("Hold:0") // ready to resume
		} else {
			b.WriteString("Hold:1") // actively holding
		}
	case model.StateJog:
		b.WriteString("Jog")
	case model.StateHoming:
		b.WriteString("Home")
	case model.StateAlarm:
		b.WriteString("Alarm")
	case model.StateCheckMode:
		b.WriteString("Check")
	case model.StateSafetyDoor:
		b.WriteString("Door:")
		if snap.Suspend&model.SuspendInitiateRestore != 0 {
			b.WriteString("3") // restoring
		} else if snap.Suspend&model.SuspendRetractComplete != 0 {
			if snap.Suspend&model.SuspendSafetyDoorAjar != 0 {
				b.WriteString("1") // door ajar
			} else {
				b.WriteString("0") // closed, ready to resume
			}
		} else {
			b.WriteString("2") // retracting
		}
	case model.StateSleep:
		b.WriteString("Sleep")
	}

	// Work coordinate offsets are needed for WPos and for the throttled WCO
	// field; compute them once when either will use them.
	machinePos := s.ReportMachinePosition()
	var wco model.AxisVector
	if !machinePos || r.wcoCounter == 0 {
		wco = snap.Parser.WorkOffsets()
		if !machinePos {
			for idx := 0; idx < model.NumAxes; idx++ {
				printPosition[idx] -= wco[idx]
			}
		}
	}
	if machinePos {
		b.WriteString("|MPos:")
	} else {
		b.WriteString("|WPos:")
	}
	b.WriteString(axisValues(printPosition, s.ReportInches))

	if caps.ReportBufferField && s.ReportBuffer() {
		fmt.Fprintf(&b, "|Bf:%d,%d", snap.PlannerBlocksFree, snap.RxBytesFree)
	}

	if caps.LineNumbers && snap.LineNumber > 0 {
		fmt.Fprintf(&b, "|Ln:%d", snap.LineNumber)
	}

	if caps.ReportFeedSpeed {
		if caps.VariableSpindle {
			if s.ReportInches {
				fmt.Fprintf(&b, "|FS:%.1f,%.0f", snap.FeedRate, snap.SpindleSpeed/model.MMPerInch)
			} else {
				fmt.Fprintf(&b, "|FS:%.0f,%.0f", snap.FeedRate, snap.SpindleSpeed)
			}
		} else if s.ReportInches {
			fmt.Fprintf(&b, "|F:%.1f", snap.FeedRate/model.MMPerInch)
		} else {
			fmt.Fprintf(&b, "|F:%.0f", snap.FeedRate)
		}
	}

	if caps.ReportPinState && snap.Pins.Any() {
		b.WriteString("|Pn:")
		if snap.Pins.Probe {
			b.WriteByte('P')
		}
		for idx := 0; idx < len(limitPinChars); idx++ {
			if snap.Pins.Limit&(1<<idx) != 0 {
				b.WriteByte(limitPinChars[idx])
			}
		}
		if snap.Pins.Control != 0 {
			if caps.SafetyDoorInputPin && snap.Pins.Control&model.ControlPinSafetyDoor != 0 {
				b.WriteByte('D')
			}
			if snap.Pins.Control&model.ControlPinReset != 0 {
				b.WriteByte('R')
			}
			if snap.Pins.Control&model.ControlPinFeedHold != 0 {
				b.WriteByte('H')
			}
			if snap.Pins.Control&model.ControlPinCycleStart != 0 {
				b.WriteByte('S')
			}
		}
	}

	if caps.ReportWCO {
		if r.wcoCounter > 0 {
			r.wcoCounter--
		} else {
			if busy {
				r.wcoCounter = r.wcoRefreshBusy - 1
			} else {
				r.wcoCounter = r.wcoRefreshIdle - 1
			}
			if r.ovrCounter == 0 {
				r.ovrCounter = 1 // defer overrides to the next report
			}
			b.WriteString("|WCO:")
			b.WriteString(axisValues(wco, s.ReportInches))
		}
	}

	if caps.ReportOverrides {
		if r.ovrCounter > 0 {
			r.ovrCounter--
		} else {
			if busy {
				r.ovrCounter = r.ovrRefreshBusy - 1
			} else {
				r.ovrCounter = r.ovrRefreshIdle - 1
			}
			fmt.Fprintf(&b, "|Ov:%d,%d,%d", snap.FeedOverride, snap.RapidOverride, snap.SpindleOverride)

			if snap.SpindleState != model.SpindleStateDisable || snap.Coolant != 0 {
				b.WriteString("|A:")
				if snap.SpindleState != model.SpindleStateDisable {
					if snap.SpindleState == model.SpindleStateCW {
						b.WriteByte('S')
					} else {
						b.WriteByte('C')
					}
				}
				if snap.Coolant&model.CoolantFlood != 0 {
					b.WriteByte('F')
				}
				if caps.CoolantMist && snap.Coolant&model.CoolantMist != 0 {
					b.WriteByte('M')
				}
			}
		}
	}

	b.WriteString(">\r\n")
	return r.broker.Send(client, b.String())
}
