package report

import (
	"strings"

	"github.com/apollo2030/grblesp/internal/model"
)

// BuildInfo prints the version record and the capability character set. The
// characters appear in a fixed check order; the group after 'W' is emitted
// when the corresponding feature is absent.
func (r *Reporter) BuildInfo(client Client, line string, caps model.Capabilities) error {
	var b strings.Builder

	b.WriteString("[VER:" + Version + "." + Build + ":")
	b.WriteString(line)
	b.WriteString("]\r\n[OPT:")

	if caps.VariableSpindle {
		b.WriteByte('V')
	}
	if caps.LineNumbers {
		b.WriteByte('N')
	}
	if caps.CoolantMist {
		b.WriteByte('M')
	}
	if caps.CoreXY {
		b.WriteByte('C')
	}
	if caps.Parking {
		b.WriteByte('P')
	}
	if caps.HomingForceSetOrigin {
		b.WriteByte('Z')
	}
	if caps.HomingSingleAxis {
		b.WriteByte('H')
	}
	if caps.TwoLimitSwitches {
		b.WriteByte('L')
	}
	if caps.FeedOverrideDuringProbe {
		b.WriteByte('A')
	}
	if caps.Wifi {
		b.WriteByte('W')
	}
	if !caps.RestoreWipeAll {
		b.WriteByte('*')
	}
	if !caps.RestoreDefaultSettings {
		b.WriteByte('$')
	}
	if !caps.RestoreClearParameters {
		b.WriteByte('#')
	}
	if !caps.BuildInfoWrite {
		b.WriteByte('I')
	}
	if !caps.BufferSyncOnSettingWrite {
		b.WriteByte('E')
	}
	if !caps.BufferSyncOnWCOChange {
		b.WriteByte('W')
	}

	b.WriteString("]\r\n")
	return r.broker.Send(client, b.String())
}
