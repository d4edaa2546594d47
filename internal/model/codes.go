package model

// StatusCode is the per-line acknowledgment code. Zero is the only success
// value; everything else is reported as error:<code>.
type StatusCode uint8

const (
	StatusOK                       StatusCode = 0
	StatusExpectedCommandLetter    StatusCode = 1
	StatusBadNumberFormat          StatusCode = 2
	StatusInvalidStatement         StatusCode = 3
	StatusNegativeValue            StatusCode = 4
	StatusSettingDisabled          StatusCode = 5
	StatusSettingStepPulseMin      StatusCode = 6
	StatusSettingReadFail          StatusCode = 7
	StatusIdleError                StatusCode = 8
	StatusSystemGCLock             StatusCode = 9
	StatusSoftLimitError           StatusCode = 10
	StatusOverflow                 StatusCode = 11
	StatusMaxStepRateExceeded      StatusCode = 12
	StatusCheckDoor                StatusCode = 13
	StatusGcodeUnsupportedCommand  StatusCode = 20
	StatusGcodeModalGroupViolation StatusCode = 21
	StatusGcodeUndefinedFeedRate   StatusCode = 22
)

// AlarmCode identifies a critical event. Alarm numbering is disjoint from the
// status codes.
type AlarmCode uint8

const (
	AlarmHardLimit          AlarmCode = 1
	AlarmSoftLimit          AlarmCode = 2
	AlarmAbortCycle         AlarmCode = 3
	AlarmProbeFailInitial   AlarmCode = 4
	AlarmProbeFailContact   AlarmCode = 5
	AlarmHomingFailReset    AlarmCode = 6
	AlarmHomingFailDoor     AlarmCode = 7
	AlarmHomingFailPulloff  AlarmCode = 8
	AlarmHomingFailApproach AlarmCode = 9
)

// MsgLevel orders informational messages for verbosity filtering. A message is
// emitted only when its level is at or below the configured threshold.
type MsgLevel uint8

const (
	MsgLevelNone    MsgLevel = 0
	MsgLevelInfo    MsgLevel = 1
	MsgLevelDebug   MsgLevel = 2
	MsgLevelVerbose MsgLevel = 3
)

// FeedbackCode selects one of the fixed operator feedback messages.
type FeedbackCode uint8

const (
	MessageCriticalEvent FeedbackCode = iota
	MessageAlarmLock
	MessageAlarmUnlock
	MessageEnabled
	MessageDisabled
	MessageSafetyDoorAjar
	MessageCheckLimits
	MessageProgramEnd
	MessageRestoreDefaults
	MessageSpindleRestore
	MessageSleepMode
)

// FeedbackText maps feedback codes to their fixed wire text.
var FeedbackText = map[FeedbackCode]string{
	MessageCriticalEvent:   "Reset to continue",
	MessageAlarmLock:       "'$H'|'$X' to unlock",
	MessageAlarmUnlock:     "Caution: Unlocked",
	MessageEnabled:         "Enabled",
	MessageDisabled:        "Disabled",
	MessageSafetyDoorAjar:  "Check door",
	MessageCheckLimits:     "Check limits",
	MessageProgramEnd:      "Program End",
	MessageRestoreDefaults: "Restoring defaults",
	MessageSpindleRestore:  "Restoring spindle",
	MessageSleepMode:       "Sleeping",
}
