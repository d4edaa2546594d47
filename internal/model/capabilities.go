package model

// Capabilities is the resolved set of feature toggles that are compile-time
// switches on stock firmware builds. Each encoder checks the flags it needs;
// the build-info encoder turns them into the [OPT:...] set.
type Capabilities struct {
	VariableSpindle         bool `yaml:"variable_spindle"`
	LineNumbers             bool `yaml:"line_numbers"`
	CoolantMist             bool `yaml:"coolant_mist"`
	CoreXY                  bool `yaml:"corexy"`
	Parking                 bool `yaml:"parking"`
	ParkingOverrideControl  bool `yaml:"parking_override_control"`
	HomingForceSetOrigin    bool `yaml:"homing_force_set_origin"`
	HomingSingleAxis        bool `yaml:"homing_single_axis"`
	TwoLimitSwitches        bool `yaml:"two_limit_switches"`
	FeedOverrideDuringProbe bool `yaml:"feed_override_during_probe"`
	Wifi                    bool `yaml:"wifi"`
	SafetyDoorInputPin      bool `yaml:"safety_door_input_pin"`

	// Features whose build-info character is shown when the feature is absent.
	RestoreWipeAll           bool `yaml:"restore_wipe_all"`
	RestoreDefaultSettings   bool `yaml:"restore_default_settings"`
	RestoreClearParameters   bool `yaml:"restore_clear_parameters"`
	BuildInfoWrite           bool `yaml:"build_info_write"`
	BufferSyncOnSettingWrite bool `yaml:"buffer_sync_on_setting_write"`
	BufferSyncOnWCOChange    bool `yaml:"buffer_sync_on_wco_change"`

	// Optional real-time report fields.
	ReportBufferField bool `yaml:"report_buffer_field"`
	ReportFeedSpeed   bool `yaml:"report_feed_speed"`
	ReportPinState    bool `yaml:"report_pin_state"`
	ReportWCO         bool `yaml:"report_wco"`
	ReportOverrides   bool `yaml:"report_overrides"`
}

// DefaultCapabilities mirrors the stock build configuration.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		VariableSpindle:          true,
		RestoreWipeAll:           true,
		RestoreDefaultSettings:   true,
		RestoreClearParameters:   true,
		BuildInfoWrite:           true,
		BufferSyncOnSettingWrite: true,
		BufferSyncOnWCOChange:    true,
		ReportBufferField:        true,
		ReportFeedSpeed:          true,
		ReportPinState:           true,
		ReportWCO:                true,
		ReportOverrides:          true,
	}
}
