// Package model also defines the configuration structure loaded from config.yml
// used to initialize channels, report cadence and the settings snapshot.
package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root structure loaded from configs/config.yml.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Socket SocketConfig `yaml:"socket"`
	Log    LogConfig    `yaml:"log"`
	Report ReportConfig `yaml:"report"`

	Settings     Settings     `yaml:"settings"`
	Capabilities Capabilities `yaml:"capabilities"`
	Coordinates  CoordTable   `yaml:"coordinates"`
	StartupLines []string     `yaml:"startup_lines"`
}

// SerialConfig defines the serial transport channel.
type SerialConfig struct {
	Device string `yaml:"device"` // e.g. /dev/ttyUSB0; empty disables the channel
	Baud   int    `yaml:"baud"`
}

// SocketConfig defines the websocket transport channel.
type SocketConfig struct {
	Addr string `yaml:"addr"` // e.g. ":8181"; empty disables the channel
}

// LogConfig defines ambient logging. This is diagnostics only and never shares
// a writer with the protocol channels.
type LogConfig struct {
	Level string `yaml:"level"` // trace/debug/info/warn/error, or off
}

// ReportConfig defines reporting cadence and verbosity.
type ReportConfig struct {
	MessageLevel string `yaml:"message_level"` // none/info/debug/verbose

	// Optional-field refresh periods, in status reports. Busy applies while
	// homing/cycling/holding/jogging or with the door open.
	WCORefreshBusy int `yaml:"wco_refresh_busy"`
	WCORefreshIdle int `yaml:"wco_refresh_idle"`
	OvrRefreshBusy int `yaml:"ovr_refresh_busy"`
	OvrRefreshIdle int `yaml:"ovr_refresh_idle"`

	AlarmSettleMs int  `yaml:"alarm_settle_ms"`
	Echo          bool `yaml:"echo"` // echo received lines back as [echo: ...]
}

// Default report cadence, matching the stock firmware build constants.
const (
	DefaultWCORefreshBusy = 30
	DefaultWCORefreshIdle = 10
	DefaultOvrRefreshBusy = 20
	DefaultOvrRefreshIdle = 10
	DefaultAlarmSettleMs  = 500
)

// DefaultConfig returns a runnable configuration with the stock settings
// snapshot and no transport channels enabled.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{Baud: 115200},
		Log:    LogConfig{Level: "info"},
		Report: ReportConfig{
			MessageLevel:   "info",
			WCORefreshBusy: DefaultWCORefreshBusy,
			WCORefreshIdle: DefaultWCORefreshIdle,
			OvrRefreshBusy: DefaultOvrRefreshBusy,
			OvrRefreshIdle: DefaultOvrRefreshIdle,
			AlarmSettleMs:  DefaultAlarmSettleMs,
		},
		Settings:     DefaultSettings(),
		Capabilities: DefaultCapabilities(),
	}
}

// LoadConfig reads the YAML configuration at path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Report.WCORefreshBusy <= 0 {
		cfg.Report.WCORefreshBusy = DefaultWCORefreshBusy
	}
	if cfg.Report.WCORefreshIdle <= 0 {
		cfg.Report.WCORefreshIdle = DefaultWCORefreshIdle
	}
	if cfg.Report.OvrRefreshBusy <= 0 {
		cfg.Report.OvrRefreshBusy = DefaultOvrRefreshBusy
	}
	if cfg.Report.OvrRefreshIdle <= 0 {
		cfg.Report.OvrRefreshIdle = DefaultOvrRefreshIdle
	}
	return cfg, nil
}

// ParseMsgLevel maps a config string to a MsgLevel. Unknown values fall back
// to info, matching the logger setup convention.
func ParseMsgLevel(s string) MsgLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return MsgLevelNone
	case "debug":
		return MsgLevelDebug
	case "verbose":
		return MsgLevelVerbose
	default:
		return MsgLevelInfo
	}
}
