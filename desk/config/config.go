// Package config loads the device configuration. Everything has a
// default; a missing file means a stock device, not a startup failure.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"anddesk/desk/touch"
)

// Pins names the GPIO lines by role. The clock and data lines are the
// bus's own; only the per-device control lines are configurable.
type Pins struct {
	PrimaryCS  string `json:"primary_cs"`
	PrimaryDC  string `json:"primary_dc"`
	PrimaryRST string `json:"primary_rst"`
	PrimaryBL  string `json:"primary_bl"`

	SecondaryCS  string `json:"secondary_cs"`
	SecondaryDC  string `json:"secondary_dc"`
	SecondaryRST string `json:"secondary_rst"`

	TouchCS  string `json:"touch_cs"`
	TouchIRQ string `json:"touch_irq"`
}

// Bus selects the SPI port and per-device clock rates.
type Bus struct {
	Port        string `json:"port"`
	PrimaryHz   int64  `json:"primary_hz"`
	SecondaryHz int64  `json:"secondary_hz"`
	TouchHz     int64  `json:"touch_hz"`
}

// Touch carries the debounce thresholds as plain numbers; zero means
// "use the default".
type Touch struct {
	PressSamples   int `json:"press_samples"`
	ReleaseSamples int `json:"release_samples"`
	JitterPx       int `json:"jitter_px"`
	PressureMin    int `json:"pressure_min"`
	TapWindowMs    int `json:"tap_window_ms"`
	TapSlopPx      int `json:"tap_slop_px"`
}

// Config is the whole startup configuration.
type Config struct {
	Username string `json:"username"`

	Bus         Bus               `json:"bus"`
	Pins        Pins              `json:"pins"`
	Calibration touch.Calibration `json:"calibration"`
	Touch       Touch             `json:"touch"`

	CadencePrimaryMs   int `json:"cadence_primary_ms"`
	CadenceSecondaryMs int `json:"cadence_secondary_ms"`
	FocusSessionMins   int `json:"focus_session_mins"`

	// Broker is the mqtt:// URL of the companion server; empty runs the
	// desk offline.
	Broker string `json:"broker"`

	// PreviewDir receives PNG frames when a panel falls back to the null
	// sink.
	PreviewDir string `json:"preview_dir"`
}

// Default returns the stock configuration for the reference wiring.
func Default() Config {
	return Config{
		Username: "tork",
		Bus: Bus{
			Port:        "",
			PrimaryHz:   40_000_000,
			SecondaryHz: 15_000_000,
			TouchHz:     1_000_000,
		},
		Pins: Pins{
			PrimaryCS:  "GPIO8",
			PrimaryDC:  "GPIO25",
			PrimaryRST: "GPIO24",
			PrimaryBL:  "GPIO18",

			SecondaryCS:  "GPIO5",
			SecondaryDC:  "GPIO23",
			SecondaryRST: "GPIO4",

			TouchCS:  "GPIO7",
			TouchIRQ: "GPIO17",
		},
		Calibration: touch.Calibration{
			XMin: 445, XMax: 3492,
			YMin: 606, YMax: 3615,
		},
		CadencePrimaryMs:   100,
		CadenceSecondaryMs: 5000,
		FocusSessionMins:   25,
		PreviewDir:         "/tmp/anddesk",
	}
}

// Load reads the JSON file at path over the defaults. A missing file
// yields the defaults; a present but malformed file is an error worth
// failing loudly on.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration (the calibration utility's output path).
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// normalize repairs values external input cannot be trusted on.
func (c *Config) normalize() {
	d := Default()
	c.Calibration = c.Calibration.Normalized()
	if c.Bus.PrimaryHz <= 0 {
		c.Bus.PrimaryHz = d.Bus.PrimaryHz
	}
	if c.Bus.SecondaryHz <= 0 {
		c.Bus.SecondaryHz = d.Bus.SecondaryHz
	}
	if c.Bus.TouchHz <= 0 {
		c.Bus.TouchHz = d.Bus.TouchHz
	}
	if c.CadencePrimaryMs <= 0 {
		c.CadencePrimaryMs = d.CadencePrimaryMs
	}
	if c.CadenceSecondaryMs <= 0 {
		c.CadenceSecondaryMs = d.CadenceSecondaryMs
	}
	if c.FocusSessionMins <= 0 {
		c.FocusSessionMins = d.FocusSessionMins
	}
	if c.Username == "" {
		c.Username = d.Username
	}
	if c.PreviewDir == "" {
		c.PreviewDir = d.PreviewDir
	}
}
