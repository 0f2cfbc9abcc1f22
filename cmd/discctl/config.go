package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/discctl/internal/config"
)

// loadDriveConfig overlays the keys present in path onto the defaults.
func loadDriveConfig(path string) (config.DriveConfig, error) {
	cfg := config.DefaultDriveConfig()

	var raw config.FileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.DriveConfig{}, fmt.Errorf("load drive config: %w", err)
	}

	if meta.IsDefined("device") {
		if device := strings.TrimSpace(raw.Device); device != "" {
			cfg.Device = device
		}
	}

	if meta.IsDefined("address_format") {
		format, err := config.ParseAddressFormat(raw.AddressFormat)
		if err != nil {
			return config.DriveConfig{}, fmt.Errorf("parse address_format: %w", err)
		}
		cfg.AddressFormat = format
	}

	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return config.DriveConfig{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}

	if meta.IsDefined("poll_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollTimeout))
		if err != nil {
			return config.DriveConfig{}, fmt.Errorf("parse poll_timeout: %w", err)
		}
		cfg.PollTimeout = d
	}

	if meta.IsDefined("lock_while_reading") {
		cfg.LockWhileReading = raw.LockWhileReading
	}

	if meta.IsDefined("frames_per_read") {
		cfg.FramesPerRead = raw.FramesPerRead
	}

	if err := config.ValidateDriveConfig(cfg); err != nil {
		return config.DriveConfig{}, fmt.Errorf("invalid drive config %s: %w", path, err)
	}
	return cfg, nil
}
