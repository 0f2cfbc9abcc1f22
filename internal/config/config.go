package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/discctl/internal/cdrom"
)

// DriveConfig is the resolved drive and polling setup used by discctl.
type DriveConfig struct {
	Device           string
	AddressFormat    cdrom.AddressFormat
	PollInterval     time.Duration
	PollTimeout      time.Duration
	LockWhileReading bool
	FramesPerRead    int
}

// FileConfig is the on-disk TOML form of DriveConfig.
type FileConfig struct {
	Device           string `toml:"device"`
	AddressFormat    string `toml:"address_format"`
	PollInterval     string `toml:"poll_interval"`
	PollTimeout      string `toml:"poll_timeout"`
	LockWhileReading bool   `toml:"lock_while_reading"`
	FramesPerRead    int    `toml:"frames_per_read"`
}

func DefaultDriveConfig() DriveConfig {
	return DriveConfig{
		Device:           cdrom.DefaultDevicePath,
		AddressFormat:    cdrom.FormatMSF,
		PollInterval:     time.Second,
		PollTimeout:      time.Minute,
		LockWhileReading: true,
		FramesPerRead:    cdrom.MaxFramesPerRead,
	}
}

func ParseAddressFormat(raw string) (cdrom.AddressFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "msf":
		return cdrom.FormatMSF, nil
	case "lba":
		return cdrom.FormatLBA, nil
	default:
		return 0, fmt.Errorf("unknown address format: %q", raw)
	}
}

func ValidateDriveConfig(cfg DriveConfig) error {
	if strings.TrimSpace(cfg.Device) == "" {
		return fmt.Errorf("drive config missing device")
	}
	if cfg.AddressFormat != cdrom.FormatMSF && cfg.AddressFormat != cdrom.FormatLBA {
		return fmt.Errorf("drive config has invalid address format %s", cfg.AddressFormat)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if cfg.PollTimeout < cfg.PollInterval {
		return fmt.Errorf("poll_timeout %s shorter than poll_interval %s", cfg.PollTimeout, cfg.PollInterval)
	}
	if cfg.FramesPerRead < 1 || cfg.FramesPerRead > cdrom.MaxFramesPerRead {
		return fmt.Errorf("frames_per_read must be in [1, %d]", cdrom.MaxFramesPerRead)
	}
	return nil
}

// ToFile renders cfg in its on-disk form.
func ToFile(cfg DriveConfig) FileConfig {
	return FileConfig{
		Device:           cfg.Device,
		AddressFormat:    cfg.AddressFormat.String(),
		PollInterval:     cfg.PollInterval.String(),
		PollTimeout:      cfg.PollTimeout.String(),
		LockWhileReading: cfg.LockWhileReading,
		FramesPerRead:    cfg.FramesPerRead,
	}
}
