package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/discctl/internal/cdrom"
	"github.com/rs/zerolog"
)

var errNotReady = errors.New("drive not ready")

// waitForDisc polls the drive until it reports a loaded disc, closing the
// tray when it is found open.
func waitForDisc(drive *cdrom.Drive, interval, timeout time.Duration, logger zerolog.Logger) error {
	deadline := time.Now().Add(timeout)
	last := cdrom.StatusNoInfo
	for {
		status, ok := drive.Status()
		if ok {
			last = status
			switch status {
			case cdrom.StatusDiscOK:
				return nil
			case cdrom.StatusNoDisc:
				return cdrom.ErrNoDisc
			case cdrom.StatusTrayOpen:
				logger.Info().Msg("tray open, closing")
				if err := drive.CloseTray(); err != nil && !errors.Is(err, cdrom.ErrUnsupported) {
					return err
				}
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s (last status %s)", errNotReady, timeout, last)
		}
		logger.Debug().Str("status", last.String()).Bool("decoded", ok).Msg("waiting for disc")
		time.Sleep(interval)
	}
}
