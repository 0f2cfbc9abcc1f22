//go:build !linux

package cdrom

import "fmt"

const DefaultDevicePath = ""

// OpenDevice is only implemented for the linux CD-ROM ioctl family.
func OpenDevice(path string) (Device, error) {
	return nil, fmt.Errorf("open %s: %w", path, ErrUnsupported)
}
