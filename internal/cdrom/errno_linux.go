//go:build linux

package cdrom

import "golang.org/x/sys/unix"

var unsupportedErrnos = map[unix.Errno]error{
	unix.EOPNOTSUPP: ErrUnsupported,
	unix.ENOSYS:     ErrUnsupported,
}

var policies = map[Operation]errnoPolicy{
	OpReadTocHeader: {mapped: map[unix.Errno]error{unix.ENOMEDIUM: ErrNoDisc}},
	OpReadTocEntry:  {mapped: map[unix.Errno]error{unix.ENOMEDIUM: ErrNoDisc}},
	OpSubChannel:    {mapped: map[unix.Errno]error{unix.ENOMEDIUM: ErrNoDisc}},
	OpReadAudio: {mapped: map[unix.Errno]error{
		unix.ENOMEDIUM: ErrNoDisc,
		unix.ENOSYS:    ErrUnsupported,
	}},
	OpReadRaw: {mapped: map[unix.Errno]error{
		unix.ENOMEDIUM: ErrNoDisc,
		unix.ENOSYS:    ErrUnsupported,
	}},
	OpLockDoor: {
		mapped: map[unix.Errno]error{
			unix.EBUSY:      ErrBusy,
			unix.EOPNOTSUPP: ErrUnsupported,
			unix.ENOSYS:     ErrUnsupported,
		},
		cantDoThis: true,
	},
	OpEject: {
		mapped: map[unix.Errno]error{
			unix.EBUSY:      ErrDoorLocked,
			unix.EOPNOTSUPP: ErrUnsupported,
			unix.ENOSYS:     ErrUnsupported,
		},
		cantDoThis: true,
	},
	OpCloseTray: {
		mapped: map[unix.Errno]error{
			unix.EBUSY:      ErrDoorLocked,
			unix.EOPNOTSUPP: ErrUnsupported,
			unix.ENOSYS:     ErrUnsupported,
		},
		cantDoThis: true,
	},
	OpStart:         {mapped: unsupportedErrnos, cantDoThis: true},
	OpStop:          {mapped: unsupportedErrnos, cantDoThis: true},
	OpGetMCN:        {mapped: unsupportedErrnos},
	OpGetCapability: {mapped: unsupportedErrnos},
	OpMediaChanged:  {mapped: unsupportedErrnos},
}
