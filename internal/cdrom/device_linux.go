//go:build linux

package cdrom

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultDevicePath is the first SCSI CD-ROM block device.
const DefaultDevicePath = "/dev/sr0"

type ioctlDevice struct {
	fd   int
	path string
}

// OpenDevice opens path read-only and non-blocking so a drive without
// media can still be queried.
func OpenDevice(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &ioctlDevice{fd: fd, path: path}, nil
}

func (d *ioctlDevice) Control(req *Request) (int, error) {
	var (
		r     uintptr
		errno unix.Errno
	)
	if len(req.Arg) > 0 {
		r, _, errno = unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(ControlCode(req.Op)), uintptr(unsafe.Pointer(&req.Arg[0])))
	} else {
		r, _, errno = unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(ControlCode(req.Op)), req.Value)
	}
	runtime.KeepAlive(req.Arg)
	runtime.KeepAlive(req.Data)
	if errno != 0 {
		return -1, errno
	}
	return int(r), nil
}

func (d *ioctlDevice) Close() error {
	return unix.Close(d.fd)
}
