package cdrom

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	ErrNoDisc            = errors.New("cdrom: no disc in drive")
	ErrNotAudioCD        = errors.New("cdrom: disc does not contain cd-audio")
	ErrDoorLocked        = errors.New("cdrom: drive door is locked")
	ErrUnsupported       = errors.New("cdrom: drive does not support the function")
	ErrBusy              = errors.New("cdrom: drive is in use by another user")
	ErrInvalidAddress    = errors.New("cdrom: invalid address")
	ErrInvalidBufferSize = errors.New("cdrom: invalid buffer size")
	ErrReleased          = errors.New("cdrom: drive released")
)

// BufferSizeError reports a caller buffer smaller than the transfer.
// Sizes are in buffer elements.
type BufferSizeError struct {
	Required int
	Provided int
}

func (e *BufferSizeError) Error() string {
	return fmt.Sprintf("cdrom: buffer too small: need at least %d, got %d", e.Required, e.Provided)
}

func (e *BufferSizeError) Is(target error) bool {
	return target == ErrInvalidBufferSize
}

// FrameCountError reports a read of zero frames or more than
// MaxFramesPerRead. It is a sizing error like BufferSizeError.
type FrameCountError struct {
	Frames int
}

func (e *FrameCountError) Error() string {
	return fmt.Sprintf("cdrom: frame count %d not in [1, %d]", e.Frames, MaxFramesPerRead)
}

func (e *FrameCountError) Is(target error) bool {
	return target == ErrInvalidBufferSize
}

// InternalError wraps a device failure with no typed meaning.
type InternalError struct {
	Op  Operation
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("cdrom: %s: internal system error: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// errnoPolicy maps the errnos of one operation onto the taxonomy.
type errnoPolicy struct {
	mapped map[unix.Errno]error
	// cantDoThis treats a positive EDRIVE_CANT_DO_THIS return as Unsupported.
	cantDoThis bool
}

// translate decodes the result of one control call. ret is the ioctl
// return value and err the failure reported by the device.
func translate(op Operation, ret int, err error) error {
	policy := policies[op]
	if err == nil {
		if policy.cantDoThis && ret == edriveCantDoThis {
			return ErrUnsupported
		}
		return nil
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		if mapped, ok := policy.mapped[errno]; ok {
			return mapped
		}
	}
	return &InternalError{Op: op, Err: err}
}

// translateStatus decodes a nonzero status reported after a successful
// call, as CDROMREADAUDIO does.
func translateStatus(op Operation, status int) error {
	if status == 0 {
		return nil
	}
	return translate(op, -1, unix.Errno(status))
}

// ErrorKind names the taxonomy entry of err for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoDisc):
		return "no_disc"
	case errors.Is(err, ErrNotAudioCD):
		return "not_audio_cd"
	case errors.Is(err, ErrDoorLocked):
		return "door_locked"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrInvalidBufferSize):
		return "invalid_buffer_size"
	case errors.Is(err, ErrReleased):
		return "released"
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		if name := unix.ErrnoName(errno); name != "" {
			return name
		}
	}
	return "internal"
}
