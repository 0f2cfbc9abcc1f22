package cdrom

import (
	"encoding/binary"
	"testing"

	"github.com/danmuck/discctl/internal/testutil/testlog"
)

// fakeDevice answers control calls from per-operation handlers.
type fakeDevice struct {
	handlers map[Operation]func(req *Request) (int, error)
	calls    []Operation
	closed   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{handlers: map[Operation]func(req *Request) (int, error){}}
}

func (f *fakeDevice) on(op Operation, h func(req *Request) (int, error)) {
	f.handlers[op] = h
}

func (f *fakeDevice) Control(req *Request) (int, error) {
	f.calls = append(f.calls, req.Op)
	h, ok := f.handlers[req.Op]
	if !ok {
		return 0, nil
	}
	return h(req)
}

func (f *fakeDevice) Close() error {
	f.closed++
	return nil
}

func newTestDrive(t *testing.T) (*Drive, *fakeDevice) {
	t.Helper()
	testlog.Start(t)
	dev := newFakeDevice()
	return NewDrive(dev, "/dev/fake0"), dev
}

// fakeDisc serves a table of contents with tracks in [first, last).
func fakeDisc(dev *fakeDevice, first, last uint8) {
	dev.on(OpReadTocHeader, func(req *Request) (int, error) {
		req.Arg[0], req.Arg[1] = first, last
		return 0, nil
	})
	dev.on(OpReadTocEntry, func(req *Request) (int, error) {
		track := req.Arg[0]
		format := AddressFormat(req.Arg[2])
		lba := int32(track-first) * 20 * FramesPerSecond
		req.Arg[1] = 0x10
		if format == FormatMSF {
			m := FromLBA(lba)
			req.Arg[4], req.Arg[5], req.Arg[6] = m.Minute, m.Second, m.Frame
		} else {
			binary.NativeEndian.PutUint32(req.Arg[4:8], uint32(lba))
		}
		return 0, nil
	})
}
