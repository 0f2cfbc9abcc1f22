//go:build linux

package cdrom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestTracksFollowHeaderRange(t *testing.T) {
	drive, dev := newTestDrive(t)
	fakeDisc(dev, 1, 11)

	header, err := drive.TocHeader()
	if err != nil {
		t.Fatalf("toc header: %v", err)
	}
	if header.FirstTrack != 1 || header.LastTrack != 11 || header.TrackCount() != 10 {
		t.Fatalf("unexpected header: %+v", header)
	}

	tracks, err := drive.Tracks(FormatMSF)
	if err != nil {
		t.Fatalf("tracks: %v", err)
	}
	if len(tracks) != 10 {
		t.Fatalf("expected 10 tracks, got %d", len(tracks))
	}
	for i, entry := range tracks {
		if int(entry.Track) != i+1 {
			t.Fatalf("entry %d has track %d", i, entry.Track)
		}
		if entry.ADR != 1 || entry.Ctrl != 0 || entry.IsData() {
			t.Fatalf("unexpected flags: %+v", entry)
		}
		if entry.Address.Format() != FormatMSF {
			t.Fatalf("expected msf address, got %s", entry.Address.Format())
		}
		if want := int32(i) * 20 * FramesPerSecond; entry.Address.LBA() != want {
			t.Fatalf("track %d at %d want %d", entry.Track, entry.Address.LBA(), want)
		}
	}

	entry, err := drive.TocEntry(5, FormatLBA)
	if err != nil {
		t.Fatalf("toc entry: %v", err)
	}
	if entry.Address.Format() != FormatLBA || entry.Address.LBA() != 4*20*FramesPerSecond {
		t.Fatalf("unexpected lba entry: %+v", entry)
	}
}

func TestTocHeaderNoMedium(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpReadTocHeader, func(*Request) (int, error) { return -1, unix.ENOMEDIUM })

	if _, err := drive.TocHeader(); !errors.Is(err, ErrNoDisc) {
		t.Fatalf("expected ErrNoDisc, got %v", err)
	}
	if _, err := drive.Tracks(FormatLBA); !errors.Is(err, ErrNoDisc) {
		t.Fatalf("expected ErrNoDisc from tracks, got %v", err)
	}

	dev.on(OpReadTocHeader, func(*Request) (int, error) { return -1, unix.EIO })
	var internal *InternalError
	if _, err := drive.TocHeader(); !errors.As(err, &internal) {
		t.Fatalf("expected InternalError, got %v", err)
	}
}

func TestStatusAndDiscType(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpDriveStatus, func(req *Request) (int, error) {
		if req.Value != cdslCurrent {
			t.Fatalf("drive status must query the current slot, got %#x", req.Value)
		}
		return int(StatusDiscOK), nil
	})
	dev.on(OpDiscStatus, func(*Request) (int, error) { return int(DiscAudio), nil })

	if status, ok := drive.Status(); !ok || status != StatusDiscOK {
		t.Fatalf("unexpected status: %s ok=%v", status, ok)
	}
	if disc, ok := drive.DiscType(); !ok || disc != DiscAudio {
		t.Fatalf("unexpected disc: %s ok=%v", disc, ok)
	}
	if err := drive.RequireAudio(); err != nil {
		t.Fatalf("require audio: %v", err)
	}

	dev.on(OpDriveStatus, func(*Request) (int, error) { return 42, nil })
	dev.on(OpDiscStatus, func(*Request) (int, error) { return -1, unix.EIO })
	if _, ok := drive.Status(); ok {
		t.Fatalf("status 42 should not decode")
	}
	if _, ok := drive.DiscType(); ok {
		t.Fatalf("failed disc status should not decode")
	}
	if err := drive.RequireAudio(); !errors.Is(err, ErrNotAudioCD) {
		t.Fatalf("expected ErrNotAudioCD, got %v", err)
	}

	dev.on(OpDriveStatus, func(*Request) (int, error) { return int(StatusNoDisc), nil })
	if err := drive.RequireAudio(); !errors.Is(err, ErrNoDisc) {
		t.Fatalf("expected ErrNoDisc, got %v", err)
	}
}

func TestMCN(t *testing.T) {
	drive, dev := newTestDrive(t)
	if mcn, ok := drive.MCN(); ok || mcn != "" {
		t.Fatalf("blank mcn should be absent, got %q", mcn)
	}

	dev.on(OpGetMCN, func(req *Request) (int, error) {
		if len(req.Arg) != mcnLen {
			t.Fatalf("unexpected mcn buffer: %d", len(req.Arg))
		}
		copy(req.Arg, "0724384260623")
		return 0, nil
	})
	if mcn, ok := drive.MCN(); !ok || mcn != "0724384260623" {
		t.Fatalf("unexpected mcn: %q ok=%v", mcn, ok)
	}
}

func TestLockEjectClose(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpLockDoor, func(req *Request) (int, error) {
		if req.Value != 1 {
			t.Fatalf("expected lock argument 1, got %d", req.Value)
		}
		return 0, nil
	})
	if err := drive.SetLock(true); err != nil {
		t.Fatalf("lock: %v", err)
	}

	dev.on(OpLockDoor, func(*Request) (int, error) { return -1, unix.EBUSY })
	if err := drive.SetLock(false); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	dev.on(OpLockDoor, func(*Request) (int, error) { return edriveCantDoThis, nil })
	if err := drive.SetLock(true); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	dev.on(OpEject, func(*Request) (int, error) { return -1, unix.EBUSY })
	if err := drive.Eject(); !errors.Is(err, ErrDoorLocked) {
		t.Fatalf("expected ErrDoorLocked, got %v", err)
	}

	dev.on(OpCloseTray, func(*Request) (int, error) { return -1, unix.ENOSYS })
	if err := drive.CloseTray(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	dev.on(OpCloseTray, func(*Request) (int, error) { return -1, unix.EBUSY })
	if err := drive.CloseTray(); !errors.Is(err, ErrDoorLocked) {
		t.Fatalf("expected ErrDoorLocked, got %v", err)
	}
}

func TestCapabilitiesAndMediaChanged(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpGetCapability, func(*Request) (int, error) { return int(CapOpenTray | CapLock | CapMCN), nil })
	dev.on(OpMediaChanged, func(*Request) (int, error) { return 1, nil })

	caps, err := drive.Capabilities()
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	if !caps.Has(CapLock) || !caps.Has(CapMCN) || caps.Has(CapCloseTray) {
		t.Fatalf("unexpected capabilities: %#x", caps)
	}
	changed, err := drive.MediaChanged()
	if err != nil || !changed {
		t.Fatalf("expected media changed, got %v %v", changed, err)
	}
}

func TestSubChannel(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpSubChannel, func(req *Request) (int, error) {
		if AddressFormat(req.Arg[0]) != FormatMSF {
			t.Fatalf("expected msf request, got %#x", req.Arg[0])
		}
		req.Arg[1] = uint8(AudioPaused)
		req.Arg[2] = 0x14
		req.Arg[3] = 2
		req.Arg[4] = 1
		copy(req.Arg[8:12], []byte{3, 4, 5, 0})
		copy(req.Arg[12:16], []byte{0, 10, 0, 0})
		return 0, nil
	})

	sc, err := drive.SubChannel(SubChannelRequest{})
	if err != nil {
		t.Fatalf("subchannel: %v", err)
	}
	if sc.AudioStatus != AudioPaused || sc.ADR != 1 || sc.Ctrl != 4 || sc.Track != 2 || sc.Index != 1 {
		t.Fatalf("unexpected subchannel: %+v", sc)
	}
	if sc.Absolute.MSF() != (MSF{3, 4, 5}) || sc.Relative.MSF() != (MSF{0, 10, 0}) {
		t.Fatalf("unexpected addresses: %s %s", sc.Absolute, sc.Relative)
	}
}

func TestReadAudioInto(t *testing.T) {
	drive, dev := newTestDrive(t)
	want := FormatMSF
	dev.on(OpReadAudio, func(req *Request) (int, error) {
		if AddressFormat(req.Arg[4]) != want {
			t.Fatalf("expected %s discriminant, got %#x", want, req.Arg[4])
		}
		if n := binary.NativeEndian.Uint32(req.Arg[8:12]); n != 10 {
			t.Fatalf("unexpected nframes: %d", n)
		}
		if len(req.Data) != 10*FrameSizeRaw {
			t.Fatalf("unexpected transfer region: %d", len(req.Data))
		}
		for i := range req.Data {
			req.Data[i] = 0x01
		}
		return 0, nil
	})

	buf := make([]int16, AudioSamples(10))
	if err := drive.ReadAudioInto(TimeAddress(MSF{0, 2, 0}), 10, buf); err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if buf[0] != 0x0101 || buf[len(buf)-1] != 0x0101 {
		t.Fatalf("samples not written: %#x %#x", buf[0], buf[len(buf)-1])
	}

	want = FormatLBA
	samples, err := drive.ReadAudio(LogicalAddress(0), 10)
	if err != nil || len(samples) != 11760 {
		t.Fatalf("read audio: len=%d err=%v", len(samples), err)
	}
}

func TestReadAudioRejectsBadArgumentsLocally(t *testing.T) {
	drive, dev := newTestDrive(t)

	err := drive.ReadAudioInto(LogicalAddress(0), 10, make([]int16, 11759))
	var sizeErr *BufferSizeError
	if !errors.As(err, &sizeErr) || sizeErr.Required != 11760 || sizeErr.Provided != 11759 {
		t.Fatalf("expected BufferSizeError(11760, 11759), got %v", err)
	}
	if !errors.Is(err, ErrInvalidBufferSize) {
		t.Fatalf("expected ErrInvalidBufferSize match")
	}

	for _, frames := range []int{0, 76} {
		err := drive.ReadAudioInto(LogicalAddress(0), frames, make([]int16, AudioSamples(76)))
		var countErr *FrameCountError
		if !errors.Is(err, ErrInvalidBufferSize) || !errors.As(err, &countErr) || countErr.Frames != frames {
			t.Fatalf("frames=%d: expected FrameCountError, got %v", frames, err)
		}
		if kind := ErrorKind(err); kind != "invalid_buffer_size" {
			t.Fatalf("frames=%d: unexpected kind %q", frames, kind)
		}
		if _, err := drive.ReadAudio(LogicalAddress(0), frames); !errors.Is(err, ErrInvalidBufferSize) {
			t.Fatalf("frames=%d: expected ErrInvalidBufferSize, got %v", frames, err)
		}
	}

	if err := drive.ReadAudioInto(TimeAddress(MSF{0, 1, 74}), 1, make([]int16, AudioSamples(1))); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}

	if len(dev.calls) != 0 {
		t.Fatalf("rejected reads reached the device: %v", dev.calls)
	}

	if err := drive.ReadAudioInto(LogicalAddress(0), 75, make([]int16, AudioSamples(75))); err != nil {
		t.Fatalf("frames=75 should be accepted: %v", err)
	}
	if len(dev.calls) != 1 {
		t.Fatalf("expected one device call, got %v", dev.calls)
	}
}

func TestReadAudioStatusIsDecoded(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpReadAudio, func(*Request) (int, error) { return int(unix.EIO), nil })

	err := drive.ReadAudioInto(LogicalAddress(100), 1, make([]int16, AudioSamples(1)))
	var internal *InternalError
	if !errors.As(err, &internal) || !errors.Is(err, unix.EIO) {
		t.Fatalf("expected InternalError(EIO), got %v", err)
	}
}

func TestReadRawInto(t *testing.T) {
	drive, dev := newTestDrive(t)
	sector := bytes.Repeat([]byte{0xAB}, FrameSizeRaw)
	dev.on(OpReadRaw, func(req *Request) (int, error) {
		if !bytes.Equal(req.Arg[:3], []byte{0, 2, 16}) {
			t.Fatalf("unexpected seek position: % x", req.Arg[:3])
		}
		copy(req.Arg, sector)
		return 0, nil
	})

	buf := make([]byte, FrameSizeRaw+10)
	if err := drive.ReadRawInto(LogicalAddress(16), buf); err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.Equal(buf[:FrameSizeRaw], sector) {
		t.Fatalf("sector bytes not returned")
	}
}

func TestReadRawRejectsLeadInAndShortBuffers(t *testing.T) {
	drive, dev := newTestDrive(t)

	for sec := uint8(0); sec < 2; sec++ {
		err := drive.ReadRawInto(TimeAddress(MSF{0, sec, 30}), make([]byte, FrameSizeRaw))
		if !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress, got %v", err)
		}
	}
	if err := drive.ReadRawInto(LogicalAddress(-10), make([]byte, FrameSizeRaw)); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for lead-in lba, got %v", err)
	}

	for _, addr := range []Address{LogicalAddress(300 * 60 * 75), LogicalAddress(MaxLBA + 1), TimeAddress(MSF{200, 0, 0})} {
		if err := drive.ReadRawInto(addr, make([]byte, FrameSizeRaw)); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%s: expected ErrInvalidAddress past the disc end, got %v", addr, err)
		}
		if err := drive.ReadAudioInto(addr, 1, make([]int16, AudioSamples(1))); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%s: expected ErrInvalidAddress for audio past the disc end, got %v", addr, err)
		}
	}

	err := drive.ReadRawInto(LogicalAddress(0), make([]byte, FrameSizeCooked))
	var sizeErr *BufferSizeError
	if !errors.As(err, &sizeErr) || sizeErr.Required != FrameSizeRaw || sizeErr.Provided != FrameSizeCooked {
		t.Fatalf("expected BufferSizeError, got %v", err)
	}
	if len(dev.calls) != 0 {
		t.Fatalf("rejected reads reached the device: %v", dev.calls)
	}
}

func TestReadRawFailureClearsSeekBytes(t *testing.T) {
	drive, dev := newTestDrive(t)
	dev.on(OpReadRaw, func(*Request) (int, error) { return -1, unix.ENOMEDIUM })

	buf := make([]byte, FrameSizeRaw)
	if err := drive.ReadRawInto(TimeAddress(MSF{10, 0, 0}), buf); !errors.Is(err, ErrNoDisc) {
		t.Fatalf("expected ErrNoDisc, got %v", err)
	}
	if !bytes.Equal(buf, make([]byte, FrameSizeRaw)) {
		t.Fatalf("request bytes leaked into failed read: % x", buf[:6])
	}
}

func TestCloseReleasesOnce(t *testing.T) {
	drive, dev := newTestDrive(t)
	if err := drive.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := drive.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if dev.closed != 1 {
		t.Fatalf("expected one close, got %d", dev.closed)
	}
	if err := drive.Eject(); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	if len(dev.calls) != 0 {
		t.Fatalf("released drive reached the device: %v", dev.calls)
	}
}
