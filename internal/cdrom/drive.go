package cdrom

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/danmuck/discctl/internal/logging"
	"github.com/danmuck/discctl/internal/observability"
	"github.com/rs/zerolog"
)

// Drive is the typed call surface over one drive handle. Calls are
// serialized; the drive never sees two outstanding control calls.
type Drive struct {
	mu       sync.Mutex
	dev      Device
	path     string
	log      zerolog.Logger
	released bool
}

type Option func(*Drive)

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Drive) {
		d.log = logger
	}
}

// Open opens the drive at path. An empty path selects DefaultDevicePath.
func Open(path string, opts ...Option) (*Drive, error) {
	if path == "" {
		path = DefaultDevicePath
	}
	dev, err := OpenDevice(path)
	if err != nil {
		return nil, fmt.Errorf("open drive: %w", err)
	}
	return NewDrive(dev, path, opts...), nil
}

// NewDrive takes ownership of dev.
func NewDrive(dev Device, path string, opts ...Option) *Drive {
	d := &Drive{
		dev:  dev,
		path: path,
		log:  logging.Component("cdrom"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("device", path).Logger()
	return d
}

func (d *Drive) Path() string {
	return d.path
}

// Close releases the device handle. Later calls return ErrReleased.
func (d *Drive) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true
	if err := d.dev.Close(); err != nil {
		return fmt.Errorf("close drive %s: %w", d.path, err)
	}
	return nil
}

func (d *Drive) call(req *Request) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return -1, ErrReleased
	}

	start := time.Now()
	ret, err := d.dev.Control(req)
	err = translate(req.Op, ret, err)
	observability.RecordDriveCall(req.Op.String(), ErrorKind(err), time.Since(start))
	d.log.Debug().
		Str("op", req.Op.String()).
		Str("code", fmt.Sprintf("%#04x", ControlCode(req.Op))).
		Int("ret", ret).
		Err(err).
		Msg("drive control")
	return ret, err
}

// Status reports the drive state. ok is false when the call failed or
// the drive returned a code outside DriveStatus.
func (d *Drive) Status() (status DriveStatus, ok bool) {
	ret, err := d.call(&Request{Op: OpDriveStatus, Value: cdslCurrent})
	if err != nil {
		return StatusNoInfo, false
	}
	status, ok = decodeDriveStatus(ret)
	if !ok {
		d.log.Debug().Int("raw", ret).Msg("undecodable drive status")
	}
	return status, ok
}

// DiscType reports the kind of disc loaded, with the same decode policy
// as Status.
func (d *Drive) DiscType() (disc DiscType, ok bool) {
	ret, err := d.call(&Request{Op: OpDiscStatus})
	if err != nil {
		return DiscNoInfo, false
	}
	disc, ok = decodeDiscType(ret)
	if !ok {
		d.log.Debug().Int("raw", ret).Msg("undecodable disc status")
	}
	return disc, ok
}

// MCN returns the media catalog number. Many discs carry none.
func (d *Drive) MCN() (string, bool) {
	buf := make([]byte, mcnLen)
	if _, err := d.call(&Request{Op: OpGetMCN, Arg: buf}); err != nil {
		return "", false
	}
	mcn := decodeMCN(buf)
	return mcn, mcn != ""
}

func (d *Drive) TocHeader() (TocHeader, error) {
	buf := make([]byte, tocHeaderLen)
	if _, err := d.call(&Request{Op: OpReadTocHeader, Arg: buf}); err != nil {
		return TocHeader{}, err
	}
	return decodeTocHeader(buf), nil
}

// TocEntry reads the entry for track with its address in format.
func (d *Drive) TocEntry(track uint8, format AddressFormat) (TocEntry, error) {
	buf := TocEntryRequest{Track: track, Format: format}.encode()
	if _, err := d.call(&Request{Op: OpReadTocEntry, Arg: buf}); err != nil {
		return TocEntry{}, err
	}
	return decodeTocEntry(buf), nil
}

// Tracks reads the header and every entry in its range.
func (d *Drive) Tracks(format AddressFormat) ([]TocEntry, error) {
	header, err := d.TocHeader()
	if err != nil {
		return nil, err
	}
	entries := make([]TocEntry, 0, header.TrackCount())
	for track := int(header.FirstTrack); track < int(header.LastTrack); track++ {
		entry, err := d.TocEntry(uint8(track), format)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", track, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (d *Drive) SetLock(locked bool) error {
	var v uintptr
	if locked {
		v = 1
	}
	_, err := d.call(&Request{Op: OpLockDoor, Value: v})
	return err
}

func (d *Drive) Eject() error {
	_, err := d.call(&Request{Op: OpEject})
	return err
}

func (d *Drive) CloseTray() error {
	_, err := d.call(&Request{Op: OpCloseTray})
	return err
}

// Start spins the disc up.
func (d *Drive) Start() error {
	_, err := d.call(&Request{Op: OpStart})
	return err
}

// Stop spins the disc down.
func (d *Drive) Stop() error {
	_, err := d.call(&Request{Op: OpStop})
	return err
}

func (d *Drive) Capabilities() (Capability, error) {
	ret, err := d.call(&Request{Op: OpGetCapability})
	if err != nil {
		return 0, err
	}
	return Capability(ret), nil
}

// MediaChanged reports whether the disc changed since the last query.
func (d *Drive) MediaChanged() (bool, error) {
	ret, err := d.call(&Request{Op: OpMediaChanged, Value: cdslCurrent})
	if err != nil {
		return false, err
	}
	return ret == 1, nil
}

// RequireAudio fails unless an audio disc is loaded.
func (d *Drive) RequireAudio() error {
	if status, ok := d.Status(); ok && (status == StatusNoDisc || status == StatusTrayOpen) {
		return ErrNoDisc
	}
	disc, ok := d.DiscType()
	if !ok || disc != DiscAudio {
		return ErrNotAudioCD
	}
	return nil
}

// SubChannel reads the current Q sub-channel position.
func (d *Drive) SubChannel(req SubChannelRequest) (SubChannel, error) {
	buf := req.encode()
	if _, err := d.call(&Request{Op: OpSubChannel, Arg: buf}); err != nil {
		return SubChannel{}, err
	}
	return decodeSubChannel(buf), nil
}

// AudioSamples is the int16 buffer length needed for frames audio frames.
func AudioSamples(frames int) int {
	return frames * FrameSizeRaw / 2
}

// ReadAudio reads frames audio frames starting at addr into a new buffer.
func (d *Drive) ReadAudio(addr Address, frames int) ([]int16, error) {
	if frames < 1 || frames > MaxFramesPerRead {
		return nil, frameCountError(frames)
	}
	buf := make([]int16, AudioSamples(frames))
	if err := d.ReadAudioInto(addr, frames, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadAudioInto reads frames audio frames starting at addr into buf,
// which must hold at least AudioSamples(frames) samples. Nothing is sent
// to the drive when the arguments are rejected.
func (d *Drive) ReadAudioInto(addr Address, frames int, buf []int16) error {
	if !addr.Valid() {
		return ErrInvalidAddress
	}
	if frames < 1 || frames > MaxFramesPerRead {
		return frameCountError(frames)
	}
	need := AudioSamples(frames)
	if len(buf) < need {
		return &BufferSizeError{Required: need, Provided: len(buf)}
	}

	samples := buf[:need]
	// The kernel writes through the pointer inside the request; Data keeps
	// the samples reachable until the call returns.
	data := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), need*2)
	req := readAudioRequest{
		addr:    addr,
		frames:  frames,
		bufAddr: uintptr(unsafe.Pointer(&samples[0])),
	}
	ret, err := d.call(&Request{Op: OpReadAudio, Arg: req.encode(), Data: data})
	if err != nil {
		return err
	}
	if err := translateStatus(OpReadAudio, ret); err != nil {
		return err
	}
	observability.RecordSectors("audio", frames)
	return nil
}

// ReadRawInto reads the raw sector at addr into buf[:FrameSizeRaw].
// The buffer carries the seek position into the call and only sector
// bytes out of it.
func (d *Drive) ReadRawInto(addr Address, buf []byte) error {
	if !addr.Valid() {
		return ErrInvalidAddress
	}
	at := addr.MSF()
	if at.Invalid() {
		return ErrInvalidAddress
	}
	if len(buf) < FrameSizeRaw {
		return &BufferSizeError{Required: FrameSizeRaw, Provided: len(buf)}
	}

	sector := buf[:FrameSizeRaw]
	rawReadRequest{at: at}.encodeInto(sector)
	if _, err := d.call(&Request{Op: OpReadRaw, Arg: sector}); err != nil {
		clear(sector)
		return err
	}
	observability.RecordSectors("raw", 1)
	return nil
}

func frameCountError(frames int) error {
	return &FrameCountError{Frames: frames}
}
