package cdrom

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/go-restruct/restruct"
)

// Wire sizes of the linux/cdrom.h structures.
const (
	tocHeaderLen     = 2
	tocEntryLen      = 12
	subChannelLen    = 16
	readAudioLen64   = 24
	readAudioLen32   = 16
	msfRangeLen      = 6
	mcnLen           = 14
	cdslCurrent      = 0x7fffffff
	addrUnionLen     = 4
	edriveCantDoThis = 95 // EOPNOTSUPP, as redefined by linux/cdrom.h
)

var byteOrder binary.ByteOrder = binary.NativeEndian

// cdrom_tochdr
type wireTocHeader struct {
	Trk0 uint8
	Trk1 uint8
}

// cdrom_tocentry
type wireTocEntry struct {
	Track    uint8
	ADRCtrl  uint8
	Format   uint8
	Pad0     uint8
	Addr     [addrUnionLen]byte
	DataMode uint8
	Pad1     [3]byte
}

// cdrom_subchnl
type wireSubChannel struct {
	Format      uint8
	AudioStatus uint8
	ADRCtrl     uint8
	Track       uint8
	Index       uint8
	Pad0        [3]byte
	AbsAddr     [addrUnionLen]byte
	RelAddr     [addrUnionLen]byte
}

// cdrom_read_audio on LP64 targets.
type wireReadAudio64 struct {
	Addr    [addrUnionLen]byte
	Format  uint8
	Pad0    [3]byte
	NFrames int32
	Pad1    [4]byte
	Buf     uint64
}

// cdrom_read_audio on 32-bit targets.
type wireReadAudio32 struct {
	Addr    [addrUnionLen]byte
	Format  uint8
	Pad0    [3]byte
	NFrames int32
	Buf     uint32
}

// cdrom_msf, the request view of a raw read buffer.
type wireMSFRange struct {
	Min0   uint8
	Sec0   uint8
	Frame0 uint8
	Min1   uint8
	Sec1   uint8
	Frame1 uint8
}

func pack(v any, size int) []byte {
	b, err := restruct.Pack(byteOrder, v)
	if err != nil {
		panic(fmt.Sprintf("cdrom: pack %T: %v", v, err))
	}
	if len(b) != size {
		panic(fmt.Sprintf("cdrom: pack %T: got %d bytes want %d", v, len(b), size))
	}
	return b
}

func unpack(b []byte, v any) {
	if err := restruct.Unpack(b, byteOrder, v); err != nil {
		panic(fmt.Sprintf("cdrom: unpack %T: %v", v, err))
	}
}

func splitADRCtrl(b uint8) (adr, ctrl uint8) {
	return b >> 4, b & 0x0F
}

func encodeAddr(a Address) [addrUnionLen]byte {
	var out [addrUnionLen]byte
	if a.Format() == FormatMSF {
		m := a.MSF()
		out[0], out[1], out[2] = m.Minute, m.Second, m.Frame
		return out
	}
	byteOrder.PutUint32(out[:], uint32(a.LBA()))
	return out
}

// decodeAddr interprets a cdrom_addr union. The kernel only ever returns
// the format it was asked for; anything else is a driver fault.
func decodeAddr(raw [addrUnionLen]byte, format uint8) Address {
	switch AddressFormat(format) {
	case FormatLBA:
		return LogicalAddress(int32(byteOrder.Uint32(raw[:])))
	case FormatMSF:
		return TimeAddress(MSF{Minute: raw[0], Second: raw[1], Frame: raw[2]})
	default:
		panic(fmt.Sprintf("cdrom: kernel returned unknown address format %#02x", format))
	}
}

func normalizeFormat(f AddressFormat) AddressFormat {
	if f == FormatLBA {
		return FormatLBA
	}
	return FormatMSF
}

// TocEntryRequest presets the fields the kernel reads from cdrom_tocentry.
// A zero Format encodes MSF.
type TocEntryRequest struct {
	Track  uint8
	Format AddressFormat
}

func (r TocEntryRequest) encode() []byte {
	return pack(&wireTocEntry{Track: r.Track, Format: uint8(normalizeFormat(r.Format))}, tocEntryLen)
}

func decodeTocHeader(b []byte) TocHeader {
	var w wireTocHeader
	unpack(b, &w)
	return TocHeader{FirstTrack: w.Trk0, LastTrack: w.Trk1}
}

func decodeTocEntry(b []byte) TocEntry {
	var w wireTocEntry
	unpack(b, &w)
	adr, ctrl := splitADRCtrl(w.ADRCtrl)
	return TocEntry{
		Track:    w.Track,
		ADR:      adr,
		Ctrl:     ctrl,
		Address:  decodeAddr(w.Addr, w.Format),
		DataMode: w.DataMode,
	}
}

func (r SubChannelRequest) encode() []byte {
	return pack(&wireSubChannel{Format: uint8(normalizeFormat(r.Format)), Track: r.Track}, subChannelLen)
}

func decodeSubChannel(b []byte) SubChannel {
	var w wireSubChannel
	unpack(b, &w)
	adr, ctrl := splitADRCtrl(w.ADRCtrl)
	return SubChannel{
		AudioStatus: AudioStatus(w.AudioStatus),
		ADR:         adr,
		Ctrl:        ctrl,
		Track:       w.Track,
		Index:       w.Index,
		Absolute:    decodeAddr(w.AbsAddr, w.Format),
		Relative:    decodeAddr(w.RelAddr, w.Format),
	}
}

// readAudioRequest is the in-memory form of cdrom_read_audio. bufAddr is
// the address of the caller's sample buffer.
type readAudioRequest struct {
	addr    Address
	frames  int
	bufAddr uintptr
}

func (r readAudioRequest) encode() []byte {
	addr := encodeAddr(r.addr)
	format := uint8(r.addr.Format())
	if strconv.IntSize == 32 {
		return pack(&wireReadAudio32{
			Addr:    addr,
			Format:  format,
			NFrames: int32(r.frames),
			Buf:     uint32(r.bufAddr),
		}, readAudioLen32)
	}
	return pack(&wireReadAudio64{
		Addr:    addr,
		Format:  format,
		NFrames: int32(r.frames),
		Buf:     uint64(r.bufAddr),
	}, readAudioLen64)
}

// rawReadRequest is the seek position written into a raw read buffer
// before the call. The kernel overwrites the whole buffer with sector data.
type rawReadRequest struct {
	at MSF
}

func (r rawReadRequest) encodeInto(buf []byte) {
	b := pack(&wireMSFRange{
		Min0: r.at.Minute, Sec0: r.at.Second, Frame0: r.at.Frame,
		Min1: r.at.Minute, Sec1: r.at.Second, Frame1: r.at.Frame,
	}, msfRangeLen)
	copy(buf, b)
}

// decodeMCN trims the cdrom_mcn NUL terminator and padding.
func decodeMCN(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	out := b[:n]
	for len(out) > 0 && (out[len(out)-1] == ' ') {
		out = out[:len(out)-1]
	}
	return string(out)
}
