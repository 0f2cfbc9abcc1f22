package cdrom

import "fmt"

// DriveStatus is the CDROM_DRIVE_STATUS result.
type DriveStatus int

const (
	StatusNoInfo        DriveStatus = 0
	StatusNoDisc        DriveStatus = 1
	StatusTrayOpen      DriveStatus = 2
	StatusDriveNotReady DriveStatus = 3
	StatusDiscOK        DriveStatus = 4
)

func decodeDriveStatus(raw int) (DriveStatus, bool) {
	s := DriveStatus(raw)
	switch s {
	case StatusNoInfo, StatusNoDisc, StatusTrayOpen, StatusDriveNotReady, StatusDiscOK:
		return s, true
	}
	return 0, false
}

func (s DriveStatus) String() string {
	switch s {
	case StatusNoInfo:
		return "no-info"
	case StatusNoDisc:
		return "no-disc"
	case StatusTrayOpen:
		return "tray-open"
	case StatusDriveNotReady:
		return "drive-not-ready"
	case StatusDiscOK:
		return "disc-ok"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// DiscType is the CDROM_DISC_STATUS result.
type DiscType int

const (
	DiscNoInfo DiscType = 0
	DiscAudio  DiscType = 100
	DiscData1  DiscType = 101
	DiscData2  DiscType = 102
	DiscXA21   DiscType = 103
	DiscXA22   DiscType = 104
	DiscMixed  DiscType = 105
)

func decodeDiscType(raw int) (DiscType, bool) {
	t := DiscType(raw)
	switch t {
	case DiscNoInfo, DiscAudio, DiscData1, DiscData2, DiscXA21, DiscXA22, DiscMixed:
		return t, true
	}
	return 0, false
}

func (t DiscType) String() string {
	switch t {
	case DiscNoInfo:
		return "no-info"
	case DiscAudio:
		return "audio"
	case DiscData1:
		return "data-mode1"
	case DiscData2:
		return "data-mode2"
	case DiscXA21:
		return "xa-form1"
	case DiscXA22:
		return "xa-form2"
	case DiscMixed:
		return "mixed"
	default:
		return fmt.Sprintf("disc(%d)", int(t))
	}
}

// AudioStatus is the sub-channel audio play state.
type AudioStatus uint8

const (
	AudioInvalid   AudioStatus = 0x00
	AudioPlay      AudioStatus = 0x11
	AudioPaused    AudioStatus = 0x12
	AudioCompleted AudioStatus = 0x13
	AudioError     AudioStatus = 0x14
	AudioNoStatus  AudioStatus = 0x15
)

func (s AudioStatus) String() string {
	switch s {
	case AudioInvalid:
		return "invalid"
	case AudioPlay:
		return "play"
	case AudioPaused:
		return "paused"
	case AudioCompleted:
		return "completed"
	case AudioError:
		return "error"
	case AudioNoStatus:
		return "no-status"
	default:
		return fmt.Sprintf("audio(%#02x)", uint8(s))
	}
}

// Capability is the CDROM_GET_CAPABILITY bit set.
type Capability uint32

const (
	CapCloseTray     Capability = 0x1
	CapOpenTray      Capability = 0x2
	CapLock          Capability = 0x4
	CapSelectSpeed   Capability = 0x8
	CapSelectDisc    Capability = 0x10
	CapMultiSession  Capability = 0x20
	CapMCN           Capability = 0x40
	CapMediaChanged  Capability = 0x80
	CapPlayAudio     Capability = 0x100
	CapReset         Capability = 0x200
	CapDriveStatus   Capability = 0x800
	CapGenericPacket Capability = 0x1000
	CapCDR           Capability = 0x2000
	CapCDRW          Capability = 0x4000
	CapDVD           Capability = 0x8000
	CapDVDR          Capability = 0x10000
	CapDVDRAM        Capability = 0x20000
	CapMODrive       Capability = 0x40000
	CapMRW           Capability = 0x80000
	CapMRWW          Capability = 0x100000
	CapRAM           Capability = 0x200000
)

func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}

// TocHeader bounds the track index range [FirstTrack, LastTrack).
type TocHeader struct {
	FirstTrack uint8
	LastTrack  uint8
}

// TrackCount is the number of indices in the header range.
func (h TocHeader) TrackCount() int {
	if h.LastTrack <= h.FirstTrack {
		return 0
	}
	return int(h.LastTrack - h.FirstTrack)
}

// TocEntry is one decoded table-of-contents record.
type TocEntry struct {
	Track    uint8
	ADR      uint8
	Ctrl     uint8
	Address  Address
	DataMode uint8
}

// IsData reports whether the control nibble marks a data track.
func (e TocEntry) IsData() bool {
	return e.Ctrl&0x04 != 0
}

// SubChannel is the decoded Q sub-channel position.
type SubChannel struct {
	AudioStatus AudioStatus
	ADR         uint8
	Ctrl        uint8
	Track       uint8
	Index       uint8
	Absolute    Address
	Relative    Address
}

// SubChannelRequest selects the sub-channel address format and track.
// Track 0 leaves the track field unset.
type SubChannelRequest struct {
	Format AddressFormat
	Track  uint8
}
