package cdrom

import "fmt"

// Disc geometry from linux/cdrom.h.
const (
	FramesPerSecond   = 75
	SecondsPerMinute  = 60
	MSFOffset         = 150
	FrameSizeCooked   = 2048
	FrameSizeRaw      = 2352
	FrameSizeRawer    = 2646
	MaxFramesPerRead  = FramesPerSecond
	SamplesPerRawRead = FrameSizeRaw / 2

	// MaxLBA is the last addressable block, 99:59.74.
	MaxLBA = (99*SecondsPerMinute+59)*FramesPerSecond + 74 - MSFOffset
)

// AddressFormat is the wire discriminant selecting LBA or MSF addressing.
type AddressFormat uint8

const (
	FormatLBA AddressFormat = 0x01
	FormatMSF AddressFormat = 0x02
)

func (f AddressFormat) String() string {
	switch f {
	case FormatLBA:
		return "lba"
	case FormatMSF:
		return "msf"
	default:
		return fmt.Sprintf("format(%#02x)", uint8(f))
	}
}

// MSF is a minute/second/frame disc position.
type MSF struct {
	Minute uint8
	Second uint8
	Frame  uint8
}

// FromLBA converts a logical block address to MSF, truncating. The result
// is only meaningful for lba in [-MSFOffset, MaxLBA]; check positions with
// Address.Valid before converting them.
func FromLBA(lba int32) MSF {
	x := int(lba) + MSFOffset
	return MSF{
		Minute: uint8(x / (SecondsPerMinute * FramesPerSecond)),
		Second: uint8((x / FramesPerSecond) % SecondsPerMinute),
		Frame:  uint8(x % FramesPerSecond),
	}
}

// ToLBA converts m to a logical block address.
func (m MSF) ToLBA() int32 {
	return int32((int(m.Minute)*SecondsPerMinute+int(m.Second))*FramesPerSecond+int(m.Frame)) - MSFOffset
}

// Invalid reports whether m points into the lead-in.
func (m MSF) Invalid() bool {
	return m.Minute == 0 && m.Second < 2
}

// ParseMSF parses the "mm:ss.ff" form produced by MSF.String.
func ParseMSF(raw string) (MSF, error) {
	var m, s, f int
	if _, err := fmt.Sscanf(raw, "%d:%d.%d", &m, &s, &f); err != nil {
		return MSF{}, fmt.Errorf("parse msf %q: %w", raw, err)
	}
	if m < 0 || m > 255 || s < 0 || s >= SecondsPerMinute || f < 0 || f >= FramesPerSecond {
		return MSF{}, fmt.Errorf("parse msf %q: %w", raw, ErrInvalidAddress)
	}
	return MSF{Minute: uint8(m), Second: uint8(s), Frame: uint8(f)}, nil
}

func (m MSF) String() string {
	return fmt.Sprintf("%02d:%02d.%02d", m.Minute, m.Second, m.Frame)
}

// Address is either a logical block address or an MSF position.
// The zero value is LBA 0.
type Address struct {
	format AddressFormat
	lba    int32
	msf    MSF
}

func LogicalAddress(lba int32) Address {
	return Address{format: FormatLBA, lba: lba}
}

func TimeAddress(msf MSF) Address {
	return Address{format: FormatMSF, msf: msf}
}

// Format returns the variant held by a.
func (a Address) Format() AddressFormat {
	if a.format == FormatMSF {
		return FormatMSF
	}
	return FormatLBA
}

// LBA returns a as a logical block address, converting if needed.
func (a Address) LBA() int32 {
	if a.Format() == FormatMSF {
		return a.msf.ToLBA()
	}
	return a.lba
}

// MSF returns a as an MSF position, converting if needed.
func (a Address) MSF() MSF {
	if a.Format() == FormatMSF {
		return a.msf
	}
	return FromLBA(a.lba)
}

// In returns a expressed in format f. An LBA past MaxLBA has no MSF form
// and is returned unchanged, so Valid still rejects it.
func (a Address) In(f AddressFormat) Address {
	if f == FormatMSF {
		if a.Format() == FormatLBA && a.lba > MaxLBA {
			return a
		}
		return TimeAddress(a.MSF())
	}
	return LogicalAddress(a.LBA())
}

// Valid reports whether a may be sent to the drive as a read position.
func (a Address) Valid() bool {
	if a.Format() == FormatLBA {
		return a.lba >= 0 && a.lba <= MaxLBA
	}
	m := a.msf
	return !m.Invalid() && m.Minute <= 99 && m.Second < SecondsPerMinute && m.Frame < FramesPerSecond
}

func (a Address) String() string {
	if a.Format() == FormatMSF {
		return a.msf.String()
	}
	return fmt.Sprintf("lba:%d", a.lba)
}
