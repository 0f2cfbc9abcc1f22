package cdrom

import "fmt"

// InterfaceByte is the CD-ROM ioctl family byte from linux/cdrom.h.
const InterfaceByte uint8 = 0x53

// Operation is one symbolic drive command. The value is its opcode.
type Operation uint8

const (
	OpPause            Operation = 0x01
	OpResume           Operation = 0x02
	OpPlayMSF          Operation = 0x03
	OpPlayTrackIndex   Operation = 0x04
	OpReadTocHeader    Operation = 0x05
	OpReadTocEntry     Operation = 0x06
	OpStop             Operation = 0x07
	OpStart            Operation = 0x08
	OpEject            Operation = 0x09
	OpVolumeControl    Operation = 0x0a
	OpSubChannel       Operation = 0x0b
	OpReadMode2        Operation = 0x0c
	OpReadMode1        Operation = 0x0d
	OpReadAudio        Operation = 0x0e
	OpEjectSoftware    Operation = 0x0f
	OpMultiSession     Operation = 0x10
	OpGetMCN           Operation = 0x11
	OpReset            Operation = 0x12
	OpVolumeRead       Operation = 0x13
	OpReadRaw          Operation = 0x14
	OpReadCooked       Operation = 0x15
	OpSeek             Operation = 0x16
	OpPlayBlock        Operation = 0x17
	OpReadAll          Operation = 0x18
	OpCloseTray        Operation = 0x19
	OpGetSpindown      Operation = 0x1d
	OpSetSpindown      Operation = 0x1e
	OpSetOptions       Operation = 0x20
	OpClearOptions     Operation = 0x21
	OpSelectSpeed      Operation = 0x22
	OpSelectDisc       Operation = 0x23
	OpMediaChanged     Operation = 0x25
	OpDriveStatus      Operation = 0x26
	OpDiscStatus       Operation = 0x27
	OpChangerSlots     Operation = 0x28
	OpLockDoor         Operation = 0x29
	OpDebug            Operation = 0x30
	OpGetCapability    Operation = 0x31
	OpAudioBufferSize  Operation = 0x82
	OpDVDReadStructure Operation = 0x90
	OpDVDWriteStruct   Operation = 0x91
	OpDVDAuthenticate  Operation = 0x92
	OpSendPacket       Operation = 0x93
	OpNextWritable     Operation = 0x94
	OpLastWritten      Operation = 0x95
	OpTimedMediaChange Operation = 0x96
)

var operationNames = map[Operation]string{
	OpPause:            "pause",
	OpResume:           "resume",
	OpPlayMSF:          "play_msf",
	OpPlayTrackIndex:   "play_track_index",
	OpReadTocHeader:    "read_toc_header",
	OpReadTocEntry:     "read_toc_entry",
	OpStop:             "stop",
	OpStart:            "start",
	OpEject:            "eject",
	OpVolumeControl:    "volume_control",
	OpSubChannel:       "subchannel",
	OpReadMode2:        "read_mode2",
	OpReadMode1:        "read_mode1",
	OpReadAudio:        "read_audio",
	OpEjectSoftware:    "eject_software",
	OpMultiSession:     "multisession",
	OpGetMCN:           "get_mcn",
	OpReset:            "reset",
	OpVolumeRead:       "volume_read",
	OpReadRaw:          "read_raw",
	OpReadCooked:       "read_cooked",
	OpSeek:             "seek",
	OpPlayBlock:        "play_block",
	OpReadAll:          "read_all",
	OpCloseTray:        "close_tray",
	OpGetSpindown:      "get_spindown",
	OpSetSpindown:      "set_spindown",
	OpSetOptions:       "set_options",
	OpClearOptions:     "clear_options",
	OpSelectSpeed:      "select_speed",
	OpSelectDisc:       "select_disc",
	OpMediaChanged:     "media_changed",
	OpDriveStatus:      "drive_status",
	OpDiscStatus:       "disc_status",
	OpChangerSlots:     "changer_nslots",
	OpLockDoor:         "lock_door",
	OpDebug:            "debug",
	OpGetCapability:    "get_capability",
	OpAudioBufferSize:  "audio_buffer_size",
	OpDVDReadStructure: "dvd_read_struct",
	OpDVDWriteStruct:   "dvd_write_struct",
	OpDVDAuthenticate:  "dvd_auth",
	OpSendPacket:       "send_packet",
	OpNextWritable:     "next_writable",
	OpLastWritten:      "last_written",
	OpTimedMediaChange: "timed_media_change",
}

// ControlCode returns the ioctl request number the kernel expects for op.
// Every device call derives its code here.
func ControlCode(op Operation) uint {
	return uint(InterfaceByte)<<8 + uint(op)
}

// Opcode returns the one-byte opcode of op.
func (op Operation) Opcode() uint8 {
	return uint8(op)
}

// Known reports whether op is part of the registry.
func (op Operation) Known() bool {
	_, ok := operationNames[op]
	return ok
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%#02x)", uint8(op))
}
