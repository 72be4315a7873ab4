package xtc

import "encoding/binary"

const (
	// DgramHeaderSize is the fixed on-disk size of a datagram header:
	// clock (8) + pulse stamp (8) + env (4) + damage word of the first
	// container (4). The remaining 16 bytes of that container header sit
	// at the start of the payload region.
	DgramHeaderSize = 24

	// XtcHeaderSize is the fixed on-disk size of a container header:
	// damage (4) + source (8) + type-and-version (4) + extent (4).
	XtcHeaderSize = 20
)

// ClockTime is the 8-byte monotonic event clock.
type ClockTime struct {
	Nanoseconds uint32
	Seconds     uint32
}

func (c ClockTime) AsDouble() float64 {
	return float64(c.Seconds) + float64(c.Nanoseconds)/1e9
}

// TimeStamp is the 8-byte pulse timing word pair. Sub-fields are bit-packed;
// accessors mask the stored words so there is a single source of truth.
type TimeStamp struct {
	Low  uint32
	High uint32
}

// Ticks returns the 119 MHz tick counter (24 bits).
func (t TimeStamp) Ticks() uint32 {
	return t.Low & 0xFFFFFF
}

// Control returns the control bits (8 bits).
func (t TimeStamp) Control() uint8 {
	return uint8((t.Low >> 24) & 0xFF)
}

// Fiducials returns the 360 Hz pulse identifier (17 bits).
func (t TimeStamp) Fiducials() uint32 {
	return t.High & 0x1FFFF
}

// Vector returns the event distribution seed (15 bits).
func (t TimeStamp) Vector() uint16 {
	return uint16((t.High >> 17) & 0x7FFF)
}

// Damage is the 4-byte data-quality bitmask.
type Damage uint32

// Standard damage bits.
const (
	DamageDroppedContribution    = 1
	DamageUninitialized          = 11
	DamageOutOfOrder             = 12
	DamageOutOfSynch             = 13
	DamageUserDefined            = 14
	DamageIncompleteContribution = 15
	DamageContainsIncomplete     = 16
)

// Flags returns the lower 24 bits holding the standard damage flags.
func (d Damage) Flags() uint32 {
	return uint32(d) & 0x00FFFFFF
}

// UserBits returns the upper 8 user-defined bits.
func (d Damage) UserBits() uint8 {
	return uint8((uint32(d) >> 24) & 0xFF)
}

func (d Damage) HasFlag(bit uint) bool {
	return d.Flags()&(1<<bit) != 0
}

// Src is the 8-byte source identifier: a logical word (level + process id)
// and a physical word (detector/device type and instance fields).
type Src struct {
	Log uint32
	Phy uint32
}

func (s Src) Level() uint8 {
	return uint8((s.Log >> 24) & 0xFF)
}

func (s Src) ProcessID() uint32 {
	return s.Log & 0xFFFFFF
}

func (s Src) DetectorType() uint8 {
	return uint8((s.Phy >> 24) & 0xFF)
}

func (s Src) DetectorID() uint8 {
	return uint8((s.Phy >> 16) & 0xFF)
}

func (s Src) DeviceType() uint8 {
	return uint8((s.Phy >> 8) & 0xFF)
}

func (s Src) DeviceID() uint8 {
	return uint8(s.Phy & 0xFF)
}

// TypeId is the 4-byte type-and-version word: type code in bits 0-15,
// version in bits 16-30, compression flag in bit 31.
type TypeId uint32

func (t TypeId) ID() uint16 {
	return uint16(t & 0xFFFF)
}

func (t TypeId) Version() uint16 {
	return uint16((t >> 16) & 0x7FFF)
}

func (t TypeId) Compressed() bool {
	return t&0x80000000 != 0
}

// XtcHeader is a decoded 20-byte container header.
type XtcHeader struct {
	Damage   Damage
	Src      Src
	Contains TypeId
	Extent   uint32
}

// PayloadSize returns the declared payload byte count. Negative means the
// extent is smaller than the header itself, which is a corruption signal.
func (h XtcHeader) PayloadSize() int {
	return int(h.Extent) - XtcHeaderSize
}

// Datagram is a decoded event header plus the header of its top-level
// container. The container header is physically split across the datagram
// header and the first 16 payload bytes; CompleteDatagram joins the halves.
type Datagram struct {
	Clock ClockTime
	Stamp TimeStamp
	Env   uint32
	Xtc   XtcHeader
}

// DecodeXtcHeader decodes a 20-byte container header. The input must hold
// at least XtcHeaderSize bytes; shorter slices are a caller bug.
func DecodeXtcHeader(data []byte) (XtcHeader, error) {
	if len(data) < XtcHeaderSize {
		return XtcHeader{}, &DecodeError{What: "container header", Need: XtcHeaderSize, Got: len(data)}
	}
	header := XtcHeader{
		Damage: Damage(binary.LittleEndian.Uint32(data[0:4])),
		Src: Src{
			Log: binary.LittleEndian.Uint32(data[4:8]),
			Phy: binary.LittleEndian.Uint32(data[8:12]),
		},
		Contains: TypeId(binary.LittleEndian.Uint32(data[12:16])),
		Extent:   binary.LittleEndian.Uint32(data[16:20]),
	}
	return header, nil
}

// EncodeXtcHeader is the inverse of DecodeXtcHeader.
func EncodeXtcHeader(h XtcHeader) []byte {
	data := make([]byte, XtcHeaderSize)
	binary.LittleEndian.PutUint32(data[0:4], uint32(h.Damage))
	binary.LittleEndian.PutUint32(data[4:8], h.Src.Log)
	binary.LittleEndian.PutUint32(data[8:12], h.Src.Phy)
	binary.LittleEndian.PutUint32(data[12:16], uint32(h.Contains))
	binary.LittleEndian.PutUint32(data[16:20], h.Extent)
	return data
}

// DecodeDgramHeader decodes the 24-byte datagram header. Only the damage
// word of the embedded container header is present here; the returned
// datagram must be completed from the payload with CompleteDatagram.
func DecodeDgramHeader(data []byte) (Datagram, error) {
	if len(data) < DgramHeaderSize {
		return Datagram{}, &DecodeError{What: "datagram header", Need: DgramHeaderSize, Got: len(data)}
	}
	dgram := Datagram{
		Clock: ClockTime{
			Nanoseconds: binary.LittleEndian.Uint32(data[0:4]),
			Seconds:     binary.LittleEndian.Uint32(data[4:8]),
		},
		Stamp: TimeStamp{
			Low:  binary.LittleEndian.Uint32(data[8:12]),
			High: binary.LittleEndian.Uint32(data[12:16]),
		},
		Env: binary.LittleEndian.Uint32(data[16:20]),
	}
	dgram.Xtc.Damage = Damage(binary.LittleEndian.Uint32(data[20:24]))
	return dgram, nil
}

// CompleteDatagram fills in the source, type and extent of the top-level
// container from the first 16 bytes following the datagram header.
func CompleteDatagram(dgram *Datagram, data []byte) error {
	if len(data) < XtcHeaderSize-4 {
		return &DecodeError{What: "split container header", Need: XtcHeaderSize - 4, Got: len(data)}
	}
	dgram.Xtc.Src.Log = binary.LittleEndian.Uint32(data[0:4])
	dgram.Xtc.Src.Phy = binary.LittleEndian.Uint32(data[4:8])
	dgram.Xtc.Contains = TypeId(binary.LittleEndian.Uint32(data[8:12]))
	dgram.Xtc.Extent = binary.LittleEndian.Uint32(data[12:16])
	return nil
}

// EncodeDgramHeader is the inverse of DecodeDgramHeader; the tail 4 bytes
// carry the damage word of the embedded container header.
func EncodeDgramHeader(d Datagram) []byte {
	data := make([]byte, DgramHeaderSize)
	binary.LittleEndian.PutUint32(data[0:4], d.Clock.Nanoseconds)
	binary.LittleEndian.PutUint32(data[4:8], d.Clock.Seconds)
	binary.LittleEndian.PutUint32(data[8:12], d.Stamp.Low)
	binary.LittleEndian.PutUint32(data[12:16], d.Stamp.High)
	binary.LittleEndian.PutUint32(data[16:20], d.Env)
	binary.LittleEndian.PutUint32(data[20:24], uint32(d.Xtc.Damage))
	return data
}
