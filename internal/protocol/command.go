package protocol

import (
	"encoding/binary"
	"fmt"
)

// Command is one request in a batch. The set of implementations is closed.
type Command interface {
	Opcode() Opcode
	appendPayload(buf []byte) []byte
}

// Read8 reads one byte at Addr.
type Read8 struct{ Addr uint32 }

// Read16 reads a little-endian u16 at Addr.
type Read16 struct{ Addr uint32 }

// Read32 reads a little-endian u32 at Addr.
type Read32 struct{ Addr uint32 }

// Read64 reads a little-endian u64 at Addr.
type Read64 struct{ Addr uint32 }

// Write8 stores Value at Addr.
type Write8 struct {
	Addr  uint32
	Value uint8
}

// Write16 stores Value at Addr.
type Write16 struct {
	Addr  uint32
	Value uint16
}

// Write32 stores Value at Addr.
type Write32 struct {
	Addr  uint32
	Value uint32
}

// Write64 stores Value at Addr.
type Write64 struct {
	Addr  uint32
	Value uint64
}

// Version asks for the emulator version string.
type Version struct{}

// SaveState saves emulator state into Slot.
type SaveState struct{ Slot uint8 }

// LoadState restores emulator state from Slot.
type LoadState struct{ Slot uint8 }

// Title asks for the running game's title.
type Title struct{}

// ID asks for the running game's serial/id.
type ID struct{}

// UUID asks for the running game's disc/crc uuid.
type UUID struct{}

// GameVersion asks for the running game's version.
type GameVersion struct{}

// Status asks for the emulator run state.
type Status struct{}

// Unimplemented is the reserved opcode 255. Servers answer it with no data.
type Unimplemented struct{}

func (Read8) Opcode() Opcode         { return OpRead8 }
func (Read16) Opcode() Opcode        { return OpRead16 }
func (Read32) Opcode() Opcode        { return OpRead32 }
func (Read64) Opcode() Opcode        { return OpRead64 }
func (Write8) Opcode() Opcode        { return OpWrite8 }
func (Write16) Opcode() Opcode       { return OpWrite16 }
func (Write32) Opcode() Opcode       { return OpWrite32 }
func (Write64) Opcode() Opcode       { return OpWrite64 }
func (Version) Opcode() Opcode       { return OpVersion }
func (SaveState) Opcode() Opcode     { return OpSaveState }
func (LoadState) Opcode() Opcode     { return OpLoadState }
func (Title) Opcode() Opcode         { return OpTitle }
func (ID) Opcode() Opcode            { return OpID }
func (UUID) Opcode() Opcode          { return OpUUID }
func (GameVersion) Opcode() Opcode   { return OpGameVersion }
func (Status) Opcode() Opcode        { return OpStatus }
func (Unimplemented) Opcode() Opcode { return OpUnimplemented }

func (c Read8) appendPayload(b []byte) []byte  { return binary.LittleEndian.AppendUint32(b, c.Addr) }
func (c Read16) appendPayload(b []byte) []byte { return binary.LittleEndian.AppendUint32(b, c.Addr) }
func (c Read32) appendPayload(b []byte) []byte { return binary.LittleEndian.AppendUint32(b, c.Addr) }
func (c Read64) appendPayload(b []byte) []byte { return binary.LittleEndian.AppendUint32(b, c.Addr) }

func (c Write8) appendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, c.Addr)
	return append(b, c.Value)
}

func (c Write16) appendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, c.Addr)
	return binary.LittleEndian.AppendUint16(b, c.Value)
}

func (c Write32) appendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, c.Addr)
	return binary.LittleEndian.AppendUint32(b, c.Value)
}

func (c Write64) appendPayload(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, c.Addr)
	return binary.LittleEndian.AppendUint64(b, c.Value)
}

func (c SaveState) appendPayload(b []byte) []byte { return append(b, c.Slot) }
func (c LoadState) appendPayload(b []byte) []byte { return append(b, c.Slot) }

func (Version) appendPayload(b []byte) []byte       { return b }
func (Title) appendPayload(b []byte) []byte         { return b }
func (ID) appendPayload(b []byte) []byte            { return b }
func (UUID) appendPayload(b []byte) []byte          { return b }
func (GameVersion) appendPayload(b []byte) []byte   { return b }
func (Status) appendPayload(b []byte) []byte        { return b }
func (Unimplemented) appendPayload(b []byte) []byte { return b }

// Widths accepted by NewRead and NewWrite, in bits.
const (
	Width8  = 8
	Width16 = 16
	Width32 = 32
	Width64 = 64
)

// NewRead returns the read command for a width in bits.
func NewRead(width int, addr uint32) (Command, error) {
	switch width {
	case Width8:
		return Read8{Addr: addr}, nil
	case Width16:
		return Read16{Addr: addr}, nil
	case Width32:
		return Read32{Addr: addr}, nil
	case Width64:
		return Read64{Addr: addr}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
}

// NewWrite returns the write command for a width in bits. value must fit the
// width.
func NewWrite(width int, addr uint32, value uint64) (Command, error) {
	switch width {
	case Width8, Width16, Width32:
		if value>>uint(width) != 0 {
			return nil, fmt.Errorf("%w: %#x in %d bits", ErrValueOverflow, value, width)
		}
	}
	switch width {
	case Width8:
		return Write8{Addr: addr, Value: uint8(value)}, nil
	case Width16:
		return Write16{Addr: addr, Value: uint16(value)}, nil
	case Width32:
		return Write32{Addr: addr, Value: uint32(value)}, nil
	case Width64:
		return Write64{Addr: addr, Value: value}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
}
