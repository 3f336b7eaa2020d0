package protocol

import "encoding/binary"

// Response is the decoded result of one command. Its concrete type is fixed
// by the command that produced it.
type Response interface {
	Opcode() Opcode
	appendPayload(buf []byte) []byte
}

// Read8Response carries the byte read by Read8.
type Read8Response struct{ Value uint8 }

// Read16Response carries the value read by Read16.
type Read16Response struct{ Value uint16 }

// Read32Response carries the value read by Read32.
type Read32Response struct{ Value uint32 }

// Read64Response carries the value read by Read64.
type Read64Response struct{ Value uint64 }

// Write responses acknowledge a store and carry no data.
type (
	Write8Response  struct{}
	Write16Response struct{}
	Write32Response struct{}
	Write64Response struct{}
)

// VersionResponse holds the emulator version string.
type VersionResponse struct{ Version string }

// SaveStateResponse acknowledges SaveState.
type SaveStateResponse struct{}

// LoadStateResponse acknowledges LoadState.
type LoadStateResponse struct{}

// TitleResponse holds the running game title.
type TitleResponse struct{ Title string }

// IDResponse holds the game serial.
type IDResponse struct{ ID string }

// UUIDResponse holds the disc crc.
type UUIDResponse struct{ UUID string }

// GameVersionResponse holds the game version.
type GameVersionResponse struct{ Version string }

// StatusResponse carries the mapped run state and the raw code it came from.
type StatusResponse struct {
	Status EmuStatus
	Code   uint32
}

// UnimplementedResponse answers the reserved opcode.
type UnimplementedResponse struct{}

func (Read8Response) Opcode() Opcode         { return OpRead8 }
func (Read16Response) Opcode() Opcode        { return OpRead16 }
func (Read32Response) Opcode() Opcode        { return OpRead32 }
func (Read64Response) Opcode() Opcode        { return OpRead64 }
func (Write8Response) Opcode() Opcode        { return OpWrite8 }
func (Write16Response) Opcode() Opcode       { return OpWrite16 }
func (Write32Response) Opcode() Opcode       { return OpWrite32 }
func (Write64Response) Opcode() Opcode       { return OpWrite64 }
func (VersionResponse) Opcode() Opcode       { return OpVersion }
func (SaveStateResponse) Opcode() Opcode     { return OpSaveState }
func (LoadStateResponse) Opcode() Opcode     { return OpLoadState }
func (TitleResponse) Opcode() Opcode         { return OpTitle }
func (IDResponse) Opcode() Opcode            { return OpID }
func (UUIDResponse) Opcode() Opcode          { return OpUUID }
func (GameVersionResponse) Opcode() Opcode   { return OpGameVersion }
func (StatusResponse) Opcode() Opcode        { return OpStatus }
func (UnimplementedResponse) Opcode() Opcode { return OpUnimplemented }

// Uint64 widens a read result.
func (r Read8Response) Uint64() uint64  { return uint64(r.Value) }
func (r Read16Response) Uint64() uint64 { return uint64(r.Value) }
func (r Read32Response) Uint64() uint64 { return uint64(r.Value) }
func (r Read64Response) Uint64() uint64 { return r.Value }

func (r Read8Response) appendPayload(b []byte) []byte { return append(b, r.Value) }
func (r Read16Response) appendPayload(b []byte) []byte {
	return binary.LittleEndian.AppendUint16(b, r.Value)
}
func (r Read32Response) appendPayload(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, r.Value)
}
func (r Read64Response) appendPayload(b []byte) []byte {
	return binary.LittleEndian.AppendUint64(b, r.Value)
}

func (Write8Response) appendPayload(b []byte) []byte        { return b }
func (Write16Response) appendPayload(b []byte) []byte       { return b }
func (Write32Response) appendPayload(b []byte) []byte       { return b }
func (Write64Response) appendPayload(b []byte) []byte       { return b }
func (SaveStateResponse) appendPayload(b []byte) []byte     { return b }
func (LoadStateResponse) appendPayload(b []byte) []byte     { return b }
func (UnimplementedResponse) appendPayload(b []byte) []byte { return b }

func (r VersionResponse) appendPayload(b []byte) []byte     { return appendString(b, r.Version) }
func (r TitleResponse) appendPayload(b []byte) []byte       { return appendString(b, r.Title) }
func (r IDResponse) appendPayload(b []byte) []byte          { return appendString(b, r.ID) }
func (r UUIDResponse) appendPayload(b []byte) []byte        { return appendString(b, r.UUID) }
func (r GameVersionResponse) appendPayload(b []byte) []byte { return appendString(b, r.Version) }

func (r StatusResponse) appendPayload(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, r.Code)
}

// NewStatusResponse builds a StatusResponse from a wire code.
func NewStatusResponse(code uint32) StatusResponse {
	return StatusResponse{Status: StatusFromCode(code), Code: code}
}

// appendString writes the length-prefixed, null-terminated string form.
func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)+1))
	b = append(b, s...)
	return append(b, 0)
}
