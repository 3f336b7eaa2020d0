package protocol

import "fmt"

// Opcode identifies a command on the wire.
type Opcode uint8

const (
	OpRead8         Opcode = 0
	OpRead16        Opcode = 1
	OpRead32        Opcode = 2
	OpRead64        Opcode = 3
	OpWrite8        Opcode = 4
	OpWrite16       Opcode = 5
	OpWrite32       Opcode = 6
	OpWrite64       Opcode = 7
	OpVersion       Opcode = 8
	OpSaveState     Opcode = 9
	OpLoadState     Opcode = 10
	OpTitle         Opcode = 11
	OpID            Opcode = 12
	OpUUID          Opcode = 13
	OpGameVersion   Opcode = 14
	OpStatus        Opcode = 15
	OpUnimplemented Opcode = 255
)

var opcodeNames = map[Opcode]string{
	OpRead8:         "read8",
	OpRead16:        "read16",
	OpRead32:        "read32",
	OpRead64:        "read64",
	OpWrite8:        "write8",
	OpWrite16:       "write16",
	OpWrite32:       "write32",
	OpWrite64:       "write64",
	OpVersion:       "version",
	OpSaveState:     "save_state",
	OpLoadState:     "load_state",
	OpTitle:         "title",
	OpID:            "id",
	OpUUID:          "uuid",
	OpGameVersion:   "game_version",
	OpStatus:        "status",
	OpUnimplemented: "unimplemented",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// Known reports whether o is part of the opcode table.
func (o Opcode) Known() bool {
	_, ok := opcodeNames[o]
	return ok
}
