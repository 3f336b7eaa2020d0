package protocol

import (
	"encoding/binary"
	"fmt"
)

// DecodeRequest parses a finalized request buffer back into its commands.
// It is the server half of Batch.Finalize and is used by in-process peers.
func DecodeRequest(buf []byte) ([]Command, error) {
	if len(buf) < lengthPrefix {
		return nil, fmt.Errorf("%w: request shorter than length prefix", ErrInvalidLength)
	}
	declared := binary.LittleEndian.Uint32(buf[0:lengthPrefix])
	if uint64(declared) != uint64(len(buf)) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrInvalidLength, declared, len(buf))
	}

	r := NewReader(buf[lengthPrefix:])
	cmds := make([]Command, 0, 4)
	for r.Remaining() > 0 {
		op, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		cmd, err := decodeCommand(Opcode(op), r)
		if err != nil {
			return nil, fmt.Errorf("decode command %d (%s): %w", len(cmds), Opcode(op), err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func decodeCommand(op Opcode, r *Reader) (Command, error) {
	switch op {
	case OpRead8, OpRead16, OpRead32, OpRead64:
		addr, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		return NewRead(8<<uint(op-OpRead8), addr)
	case OpWrite8:
		addr, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadUint8()
		return Write8{Addr: addr, Value: v}, err
	case OpWrite16:
		addr, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadUint16()
		return Write16{Addr: addr, Value: v}, err
	case OpWrite32:
		addr, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadUint32()
		return Write32{Addr: addr, Value: v}, err
	case OpWrite64:
		addr, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadUint64()
		return Write64{Addr: addr, Value: v}, err
	case OpSaveState:
		slot, err := r.ReadUint8()
		return SaveState{Slot: slot}, err
	case OpLoadState:
		slot, err := r.ReadUint8()
		return LoadState{Slot: slot}, err
	case OpVersion:
		return Version{}, nil
	case OpTitle:
		return Title{}, nil
	case OpID:
		return ID{}, nil
	case OpUUID:
		return UUID{}, nil
	case OpGameVersion:
		return GameVersion{}, nil
	case OpStatus:
		return Status{}, nil
	case OpUnimplemented:
		return Unimplemented{}, nil
	default:
		return nil, ErrUnknownOpcode
	}
}

// EncodeResponses concatenates the payload form of resps, in order. The
// caller frames the result with a size and status header.
func EncodeResponses(resps []Response) []byte {
	out := make([]byte, 0, 16*len(resps))
	for _, resp := range resps {
		out = resp.appendPayload(out)
	}
	return out
}
