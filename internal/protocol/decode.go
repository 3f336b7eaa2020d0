package protocol

import "fmt"

// DecodeResponses decodes payload in lock-step with cmds. The result has one
// entry per command, in the same order. Decoding stops at the first error.
func DecodeResponses(cmds []Command, payload []byte) ([]Response, error) {
	r := NewReader(payload)
	out := make([]Response, 0, len(cmds))
	for i, cmd := range cmds {
		resp, err := decodeResponse(cmd, r)
		if err != nil {
			return nil, fmt.Errorf("decode response %d (%s): %w", i, cmd.Opcode(), err)
		}
		out = append(out, resp)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, r.Remaining())
	}
	return out, nil
}

func decodeResponse(cmd Command, r *Reader) (Response, error) {
	switch cmd.(type) {
	case Read8:
		v, err := r.ReadUint8()
		return Read8Response{Value: v}, err
	case Read16:
		v, err := r.ReadUint16()
		return Read16Response{Value: v}, err
	case Read32:
		v, err := r.ReadUint32()
		return Read32Response{Value: v}, err
	case Read64:
		v, err := r.ReadUint64()
		return Read64Response{Value: v}, err
	case Write8:
		return Write8Response{}, nil
	case Write16:
		return Write16Response{}, nil
	case Write32:
		return Write32Response{}, nil
	case Write64:
		return Write64Response{}, nil
	case Version:
		s, err := r.ReadString()
		return VersionResponse{Version: s}, err
	case SaveState:
		return SaveStateResponse{}, nil
	case LoadState:
		return LoadStateResponse{}, nil
	case Title:
		s, err := r.ReadString()
		return TitleResponse{Title: s}, err
	case ID:
		s, err := r.ReadString()
		return IDResponse{ID: s}, err
	case UUID:
		s, err := r.ReadString()
		return UUIDResponse{UUID: s}, err
	case GameVersion:
		s, err := r.ReadString()
		return GameVersionResponse{Version: s}, err
	case Status:
		code, err := r.ReadUint32()
		return NewStatusResponse(code), err
	case Unimplemented:
		return UnimplementedResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownOpcode, cmd)
	}
}
