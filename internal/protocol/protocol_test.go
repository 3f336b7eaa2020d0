package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/pine/internal/testutil/testlog"
)

// echo answers every decoded command with a canned response, the way a
// cooperative emulator would.
func echo(t *testing.T, req []byte, answer func(Command) Response) []byte {
	t.Helper()
	cmds, err := DecodeRequest(req)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	resps := make([]Response, 0, len(cmds))
	for _, cmd := range cmds {
		resps = append(resps, answer(cmd))
	}
	return EncodeResponses(resps)
}

func canned(cmd Command) Response {
	switch c := cmd.(type) {
	case Read8:
		return Read8Response{Value: uint8(c.Addr)}
	case Read16:
		return Read16Response{Value: uint16(c.Addr)}
	case Read32:
		return Read32Response{Value: c.Addr}
	case Read64:
		return Read64Response{Value: uint64(c.Addr) << 32}
	case Write8:
		return Write8Response{}
	case Write16:
		return Write16Response{}
	case Write32:
		return Write32Response{}
	case Write64:
		return Write64Response{}
	case Version:
		return VersionResponse{Version: "PCSX2 v1.7.5"}
	case SaveState:
		return SaveStateResponse{}
	case LoadState:
		return LoadStateResponse{}
	case Title:
		return TitleResponse{Title: "Klonoa 2 - Lunatea's Veil"}
	case ID:
		return IDResponse{ID: "SLUS-20151"}
	case UUID:
		return UUIDResponse{UUID: "8f9b4a3c"}
	case GameVersion:
		return GameVersionResponse{Version: "1.00"}
	case Status:
		return NewStatusResponse(1)
	default:
		return UnimplementedResponse{}
	}
}

func TestRoundTripEveryCommand(t *testing.T) {
	testlog.Start(t)
	cmds := []Command{
		Read8{Addr: 0x11}, Read16{Addr: 0x2222}, Read32{Addr: 0x003667DC}, Read64{Addr: 0x44},
		Write8{Addr: 1, Value: 0xff}, Write16{Addr: 2, Value: 0xbeef},
		Write32{Addr: 0x1000, Value: 42}, Write64{Addr: 4, Value: 1 << 63},
		Version{}, SaveState{Slot: 2}, LoadState{Slot: 2},
		Title{}, ID{}, UUID{}, GameVersion{}, Status{}, Unimplemented{},
	}
	b := NewBatch(cmds...)
	req := b.Finalize()

	decodedCmds, err := DecodeRequest(req)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if !reflect.DeepEqual(decodedCmds, cmds) {
		t.Fatalf("request round trip mismatch:\n got=%#v\nwant=%#v", decodedCmds, cmds)
	}

	payload := echo(t, req, canned)
	resps, err := DecodeResponses(b.Commands(), payload)
	if err != nil {
		t.Fatalf("decode responses: %v", err)
	}
	if len(resps) != len(cmds) {
		t.Fatalf("got %d responses for %d commands", len(resps), len(cmds))
	}
	for i, resp := range resps {
		if resp.Opcode() != cmds[i].Opcode() {
			t.Fatalf("response %d opcode=%s want %s", i, resp.Opcode(), cmds[i].Opcode())
		}
		if want := canned(cmds[i]); !reflect.DeepEqual(resp, want) {
			t.Fatalf("response %d=%#v want %#v", i, resp, want)
		}
	}
}

func TestWriteResponsesAreZeroSize(t *testing.T) {
	testlog.Start(t)
	resps, err := DecodeResponses([]Command{Write32{Addr: 0x1000, Value: 42}}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resps[0] != (Write32Response{}) {
		t.Fatalf("unexpected response %#v", resps[0])
	}
}

func TestStatusFromCode(t *testing.T) {
	testlog.Start(t)
	cases := map[uint32]EmuStatus{0: EmuRunning, 1: EmuPaused, 2: EmuShutdown, 99: EmuUnknown, ^uint32(0): EmuUnknown}
	for code, want := range cases {
		if got := StatusFromCode(code); got != want {
			t.Fatalf("StatusFromCode(%d)=%s want %s", code, got, want)
		}
	}
	resps, err := DecodeResponses([]Command{Status{}}, []byte{2, 0, 0, 0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resps[0].(StatusResponse).Status != EmuShutdown {
		t.Fatalf("expected shutdown, got %#v", resps[0])
	}
}

func TestStringFieldStripsTerminator(t *testing.T) {
	testlog.Start(t)
	payload := []byte{6, 0, 0, 0, 'A', 'B', 'C', 'D', 'E', 0}
	resps, err := DecodeResponses([]Command{Title{}}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resps[0].(TitleResponse).Title; got != "ABCDE" {
		t.Fatalf("title=%q", got)
	}
}

func TestStringFieldErrors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"empty", []byte{0, 0, 0, 0}, ErrEmptyString},
		{"no terminator", []byte{3, 0, 0, 0, 'a', 'b', 'c'}, ErrMissingTerminator},
		{"invalid utf8", []byte{3, 0, 0, 0, 0xff, 0xfe, 0}, ErrInvalidUTF8},
		{"short", []byte{9, 0, 0, 0, 'a', 0}, ErrShortPayload},
		{"no length", []byte{1, 0}, ErrShortPayload},
	}
	for _, tc := range cases {
		_, err := DecodeResponses([]Command{Version{}}, tc.payload)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDecodeAbortsAtFirstFailure(t *testing.T) {
	testlog.Start(t)
	payload := []byte{7}
	payload = append(payload, 2, 0, 0, 0, 0xc3, 0)
	payload = binary.LittleEndian.AppendUint32(payload, 0)
	resps, err := DecodeResponses([]Command{Read8{}, UUID{}, Status{}}, payload)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if resps != nil {
		t.Fatalf("expected no partial responses, got %v", resps)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	testlog.Start(t)
	_, err := DecodeResponses([]Command{Read8{}}, []byte{1, 2})
	if !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestDecodeRequestRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	if _, err := DecodeRequest([]byte{9, 0, 0, 0, 0}); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if _, err := DecodeRequest([]byte{5, 0, 0, 0, 99}); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
	if _, err := DecodeRequest([]byte{7, 0, 0, 0, byte(OpRead32), 1, 2}); !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}

func TestEncodeResponsesStringForm(t *testing.T) {
	testlog.Start(t)
	got := EncodeResponses([]Response{GameVersionResponse{Version: "1.00"}, Read16Response{Value: 0x0102}})
	want := []byte{5, 0, 0, 0, '1', '.', '0', '0', 0, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Fatalf("encoded=%v want=%v", got, want)
	}
}
