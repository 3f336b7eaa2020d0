// Package pinetest runs an in-process emulator that speaks the PINE wire
// protocol, for client and bridge tests.
package pinetest

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/danmuck/pine/internal/protocol"
	"github.com/danmuck/pine/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

// Emulator holds sparse little-endian memory, game metadata and save slots.
type Emulator struct {
	mu sync.Mutex

	Title       string
	ID          string
	UUID        string
	GameVersion string
	Version     string
	StatusCode  uint32

	// Fail makes every batch containing the opcode answer with StatusFail.
	Fail map[protocol.Opcode]bool
	// FailPayload is written after a failure header, to exercise draining.
	FailPayload []byte

	memory   map[uint32]byte
	slots    map[uint8]map[uint32]byte
	requests [][]byte
}

func NewEmulator() *Emulator {
	return &Emulator{
		Title:       "Klonoa 2 - Lunatea's Veil",
		ID:          "SLUS-20151",
		UUID:        "8f9b4a3c",
		GameVersion: "1.00",
		Version:     "PCSX2 v1.7.5",
		StatusCode:  0,
		Fail:        map[protocol.Opcode]bool{},
		memory:      map[uint32]byte{},
		slots:       map[uint8]map[uint32]byte{},
	}
}

// Poke stores v little-endian at addr using width/8 bytes.
func (e *Emulator) Poke(addr uint32, width int, v uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store(addr, width, v)
}

// Peek loads width/8 bytes little-endian at addr.
func (e *Emulator) Peek(addr uint32, width int) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(addr, width)
}

// Requests returns a copy of every raw request handled so far.
func (e *Emulator) Requests() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *Emulator) store(addr uint32, width int, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	for i := 0; i < width/8; i++ {
		e.memory[addr+uint32(i)] = buf[i]
	}
}

func (e *Emulator) load(addr uint32, width int) uint64 {
	var buf [8]byte
	for i := 0; i < width/8; i++ {
		buf[i] = e.memory[addr+uint32(i)]
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Handle executes one request buffer and returns the status and payload to
// frame. Commands run in order; the first failure fails the whole batch.
func (e *Emulator) Handle(req []byte) (uint8, []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, append([]byte(nil), req...))

	cmds, err := protocol.DecodeRequest(req)
	if err != nil {
		log.Debug().Err(err).Msg("pinetest.emulator bad request")
		return frame.StatusFail, e.FailPayload
	}
	resps := make([]protocol.Response, 0, len(cmds))
	for _, cmd := range cmds {
		if e.Fail[cmd.Opcode()] {
			return frame.StatusFail, e.FailPayload
		}
		resp, ok := e.exec(cmd)
		if !ok {
			return frame.StatusFail, e.FailPayload
		}
		resps = append(resps, resp)
	}
	return frame.StatusOK, protocol.EncodeResponses(resps)
}

func (e *Emulator) exec(cmd protocol.Command) (protocol.Response, bool) {
	switch c := cmd.(type) {
	case protocol.Read8:
		return protocol.Read8Response{Value: uint8(e.load(c.Addr, 8))}, true
	case protocol.Read16:
		return protocol.Read16Response{Value: uint16(e.load(c.Addr, 16))}, true
	case protocol.Read32:
		return protocol.Read32Response{Value: uint32(e.load(c.Addr, 32))}, true
	case protocol.Read64:
		return protocol.Read64Response{Value: e.load(c.Addr, 64)}, true
	case protocol.Write8:
		e.store(c.Addr, 8, uint64(c.Value))
		return protocol.Write8Response{}, true
	case protocol.Write16:
		e.store(c.Addr, 16, uint64(c.Value))
		return protocol.Write16Response{}, true
	case protocol.Write32:
		e.store(c.Addr, 32, uint64(c.Value))
		return protocol.Write32Response{}, true
	case protocol.Write64:
		e.store(c.Addr, 64, c.Value)
		return protocol.Write64Response{}, true
	case protocol.Version:
		return protocol.VersionResponse{Version: e.Version}, true
	case protocol.SaveState:
		snap := make(map[uint32]byte, len(e.memory))
		for k, v := range e.memory {
			snap[k] = v
		}
		e.slots[c.Slot] = snap
		return protocol.SaveStateResponse{}, true
	case protocol.LoadState:
		snap, ok := e.slots[c.Slot]
		if !ok {
			return nil, false
		}
		e.memory = make(map[uint32]byte, len(snap))
		for k, v := range snap {
			e.memory[k] = v
		}
		return protocol.LoadStateResponse{}, true
	case protocol.Title:
		return protocol.TitleResponse{Title: e.Title}, true
	case protocol.ID:
		return protocol.IDResponse{ID: e.ID}, true
	case protocol.UUID:
		return protocol.UUIDResponse{UUID: e.UUID}, true
	case protocol.GameVersion:
		return protocol.GameVersionResponse{Version: e.GameVersion}, true
	case protocol.Status:
		return protocol.NewStatusResponse(e.StatusCode), true
	case protocol.Unimplemented:
		return protocol.UnimplementedResponse{}, true
	default:
		return nil, false
	}
}

// Serve answers requests on conn until the peer goes away.
func (e *Emulator) Serve(conn net.Conn) error {
	defer conn.Close()
	limits := frame.DefaultLimits()
	for {
		req, err := frame.ReadRequest(conn, limits)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
		status, payload := e.Handle(req)
		if err := frame.WriteResponse(conn, status, payload, limits); err != nil {
			return err
		}
	}
}

// Pipe serves e on one end of an in-memory pipe and returns the other end.
func (e *Emulator) Pipe(t testing.TB) net.Conn {
	t.Helper()
	client, server := net.Pipe()
	go func() { _ = e.Serve(server) }()
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Listen serves e on every connection accepted from ln until ln closes.
func (e *Emulator) Listen(t testing.TB, ln net.Listener) {
	t.Helper()
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() { _ = e.Serve(conn) }()
		}
	}()
}
