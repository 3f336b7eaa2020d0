package client

import (
	"context"
	"fmt"

	"github.com/danmuck/pine/internal/protocol"
)

// Info is the emulator and game metadata gathered by one batch.
type Info struct {
	Version     string             `json:"version" yaml:"version"`
	Title       string             `json:"title" yaml:"title"`
	ID          string             `json:"id" yaml:"id"`
	UUID        string             `json:"uuid" yaml:"uuid"`
	GameVersion string             `json:"game_version" yaml:"game_version"`
	Status      protocol.EmuStatus `json:"-" yaml:"-"`
	StatusName  string             `json:"status" yaml:"status"`
}

// Info queries version, title, id, uuid, game version and status in a
// single round trip.
func (c *Client) Info(ctx context.Context) (Info, error) {
	b := protocol.NewBatch(
		protocol.Version{},
		protocol.Title{},
		protocol.ID{},
		protocol.UUID{},
		protocol.GameVersion{},
		protocol.Status{},
	)
	resps, err := c.Send(ctx, b)
	if err != nil {
		return Info{}, err
	}
	var info Info
	for _, r := range resps {
		switch v := r.(type) {
		case protocol.VersionResponse:
			info.Version = v.Version
		case protocol.TitleResponse:
			info.Title = v.Title
		case protocol.IDResponse:
			info.ID = v.ID
		case protocol.UUIDResponse:
			info.UUID = v.UUID
		case protocol.GameVersionResponse:
			info.GameVersion = v.Version
		case protocol.StatusResponse:
			info.Status = v.Status
		}
	}
	info.StatusName = info.Status.String()
	return info, nil
}

// ReadMemory reads width bits at addr.
func (c *Client) ReadMemory(ctx context.Context, width int, addr uint32) (uint64, error) {
	cmd, err := protocol.NewRead(width, addr)
	if err != nil {
		return 0, err
	}
	resps, err := c.Send(ctx, protocol.NewBatch(cmd))
	if err != nil {
		return 0, err
	}
	r, ok := resps[0].(interface{ Uint64() uint64 })
	if !ok {
		return 0, fmt.Errorf("client: unexpected response %T for %s", resps[0], cmd.Opcode())
	}
	return r.Uint64(), nil
}

// WriteMemory stores value at addr using width bits.
func (c *Client) WriteMemory(ctx context.Context, width int, addr uint32, value uint64) error {
	cmd, err := protocol.NewWrite(width, addr, value)
	if err != nil {
		return err
	}
	_, err = c.Send(ctx, protocol.NewBatch(cmd))
	return err
}

// SaveState saves emulator state into slot.
func (c *Client) SaveState(ctx context.Context, slot uint8) error {
	_, err := c.Send(ctx, protocol.NewBatch(protocol.SaveState{Slot: slot}))
	return err
}

// LoadState restores emulator state from slot.
func (c *Client) LoadState(ctx context.Context, slot uint8) error {
	_, err := c.Send(ctx, protocol.NewBatch(protocol.LoadState{Slot: slot}))
	return err
}
