package client_test

import (
	"context"
	"fmt"
	"net"

	"github.com/danmuck/pine/internal/client"
	"github.com/danmuck/pine/internal/protocol"
	"github.com/danmuck/pine/internal/testutil/pinetest"
	"github.com/danmuck/pine/internal/transport"
)

func Example() {
	emu := pinetest.NewEmulator()
	emu.Poke(0x003667DC, 32, 3566512)
	local, remote := net.Pipe()
	go func() { _ = emu.Serve(remote) }()

	// A real caller dials instead:
	// client.Dial(ctx, transport.Target{Name: "pcsx2", Slot: 28011, Auto: true}, client.DefaultConfig())
	c := client.New(transport.Wrap(local), client.DefaultConfig())
	defer c.Close()

	b := protocol.NewBatch(
		protocol.Title{},
		protocol.GameVersion{},
		protocol.Read32{Addr: 0x003667DC},
	)
	resps, err := c.Send(context.Background(), b)
	if err != nil {
		fmt.Println("send:", err)
		return
	}
	for _, r := range resps {
		fmt.Printf("%s %+v\n", r.Opcode(), r)
	}
	// Output:
	// title {Title:Klonoa 2 - Lunatea's Veil}
	// game_version {Version:1.00}
	// read32 {Value:3566512}
}
