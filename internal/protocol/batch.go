package protocol

import "encoding/binary"

// lengthPrefix is the size of the leading u32 total-length field.
const lengthPrefix = 4

// Batch accumulates commands into one request buffer. The command list and
// the encoded bytes always grow together.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	buf      []byte
	commands []Command
}

// NewBatch returns a batch holding cmds in order.
func NewBatch(cmds ...Command) *Batch {
	b := &Batch{buf: make([]byte, lengthPrefix, 64)}
	for _, cmd := range cmds {
		b.Add(cmd)
	}
	return b
}

// Add appends cmd's opcode and little-endian payload.
func (b *Batch) Add(cmd Command) {
	if len(b.buf) < lengthPrefix {
		b.buf = append(b.buf[:0], 0, 0, 0, 0)
	}
	b.buf = append(b.buf, byte(cmd.Opcode()))
	b.buf = cmd.appendPayload(b.buf)
	b.commands = append(b.commands, cmd)
}

// Clear drops every command. The length placeholder is kept so the batch can
// be reused.
func (b *Batch) Clear() {
	b.buf = append(b.buf[:0], 0, 0, 0, 0)
	b.commands = b.commands[:0]
}

// Finalize writes the total length into bytes [0,4) and returns the wire
// buffer. The returned slice aliases the batch until the next Add or Clear.
func (b *Batch) Finalize() []byte {
	if len(b.buf) < lengthPrefix {
		b.buf = append(b.buf[:0], 0, 0, 0, 0)
	}
	binary.LittleEndian.PutUint32(b.buf[0:lengthPrefix], uint32(len(b.buf)))
	return b.buf
}

// Len returns the number of commands.
func (b *Batch) Len() int {
	return len(b.commands)
}

// Size returns the encoded size including the length prefix.
func (b *Batch) Size() int {
	return len(b.buf)
}

// Commands returns a copy of the ordered command list.
func (b *Batch) Commands() []Command {
	out := make([]Command, len(b.commands))
	copy(out, b.commands)
	return out
}
