package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Reader walks a response payload front to back. Reads never rewind.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.offset
}

func (r *Reader) need(n int) (int, error) {
	if n < 0 || r.Remaining() < n {
		return 0, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortPayload, n, r.offset, r.Remaining())
	}
	off := r.offset
	r.offset += n
	return off, nil
}

// ReadUint8 consumes one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	off, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return r.data[off], nil
}

// ReadUint16 consumes a little-endian u16.
func (r *Reader) ReadUint16() (uint16, error) {
	off, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

// ReadUint32 consumes a little-endian u32.
func (r *Reader) ReadUint32() (uint32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

// ReadUint64 consumes a little-endian u64.
func (r *Reader) ReadUint64() (uint64, error) {
	off, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[off:]), nil
}

// ReadString reads a u32 length, that many bytes of UTF-8, and strips the
// trailing null terminator. The terminator must be present.
func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", ErrEmptyString
	}
	off, err := r.need(int(length))
	if err != nil {
		return "", err
	}
	raw := r.data[off : off+int(length)]
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	if raw[len(raw)-1] != 0 {
		return "", ErrMissingTerminator
	}
	return string(raw[:len(raw)-1]), nil
}
