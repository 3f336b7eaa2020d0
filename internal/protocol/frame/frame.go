package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderLen is the response header: u32 total size + u8 status.
	HeaderLen = 5
	// RequestPrefixLen is the u32 total size that starts every request.
	RequestPrefixLen = 4

	StatusOK   uint8 = 0x00
	StatusFail uint8 = 0xFF
)

var (
	ErrShortHeader      = errors.New("frame: short response header")
	ErrInvalidSize      = errors.New("frame: declared size smaller than header")
	ErrPayloadTooLarge  = errors.New("frame: payload too large")
	ErrUndrainable      = errors.New("frame: failed response payload cannot be drained")
	ErrShortRequest     = errors.New("frame: short request prefix")
	ErrRequestTooLarge  = errors.New("frame: request too large")
	ErrRequestSizeSmall = errors.New("frame: declared request size smaller than prefix")
)

// Header is the fixed response header.
type Header struct {
	Size   uint32
	Status uint8
}

// PayloadLen returns the number of payload bytes that follow the header.
func (h Header) PayloadLen() int {
	return int(h.Size) - HeaderLen
}

// OK reports whether the status byte signals success.
func (h Header) OK() bool {
	return h.Status == StatusOK
}

// Response is one complete wire response.
type Response struct {
	Header  Header
	Payload []byte
}

// Limits constrains decode memory use.
type Limits struct {
	MaxPayloadBytes uint32
	MaxRequestBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 8 * 1024 * 1024,
		MaxRequestBytes: 8 * 1024 * 1024,
	}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint32(buf[0:4], h.Size)
	buf[4] = h.Status
	return buf
}

// ReadResponse reads one framed response. The status byte is checked before
// the declared size. On a non-OK status the declared payload is drained and
// discarded so the stream stays aligned on the next frame; the returned
// Response then has a nil Payload. A failed frame whose payload cannot be
// drained returns its Header together with ErrUndrainable.
func ReadResponse(r io.Reader, limits Limits) (Response, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Response{}, fmt.Errorf("%w: %v", ErrShortHeader, err)
		}
		return Response{}, err
	}
	h := Header{
		Size:   binary.LittleEndian.Uint32(fixed[0:4]),
		Status: fixed[4],
	}

	if !h.OK() {
		return Response{Header: h}, drainFailed(r, h, limits)
	}

	if h.Size < HeaderLen {
		return Response{}, ErrInvalidSize
	}
	if h.Size-HeaderLen > limits.MaxPayloadBytes {
		return Response{}, ErrPayloadTooLarge
	}
	payload := make([]byte, h.PayloadLen())
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Response{}, err
		}
	}
	return Response{Header: h, Payload: payload}, nil
}

// drainFailed skips the payload of a failed response. A size below the
// header declares nothing further on the wire.
func drainFailed(r io.Reader, h Header, limits Limits) error {
	if h.Size <= HeaderLen {
		return nil
	}
	n := h.Size - HeaderLen
	if n > limits.MaxPayloadBytes {
		return fmt.Errorf("%w: %d bytes", ErrUndrainable, n)
	}
	if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
		return fmt.Errorf("%w: %v", ErrUndrainable, err)
	}
	return nil
}

// WriteResponse frames payload with its size and status.
func WriteResponse(w io.Writer, status uint8, payload []byte, limits Limits) error {
	if uint64(len(payload)) > uint64(limits.MaxPayloadBytes) {
		return ErrPayloadTooLarge
	}
	h := Header{Size: uint32(HeaderLen + len(payload)), Status: status}
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadRequest reads one length-prefixed request and returns the whole
// buffer, prefix included. io.EOF is returned untouched when r ends cleanly
// between requests.
func ReadRequest(r io.Reader, limits Limits) ([]byte, error) {
	var prefix [RequestPrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortRequest
		}
		return nil, err
	}
	size := binary.LittleEndian.Uint32(prefix[:])
	if size < RequestPrefixLen {
		return nil, ErrRequestSizeSmall
	}
	if size > limits.MaxRequestBytes {
		return nil, ErrRequestTooLarge
	}
	buf := make([]byte, size)
	copy(buf, prefix[:])
	if _, err := io.ReadFull(r, buf[RequestPrefixLen:]); err != nil {
		return nil, err
	}
	return buf, nil
}
