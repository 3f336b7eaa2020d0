package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/danmuck/pine/internal/testutil/testlog"
)

func TestWriteReadResponseRoundTrip(t *testing.T) {
	testlog.Start(t)
	payload := []byte{0x2a, 0x00, 0x00, 0x00}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, StatusOK, payload, DefaultLimits()); err != nil {
		t.Fatalf("write response: %v", err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[0:4]); got != uint32(HeaderLen+len(payload)) {
		t.Fatalf("size field=%d", got)
	}
	out, err := ReadResponse(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !out.Header.OK() || !bytes.Equal(out.Payload, payload) {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestReadResponseHeaderOnlyIsEmptyPayload(t *testing.T) {
	testlog.Start(t)
	raw := EncodeHeader(Header{Size: HeaderLen, Status: StatusOK})
	out, err := ReadResponse(bytes.NewReader(raw), DefaultLimits())
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if out.Payload == nil || len(out.Payload) != 0 {
		t.Fatalf("expected empty non-nil payload, got %#v", out.Payload)
	}
}

func TestReadResponseFailureDrainsPayload(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteResponse(&buf, StatusFail, []byte{1, 2, 3}, DefaultLimits()); err != nil {
		t.Fatalf("write failure: %v", err)
	}
	if err := WriteResponse(&buf, StatusOK, []byte{9}, DefaultLimits()); err != nil {
		t.Fatalf("write ok: %v", err)
	}

	failed, err := ReadResponse(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read failure: %v", err)
	}
	if failed.Header.OK() || failed.Payload != nil {
		t.Fatalf("unexpected failure frame: %+v", failed)
	}
	next, err := ReadResponse(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read next: %v", err)
	}
	if !bytes.Equal(next.Payload, []byte{9}) {
		t.Fatalf("stream desynced after failure: %+v", next)
	}
}

func TestReadResponseMalformedHeaderIsDeterministic(t *testing.T) {
	testlog.Start(t)
	_, err := ReadResponse(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadResponseSizeSmallerThanHeader(t *testing.T) {
	testlog.Start(t)
	raw := []byte{4, 0, 0, 0, 0}
	_, err := ReadResponse(bytes.NewReader(raw), DefaultLimits())
	if !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestReadResponsePayloadLimit(t *testing.T) {
	testlog.Start(t)
	raw := EncodeHeader(Header{Size: 1024, Status: StatusOK})
	_, err := ReadResponse(bytes.NewReader(raw), Limits{MaxPayloadBytes: 16})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadRequest(t *testing.T) {
	testlog.Start(t)
	req := []byte{6, 0, 0, 0, 11, 15}
	got, err := ReadRequest(bytes.NewReader(req), DefaultLimits())
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if !bytes.Equal(got, req) {
		t.Fatalf("request mismatch: %v", got)
	}

	_, err = ReadRequest(bytes.NewReader([]byte{2, 0, 0, 0}), DefaultLimits())
	if !errors.Is(err, ErrRequestSizeSmall) {
		t.Fatalf("expected ErrRequestSizeSmall, got %v", err)
	}
	_, err = ReadRequest(bytes.NewReader([]byte{1, 0}), DefaultLimits())
	if !errors.Is(err, ErrShortRequest) {
		t.Fatalf("expected ErrShortRequest, got %v", err)
	}
}

func TestReadResponseFailedStatusIgnoresDeclaredSize(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name      string
		raw       []byte
		drainable bool
	}{
		{name: "zero size", raw: []byte{0, 0, 0, 0, 0xFF}, drainable: true},
		{name: "size below header", raw: []byte{4, 0, 0, 0, 0xFF}, drainable: true},
		{name: "max size", raw: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, drainable: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ReadResponse(bytes.NewReader(tc.raw), Limits{MaxPayloadBytes: 64})
			if resp.Header.OK() {
				t.Fatalf("expected failed header, got %+v", resp.Header)
			}
			if resp.Payload != nil {
				t.Fatalf("failed response carried payload: %v", resp.Payload)
			}
			if tc.drainable && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.drainable && !errors.Is(err, ErrUndrainable) {
				t.Fatalf("expected ErrUndrainable, got %v", err)
			}
		})
	}
}

func TestReadResponseFailedStatusTruncatedPayload(t *testing.T) {
	testlog.Start(t)
	raw := append(EncodeHeader(Header{Size: 12, Status: StatusFail}), 1, 2)
	resp, err := ReadResponse(bytes.NewReader(raw), DefaultLimits())
	if !errors.Is(err, ErrUndrainable) {
		t.Fatalf("expected ErrUndrainable, got %v", err)
	}
	if resp.Header.Status != StatusFail {
		t.Fatalf("header not returned: %+v", resp.Header)
	}
}
