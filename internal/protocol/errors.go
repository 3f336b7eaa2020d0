package protocol

import "errors"

var (
	ErrCommandFailed     = errors.New("protocol: command returned a non-zero status")
	ErrEmptyBatch        = errors.New("protocol: batch has no commands")
	ErrInvalidWidth      = errors.New("protocol: invalid memory width")
	ErrValueOverflow     = errors.New("protocol: value does not fit memory width")
	ErrUnknownOpcode     = errors.New("protocol: unknown opcode")
	ErrInvalidLength     = errors.New("protocol: invalid length")
	ErrShortPayload      = errors.New("protocol: short response payload")
	ErrTrailingBytes     = errors.New("protocol: trailing bytes after last response")
	ErrInvalidUTF8       = errors.New("protocol: invalid utf-8 in string field")
	ErrEmptyString       = errors.New("protocol: empty string field")
	ErrMissingTerminator = errors.New("protocol: string field missing null terminator")
)
