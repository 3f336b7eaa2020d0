// Package protocol owns the PINE wire contract.
//
// Ownership boundary:
// - command/response model and opcode table
// - batch encoding (request side)
// - ordered response decoding (string + status rules)
// - request decoding and response encoding for in-process peers
//
// A request is one length-prefixed batch:
//
//	u32 total_len (LE, counts itself) | (u8 opcode, payload)*
//
// A response carries one result per command, in command order:
//
//	u32 total_len (LE) | u8 status | payload[total_len-5]
//
// Response framing lives in the frame subpackage.
package protocol
