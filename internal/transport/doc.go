// Package transport opens the byte stream a PINE client talks over.
//
// Two bindings exist: a Unix domain socket at
// <runtime-dir>/<target>.sock[.<slot>] and a TCP loopback socket on
// 127.0.0.1:<slot>. Dial picks one per host family, once, at connect time.
package transport
