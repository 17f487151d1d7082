// Package abi describes the exported symbol set of libffimath: names, scalar
// kinds, C prototypes and argument decoding. It also provides Local, a Backend
// that calls the Go implementation in-process, so the CLI, the conformance
// suite and the WebSocket server can treat the Go code and a loaded native
// library the same way.
package abi
