// Package reply is the reply-serialization core of an in-memory data-store
// server speaking the Redis protocol (RESP2 and RESP3) and the classic
// memcached ASCII protocol.
//
// Given typed, already-computed result values, the builders produce
// protocol-correct byte sequences and write them to a per-connection sink
// with few write operations under pipelining: session-level batch mode
// coalesces replies across pipelined commands, and operation-scoped
// aggregate mode coalesces the element writes of one compound reply. Error
// replies and I/O volume are counted per connection for telemetry.
//
// The package also carries the outbound side: ReqSerializer encodes command
// invocations in the Redis multi-bulk form, and Client speaks it to
// downstream instances with per-endpoint pooling and circuit breaking.
//
// Builders are exclusively owned by one connection's serving goroutine and
// hold no locks; everything here is driven synchronously, call by call.
package reply
