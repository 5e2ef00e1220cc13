package schemawire

import (
	"encoding/binary"
	"math"
	"math/big"
	"sync"
)

// Buffer accumulates encoded wire bytes during serialization. Supports only
// append operations, mirroring the teacher's append-only accumulator.
type Buffer struct {
	Bytes []byte
}

// Reset clears the buffer contents but preserves allocated memory.
func (b *Buffer) Reset() {
	b.Bytes = b.Bytes[:0]
}

var bufpool = sync.Pool{
	New: func() any { return &Buffer{} },
}

// NewBufferFromPool obtains a reset Buffer from the pool. Call ReturnToPool
// when finished. Pooling is optional: `buf := &Buffer{mySlice[:0]}` works too.
func NewBufferFromPool() *Buffer {
	b := bufpool.Get().(*Buffer)
	b.Reset()
	return b
}

// NewBufferFromPoolWithCap acquires a pooled Buffer with guaranteed capacity.
// Call ReturnToPool after use.
func NewBufferFromPoolWithCap(size int) *Buffer {
	b := bufpool.Get().(*Buffer)

	if c := cap(b.Bytes); c < size {
		b.Bytes = make([]byte, 0, size)
	} else if c > 0 {
		b.Reset()
	}

	return b
}

// ReturnToPool releases the buffer back to the pool. Using the buffer after
// this call results in undefined behavior.
func (b *Buffer) ReturnToPool() {
	bufpool.Put(b)
}

// --- varint (§4.1): 7-bit LEB128-like groups, continuation bit in the high bit.

// AppendVarint encodes an unsigned integer of any width using the varint
// codec. Used for Vector/Text/Bytes lengths, Variant tags, and Char scalars.
func (b *Buffer) AppendVarint(value uint64) {
	b.Bytes = appendVarintBytes(b.Bytes, value)
}

func appendVarintBytes(b []byte, value uint64) []byte {
	for value >= 0x80 {
		b = append(b, byte(value&0x7F)|0x80)
		value >>= 7
	}
	return append(b, byte(value))
}

// AppendVarintBig encodes an arbitrary-precision non-negative integer using
// the same 7-bit grouping, for the unbounded Integer schema. Negative values
// are rejected by the caller (Integer uses two's-complement-free varint, so
// callers encode sign separately if they need signed bignums).
func (b *Buffer) AppendVarintBig(value *big.Int) {
	v := new(big.Int).Set(value)
	mask := big.NewInt(0x7F)
	for v.Cmp(big.NewInt(0x80)) >= 0 {
		group := new(big.Int).And(v, mask)
		b.Bytes = append(b.Bytes, byte(group.Uint64())|0x80)
		v.Rsh(v, 7)
	}
	b.Bytes = append(b.Bytes, byte(v.Uint64()))
}

// --- fixed-width primitives (§4.2): raw little-endian bytes, no varint.

// AppendUint8 writes a single byte.
func (b *Buffer) AppendUint8(value uint8) {
	b.Bytes = append(b.Bytes, value)
}

// AppendUint16 writes 2 little-endian bytes.
func (b *Buffer) AppendUint16(value uint16) {
	b.Bytes = binary.LittleEndian.AppendUint16(b.Bytes, value)
}

// AppendUint32 writes 4 little-endian bytes.
func (b *Buffer) AppendUint32(value uint32) {
	b.Bytes = binary.LittleEndian.AppendUint32(b.Bytes, value)
}

// AppendUint64 writes 8 little-endian bytes.
func (b *Buffer) AppendUint64(value uint64) {
	b.Bytes = binary.LittleEndian.AppendUint64(b.Bytes, value)
}

// AppendInt8 writes a signed byte by bit-casting through uint8.
func (b *Buffer) AppendInt8(value int8) {
	b.AppendUint8(uint8(value))
}

// AppendInt16 writes a signed int16 by bit-casting through uint16 (two's
// complement preserved, not zigzagged — see spec.md §4.1).
func (b *Buffer) AppendInt16(value int16) {
	b.AppendUint16(uint16(value))
}

// AppendInt32 writes a signed int32 by bit-casting through uint32.
func (b *Buffer) AppendInt32(value int32) {
	b.AppendUint32(uint32(value))
}

// AppendInt64 writes a signed int64 by bit-casting through uint64.
func (b *Buffer) AppendInt64(value int64) {
	b.AppendUint64(uint64(value))
}

// AppendFloat32 writes a 32-bit IEEE-754 float as 4 little-endian bytes.
func (b *Buffer) AppendFloat32(value float32) {
	b.AppendUint32(math.Float32bits(value))
}

// AppendFloat64 writes a 64-bit IEEE-754 double as 8 little-endian bytes.
func (b *Buffer) AppendFloat64(value float64) {
	b.AppendUint64(math.Float64bits(value))
}

// AppendBool writes a single byte: 1 for true, 0 for false.
func (b *Buffer) AppendBool(value bool) {
	if value {
		b.Bytes = append(b.Bytes, 1)
		return
	}
	b.Bytes = append(b.Bytes, 0)
}

// AppendChar encodes a Unicode scalar value as a varint.
func (b *Buffer) AppendChar(value rune) {
	b.AppendVarint(uint64(value))
}

// AppendUTCTime encodes seconds-since-epoch as a 64-bit IEEE-754 double.
func (b *Buffer) AppendUTCTime(secondsSinceEpoch float64) {
	b.AppendFloat64(secondsSinceEpoch)
}

// AppendText encodes a string as varint UTF-8-byte-length followed by the
// UTF-8 bytes. Callers are expected to only ever hand it valid UTF-8 (Go
// strings originating from string literals/valid decodes always are); we
// don't re-validate on encode, only on decode, per spec.md §4.2.
func (b *Buffer) AppendText(value string) {
	b.AppendVarint(uint64(len(value)))
	b.Bytes = append(b.Bytes, value...)
}

// AppendBytes encodes a byte slice as varint length followed by raw bytes.
func (b *Buffer) AppendBytes(value []byte) {
	b.AppendVarint(uint64(len(value)))
	b.Bytes = append(b.Bytes, value...)
}
