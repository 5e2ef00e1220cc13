package schemawire

import "hash/crc32"

// Digest computes a structural CRC32 checksum of a Schema over its
// bootstrap-v3 byte encoding (EncodeSchema), for transports that want to
// agree on a schema out of band and elide SCHEMA_BYTES on the wire.
// Grounded in the teacher's embedded schema checksum (encoder.go) and its
// Trustee/HTTPTrustee opt-in trust mechanism (buffer.go): there, a CRC32
// lets a decoder skip re-reading a schema it already trusts; here the same
// idea is exposed as a pair of explicit schemaless codec functions rather
// than woven into Serialise/Deserialise, so the normative framing in §4.8
// is never silently altered.
func Digest(s Schema) uint32 {
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	EncodeSchema(s, buf)
	return crc32.ChecksumIEEE(buf.Bytes)
}

// EncodeSchemaless writes only `value(a)` bytes, omitting the version byte
// and the schema entirely. The caller is responsible for ensuring the
// eventual reader already has (or can obtain) the exact same Schema,
// typically by having negotiated it out of band and compared Digest values.
func EncodeSchemaless[T any](c Coder[T], v T) []byte {
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	c.Encode(v, buf)
	out := make([]byte, len(buf.Bytes))
	copy(out, buf.Bytes)
	return out
}

// DecodeSchemaless reads `value(a)` bytes written by EncodeSchemaless,
// given the externally-agreed Schema (passed as the Coder's own Schema —
// callers that only have a bare Schema value, not a Coder, should go
// through DecodeTerm directly instead).
func DecodeSchemaless[T any](c Coder[T], data []byte) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()
	r := NewReader(data)
	return c.Decode(&r), nil
}
