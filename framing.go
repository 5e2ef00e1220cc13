package schemawire

import "fmt"

// Serialise writes `[version byte] ++ bootstrap-encoded schema(a) ++
// value(a)` (§4.8). The version byte is always the package's current
// schema-language version; only readers need to accept older ones.
//
// Grounded on walker.go's top-level Walk, which likewise writes a schema
// blob ahead of the value bytes in one pass — generalized here from an
// inline WireType stream to the bootstrap-v3 Schema encoding.
func Serialise[T any](c Coder[T], v T) []byte {
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()

	buf.AppendUint8(CurrentVersion)
	EncodeSchema(c.Schema, buf)
	c.Encode(v, buf)

	out := make([]byte, len(buf.Bytes))
	copy(out, buf.Bytes)
	return out
}

// Deserialise reads back a value framed by Serialise (§4.8). If the
// embedded schema is structurally equal to c.Schema, it runs the Coder's
// native Decode directly (the fast path); otherwise it decodes a Term
// against the embedded schema and runs c.Extractor's plan over it
// (the evolution path).
func Deserialise[T any](c Coder[T], data []byte) (v T, err error) {
	if len(data) == 0 {
		return v, ErrEmptyInput
	}

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
	version := r.ReadByte()
	if _, known := bootstrapTable[version]; !known {
		return v, &UnknownSchemaVersionError{Version: version}
	}

	writerSchema, decErr := DecodeSchema(&r)
	if decErr != nil {
		return v, decErr
	}

	if writerSchema.Equal(c.Schema) {
		return c.Decode(&r), nil
	}

	plan, planErr := c.Extractor.Plan(writerSchema)
	if planErr != nil {
		return v, fmt.Errorf("schemawire: cannot reconcile writer schema with target type: %w", planErr)
	}

	term, termErr := DecodeTerm(writerSchema, &r)
	if termErr != nil {
		return v, termErr
	}

	return plan(term), nil
}
