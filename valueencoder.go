package schemawire

import (
	"math/big"
	"time"
)

// Coder[T] bundles everything framing.go needs for one Go type T: its
// Schema, a direct encode/decode pair for the native fast path (§4.8), and
// an Extractor[T] for the planned path when the writer's schema differs
// structurally from T's own. Grounded on the teacher's paired
// Encoder[T]/Decoder[T] (encoder.go/decoder.go), merged into one value
// since here the schema travels with the data and both directions need it.
type Coder[T any] struct {
	Schema    Schema
	Encode    func(T, *Buffer)
	Decode    func(*Reader) T
	Extractor Extractor[T]
}

func CoderBool() Coder[bool] {
	return Coder[bool]{
		Schema:    SBool,
		Encode:    func(v bool, b *Buffer) { b.AppendBool(v) },
		Decode:    func(r *Reader) bool { return r.ReadBool() },
		Extractor: ExtractBool(),
	}
}

func CoderChar() Coder[rune] {
	return Coder[rune]{
		Schema:    SChar,
		Encode:    func(v rune, b *Buffer) { b.AppendChar(v) },
		Decode:    func(r *Reader) rune { return r.ReadChar() },
		Extractor: ExtractChar(),
	}
}

func CoderText() Coder[string] {
	return Coder[string]{
		Schema: SText,
		Encode: func(v string, b *Buffer) { b.AppendText(v) },
		Decode: func(r *Reader) string {
			s, err := r.ReadText()
			if err != nil {
				panic(err)
			}
			return s
		},
		Extractor: ExtractText(),
	}
}

func CoderBytes() Coder[[]byte] {
	return Coder[[]byte]{
		Schema:    SBytes,
		Encode:    func(v []byte, b *Buffer) { b.AppendBytes(v) },
		Decode:    func(r *Reader) []byte { return r.ReadBytes() },
		Extractor: ExtractBytes(),
	}
}

func CoderUTCTime() Coder[time.Time] {
	return Coder[time.Time]{
		Schema: SUTCTime,
		Encode: func(v time.Time, b *Buffer) { b.AppendUTCTime(float64(v.UnixNano()) / float64(time.Second)) },
		Decode: func(r *Reader) time.Time {
			secs := r.ReadUTCTime()
			return time.Unix(0, int64(secs*float64(time.Second))).UTC()
		},
		Extractor: ExtractUTCTime(),
	}
}

func CoderW8() Coder[uint8] {
	return Coder[uint8]{Schema: SW8, Encode: func(v uint8, b *Buffer) { b.AppendUint8(v) }, Decode: func(r *Reader) uint8 { return r.ReadUint8() }, Extractor: ExtractW8()}
}

func CoderW16() Coder[uint16] {
	return Coder[uint16]{Schema: SW16, Encode: func(v uint16, b *Buffer) { b.AppendUint16(v) }, Decode: func(r *Reader) uint16 { return r.ReadUint16() }, Extractor: ExtractW16()}
}

func CoderW32() Coder[uint32] {
	return Coder[uint32]{Schema: SW32, Encode: func(v uint32, b *Buffer) { b.AppendUint32(v) }, Decode: func(r *Reader) uint32 { return r.ReadUint32() }, Extractor: ExtractW32()}
}

func CoderW64() Coder[uint64] {
	return Coder[uint64]{Schema: SW64, Encode: func(v uint64, b *Buffer) { b.AppendUint64(v) }, Decode: func(r *Reader) uint64 { return r.ReadUint64() }, Extractor: ExtractW64()}
}

func CoderI8() Coder[int8] {
	return Coder[int8]{Schema: SI8, Encode: func(v int8, b *Buffer) { b.AppendInt8(v) }, Decode: func(r *Reader) int8 { return r.ReadInt8() }, Extractor: ExtractI8()}
}

func CoderI16() Coder[int16] {
	return Coder[int16]{Schema: SI16, Encode: func(v int16, b *Buffer) { b.AppendInt16(v) }, Decode: func(r *Reader) int16 { return r.ReadInt16() }, Extractor: ExtractI16()}
}

func CoderI32() Coder[int32] {
	return Coder[int32]{Schema: SI32, Encode: func(v int32, b *Buffer) { b.AppendInt32(v) }, Decode: func(r *Reader) int32 { return r.ReadInt32() }, Extractor: ExtractI32()}
}

func CoderI64() Coder[int64] {
	return Coder[int64]{Schema: SI64, Encode: func(v int64, b *Buffer) { b.AppendInt64(v) }, Decode: func(r *Reader) int64 { return r.ReadInt64() }, Extractor: ExtractI64()}
}

func CoderInteger() Coder[*big.Int] {
	return Coder[*big.Int]{
		Schema:    SInteger,
		Encode:    func(v *big.Int, b *Buffer) { b.AppendVarintBig(v) },
		Decode:    func(r *Reader) *big.Int { return r.ReadVarintBig() },
		Extractor: ExtractInteger(),
	}
}

func CoderFloat32() Coder[float32] {
	return Coder[float32]{Schema: SFloat, Encode: func(v float32, b *Buffer) { b.AppendFloat32(v) }, Decode: func(r *Reader) float32 { return r.ReadFloat32() }, Extractor: ExtractFloat32()}
}

func CoderFloat64() Coder[float64] {
	return Coder[float64]{Schema: SDouble, Encode: func(v float64, b *Buffer) { b.AppendFloat64(v) }, Decode: func(r *Reader) float64 { return r.ReadFloat64() }, Extractor: ExtractFloat64()}
}

// CoderSlice builds a Coder[[]T] over a Vector of the element Coder's schema.
func CoderSlice[T any](elem Coder[T]) Coder[[]T] {
	return Coder[[]T]{
		Schema: SVector{Element: elem.Schema},
		Encode: func(v []T, b *Buffer) {
			b.AppendVarint(uint64(len(v)))
			for _, e := range v {
				elem.Encode(e, b)
			}
		},
		Decode: func(r *Reader) []T {
			n := r.ReadVarint()
			out := make([]T, n)
			for i := range out {
				out[i] = elem.Decode(r)
			}
			return out
		},
		Extractor: ExtractSlice(elem.Extractor),
	}
}

// CoderMap builds a Coder[map[K]V] over a Vector of (K,V) products, reusing
// the Pair extractor for its planned path.
func CoderMap[K comparable, V any](key Coder[K], val Coder[V]) Coder[map[K]V] {
	pairSchema := SProduct{Fields: []Schema{key.Schema, val.Schema}}
	return Coder[map[K]V]{
		Schema: SVector{Element: pairSchema},
		Encode: func(m map[K]V, b *Buffer) {
			b.AppendVarint(uint64(len(m)))
			for k, v := range m {
				key.Encode(k, b)
				val.Encode(v, b)
			}
		},
		Decode: func(r *Reader) map[K]V {
			n := r.ReadVarint()
			out := make(map[K]V, n)
			for i := uint64(0); i < n; i++ {
				k := key.Decode(r)
				v := val.Decode(r)
				out[k] = v
			}
			return out
		},
		Extractor: ExtractMap(key.Extractor, val.Extractor),
	}
}

// CoderMaybe builds a Coder over Maybe[T], wired as a 2-constructor Variant
// ("Nothing", "Just"), tag 0 = none.
func CoderMaybe[T any](inner Coder[T]) Coder[Maybe[T]] {
	schema := SVariant{Constructors: []VariantConstructor{
		{Name: "Nothing", Schema: SProduct{}},
		{Name: "Just", Schema: inner.Schema},
	}}
	return Coder[Maybe[T]]{
		Schema: schema,
		Encode: func(v Maybe[T], b *Buffer) {
			if !v.Valid {
				b.AppendVarint(0)
				return
			}
			b.AppendVarint(1)
			inner.Encode(v.Value, b)
		},
		Decode: func(r *Reader) Maybe[T] {
			tag := r.ReadVarint()
			if tag == 0 {
				return Maybe[T]{}
			}
			return Maybe[T]{Valid: true, Value: inner.Decode(r)}
		},
		Extractor: ExtractMaybe(inner.Extractor),
	}
}
