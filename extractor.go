package schemawire

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Extractor[T] is the planner's core type (§4.7): a function Schema ->
// (Term -> T), or a PlanError. Given a writer-supplied schema, Plan either
// produces a conversion from any schema-conformant Term to a T, or fails
// with a structured error — no decoding is attempted on failure.
//
// There is no teacher analogue (glint has a fixed wire shape, not a
// schema-evolution story); the shape here is taken directly from spec.md
// §4.7/§9, styled after the teacher's own Encoder[T]/Decoder[T] generic
// wrappers around an untyped impl.
type Extractor[T any] struct {
	Plan func(s Schema) (func(t Term) T, error)
}

// MapExtractor applies f to the result of an already-planned extractor
// (the functor `map` combinator). f runs once per decoded term, at decode
// time; planning happens once, at plan time.
func MapExtractor[A, B any](a Extractor[A], f func(A) B) Extractor[B] {
	return Extractor[B]{Plan: func(s Schema) (func(Term) B, error) {
		fa, err := a.Plan(s)
		if err != nil {
			return nil, err
		}
		return func(t Term) B { return f(fa(t)) }, nil
	}}
}

// PairExtractor plans two extractors against the same incoming schema and
// combines their results (the applicative `pair` combinator) — e.g.
// extracting two independent projections of one record.
func PairExtractor[A, B, C any](a Extractor[A], b Extractor[B], combine func(A, B) C) Extractor[C] {
	return Extractor[C]{Plan: func(s Schema) (func(Term) C, error) {
		fa, err := a.Plan(s)
		if err != nil {
			return nil, err
		}
		fb, err := b.Plan(s)
		if err != nil {
			return nil, err
		}
		return func(t Term) C { return combine(fa(t), fb(t)) }, nil
	}}
}

// OrExtractor tries a first; if a fails to plan, tries b. The choice is
// made once at plan time — once a plan succeeds, the resulting term
// function never re-dispatches (§4.7).
func OrExtractor[T any](a, b Extractor[T]) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		if fa, err := a.Plan(s); err == nil {
			return fa, nil
		}
		return b.Plan(s)
	}}
}

// ConstExtractor ignores the incoming schema entirely and always yields v —
// used as the `const d_i` fallback for a record field default (§4.7 step 2).
func ConstExtractor[T any](v T) Extractor[T] {
	return Extractor[T]{Plan: func(Schema) (func(Term) T, error) {
		return func(Term) T { return v }, nil
	}}
}

// --- primitive extractors (§4.7 "Built-in extractors") ---

func leafOf(s Schema) (leafSchema, bool) {
	l, ok := Untag(s).(leafSchema)
	return l, ok
}

// ExtractBool accepts exactly Bool.
func ExtractBool() Extractor[bool] {
	return Extractor[bool]{Plan: func(s Schema) (func(Term) bool, error) {
		if l, ok := leafOf(s); !ok || l != leafBool {
			return nil, SchemaMismatch("", "Bool", s)
		}
		return func(t Term) bool { return bool(t.(TBool)) }, nil
	}}
}

// ExtractChar accepts exactly Char.
func ExtractChar() Extractor[rune] {
	return Extractor[rune]{Plan: func(s Schema) (func(Term) rune, error) {
		if l, ok := leafOf(s); !ok || l != leafChar {
			return nil, SchemaMismatch("", "Char", s)
		}
		return func(t Term) rune { return rune(t.(TChar)) }, nil
	}}
}

// ExtractText accepts exactly Text.
func ExtractText() Extractor[string] {
	return Extractor[string]{Plan: func(s Schema) (func(Term) string, error) {
		if l, ok := leafOf(s); !ok || l != leafText {
			return nil, SchemaMismatch("", "Text", s)
		}
		return func(t Term) string { return string(t.(TText)) }, nil
	}}
}

// ExtractBytes accepts exactly Bytes.
func ExtractBytes() Extractor[[]byte] {
	return Extractor[[]byte]{Plan: func(s Schema) (func(Term) []byte, error) {
		if l, ok := leafOf(s); !ok || l != leafBytes {
			return nil, SchemaMismatch("", "Bytes", s)
		}
		return func(t Term) []byte { return []byte(t.(TBytes)) }, nil
	}}
}

// ExtractUTCTime accepts exactly UTCTime.
func ExtractUTCTime() Extractor[time.Time] {
	return Extractor[time.Time]{Plan: func(s Schema) (func(Term) time.Time, error) {
		if l, ok := leafOf(s); !ok || l != leafUTCTime {
			return nil, SchemaMismatch("", "UTCTime", s)
		}
		return func(t Term) time.Time {
			secs := float64(t.(TUTCTime))
			return time.Unix(0, int64(secs*float64(time.Second))).UTC()
		}, nil
	}}
}

// unsignedWidth orders the unsigned leaves narrowest-to-widest.
var unsignedWidth = map[leafSchema]int{leafW8: 1, leafW16: 2, leafW32: 3, leafW64: 4}
var signedWidth = map[leafSchema]int{leafI8: 1, leafI16: 2, leafI32: 3, leafI64: 4}

func readUnsigned(t Term) uint64 {
	switch v := t.(type) {
	case TW8:
		return uint64(v)
	case TW16:
		return uint64(v)
	case TW32:
		return uint64(v)
	case TW64:
		return uint64(v)
	}
	panic("schemawire: readUnsigned on non-unsigned term")
}

func readSigned(t Term) int64 {
	switch v := t.(type) {
	case TI8:
		return int64(v)
	case TI16:
		return int64(v)
	case TI32:
		return int64(v)
	case TI64:
		return int64(v)
	}
	panic("schemawire: readSigned on non-signed term")
}

// widenedUnsigned builds an extractor accepting any unsigned leaf no wider
// than maxWidth (narrower schemas widen; the reverse is a plan-time
// failure, per spec.md §9's "Unused/lossy conversions" note).
func widenedUnsigned[T ~uint8 | ~uint16 | ~uint32 | ~uint64](maxWidth int, convert func(uint64) T) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		l, ok := leafOf(s)
		w, known := unsignedWidth[l]
		if !ok || !known || w > maxWidth {
			return nil, SchemaMismatch("", "an unsigned integer no wider than the target", s)
		}
		return func(t Term) T { return convert(readUnsigned(t)) }, nil
	}}
}

func widenedSigned[T ~int8 | ~int16 | ~int32 | ~int64](maxWidth int, convert func(int64) T) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		l, ok := leafOf(s)
		w, known := signedWidth[l]
		if !ok || !known || w > maxWidth {
			return nil, SchemaMismatch("", "a signed integer no wider than the target", s)
		}
		return func(t Term) T { return convert(readSigned(t)) }, nil
	}}
}

func ExtractW8() Extractor[uint8]   { return widenedUnsigned[uint8](1, func(v uint64) uint8 { return uint8(v) }) }
func ExtractW16() Extractor[uint16] { return widenedUnsigned[uint16](2, func(v uint64) uint16 { return uint16(v) }) }
func ExtractW32() Extractor[uint32] { return widenedUnsigned[uint32](3, func(v uint64) uint32 { return uint32(v) }) }
func ExtractW64() Extractor[uint64] { return widenedUnsigned[uint64](4, func(v uint64) uint64 { return v }) }

func ExtractI8() Extractor[int8]   { return widenedSigned[int8](1, func(v int64) int8 { return int8(v) }) }
func ExtractI16() Extractor[int16] { return widenedSigned[int16](2, func(v int64) int16 { return int16(v) }) }
func ExtractI32() Extractor[int32] { return widenedSigned[int32](3, func(v int64) int32 { return int32(v) }) }
func ExtractI64() Extractor[int64] { return widenedSigned[int64](4, func(v int64) int64 { return v }) }

// ExtractInteger widens any bounded integer leaf (or the unbounded Integer
// leaf itself) into a *big.Int.
func ExtractInteger() Extractor[*big.Int] {
	return Extractor[*big.Int]{Plan: func(s Schema) (func(Term) *big.Int, error) {
		l, ok := leafOf(s)
		if !ok {
			return nil, SchemaMismatch("", "a numeric schema", s)
		}
		switch l {
		case leafInteger:
			return func(t Term) *big.Int { return t.(TInteger).Value }, nil
		case leafW8, leafW16, leafW32, leafW64:
			return func(t Term) *big.Int { return new(big.Int).SetUint64(readUnsigned(t)) }, nil
		case leafI8, leafI16, leafI32, leafI64:
			return func(t Term) *big.Int { return big.NewInt(readSigned(t)) }, nil
		}
		return nil, SchemaMismatch("", "a numeric schema", s)
	}}
}

// ExtractFloat32 accepts exactly Float (narrowing Double would be lossy).
func ExtractFloat32() Extractor[float32] {
	return Extractor[float32]{Plan: func(s Schema) (func(Term) float32, error) {
		if l, ok := leafOf(s); !ok || l != leafFloat {
			return nil, SchemaMismatch("", "Float", s)
		}
		return func(t Term) float32 { return float32(t.(TFloat)) }, nil
	}}
}

// ExtractFloat64 accepts Float or Double, widening Float to Double.
func ExtractFloat64() Extractor[float64] {
	return Extractor[float64]{Plan: func(s Schema) (func(Term) float64, error) {
		l, ok := leafOf(s)
		if !ok {
			return nil, SchemaMismatch("", "Float or Double", s)
		}
		switch l {
		case leafFloat:
			return func(t Term) float64 { return float64(t.(TFloat)) }, nil
		case leafDouble:
			return func(t Term) float64 { return float64(t.(TDouble)) }, nil
		}
		return nil, SchemaMismatch("", "Float or Double", s)
	}}
}

// ExtractScientific accepts any numeric schema, widening through the
// appropriate primitive path into an arbitrary-precision decimal.Decimal.
func ExtractScientific() Extractor[decimal.Decimal] {
	return Extractor[decimal.Decimal]{Plan: func(s Schema) (func(Term) decimal.Decimal, error) {
		l, ok := leafOf(s)
		if !ok {
			return nil, SchemaMismatch("", "a numeric schema", s)
		}
		switch l {
		case leafW8, leafW16, leafW32, leafW64:
			return func(t Term) decimal.Decimal { return decimal.NewFromBigInt(new(big.Int).SetUint64(readUnsigned(t)), 0) }, nil
		case leafI8, leafI16, leafI32, leafI64:
			return func(t Term) decimal.Decimal { return decimal.NewFromInt(readSigned(t)) }, nil
		case leafInteger:
			return func(t Term) decimal.Decimal { return decimal.NewFromBigInt(t.(TInteger).Value, 0) }, nil
		case leafFloat:
			return func(t Term) decimal.Decimal { return decimal.NewFromFloat32(float32(t.(TFloat))) }, nil
		case leafDouble:
			return func(t Term) decimal.Decimal { return decimal.NewFromFloat(float64(t.(TDouble))) }, nil
		}
		return nil, SchemaMismatch("", "a numeric schema", s)
	}}
}

// --- containers ---

// ExtractSlice accepts Vector(s) and maps the element extractor.
func ExtractSlice[T any](elem Extractor[T]) Extractor[[]T] {
	return Extractor[[]T]{Plan: func(s Schema) (func(Term) []T, error) {
		v, ok := Untag(s).(SVector)
		if !ok {
			return nil, SchemaMismatch("", "Vector", s)
		}
		fe, err := elem.Plan(v.Element)
		if err != nil {
			return nil, wrapPath("[]", err)
		}
		return func(t Term) []T {
			tv := t.(TVector)
			out := make([]T, len(tv.Elements))
			for i, e := range tv.Elements {
				out[i] = fe(e)
			}
			return out
		}, nil
	}}
}

// Pair is a lightweight 2-tuple, used both by ExtractPair and by
// ExtractMap/ExtractSet's reuse of the Vec<(K,V)>/Vec<K> extractor.
type Pair[A, B any] struct {
	First  A
	Second B
}

// ExtractPair accepts Product of exactly 2, planning each positionally.
func ExtractPair[A, B any](a Extractor[A], b Extractor[B]) Extractor[Pair[A, B]] {
	return Extractor[Pair[A, B]]{Plan: func(s Schema) (func(Term) Pair[A, B], error) {
		p, ok := Untag(s).(SProduct)
		if !ok || len(p.Fields) != 2 {
			return nil, SchemaMismatch("", "Product of arity 2", s)
		}
		fa, err := a.Plan(p.Fields[0])
		if err != nil {
			return nil, wrapPath(".0", err)
		}
		fb, err := b.Plan(p.Fields[1])
		if err != nil {
			return nil, wrapPath(".1", err)
		}
		return func(t Term) Pair[A, B] {
			tp := t.(TProduct)
			return Pair[A, B]{First: fa(tp.Elements[0]), Second: fb(tp.Elements[1])}
		}, nil
	}}
}

// Triple is a lightweight 3-tuple.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// ExtractTriple accepts Product of exactly 3, planning each positionally.
func ExtractTriple[A, B, C any](a Extractor[A], b Extractor[B], c Extractor[C]) Extractor[Triple[A, B, C]] {
	return Extractor[Triple[A, B, C]]{Plan: func(s Schema) (func(Term) Triple[A, B, C], error) {
		p, ok := Untag(s).(SProduct)
		if !ok || len(p.Fields) != 3 {
			return nil, SchemaMismatch("", "Product of arity 3", s)
		}
		fa, err := a.Plan(p.Fields[0])
		if err != nil {
			return nil, wrapPath(".0", err)
		}
		fb, err := b.Plan(p.Fields[1])
		if err != nil {
			return nil, wrapPath(".1", err)
		}
		fc, err := c.Plan(p.Fields[2])
		if err != nil {
			return nil, wrapPath(".2", err)
		}
		return func(t Term) Triple[A, B, C] {
			tp := t.(TProduct)
			return Triple[A, B, C]{First: fa(tp.Elements[0]), Second: fb(tp.Elements[1]), Third: fc(tp.Elements[2])}
		}, nil
	}}
}

// Quad is a lightweight 4-tuple.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// ExtractQuad accepts Product of exactly 4, planning each positionally.
func ExtractQuad[A, B, C, D any](a Extractor[A], b Extractor[B], c Extractor[C], d Extractor[D]) Extractor[Quad[A, B, C, D]] {
	return Extractor[Quad[A, B, C, D]]{Plan: func(s Schema) (func(Term) Quad[A, B, C, D], error) {
		p, ok := Untag(s).(SProduct)
		if !ok || len(p.Fields) != 4 {
			return nil, SchemaMismatch("", "Product of arity 4", s)
		}
		fa, err := a.Plan(p.Fields[0])
		if err != nil {
			return nil, wrapPath(".0", err)
		}
		fb, err := b.Plan(p.Fields[1])
		if err != nil {
			return nil, wrapPath(".1", err)
		}
		fc, err := c.Plan(p.Fields[2])
		if err != nil {
			return nil, wrapPath(".2", err)
		}
		fd, err := d.Plan(p.Fields[3])
		if err != nil {
			return nil, wrapPath(".3", err)
		}
		return func(t Term) Quad[A, B, C, D] {
			tp := t.(TProduct)
			return Quad[A, B, C, D]{First: fa(tp.Elements[0]), Second: fb(tp.Elements[1]), Third: fc(tp.Elements[2]), Fourth: fd(tp.Elements[3])}
		}, nil
	}}
}

// ExtractMap reuses the Vec<(K,V)> extractor and post-converts into a Go map.
func ExtractMap[K comparable, V any](k Extractor[K], v Extractor[V]) Extractor[map[K]V] {
	pairs := ExtractSlice(ExtractPair(k, v))
	return MapExtractor(pairs, func(ps []Pair[K, V]) map[K]V {
		m := make(map[K]V, len(ps))
		for _, p := range ps {
			m[p.First] = p.Second
		}
		return m
	})
}

// ExtractSet reuses the Vec<T> extractor and post-converts into a Go set
// (a map[T]struct{}).
func ExtractSet[T comparable](elem Extractor[T]) Extractor[map[T]struct{}] {
	items := ExtractSlice(elem)
	return MapExtractor(items, func(xs []T) map[T]struct{} {
		m := make(map[T]struct{}, len(xs))
		for _, x := range xs {
			m[x] = struct{}{}
		}
		return m
	})
}

// Maybe is the host type for spec.md's `Maybe<T>`: a Variant of exactly two
// constructors, index 0 = none, any other index = some.
type Maybe[T any] struct {
	Valid bool
	Value T
}

// ExtractMaybe accepts a Variant of exactly two constructors.
func ExtractMaybe[T any](inner Extractor[T]) Extractor[Maybe[T]] {
	return Extractor[Maybe[T]]{Plan: func(s Schema) (func(Term) Maybe[T], error) {
		v, ok := Untag(s).(SVariant)
		if !ok || len(v.Constructors) != 2 {
			return nil, SchemaMismatch("", "Variant of arity 2", s)
		}
		fv, err := inner.Plan(v.Constructors[1].Schema)
		if err != nil {
			return nil, wrapPath("Just", err)
		}
		return func(t Term) Maybe[T] {
			tv := t.(TVariant)
			if tv.Tag == 0 {
				return Maybe[T]{}
			}
			return Maybe[T]{Valid: true, Value: fv(tv.Payload)}
		}, nil
	}}
}

// Either is the host type for spec.md's `Either<A,B>`.
type Either[A, B any] struct {
	IsRight bool
	Left    A
	Right   B
}

// ExtractEither accepts a Variant of exactly two constructors, dispatching
// by index (0 = Left, 1 = Right).
func ExtractEither[A, B any](a Extractor[A], b Extractor[B]) Extractor[Either[A, B]] {
	return Extractor[Either[A, B]]{Plan: func(s Schema) (func(Term) Either[A, B], error) {
		v, ok := Untag(s).(SVariant)
		if !ok || len(v.Constructors) != 2 {
			return nil, SchemaMismatch("", "Variant of arity 2", s)
		}
		fa, err := a.Plan(v.Constructors[0].Schema)
		if err != nil {
			return nil, wrapPath("Left", err)
		}
		fb, err := b.Plan(v.Constructors[1].Schema)
		if err != nil {
			return nil, wrapPath("Right", err)
		}
		return func(t Term) Either[A, B] {
			tv := t.(TVariant)
			if tv.Tag == 0 {
				return Either[A, B]{Left: fa(tv.Payload)}
			}
			return Either[A, B]{IsRight: true, Right: fb(tv.Payload)}
		}, nil
	}}
}

// ExtractUnit accepts Product of exactly zero fields, the empty payload
// carried by nullary variant constructors (Maybe's None, a tree's Leaf).
func ExtractUnit() Extractor[struct{}] {
	return Extractor[struct{}]{Plan: func(s Schema) (func(Term) struct{}, error) {
		p, ok := Untag(s).(SProduct)
		if !ok || len(p.Fields) != 0 {
			return nil, SchemaMismatch("", "Product of arity 0", s)
		}
		return func(Term) struct{} { return struct{}{} }, nil
	}}
}

// VariantCase pairs a target constructor name with the plan for the common
// result type T built from that constructor's payload.
type VariantCase[T any] struct {
	Name string
	Plan func(Schema) (func(Term) T, error)
}

// VariantCaseOf adapts a payload Extractor[P] and a build function P->T into
// a VariantCase[T] — the usual way to build a case when T is a Go interface
// (or a discriminated struct) and each alternative wraps its own payload.
func VariantCaseOf[T, P any](name string, payload Extractor[P], build func(P) T) VariantCase[T] {
	return VariantCase[T]{Name: name, Plan: func(s Schema) (func(Term) T, error) {
		fn, err := payload.Plan(s)
		if err != nil {
			return nil, err
		}
		return func(t Term) T { return build(fn(t)) }, nil
	}}
}

// ExtractVariant builds the general N-ary Variant extractor (§4.7 "Variant
// extractor"), the sum-type counterpart to the record extractor below: for
// each incoming (name, sch) constructor, in declared order, find the
// matching case by name and plan its payload extractor against sch,
// collecting the results into a decode-time table indexed by incoming tag.
// An incoming constructor name absent from `cases` fails planning (no
// silent drop); a case present in `cases` but absent from the incoming
// schema is legal — only a subset of the target's constructors is
// required (§8 property 6).
func ExtractVariant[T any](cases ...VariantCase[T]) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		v, ok := Untag(s).(SVariant)
		if !ok {
			return nil, SchemaMismatch("", "Variant", s)
		}
		byName := make(map[string]VariantCase[T], len(cases))
		for _, c := range cases {
			byName[c.Name] = c
		}
		plans := make([]func(Term) T, len(v.Constructors))
		for i, ctor := range v.Constructors {
			c, ok := byName[ctor.Name]
			if !ok {
				return nil, MissingConstructor("", ctor.Name)
			}
			fn, err := c.Plan(ctor.Schema)
			if err != nil {
				return nil, wrapPath(ctor.Name, err)
			}
			plans[i] = fn
		}
		return func(t Term) T {
			tv := t.(TVariant)
			return plans[tv.Tag](tv.Payload)
		}, nil
	}}
}

// FixExtractor builds a recursive Extractor[T] for a schema of the shape
// Fix(body). `build` receives `self`, a placeholder Extractor[T] standing
// for the not-yet-completed extractor, and returns the Extractor[T] to plan
// against the Fix's body; any Self(n) reached while planning that body
// resolves through `self`. This is the tie-knot described in spec.md
// §4.7/§9, with the placeholder a plain typed func(Term) T rather than a
// type-erased Dyn carrier, specialized to the common case of one Fix
// level per recursive type (the shape every schema in this package
// produces — see bootstrap.go and derive.go's per-struct SFix wrapping):
// `self`'s own Plan doesn't re-dispatch on the schema it's given beyond
// checking it is a Self, so nested Fix/Self pairs more than one level deep
// are out of scope for this combinator (derive.go's reflect-type-keyed
// cells handle that case for derived structs instead).
func FixExtractor[T any](build func(self Extractor[T]) Extractor[T]) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		fix, ok := Untag(s).(SFix)
		if !ok {
			return nil, SchemaMismatch("", "Fix", s)
		}

		var cell func(Term) T
		self := Extractor[T]{Plan: func(selfSchema Schema) (func(Term) T, error) {
			if _, ok := Untag(selfSchema).(SSelf); !ok {
				return nil, SchemaMismatch("", "Self", selfSchema)
			}
			return func(t Term) T { return cell(t) }, nil
		}}

		fn, err := build(self).Plan(fix.Body)
		if err != nil {
			return nil, err
		}
		cell = fn
		return fn, nil
	}}
}

// --- field/constructor helpers (§4.7, last paragraph): open-coded,
// single-purpose extractors for hand-built backward compatibility, used
// independently of the full record/variant derivation in derive.go.

// ExtractField accepts a Record containing a field named `name`, extracted
// via `inner`; any other field in the record is ignored. Fails MissingField
// if the name isn't present — there's no default here, and the record
// extractor derive.go builds has none either.
func ExtractField[T any](name string, inner Extractor[T]) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		rec, ok := Untag(s).(SRecord)
		if !ok {
			return nil, SchemaMismatch("", "Record", s)
		}
		idx := -1
		for i, f := range rec.Fields {
			if f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, MissingField("", name)
		}
		fv, err := inner.Plan(rec.Fields[idx].Schema)
		if err != nil {
			return nil, wrapPath(name, err)
		}
		return func(t Term) T { return fv(t.(TRecord).Fields[idx].Value) }, nil
	}}
}

// ExtractConstructor accepts a Variant and returns Some(v) iff the decoded
// term's tag corresponds to the named constructor, else None. Unlike a
// full variant extractor, it is legal for `name` to be entirely absent from
// the incoming schema (the term will then simply never match it).
func ExtractConstructor[T any](name string, inner Extractor[T]) Extractor[Maybe[T]] {
	return Extractor[Maybe[T]]{Plan: func(s Schema) (func(Term) Maybe[T], error) {
		v, ok := Untag(s).(SVariant)
		if !ok {
			return nil, SchemaMismatch("", "Variant", s)
		}
		idx := -1
		for i, c := range v.Constructors {
			if c.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return func(Term) Maybe[T] { return Maybe[T]{} }, nil
		}
		fv, err := inner.Plan(v.Constructors[idx].Schema)
		if err != nil {
			return nil, wrapPath(name, err)
		}
		return func(t Term) Maybe[T] {
			tv := t.(TVariant)
			if int(tv.Tag) != idx {
				return Maybe[T]{}
			}
			return Maybe[T]{Valid: true, Value: fv(tv.Payload)}
		}, nil
	}}
}
