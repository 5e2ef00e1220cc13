package schemawire

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Generic derivation surface (§4.10, expanded from spec.md §9's three-
// function contract: SchemaOf() Schema, an Encoder func(T, *Buffer), and
// an Extractor[T]). Grounded in encoder.go's buildStruct/parseTag/
// tagOptions and glint.go's reflectKindToAssigner/ReflectKindToWireType:
// the same "walk a reflect.Type once, cache what you learn, drive
// reflect.Value at encode/decode time" shape, generalized from a fixed
// wire layout to a Schema value. Struct tag is `schemawire:"name"`
// (renamed from the teacher's `glint:"name"`, same parsing rules).
//
// A struct field tagged `schemawire:"-"` is skipped entirely. A field with
// no tag uses its Go name verbatim (not lower-cased: Record field names
// are free text, not Go identifiers, so no case convention is imposed).

type fieldTag struct {
	name string
	skip bool
}

func parseFieldTag(f reflect.StructField) fieldTag {
	raw, ok := f.Tag.Lookup("schemawire")
	if !ok {
		return fieldTag{name: f.Name}
	}
	parts := strings.Split(raw, ",")
	name := parts[0]
	if name == "-" {
		return fieldTag{skip: true}
	}
	if name == "" {
		name = f.Name
	}
	return fieldTag{name: name}
}

// derivationState is shared across one top-level DeriveSchema/DeriveEncoder/
// DeriveExtractor call: a schema cache (so repeated field types aren't
// re-walked) and a Fix-binding stack (so recursive struct graphs resolve
// to Self instead of looping forever).
type derivationState struct {
	schemaCache map[reflect.Type]Schema
	fixStack    []reflect.Type
	cellsMu     sync.Mutex // guards the extractorFor/structExtractor `cells` map across goroutines
}

var globalSchemaCache sync.Map // reflect.Type -> Schema, across calls

// schemaOfType derives a Schema for a reflect.Type, wrapping every struct
// type in an SFix so self-references (direct or through a pointer/slice)
// resolve to SSelf, whether or not the type turns out to actually recurse.
func (d *derivationState) schemaOfType(t reflect.Type) Schema {
	if cached, ok := globalSchemaCache.Load(t); ok {
		return cached.(Schema)
	}
	if s, ok := d.schemaCache[t]; ok {
		return s
	}

	for i, seen := range d.fixStack {
		if seen == t {
			return SSelf{N: byte(len(d.fixStack) - 1 - i)}
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return SBool
	case reflect.String:
		return SText
	case reflect.Int8:
		return SI8
	case reflect.Int16:
		return SI16
	case reflect.Int32:
		return SI32
	case reflect.Int64, reflect.Int:
		return SI64
	case reflect.Uint8:
		return SW8
	case reflect.Uint16:
		return SW16
	case reflect.Uint32:
		return SW32
	case reflect.Uint64, reflect.Uint:
		return SW64
	case reflect.Float32:
		return SFloat
	case reflect.Float64:
		return SDouble
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return SBytes
		}
		return SVector{Element: d.schemaOfType(t.Elem())}
	case reflect.Array:
		fields := make([]Schema, t.Len())
		for i := range fields {
			fields[i] = d.schemaOfType(t.Elem())
		}
		return SProduct{Fields: fields}
	case reflect.Map:
		return SVector{Element: SProduct{Fields: []Schema{d.schemaOfType(t.Key()), d.schemaOfType(t.Elem())}}}
	case reflect.Ptr:
		inner := d.schemaOfType(t.Elem())
		return STag{Value: TagStr("optional"), Schema: SVariant{Constructors: []VariantConstructor{
			{Name: "None", Schema: SProduct{}},
			{Name: "Some", Schema: inner},
		}}}
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return SUTCTime
		}
		if t == reflect.TypeOf(big.Int{}) {
			return SInteger
		}
		d.fixStack = append(d.fixStack, t)
		fields := make([]RecordField, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" { // unexported
				continue
			}
			tag := parseFieldTag(f)
			if tag.skip {
				continue
			}
			fields = append(fields, RecordField{Name: tag.name, Schema: d.schemaOfType(f.Type)})
		}
		d.fixStack = d.fixStack[:len(d.fixStack)-1]
		s := SFix{Body: SRecord{Fields: fields}}
		d.schemaCache[t] = s
		globalSchemaCache.Store(t, s)
		return s
	}

	panic(fmt.Sprintf("schemawire: cannot derive a schema for kind %s (%s)", t.Kind(), t))
}

// DeriveSchema derives a Schema for T by reflection (§4.10).
func DeriveSchema[T any]() Schema {
	d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
	var zero T
	return d.schemaOfType(reflect.TypeOf(&zero).Elem())
}

// encoderFor returns a func(reflect.Value, *Buffer) for t, memoized
// per-call via `cache` so recursive struct graphs terminate: a struct's
// own encoder closes over a pointer-to-func cell that's filled in only
// after the whole struct body has been walked, letting a Self-referencing
// field capture the not-yet-complete encoder by reference.
func (d *derivationState) encoderFor(t reflect.Type, cache map[reflect.Type]*func(reflect.Value, *Buffer)) func(reflect.Value, *Buffer) {
	if cell, ok := cache[t]; ok {
		return func(v reflect.Value, b *Buffer) { (*cell)(v, b) }
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(v reflect.Value, b *Buffer) { b.AppendBool(v.Bool()) }
	case reflect.String:
		return func(v reflect.Value, b *Buffer) { b.AppendText(v.String()) }
	case reflect.Int8:
		return func(v reflect.Value, b *Buffer) { b.AppendInt8(int8(v.Int())) }
	case reflect.Int16:
		return func(v reflect.Value, b *Buffer) { b.AppendInt16(int16(v.Int())) }
	case reflect.Int32:
		return func(v reflect.Value, b *Buffer) { b.AppendInt32(int32(v.Int())) }
	case reflect.Int64, reflect.Int:
		return func(v reflect.Value, b *Buffer) { b.AppendInt64(v.Int()) }
	case reflect.Uint8:
		return func(v reflect.Value, b *Buffer) { b.AppendUint8(uint8(v.Uint())) }
	case reflect.Uint16:
		return func(v reflect.Value, b *Buffer) { b.AppendUint16(uint16(v.Uint())) }
	case reflect.Uint32:
		return func(v reflect.Value, b *Buffer) { b.AppendUint32(uint32(v.Uint())) }
	case reflect.Uint64, reflect.Uint:
		return func(v reflect.Value, b *Buffer) { b.AppendUint64(v.Uint()) }
	case reflect.Float32:
		return func(v reflect.Value, b *Buffer) { b.AppendFloat32(float32(v.Float())) }
	case reflect.Float64:
		return func(v reflect.Value, b *Buffer) { b.AppendFloat64(v.Float()) }
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return func(v reflect.Value, b *Buffer) { b.AppendBytes(v.Bytes()) }
		}
		elemEnc := d.encoderFor(t.Elem(), cache)
		return func(v reflect.Value, b *Buffer) {
			n := v.Len()
			b.AppendVarint(uint64(n))
			for i := 0; i < n; i++ {
				elemEnc(v.Index(i), b)
			}
		}
	case reflect.Array:
		elemEnc := d.encoderFor(t.Elem(), cache)
		return func(v reflect.Value, b *Buffer) {
			for i := 0; i < v.Len(); i++ {
				elemEnc(v.Index(i), b)
			}
		}
	case reflect.Map:
		keyEnc := d.encoderFor(t.Key(), cache)
		valEnc := d.encoderFor(t.Elem(), cache)
		return func(v reflect.Value, b *Buffer) {
			b.AppendVarint(uint64(v.Len()))
			iter := v.MapRange()
			for iter.Next() {
				keyEnc(iter.Key(), b)
				valEnc(iter.Value(), b)
			}
		}
	case reflect.Ptr:
		innerEnc := d.encoderFor(t.Elem(), cache)
		return func(v reflect.Value, b *Buffer) {
			if v.IsNil() {
				b.AppendVarint(0)
				return
			}
			b.AppendVarint(1)
			innerEnc(v.Elem(), b)
		}
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return func(v reflect.Value, b *Buffer) {
				tm := v.Interface().(time.Time)
				b.AppendUTCTime(float64(tm.UnixNano()) / float64(time.Second))
			}
		}
		if t == reflect.TypeOf(big.Int{}) {
			return func(v reflect.Value, b *Buffer) {
				bi := v.Interface().(big.Int)
				b.AppendVarintBig(&bi)
			}
		}

		var self func(reflect.Value, *Buffer)
		cache[t] = &self

		type fieldEnc struct {
			index int
			enc   func(reflect.Value, *Buffer)
		}
		var fields []fieldEnc
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			tag := parseFieldTag(f)
			if tag.skip {
				continue
			}
			fields = append(fields, fieldEnc{index: i, enc: d.encoderFor(f.Type, cache)})
		}

		self = func(v reflect.Value, b *Buffer) {
			for _, f := range fields {
				f.enc(v.Field(f.index), b)
			}
		}
		delete(cache, t)
		return self
	}

	panic(fmt.Sprintf("schemawire: cannot derive an encoder for kind %s (%s)", t.Kind(), t))
}

// DeriveEncoder derives an encode function for T by reflection.
func DeriveEncoder[T any]() func(T, *Buffer) {
	d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	enc := d.encoderFor(t, map[reflect.Type]*func(reflect.Value, *Buffer){})
	return func(v T, b *Buffer) { enc(reflect.ValueOf(v), b) }
}

// extractorFor builds a func(Term) reflect.Value for t by recursively
// planning against Untag(s), mirroring the hand-written extractor
// combinators in extractor.go but operating through reflection so one
// derivation covers an arbitrary struct graph. Field matching is by name
// (§4.7's record-evolution rule): fields present in the schema but absent
// from T are ignored; fields present in T but absent from the schema fail
// to plan with MissingField, pointer fields included, since derived
// extractors have no default mechanism (see structExtractor).
func (d *derivationState) extractorFor(t reflect.Type, s Schema, path string, cells map[reflect.Type]*func(Term) reflect.Value) (func(Term) reflect.Value, error) {
	d.cellsMu.Lock()
	cell, ok := cells[t]
	d.cellsMu.Unlock()
	if ok {
		// Self-referencing struct type: forward to a cell that structExtractor
		// fills in once the whole struct body (including this field) is
		// planned, exactly as encoderFor's recursive-struct cache does.
		return func(term Term) reflect.Value { return (*cell)(term) }, nil
	}

	us := Untag(s)
	// schemaOfType wraps every struct's Record body in an SFix (§3's
	// fixpoint binder), whether or not the type actually recurses. Unwrap it
	// here rather than in Untag: Untag is the Tag-only transparency rule
	// (§9, "the core never dispatches on Tag's contents"); Fix is a real
	// binder and has to stay visible to the term decoder and the bootstrap
	// codec. A Self(n) reached through a recursive field resolves above via
	// the cells-by-reflect.Type lookup, not by tracking the numeric depth.
	if fix, ok := us.(SFix); ok {
		us = Untag(fix.Body)
	}

	switch t.Kind() {
	case reflect.Bool:
		l, ok := us.(leafSchema)
		if !ok || l != leafBool {
			return nil, SchemaMismatch(path, "Bool", s)
		}
		return func(term Term) reflect.Value { return reflect.ValueOf(bool(term.(TBool))) }, nil
	case reflect.String:
		l, ok := us.(leafSchema)
		if !ok || l != leafText {
			return nil, SchemaMismatch(path, "Text", s)
		}
		return func(term Term) reflect.Value { return reflect.ValueOf(string(term.(TText))) }, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		l, ok := us.(leafSchema)
		w, known := signedWidth[l]
		if !ok || !known {
			return nil, SchemaMismatch(path, "a signed integer", s)
		}
		return func(term Term) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetInt(readSigned(term))
			return rv
		}, checkWidth(t, w)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		l, ok := us.(leafSchema)
		w, known := unsignedWidth[l]
		if !ok || !known {
			return nil, SchemaMismatch(path, "an unsigned integer", s)
		}
		return func(term Term) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetUint(readUnsigned(term))
			return rv
		}, checkWidth(t, w)
	case reflect.Float32:
		l, ok := us.(leafSchema)
		if !ok || l != leafFloat {
			return nil, SchemaMismatch(path, "Float", s)
		}
		return func(term Term) reflect.Value { return reflect.ValueOf(float32(term.(TFloat))) }, nil
	case reflect.Float64:
		l, ok := us.(leafSchema)
		if !ok || (l != leafFloat && l != leafDouble) {
			return nil, SchemaMismatch(path, "Float or Double", s)
		}
		return func(term Term) reflect.Value {
			if f, ok := term.(TFloat); ok {
				return reflect.ValueOf(float64(f))
			}
			return reflect.ValueOf(float64(term.(TDouble)))
		}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			l, ok := us.(leafSchema)
			if !ok || l != leafBytes {
				return nil, SchemaMismatch(path, "Bytes", s)
			}
			return func(term Term) reflect.Value { return reflect.ValueOf([]byte(term.(TBytes))) }, nil
		}
		v, ok := us.(SVector)
		if !ok {
			return nil, SchemaMismatch(path, "Vector", s)
		}
		elemFn, err := d.extractorFor(t.Elem(), v.Element, path+"[]", cells)
		if err != nil {
			return nil, err
		}
		return func(term Term) reflect.Value {
			tv := term.(TVector)
			out := reflect.MakeSlice(t, len(tv.Elements), len(tv.Elements))
			for i, e := range tv.Elements {
				out.Index(i).Set(elemFn(e))
			}
			return out
		}, nil
	case reflect.Map:
		v, ok := us.(SVector)
		if !ok {
			return nil, SchemaMismatch(path, "Vector", s)
		}
		p, ok := Untag(v.Element).(SProduct)
		if !ok || len(p.Fields) != 2 {
			return nil, SchemaMismatch(path, "Vector of (K,V) pairs", s)
		}
		keyFn, err := d.extractorFor(t.Key(), p.Fields[0], path+".key", cells)
		if err != nil {
			return nil, err
		}
		valFn, err := d.extractorFor(t.Elem(), p.Fields[1], path+".value", cells)
		if err != nil {
			return nil, err
		}
		return func(term Term) reflect.Value {
			tv := term.(TVector)
			out := reflect.MakeMapWithSize(t, len(tv.Elements))
			for _, e := range tv.Elements {
				tp := e.(TProduct)
				out.SetMapIndex(keyFn(tp.Elements[0]), valFn(tp.Elements[1]))
			}
			return out
		}, nil
	case reflect.Ptr:
		variant, ok := us.(SVariant)
		if !ok || len(variant.Constructors) != 2 {
			return nil, SchemaMismatch(path, "Variant of arity 2 (optional)", s)
		}
		innerFn, err := d.extractorFor(t.Elem(), variant.Constructors[1].Schema, path+"*", cells)
		if err != nil {
			return nil, err
		}
		return func(term Term) reflect.Value {
			tv := term.(TVariant)
			out := reflect.New(t.Elem())
			if tv.Tag != 0 {
				out.Elem().Set(innerFn(tv.Payload))
				return out
			}
			return reflect.Zero(t)
		}, nil
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			l, ok := us.(leafSchema)
			if !ok || l != leafUTCTime {
				return nil, SchemaMismatch(path, "UTCTime", s)
			}
			return func(term Term) reflect.Value {
				secs := float64(term.(TUTCTime))
				return reflect.ValueOf(time.Unix(0, int64(secs*float64(time.Second))).UTC())
			}, nil
		}
		if t == reflect.TypeOf(big.Int{}) {
			l, ok := us.(leafSchema)
			if !ok {
				return nil, SchemaMismatch(path, "a numeric schema", s)
			}
			switch l {
			case leafInteger:
				return func(term Term) reflect.Value { return reflect.ValueOf(*term.(TInteger).Value) }, nil
			case leafW8, leafW16, leafW32, leafW64:
				return func(term Term) reflect.Value { return reflect.ValueOf(*new(big.Int).SetUint64(readUnsigned(term))) }, nil
			case leafI8, leafI16, leafI32, leafI64:
				return func(term Term) reflect.Value { return reflect.ValueOf(*big.NewInt(readSigned(term))) }, nil
			}
			return nil, SchemaMismatch(path, "a numeric schema", s)
		}
		return d.structExtractor(t, us, path, cells)
	}

	return nil, SchemaMismatch(path, "a representable type", s)
}

func checkWidth(t reflect.Type, incomingWidth int) error {
	var targetWidth int
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		targetWidth = 1
	case reflect.Int16, reflect.Uint16:
		targetWidth = 2
	case reflect.Int32, reflect.Uint32:
		targetWidth = 3
	default:
		targetWidth = 4
	}
	if incomingWidth > targetWidth {
		return fmt.Errorf("schemawire: incoming integer width exceeds target field width")
	}
	return nil
}

// structExtractor plans a Record extractor for struct type t against
// schema s, field by field, honoring §4.7's evolution rules: fields
// present in s but absent from t are ignored; fields present in t but
// absent from s fail to plan (no defaults mechanism for derived structs —
// callers needing defaults should hand-write an Extractor for that field
// using ConstExtractor composed via PairExtractor instead).
//
// Recursive struct graphs (a field whose type is t itself, or t reached
// through a pointer/slice/map) are handled by registering a forwarding
// cell for t before planning its fields, exactly mirroring encoderFor's
// pointer-to-func trick for the encode side.
//
// Sibling fields don't depend on one another's plans, only on the shared
// `cells` map (for recursive references) and `d`'s caches, both already
// safe for concurrent use (cellsMu, globalSchemaCache) — so fields plan
// concurrently via errgroup, matching start.go's "fan the independent
// work out, join on the first error" shape.
func (d *derivationState) structExtractor(t reflect.Type, us Schema, path string, cells map[reflect.Type]*func(Term) reflect.Value) (func(Term) reflect.Value, error) {
	rec, ok := us.(SRecord)
	if !ok {
		return nil, SchemaMismatch(path, "Record", us)
	}

	var self func(Term) reflect.Value
	d.cellsMu.Lock()
	cells[t] = &self
	d.cellsMu.Unlock()
	defer func() {
		d.cellsMu.Lock()
		delete(cells, t)
		d.cellsMu.Unlock()
	}()

	type fieldSpec struct {
		fieldIndex int
		name       string
		schemaIdx  int
	}
	var specs []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := parseFieldTag(f)
		if tag.skip {
			continue
		}
		idx := -1
		for j, rf := range rec.Fields {
			if rf.Name == tag.name {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, MissingField(path, tag.name)
		}
		specs = append(specs, fieldSpec{fieldIndex: i, name: tag.name, schemaIdx: idx})
	}

	type planned struct {
		fieldIndex int
		fn         func(Term) reflect.Value
	}
	plans := make([]planned, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			f := t.Field(spec.fieldIndex)
			fn, err := d.extractorFor(f.Type, rec.Fields[spec.schemaIdx].Schema, path+"."+spec.name, cells)
			if err != nil {
				return wrapPath(spec.name, err)
			}
			plans[i] = planned{fieldIndex: spec.fieldIndex, fn: fn}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	self = func(term Term) reflect.Value {
		tr := term.(TRecord)
		out := reflect.New(t).Elem()
		for _, p := range plans {
			v, present := tr.Lookup(recordFieldNameFor(t, p.fieldIndex))
			if !present {
				continue
			}
			out.Field(p.fieldIndex).Set(p.fn(v))
		}
		return out
	}
	return self, nil
}

func recordFieldNameFor(t reflect.Type, fieldIndex int) string {
	f := t.Field(fieldIndex)
	tag := parseFieldTag(f)
	return tag.name
}

// DeriveExtractor derives an Extractor[T] by reflection (§4.10).
func DeriveExtractor[T any]() Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
		var zero T
		t := reflect.TypeOf(&zero).Elem()
		fn, err := d.extractorFor(t, s, "", map[reflect.Type]*func(Term) reflect.Value{})
		if err != nil {
			return nil, err
		}
		return func(term Term) T {
			return fn(term).Interface().(T)
		}, nil
	}}
}

// DeriveCoder derives a full Coder[T] (schema, encoder, extractor, and a
// native decoder built by planning the Extractor once against T's own
// derived schema — always a legal plan, since a schema trivially
// reconciles with itself).
func DeriveCoder[T any]() Coder[T] {
	schema := DeriveSchema[T]()
	encode := DeriveEncoder[T]()
	extractor := DeriveExtractor[T]()
	decodeFn, err := extractor.Plan(schema)
	if err != nil {
		panic(fmt.Errorf("schemawire: derived schema failed to self-plan (internal inconsistency): %w", err))
	}
	return Coder[T]{
		Schema: schema,
		Encode: encode,
		Decode: func(r *Reader) T {
			term, err := DecodeTerm(schema, r)
			if err != nil {
				panic(err)
			}
			return decodeFn(term)
		},
		Extractor: extractor,
	}
}

// VariantTypeCase names one alternative of a closed interface type by its
// wire constructor name and the concrete struct type that implements it —
// the derivation-surface analogue of glint.go's binaryEncoder/binaryDecoder
// opt-in registration (SPEC_FULL.md §4.10): a Go sum type is modeled as an
// interface plus a fixed, explicitly registered list of implementors, wire
// tag = registration order, matching §3's "Variant... order defines wire
// tag index".
type VariantTypeCase struct {
	Name string
	Type reflect.Type
}

// CaseOf registers one implementor P of a closed interface under the wire
// name `name`. P is the concrete payload struct, not the interface itself.
func CaseOf[P any](name string) VariantTypeCase {
	var zero P
	return VariantTypeCase{Name: name, Type: reflect.TypeOf(&zero).Elem()}
}

// DeriveVariantSchema derives the Variant Schema for a closed interface
// type from its registered implementors, in registration order.
func DeriveVariantSchema(cases ...VariantTypeCase) Schema {
	d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
	ctors := make([]VariantConstructor, len(cases))
	for i, c := range cases {
		ctors[i] = VariantConstructor{Name: c.Name, Schema: d.schemaOfType(c.Type)}
	}
	return SVariant{Constructors: ctors}
}

// DeriveVariantEncoder derives an encoder for a closed interface type I: it
// dispatches on the dynamic type carried by v (panicking if v's concrete
// type was never registered via CaseOf — a contract violation, not a
// decode-time data error), writes that case's wire tag, then encodes the
// concrete value using its own derived Record encoder.
func DeriveVariantEncoder[I any](cases ...VariantTypeCase) func(I, *Buffer) {
	d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
	encoders := make([]func(reflect.Value, *Buffer), len(cases))
	index := make(map[reflect.Type]int, len(cases))
	for i, c := range cases {
		encoders[i] = d.encoderFor(c.Type, map[reflect.Type]*func(reflect.Value, *Buffer){})
		index[c.Type] = i
	}
	return func(v I, b *Buffer) {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		idx, ok := index[rv.Type()]
		if !ok {
			panic(fmt.Sprintf("schemawire: %T is not a case registered for this variant", v))
		}
		b.AppendVarint(uint64(idx))
		encoders[idx](rv, b)
	}
}

// DeriveVariantExtractor derives an Extractor[I] for a closed interface type
// (§4.7 "Variant extractor", the derivation-surface counterpart of
// ExtractVariant in extractor.go): for each incoming constructor, find the
// matching registered case by name and reflect its own Record extractor
// against the payload sub-schema; an incoming name with no registered case
// fails planning (MissingConstructor), a registered case absent from the
// incoming schema is legal. `build` wraps the decoded concrete
// reflect.Value back into I (ordinarily `func(v reflect.Value) I { return
// v.Interface().(I) }`, or `v.Addr().Interface().(I)` when I's methods have
// pointer receivers).
func DeriveVariantExtractor[I any](build func(reflect.Value) I, cases ...VariantTypeCase) Extractor[I] {
	return Extractor[I]{Plan: func(s Schema) (func(Term) I, error) {
		v, ok := Untag(s).(SVariant)
		if !ok {
			return nil, SchemaMismatch("", "Variant", s)
		}
		byName := make(map[string]VariantTypeCase, len(cases))
		for _, c := range cases {
			byName[c.Name] = c
		}
		d := &derivationState{schemaCache: map[reflect.Type]Schema{}}
		plans := make([]func(Term) reflect.Value, len(v.Constructors))
		for i, ctor := range v.Constructors {
			c, ok := byName[ctor.Name]
			if !ok {
				return nil, MissingConstructor("", ctor.Name)
			}
			fn, err := d.extractorFor(c.Type, ctor.Schema, ctor.Name, map[reflect.Type]*func(Term) reflect.Value{})
			if err != nil {
				return nil, wrapPath(ctor.Name, err)
			}
			plans[i] = fn
		}
		return func(t Term) I {
			tv := t.(TVariant)
			return build(plans[tv.Tag](tv.Payload))
		}, nil
	}}
}
