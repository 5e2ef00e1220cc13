package schemawire

import "fmt"

// TermDecodeLimits bounds the amount of work a single DecodeTerm call will
// do, generalizing the teacher's DecodeLimits/DefaultLimits pair (glint.go)
// from "bytes allocated for a slice/string" to "elements/fields/recursion
// depth accepted while building a Term" — the same defense against a
// corrupt or adversarial length prefix driving unbounded allocation.
type TermDecodeLimits struct {
	MaxVectorLen  uint // 0 = unlimited
	MaxRecursion  uint // max Fix nesting depth walked during decode
	MaxStringLen  uint // 0 = unlimited
}

// DefaultTermDecodeLimits mirrors glint.go's DefaultLimits defaults.
var DefaultTermDecodeLimits = TermDecodeLimits{
	MaxVectorLen: 10_000_000,
	MaxRecursion: 10_000,
	MaxStringLen: 50 * 1024 * 1024,
}

// selfPoint is a pending decoder bound by an ambient Fix, forced whenever a
// Self(i) is encountered at that depth. Grounded on walker.go's schema/body
// lockstep traversal, generalized from an inline WireType stream to an
// explicit recursive Schema.
type selfPoint struct {
	schema Schema
}

// termDecoder carries per-call state: the Fix stack and configured limits.
type termDecoder struct {
	points []selfPoint
	limits TermDecodeLimits
}

// DecodeTerm decodes bytes into a Term according to Schema s (§4.5), using
// DefaultTermDecodeLimits.
func DecodeTerm(s Schema, r *Reader) (term Term, err error) {
	return DecodeTermWithLimits(s, r, DefaultTermDecodeLimits)
}

// DecodeTermWithLimits is DecodeTerm with explicit bounds-checking
// configuration.
func DecodeTermWithLimits(s Schema, r *Reader, limits TermDecodeLimits) (term Term, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()
	d := &termDecoder{limits: limits}
	return d.decode(s, r), nil
}

func (d *termDecoder) decode(s Schema, r *Reader) Term {
	switch v := Untag(s).(type) {
	case leafSchema:
		return d.decodeLeaf(v, r)
	case SSchemaRef:
		ref, err := Bootstrap(v.Version)
		if err != nil {
			panic(err)
		}
		// Open Question (spec.md §9): substitute SchemaRef with bootstrap(v)
		// before binding any enclosing Fix — outside-in substitution.
		return d.decode(ref, r)
	case SVector:
		n := r.ReadVarint()
		if d.limits.MaxVectorLen > 0 && n > uint64(d.limits.MaxVectorLen) {
			panic(fmt.Errorf("schemawire: vector length %d exceeds limit %d", n, d.limits.MaxVectorLen))
		}
		elems := make([]Term, n)
		for i := range elems {
			elems[i] = d.decode(v.Element, r)
		}
		return TVector{Elements: elems}
	case SProduct:
		elems := make([]Term, len(v.Fields))
		for i, f := range v.Fields {
			elems[i] = d.decode(f, r)
		}
		return TProduct{Elements: elems}
	case SRecord:
		fields := make([]RecordFieldValue, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = RecordFieldValue{Name: f.Name, Value: d.decode(f.Schema, r)}
		}
		return TRecord{Fields: fields}
	case SVariant:
		tag := r.ReadVarint()
		if tag >= uint64(len(v.Constructors)) {
			panic(ErrInvalidTag)
		}
		c := v.Constructors[tag]
		return TVariant{Tag: uint32(tag), Name: c.Name, Payload: d.decode(c.Schema, r)}
	case SFix:
		if uint(len(d.points)) >= d.limits.MaxRecursion && d.limits.MaxRecursion > 0 {
			panic(fmt.Errorf("schemawire: Fix nesting exceeds limit %d", d.limits.MaxRecursion))
		}
		d.points = append(d.points, selfPoint{schema: v})
		defer func() { d.points = d.points[:len(d.points)-1] }()
		return d.decode(v.Body, r)
	case SSelf:
		idx := len(d.points) - 1 - int(v.N)
		if idx < 0 {
			panic(fmt.Errorf("schemawire: Self(%d) has no enclosing Fix (malformed schema)", v.N))
		}
		fix := d.points[idx].schema.(SFix)
		return d.decode(fix.Body, r)
	}
	panic(fmt.Errorf("schemawire: unknown Schema constructor %T", s))
}

func (d *termDecoder) decodeLeaf(l leafSchema, r *Reader) Term {
	switch l {
	case leafBool:
		return TBool(r.ReadBool())
	case leafChar:
		return TChar(r.ReadChar())
	case leafW8:
		return TW8(r.ReadUint8())
	case leafW16:
		return TW16(r.ReadUint16())
	case leafW32:
		return TW32(r.ReadUint32())
	case leafW64:
		return TW64(r.ReadUint64())
	case leafI8:
		return TI8(r.ReadInt8())
	case leafI16:
		return TI16(r.ReadInt16())
	case leafI32:
		return TI32(r.ReadInt32())
	case leafI64:
		return TI64(r.ReadInt64())
	case leafInteger:
		return TInteger{Value: r.ReadVarintBig()}
	case leafFloat:
		return TFloat(r.ReadFloat32())
	case leafDouble:
		return TDouble(r.ReadFloat64())
	case leafBytes:
		return TBytes(r.ReadBytes())
	case leafText:
		s, err := r.ReadText()
		if err != nil {
			panic(err)
		}
		if d.limits.MaxStringLen > 0 && uint(len(s)) > d.limits.MaxStringLen {
			panic(fmt.Errorf("schemawire: text length %d exceeds limit %d", len(s), d.limits.MaxStringLen))
		}
		return TText(s)
	case leafUTCTime:
		return TUTCTime(r.ReadUTCTime())
	}
	panic(fmt.Errorf("schemawire: unknown leaf schema %v", l))
}
