package schemawire

import (
	"math/big"
	"time"
)

// TermBuilder is a fluent, progressive constructor for a Record Term (and
// its matching Schema) without a host Go struct — for tooling that needs
// to build a payload dynamically. Grounded in documentbuilder.go's
// DocumentBuilder, which serves the same "build documents without
// structs" purpose for the teacher's wire format; reimplemented against
// Term/Schema (a Record) instead of an inline byte-accumulating schema.
type TermBuilder struct {
	fields []RecordField
	values []RecordFieldValue
}

// NewTermBuilder starts an empty record.
func NewTermBuilder() *TermBuilder {
	return &TermBuilder{}
}

func (d *TermBuilder) append(name string, s Schema, v Term) *TermBuilder {
	d.fields = append(d.fields, RecordField{Name: name, Schema: s})
	d.values = append(d.values, RecordFieldValue{Name: name, Value: v})
	return d
}

func (d *TermBuilder) AppendBool(name string, value bool) *TermBuilder {
	return d.append(name, SBool, TBool(value))
}

func (d *TermBuilder) AppendChar(name string, value rune) *TermBuilder {
	return d.append(name, SChar, TChar(value))
}

func (d *TermBuilder) AppendText(name string, value string) *TermBuilder {
	return d.append(name, SText, TText(value))
}

func (d *TermBuilder) AppendBytes(name string, value []byte) *TermBuilder {
	return d.append(name, SBytes, TBytes(value))
}

func (d *TermBuilder) AppendW8(name string, value uint8) *TermBuilder {
	return d.append(name, SW8, TW8(value))
}

func (d *TermBuilder) AppendW16(name string, value uint16) *TermBuilder {
	return d.append(name, SW16, TW16(value))
}

func (d *TermBuilder) AppendW32(name string, value uint32) *TermBuilder {
	return d.append(name, SW32, TW32(value))
}

func (d *TermBuilder) AppendW64(name string, value uint64) *TermBuilder {
	return d.append(name, SW64, TW64(value))
}

func (d *TermBuilder) AppendI8(name string, value int8) *TermBuilder {
	return d.append(name, SI8, TI8(value))
}

func (d *TermBuilder) AppendI16(name string, value int16) *TermBuilder {
	return d.append(name, SI16, TI16(value))
}

func (d *TermBuilder) AppendI32(name string, value int32) *TermBuilder {
	return d.append(name, SI32, TI32(value))
}

func (d *TermBuilder) AppendI64(name string, value int64) *TermBuilder {
	return d.append(name, SI64, TI64(value))
}

func (d *TermBuilder) AppendInteger(name string, value *big.Int) *TermBuilder {
	return d.append(name, SInteger, TInteger{Value: value})
}

func (d *TermBuilder) AppendFloat32(name string, value float32) *TermBuilder {
	return d.append(name, SFloat, TFloat(value))
}

func (d *TermBuilder) AppendFloat64(name string, value float64) *TermBuilder {
	return d.append(name, SDouble, TDouble(value))
}

func (d *TermBuilder) AppendUTCTime(name string, value time.Time) *TermBuilder {
	secs := float64(value.UnixNano()) / float64(time.Second)
	return d.append(name, SUTCTime, TUTCTime(secs))
}

// AppendVector adds a field holding a homogeneous sequence of Terms, all
// assumed to share elementSchema — callers are responsible for that
// invariant, exactly as the teacher's AppendSlice trusts its SliceBuilder.
func (d *TermBuilder) AppendVector(name string, elementSchema Schema, elements []Term) *TermBuilder {
	return d.append(name, SVector{Element: elementSchema}, TVector{Elements: elements})
}

// AppendRecord nests another builder's record as a field, equivalent to
// the teacher's AppendNestedDocument.
func (d *TermBuilder) AppendRecord(name string, nested *TermBuilder) *TermBuilder {
	s, t := nested.Build()
	return d.append(name, s, t)
}

// AppendVariant adds a field holding a sum value: the full set of sibling
// constructors must be supplied (constructors) so the field's Schema
// correctly lists every alternative, not just the one present here.
func (d *TermBuilder) AppendVariant(name string, constructors []VariantConstructor, tag uint32, payload Term) *TermBuilder {
	return d.append(name, SVariant{Constructors: constructors}, TVariant{Tag: tag, Name: constructors[tag].Name, Payload: payload})
}

// Build finalizes the builder into a (Schema, Term) pair: an SRecord
// alongside its matching TRecord.
func (d *TermBuilder) Build() (Schema, Term) {
	fields := make([]RecordField, len(d.fields))
	copy(fields, d.fields)
	values := make([]RecordFieldValue, len(d.values))
	copy(values, d.values)
	return SRecord{Fields: fields}, TRecord{Fields: values}
}

// Encode finalizes the builder and writes it through Serialise's framing
// (version byte + schema + value), without requiring a host Go type.
func (d *TermBuilder) Encode() []byte {
	s, t := d.Build()
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	buf.AppendUint8(CurrentVersion)
	EncodeSchema(s, buf)
	EncodeTerm(t, buf)
	out := make([]byte, len(buf.Bytes))
	copy(out, buf.Bytes)
	return out
}

// EncodeTerm writes a Term's value bytes, mirroring the shape of the
// schema it was built against field-for-field. There's generally no host
// Go type driving a Coder's Encode function for a bare Term (e.g. one
// produced by TermBuilder, or re-encoding a Term read back by DecodeTerm),
// so this provides the missing direction.
func EncodeTerm(t Term, buf *Buffer) {
	switch v := t.(type) {
	case TBool:
		buf.AppendBool(bool(v))
	case TChar:
		buf.AppendChar(rune(v))
	case TW8:
		buf.AppendUint8(uint8(v))
	case TW16:
		buf.AppendUint16(uint16(v))
	case TW32:
		buf.AppendUint32(uint32(v))
	case TW64:
		buf.AppendUint64(uint64(v))
	case TI8:
		buf.AppendInt8(int8(v))
	case TI16:
		buf.AppendInt16(int16(v))
	case TI32:
		buf.AppendInt32(int32(v))
	case TI64:
		buf.AppendInt64(int64(v))
	case TInteger:
		buf.AppendVarintBig(v.Value)
	case TFloat:
		buf.AppendFloat32(float32(v))
	case TDouble:
		buf.AppendFloat64(float64(v))
	case TBytes:
		buf.AppendBytes(v)
	case TText:
		buf.AppendText(string(v))
	case TUTCTime:
		buf.AppendUTCTime(float64(v))
	case TVector:
		buf.AppendVarint(uint64(len(v.Elements)))
		for _, e := range v.Elements {
			EncodeTerm(e, buf)
		}
	case TProduct:
		for _, e := range v.Elements {
			EncodeTerm(e, buf)
		}
	case TRecord:
		for _, f := range v.Fields {
			EncodeTerm(f.Value, buf)
		}
	case TVariant:
		buf.AppendVarint(uint64(v.Tag))
		EncodeTerm(v.Payload, buf)
	}
}
