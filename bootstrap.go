package schemawire

import (
	"fmt"
	"math/big"
)

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

// Bootstrap schema (§4.4, §6): a process-wide constant table, one Schema
// value per recognized schema-language version, expressing the shape of
// Schema itself. Grounded in spec.md §6's authoritative version-3 layout;
// there is no teacher analogue (glint's "schema" is an inline WireType
// stream, never reified as a value), so this is a direct transcription.

// bootstrapTagSchema is `Fix(Variant["TagInt"[Integer], "TagStr"[Text],
// "TagList"[Vector(Self 0)]])`, the schema used to encode/decode Tag values.
var bootstrapTagSchema = SFix{Body: SVariant{Constructors: []VariantConstructor{
	{Name: "TagInt", Schema: SInteger},
	{Name: "TagStr", Schema: SText},
	{Name: "TagList", Schema: SVector{Element: SSelf{N: 0}}},
}}}

// bootstrapV3 is the version-3 schema-of-schemas: a Fix around a Variant of
// 24 constructors, each payload a Product, in the order spec.md §6 mandates.
var bootstrapV3 = SFix{Body: SVariant{Constructors: []VariantConstructor{
	{Name: "SFix", Schema: SProduct{Fields: []Schema{SSelf{N: 0}}}},
	{Name: "SSelf", Schema: SProduct{Fields: []Schema{SW8}}},
	{Name: "SVector", Schema: SProduct{Fields: []Schema{SSelf{N: 0}}}},
	{Name: "SProduct", Schema: SProduct{Fields: []Schema{SVector{Element: SSelf{N: 0}}}}},
	{Name: "SRecord", Schema: SProduct{Fields: []Schema{SVector{Element: SProduct{Fields: []Schema{SText, SSelf{N: 0}}}}}}},
	{Name: "SVariant", Schema: SProduct{Fields: []Schema{SVector{Element: SProduct{Fields: []Schema{SText, SSelf{N: 0}}}}}}},
	{Name: "SSchema", Schema: SProduct{Fields: []Schema{SW8}}},
	{Name: "SBool", Schema: SProduct{}},
	{Name: "SChar", Schema: SProduct{}},
	{Name: "SW8", Schema: SProduct{}},
	{Name: "SW16", Schema: SProduct{}},
	{Name: "SW32", Schema: SProduct{}},
	{Name: "SW64", Schema: SProduct{}},
	{Name: "SI8", Schema: SProduct{}},
	{Name: "SI16", Schema: SProduct{}},
	{Name: "SI32", Schema: SProduct{}},
	{Name: "SI64", Schema: SProduct{}},
	{Name: "SInteger", Schema: SProduct{}},
	{Name: "SFloat", Schema: SProduct{}},
	{Name: "SDouble", Schema: SProduct{}},
	{Name: "SBytes", Schema: SProduct{}},
	{Name: "SText", Schema: SProduct{}},
	{Name: "SUTCTime", Schema: SProduct{}},
	{Name: "STag", Schema: SProduct{Fields: []Schema{bootstrapTagSchema, SSelf{N: 0}}}},
}}}

var bootstrapTable = map[byte]Schema{
	3: bootstrapV3,
}

// Bootstrap returns the schema-of-schemas for a recognized version, or an
// UnknownSchemaVersionError.
func Bootstrap(version byte) (Schema, error) {
	s, ok := bootstrapTable[version]
	if !ok {
		return nil, &UnknownSchemaVersionError{Version: version}
	}
	return s, nil
}

// CurrentVersion is the schema-language version this package writes.
const CurrentVersion byte = 3

// constructor tag indices for the version-3 bootstrap, in declaration order.
const (
	tagSFix byte = iota
	tagSSelf
	tagSVector
	tagSProduct
	tagSRecord
	tagSVariant
	tagSSchema
	tagSBool
	tagSChar
	tagSW8
	tagSW16
	tagSW32
	tagSW64
	tagSI8
	tagSI16
	tagSI32
	tagSI64
	tagSInteger
	tagSFloat
	tagSDouble
	tagSBytes
	tagSText
	tagSUTCTime
	tagSTag
)

// EncodeSchema writes a Schema value in bootstrap-v3 layout. This is the
// native fast path for the type Schema itself: schema(a Schema) always
// equals bootstrap(CurrentVersion) by construction, so framing.go never
// needs to plan an extractor to write or read a Schema value.
func EncodeSchema(s Schema, buf *Buffer) {
	switch v := s.(type) {
	case SFix:
		buf.AppendVarint(uint64(tagSFix))
		EncodeSchema(v.Body, buf)
	case SSelf:
		buf.AppendVarint(uint64(tagSSelf))
		buf.AppendUint8(v.N)
	case SVector:
		buf.AppendVarint(uint64(tagSVector))
		EncodeSchema(v.Element, buf)
	case SProduct:
		buf.AppendVarint(uint64(tagSProduct))
		buf.AppendVarint(uint64(len(v.Fields)))
		for _, f := range v.Fields {
			EncodeSchema(f, buf)
		}
	case SRecord:
		buf.AppendVarint(uint64(tagSRecord))
		buf.AppendVarint(uint64(len(v.Fields)))
		for _, f := range v.Fields {
			buf.AppendText(f.Name)
			EncodeSchema(f.Schema, buf)
		}
	case SVariant:
		buf.AppendVarint(uint64(tagSVariant))
		buf.AppendVarint(uint64(len(v.Constructors)))
		for _, c := range v.Constructors {
			buf.AppendText(c.Name)
			EncodeSchema(c.Schema, buf)
		}
	case SSchemaRef:
		buf.AppendVarint(uint64(tagSSchema))
		buf.AppendUint8(v.Version)
	case leafSchema:
		buf.AppendVarint(uint64(leafTag(v)))
	case STag:
		buf.AppendVarint(uint64(tagSTag))
		EncodeTag(v.Value, buf)
		EncodeSchema(v.Schema, buf)
	default:
		panic(fmt.Sprintf("schemawire: unknown Schema constructor %T", s))
	}
}

func leafTag(l leafSchema) byte {
	switch l {
	case leafBool:
		return tagSBool
	case leafChar:
		return tagSChar
	case leafW8:
		return tagSW8
	case leafW16:
		return tagSW16
	case leafW32:
		return tagSW32
	case leafW64:
		return tagSW64
	case leafI8:
		return tagSI8
	case leafI16:
		return tagSI16
	case leafI32:
		return tagSI32
	case leafI64:
		return tagSI64
	case leafInteger:
		return tagSInteger
	case leafFloat:
		return tagSFloat
	case leafDouble:
		return tagSDouble
	case leafBytes:
		return tagSBytes
	case leafText:
		return tagSText
	case leafUTCTime:
		return tagSUTCTime
	}
	panic("schemawire: unknown leaf schema")
}

var leafByTag = map[byte]leafSchema{
	tagSBool:    leafBool,
	tagSChar:    leafChar,
	tagSW8:      leafW8,
	tagSW16:     leafW16,
	tagSW32:     leafW32,
	tagSW64:     leafW64,
	tagSI8:      leafI8,
	tagSI16:     leafI16,
	tagSI32:     leafI32,
	tagSI64:     leafI64,
	tagSInteger: leafInteger,
	tagSFloat:   leafFloat,
	tagSDouble:  leafDouble,
	tagSBytes:   leafBytes,
	tagSText:    leafText,
	tagSUTCTime: leafUTCTime,
}

// DecodeSchema reads a Schema value in bootstrap-v3 layout.
func DecodeSchema(r *Reader) (Schema, error) {
	tag := r.ReadVarint()
	switch byte(tag) {
	case tagSFix:
		body, err := DecodeSchema(r)
		if err != nil {
			return nil, err
		}
		return SFix{Body: body}, nil
	case tagSSelf:
		return SSelf{N: r.ReadUint8()}, nil
	case tagSVector:
		el, err := DecodeSchema(r)
		if err != nil {
			return nil, err
		}
		return SVector{Element: el}, nil
	case tagSProduct:
		n := r.ReadVarint()
		fields := make([]Schema, n)
		for i := range fields {
			f, err := DecodeSchema(r)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return SProduct{Fields: fields}, nil
	case tagSRecord:
		n := r.ReadVarint()
		fields := make([]RecordField, n)
		for i := range fields {
			name, err := r.ReadText()
			if err != nil {
				return nil, err
			}
			s, err := DecodeSchema(r)
			if err != nil {
				return nil, err
			}
			fields[i] = RecordField{Name: name, Schema: s}
		}
		return SRecord{Fields: fields}, nil
	case tagSVariant:
		n := r.ReadVarint()
		ctors := make([]VariantConstructor, n)
		for i := range ctors {
			name, err := r.ReadText()
			if err != nil {
				return nil, err
			}
			s, err := DecodeSchema(r)
			if err != nil {
				return nil, err
			}
			ctors[i] = VariantConstructor{Name: name, Schema: s}
		}
		return SVariant{Constructors: ctors}, nil
	case tagSSchema:
		return SSchemaRef{Version: r.ReadUint8()}, nil
	case tagSTag:
		t, err := DecodeTag(r)
		if err != nil {
			return nil, err
		}
		s, err := DecodeSchema(r)
		if err != nil {
			return nil, err
		}
		return STag{Value: t, Schema: s}, nil
	}

	if l, ok := leafByTag[byte(tag)]; ok {
		return l, nil
	}
	return nil, ErrInvalidTag
}

// tag indices within bootstrapTagSchema's Variant, in declaration order.
const (
	tagTagInt byte = iota
	tagTagStr
	tagTagList
)

// zigzagEncode64 maps a signed int64 onto the non-negative range so it can
// travel through the Integer schema's unsigned varint (AppendVarintBig
// rejects negative magnitudes); zigzagDecode64 is its inverse.
func zigzagEncode64(n int64) uint64 { return uint64(n<<1) ^ uint64(n>>63) }

func zigzagDecode64(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// EncodeTag writes a Tag value per bootstrapTagSchema's layout. TagInt is a
// signed int64, but bootstrapTagSchema declares its payload as the
// non-negative Integer schema, so the value is zigzag-mapped before going
// through AppendVarintBig.
func EncodeTag(t Tag, buf *Buffer) {
	switch v := t.(type) {
	case TagInt:
		buf.AppendVarint(uint64(tagTagInt))
		buf.AppendVarintBig(new(big.Int).SetUint64(zigzagEncode64(int64(v))))
	case TagStr:
		buf.AppendVarint(uint64(tagTagStr))
		buf.AppendText(string(v))
	case TagList:
		buf.AppendVarint(uint64(tagTagList))
		buf.AppendVarint(uint64(len(v)))
		for _, e := range v {
			EncodeTag(e, buf)
		}
	default:
		panic(fmt.Sprintf("schemawire: unknown Tag constructor %T", t))
	}
}

// DecodeTag reads a Tag value per bootstrapTagSchema's layout.
func DecodeTag(r *Reader) (Tag, error) {
	tag := r.ReadVarint()
	switch byte(tag) {
	case tagTagInt:
		return TagInt(zigzagDecode64(r.ReadVarintBig().Uint64())), nil
	case tagTagStr:
		s, err := r.ReadText()
		if err != nil {
			return nil, err
		}
		return TagStr(s), nil
	case tagTagList:
		n := r.ReadVarint()
		list := make(TagList, n)
		for i := range list {
			e, err := DecodeTag(r)
			if err != nil {
				return nil, err
			}
			list[i] = e
		}
		return list, nil
	}
	return nil, ErrInvalidTag
}
