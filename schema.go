// Package schemawire implements a self-describing binary serialization
// format: every encoded payload carries, as a prefix, a structural
// description (a Schema) of its own contents, so a receiver can decode,
// inspect, or pretty-print it without the producer's type definitions, and
// can adapt structural mismatches (missing fields, reordered records,
// removed variant constructors) through the planner in extractor.go.
package schemawire

import "fmt"

// Schema is a value describing the structural shape of encoded data (§3).
// It is a closed recursive sum; every constructor below implements it via
// an unexported marker method, the same "closed sum via unexported
// interface method" idiom the teacher uses for its decoder/encoder
// interfaces.
type Schema interface {
	isSchema()
	// Equal reports structural equality: same constructor, equal fields.
	// Fix and Self participate literally, with no alpha-equivalence.
	Equal(Schema) bool
	fmt.Stringer
}

// --- leaves with no payload ---

type leafSchema byte

const (
	leafBool leafSchema = iota
	leafChar
	leafW8
	leafW16
	leafW32
	leafW64
	leafI8
	leafI16
	leafI32
	leafI64
	leafInteger
	leafFloat
	leafDouble
	leafBytes
	leafText
	leafUTCTime
)

func (leafSchema) isSchema() {}

func (l leafSchema) Equal(o Schema) bool {
	v, ok := o.(leafSchema)
	return ok && v == l
}

func (l leafSchema) String() string {
	return leafNames[l]
}

var leafNames = map[leafSchema]string{
	leafBool:    "Bool",
	leafChar:    "Char",
	leafW8:      "W8",
	leafW16:     "W16",
	leafW32:     "W32",
	leafW64:     "W64",
	leafI8:      "I8",
	leafI16:     "I16",
	leafI32:     "I32",
	leafI64:     "I64",
	leafInteger: "Integer",
	leafFloat:   "Float",
	leafDouble:  "Double",
	leafBytes:   "Bytes",
	leafText:    "Text",
	leafUTCTime: "UTCTime",
}

// Exported singleton leaf schemas.
var (
	SBool    Schema = leafBool
	SChar    Schema = leafChar
	SW8      Schema = leafW8
	SW16     Schema = leafW16
	SW32     Schema = leafW32
	SW64     Schema = leafW64
	SI8      Schema = leafI8
	SI16     Schema = leafI16
	SI32     Schema = leafI32
	SI64     Schema = leafI64
	SInteger Schema = leafInteger
	SFloat   Schema = leafFloat
	SDouble  Schema = leafDouble
	SBytes   Schema = leafBytes
	SText    Schema = leafText
	SUTCTime Schema = leafUTCTime
)

// SSchemaRef refers to the schema-of-schemas at a given bootstrap version.
type SSchemaRef struct {
	Version byte
}

func (SSchemaRef) isSchema() {}

func (s SSchemaRef) Equal(o Schema) bool {
	v, ok := o.(SSchemaRef)
	return ok && v.Version == s.Version
}

func (s SSchemaRef) String() string { return fmt.Sprintf("SchemaRef(%d)", s.Version) }

// SVector is a homogeneous variable-length array.
type SVector struct {
	Element Schema
}

func (SVector) isSchema() {}

func (s SVector) Equal(o Schema) bool {
	v, ok := o.(SVector)
	return ok && schemaEqual(v.Element, s.Element)
}

func (s SVector) String() string { return fmt.Sprintf("Vector(%s)", s.Element) }

// SProduct is a positional tuple.
type SProduct struct {
	Fields []Schema
}

func (SProduct) isSchema() {}

func (s SProduct) Equal(o Schema) bool {
	v, ok := o.(SProduct)
	if !ok || len(v.Fields) != len(s.Fields) {
		return false
	}
	for i := range s.Fields {
		if !schemaEqual(s.Fields[i], v.Fields[i]) {
			return false
		}
	}
	return true
}

func (s SProduct) String() string { return fmt.Sprintf("Product%v", s.Fields) }

// RecordField is a single named field within an SRecord, in declared order.
type RecordField struct {
	Name   string
	Schema Schema
}

// SRecord is a record with named fields; field order is part of the schema.
type SRecord struct {
	Fields []RecordField
}

func (SRecord) isSchema() {}

func (s SRecord) Equal(o Schema) bool {
	v, ok := o.(SRecord)
	if !ok || len(v.Fields) != len(s.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != v.Fields[i].Name || !schemaEqual(s.Fields[i].Schema, v.Fields[i].Schema) {
			return false
		}
	}
	return true
}

func (s SRecord) String() string {
	out := "Record{"
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Schema.String()
	}
	return out + "}"
}

// VariantConstructor is a single named alternative within an SVariant; its
// position defines the wire tag index.
type VariantConstructor struct {
	Name   string
	Schema Schema
}

// SVariant is a sum of named alternatives.
type SVariant struct {
	Constructors []VariantConstructor
}

func (SVariant) isSchema() {}

func (s SVariant) Equal(o Schema) bool {
	v, ok := o.(SVariant)
	if !ok || len(v.Constructors) != len(s.Constructors) {
		return false
	}
	for i := range s.Constructors {
		if s.Constructors[i].Name != v.Constructors[i].Name || !schemaEqual(s.Constructors[i].Schema, v.Constructors[i].Schema) {
			return false
		}
	}
	return true
}

func (s SVariant) String() string {
	out := "Variant{"
	for i, c := range s.Constructors {
		if i > 0 {
			out += ", "
		}
		out += c.Name + ": " + c.Schema.String()
	}
	return out + "}"
}

// SFix binds a fixpoint around a recursive schema body.
type SFix struct {
	Body Schema
}

func (SFix) isSchema() {}

func (s SFix) Equal(o Schema) bool {
	v, ok := o.(SFix)
	return ok && schemaEqual(v.Body, s.Body)
}

func (s SFix) String() string { return fmt.Sprintf("Fix(%s)", s.Body) }

// SSelf refers to the n-th enclosing Fix (0 = innermost).
type SSelf struct {
	N byte
}

func (SSelf) isSchema() {}

func (s SSelf) Equal(o Schema) bool {
	v, ok := o.(SSelf)
	return ok && v.N == s.N
}

func (s SSelf) String() string { return fmt.Sprintf("Self(%d)", s.N) }

// STag attaches uninterpreted metadata to a schema node.
type STag struct {
	Value  Tag
	Schema Schema
}

func (STag) isSchema() {}

func (s STag) Equal(o Schema) bool {
	v, ok := o.(STag)
	return ok && s.Value.Equal(v.Value) && schemaEqual(v.Schema, s.Schema)
}

func (s STag) String() string { return fmt.Sprintf("Tag(%v, %s)", s.Value, s.Schema) }

func schemaEqual(a, b Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Untag strips any number of enclosing STag wrappers, returning the first
// non-Tag schema beneath. The core never dispatches on Tag's contents, so
// every internal consumer (codecs, the planner, the term decoder) calls
// this before switching on a Schema's constructor.
func Untag(s Schema) Schema {
	for {
		t, ok := s.(STag)
		if !ok {
			return s
		}
		s = t.Schema
	}
}

// WellFormed checks the invariants of §3: every Self(n) occurs under at
// least n+1 enclosing Fix nodes, record field names are unique within one
// record, and variant constructor names are unique within one variant.
func WellFormed(s Schema) error {
	return wellFormed(s, 0)
}

func wellFormed(s Schema, fixDepth int) error {
	switch v := Untag(s).(type) {
	case SSelf:
		if int(v.N)+1 > fixDepth {
			return fmt.Errorf("schemawire: Self(%d) escapes its enclosing Fix nest (depth %d)", v.N, fixDepth)
		}
	case SFix:
		return wellFormed(v.Body, fixDepth+1)
	case SVector:
		return wellFormed(v.Element, fixDepth)
	case SProduct:
		for _, f := range v.Fields {
			if err := wellFormed(f, fixDepth); err != nil {
				return err
			}
		}
	case SRecord:
		seen := make(map[string]bool, len(v.Fields))
		for _, f := range v.Fields {
			if seen[f.Name] {
				return fmt.Errorf("schemawire: duplicate record field name %q", f.Name)
			}
			seen[f.Name] = true
			if err := wellFormed(f.Schema, fixDepth); err != nil {
				return err
			}
		}
	case SVariant:
		seen := make(map[string]bool, len(v.Constructors))
		for _, c := range v.Constructors {
			if seen[c.Name] {
				return fmt.Errorf("schemawire: duplicate variant constructor name %q", c.Name)
			}
			seen[c.Name] = true
			if err := wellFormed(c.Schema, fixDepth); err != nil {
				return err
			}
		}
	case SSchemaRef:
		if _, ok := bootstrapTable[v.Version]; !ok {
			return fmt.Errorf("schemawire: SchemaRef(%d) names an unrecognized bootstrap version", v.Version)
		}
	}
	return nil
}
