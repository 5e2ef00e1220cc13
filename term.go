package schemawire

import (
	"fmt"
	"math/big"
)

// Term is the generic decoded value (§3): a schema-indexed representation
// of any schema-conformant payload, used for inspection, pretty printing,
// and as the planner's intermediate form. A Term is always implicitly
// paired with the Schema it was decoded against; TVariant/TRecord carry
// names populated from that schema, never from the wire.
//
// Grounded on mapdecoder.go/mapencoder.go's reflect-driven generic
// map[string]any representation, generalized into an explicit algebraic
// type matching Schema's shape one-for-one.
type Term interface {
	isTerm()
	fmt.Stringer
}

type (
	TBool    bool
	TChar    rune
	TW8      uint8
	TW16     uint16
	TW32     uint32
	TW64     uint64
	TI8      int8
	TI16     int16
	TI32     int32
	TI64     int64
	TInteger struct{ Value *big.Int }
	TFloat   float32
	TDouble  float64
	TBytes   []byte
	TText    string
	TUTCTime float64
)

func (TBool) isTerm()    {}
func (TChar) isTerm()    {}
func (TW8) isTerm()      {}
func (TW16) isTerm()     {}
func (TW32) isTerm()     {}
func (TW64) isTerm()     {}
func (TI8) isTerm()      {}
func (TI16) isTerm()     {}
func (TI32) isTerm()     {}
func (TI64) isTerm()     {}
func (TInteger) isTerm() {}
func (TFloat) isTerm()   {}
func (TDouble) isTerm()  {}
func (TBytes) isTerm()   {}
func (TText) isTerm()    {}
func (TUTCTime) isTerm() {}

func (t TBool) String() string    { return fmt.Sprintf("%t", bool(t)) }
func (t TChar) String() string    { return fmt.Sprintf("%q", rune(t)) }
func (t TW8) String() string      { return fmt.Sprintf("%d", uint8(t)) }
func (t TW16) String() string     { return fmt.Sprintf("%d", uint16(t)) }
func (t TW32) String() string     { return fmt.Sprintf("%d", uint32(t)) }
func (t TW64) String() string     { return fmt.Sprintf("%d", uint64(t)) }
func (t TI8) String() string      { return fmt.Sprintf("%d", int8(t)) }
func (t TI16) String() string     { return fmt.Sprintf("%d", int16(t)) }
func (t TI32) String() string     { return fmt.Sprintf("%d", int32(t)) }
func (t TI64) String() string     { return fmt.Sprintf("%d", int64(t)) }
func (t TInteger) String() string { return t.Value.String() }
func (t TFloat) String() string   { return fmt.Sprintf("%g", float32(t)) }
func (t TDouble) String() string  { return fmt.Sprintf("%g", float64(t)) }
func (t TBytes) String() string   { return fmt.Sprintf("%x", []byte(t)) }
func (t TText) String() string    { return fmt.Sprintf("%q", string(t)) }
func (t TUTCTime) String() string { return fmt.Sprintf("%gs", float64(t)) }

// TVector is a decoded Vector: a homogeneous sequence of Terms.
type TVector struct {
	Elements []Term
}

func (TVector) isTerm() {}

func (t TVector) String() string {
	out := "["
	for i, e := range t.Elements {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out + "]"
}

// TProduct is a decoded positional tuple.
type TProduct struct {
	Elements []Term
}

func (TProduct) isTerm() {}

func (t TProduct) String() string {
	out := "("
	for i, e := range t.Elements {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out + ")"
}

// RecordFieldValue pairs a decoded field's name (from the schema) with its
// decoded value, preserving the order the schema declared it in.
type RecordFieldValue struct {
	Name  string
	Value Term
}

// TRecord is a decoded record; field order matches the schema it was
// decoded against, not necessarily alphabetical or the target's own order.
type TRecord struct {
	Fields []RecordFieldValue
}

func (TRecord) isTerm() {}

func (t TRecord) String() string {
	out := "{"
	for i, f := range t.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Value.String()
	}
	return out + "}"
}

// Lookup returns the value of the named field and whether it was present.
func (t TRecord) Lookup(name string) (Term, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// TVariant is a decoded sum value: the wire tag, the constructor name (from
// the schema, not the wire), and the decoded payload.
type TVariant struct {
	Tag     uint32
	Name    string
	Payload Term
}

func (TVariant) isTerm() {}

func (t TVariant) String() string {
	return fmt.Sprintf("%s(%s)", t.Name, t.Payload)
}
