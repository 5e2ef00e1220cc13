package schemawire

import "testing"

func TestSchemaEqual(t *testing.T) {
	rec1 := SRecord{Fields: []RecordField{
		{Name: "a", Schema: SBool},
		{Name: "b", Schema: SVector{Element: SText}},
	}}
	rec2 := SRecord{Fields: []RecordField{
		{Name: "a", Schema: SBool},
		{Name: "b", Schema: SVector{Element: SText}},
	}}
	rec3 := SRecord{Fields: []RecordField{
		{Name: "a", Schema: SBool},
		{Name: "b", Schema: SVector{Element: SBytes}},
	}}

	if !rec1.Equal(rec2) {
		t.Fatalf("structurally identical records should be Equal")
	}
	if rec1.Equal(rec3) {
		t.Fatalf("records with differing field schemas should not be Equal")
	}
	if rec1.Equal(SBool) {
		t.Fatalf("a Record should never Equal a leaf")
	}
}

func TestSchemaEqualFieldOrderMatters(t *testing.T) {
	a := SRecord{Fields: []RecordField{{Name: "x", Schema: SW8}, {Name: "y", Schema: SW16}}}
	b := SRecord{Fields: []RecordField{{Name: "y", Schema: SW16}, {Name: "x", Schema: SW8}}}
	if a.Equal(b) {
		t.Fatalf("field order is part of the schema; reordered records must not be Equal")
	}
}

func TestVariantEqualRequiresSameConstructorOrder(t *testing.T) {
	a := SVariant{Constructors: []VariantConstructor{{Name: "None", Schema: SProduct{}}, {Name: "Some", Schema: SI64}}}
	b := SVariant{Constructors: []VariantConstructor{{Name: "Some", Schema: SI64}, {Name: "None", Schema: SProduct{}}}}
	if a.Equal(b) {
		t.Fatalf("constructor position is the wire tag; reordering must break Equal")
	}
}

func TestUntagStripsNestedTags(t *testing.T) {
	s := STag{Value: TagStr("outer"), Schema: STag{Value: TagInt(1), Schema: SBool}}
	if Untag(s) != SBool {
		t.Fatalf("Untag should strip every layer of STag, got %v", Untag(s))
	}
	if Untag(SBool) != SBool {
		t.Fatalf("Untag on an already-bare schema should be a no-op")
	}
}

func TestTagEqual(t *testing.T) {
	a := TagList{TagStr("x"), TagInt(1)}
	b := TagList{TagStr("x"), TagInt(1)}
	c := TagList{TagInt(1), TagStr("x")}
	if !a.Equal(b) {
		t.Fatalf("identical TagLists should be Equal")
	}
	if a.Equal(c) {
		t.Fatalf("TagLists differing in order should not be Equal")
	}
}

func TestWellFormedRejectsEscapingSelf(t *testing.T) {
	bad := SSelf{N: 0} // no enclosing Fix at all
	if err := WellFormed(bad); err == nil {
		t.Fatalf("a bare Self with no enclosing Fix must fail WellFormed")
	}

	okSelf := SFix{Body: SVector{Element: SSelf{N: 0}}}
	if err := WellFormed(okSelf); err != nil {
		t.Fatalf("Self(0) directly under one Fix should be well-formed: %v", err)
	}

	tooDeep := SFix{Body: SVector{Element: SSelf{N: 1}}}
	if err := WellFormed(tooDeep); err == nil {
		t.Fatalf("Self(1) under only one enclosing Fix should fail WellFormed")
	}
}

func TestWellFormedRejectsDuplicateNames(t *testing.T) {
	dupRecord := SRecord{Fields: []RecordField{{Name: "a", Schema: SBool}, {Name: "a", Schema: SI64}}}
	if err := WellFormed(dupRecord); err == nil {
		t.Fatalf("duplicate record field names should fail WellFormed")
	}

	dupVariant := SVariant{Constructors: []VariantConstructor{{Name: "X", Schema: SBool}, {Name: "X", Schema: SI64}}}
	if err := WellFormed(dupVariant); err == nil {
		t.Fatalf("duplicate variant constructor names should fail WellFormed")
	}
}

func TestWellFormedRejectsUnknownSchemaRef(t *testing.T) {
	if err := WellFormed(SSchemaRef{Version: 250}); err == nil {
		t.Fatalf("a SchemaRef to an unrecognized bootstrap version should fail WellFormed")
	}
	if err := WellFormed(SSchemaRef{Version: CurrentVersion}); err != nil {
		t.Fatalf("a SchemaRef to the current version should be well-formed: %v", err)
	}
}

// TestBootstrapSchemaEncodesItself exercises the "schema of schemas"
// self-description: encoding the bootstrap schema value and decoding it back
// must round-trip exactly, since EncodeSchema/DecodeSchema are themselves
// defined in terms of the very layout bootstrapV3 describes.
func TestBootstrapSchemaEncodesItself(t *testing.T) {
	original, err := Bootstrap(CurrentVersion)
	if err != nil {
		t.Fatalf("Bootstrap(%d): %v", CurrentVersion, err)
	}

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	EncodeSchema(original, buf)

	r := NewReader(buf.Bytes)
	decoded, err := DecodeSchema(&r)
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	if !original.Equal(decoded) {
		t.Fatalf("bootstrap schema did not round-trip through its own encoding:\n got  %v\n want %v", decoded, original)
	}
}

func TestBootstrapUnknownVersion(t *testing.T) {
	if _, err := Bootstrap(200); err == nil {
		t.Fatalf("Bootstrap should reject an unrecognized version")
	}
}

func TestEncodeSchemaRoundtripVariousShapes(t *testing.T) {
	cases := []Schema{
		SBool,
		SInteger,
		SVector{Element: SText},
		SProduct{Fields: []Schema{SW8, SI64, SDouble}},
		SRecord{Fields: []RecordField{{Name: "id", Schema: SW64}, {Name: "name", Schema: SText}}},
		SVariant{Constructors: []VariantConstructor{{Name: "None", Schema: SProduct{}}, {Name: "Some", Schema: SI32}}},
		SFix{Body: SRecord{Fields: []RecordField{{Name: "next", Schema: SVariant{Constructors: []VariantConstructor{
			{Name: "None", Schema: SProduct{}},
			{Name: "Some", Schema: SSelf{N: 0}},
		}}}}}},
		SSchemaRef{Version: CurrentVersion},
		STag{Value: TagStr("optional"), Schema: SBool},
		STag{Value: TagInt(-7), Schema: SI32},
	}

	for _, s := range cases {
		buf := NewBufferFromPool()
		EncodeSchema(s, buf)
		r := NewReader(buf.Bytes)
		decoded, err := DecodeSchema(&r)
		buf.ReturnToPool()
		if err != nil {
			t.Fatalf("DecodeSchema(%v): %v", s, err)
		}
		if !s.Equal(decoded) {
			t.Errorf("schema %v did not round-trip, got %v", s, decoded)
		}
	}
}
