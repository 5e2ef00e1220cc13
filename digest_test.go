package schemawire

import "testing"

func TestDigestStableAndDiscriminating(t *testing.T) {
	a := DeriveSchema[frameChild]()
	b := DeriveSchema[frameChild]()
	if Digest(a) != Digest(b) {
		t.Fatalf("identical schemas should have identical digests")
	}

	type frameChildRenamed struct {
		A int64  `schemawire:"a"`
		C string `schemawire:"c"`
	}
	c := DeriveSchema[frameChildRenamed]()
	if Digest(a) == Digest(c) {
		t.Fatalf("structurally different schemas should (almost always) have different digests")
	}
}

func TestEncodeDecodeSchemalessRequiresAgreedSchema(t *testing.T) {
	coder := DeriveCoder[frameChild]()
	original := frameChild{A: 11, B: "eleven"}

	data := EncodeSchemaless(coder, original)
	got, err := DecodeSchemaless(coder, data)
	if err != nil {
		t.Fatalf("DecodeSchemaless: %v", err)
	}
	if got != original {
		t.Fatalf("got %+v, want %+v", got, original)
	}

	// Schemaless framing carries no version byte or schema bytes at all —
	// strictly fewer bytes than the full Serialise framing for the same value.
	full := Serialise(coder, original)
	if len(data) >= len(full) {
		t.Fatalf("schemaless encoding (%d bytes) should be smaller than full framing (%d bytes)", len(data), len(full))
	}
}
