package schemawire

import (
	"math/big"
	"testing"
	"time"
)

func planAndRun[T any](t *testing.T, e Extractor[T], s Schema, term Term) T {
	t.Helper()
	fn, err := e.Plan(s)
	if err != nil {
		t.Fatalf("Plan(%v): %v", s, err)
	}
	return fn(term)
}

func TestExtractPrimitives(t *testing.T) {
	if got := planAndRun(t, ExtractBool(), SBool, TBool(true)); got != true {
		t.Errorf("ExtractBool: got %v", got)
	}
	if got := planAndRun(t, ExtractText(), SText, TText("hi")); got != "hi" {
		t.Errorf("ExtractText: got %v", got)
	}
	if got := planAndRun(t, ExtractBytes(), SBytes, TBytes([]byte{1, 2})); string(got) != "\x01\x02" {
		t.Errorf("ExtractBytes: got %x", got)
	}
}

func TestExtractMismatchIsPlanError(t *testing.T) {
	_, err := ExtractBool().Plan(SText)
	if err == nil {
		t.Fatalf("expected a plan error extracting Bool from a Text schema")
	}
	if _, ok := err.(*PlanError); !ok {
		t.Fatalf("expected *PlanError, got %T", err)
	}
}

func TestExtractIntegerWideningRules(t *testing.T) {
	// Narrower-than-target widens cleanly.
	if got := planAndRun(t, ExtractI64(), SI32, TI32(-7)); got != -7 {
		t.Errorf("widen I32->I64: got %d", got)
	}
	if got := planAndRun(t, ExtractW32(), SW8, TW8(9)); got != 9 {
		t.Errorf("widen W8->W32: got %d", got)
	}

	// Wider-than-target fails to plan (lossy narrowing is a plan-time error,
	// not a silent truncation).
	if _, err := ExtractI8().Plan(SI64); err == nil {
		t.Fatalf("expected I64->I8 narrowing to fail planning")
	}
}

func TestExtractFloatWidening(t *testing.T) {
	if got := planAndRun(t, ExtractFloat64(), SFloat, TFloat(1.5)); got != 1.5 {
		t.Errorf("widen Float->Float64: got %v", got)
	}
	if _, err := ExtractFloat32().Plan(SDouble); err == nil {
		t.Fatalf("narrowing Double->Float32 should fail planning")
	}
}

func TestExtractInteger(t *testing.T) {
	got := planAndRun(t, ExtractInteger(), SI64, TI64(-42))
	if got.Cmp(big.NewInt(-42)) != 0 {
		t.Errorf("got %v", got)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	got2 := planAndRun(t, ExtractInteger(), SInteger, TInteger{Value: huge})
	if got2.Cmp(huge) != 0 {
		t.Errorf("got %v, want %v", got2, huge)
	}
}

func TestExtractUTCTime(t *testing.T) {
	want := time.Date(2020, time.July, 4, 0, 0, 0, 0, time.UTC)
	secs := float64(want.UnixNano()) / float64(time.Second)
	got := planAndRun(t, ExtractUTCTime(), SUTCTime, TUTCTime(secs))
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMapExtractor(t *testing.T) {
	e := MapExtractor(ExtractI64(), func(v int64) string {
		if v < 0 {
			return "negative"
		}
		return "non-negative"
	})
	if got := planAndRun(t, e, SI64, TI64(-1)); got != "negative" {
		t.Errorf("got %q", got)
	}
}

func TestPairExtractor(t *testing.T) {
	e := PairExtractor(ExtractField("a", ExtractI64()), ExtractField("b", ExtractText()), func(a int64, b string) string {
		return b
	})
	rec := SRecord{Fields: []RecordField{{Name: "a", Schema: SI64}, {Name: "b", Schema: SText}}}
	term := TRecord{Fields: []RecordFieldValue{{Name: "a", Value: TI64(1)}, {Name: "b", Value: TText("x")}}}
	if got := planAndRun(t, e, rec, term); got != "x" {
		t.Errorf("got %q", got)
	}
}

func TestOrExtractorFallsBackOnPlanFailure(t *testing.T) {
	e := OrExtractor(ExtractI64(), MapExtractor(ExtractText(), func(s string) int64 { return int64(len(s)) }))
	if got := planAndRun(t, e, SText, TText("abcd")); got != 4 {
		t.Errorf("got %d", got)
	}
	if got := planAndRun(t, e, SI64, TI64(9)); got != 9 {
		t.Errorf("got %d", got)
	}
}

func TestConstExtractor(t *testing.T) {
	e := ConstExtractor("fallback")
	if got := planAndRun(t, e, SBool, TBool(true)); got != "fallback" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSlice(t *testing.T) {
	e := ExtractSlice(ExtractI64())
	schema := SVector{Element: SI64}
	term := TVector{Elements: []Term{TI64(1), TI64(2), TI64(3)}}
	got := planAndRun(t, e, schema, term)
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("got %v", got)
	}
}

func TestExtractPairTripleQuad(t *testing.T) {
	pairSchema := SProduct{Fields: []Schema{SBool, SText}}
	pairTerm := TProduct{Elements: []Term{TBool(true), TText("x")}}
	p := planAndRun(t, ExtractPair(ExtractBool(), ExtractText()), pairSchema, pairTerm)
	if !p.First || p.Second != "x" {
		t.Errorf("got %+v", p)
	}

	tripleSchema := SProduct{Fields: []Schema{SI64, SI64, SI64}}
	tripleTerm := TProduct{Elements: []Term{TI64(1), TI64(2), TI64(3)}}
	tr := planAndRun(t, ExtractTriple(ExtractI64(), ExtractI64(), ExtractI64()), tripleSchema, tripleTerm)
	if tr.First != 1 || tr.Second != 2 || tr.Third != 3 {
		t.Errorf("got %+v", tr)
	}

	quadSchema := SProduct{Fields: []Schema{SBool, SBool, SBool, SBool}}
	quadTerm := TProduct{Elements: []Term{TBool(true), TBool(false), TBool(true), TBool(false)}}
	q := planAndRun(t, ExtractQuad(ExtractBool(), ExtractBool(), ExtractBool(), ExtractBool()), quadSchema, quadTerm)
	if !q.First || q.Second || !q.Third || q.Fourth {
		t.Errorf("got %+v", q)
	}
}

func TestExtractMapAndSet(t *testing.T) {
	pairSchema := SProduct{Fields: []Schema{SText, SI64}}
	schema := SVector{Element: pairSchema}
	term := TVector{Elements: []Term{
		TProduct{Elements: []Term{TText("a"), TI64(1)}},
		TProduct{Elements: []Term{TText("b"), TI64(2)}},
	}}
	m := planAndRun(t, ExtractMap(ExtractText(), ExtractI64()), schema, term)
	if m["a"] != 1 || m["b"] != 2 {
		t.Errorf("got %v", m)
	}

	setSchema := SVector{Element: SText}
	setTerm := TVector{Elements: []Term{TText("x"), TText("y")}}
	set := planAndRun(t, ExtractSet(ExtractText()), setSchema, setTerm)
	if _, ok := set["x"]; !ok {
		t.Errorf("expected %q in set, got %v", "x", set)
	}
}

func TestExtractMaybe(t *testing.T) {
	schema := SVariant{Constructors: []VariantConstructor{{Name: "None", Schema: SProduct{}}, {Name: "Some", Schema: SI64}}}
	none := planAndRun(t, ExtractMaybe(ExtractI64()), schema, TVariant{Tag: 0, Name: "None", Payload: TProduct{}})
	if none.Valid {
		t.Errorf("expected invalid Maybe, got %+v", none)
	}
	some := planAndRun(t, ExtractMaybe(ExtractI64()), schema, TVariant{Tag: 1, Name: "Some", Payload: TI64(5)})
	if !some.Valid || some.Value != 5 {
		t.Errorf("got %+v", some)
	}
}

func TestExtractEither(t *testing.T) {
	schema := SVariant{Constructors: []VariantConstructor{{Name: "Left", Schema: SText}, {Name: "Right", Schema: SI64}}}
	left := planAndRun(t, ExtractEither(ExtractText(), ExtractI64()), schema, TVariant{Tag: 0, Name: "Left", Payload: TText("err")})
	if left.IsRight || left.Left != "err" {
		t.Errorf("got %+v", left)
	}
	right := planAndRun(t, ExtractEither(ExtractText(), ExtractI64()), schema, TVariant{Tag: 1, Name: "Right", Payload: TI64(9)})
	if !right.IsRight || right.Right != 9 {
		t.Errorf("got %+v", right)
	}
}

func TestExtractFieldMissing(t *testing.T) {
	rec := SRecord{Fields: []RecordField{{Name: "a", Schema: SBool}}}
	if _, err := ExtractField[int64]("missing", ExtractI64()).Plan(rec); err == nil {
		t.Fatalf("expected MissingField error")
	}
}

// intTree is the hand-built host type for spec.md Scenario F's recursive
// schema `Fix(Variant[("Leaf", Product[]), ("Node", Product[I32, Self 0, Self 0])])`.
type intTree struct {
	Leaf        bool
	Value       int32
	Left, Right *intTree
}

func extractIntTree() Extractor[*intTree] {
	return FixExtractor(func(self Extractor[*intTree]) Extractor[*intTree] {
		return ExtractVariant(
			VariantCaseOf("Leaf", ExtractUnit(), func(struct{}) *intTree { return &intTree{Leaf: true} }),
			VariantCaseOf("Node", ExtractTriple(ExtractI32(), self, self), func(tr Triple[int32, *intTree, *intTree]) *intTree {
				return &intTree{Value: tr.First, Left: tr.Second, Right: tr.Third}
			}),
		)
	})
}

func intTreeSchema() Schema {
	return SFix{Body: SVariant{Constructors: []VariantConstructor{
		{Name: "Leaf", Schema: SProduct{}},
		{Name: "Node", Schema: SProduct{Fields: []Schema{SI32, SSelf{N: 0}, SSelf{N: 0}}}},
	}}}
}

func TestExtractVariantSubsetAccepted(t *testing.T) {
	// Target tolerates a writer schema whose constructor set is a strict
	// subset of the target's own (§8 property 6).
	schema := SVariant{Constructors: []VariantConstructor{{Name: "Leaf", Schema: SProduct{}}}}
	fn, err := ExtractVariant(
		VariantCaseOf("Leaf", ExtractUnit(), func(struct{}) string { return "leaf" }),
		VariantCaseOf("Node", ExtractUnit(), func(struct{}) string { return "node" }),
	).Plan(schema)
	if err != nil {
		t.Fatalf("subset variant should plan: %v", err)
	}
	if got := fn(TVariant{Tag: 0, Name: "Leaf", Payload: TProduct{}}); got != "leaf" {
		t.Errorf("got %q", got)
	}
}

func TestExtractVariantUnknownConstructorFailsPlan(t *testing.T) {
	// The reverse of the subset case: an incoming constructor name the
	// target doesn't recognize at all must fail at plan time, not decode
	// silently (§4.7 step 2, §8 property 6 "the reverse fails at plan time").
	schema := SVariant{Constructors: []VariantConstructor{{Name: "Mystery", Schema: SProduct{}}}}
	_, err := ExtractVariant(
		VariantCaseOf("Leaf", ExtractUnit(), func(struct{}) string { return "leaf" }),
	).Plan(schema)
	if err == nil {
		t.Fatalf("expected plan failure for an unrecognized incoming constructor")
	}
}

func TestFixExtractorRecursiveTree(t *testing.T) {
	schema := intTreeSchema()
	fn, err := extractIntTree().Plan(schema)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	term := TVariant{Tag: 1, Name: "Node", Payload: TProduct{Elements: []Term{
		TI32(1),
		TVariant{Tag: 0, Name: "Leaf", Payload: TProduct{}},
		TVariant{Tag: 0, Name: "Leaf", Payload: TProduct{}},
	}}}
	got := fn(term)
	if got.Leaf || got.Value != 1 || !got.Left.Leaf || !got.Right.Leaf {
		t.Fatalf("got %+v", got)
	}
}

// TestScenarioFRecursiveTreeWireFormat round-trips spec.md §8 Scenario F
// end to end: decode the literal wire bytes into a Term against the
// recursive schema, then plan-and-extract into intTree.
func TestScenarioFRecursiveTreeWireFormat(t *testing.T) {
	schema := intTreeSchema()
	wire := []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	r := NewReader(wire)
	term, err := DecodeTerm(schema, &r)
	if err != nil {
		t.Fatalf("DecodeTerm: %v", err)
	}
	fn, err := extractIntTree().Plan(schema)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	got := fn(term)
	if got.Leaf || got.Value != 1 || !got.Left.Leaf || !got.Right.Leaf {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractConstructorAbsentNameIsAlwaysNone(t *testing.T) {
	schema := SVariant{Constructors: []VariantConstructor{{Name: "A", Schema: SProduct{}}}}
	e := ExtractConstructor("B", ConstExtractor(struct{}{}))
	fn, err := e.Plan(schema)
	if err != nil {
		t.Fatalf("Plan should succeed even though constructor B is absent: %v", err)
	}
	got := fn(TVariant{Tag: 0, Name: "A", Payload: TProduct{}})
	if got.Valid {
		t.Fatalf("expected None for a name absent from the schema, got %+v", got)
	}
}
