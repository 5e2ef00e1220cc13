package schemawire

import (
	"math"
	"testing"
	"time"
	"unicode/utf8"
)

// TestPrimitiveRoundtrip consolidates all scalar wire encodings into one
// table-driven test, mirroring glint_test.go's TestBasicTypesEncodeDecodeRoundtrip.
func TestPrimitiveRoundtrip(t *testing.T) {
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()

	t.Run("Bool", func(t *testing.T) {
		buf.Reset()
		buf.AppendBool(true)
		buf.AppendBool(false)
		r := NewReader(buf.Bytes)
		if got := r.ReadBool(); got != true {
			t.Errorf("got %v, want true", got)
		}
		if got := r.ReadBool(); got != false {
			t.Errorf("got %v, want false", got)
		}
	})

	t.Run("Char", func(t *testing.T) {
		buf.Reset()
		buf.AppendChar('λ')
		r := NewReader(buf.Bytes)
		if got := r.ReadChar(); got != 'λ' {
			t.Errorf("got %q, want %q", got, 'λ')
		}
	})

	t.Run("UnsignedWidths", func(t *testing.T) {
		buf.Reset()
		buf.AppendUint8(math.MaxUint8)
		buf.AppendUint16(math.MaxUint16)
		buf.AppendUint32(math.MaxUint32)
		buf.AppendUint64(math.MaxUint64)
		r := NewReader(buf.Bytes)
		if got := r.ReadUint8(); got != math.MaxUint8 {
			t.Errorf("uint8: got %d", got)
		}
		if got := r.ReadUint16(); got != math.MaxUint16 {
			t.Errorf("uint16: got %d", got)
		}
		if got := r.ReadUint32(); got != math.MaxUint32 {
			t.Errorf("uint32: got %d", got)
		}
		if got := r.ReadUint64(); got != math.MaxUint64 {
			t.Errorf("uint64: got %d", got)
		}
	})

	t.Run("SignedWidthsNoZigzag", func(t *testing.T) {
		buf.Reset()
		buf.AppendInt8(math.MinInt8)
		buf.AppendInt16(math.MinInt16)
		buf.AppendInt32(math.MinInt32)
		buf.AppendInt64(math.MinInt64)
		r := NewReader(buf.Bytes)
		if got := r.ReadInt8(); got != math.MinInt8 {
			t.Errorf("int8: got %d", got)
		}
		if got := r.ReadInt16(); got != math.MinInt16 {
			t.Errorf("int16: got %d", got)
		}
		if got := r.ReadInt32(); got != math.MinInt32 {
			t.Errorf("int32: got %d", got)
		}
		if got := r.ReadInt64(); got != math.MinInt64 {
			t.Errorf("int64: got %d", got)
		}
	})

	t.Run("Floats", func(t *testing.T) {
		buf.Reset()
		buf.AppendFloat32(float32(math.Pi))
		buf.AppendFloat64(math.Pi)
		r := NewReader(buf.Bytes)
		if got := r.ReadFloat32(); got != float32(math.Pi) {
			t.Errorf("float32: got %v", got)
		}
		if got := r.ReadFloat64(); got != math.Pi {
			t.Errorf("float64: got %v", got)
		}
	})

	t.Run("TextAndBytes", func(t *testing.T) {
		buf.Reset()
		buf.AppendText("héllo, 世界")
		buf.AppendBytes([]byte{0xff, 0x00, 0x01, 0xfe})
		r := NewReader(buf.Bytes)
		s, err := r.ReadText()
		if err != nil {
			t.Fatalf("ReadText: %v", err)
		}
		if s != "héllo, 世界" {
			t.Errorf("got %q", s)
		}
		b := r.ReadBytes()
		if string(b) != "\xff\x00\x01\xfe" {
			t.Errorf("got %x", b)
		}
	})

	t.Run("UTCTime", func(t *testing.T) {
		buf.Reset()
		want := time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)
		buf.AppendUTCTime(float64(want.UnixNano()) / float64(time.Second))
		r := NewReader(buf.Bytes)
		secs := r.ReadUTCTime()
		got := time.Unix(0, int64(secs*float64(time.Second))).UTC()
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestVarintRoundtripBoundaries(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 16383, 16384, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		buf := NewBufferFromPool()
		buf.AppendVarint(v)
		r := NewReader(buf.Bytes)
		if got := r.ReadVarint(); got != v {
			t.Errorf("varint %d round-tripped as %d", v, got)
		}
		buf.ReturnToPool()
	}
}

func TestVarintSkip(t *testing.T) {
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	buf.AppendVarint(123456789)
	buf.AppendUint8(42)
	r := NewReader(buf.Bytes)
	r.SkipVarint()
	if got := r.ReadUint8(); got != 42 {
		t.Errorf("byte after skipped varint: got %d, want 42", got)
	}
}

func FuzzPrimitiveRoundtrip(f *testing.F) {
	f.Add("", int64(0), uint64(0), float64(0), true, []byte{})
	f.Add("hello", int64(math.MinInt64), uint64(math.MaxUint64), math.NaN(), false, []byte{0x00, 0xff})
	f.Add(string([]byte{0xff, 0xfe}), int64(math.MaxInt64), uint64(1), math.Inf(1), true, []byte("\x00\x00\x00"))

	f.Fuzz(func(t *testing.T, str string, i64 int64, u64 uint64, f64 float64, b bool, raw []byte) {
		buf := NewBufferFromPool()
		defer buf.ReturnToPool()

		buf.AppendText(str)
		buf.AppendInt64(i64)
		buf.AppendUint64(u64)
		buf.AppendFloat64(f64)
		buf.AppendBool(b)
		buf.AppendBytes(raw)

		r := NewReader(buf.Bytes)
		gotStr, err := r.ReadText()
		if !utf8.ValidString(str) {
			// ReadText validates UTF-8 on decode, so invalid text must be rejected.
			if err != ErrInvalidUTF8 {
				t.Fatalf("ReadText of invalid UTF-8: got err %v, want ErrInvalidUTF8", err)
			}
		} else {
			if err != nil {
				t.Fatalf("ReadText: %v", err)
			}
			if gotStr != str {
				t.Fatalf("text mismatch: got %q want %q", gotStr, str)
			}
		}
		if got := r.ReadInt64(); got != i64 {
			t.Fatalf("int64 mismatch: got %d want %d", got, i64)
		}
		if got := r.ReadUint64(); got != u64 {
			t.Fatalf("uint64 mismatch: got %d want %d", got, u64)
		}
		gotF := r.ReadFloat64()
		if !(math.IsNaN(gotF) && math.IsNaN(f64)) && gotF != f64 {
			t.Fatalf("float64 mismatch: got %v want %v", gotF, f64)
		}
		if got := r.ReadBool(); got != b {
			t.Fatalf("bool mismatch: got %v want %v", got, b)
		}
		if gotRaw := r.ReadBytes(); string(gotRaw) != string(raw) {
			t.Fatalf("bytes mismatch: got %x want %x", gotRaw, raw)
		}
	})
}
