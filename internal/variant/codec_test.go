package variant

import (
	"bytes"
	"testing"
)

func TestRoundTripScalars(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"nil", Nil()},
		{"bool true", NewBool(true)},
		{"bool false", NewBool(false)},
		{"int zero", NewInt(0)},
		{"int negative", NewInt(-12345)},
		{"int large", NewInt(1 << 40)},
		{"float", NewFloat(3.5)},
		{"string empty", NewString("")},
		{"string short", NewString("hi")},
		{"string exact word", NewString("abcd")},
		{"string unicode", NewString("héllo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got.Tag != tt.v.Tag {
				t.Fatalf("Tag = %v, want %v", got.Tag, tt.v.Tag)
			}
			switch tt.v.Tag {
			case TagBool:
				if got.Bool != tt.v.Bool {
					t.Errorf("Bool = %v, want %v", got.Bool, tt.v.Bool)
				}
			case TagInt:
				if got.Int != tt.v.Int {
					t.Errorf("Int = %v, want %v", got.Int, tt.v.Int)
				}
			case TagFloat:
				if got.Float != tt.v.Float {
					t.Errorf("Float = %v, want %v", got.Float, tt.v.Float)
				}
			case TagString:
				if got.Str != tt.v.Str {
					t.Errorf("Str = %q, want %q", got.Str, tt.v.Str)
				}
			}
		})
	}
}

func TestStringPadding(t *testing.T) {
	tests := []struct {
		s        string
		wantSize int
	}{
		{"", 4 + 0},
		{"a", 4 + 4},
		{"ab", 4 + 4},
		{"abc", 4 + 4},
		{"abcd", 4 + 4},
		{"abcde", 4 + 8},
	}

	for _, tt := range tests {
		encoded, err := Encode(NewString(tt.s))
		if err != nil {
			t.Fatalf("Encode(%q) error: %v", tt.s, err)
		}
		headerAndPayload := len(encoded) - 4 // subtract the 4-byte variant header
		if headerAndPayload != tt.wantSize {
			t.Errorf("encoded length for %q = %d, want %d", tt.s, headerAndPayload, tt.wantSize)
		}
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if got.Str != tt.s {
			t.Errorf("decoded %q, want %q", got.Str, tt.s)
		}
	}
}

func TestVector3RoundTrip(t *testing.T) {
	v := NewVector3(1.5, -2.25, 100)
	encoded, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Vector3 != v.Vector3 {
		t.Errorf("Vector3 = %+v, want %+v", got.Vector3, v.Vector3)
	}
}

func TestRect2FieldOrder(t *testing.T) {
	end := Vector2{X: 1, Y: 2}
	pos := Vector2{X: 3, Y: 4}
	size := Vector2{X: 5, Y: 6}
	encoded, err := Encode(NewRect2(end, pos, size))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Rect2.End != end || got.Rect2.Position != pos || got.Rect2.Size != size {
		t.Errorf("Rect2 = %+v, want end=%v pos=%v size=%v", got.Rect2, end, pos, size)
	}
}

func TestDictionaryRoundTrip(t *testing.T) {
	dict := NewDictBuilder().
		Set("type", NewString("handshake")).
		Set("count", NewInt(7)).
		Set("pos", NewVector3(1, 2, 3)).
		Build()

	encoded, err := Encode(dict)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got.Dict) != 3 {
		t.Fatalf("len(Dict) = %d, want 3", len(got.Dict))
	}
	typ, ok := got.Dict.Get("type")
	if !ok || typ.Str != "handshake" {
		t.Errorf("Dict.Get(type) = %+v, ok=%v", typ, ok)
	}
	count, ok := got.Dict.Get("count")
	if !ok || count.Int != 7 {
		t.Errorf("Dict.Get(count) = %+v, ok=%v", count, ok)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	arr := NewArray(NewInt(1), NewInt(2), NewString("three"))
	encoded, err := Encode(arr)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got.Array) != 3 {
		t.Fatalf("len(Array) = %d, want 3", len(got.Array))
	}
	if got.Array[2].Str != "three" {
		t.Errorf("Array[2] = %+v, want three", got.Array[2])
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	// Tag 9 is reserved and not implemented.
	data := []byte{9, 0, 0, 0}
	_, err := Decode(data)
	var decErr *DecodeError
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if !errorsAsDecodeError(err, &decErr) || decErr.Kind != KindUnknownTag {
		t.Errorf("error = %v, want KindUnknownTag", err)
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	// A String header claiming a payload longer than the input has.
	data := []byte{4, 0, 0, 0, 10, 0, 0, 0, 'h', 'i'}
	_, err := Decode(data)
	var decErr *DecodeError
	if err == nil {
		t.Fatal("expected truncation error")
	}
	if !errorsAsDecodeError(err, &decErr) || decErr.Kind != KindTruncatedInput {
		t.Errorf("error = %v, want KindTruncatedInput", err)
	}
}

func TestDecodeNonStringDictionaryKeySkipsEntry(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, TagDictionary, false)
	var count [4]byte
	count[0] = 2
	buf.Write(count[:])

	// Entry 1: a non-string key (Int) -- must be skipped, not fatal.
	badKey, _ := Encode(NewInt(1))
	badVal, _ := Encode(NewString("ignored"))
	buf.Write(badKey)
	buf.Write(badVal)

	// Entry 2: a valid string-keyed entry that must still decode.
	goodKey, _ := Encode(NewString("ok"))
	goodVal, _ := Encode(NewInt(42))
	buf.Write(goodKey)
	buf.Write(goodVal)

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got.Dict) != 1 {
		t.Fatalf("len(Dict) = %d, want 1 (bad entry discarded)", len(got.Dict))
	}
	v, ok := got.Dict.Get("ok")
	if !ok || v.Int != 42 {
		t.Errorf("Dict.Get(ok) = %+v, ok=%v", v, ok)
	}
}

func TestEncodeUnsupportedTag(t *testing.T) {
	_, err := Encode(Value{Tag: Tag(99)})
	if err == nil {
		t.Fatal("expected UnsupportedVariant error")
	}
	var uErr *UnsupportedVariant
	if !errorsAsUnsupported(err, &uErr) {
		t.Errorf("error = %v, want *UnsupportedVariant", err)
	}
}

func errorsAsDecodeError(err error, target **DecodeError) bool {
	if de, ok := err.(*DecodeError); ok {
		*target = de
		return true
	}
	return false
}

func errorsAsUnsupported(err error, target **UnsupportedVariant) bool {
	if ue, ok := err.(*UnsupportedVariant); ok {
		*target = ue
		return true
	}
	return false
}
