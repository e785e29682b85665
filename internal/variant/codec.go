package variant

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// UnsupportedVariant is returned by Encode when asked to serialize a
// Value whose Tag has no wire representation.
type UnsupportedVariant struct {
	Tag Tag
}

func (e *UnsupportedVariant) Error() string {
	return fmt.Sprintf("variant: unsupported tag for encode: %s", e.Tag)
}

// DecodeErrorKind classifies a failure to parse the wire bytes.
type DecodeErrorKind int

const (
	KindUnknownTag DecodeErrorKind = iota
	KindTruncatedInput
	KindBadUTF8
	KindNonStringDictionaryKey
)

// DecodeError reports where and why decoding failed. Callers in
// internal/wire treat every DecodeError as "log and drop" per spec
// error-handling design; NonStringDictionaryKey is special in that the
// decoder recovers from it internally and never returns it to the
// caller (the offending entry is just skipped).
type DecodeError struct {
	Kind DecodeErrorKind
	Tag  Tag
	Err  error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindUnknownTag:
		return fmt.Sprintf("variant: unknown tag %d", e.Tag)
	case KindTruncatedInput:
		return fmt.Sprintf("variant: truncated input: %v", e.Err)
	case KindBadUTF8:
		return "variant: string payload is not valid utf-8"
	case KindNonStringDictionaryKey:
		return "variant: dictionary key did not decode as a string"
	default:
		return "variant: decode error"
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncated(err error) *DecodeError {
	return &DecodeError{Kind: KindTruncatedInput, Err: err}
}

// Encode serializes a Value to its wire form. It is pure and total: no
// I/O, no shared state.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeInto(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func padLen(n int) int {
	return (4 - n%4) % 4
}

func writeHeader(w *bytes.Buffer, tag Tag, wide bool) {
	var flags byte
	if wide {
		flags = 1
	}
	w.Write([]byte{byte(tag), 0, flags, 0})
}

func encodeInto(w *bytes.Buffer, v Value) error {
	switch v.Tag {
	case TagNil:
		writeHeader(w, TagNil, false)
		return nil

	case TagBool:
		writeHeader(w, TagBool, false)
		var slot [4]byte
		if v.Bool {
			slot[0] = 1
		}
		w.Write(slot[:])
		return nil

	case TagInt:
		writeHeader(w, TagInt, v.Wide)
		if v.Wide {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(v.Int))
			w.Write(b[:])
		} else {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(int32(v.Int)))
			w.Write(b[:])
		}
		return nil

	case TagFloat:
		writeHeader(w, TagFloat, v.Wide)
		if v.Wide {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Float))
			w.Write(b[:])
		} else {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.Float)))
			w.Write(b[:])
		}
		return nil

	case TagString:
		writeHeader(w, TagString, false)
		writeString(w, v.Str)
		return nil

	case TagVector2:
		writeHeader(w, TagVector2, false)
		writeVector2(w, v.Vector2)
		return nil

	case TagRect2:
		writeHeader(w, TagRect2, false)
		writeVector2(w, v.Rect2.End)
		writeVector2(w, v.Rect2.Position)
		writeVector2(w, v.Rect2.Size)
		return nil

	case TagVector3:
		writeHeader(w, TagVector3, false)
		writeVector3(w, v.Vector3)
		return nil

	case TagDictionary:
		writeHeader(w, TagDictionary, false)
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(v.Dict)))
		w.Write(countBuf[:])
		for _, entry := range v.Dict {
			if entry.Key.Tag != TagString {
				return &UnsupportedVariant{Tag: entry.Key.Tag}
			}
			if err := encodeInto(w, entry.Key); err != nil {
				return err
			}
			if err := encodeInto(w, entry.Value); err != nil {
				return err
			}
		}
		return nil

	case TagArray:
		writeHeader(w, TagArray, false)
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(v.Array)))
		w.Write(countBuf[:])
		for _, elem := range v.Array {
			if err := encodeInto(w, elem); err != nil {
				return err
			}
		}
		return nil

	default:
		return &UnsupportedVariant{Tag: v.Tag}
	}
}

func writeString(w *bytes.Buffer, s string) {
	b := []byte(s)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
	if pad := padLen(len(b)); pad > 0 {
		w.Write(make([]byte, pad))
	}
}

func writeVector2(w *bytes.Buffer, v Vector2) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.X)))
	w.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.Y)))
	w.Write(b[:])
}

func writeVector3(w *bytes.Buffer, v Vector3) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.X)))
	w.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.Y)))
	w.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.Z)))
	w.Write(b[:])
}

// Decode parses a single wire Value from bytes. The returned error is
// always a *DecodeError (use errors.As); io.EOF-style truncation is
// reported as KindTruncatedInput with the io error wrapped.
func Decode(data []byte) (Value, error) {
	r := bytes.NewReader(data)
	v, err := decodeFrom(r)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func readFull(r *bytes.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, truncated(err)
	}
	return b, nil
}

func decodeFrom(r *bytes.Reader) (Value, error) {
	header, err := readFull(r, 4)
	if err != nil {
		return Value{}, err
	}
	tag := Tag(header[0])
	wide := header[2]&1 != 0

	switch tag {
	case TagNil:
		return Nil(), nil

	case TagBool:
		b, err := readFull(r, 4)
		if err != nil {
			return Value{}, err
		}
		return NewBool(b[0] != 0), nil

	case TagInt:
		if wide {
			b, err := readFull(r, 8)
			if err != nil {
				return Value{}, err
			}
			return Value{Tag: TagInt, Int: int64(binary.LittleEndian.Uint64(b)), Wide: true}, nil
		}
		b, err := readFull(r, 4)
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: TagInt, Int: int64(int32(binary.LittleEndian.Uint32(b))), Wide: false}, nil

	case TagFloat:
		if wide {
			b, err := readFull(r, 8)
			if err != nil {
				return Value{}, err
			}
			return Value{Tag: TagFloat, Float: math.Float64frombits(binary.LittleEndian.Uint64(b)), Wide: true}, nil
		}
		b, err := readFull(r, 4)
		if err != nil {
			return Value{}, err
		}
		f32 := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return Value{Tag: TagFloat, Float: float64(f32), Wide: false}, nil

	case TagString:
		s, err := readString(r)
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil

	case TagVector2:
		vec, err := readVector2(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: TagVector2, Vector2: vec}, nil

	case TagRect2:
		end, err := readVector2(r)
		if err != nil {
			return Value{}, err
		}
		pos, err := readVector2(r)
		if err != nil {
			return Value{}, err
		}
		size, err := readVector2(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: TagRect2, Rect2: Rect2{End: end, Position: pos, Size: size}}, nil

	case TagVector3:
		vec, err := readVector3(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: TagVector3, Vector3: vec}, nil

	case TagDictionary:
		countBuf, err := readFull(r, 4)
		if err != nil {
			return Value{}, err
		}
		count := int32(binary.LittleEndian.Uint32(countBuf))
		dict := make(Dictionary, 0, max0(count))
		for i := int32(0); i < count; i++ {
			key, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			val, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			if key.Tag != TagString {
				// Recovered: discard this entry, continue with the rest.
				continue
			}
			dict = append(dict, DictEntry{Key: key, Value: val})
		}
		return NewDict(dict), nil

	case TagArray:
		countBuf, err := readFull(r, 4)
		if err != nil {
			return Value{}, err
		}
		count := int32(binary.LittleEndian.Uint32(countBuf))
		arr := make([]Value, 0, max0(count))
		for i := int32(0); i < count; i++ {
			elem, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, elem)
		}
		return NewArray(arr...), nil

	default:
		return Value{}, &DecodeError{Kind: KindUnknownTag, Tag: tag}
	}
}

func max0(n int32) int32 {
	if n < 0 {
		return 0
	}
	return n
}

func readString(r *bytes.Reader) (string, error) {
	lenBuf, err := readFull(r, 4)
	if err != nil {
		return "", err
	}
	length := int32(binary.LittleEndian.Uint32(lenBuf))
	if length < 0 {
		return "", &DecodeError{Kind: KindTruncatedInput, Err: errors.New("negative string length")}
	}
	raw, err := readFull(r, int(length))
	if err != nil {
		return "", err
	}
	if pad := padLen(int(length)); pad > 0 {
		if _, err := readFull(r, pad); err != nil {
			return "", err
		}
	}
	if !utf8.Valid(raw) {
		return "", &DecodeError{Kind: KindBadUTF8}
	}
	return string(raw), nil
}

func readVector2(r *bytes.Reader) (Vector2, error) {
	x, err := readFloat32(r)
	if err != nil {
		return Vector2{}, err
	}
	y, err := readFloat32(r)
	if err != nil {
		return Vector2{}, err
	}
	return Vector2{X: float64(x), Y: float64(y)}, nil
}

func readVector3(r *bytes.Reader) (Vector3, error) {
	x, err := readFloat32(r)
	if err != nil {
		return Vector3{}, err
	}
	y, err := readFloat32(r)
	if err != nil {
		return Vector3{}, err
	}
	z, err := readFloat32(r)
	if err != nil {
		return Vector3{}, err
	}
	return Vector3{X: float64(x), Y: float64(y), Z: float64(z)}, nil
}

func readFloat32(r *bytes.Reader) (float32, error) {
	b, err := readFull(r, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}
