// Package variant implements the tagged wire value tree used as the
// body of every packet exchanged with the hosted game client. The
// format is externally fixed by the client, not invented here: tags,
// widths, and padding must match bit-for-bit.
package variant

import "fmt"

// Tag identifies the wire type of a Value.
type Tag byte

// Fixed wire tags. 8-17 are reserved by the client and not implemented.
const (
	TagNil        Tag = 0
	TagBool       Tag = 1
	TagInt        Tag = 2
	TagFloat      Tag = 3
	TagString     Tag = 4
	TagVector2    Tag = 5
	TagRect2      Tag = 6
	TagVector3    Tag = 7
	TagDictionary Tag = 18
	TagArray      Tag = 19
)

// Vector2 is a pair of 32-bit-precision components, stored widened to
// float64 in memory.
type Vector2 struct {
	X, Y float64
}

// Rect2 is an end/position/size triple of Vector2, in that wire order.
type Rect2 struct {
	End      Vector2
	Position Vector2
	Size     Vector2
}

// Vector3 is a triple of 32-bit-precision components, stored widened
// to float64 in memory.
type Vector3 struct {
	X, Y, Z float64
}

// Value is a tagged union over the wire value tree. Exactly one field
// is meaningful for a given Tag; NewXxx constructors keep callers from
// having to pick fields by hand.
type Value struct {
	Tag Tag

	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Vector2 Vector2
	Rect2   Rect2
	Vector3 Vector3
	Dict    Dictionary
	Array   []Value

	// Wide marks that Int/Float should be encoded in their 64-bit
	// form. Decoding always reports the width the wire byte carried.
	Wide bool
}

// Dictionary preserves no particular ordering; entries are decoded in
// wire order but callers must not rely on it.
type Dictionary []DictEntry

// DictEntry is one key/value pair of a Dictionary. Keys are always
// Strings in practice, enforced by Dict's builder helpers, but the
// wire format technically allows other keyed types (which the decoder
// discards, see DecodeError NonStringDictionaryKey).
type DictEntry struct {
	Key   Value
	Value Value
}

// Get returns the value for the given string key, if present.
func (d Dictionary) Get(key string) (Value, bool) {
	for _, e := range d {
		if e.Key.Tag == TagString && e.Key.Str == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

func Nil() Value { return Value{Tag: TagNil} }

func NewBool(b bool) Value { return Value{Tag: TagBool, Bool: b} }

// NewInt builds a 64-bit Int. Wire encoding always widens Int to its
// 64-bit form (see codec round-trip law in spec), so this is the only
// constructor calling code needs.
func NewInt(i int64) Value { return Value{Tag: TagInt, Int: i, Wide: true} }

func NewFloat(f float64) Value { return Value{Tag: TagFloat, Float: f, Wide: true} }

func NewString(s string) Value { return Value{Tag: TagString, Str: s} }

func NewVector2(x, y float64) Value { return Value{Tag: TagVector2, Vector2: Vector2{X: x, Y: y}} }

func NewRect2(end, pos, size Vector2) Value {
	return Value{Tag: TagRect2, Rect2: Rect2{End: end, Position: pos, Size: size}}
}

func NewVector3(x, y, z float64) Value {
	return Value{Tag: TagVector3, Vector3: Vector3{X: x, Y: y, Z: z}}
}

func NewArray(vs ...Value) Value { return Value{Tag: TagArray, Array: vs} }

func NewDict(d Dictionary) Value { return Value{Tag: TagDictionary, Dict: d} }

// DictBuilder accumulates string-keyed entries for a Dictionary in
// caller-specified order, for packet builders in internal/packets.
type DictBuilder struct {
	entries Dictionary
}

func NewDictBuilder() *DictBuilder { return &DictBuilder{} }

func (b *DictBuilder) Set(key string, v Value) *DictBuilder {
	b.entries = append(b.entries, DictEntry{Key: NewString(key), Value: v})
	return b
}

func (b *DictBuilder) Build() Value { return NewDict(b.entries) }

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "Nil"
	case TagBool:
		return "Bool"
	case TagInt:
		return "Int"
	case TagFloat:
		return "Float"
	case TagString:
		return "String"
	case TagVector2:
		return "Vector2"
	case TagRect2:
		return "Rect2"
	case TagVector3:
		return "Vector3"
	case TagDictionary:
		return "Dictionary"
	case TagArray:
		return "Array"
	default:
		return fmt.Sprintf("Tag(%d)", byte(t))
	}
}
