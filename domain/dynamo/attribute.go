// Package dynamo holds the DynamoDB value model: tagged attribute values in
// their JSON wire form, items, key schemas, and the sortable projection used
// for sort-key ordering.
package dynamo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Type is the wire-format type descriptor of an attribute value.
type Type string

const (
	TypeString    Type = "S"
	TypeNumber    Type = "N"
	TypeBinary    Type = "B"
	TypeBool      Type = "BOOL"
	TypeNull      Type = "NULL"
	TypeStringSet Type = "SS"
	TypeNumberSet Type = "NS"
	TypeBinarySet Type = "BS"
	TypeList      Type = "L"
	TypeMap       Type = "M"
)

// AttributeValue is a tagged DynamoDB value. Exactly one variant is set.
// Numbers are carried as decimal strings, never floats, so the full 38
// significant digits survive round-trips.
type AttributeValue struct {
	typ  Type
	s    string
	b    []byte
	bool bool
	ss   []string
	bs   [][]byte
	l    []AttributeValue
	m    map[string]AttributeValue
}

// String creates an S value.
func String(s string) AttributeValue { return AttributeValue{typ: TypeString, s: s} }

// Number creates an N value from its decimal-string form.
func Number(n string) AttributeValue { return AttributeValue{typ: TypeNumber, s: n} }

// Binary creates a B value.
func Binary(b []byte) AttributeValue { return AttributeValue{typ: TypeBinary, b: b} }

// Bool creates a BOOL value.
func Bool(v bool) AttributeValue { return AttributeValue{typ: TypeBool, bool: v} }

// Null creates a NULL value.
func Null() AttributeValue { return AttributeValue{typ: TypeNull} }

// StringSet creates an SS value.
func StringSet(ss []string) AttributeValue { return AttributeValue{typ: TypeStringSet, ss: ss} }

// NumberSet creates an NS value.
func NumberSet(ns []string) AttributeValue { return AttributeValue{typ: TypeNumberSet, ss: ns} }

// BinarySet creates a BS value.
func BinarySet(bs [][]byte) AttributeValue { return AttributeValue{typ: TypeBinarySet, bs: bs} }

// List creates an L value.
func List(l []AttributeValue) AttributeValue {
	if l == nil {
		l = []AttributeValue{}
	}
	return AttributeValue{typ: TypeList, l: l}
}

// Map creates an M value.
func Map(m map[string]AttributeValue) AttributeValue {
	if m == nil {
		m = map[string]AttributeValue{}
	}
	return AttributeValue{typ: TypeMap, m: m}
}

// AttrType returns the wire type descriptor.
func (v AttributeValue) AttrType() Type { return v.typ }

// IsZero reports whether v is the zero AttributeValue (no variant set).
func (v AttributeValue) IsZero() bool { return v.typ == "" }

// StringValue returns the S payload.
func (v AttributeValue) StringValue() (string, bool) { return v.s, v.typ == TypeString }

// NumberValue returns the N payload as its decimal string.
func (v AttributeValue) NumberValue() (string, bool) { return v.s, v.typ == TypeNumber }

// BinaryValue returns the B payload.
func (v AttributeValue) BinaryValue() ([]byte, bool) { return v.b, v.typ == TypeBinary }

// BoolValue returns the BOOL payload.
func (v AttributeValue) BoolValue() (bool, bool) { return v.bool, v.typ == TypeBool }

// StringSetValue returns the SS payload.
func (v AttributeValue) StringSetValue() ([]string, bool) { return v.ss, v.typ == TypeStringSet }

// NumberSetValue returns the NS payload.
func (v AttributeValue) NumberSetValue() ([]string, bool) { return v.ss, v.typ == TypeNumberSet }

// BinarySetValue returns the BS payload.
func (v AttributeValue) BinarySetValue() ([][]byte, bool) { return v.bs, v.typ == TypeBinarySet }

// ListValue returns the L payload.
func (v AttributeValue) ListValue() ([]AttributeValue, bool) { return v.l, v.typ == TypeList }

// MapValue returns the M payload.
func (v AttributeValue) MapValue() (map[string]AttributeValue, bool) { return v.m, v.typ == TypeMap }

// IsSet reports whether v is one of the three set variants.
func (v AttributeValue) IsSet() bool {
	return v.typ == TypeStringSet || v.typ == TypeNumberSet || v.typ == TypeBinarySet
}

// SetLen returns the element count of a set variant.
func (v AttributeValue) SetLen() int {
	switch v.typ {
	case TypeStringSet, TypeNumberSet:
		return len(v.ss)
	case TypeBinarySet:
		return len(v.bs)
	}
	return 0
}

// Size returns the value's contribution to item size accounting: S/N/B
// contribute their byte length, BOOL and NULL one byte, collections sum
// their elements, and M entries add the key length to the value size.
func (v AttributeValue) Size() int {
	switch v.typ {
	case TypeString, TypeNumber:
		return len(v.s)
	case TypeBinary:
		return len(v.b)
	case TypeBool, TypeNull:
		return 1
	case TypeStringSet, TypeNumberSet:
		total := 0
		for _, s := range v.ss {
			total += len(s)
		}
		return total
	case TypeBinarySet:
		total := 0
		for _, b := range v.bs {
			total += len(b)
		}
		return total
	case TypeList:
		total := 0
		for _, e := range v.l {
			total += e.Size()
		}
		return total
	case TypeMap:
		total := 0
		for k, e := range v.m {
			total += len(k) + e.Size()
		}
		return total
	}
	return 0
}

// Equal reports deep equality. Set comparison is order-insensitive.
func (v AttributeValue) Equal(other AttributeValue) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeString, TypeNumber:
		return v.s == other.s
	case TypeBinary:
		return bytes.Equal(v.b, other.b)
	case TypeBool:
		return v.bool == other.bool
	case TypeNull:
		return true
	case TypeStringSet, TypeNumberSet:
		if len(v.ss) != len(other.ss) {
			return false
		}
		a := append([]string(nil), v.ss...)
		b := append([]string(nil), other.ss...)
		sort.Strings(a)
		sort.Strings(b)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case TypeBinarySet:
		if len(v.bs) != len(other.bs) {
			return false
		}
		a := sortedBinarySet(v.bs)
		b := sortedBinarySet(other.bs)
		for i := range a {
			if !bytes.Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case TypeList:
		if len(v.l) != len(other.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(other.l[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, e := range v.m {
			o, ok := other.m[k]
			if !ok || !e.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

func sortedBinarySet(bs [][]byte) [][]byte {
	out := append([][]byte(nil), bs...)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// Clone returns a deep copy.
func (v AttributeValue) Clone() AttributeValue {
	out := v
	switch v.typ {
	case TypeBinary:
		out.b = append([]byte(nil), v.b...)
	case TypeStringSet, TypeNumberSet:
		out.ss = append([]string(nil), v.ss...)
	case TypeBinarySet:
		out.bs = make([][]byte, len(v.bs))
		for i, b := range v.bs {
			out.bs[i] = append([]byte(nil), b...)
		}
	case TypeList:
		out.l = make([]AttributeValue, len(v.l))
		for i, e := range v.l {
			out.l[i] = e.Clone()
		}
	case TypeMap:
		out.m = make(map[string]AttributeValue, len(v.m))
		for k, e := range v.m {
			out.m[k] = e.Clone()
		}
	}
	return out
}

// MarshalJSON renders the tagged wire form, e.g. {"S":"x"} or {"NULL":true}.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeString, TypeNumber:
		return json.Marshal(map[Type]string{v.typ: v.s})
	case TypeBinary:
		return json.Marshal(map[Type][]byte{v.typ: v.b})
	case TypeBool:
		return json.Marshal(map[Type]bool{v.typ: v.bool})
	case TypeNull:
		return json.Marshal(map[Type]bool{v.typ: true})
	case TypeStringSet, TypeNumberSet:
		return json.Marshal(map[Type][]string{v.typ: v.ss})
	case TypeBinarySet:
		return json.Marshal(map[Type][][]byte{v.typ: v.bs})
	case TypeList:
		return json.Marshal(map[Type][]AttributeValue{v.typ: v.l})
	case TypeMap:
		return json.Marshal(map[Type]map[string]AttributeValue{v.typ: v.m})
	}
	return nil, fmt.Errorf("attribute value has no variant set")
}

// UnmarshalJSON decodes the tagged wire form. Exactly one tag must be
// present.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("expected exactly one attribute value type, got %d", len(raw))
	}
	for tag, payload := range raw {
		switch Type(tag) {
		case TypeString, TypeNumber:
			var s string
			if err := json.Unmarshal(payload, &s); err != nil {
				return err
			}
			*v = AttributeValue{typ: Type(tag), s: s}
		case TypeBinary:
			var b []byte
			if err := json.Unmarshal(payload, &b); err != nil {
				return err
			}
			*v = Binary(b)
		case TypeBool:
			var b bool
			if err := json.Unmarshal(payload, &b); err != nil {
				return err
			}
			*v = Bool(b)
		case TypeNull:
			var b bool
			if err := json.Unmarshal(payload, &b); err != nil {
				return err
			}
			*v = Null()
		case TypeStringSet, TypeNumberSet:
			var ss []string
			if err := json.Unmarshal(payload, &ss); err != nil {
				return err
			}
			*v = AttributeValue{typ: Type(tag), ss: ss}
		case TypeBinarySet:
			var bs [][]byte
			if err := json.Unmarshal(payload, &bs); err != nil {
				return err
			}
			*v = BinarySet(bs)
		case TypeList:
			var l []AttributeValue
			if err := json.Unmarshal(payload, &l); err != nil {
				return err
			}
			*v = List(l)
		case TypeMap:
			var m map[string]AttributeValue
			if err := json.Unmarshal(payload, &m); err != nil {
				return err
			}
			*v = Map(m)
		default:
			return fmt.Errorf("unknown attribute value type %q", tag)
		}
	}
	return nil
}

// Decimal parses the N payload. Only valid for number values.
func (v AttributeValue) Decimal() (decimal.Decimal, error) {
	if v.typ != TypeNumber {
		return decimal.Decimal{}, fmt.Errorf("attribute value is %s, not N", v.typ)
	}
	d, err := decimal.NewFromString(v.s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}
