package dynamo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey is the sortable projection of an S, N or B attribute value. N
// compares by exact decimal magnitude, S and B lexicographically by bytes.
// Values of different types are incomparable.
type SortKey struct {
	value AttributeValue
	num   decimal.Decimal
}

// NewSortKey lowers an attribute value into its sortable projection. Only
// the three scalar key types are sortable.
func NewSortKey(v AttributeValue) (SortKey, error) {
	switch v.AttrType() {
	case TypeString, TypeBinary:
		return SortKey{value: v}, nil
	case TypeNumber:
		d, err := v.Decimal()
		if err != nil {
			return SortKey{}, fmt.Errorf("invalid number value %q", v.s)
		}
		return SortKey{value: v, num: d}, nil
	default:
		return SortKey{}, fmt.Errorf("type %s is not sortable", v.AttrType())
	}
}

// Value returns the attribute value the key was built from.
func (k SortKey) Value() AttributeValue { return k.value }

// Type returns the scalar type of the key.
func (k SortKey) Type() Type { return k.value.AttrType() }

// Compare orders k against other. The caller guarantees both keys carry the
// same scalar type; mixed types are rejected at construction sites.
func (k SortKey) Compare(other SortKey) int {
	switch k.value.AttrType() {
	case TypeString:
		return strings.Compare(k.value.s, other.value.s)
	case TypeBinary:
		return bytes.Compare(k.value.b, other.value.b)
	case TypeNumber:
		return k.num.Cmp(other.num)
	}
	return 0
}

// Encode returns the canonical byte encoding of the key: a type byte
// followed by the raw string/binary bytes, or the normalized decimal string
// for numbers. Two values that compare equal encode identically, which
// makes the encoding usable as a map key and as the parallel-scan hash
// input.
func (k SortKey) Encode() string {
	switch k.value.AttrType() {
	case TypeString:
		return "S" + k.value.s
	case TypeBinary:
		return "B" + string(k.value.b)
	case TypeNumber:
		return "N" + k.num.String()
	}
	return ""
}
