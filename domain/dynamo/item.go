package dynamo

import (
	"fmt"
)

// Item is a mapping from attribute name to attribute value.
type Item map[string]AttributeValue

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v.Clone()
	}
	return out
}

// Size returns the item's size accounting: per attribute, the byte length
// of the name plus the value size.
func (i Item) Size() int {
	total := 0
	for k, v := range i {
		total += len(k) + v.Size()
	}
	return total
}

// KeyAttribute is one element of a key schema: an attribute name and its
// declared scalar type (S, N or B).
type KeyAttribute struct {
	Name string
	Type Type
}

// KeySchema is a table's primary key layout: a mandatory partition key and
// an optional sort key.
type KeySchema struct {
	Partition KeyAttribute
	Sort      *KeyAttribute
}

// HasSortKey reports whether the schema declares a sort key.
func (s KeySchema) HasSortKey() bool { return s.Sort != nil }

// IsKeyAttribute reports whether name is the partition or sort key name.
func (s KeySchema) IsKeyAttribute(name string) bool {
	if name == s.Partition.Name {
		return true
	}
	return s.Sort != nil && name == s.Sort.Name
}

// PrimaryKey addresses one item: the partition value plus the sortable sort
// value when the schema declares one.
type PrimaryKey struct {
	Partition SortKey
	Sort      *SortKey
}

// ExtractPrimaryKey pulls the primary key out of an item, enforcing the key
// invariants: key attributes must be present, typed per the schema, and
// must not be empty strings or empty binaries.
func ExtractPrimaryKey(item Item, schema KeySchema) (PrimaryKey, error) {
	partition, err := extractKeyValue(item, schema.Partition)
	if err != nil {
		return PrimaryKey{}, err
	}
	pk := PrimaryKey{Partition: partition}
	if schema.Sort != nil {
		sortVal, err := extractKeyValue(item, *schema.Sort)
		if err != nil {
			return PrimaryKey{}, err
		}
		pk.Sort = &sortVal
	}
	return pk, nil
}

func extractKeyValue(item Item, attr KeyAttribute) (SortKey, error) {
	v, ok := item[attr.Name]
	if !ok {
		return SortKey{}, fmt.Errorf("One or more parameter values were invalid: Missing the key %s in the item", attr.Name)
	}
	if v.AttrType() != attr.Type {
		return SortKey{}, fmt.Errorf("One or more parameter values were invalid: Type mismatch for key %s expected: %s actual: %s", attr.Name, attr.Type, v.AttrType())
	}
	if s, ok := v.StringValue(); ok && s == "" {
		return SortKey{}, fmt.Errorf("One or more parameter values are not valid. The AttributeValue for a key attribute cannot contain an empty string value. Key: %s", attr.Name)
	}
	if b, ok := v.BinaryValue(); ok && len(b) == 0 {
		return SortKey{}, fmt.Errorf("One or more parameter values are not valid. The AttributeValue for a key attribute cannot contain an empty binary value. Key: %s", attr.Name)
	}
	return NewSortKey(v)
}

// Encode returns a canonical string uniquely identifying the primary key.
func (k PrimaryKey) Encode() string {
	if k.Sort == nil {
		return k.Partition.Encode()
	}
	return k.Partition.Encode() + "\x00" + k.Sort.Encode()
}

// Item reconstructs the key attributes as an item, e.g. for
// LastEvaluatedKey.
func (k PrimaryKey) Item(schema KeySchema) Item {
	out := Item{schema.Partition.Name: k.Partition.Value()}
	if k.Sort != nil && schema.Sort != nil {
		out[schema.Sort.Name] = k.Sort.Value()
	}
	return out
}
