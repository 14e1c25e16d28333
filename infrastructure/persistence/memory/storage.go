// Package memory implements the in-memory table storage backing the
// DynamoDB provider: a partition/sort-indexed item store with ordered
// sort-key traversal, pagination cursors and parallel-scan segmentation.
package memory

import (
	"hash/fnv"
	"sort"
	"sync"

	"localaws/domain/dynamo"
)

// SortConditionOp is the restricted operator set usable against a sort key.
type SortConditionOp int

const (
	SortEq SortConditionOp = iota
	SortLt
	SortLe
	SortGt
	SortGe
	SortBetween
	SortBeginsWith
)

// SortCondition bounds a query's sort-key traversal. Upper is set only for
// BETWEEN.
type SortCondition struct {
	Op    SortConditionOp
	Value dynamo.SortKey
	Upper dynamo.SortKey
}

// QueryResult is one storage page: the items yielded plus the primary key
// of the last yielded item when more remained.
type QueryResult struct {
	Items   []dynamo.Item
	LastKey *dynamo.PrimaryKey
}

type entry struct {
	sort dynamo.SortKey
	item dynamo.Item
}

type partition struct {
	value dynamo.SortKey
	// entries are kept ordered by sortable sort value. Tables without a
	// sort key hold exactly one entry with a zero sort.
	entries []entry
}

// TableStorage is one table's item store. A single writer lock guards
// mutations; readers take consistent snapshots before returning.
type TableStorage struct {
	mu     sync.RWMutex
	schema dynamo.KeySchema
	// partitions are addressed and ordered by the canonical encoding of
	// their partition value, which keeps scans deterministic.
	partitions map[string]*partition
	order      []string
}

// NewTableStorage creates storage for the given key schema.
func NewTableStorage(schema dynamo.KeySchema) *TableStorage {
	return &TableStorage{
		schema:     schema,
		partitions: map[string]*partition{},
	}
}

// Schema returns the key schema the storage indexes by.
func (s *TableStorage) Schema() dynamo.KeySchema { return s.schema }

// ItemCount returns the number of stored items.
func (s *TableStorage) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.partitions {
		count += len(p.entries)
	}
	return count
}

// SizeBytes returns the summed size accounting of all stored items.
func (s *TableStorage) SizeBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, p := range s.partitions {
		for _, e := range p.entries {
			total += e.item.Size()
		}
	}
	return total
}

// PutItem inserts or replaces the item at its primary key, returning the
// previous item if one existed.
func (s *TableStorage) PutItem(item dynamo.Item) (dynamo.Item, bool, error) {
	pk, err := dynamo.ExtractPrimaryKey(item, s.schema)
	if err != nil {
		return nil, false, err
	}
	stored := item.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := pk.Partition.Encode()
	p, ok := s.partitions[encoded]
	if !ok {
		p = &partition{value: pk.Partition}
		s.partitions[encoded] = p
		s.insertOrdered(encoded)
	}

	if pk.Sort == nil {
		if len(p.entries) > 0 {
			old := p.entries[0].item
			p.entries[0] = entry{item: stored}
			return old, true, nil
		}
		p.entries = append(p.entries, entry{item: stored})
		return nil, false, nil
	}

	idx := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].sort.Compare(*pk.Sort) >= 0
	})
	if idx < len(p.entries) && p.entries[idx].sort.Compare(*pk.Sort) == 0 {
		old := p.entries[idx].item
		p.entries[idx] = entry{sort: *pk.Sort, item: stored}
		return old, true, nil
	}
	p.entries = append(p.entries, entry{})
	copy(p.entries[idx+1:], p.entries[idx:])
	p.entries[idx] = entry{sort: *pk.Sort, item: stored}
	return nil, false, nil
}

// GetItem returns the item at the exact primary key.
func (s *TableStorage) GetItem(pk dynamo.PrimaryKey) (dynamo.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, idx, ok := s.locate(pk)
	if !ok {
		return nil, false
	}
	return p.entries[idx].item.Clone(), true
}

// DeleteItem removes the item at the primary key, returning the previous
// item if one existed.
func (s *TableStorage) DeleteItem(pk dynamo.PrimaryKey) (dynamo.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, idx, ok := s.locate(pk)
	if !ok {
		return nil, false
	}
	old := p.entries[idx].item
	p.entries = append(p.entries[:idx], p.entries[idx+1:]...)
	if len(p.entries) == 0 {
		encoded := pk.Partition.Encode()
		delete(s.partitions, encoded)
		s.removeOrdered(encoded)
	}
	return old, true
}

// Query enumerates one partition's ordered sequence, optionally bounded by
// a sort condition, starting strictly after exclusiveStart, in the
// requested direction, yielding up to limit items (0 means unlimited).
// LastKey is set when the traversal stopped with items remaining.
func (s *TableStorage) Query(partitionValue dynamo.SortKey, cond *SortCondition, forward bool, limit int, exclusiveStart *dynamo.PrimaryKey) QueryResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partitionValue.Encode()]
	if !ok {
		return QueryResult{}
	}

	matching := make([]entry, 0, len(p.entries))
	for _, e := range p.entries {
		if cond == nil || sortMatches(e.sort, cond) {
			matching = append(matching, e)
		}
	}
	if !forward {
		reversed := make([]entry, len(matching))
		for i, e := range matching {
			reversed[len(matching)-1-i] = e
		}
		matching = reversed
	}

	start := 0
	if exclusiveStart != nil && exclusiveStart.Sort != nil {
		for i, e := range matching {
			cmp := e.sort.Compare(*exclusiveStart.Sort)
			if cmp == 0 {
				start = i + 1
				break
			}
			// The cursor itself may have been filtered out or deleted;
			// resume at the first entry past it in traversal order.
			if (forward && cmp > 0) || (!forward && cmp < 0) {
				start = i
				break
			}
			start = i + 1
		}
	}

	var result QueryResult
	for i := start; i < len(matching); i++ {
		if limit > 0 && len(result.Items) == limit {
			last := s.primaryKey(p, matching[i-1])
			result.LastKey = &last
			return result
		}
		result.Items = append(result.Items, matching[i].item.Clone())
	}
	return result
}

// Scan iterates all items in deterministic partition-encoding order. When
// totalSegments is positive, only partitions assigned to the requested
// segment are yielded. LastKey is set when the limit cut the scan short.
func (s *TableStorage) Scan(limit int, exclusiveStart *dynamo.PrimaryKey, segment, totalSegments int) QueryResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	started := exclusiveStart == nil
	startEncoded := ""
	if exclusiveStart != nil {
		startEncoded = exclusiveStart.Encode()
	}

	var result QueryResult
	var prev *dynamo.PrimaryKey
	for _, encoded := range s.order {
		p := s.partitions[encoded]
		if totalSegments > 0 && SegmentOf(p.value, totalSegments) != segment {
			continue
		}
		for _, e := range p.entries {
			pk := s.primaryKey(p, e)
			if !started {
				if pk.Encode() == startEncoded {
					started = true
				}
				continue
			}
			if limit > 0 && len(result.Items) == limit {
				result.LastKey = prev
				return result
			}
			result.Items = append(result.Items, e.item.Clone())
			cursor := pk
			prev = &cursor
		}
	}
	return result
}

// SegmentOf assigns a partition value to a parallel-scan segment: a stable
// hash of the canonical encoding modulo the segment count.
func SegmentOf(partitionValue dynamo.SortKey, totalSegments int) int {
	h := fnv.New64a()
	h.Write([]byte(partitionValue.Encode()))
	return int(h.Sum64() % uint64(totalSegments))
}

func (s *TableStorage) primaryKey(p *partition, e entry) dynamo.PrimaryKey {
	pk := dynamo.PrimaryKey{Partition: p.value}
	if s.schema.Sort != nil {
		sortCopy := e.sort
		pk.Sort = &sortCopy
	}
	return pk
}

func (s *TableStorage) locate(pk dynamo.PrimaryKey) (*partition, int, bool) {
	p, ok := s.partitions[pk.Partition.Encode()]
	if !ok {
		return nil, 0, false
	}
	if pk.Sort == nil {
		if len(p.entries) == 0 {
			return nil, 0, false
		}
		return p, 0, true
	}
	idx := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].sort.Compare(*pk.Sort) >= 0
	})
	if idx < len(p.entries) && p.entries[idx].sort.Compare(*pk.Sort) == 0 {
		return p, idx, true
	}
	return nil, 0, false
}

func (s *TableStorage) insertOrdered(encoded string) {
	idx := sort.SearchStrings(s.order, encoded)
	s.order = append(s.order, "")
	copy(s.order[idx+1:], s.order[idx:])
	s.order[idx] = encoded
}

func (s *TableStorage) removeOrdered(encoded string) {
	idx := sort.SearchStrings(s.order, encoded)
	if idx < len(s.order) && s.order[idx] == encoded {
		s.order = append(s.order[:idx], s.order[idx+1:]...)
	}
}

// sortMatches applies a sort condition to one sort key.
func sortMatches(key dynamo.SortKey, cond *SortCondition) bool {
	switch cond.Op {
	case SortEq:
		return key.Compare(cond.Value) == 0
	case SortLt:
		return key.Compare(cond.Value) < 0
	case SortLe:
		return key.Compare(cond.Value) <= 0
	case SortGt:
		return key.Compare(cond.Value) > 0
	case SortGe:
		return key.Compare(cond.Value) >= 0
	case SortBetween:
		return key.Compare(cond.Value) >= 0 && key.Compare(cond.Upper) <= 0
	case SortBeginsWith:
		return sortBeginsWith(key, cond.Value)
	}
	return false
}

// sortBeginsWith implements begins_with over S and B sort keys.
func sortBeginsWith(key, prefix dynamo.SortKey) bool {
	switch key.Type() {
	case dynamo.TypeString:
		s, _ := key.Value().StringValue()
		p, ok := prefix.Value().StringValue()
		return ok && len(s) >= len(p) && s[:len(p)] == p
	case dynamo.TypeBinary:
		b, _ := key.Value().BinaryValue()
		p, ok := prefix.Value().BinaryValue()
		if !ok || len(b) < len(p) {
			return false
		}
		for i := range p {
			if b[i] != p[i] {
				return false
			}
		}
		return true
	}
	return false
}
