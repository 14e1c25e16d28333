package dynamo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"localaws/domain/dynamo"
	apperrors "localaws/pkg/errors"
	"localaws/infrastructure/persistence/memory"
)

// Table pairs a table's metadata with its item storage.
type Table struct {
	Name                  string
	Arn                   string
	ID                    string
	CreatedAt             time.Time
	KeySchema             dynamo.KeySchema
	KeySchemaElements     []KeySchemaElement
	AttributeDefinitions  []AttributeDefinition
	BillingMode           string
	ProvisionedThroughput *ProvisionedThroughput
	GSIs                  []GlobalSecondaryIndex
	LSIs                  []LocalSecondaryIndex
	StreamSpecification   *StreamSpecification
	SSESpecification      *SSESpecification
	Storage               *memory.TableStorage

	tagMu sync.Mutex
	tags  []Tag
}

// Tags returns a copy of the table's tag list.
func (t *Table) Tags() []Tag {
	t.tagMu.Lock()
	defer t.tagMu.Unlock()
	return append([]Tag(nil), t.tags...)
}

// SetTags replaces the table's tag list.
func (t *Table) SetTags(tags []Tag) {
	t.tagMu.Lock()
	defer t.tagMu.Unlock()
	t.tags = append([]Tag(nil), tags...)
}

// Description renders the table's metadata document.
func (t *Table) Description(status string) *TableDescription {
	desc := &TableDescription{
		TableName:            t.Name,
		TableStatus:          status,
		TableArn:             t.Arn,
		TableId:              t.ID,
		CreationDateTime:     float64(t.CreatedAt.UnixMilli()) / 1000.0,
		AttributeDefinitions: t.AttributeDefinitions,
		KeySchema:            t.KeySchemaElements,
		ItemCount:            int64(t.Storage.ItemCount()),
		TableSizeBytes:       int64(t.Storage.SizeBytes()),
		StreamSpecification:  t.StreamSpecification,
		SSEDescription:       t.SSESpecification,
	}
	if t.BillingMode != "" {
		desc.BillingModeSummary = &BillingModeSummary{BillingMode: t.BillingMode}
	}
	if t.ProvisionedThroughput != nil {
		desc.ProvisionedThroughput = &ProvisionedThroughputDescription{
			ReadCapacityUnits:  t.ProvisionedThroughput.ReadCapacityUnits,
			WriteCapacityUnits: t.ProvisionedThroughput.WriteCapacityUnits,
		}
	}
	for _, gsi := range t.GSIs {
		desc.GlobalSecondaryIndexes = append(desc.GlobalSecondaryIndexes, GlobalSecondaryIndexDescription{
			IndexName:   gsi.IndexName,
			KeySchema:   gsi.KeySchema,
			Projection:  gsi.Projection,
			IndexStatus: TableStatusActive,
			IndexArn:    t.Arn + "/index/" + gsi.IndexName,
		})
	}
	for _, lsi := range t.LSIs {
		desc.LocalSecondaryIndexes = append(desc.LocalSecondaryIndexes, LocalSecondaryIndexDescription{
			IndexName:  lsi.IndexName,
			KeySchema:  lsi.KeySchema,
			Projection: lsi.Projection,
			IndexArn:   t.Arn + "/index/" + lsi.IndexName,
		})
	}
	return desc
}

// Table status strings.
const (
	TableStatusActive   = "ACTIVE"
	TableStatusDeleting = "DELETING"
)

// registry is the provider's table map: a concurrent name-to-table index.
type registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func newRegistry() *registry {
	return &registry{tables: map[string]*Table{}}
}

func (r *registry) create(t *Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[t.Name]; exists {
		return apperrors.NewTableInUseError(t.Name)
	}
	r.tables[t.Name] = t
	return nil
}

func (r *registry) get(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, apperrors.NewTableNotFoundError()
	}
	return t, nil
}

func (r *registry) delete(name string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, apperrors.NewTableNotFoundError()
	}
	delete(r.tables, name)
	return t, nil
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTableID() string { return uuid.NewString() }
