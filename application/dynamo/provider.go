package dynamo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"localaws/domain/dynamo"
	"localaws/infrastructure/persistence/memory"
	apperrors "localaws/pkg/errors"
)

// Provider implements every DynamoDB operation against the in-memory table
// registry. All request validation runs before any state mutation; the
// first failure short-circuits.
type Provider struct {
	region string
	tables *registry
	logger *zap.Logger
}

// NewProvider creates a provider for the given region.
func NewProvider(region string, logger *zap.Logger) *Provider {
	return &Provider{
		region: region,
		tables: newRegistry(),
		logger: logger,
	}
}

// Reset drops all tables. Used by tests.
func (p *Provider) Reset() {
	p.tables = newRegistry()
}

// CreateTable validates the table definition and registers the new table.
func (p *Provider) CreateTable(input *CreateTableInput) (*CreateTableOutput, error) {
	if err := validateTableName(input.TableName); err != nil {
		return nil, err
	}
	if len(input.AttributeDefinitions) == 0 {
		return nil, apperrors.NewValidationError(
			"One or more parameter values were invalid: Some AttributeDefinitions are not valid. AttributeDefinitions must be provided for all key attributes")
	}
	if err := validateAttributeDefinitions(input.AttributeDefinitions); err != nil {
		return nil, err
	}
	if err := validateKeySchemaStructure(input.KeySchema); err != nil {
		return nil, err
	}
	schema, err := parseKeySchema(input.KeySchema, input.AttributeDefinitions)
	if err != nil {
		return nil, err
	}
	billing, err := validateBillingMode(input.BillingMode, input.ProvisionedThroughput)
	if err != nil {
		return nil, err
	}
	if err := validateNoSpuriousAttributeDefinitions(input); err != nil {
		return nil, err
	}

	table := &Table{
		Name:                  input.TableName,
		Arn:                   fmt.Sprintf("arn:aws:dynamodb:%s:000000000000:table/%s", p.region, input.TableName),
		ID:                    newTableID(),
		CreatedAt:             time.Now().UTC(),
		KeySchema:             schema,
		KeySchemaElements:     input.KeySchema,
		AttributeDefinitions:  input.AttributeDefinitions,
		BillingMode:           billing,
		ProvisionedThroughput: input.ProvisionedThroughput,
		GSIs:                  input.GlobalSecondaryIndexes,
		LSIs:                  input.LocalSecondaryIndexes,
		StreamSpecification:   input.StreamSpecification,
		SSESpecification:      input.SSESpecification,
		Storage:               memory.NewTableStorage(schema),
	}
	table.SetTags(input.Tags)

	if err := p.tables.create(table); err != nil {
		return nil, err
	}
	p.logger.Info("table created",
		zap.String("table", table.Name),
		zap.Bool("sortKey", schema.HasSortKey()),
	)
	return &CreateTableOutput{TableDescription: table.Description(TableStatusActive)}, nil
}

// DeleteTable removes the table, returning its description with status
// DELETING.
func (p *Provider) DeleteTable(input *DeleteTableInput) (*DeleteTableOutput, error) {
	table, err := p.tables.delete(input.TableName)
	if err != nil {
		return nil, err
	}
	p.logger.Info("table deleted", zap.String("table", input.TableName))
	return &DeleteTableOutput{TableDescription: table.Description(TableStatusDeleting)}, nil
}

// DescribeTable returns the table's metadata document.
func (p *Provider) DescribeTable(input *DescribeTableInput) (*DescribeTableOutput, error) {
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	return &DescribeTableOutput{Table: table.Description(TableStatusActive)}, nil
}

// ListTables pages through table names in sorted order, at most 100 per
// call, starting strictly after ExclusiveStartTableName.
func (p *Provider) ListTables(input *ListTablesInput) (*ListTablesOutput, error) {
	if input.Limit != nil && (*input.Limit < 1 || *input.Limit > 100) {
		return nil, apperrors.NewValidationErrorf(
			"1 validation error detected: Value '%d' at 'limit' failed to satisfy constraint: Member must have value less than or equal to 100",
			*input.Limit)
	}
	limit := 100
	if input.Limit != nil {
		limit = *input.Limit
	}

	all := p.tables.names()
	start := 0
	if input.ExclusiveStartTableName != "" {
		start = len(all)
		for i, name := range all {
			if name > input.ExclusiveStartTableName {
				start = i
				break
			}
		}
	}

	remaining := all[start:]
	out := &ListTablesOutput{TableNames: []string{}}
	if len(remaining) > limit {
		out.TableNames = remaining[:limit]
		out.LastEvaluatedTableName = remaining[limit-1]
	} else {
		out.TableNames = remaining
	}
	return out, nil
}

// UpdateTable validates the update for legality and echoes the current
// description; the changes have no runtime effect.
func (p *Provider) UpdateTable(input *UpdateTableInput) (*UpdateTableOutput, error) {
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	if input.BillingMode != "" && input.BillingMode != "PROVISIONED" && input.BillingMode != "PAY_PER_REQUEST" {
		return nil, apperrors.NewValidationErrorf(
			"1 validation error detected: Value '%s' at 'billingMode' failed to satisfy constraint: Member must satisfy enum value set: [PROVISIONED, PAY_PER_REQUEST]",
			input.BillingMode)
	}
	return &UpdateTableOutput{TableDescription: table.Description(TableStatusActive)}, nil
}

// ---------------------------------------------------------------------------
// CreateTable validation
// ---------------------------------------------------------------------------

func validateAttributeDefinitions(definitions []AttributeDefinition) error {
	seen := map[string]bool{}
	for _, def := range definitions {
		if seen[def.AttributeName] {
			return apperrors.NewValidationErrorf(
				"Duplicate AttributeName in AttributeDefinitions: %s", def.AttributeName)
		}
		seen[def.AttributeName] = true
	}
	return nil
}

func validateKeySchemaStructure(elements []KeySchemaElement) error {
	hashCount, rangeCount := 0, 0
	for _, e := range elements {
		switch e.KeyType {
		case "HASH":
			hashCount++
		case "RANGE":
			rangeCount++
		}
	}
	if hashCount != 1 {
		return apperrors.NewValidationError("Invalid KeySchema: Some index key schema element is not valid")
	}
	if rangeCount > 1 || len(elements) > 2 {
		return apperrors.NewValidationError(apperrors.MsgTooManyKeySchemaElements)
	}
	return nil
}

func parseKeySchema(elements []KeySchemaElement, definitions []AttributeDefinition) (dynamo.KeySchema, error) {
	var partitionName, sortName string
	for _, e := range elements {
		switch e.KeyType {
		case "HASH":
			partitionName = e.AttributeName
		case "RANGE":
			sortName = e.AttributeName
		}
	}
	if partitionName == "" {
		return dynamo.KeySchema{}, apperrors.NewValidationError(apperrors.MsgKeySchemaMissingHash)
	}

	partitionType, err := findAttributeType(definitions, partitionName)
	if err != nil {
		return dynamo.KeySchema{}, err
	}
	schema := dynamo.KeySchema{Partition: dynamo.KeyAttribute{Name: partitionName, Type: partitionType}}
	if sortName != "" {
		sortType, err := findAttributeType(definitions, sortName)
		if err != nil {
			return dynamo.KeySchema{}, err
		}
		schema.Sort = &dynamo.KeyAttribute{Name: sortName, Type: sortType}
	}
	return schema, nil
}

func findAttributeType(definitions []AttributeDefinition, name string) (dynamo.Type, error) {
	for _, def := range definitions {
		if def.AttributeName == name {
			switch def.AttributeType {
			case "S", "N", "B":
				return dynamo.Type(def.AttributeType), nil
			default:
				return "", apperrors.NewValidationErrorf(
					"Member must satisfy enum value set: [S, N, B], got '%s'", def.AttributeType)
			}
		}
	}
	return "", apperrors.NewValidationErrorf(
		"One or more parameter values were invalid: Some index key schema elements are not valid. The following index key schema element does not have a matching AttributeDefinition: %s",
		name)
}

func validateBillingMode(mode string, throughput *ProvisionedThroughput) (string, error) {
	switch mode {
	case "", "PROVISIONED":
		if throughput == nil {
			return "", apperrors.NewValidationError(apperrors.MsgNoProvisionedThroughput)
		}
		return "PROVISIONED", nil
	case "PAY_PER_REQUEST":
		if throughput != nil {
			return "", apperrors.NewValidationError(
				"One or more parameter values were invalid: Neither ReadCapacityUnits nor WriteCapacityUnits can be specified when BillingMode is PAY_PER_REQUEST")
		}
		return "PAY_PER_REQUEST", nil
	default:
		return "", apperrors.NewValidationErrorf(
			"1 validation error detected: Value '%s' at 'billingMode' failed to satisfy constraint: Member must satisfy enum value set: [PROVISIONED, PAY_PER_REQUEST]",
			mode)
	}
}

// validateNoSpuriousAttributeDefinitions requires every defined attribute
// to key the table or one of its declared indexes.
func validateNoSpuriousAttributeDefinitions(input *CreateTableInput) error {
	used := map[string]bool{}
	for _, e := range input.KeySchema {
		used[e.AttributeName] = true
	}
	for _, gsi := range input.GlobalSecondaryIndexes {
		for _, e := range gsi.KeySchema {
			used[e.AttributeName] = true
		}
	}
	for _, lsi := range input.LocalSecondaryIndexes {
		for _, e := range lsi.KeySchema {
			used[e.AttributeName] = true
		}
	}
	for _, def := range input.AttributeDefinitions {
		if !used[def.AttributeName] {
			return apperrors.NewValidationError(
				"Number of attributes in AttributeDefinitions does not exactly match number of attributes in KeySchema and secondary indexes")
		}
	}
	return nil
}
