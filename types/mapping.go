package types

// InvalidColumnIndex marks a mapping whose source column is absent from the current file.
const InvalidColumnIndex = -1

type FieldMapping struct {
	SourceColumnName    string  `json:"sourceColumnName"`
	DestinationField    *string `json:"destinationField"`
	IsReconciliationKey bool    `json:"isReconciliationKey"`
}

type StaticFieldMapping struct {
	DestinationField *string `json:"destinationField"`
	LiteralValue     string  `json:"literalValue"`
}

type ColumnMapping struct {
	SourceColumnIndex   int
	SourceColumnName    string
	DestinationField    *string
	IsReconciliationKey bool
}

func (columnMapping ColumnMapping) IsMapped() bool {
	return columnMapping.DestinationField != nil
}

func (columnMapping ColumnMapping) IsResolved() bool {
	return columnMapping.SourceColumnIndex != InvalidColumnIndex
}

// Field returns a pointer to a copy of the given field id, or nil for an empty id.
func Field(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func FieldValue(field *string) string {
	if field == nil {
		return ""
	}
	return *field
}

// CloneField copies the field id behind the pointer, keeping nil as nil.
func CloneField(field *string) *string {
	if field == nil {
		return nil
	}
	id := *field
	return &id
}

func SameField(a *string, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func CloneColumnMappings(columnMappings []ColumnMapping) []ColumnMapping {
	clone := make([]ColumnMapping, len(columnMappings))
	for i, columnMapping := range columnMappings {
		columnMapping.DestinationField = CloneField(columnMapping.DestinationField)
		clone[i] = columnMapping
	}
	return clone
}

func CloneFieldMappings(fieldMappings []FieldMapping) []FieldMapping {
	clone := make([]FieldMapping, len(fieldMappings))
	for i, fieldMapping := range fieldMappings {
		fieldMapping.DestinationField = CloneField(fieldMapping.DestinationField)
		clone[i] = fieldMapping
	}
	return clone
}

func CloneStaticFieldMappings(staticFieldMappings []StaticFieldMapping) []StaticFieldMapping {
	clone := make([]StaticFieldMapping, len(staticFieldMappings))
	for i, staticFieldMapping := range staticFieldMappings {
		staticFieldMapping.DestinationField = CloneField(staticFieldMapping.DestinationField)
		clone[i] = staticFieldMapping
	}
	return clone
}
