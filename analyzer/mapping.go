package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/types"
)

type IMappingClient interface {
	GenerateColumnMappings(headers []string) []types.ColumnMapping
	Reconcile(previous []types.ColumnMapping, headers []string) ReconcileResult
	AutoMap(columnMappings []types.ColumnMapping, staticFieldMappings []types.StaticFieldMapping, fields []types.DestinationField) int
}

type ReconcileResult struct {
	ColumnMappings    []types.ColumnMapping
	TotalMapped       int
	MatchedCount      int
	FastTrackEligible bool
}

// MissingColumns returns the names of mapped columns that no longer resolve.
func (result ReconcileResult) MissingColumns() []string {
	missing := []string{}
	for _, columnMapping := range result.ColumnMappings {
		if columnMapping.IsMapped() && !columnMapping.IsResolved() {
			missing = append(missing, columnMapping.SourceColumnName)
		}
	}
	return missing
}

type MappingClient struct {
	Logger *logrus.Logger
}

func NewMappingClient(logger *logrus.Logger) *MappingClient {
	return &MappingClient{
		Logger: logger,
	}
}

func (mappingClient *MappingClient) GenerateColumnMappings(headers []string) []types.ColumnMapping {
	columnMappings := make([]types.ColumnMapping, len(headers))
	for i, header := range headers {
		columnMappings[i] = types.ColumnMapping{
			SourceColumnIndex: i,
			SourceColumnName:  header,
		}
	}
	return columnMappings
}

// Reconcile re-resolves previously saved mappings against a new header list by
// exact, case-sensitive name. A mapped column that is no longer present keeps
// its destination field with an invalid index so the breakage stays visible.
// Headers not covered by any previous mapping are appended unmapped.
func (mappingClient *MappingClient) Reconcile(previous []types.ColumnMapping, headers []string) ReconcileResult {
	headerIndex := map[string]int{}
	for i := len(headers) - 1; i >= 0; i-- {
		headerIndex[headers[i]] = i
	}

	result := ReconcileResult{ColumnMappings: types.CloneColumnMappings(previous)}
	covered := map[int]bool{}

	for i := range result.ColumnMappings {
		columnMapping := &result.ColumnMappings[i]
		index, found := headerIndex[columnMapping.SourceColumnName]

		if columnMapping.IsMapped() {
			result.TotalMapped++
			if found {
				columnMapping.SourceColumnIndex = index
				result.MatchedCount++
			} else {
				columnMapping.SourceColumnIndex = types.InvalidColumnIndex
				mappingClient.Logger.Warnf("Mapped column %q is missing from the file", columnMapping.SourceColumnName)
			}
		} else if found {
			columnMapping.SourceColumnIndex = index
		} else {
			columnMapping.SourceColumnIndex = types.InvalidColumnIndex
		}

		if found {
			covered[index] = true
		}
	}

	for i, header := range headers {
		if covered[i] {
			continue
		}
		result.ColumnMappings = append(result.ColumnMappings, types.ColumnMapping{
			SourceColumnIndex: i,
			SourceColumnName:  header,
		})
	}

	result.FastTrackEligible = result.TotalMapped > 0 && result.MatchedCount == result.TotalMapped
	mappingClient.Logger.Debugf("Reconciled %d of %d mapped columns, fast track: %t", result.MatchedCount, result.TotalMapped, result.FastTrackEligible)

	return result
}

// AutoMap assigns a destination field to every unmapped column whose header
// resembles a field name, skipping fields already claimed. It returns the
// number of columns it mapped.
func (mappingClient *MappingClient) AutoMap(columnMappings []types.ColumnMapping, staticFieldMappings []types.StaticFieldMapping, fields []types.DestinationField) int {
	mapped := 0
	for i := range columnMappings {
		columnMapping := &columnMappings[i]
		if columnMapping.IsMapped() {
			continue
		}

		header := strings.ToLower(strings.TrimSpace(columnMapping.SourceColumnName))
		if header == "" {
			continue
		}

		for _, field := range fields {
			if !headerMatchesField(header, field) {
				continue
			}
			if IsFieldClaimed(field.ID, columnMappings, staticFieldMappings, -1, -1) {
				break
			}
			columnMapping.DestinationField = types.Field(field.ID)
			mapped++
			mappingClient.Logger.Tracef("Auto-mapped column %q to field %q", columnMapping.SourceColumnName, field.Name)
			break
		}
	}
	return mapped
}

func headerMatchesField(header string, field types.DestinationField) bool {
	name := strings.ToLower(field.Name)
	if name == "" {
		return false
	}
	return header == name ||
		header == strings.ToLower(field.Field) ||
		strings.Contains(header, name) ||
		strings.Contains(name, header)
}

// IsFieldClaimed reports whether fieldID is used by any column mapping other
// than excludeColumn or any static mapping other than excludeStatic. Pass -1 to
// exclude nothing.
func IsFieldClaimed(fieldID string, columnMappings []types.ColumnMapping, staticFieldMappings []types.StaticFieldMapping, excludeColumn int, excludeStatic int) bool {
	for i, columnMapping := range columnMappings {
		if i != excludeColumn && types.FieldValue(columnMapping.DestinationField) == fieldID {
			return true
		}
	}
	for i, staticFieldMapping := range staticFieldMappings {
		if i != excludeStatic && types.FieldValue(staticFieldMapping.DestinationField) == fieldID {
			return true
		}
	}
	return false
}

// ToFieldMappings converts working mappings into the form saved with a template.
func ToFieldMappings(columnMappings []types.ColumnMapping) []types.FieldMapping {
	fieldMappings := make([]types.FieldMapping, len(columnMappings))
	for i, columnMapping := range columnMappings {
		fieldMappings[i] = types.FieldMapping{
			SourceColumnName:    columnMapping.SourceColumnName,
			DestinationField:    types.CloneField(columnMapping.DestinationField),
			IsReconciliationKey: columnMapping.IsReconciliationKey,
		}
	}
	return fieldMappings
}

// FromFieldMappings turns a template's saved mappings into working mappings.
// Column indexes are unknown until a file is reconciled against them.
func FromFieldMappings(fieldMappings []types.FieldMapping) []types.ColumnMapping {
	columnMappings := make([]types.ColumnMapping, len(fieldMappings))
	for i, fieldMapping := range fieldMappings {
		columnMappings[i] = types.ColumnMapping{
			SourceColumnIndex:   types.InvalidColumnIndex,
			SourceColumnName:    fieldMapping.SourceColumnName,
			DestinationField:    types.CloneField(fieldMapping.DestinationField),
			IsReconciliationKey: fieldMapping.IsReconciliationKey,
		}
	}
	return columnMappings
}
