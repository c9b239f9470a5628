package analyzer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvimport/import-wizard/types"
)

func testFields() []types.DestinationField {
	return []types.DestinationField{
		{ID: "1", Name: "Name", Field: "name", Required: true},
		{ID: "5", Name: "Serial number", Field: "serial"},
		{ID: "6", Name: "Inventory number", Field: "otherserial"},
		{ID: "3", Name: "Location", Field: "locations_id"},
		{ID: "16", Name: "Comments", Field: "comment"},
	}
}

func TestMappingClient_GenerateColumnMappings(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())

	columnMappings := mappingClient.GenerateColumnMappings([]string{"Name", "Serial"})

	assert.Equal(t, []types.ColumnMapping{
		{SourceColumnIndex: 0, SourceColumnName: "Name"},
		{SourceColumnIndex: 1, SourceColumnName: "Serial"},
	}, columnMappings)
}

func TestMappingClient_Reconcile_AllColumnsPresent(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnIndex: 3, SourceColumnName: "Name", DestinationField: types.Field("field:1")},
	}

	result := mappingClient.Reconcile(previous, []string{"Name", "Serial"})

	require.Len(t, result.ColumnMappings, 2)
	assert.Equal(t, 0, result.ColumnMappings[0].SourceColumnIndex)
	assert.Equal(t, "field:1", *result.ColumnMappings[0].DestinationField)
	assert.Equal(t, types.ColumnMapping{SourceColumnIndex: 1, SourceColumnName: "Serial"}, result.ColumnMappings[1])
	assert.Equal(t, 1, result.TotalMapped)
	assert.Equal(t, 1, result.MatchedCount)
	assert.True(t, result.FastTrackEligible)
	assert.Empty(t, result.MissingColumns())
}

func TestMappingClient_Reconcile_ColumnMissing(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnIndex: 0, SourceColumnName: "Name", DestinationField: types.Field("field:1")},
	}

	result := mappingClient.Reconcile(previous, []string{"Serial"})

	assert.Equal(t, types.InvalidColumnIndex, result.ColumnMappings[0].SourceColumnIndex)
	assert.Equal(t, "field:1", *result.ColumnMappings[0].DestinationField)
	assert.False(t, result.FastTrackEligible)
	assert.Equal(t, []string{"Name"}, result.MissingColumns())
}

func TestMappingClient_Reconcile_CaseSensitive(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnName: "Name", DestinationField: types.Field("1")},
	}

	result := mappingClient.Reconcile(previous, []string{"name"})

	assert.Equal(t, types.InvalidColumnIndex, result.ColumnMappings[0].SourceColumnIndex)
	assert.False(t, result.FastTrackEligible)
}

func TestMappingClient_Reconcile_PartialMatchIsNotEligible(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnName: "Name", DestinationField: types.Field("1")},
		{SourceColumnName: "Serial", DestinationField: types.Field("5")},
		{SourceColumnName: "Notes"},
	}

	result := mappingClient.Reconcile(previous, []string{"Serial", "Notes"})

	assert.Equal(t, 2, result.TotalMapped)
	assert.Equal(t, 1, result.MatchedCount)
	assert.False(t, result.FastTrackEligible)
	assert.Equal(t, 0, result.ColumnMappings[1].SourceColumnIndex)
	assert.Equal(t, 1, result.ColumnMappings[2].SourceColumnIndex)
	assert.Len(t, result.ColumnMappings, 3)
}

func TestMappingClient_Reconcile_NothingMappedIsNotEligible(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnName: "Name"},
	}

	result := mappingClient.Reconcile(previous, []string{"Name"})

	assert.Equal(t, 0, result.TotalMapped)
	assert.False(t, result.FastTrackEligible)
}

func TestMappingClient_Reconcile_DoesNotMutateInput(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnIndex: 7, SourceColumnName: "Name", DestinationField: types.Field("1")},
	}

	mappingClient.Reconcile(previous, []string{"Name"})

	assert.Equal(t, 7, previous[0].SourceColumnIndex)
}

func TestMappingClient_Reconcile_DuplicateHeaderResolvesToFirst(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	previous := []types.ColumnMapping{
		{SourceColumnName: "Name", DestinationField: types.Field("1")},
	}

	result := mappingClient.Reconcile(previous, []string{"Serial", "Name", "Name"})

	assert.Equal(t, 1, result.ColumnMappings[0].SourceColumnIndex)
	assert.Len(t, result.ColumnMappings, 3)
}

func TestMappingClient_AutoMap(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	columnMappings := mappingClient.GenerateColumnMappings([]string{"Name", " SERIAL ", "Notes", "", "Hostname"})

	mapped := mappingClient.AutoMap(columnMappings, nil, testFields())

	assert.Equal(t, 2, mapped)
	assert.Equal(t, "1", types.FieldValue(columnMappings[0].DestinationField))
	assert.Equal(t, "5", types.FieldValue(columnMappings[1].DestinationField))
	assert.Nil(t, columnMappings[2].DestinationField)
	assert.Nil(t, columnMappings[3].DestinationField)
	assert.Nil(t, columnMappings[4].DestinationField)
}

func TestMappingClient_AutoMap_NeverClaimsTwice(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	columnMappings := mappingClient.GenerateColumnMappings([]string{"Location", "Location code", "Comment"})
	staticFieldMappings := []types.StaticFieldMapping{{DestinationField: types.Field("16"), LiteralValue: "imported"}}

	mapped := mappingClient.AutoMap(columnMappings, staticFieldMappings, testFields())

	// "Location code" resembles Location, which the first column already holds,
	// and Comments is taken by the static field
	assert.Equal(t, 1, mapped)
	assert.Equal(t, "3", types.FieldValue(columnMappings[0].DestinationField))
	assert.Nil(t, columnMappings[1].DestinationField)
	assert.Nil(t, columnMappings[2].DestinationField)
}

func TestMappingClient_AutoMap_KeepsExistingAssignments(t *testing.T) {
	mappingClient := NewMappingClient(logrus.New())
	columnMappings := []types.ColumnMapping{
		{SourceColumnIndex: 0, SourceColumnName: "Name", DestinationField: types.Field("16")},
	}

	mapped := mappingClient.AutoMap(columnMappings, nil, testFields())

	assert.Equal(t, 0, mapped)
	assert.Equal(t, "16", types.FieldValue(columnMappings[0].DestinationField))
}

func TestIsFieldClaimed(t *testing.T) {
	columnMappings := []types.ColumnMapping{
		{SourceColumnName: "Name", DestinationField: types.Field("1")},
		{SourceColumnName: "Serial"},
	}
	staticFieldMappings := []types.StaticFieldMapping{
		{DestinationField: types.Field("31"), LiteralValue: "In stock"},
	}

	assert.True(t, IsFieldClaimed("1", columnMappings, staticFieldMappings, -1, -1))
	assert.False(t, IsFieldClaimed("1", columnMappings, staticFieldMappings, 0, -1))
	assert.True(t, IsFieldClaimed("31", columnMappings, staticFieldMappings, 1, -1))
	assert.False(t, IsFieldClaimed("31", columnMappings, staticFieldMappings, -1, 0))
	assert.False(t, IsFieldClaimed("5", columnMappings, staticFieldMappings, -1, -1))
}

func TestFieldMappingConversions(t *testing.T) {
	columnMappings := []types.ColumnMapping{
		{SourceColumnIndex: 0, SourceColumnName: "Name", DestinationField: types.Field("1"), IsReconciliationKey: true},
		{SourceColumnIndex: 1, SourceColumnName: "Notes"},
	}

	fieldMappings := ToFieldMappings(columnMappings)
	assert.Equal(t, []types.FieldMapping{
		{SourceColumnName: "Name", DestinationField: types.Field("1"), IsReconciliationKey: true},
		{SourceColumnName: "Notes"},
	}, fieldMappings)

	restored := FromFieldMappings(fieldMappings)
	assert.Equal(t, types.InvalidColumnIndex, restored[0].SourceColumnIndex)
	assert.Equal(t, "Name", restored[0].SourceColumnName)
	assert.True(t, restored[0].IsReconciliationKey)
	assert.Nil(t, restored[1].DestinationField)
}
