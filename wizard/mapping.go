package wizard

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/templates"
	"github.com/csvimport/import-wizard/types"
)

type MappingStep struct {
	Schema    schema.ISchemaClient
	Mapping   analyzer.IMappingClient
	Templates templates.ITemplateClient
	Logger    *logrus.Logger
}

func (mappingStep *MappingStep) Enter(session *Session) {
	mappingStep.Logger.Debugf("Mapping step: %d of %d columns mapped, %d static fields", session.MappedColumnCount(), len(session.ColumnMappings), len(session.StaticFieldMappings))
}

func (mappingStep *MappingStep) DestinationTypes() []types.DestinationType {
	return mappingStep.Schema.GetTypes()
}

func (mappingStep *MappingStep) Fields(session *Session) []types.DestinationField {
	if session.DestinationType == "" {
		return []types.DestinationField{}
	}
	return mappingStep.Schema.GetFields(session.DestinationType)
}

// SelectDestinationType switches the entity type being imported. Fields of a
// previous type are dropped and the columns are auto-mapped against the new
// type. An empty typeID clears the type and every field assignment.
func (mappingStep *MappingStep) SelectDestinationType(session *Session, typeID string) error {
	if typeID == "" {
		session.DestinationType = ""
		mappingStep.clearFields(session)
		return nil
	}
	if !mappingStep.Schema.HasType(typeID) {
		return types.NewValidationError("destinationType", "Unknown destination type %s", typeID)
	}

	if session.DestinationType != typeID {
		if session.DestinationType != "" {
			mappingStep.clearFields(session)
		}
		session.DestinationType = typeID
	}

	mapped := mappingStep.Mapping.AutoMap(session.ColumnMappings, session.StaticFieldMappings, mappingStep.Fields(session))
	mappingStep.Logger.Infof("Destination type %s selected, %d columns mapped automatically", typeID, mapped)
	return nil
}

// AssignField maps a column to a destination field, or clears it when fieldID
// is empty. A field may only be claimed once across columns and static fields.
func (mappingStep *MappingStep) AssignField(session *Session, columnIndex int, fieldID string) error {
	if columnIndex < 0 || columnIndex >= len(session.ColumnMappings) {
		return types.NewValidationError("column", "No column at position %d", columnIndex)
	}
	if fieldID != "" {
		if err := mappingStep.checkField(session, fieldID, columnIndex, -1); err != nil {
			return err
		}
	}

	session.ColumnMappings[columnIndex].DestinationField = types.Field(fieldID)
	if fieldID == "" {
		session.ColumnMappings[columnIndex].IsReconciliationKey = false
	}
	return nil
}

func (mappingStep *MappingStep) ToggleReconciliationKey(session *Session, columnIndex int) error {
	if columnIndex < 0 || columnIndex >= len(session.ColumnMappings) {
		return types.NewValidationError("column", "No column at position %d", columnIndex)
	}
	columnMapping := &session.ColumnMappings[columnIndex]
	if !columnMapping.IsMapped() {
		return types.NewValidationError("column", "Map %s to a field before using it as a reconciliation key", columnMapping.SourceColumnName)
	}
	columnMapping.IsReconciliationKey = !columnMapping.IsReconciliationKey
	return nil
}

func (mappingStep *MappingStep) AddStaticField(session *Session) int {
	session.StaticFieldMappings = append(session.StaticFieldMappings, types.StaticFieldMapping{})
	return len(session.StaticFieldMappings) - 1
}

func (mappingStep *MappingStep) SetStaticField(session *Session, index int, fieldID string) error {
	if index < 0 || index >= len(session.StaticFieldMappings) {
		return types.NewValidationError("staticField", "No static field at position %d", index)
	}
	if fieldID != "" {
		if err := mappingStep.checkField(session, fieldID, -1, index); err != nil {
			return err
		}
	}
	session.StaticFieldMappings[index].DestinationField = types.Field(fieldID)
	return nil
}

func (mappingStep *MappingStep) SetStaticValue(session *Session, index int, value string) error {
	if index < 0 || index >= len(session.StaticFieldMappings) {
		return types.NewValidationError("staticField", "No static field at position %d", index)
	}
	session.StaticFieldMappings[index].LiteralValue = value
	return nil
}

func (mappingStep *MappingStep) RemoveStaticField(session *Session, index int) error {
	if index < 0 || index >= len(session.StaticFieldMappings) {
		return types.NewValidationError("staticField", "No static field at position %d", index)
	}
	session.StaticFieldMappings = append(session.StaticFieldMappings[:index], session.StaticFieldMappings[index+1:]...)
	return nil
}

// SaveTemplate stores the current mapping. The selected template is updated in
// template mode; otherwise a new template is created.
func (mappingStep *MappingStep) SaveTemplate(session *Session, name string, comment string) (types.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Template{}, types.NewValidationError("name", "Please enter a template name")
	}
	if session.DestinationType == "" {
		return types.Template{}, types.NewValidationError("destinationType", "Select a destination type before saving a template")
	}

	fieldMappings := analyzer.ToFieldMappings(session.ColumnMappings)
	staticFieldMappings := types.CloneStaticFieldMappings(session.StaticFieldMappings)

	if session.IsTemplateMode() {
		template, err := mappingStep.Templates.Update(session.SelectedTemplate.ID, types.TemplatePatch{
			Name:                &name,
			Comment:             &comment,
			DestinationType:     &session.DestinationType,
			FieldMappings:       fieldMappings,
			StaticFieldMappings: staticFieldMappings,
		})
		if err != nil {
			return types.Template{}, err
		}
		session.SelectedTemplate = &template
		mappingStep.Logger.Infof("Template %s updated", template.Name)
		return template, nil
	}

	template := mappingStep.Templates.Create(types.TemplateData{
		Name:                name,
		Comment:             comment,
		DestinationType:     session.DestinationType,
		FieldMappings:       fieldMappings,
		StaticFieldMappings: staticFieldMappings,
	})
	mappingStep.Logger.Infof("Template %s created", template.Name)
	return template, nil
}

func (mappingStep *MappingStep) checkField(session *Session, fieldID string, excludeColumn int, excludeStatic int) error {
	fields := mappingStep.Fields(session)
	known := false
	for _, field := range fields {
		if field.ID == fieldID {
			known = true
			break
		}
	}
	if !known {
		return types.NewValidationError("field", "Unknown field %s for %s", fieldID, session.DestinationType)
	}
	if analyzer.IsFieldClaimed(fieldID, session.ColumnMappings, session.StaticFieldMappings, excludeColumn, excludeStatic) {
		return types.NewValidationError("field", "%s is already mapped", schema.FieldName(fields, fieldID))
	}
	return nil
}

func (mappingStep *MappingStep) clearFields(session *Session) {
	for i := range session.ColumnMappings {
		session.ColumnMappings[i].DestinationField = nil
		session.ColumnMappings[i].IsReconciliationKey = false
	}
	for i := range session.StaticFieldMappings {
		session.StaticFieldMappings[i].DestinationField = nil
	}
}
