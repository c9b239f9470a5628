package types

import "time"

type Template struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Comment             string               `json:"comment,omitempty"`
	DestinationType     string               `json:"destinationType"`
	FieldMappings       []FieldMapping       `json:"fieldMappings"`
	StaticFieldMappings []StaticFieldMapping `json:"staticFieldMappings"`
	CreatedAt           time.Time            `json:"createdAt"`
	LastUsedAt          time.Time            `json:"lastUsedAt"`
}

// TemplateData is everything a caller supplies when creating a template. The
// store assigns the identity and timestamps.
type TemplateData struct {
	Name                string
	Comment             string
	DestinationType     string
	FieldMappings       []FieldMapping
	StaticFieldMappings []StaticFieldMapping
}

// TemplatePatch holds the fields to change on update. Nil fields are left as they are.
type TemplatePatch struct {
	Name                *string
	Comment             *string
	DestinationType     *string
	FieldMappings       []FieldMapping
	StaticFieldMappings []StaticFieldMapping
}

// SourceColumnNames returns the non-empty source column names in mapping order.
func (template *Template) SourceColumnNames() []string {
	names := []string{}
	for _, fieldMapping := range template.FieldMappings {
		if fieldMapping.SourceColumnName != "" {
			names = append(names, fieldMapping.SourceColumnName)
		}
	}
	return names
}

func (template *Template) MappedFieldCount() int {
	count := 0
	for _, fieldMapping := range template.FieldMappings {
		if fieldMapping.DestinationField != nil {
			count++
		}
	}
	return count
}

func (template Template) Clone() Template {
	clone := template
	clone.FieldMappings = CloneFieldMappings(template.FieldMappings)
	clone.StaticFieldMappings = CloneStaticFieldMappings(template.StaticFieldMappings)
	return clone
}

func CloneTemplates(templates []Template) []Template {
	clone := make([]Template, len(templates))
	for i, template := range templates {
		clone[i] = template.Clone()
	}
	return clone
}
