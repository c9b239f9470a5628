package templates

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/json"
	"github.com/csvimport/import-wizard/types"
)

const (
	RecordFileName   = "templates.json"
	RecentPreviewMax = 5
)

type ITemplateClient interface {
	List() []types.Template
	Get(id string) (types.Template, error)
	Create(data types.TemplateData) types.Template
	Update(id string, patch types.TemplatePatch) (types.Template, error)
	Delete(id string) bool
	Touch(id string) error
	Recent(limit int) ([]types.Template, int)
	FindByName(name string) (types.Template, error)
}

// TemplateClient keeps the template collection in memory and mirrors it to a
// single JSON record after every mutation. The in-memory collection is
// authoritative for the session even when the record cannot be written.
type TemplateClient struct {
	JsonClient json.IJsonClient
	Now        func() time.Time
	NewID      func() string
	Logger     *logrus.Logger
	templates  []types.Template
}

func NewTemplateClient(jsonClient json.IJsonClient, logger *logrus.Logger) *TemplateClient {
	templateClient := &TemplateClient{
		JsonClient: jsonClient,
		Now:        time.Now,
		NewID:      uuid.NewString,
		Logger:     logger,
	}
	templateClient.templates = templateClient.load()
	return templateClient
}

func (templateClient *TemplateClient) load() []types.Template {
	templates := []types.Template{}
	err := templateClient.JsonClient.Import(RecordFileName, &templates)
	if errors.Is(err, json.ErrRecordNotFound) {
		templateClient.Logger.Debug("No template record found, starting with an empty collection")
		return []types.Template{}
	}
	if err != nil {
		templateClient.Logger.Errorf("Failed to load templates: %v", err)
		return []types.Template{}
	}
	templateClient.Logger.Debugf("Loaded %d templates", len(templates))
	return templates
}

func (templateClient *TemplateClient) save() {
	if err := templateClient.JsonClient.Export(templateClient.templates, RecordFileName); err != nil {
		templateClient.Logger.Errorf("Failed to save templates: %v", err)
	}
}

func (templateClient *TemplateClient) indexOf(id string) int {
	for i, template := range templateClient.templates {
		if template.ID == id {
			return i
		}
	}
	return -1
}

func (templateClient *TemplateClient) List() []types.Template {
	templates := make([]types.Template, len(templateClient.templates))
	for i, template := range templateClient.templates {
		templates[i] = template.Clone()
	}
	return templates
}

func (templateClient *TemplateClient) Get(id string) (types.Template, error) {
	index := templateClient.indexOf(id)
	if index == -1 {
		return types.Template{}, types.ErrTemplateNotFound
	}
	return templateClient.templates[index].Clone(), nil
}

func (templateClient *TemplateClient) Create(data types.TemplateData) types.Template {
	now := templateClient.Now().UTC()
	template := types.Template{
		ID:                  templateClient.NewID(),
		Name:                data.Name,
		Comment:             data.Comment,
		DestinationType:     data.DestinationType,
		FieldMappings:       types.CloneFieldMappings(data.FieldMappings),
		StaticFieldMappings: types.CloneStaticFieldMappings(data.StaticFieldMappings),
		CreatedAt:           now,
		LastUsedAt:          now,
	}

	templateClient.templates = append(templateClient.templates, template)
	templateClient.save()
	templateClient.Logger.Infof("Created template %q (%s)", template.Name, template.ID)

	return template.Clone()
}

func (templateClient *TemplateClient) Update(id string, patch types.TemplatePatch) (types.Template, error) {
	index := templateClient.indexOf(id)
	if index == -1 {
		return types.Template{}, types.ErrTemplateNotFound
	}

	template := templateClient.templates[index]
	if patch.Name != nil {
		template.Name = *patch.Name
	}
	if patch.Comment != nil {
		template.Comment = *patch.Comment
	}
	if patch.DestinationType != nil {
		template.DestinationType = *patch.DestinationType
	}
	if patch.FieldMappings != nil {
		template.FieldMappings = types.CloneFieldMappings(patch.FieldMappings)
	}
	if patch.StaticFieldMappings != nil {
		template.StaticFieldMappings = types.CloneStaticFieldMappings(patch.StaticFieldMappings)
	}
	template.LastUsedAt = templateClient.Now().UTC()

	templateClient.templates[index] = template
	templateClient.save()
	templateClient.Logger.Debugf("Updated template %q (%s)", template.Name, template.ID)

	return template.Clone(), nil
}

func (templateClient *TemplateClient) Delete(id string) bool {
	index := templateClient.indexOf(id)
	if index == -1 {
		return false
	}

	name := templateClient.templates[index].Name
	templateClient.templates = append(templateClient.templates[:index], templateClient.templates[index+1:]...)
	templateClient.save()
	templateClient.Logger.Infof("Deleted template %q (%s)", name, id)

	return true
}

// Touch marks a template as used now.
func (templateClient *TemplateClient) Touch(id string) error {
	_, err := templateClient.Update(id, types.TemplatePatch{})
	return err
}

// Recent returns templates ordered by most recent use, capped to limit when
// limit is positive, along with the number of templates left out.
func (templateClient *TemplateClient) Recent(limit int) ([]types.Template, int) {
	templates := templateClient.List()
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].LastUsedAt.After(templates[j].LastUsedAt)
	})

	if limit <= 0 || len(templates) <= limit {
		return templates, 0
	}
	return templates[:limit], len(templates) - limit
}

// FindByName returns the first template with the given name.
func (templateClient *TemplateClient) FindByName(name string) (types.Template, error) {
	for _, template := range templateClient.templates {
		if template.Name == name {
			return template.Clone(), nil
		}
	}
	return types.Template{}, types.ErrTemplateNotFound
}
