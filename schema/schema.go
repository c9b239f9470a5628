package schema

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/csvimport/import-wizard/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type ISchemaClient interface {
	GetTypes() []types.DestinationType
	GetFields(typeID string) []types.DestinationField
	GetRequiredFields(typeID string) []types.DestinationField
	HasType(typeID string) bool
}

type Catalog struct {
	Types  []types.DestinationType             `yaml:"types"`
	Fields map[string][]types.DestinationField `yaml:"fields"`
}

// SchemaClient answers questions about the destination system's entity types
// from a catalog loaded once at start-up.
type SchemaClient struct {
	Catalog *Catalog
	Logger  *logrus.Logger
}

// NewSchemaClient loads the catalog at catalogPath, or the built-in catalog when
// catalogPath is empty.
func NewSchemaClient(catalogPath string, logger *logrus.Logger) (*SchemaClient, error) {
	content := defaultCatalog
	if catalogPath != "" {
		fileContent, err := os.ReadFile(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema catalog: %w", err)
		}
		content = fileContent
		logger.Debugf("Using schema catalog %s", catalogPath)
	}

	catalog, err := ParseCatalog(content)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Schema catalog has %d destination types", len(catalog.Types))
	return &SchemaClient{
		Catalog: catalog,
		Logger:  logger,
	}, nil
}

func ParseCatalog(content []byte) (*Catalog, error) {
	catalog := &Catalog{}
	if err := yaml.Unmarshal(content, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse schema catalog: %w", err)
	}

	seen := map[string]bool{}
	for _, destinationType := range catalog.Types {
		if destinationType.ID == "" {
			return nil, fmt.Errorf("schema catalog has a type without id")
		}
		if seen[destinationType.ID] {
			return nil, fmt.Errorf("schema catalog has duplicate type %q", destinationType.ID)
		}
		seen[destinationType.ID] = true

		fieldIDs := map[string]bool{}
		for _, field := range catalog.Fields[destinationType.ID] {
			if fieldIDs[field.ID] {
				return nil, fmt.Errorf("schema catalog type %q has duplicate field %q", destinationType.ID, field.ID)
			}
			fieldIDs[field.ID] = true
		}
	}
	return catalog, nil
}

func (schemaClient *SchemaClient) GetTypes() []types.DestinationType {
	return append([]types.DestinationType{}, schemaClient.Catalog.Types...)
}

func (schemaClient *SchemaClient) HasType(typeID string) bool {
	for _, destinationType := range schemaClient.Catalog.Types {
		if destinationType.ID == typeID {
			return true
		}
	}
	return false
}

func (schemaClient *SchemaClient) GetFields(typeID string) []types.DestinationField {
	return append([]types.DestinationField{}, schemaClient.Catalog.Fields[typeID]...)
}

func (schemaClient *SchemaClient) GetRequiredFields(typeID string) []types.DestinationField {
	required := []types.DestinationField{}
	for _, field := range schemaClient.Catalog.Fields[typeID] {
		if field.Required {
			required = append(required, field)
		}
	}
	return required
}

// FieldName returns the display name of a field, or the id when it is unknown.
func FieldName(fields []types.DestinationField, fieldID string) string {
	for _, field := range fields {
		if field.ID == fieldID {
			return field.Name
		}
	}
	return fieldID
}
