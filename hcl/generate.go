package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/csvimport/import-wizard/types"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

type IHclClient interface {
	RenderTemplate(template *types.Template) []byte
	WriteTemplate(template *types.Template, fileName string) (string, error)
}

type HclClient struct {
	WorkingFolderPath string
	Logger            *logrus.Logger
}

func NewHclClient(workingFolderPath string, logger *logrus.Logger) *HclClient {
	return &HclClient{
		WorkingFolderPath: workingFolderPath,
		Logger:            logger,
	}
}

func TemplateFileName(template *types.Template) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(template.Name, "_")) + ".hcl"
}

func (hclClient *HclClient) RenderTemplate(template *types.Template) []byte {
	hclFile := hclwrite.NewEmptyFile()

	templateBlock := hclFile.Body().AppendNewBlock("template", []string{template.Name})
	templateBody := templateBlock.Body()
	templateBody.SetAttributeValue("id", cty.StringVal(template.ID))
	templateBody.SetAttributeValue("destination_type", cty.StringVal(template.DestinationType))
	if template.Comment != "" {
		templateBody.SetAttributeValue("comment", cty.StringVal(template.Comment))
	}
	templateBody.SetAttributeValue("created_at", cty.StringVal(template.CreatedAt.UTC().Format(time.RFC3339)))
	templateBody.SetAttributeValue("last_used_at", cty.StringVal(template.LastUsedAt.UTC().Format(time.RFC3339)))

	for _, fieldMapping := range template.FieldMappings {
		templateBody.AppendNewline()
		mappingBody := templateBody.AppendNewBlock("mapping", nil).Body()
		mappingBody.SetAttributeValue("source_column", cty.StringVal(fieldMapping.SourceColumnName))
		mappingBody.SetAttributeValue("destination_field", fieldValue(fieldMapping.DestinationField))
		mappingBody.SetAttributeValue("reconciliation_key", cty.BoolVal(fieldMapping.IsReconciliationKey))
	}

	for _, staticFieldMapping := range template.StaticFieldMappings {
		templateBody.AppendNewline()
		staticBody := templateBody.AppendNewBlock("static_mapping", nil).Body()
		staticBody.SetAttributeValue("destination_field", fieldValue(staticFieldMapping.DestinationField))
		staticBody.SetAttributeValue("value", cty.StringVal(staticFieldMapping.LiteralValue))
	}

	return hclwrite.Format(hclFile.Bytes())
}

func (hclClient *HclClient) WriteTemplate(template *types.Template, fileName string) (string, error) {
	hclFilePath := fileName
	if !filepath.IsAbs(hclFilePath) {
		hclFilePath = filepath.Join(hclClient.WorkingFolderPath, fileName)
	}

	if err := os.MkdirAll(filepath.Dir(hclFilePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create folder for %s: %w", fileName, err)
	}
	if err := os.WriteFile(hclFilePath, hclClient.RenderTemplate(template), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fileName, err)
	}

	hclClient.Logger.Infof("HCL template file %s written to: %s", fileName, hclFilePath)
	return hclFilePath, nil
}

func fieldValue(field *string) cty.Value {
	if field == nil {
		return cty.NullVal(cty.String)
	}
	return cty.StringVal(*field)
}
