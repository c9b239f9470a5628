/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/hcl"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/templates"
	"github.com/csvimport/import-wizard/types"
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage saved import templates",
	Long: `Templates remember the destination type, column mappings and static fields of an
import so the next file with the same layout can skip the mapping review.

Examples:
  # Show the most recently used templates
  csv-import-wizard templates list

  # Write an example file with the columns a template expects
  csv-import-wizard templates example "Office PCs" --delimiter semicolon`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates, most recently used first",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())

		limit := templates.RecentPreviewMax
		if all, _ := cmd.Flags().GetBool("all"); all {
			limit = 0
		}
		recent, remaining := app.templateClient.Recent(limit)
		if len(recent) == 0 {
			fmt.Println("No saved templates yet")
			return
		}

		rows := [][]string{}
		for _, template := range recent {
			rows = append(rows, []string{
				template.Name,
				destinationTypeName(app.schemaClient, template.DestinationType),
				strconv.Itoa(template.MappedFieldCount()),
				strconv.Itoa(len(template.StaticFieldMappings)),
				template.LastUsedAt.Local().Format(time.DateTime),
			})
		}

		fmt.Println(table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tableHeaderStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("Name", "Type", "Mapped", "Static", "Last used").
			Rows(rows...).
			String())
		if remaining > 0 {
			fmt.Printf("%d more, use --all to see every template\n", remaining)
		}
	},
}

type templateView struct {
	ID              string              `yaml:"id"`
	Name            string              `yaml:"name"`
	Comment         string              `yaml:"comment,omitempty"`
	DestinationType string              `yaml:"destinationType"`
	Mappings        []mappingView       `yaml:"mappings"`
	StaticMappings  []staticMappingView `yaml:"staticMappings,omitempty"`
	CreatedAt       time.Time           `yaml:"createdAt"`
	LastUsedAt      time.Time           `yaml:"lastUsedAt"`
}

type mappingView struct {
	Column            string `yaml:"column"`
	Field             string `yaml:"field,omitempty"`
	ReconciliationKey bool   `yaml:"reconciliationKey,omitempty"`
}

type staticMappingView struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

func newTemplateView(template types.Template, schemaClient schema.ISchemaClient) templateView {
	fields := schemaClient.GetFields(template.DestinationType)
	view := templateView{
		ID:              template.ID,
		Name:            template.Name,
		Comment:         template.Comment,
		DestinationType: destinationTypeName(schemaClient, template.DestinationType),
		Mappings:        []mappingView{},
		CreatedAt:       template.CreatedAt,
		LastUsedAt:      template.LastUsedAt,
	}
	for _, fieldMapping := range template.FieldMappings {
		mapping := mappingView{
			Column:            fieldMapping.SourceColumnName,
			ReconciliationKey: fieldMapping.IsReconciliationKey,
		}
		if fieldMapping.DestinationField != nil {
			mapping.Field = schema.FieldName(fields, *fieldMapping.DestinationField)
		}
		view.Mappings = append(view.Mappings, mapping)
	}
	for _, staticFieldMapping := range template.StaticFieldMappings {
		view.StaticMappings = append(view.StaticMappings, staticMappingView{
			Field: schema.FieldName(fields, types.FieldValue(staticFieldMapping.DestinationField)),
			Value: staticFieldMapping.LiteralValue,
		})
	}
	return view
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a template as YAML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())
		template := findTemplate(app.templateClient, args[0])

		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(newTemplateView(template, app.schemaClient)); err != nil {
			log.Fatalf("Error printing template %s: %v", template.Name, err)
		}
		encoder.Close()
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())
		template := findTemplate(app.templateClient, args[0])

		if !app.templateClient.Delete(template.ID) {
			log.Fatalf("Template %s could not be deleted", template.Name)
		}
		log.Infof("Deleted template %s", template.Name)
	},
}

var templatesExampleCmd = &cobra.Command{
	Use:   "example <name>",
	Short: "Write a one line example file with the columns a template expects",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())
		template := findTemplate(app.templateClient, args[0])

		delimiterFlag, _ := cmd.Flags().GetString("delimiter")
		delimiter, ok := types.ParseDelimiter(delimiterFlag)
		if !ok {
			log.Fatalf("Unsupported delimiter: %s", delimiterFlag)
		}
		fileName, _ := cmd.Flags().GetString("output")
		if fileName == "" {
			fileName = csv.ExampleFileName(&template)
		}

		filePath, err := app.csvClient.WriteExampleFile(&template, delimiter, fileName)
		if err != nil {
			log.Fatalf("Error writing example file: %v", err)
		}
		log.Infof("Example file written to %s", filePath)
	},
}

var templatesExportHclCmd = &cobra.Command{
	Use:   "export-hcl <name>",
	Short: "Write a template as an HCL definition file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())
		template := findTemplate(app.templateClient, args[0])

		fileName, _ := cmd.Flags().GetString("output")
		if fileName == "" {
			fileName = hcl.TemplateFileName(&template)
		}

		filePath, err := app.hclClient.WriteTemplate(&template, fileName)
		if err != nil {
			log.Fatalf("Error writing HCL file: %v", err)
		}
		log.Infof("HCL file written to %s", filePath)
	},
}

func findTemplate(templateClient templates.ITemplateClient, name string) types.Template {
	template, err := templateClient.FindByName(name)
	if err != nil {
		log.Fatalf("Error finding template %s: %v", name, err)
	}
	return template
}

func destinationTypeName(schemaClient schema.ISchemaClient, typeID string) string {
	for _, destinationType := range schemaClient.GetTypes() {
		if destinationType.ID == typeID {
			return destinationType.Name
		}
	}
	return typeID
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
	templatesCmd.AddCommand(templatesExampleCmd)
	templatesCmd.AddCommand(templatesExportHclCmd)

	templatesListCmd.Flags().BoolP("all", "a", false, "List every template instead of the most recent ones")
	templatesExampleCmd.Flags().String("delimiter", "semicolon", "Delimiter: comma, semicolon, tab or pipe")
	templatesExampleCmd.Flags().StringP("output", "o", "", "File name inside the data folder")
	templatesExportHclCmd.Flags().StringP("output", "o", "", "File name inside the data folder")
}
