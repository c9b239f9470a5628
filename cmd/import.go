/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/types"
	"github.com/csvimport/import-wizard/wizard"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV file without the interactive wizard",
	Long: `The import command runs the same four steps as the wizard from flags:

1. Uses the template named by --template, or starts a new import
2. Reads --file with the given parse options (the delimiter is detected unless set)
3. Applies --type, --map, --key and --static on top of the template or auto-mapping
4. Runs the import or a dry run and optionally writes the report

When a template matches the file and no mapping flags are given the mapping
review is skipped, as with the fast track in the wizard.

Examples:
  # Dry run a file with a saved template
  csv-import-wizard import --file ./pcs.csv --template "Office PCs" --dryRun

  # Map columns by hand and save the mapping as a template
  csv-import-wizard import --file ./monitors.csv --type Monitor --map "Screen=Size" --static "Status=In stock" --saveTemplate Monitors`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogger()
		app := newApplication(dataFolderPath())
		importWizard := app.wizard
		session := importWizard.Session

		filePath, _ := cmd.Flags().GetString("file")
		if filePath == "" {
			log.Fatalf("A file is required, use --file")
		}
		templateName, _ := cmd.Flags().GetString("template")
		typeID, _ := cmd.Flags().GetString("type")
		columnAssignments, _ := cmd.Flags().GetStringArray("map")
		keyColumns, _ := cmd.Flags().GetStringArray("key")
		staticAssignments, _ := cmd.Flags().GetStringArray("static")
		dryRun, _ := cmd.Flags().GetBool("dryRun")
		reportFileName, _ := cmd.Flags().GetString("report")
		reportFileName = strings.TrimSpace(reportFileName)
		saveTemplateName, _ := cmd.Flags().GetString("saveTemplate")
		comment, _ := cmd.Flags().GetString("comment")

		importWizard.Execute.Launch = func(session *wizard.Session, dryRun bool) {
			runImport(importWizard, dryRun)
		}

		if templateName != "" {
			template, err := app.templateClient.FindByName(templateName)
			if err != nil {
				log.Fatalf("Error finding template %s: %v", templateName, err)
			}
			importWizard.Start.ChooseTemplateMode(session)
			if err := importWizard.Start.SelectTemplate(session, template.ID); err != nil {
				log.Fatalf("Error selecting template %s: %v", templateName, err)
			}
		} else {
			importWizard.Start.ChooseNew(session)
		}

		options, err := formatOptionsFromFlags(cmd, session.FormatOptions)
		if err != nil {
			log.Fatalf("Invalid format options: %v", err)
		}
		if err := importWizard.Upload.SetFormatOptions(session, options); err != nil {
			log.Fatalf("Invalid format options: %v", err)
		}
		if err := importWizard.Upload.SelectFile(session, filePath); err != nil {
			log.Fatalf("Error loading %s: %v", filePath, err)
		}

		delimiterFlag, _ := cmd.Flags().GetString("delimiter")
		delimiter, _ := types.ParseDelimiter(delimiterFlag)
		if delimiter != types.DelimiterAuto && delimiter != session.FormatOptions.Delimiter {
			options := session.FormatOptions
			options.Delimiter = delimiter
			if err := importWizard.Upload.SetFormatOptions(session, options); err != nil {
				log.Fatalf("Error parsing %s: %v", filePath, err)
			}
		}
		log.Infof("Parsed %d rows and %d columns from %s", session.Table.RowCount(), session.Table.ColumnCount(), session.FileName)

		overridesMapping := typeID != "" || len(columnAssignments) > 0 || len(keyColumns) > 0 || len(staticAssignments) > 0
		if session.IsTemplateMode() && session.FastTrackEligible && !overridesMapping && saveTemplateName == "" {
			log.Infof("All columns of template %s were found, skipping the mapping review", session.SelectedTemplate.Name)
			if err := importWizard.Upload.FastTrack(session, dryRun); err != nil {
				log.Fatalf("Error starting import: %v", err)
			}
		} else {
			if session.IsTemplateMode() && len(session.MissingColumns) > 0 {
				log.Warnf("Columns missing from the file: %s", strings.Join(session.MissingColumns, ", "))
			}
			if !importWizard.Next() {
				log.Fatalf("%s has no rows to import", session.FileName)
			}
			if err := applyMapping(importWizard, typeID, columnAssignments, keyColumns, staticAssignments); err != nil {
				log.Fatalf("Error mapping columns: %v", err)
			}
			if saveTemplateName != "" {
				template, err := importWizard.Mapping.SaveTemplate(session, saveTemplateName, comment)
				if err != nil {
					log.Fatalf("Error saving template: %v", err)
				}
				log.Infof("Saved template %s (%s)", template.Name, template.ID)
			}
			if !importWizard.Next() {
				log.Fatalf("Select a destination type and map at least one column before importing")
			}
			runImport(importWizard, dryRun)
		}

		result := session.Result
		if result == nil {
			log.Fatalf("The import did not run")
		}
		label := "Import"
		if result.DryRun {
			label = "Dry run"
		}
		log.Infof("%s complete: %d succeeded, %d warnings, %d errors", label, result.SuccessCount, result.WarningCount, result.ErrorCount)

		if cmd.Flags().Changed("report") {
			var reportPath string
			var err error
			if reportFileName == "" {
				reportPath, err = importWizard.Execute.ExportReport(session)
			} else {
				reportPath, err = app.csvClient.WriteReportFile(result, reportFileName)
			}
			if err != nil {
				log.Fatalf("Error writing report: %v", err)
			}
			log.Infof("Report written to %s", reportPath)
		}
	},
}

func runImport(importWizard *wizard.Wizard, dryRun bool) {
	lastLogged := -1
	_, err := importWizard.Execute.Run(importWizard.Session, dryRun, func(progress types.Progress) {
		log.Debugf("Row %d of %d: %s", progress.CurrentIndex, progress.Total, progress.LastLogEntry.Message)
		if progress.PercentageComplete/10 != lastLogged/10 || progress.CurrentIndex == progress.Total {
			lastLogged = progress.PercentageComplete
			log.Infof("Imported %d of %d rows (%d%%)", progress.CurrentIndex, progress.Total, progress.PercentageComplete)
		}
	})
	if err != nil {
		log.Fatalf("Error running import: %v", err)
	}
}

func formatOptionsFromFlags(cmd *cobra.Command, options types.FormatOptions) (types.FormatOptions, error) {
	if cmd.Flags().Changed("encoding") {
		encoding, _ := cmd.Flags().GetString("encoding")
		options.Encoding = types.Encoding(encoding)
	}
	if cmd.Flags().Changed("header") {
		options.HasHeaderRow, _ = cmd.Flags().GetBool("header")
	}
	if cmd.Flags().Changed("skipRows") {
		options.SkipRowCount, _ = cmd.Flags().GetInt("skipRows")
	}
	if cmd.Flags().Changed("dateFormat") {
		dateFormat, _ := cmd.Flags().GetString("dateFormat")
		options.DateFormat = types.DateFormat(dateFormat)
	}
	if cmd.Flags().Changed("decimalSeparator") {
		decimalSeparator, _ := cmd.Flags().GetString("decimalSeparator")
		options.DecimalSeparator = types.DecimalSeparator(decimalSeparator)
	}
	if cmd.Flags().Changed("allowCreation") {
		options.AllowCreation, _ = cmd.Flags().GetBool("allowCreation")
	}
	if cmd.Flags().Changed("allowUpdate") {
		options.AllowUpdate, _ = cmd.Flags().GetBool("allowUpdate")
	}
	if cmd.Flags().Changed("relation") {
		options.IsRelation, _ = cmd.Flags().GetBool("relation")
	}

	delimiterFlag, _ := cmd.Flags().GetString("delimiter")
	if _, ok := types.ParseDelimiter(delimiterFlag); !ok {
		return options, types.NewValidationError("delimiter", "unsupported delimiter %q", delimiterFlag)
	}
	return options, options.Validate()
}

func applyMapping(importWizard *wizard.Wizard, typeID string, columnAssignments []string, keyColumns []string, staticAssignments []string) error {
	session := importWizard.Session
	mappingStep := importWizard.Mapping

	if typeID != "" {
		destinationType, ok := resolveDestinationType(mappingStep.DestinationTypes(), typeID)
		if !ok {
			return types.NewValidationError("destinationType", "unknown destination type %q", typeID)
		}
		if destinationType != session.DestinationType {
			if err := mappingStep.SelectDestinationType(session, destinationType); err != nil {
				return err
			}
		}
	}
	if session.DestinationType == "" {
		return types.NewValidationError("destinationType", "a destination type is required, use --type")
	}
	fields := mappingStep.Fields(session)

	for _, assignment := range columnAssignments {
		column, fieldName, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		columnIndex := columnIndexOf(session, column)
		if columnIndex == types.InvalidColumnIndex {
			return types.NewValidationError("column", "the file has no column %q", column)
		}
		fieldID := ""
		if fieldName != "" {
			var ok bool
			if fieldID, ok = resolveField(fields, fieldName); !ok {
				return types.NewValidationError("field", "unknown field %q for %s", fieldName, session.DestinationType)
			}
		}
		// Release the column's current field first so two columns can swap fields.
		if err := mappingStep.AssignField(session, columnIndex, ""); err != nil {
			return err
		}
		if err := mappingStep.AssignField(session, columnIndex, fieldID); err != nil {
			return err
		}
	}

	for _, column := range keyColumns {
		columnIndex := columnIndexOf(session, column)
		if columnIndex == types.InvalidColumnIndex {
			return types.NewValidationError("column", "the file has no column %q", column)
		}
		if !session.ColumnMappings[columnIndex].IsReconciliationKey {
			if err := mappingStep.ToggleReconciliationKey(session, columnIndex); err != nil {
				return err
			}
		}
	}

	for _, assignment := range staticAssignments {
		fieldName, value, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		fieldID, ok := resolveField(fields, fieldName)
		if !ok {
			return types.NewValidationError("field", "unknown field %q for %s", fieldName, session.DestinationType)
		}
		index := mappingStep.AddStaticField(session)
		if err := mappingStep.SetStaticField(session, index, fieldID); err != nil {
			mappingStep.RemoveStaticField(session, index)
			return err
		}
		mappingStep.SetStaticValue(session, index, value)
	}

	for _, columnMapping := range session.ColumnMappings {
		if columnMapping.IsMapped() && columnMapping.IsResolved() {
			log.Debugf("Column %s -> %s", columnMapping.SourceColumnName, schema.FieldName(fields, types.FieldValue(columnMapping.DestinationField)))
		}
	}
	return nil
}

func splitAssignment(assignment string) (string, string, error) {
	name, value, found := strings.Cut(assignment, "=")
	if !found || strings.TrimSpace(name) == "" {
		return "", "", types.NewValidationError("assignment", "expected name=value, got %q", assignment)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

func columnIndexOf(session *wizard.Session, column string) int {
	for i, columnMapping := range session.ColumnMappings {
		if columnMapping.IsResolved() && columnMapping.SourceColumnName == column {
			return i
		}
	}
	return types.InvalidColumnIndex
}

// resolveDestinationType accepts a type id or its display name.
func resolveDestinationType(destinationTypes []types.DestinationType, value string) (string, bool) {
	for _, destinationType := range destinationTypes {
		if destinationType.ID == value || strings.EqualFold(destinationType.Name, value) {
			return destinationType.ID, true
		}
	}
	return "", false
}

// resolveField accepts a field id, display name or attribute name.
func resolveField(fields []types.DestinationField, value string) (string, bool) {
	for _, field := range fields {
		if field.ID == value || strings.EqualFold(field.Name, value) || strings.EqualFold(field.Field, value) {
			return field.ID, true
		}
	}
	return "", false
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "CSV or TXT file to import")
	importCmd.Flags().StringP("template", "t", "", "Name of the saved template to use")
	importCmd.Flags().String("type", "", "Destination type id or name")
	importCmd.Flags().StringArrayP("map", "m", []string{}, "Map a column to a field as Column=Field, leave Field empty to clear it")
	importCmd.Flags().StringArrayP("key", "k", []string{}, "Use a mapped column as a reconciliation key")
	importCmd.Flags().StringArrayP("static", "s", []string{}, "Set a field to a fixed value as Field=Value")
	importCmd.Flags().String("delimiter", "auto", "Delimiter: auto, comma, semicolon, tab or pipe")
	importCmd.Flags().String("encoding", string(types.EncodingUTF8), "File encoding: UTF-8, ISO-8859-1 or Windows-1252")
	importCmd.Flags().Bool("header", true, "The first row holds the column names")
	importCmd.Flags().Int("skipRows", 0, "Number of leading lines to skip")
	importCmd.Flags().String("dateFormat", string(types.DateFormatYMD), "Date format of the file")
	importCmd.Flags().String("decimalSeparator", string(types.DecimalSeparatorPoint), "Decimal separator of the file")
	importCmd.Flags().Bool("allowCreation", true, "Allow new items to be created")
	importCmd.Flags().Bool("allowUpdate", true, "Allow existing items to be updated")
	importCmd.Flags().Bool("relation", false, "Import relations instead of items")
	importCmd.Flags().BoolP("dryRun", "n", false, "Simulate the import without creating anything")
	importCmd.Flags().StringP("report", "r", "", "Write the import report, to the given file name or the default one")
	importCmd.Flags().Lookup("report").NoOptDefVal = " "
	importCmd.Flags().String("saveTemplate", "", "Save the mapping as a template with this name")
	importCmd.Flags().String("comment", "", "Comment stored with a saved template")
}
