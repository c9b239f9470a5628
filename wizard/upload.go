package wizard

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/filepathparser"
	"github.com/csvimport/import-wizard/types"
)

type UploadStep struct {
	Csv              csv.ICsvClient
	Mapping          analyzer.IMappingClient
	Navigator        Navigator
	MaxFileSizeBytes int64
	ReadFile         func(name string) ([]byte, error)
	Logger           *logrus.Logger
}

// Enter reconciles the session's mappings against an already loaded file, so
// a template chosen after the upload is checked against its columns.
func (uploadStep *UploadStep) Enter(session *Session) {
	if session.IsTemplateMode() {
		uploadStep.Logger.Debugf("Upload step with template %s, expected columns: %v", session.SelectedTemplate.Name, session.SelectedTemplate.SourceColumnNames())
	}
	if session.Table != nil {
		uploadStep.reconcile(session, session.Table)
	}
}

// SelectFile validates and reads the file, detects its delimiter and parses
// it. A rejected file leaves the session untouched; a file that cannot be
// parsed stays selected so the options can be corrected.
func (uploadStep *UploadStep) SelectFile(session *Session, path string) error {
	fileSize, err := filepathparser.ValidateUpload(path, uploadStep.MaxFileSizeBytes)
	if err != nil {
		return err
	}

	content, err := uploadStep.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	session.FilePath = path
	session.FileName = filepath.Base(path)
	session.FileSize = fileSize
	session.FileContent = content
	session.FormatOptions.Delimiter = uploadStep.Csv.DetectDelimiter(content, session.FormatOptions.Encoding)
	uploadStep.Logger.Infof("Selected %s (%s), detected delimiter %s", session.FileName, filepathparser.FormatSize(fileSize), session.FormatOptions.Delimiter.Label())

	return uploadStep.parse(session)
}

// SetFormatOptions applies new parse options. Any existing file is parsed again
// from scratch, dropping mappings built against the previous parse.
func (uploadStep *UploadStep) SetFormatOptions(session *Session, options types.FormatOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}

	session.FormatOptions = options
	if !session.HasFile() {
		return nil
	}

	session.ColumnMappings = []types.ColumnMapping{}
	if session.IsTemplateMode() {
		session.ColumnMappings = analyzer.FromFieldMappings(session.SelectedTemplate.FieldMappings)
	}
	return uploadStep.parse(session)
}

func (uploadStep *UploadStep) RemoveFile(session *Session) {
	uploadStep.Logger.Debugf("Removing file %s", session.FileName)
	session.clearFile()
}

// FastTrack skips the mapping review and starts the import straight away. It
// is only offered when every mapped column of the template is present.
func (uploadStep *UploadStep) FastTrack(session *Session, dryRun bool) error {
	if !session.IsTemplateMode() || !session.FastTrackEligible || !session.CanAdvance(StepUpload) {
		return types.NewValidationError("fastTrack", "The file does not match the template, review the mapping first")
	}

	session.AutoStartImport = !dryRun
	session.AutoStartDryRun = dryRun
	return uploadStep.Navigator.GoToStep(StepExecute)
}

// WriteExample writes a one-line file with the selected template's columns.
func (uploadStep *UploadStep) WriteExample(session *Session) (string, error) {
	if session.SelectedTemplate == nil {
		return "", types.NewValidationError("template", "Select a template first")
	}
	template := session.SelectedTemplate
	return uploadStep.Csv.WriteExampleFile(template, session.FormatOptions.Delimiter, csv.ExampleFileName(template))
}

func (uploadStep *UploadStep) parse(session *Session) error {
	table, err := uploadStep.Csv.Parse(session.FileContent, session.FormatOptions)
	if err != nil {
		session.Table = nil
		session.FastTrackEligible = false
		return fmt.Errorf("failed to parse %s: %w", session.FileName, err)
	}
	session.Table = table
	uploadStep.reconcile(session, table)

	uploadStep.Logger.Infof("Parsed %d rows with %d columns", table.RowCount(), table.ColumnCount())
	return nil
}

func (uploadStep *UploadStep) reconcile(session *Session, table *types.ParsedTable) {
	if len(session.ColumnMappings) == 0 {
		session.ColumnMappings = uploadStep.Mapping.GenerateColumnMappings(table.Headers)
		session.FastTrackEligible = false
		session.MissingColumns = []string{}
	} else {
		result := uploadStep.Mapping.Reconcile(session.ColumnMappings, table.Headers)
		session.ColumnMappings = []types.ColumnMapping{}
		for _, columnMapping := range result.ColumnMappings {
			// blank mappings for columns this file does not have are noise
			if columnMapping.IsMapped() || columnMapping.IsResolved() {
				session.ColumnMappings = append(session.ColumnMappings, columnMapping)
			}
		}
		session.FastTrackEligible = session.IsTemplateMode() && result.FastTrackEligible
		session.MissingColumns = result.MissingColumns()
	}
}
