package wizard

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/importer"
	"github.com/csvimport/import-wizard/types"
)

type ExecuteStep struct {
	Importer  importer.IImportClient
	Csv       csv.ICsvClient
	Navigator Navigator
	// Launch starts a run requested on entry. When nil the run happens
	// synchronously inside Enter.
	Launch func(session *Session, dryRun bool)
	Logger *logrus.Logger
}

// Enter starts a run queued by fast track.
func (executeStep *ExecuteStep) Enter(session *Session) {
	if !session.AutoStartImport && !session.AutoStartDryRun {
		return
	}

	dryRun := session.AutoStartDryRun
	session.AutoStartImport = false
	session.AutoStartDryRun = false

	if executeStep.Launch != nil {
		executeStep.Launch(session, dryRun)
		return
	}
	if _, err := executeStep.Run(session, dryRun, nil); err != nil {
		executeStep.Logger.Errorf("Could not start import: %v", err)
	}
}

// Begin marks the session as running and builds the executor input. Complete
// must be called with the result.
func (executeStep *ExecuteStep) Begin(session *Session, dryRun bool) (importer.ImportRequest, error) {
	if session.Running {
		return importer.ImportRequest{}, types.NewValidationError("import", "An import is already running")
	}
	if session.Table.RowCount() == 0 {
		return importer.ImportRequest{}, types.NewValidationError("file", "There are no rows to import")
	}
	if session.DestinationType == "" {
		return importer.ImportRequest{}, types.NewValidationError("destinationType", "Select a destination type first")
	}

	session.Running = true
	return importer.ImportRequest{
		Rows:            session.Table.Rows,
		ColumnMappings:  types.CloneColumnMappings(session.ColumnMappings),
		DestinationType: session.DestinationType,
		DryRun:          dryRun,
	}, nil
}

// Run imports the session's rows and stores the result, replacing any earlier one.
func (executeStep *ExecuteStep) Run(session *Session, dryRun bool, onProgress func(types.Progress)) (*types.ImportResult, error) {
	request, err := executeStep.Begin(session, dryRun)
	if err != nil {
		return nil, err
	}

	result := executeStep.Importer.Execute(request, onProgress)
	executeStep.Complete(session, result)
	return result, nil
}

func (executeStep *ExecuteStep) Complete(session *Session, result *types.ImportResult) {
	session.Running = false
	session.Result = result
}

func (executeStep *ExecuteStep) ExportReport(session *Session) (string, error) {
	if session.Result == nil {
		return "", types.NewValidationError("result", "Run an import before exporting its report")
	}
	return executeStep.Csv.WriteReportFile(session.Result, csv.ReportFileName(session.Result))
}

// NewImport forgets everything about the current import and returns to the start.
func (executeStep *ExecuteStep) NewImport(session *Session) error {
	session.Reset()
	return executeStep.Navigator.GoToStep(StepStart)
}

// FilterLog returns the entries whose message contains text, case-insensitively,
// and whose severity matches. An empty text or severity matches everything.
func FilterLog(entries []types.LogEntry, text string, severity types.Severity) []types.LogEntry {
	text = strings.ToLower(strings.TrimSpace(text))
	filtered := []types.LogEntry{}
	for _, entry := range entries {
		if severity != "" && entry.Severity != severity {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(entry.Message), text) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
