package tui

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/filepathparser"
	"github.com/csvimport/import-wizard/importer"
	"github.com/csvimport/import-wizard/json"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/templates"
	"github.com/csvimport/import-wizard/types"
	"github.com/csvimport/import-wizard/wizard"
)

type fixedDecider struct{}

func (decider fixedDecider) Decide(rowIndex int, row []string) types.Severity {
	return types.SeveritySuccess
}

func testWizard(t *testing.T) (*wizard.Wizard, *templates.TemplateClient, string) {
	t.Helper()
	folder := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	templateClient := templates.NewTemplateClient(json.NewJsonClient(folder, logger), logger)
	schemaClient, err := schema.NewSchemaClient("", logger)
	require.NoError(t, err)

	importClient := importer.NewImportClient(0, 0, logger)
	importClient.Sleep = func(time.Duration) {}
	importClient.Decider = fixedDecider{}

	importWizard := wizard.New(
		templateClient,
		csv.NewCsvClient(folder, logger),
		analyzer.NewMappingClient(logger),
		schemaClient,
		importClient,
		filepathparser.DefaultMaxFileSizeBytes,
		logger,
	)
	return importWizard, templateClient, folder
}

func writeTestFile(t *testing.T, folder string) string {
	t.Helper()
	path := filepath.Join(folder, "assets.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Serial\nPC-01,SN1\nPC-02,SN2\nPC-03,SN3\n"), 0644))
	return path
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m Model, keys ...string) Model {
	for _, key := range keys {
		model, _ := m.Update(keyMsg(key))
		m = model.(Model)
	}
	return m
}

// drainRun feeds every message of the running import back into the model.
func drainRun(t *testing.T, m Model) Model {
	t.Helper()
	require.NotNil(t, m.updates)
	updates := m.updates
	for msg := range updates {
		model, _ := m.Update(msg)
		m = model.(Model)
	}
	return m
}

func TestModel_View_Start(t *testing.T) {
	importWizard, _, _ := testWizard(t)
	m := NewModel(importWizard)

	view := m.View()

	assert.Contains(t, view, "CSV IMPORT WIZARD - Start")
	assert.Contains(t, view, "Step 1 of 4")
	assert.Contains(t, view, "New import")
	assert.Contains(t, view, "No saved templates yet")
}

func TestModel_View_StartListsRecentTemplates(t *testing.T) {
	importWizard, templateClient, _ := testWizard(t)
	for _, name := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		templateClient.Create(types.TemplateData{Name: name, DestinationType: "Computer"})
	}
	m := NewModel(importWizard)

	assert.Contains(t, m.View(), "View all templates (2 more)")

	m = press(m, "a")
	assert.NotContains(t, m.View(), "View all templates")
	assert.Contains(t, m.View(), "Seven")
}

func TestModel_NewImportFlow(t *testing.T) {
	importWizard, _, folder := testWizard(t)
	m := NewModel(importWizard)

	m = press(m, "enter")
	assert.Equal(t, wizard.StepUpload, importWizard.Step())
	assert.Contains(t, m.View(), "No file selected")

	m = press(m, "n")
	assert.Equal(t, wizard.StepUpload, importWizard.Step())
	assert.Equal(t, "Complete this step before moving on", m.status)

	m = press(m, "o")
	assert.Equal(t, inputFilePath, m.inputMode)
	m = press(m, writeTestFile(t, folder), "enter")
	require.NoError(t, m.err)
	assert.Equal(t, inputNone, m.inputMode)
	assert.Contains(t, m.View(), "3 rows, 2 columns")
	assert.Equal(t, "Loaded 3 rows from assets.csv", m.status)

	m = press(m, "h")
	assert.Equal(t, 4, importWizard.Session.Table.RowCount())
	m = press(m, "h")
	assert.Equal(t, 3, importWizard.Session.Table.RowCount())

	m = press(m, "n", "right")
	assert.Equal(t, wizard.StepMapping, importWizard.Step())
	assert.Equal(t, "Computer", importWizard.Session.DestinationType)
	assert.Equal(t, 2, importWizard.Session.MappedColumnCount())
	assert.Contains(t, m.View(), "2 of 2 columns mapped")
	assert.Contains(t, m.View(), "Please select at least one reconciliation key")

	m = press(m, "down", "k")
	assert.True(t, importWizard.Session.ColumnMappings[0].IsReconciliationKey)
	assert.NotContains(t, m.View(), "Please select at least one reconciliation key")

	m = press(m, "n")
	assert.Equal(t, wizard.StepExecute, importWizard.Step())
	assert.Contains(t, m.View(), "Press i to import")

	m = press(m, "r")
	assert.True(t, importWizard.Session.Running)
	m = press(m, "N")
	assert.Equal(t, wizard.StepExecute, importWizard.Step())

	m = drainRun(t, m)
	assert.False(t, importWizard.Session.Running)
	require.NotNil(t, importWizard.Session.Result)
	assert.True(t, importWizard.Session.Result.DryRun)
	assert.Equal(t, 3, importWizard.Session.Result.SuccessCount)
	assert.Contains(t, m.View(), "Dry run complete")
	assert.Contains(t, m.View(), "Created Computer: PC-01")

	m = press(m, "/", "PC-02", "enter")
	assert.Equal(t, "PC-02", m.logFilter)
	assert.Contains(t, m.View(), "1 of 3 entries")

	m = press(m, "f", "f")
	assert.Equal(t, types.SeverityWarning, m.logSeverity)
	assert.Contains(t, m.View(), "0 of 3 entries")

	m = press(m, "N")
	assert.Equal(t, wizard.StepStart, importWizard.Step())
	assert.Nil(t, importWizard.Session.Result)
	assert.Empty(t, m.logFilter)
}

func TestModel_DelimiterCyclesBackToAutoDetect(t *testing.T) {
	importWizard, _, folder := testWizard(t)
	m := NewModel(importWizard)
	m = press(m, "enter", "o", writeTestFile(t, folder), "enter")
	require.Equal(t, types.DelimiterComma, importWizard.Session.FormatOptions.Delimiter)

	m = press(m, "d")
	assert.Equal(t, types.DelimiterSemicolon, importWizard.Session.FormatOptions.Delimiter)

	m = press(m, "d", "d", "d")
	assert.Equal(t, types.DelimiterAuto, importWizard.Session.FormatOptions.Delimiter)
	assert.Equal(t, 3, importWizard.Session.Table.RowCount())
	assert.Equal(t, 2, importWizard.Session.Table.ColumnCount())
	assert.Contains(t, m.View(), "Auto-detect")
}

func TestModel_RejectedFileShowsError(t *testing.T) {
	importWizard, _, folder := testWizard(t)
	m := NewModel(importWizard)

	m = press(m, "enter", "o", filepath.Join(folder, "assets.pdf"), "enter")

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Please select a CSV or TXT file")
	assert.False(t, importWizard.Session.HasFile())
}

func TestModel_InputEscapeCancels(t *testing.T) {
	importWizard, _, _ := testWizard(t)
	m := NewModel(importWizard)

	m = press(m, "enter", "o", "something.csv", "esc")

	assert.Equal(t, inputNone, m.inputMode)
	assert.NoError(t, m.err)
	assert.False(t, importWizard.Session.HasFile())
}

func TestModel_TemplateFastTrack(t *testing.T) {
	importWizard, templateClient, folder := testWizard(t)
	templateClient.Create(types.TemplateData{
		Name:            "Office PCs",
		DestinationType: "Computer",
		FieldMappings: []types.FieldMapping{
			{SourceColumnName: "Name", DestinationField: types.Field("1")},
			{SourceColumnName: "Serial", DestinationField: types.Field("5")},
		},
	})
	m := NewModel(importWizard)

	m = press(m, "down", "enter")
	assert.Equal(t, wizard.StepUpload, importWizard.Step())
	assert.Contains(t, m.View(), "Template: Office PCs")

	m = press(m, "o", writeTestFile(t, folder), "enter")
	assert.Contains(t, m.View(), "All template columns were found")

	m = press(m, "f")
	assert.Equal(t, wizard.StepExecute, importWizard.Step())
	assert.True(t, importWizard.Session.Running)

	m = drainRun(t, m)
	require.NotNil(t, importWizard.Session.Result)
	assert.False(t, importWizard.Session.Result.DryRun)
	assert.Contains(t, m.View(), "Import complete")
}

func TestModel_MappingStaticFieldsAndSave(t *testing.T) {
	importWizard, templateClient, folder := testWizard(t)
	m := NewModel(importWizard)
	m = press(m, "enter", "o", writeTestFile(t, folder), "enter", "n", "right")

	m = press(m, "a")
	assert.Equal(t, 3, m.cursor)
	m = press(m, "right")
	// Name and Serial number are taken by the auto-mapped columns
	assert.Equal(t, "6", types.FieldValue(importWizard.Session.StaticFieldMappings[0].DestinationField))
	m = press(m, "enter", "In stock", "enter")
	assert.Equal(t, "In stock", importWizard.Session.StaticFieldMappings[0].LiteralValue)

	m = press(m, "s", "enter")
	assert.True(t, types.IsValidationError(m.err))

	m = press(m, "s", "Laptops", "enter")
	require.NoError(t, m.err)
	assert.Len(t, templateClient.List(), 1)

	m = press(m, "x")
	assert.Empty(t, importWizard.Session.StaticFieldMappings)
}

func TestModel_Quit(t *testing.T) {
	importWizard, _, _ := testWizard(t)
	tm := teatest.NewTestModel(t, NewModel(importWizard), teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("New import"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	finalModel := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second))
	assert.True(t, finalModel.(Model).quit)
}
