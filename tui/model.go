package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csvimport/import-wizard/filepathparser"
	"github.com/csvimport/import-wizard/types"
	"github.com/csvimport/import-wizard/wizard"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputFilePath
	inputTemplateName
	inputStaticValue
	inputLogFilter
)

var severityFilters = []types.Severity{"", types.SeveritySuccess, types.SeverityWarning, types.SeverityError}

var delimiterChoices = append([]types.Delimiter{types.DelimiterAuto}, types.Delimiters...)

// pendingLaunch records a run requested while entering the import step, so
// Update can start it on a goroutine.
type pendingLaunch struct {
	requested bool
	dryRun    bool
}

type runProgressMsg struct {
	progress types.Progress
}

type runFinishedMsg struct {
	result *types.ImportResult
}

type startEntry struct {
	label      string
	templateID string
	template   *types.Template
}

// Model is the bubbletea model for the import wizard. All import state lives
// in the wizard session; the model only keeps what the screen needs.
type Model struct {
	wizard  *wizard.Wizard
	launch  *pendingLaunch
	updates chan tea.Msg

	cursor        int
	showAll       bool
	inputMode     inputMode
	input         textinput.Model
	editingStatic int
	logFilter     string
	logSeverity   types.Severity
	lastProgress  types.Progress

	progress progress.Model
	spinner  spinner.Model

	status string
	err    error
	quit   bool
	width  int
	height int
}

func NewModel(importWizard *wizard.Wizard) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	input := textinput.New()
	input.CharLimit = 1024
	input.Width = 60

	launch := &pendingLaunch{}
	importWizard.Execute.Launch = func(session *wizard.Session, dryRun bool) {
		launch.requested = true
		launch.dryRun = dryRun
	}

	return Model{
		wizard:   importWizard,
		launch:   launch,
		input:    input,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner:  s,
		width:    100,
		height:   30,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) session() *wizard.Session {
	return m.wizard.Session
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.session().Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runProgressMsg:
		m.lastProgress = msg.progress
		return m, waitForRunUpdate(m.updates)

	case runFinishedMsg:
		m.wizard.Execute.Complete(m.session(), msg.result)
		m.updates = nil
		m.status = fmt.Sprintf("Import finished: %d succeeded, %d warnings, %d errors", msg.result.SuccessCount, msg.result.WarningCount, msg.result.ErrorCount)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
		// the session belongs to the running import until it finishes
		if m.session().Running {
			return m, nil
		}
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}

		m.err = nil
		m.status = ""
		before := m.wizard.Step()
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if m.wizard.Step() != before {
			m.cursor = 0
		}
		return m.startPendingRun(cmd)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quit = true
		return m, tea.Quit
	case "n":
		if !m.wizard.Next() {
			m.status = "Complete this step before moving on"
		}
		return m, nil
	case "b":
		m.wizard.Prev()
		return m, nil
	}

	switch m.wizard.Step() {
	case wizard.StepStart:
		return m.handleStartKey(msg)
	case wizard.StepUpload:
		return m.handleUploadKey(msg)
	case wizard.StepMapping:
		return m.handleMappingKey(msg)
	case wizard.StepExecute:
		return m.handleExecuteKey(msg)
	}
	return m, nil
}

func (m Model) startEntries() ([]startEntry, int) {
	entries := []startEntry{{label: "New import"}}

	var templates []types.Template
	remaining := 0
	if m.showAll {
		templates = m.wizard.Start.AllTemplates()
	} else {
		templates, remaining = m.wizard.Start.RecentTemplates()
	}

	for i := range templates {
		template := templates[i]
		entries = append(entries, startEntry{
			label:      template.Name,
			templateID: template.ID,
			template:   &template,
		})
	}
	return entries, remaining
}

func (m Model) handleStartKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	session := m.session()
	entries, _ := m.startEntries()

	switch msg.String() {
	case "up":
		m.cursor = moveCursor(m.cursor, -1, len(entries))
	case "down":
		m.cursor = moveCursor(m.cursor, 1, len(entries))
	case "a":
		m.showAll = !m.showAll
		m.cursor = 0
	case "enter":
		entry := entries[m.cursor]
		if entry.templateID == "" {
			m.wizard.Start.ChooseNew(session)
			return m, nil
		}
		m.wizard.Start.ChooseTemplateMode(session)
		if err := m.wizard.Start.SelectTemplate(session, entry.templateID); err != nil {
			m.err = err
		}
	case "d":
		entry := entries[m.cursor]
		if entry.templateID == "" {
			return m, nil
		}
		if m.wizard.Start.DeleteTemplate(session, entry.templateID) {
			m.status = fmt.Sprintf("Template %s deleted", entry.label)
		}
		m.cursor = moveCursor(m.cursor, 0, len(entries)-1)
	}
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	session := m.session()
	options := session.FormatOptions

	switch msg.String() {
	case "o":
		return m.openInput(inputFilePath, "Path to a .csv or .txt file", session.FilePath)
	case "x":
		m.wizard.Upload.RemoveFile(session)
		return m, nil
	case "f", "r":
		if err := m.wizard.Upload.FastTrack(session, msg.String() == "r"); err != nil {
			m.err = err
		}
		return m, nil
	case "w":
		filePath, err := m.wizard.Upload.WriteExample(session)
		if err != nil {
			m.err = err
		} else {
			m.status = "Example file written to " + filePath
		}
		return m, nil
	case "d":
		options.Delimiter = cycle(delimiterChoices, options.Delimiter)
	case "e":
		options.Encoding = cycle(types.Encodings, options.Encoding)
	case "h":
		options.HasHeaderRow = !options.HasHeaderRow
	case "+", "=":
		options.SkipRowCount++
	case "-":
		if options.SkipRowCount == 0 {
			return m, nil
		}
		options.SkipRowCount--
	case "c":
		options.DateFormat = cycle(types.DateFormats, options.DateFormat)
	case "m":
		options.DecimalSeparator = cycle([]types.DecimalSeparator{types.DecimalSeparatorPoint, types.DecimalSeparatorComma}, options.DecimalSeparator)
	case "u":
		options.AllowUpdate = !options.AllowUpdate
	case "i":
		options.AllowCreation = !options.AllowCreation
	case "l":
		options.IsRelation = !options.IsRelation
	default:
		return m, nil
	}

	if err := m.wizard.Upload.SetFormatOptions(session, options); err != nil {
		m.err = err
	}
	return m, nil
}

// mapping rows: the destination type, then one per column, then one per static field
func (m Model) mappingRowCount() int {
	return 1 + len(m.session().ColumnMappings) + len(m.session().StaticFieldMappings)
}

func (m Model) staticIndex() int {
	return m.cursor - 1 - len(m.session().ColumnMappings)
}

func (m Model) handleMappingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	session := m.session()
	columnIndex := m.cursor - 1
	staticIndex := m.staticIndex()
	onColumn := columnIndex >= 0 && columnIndex < len(session.ColumnMappings)
	onStatic := staticIndex >= 0

	switch msg.String() {
	case "up":
		m.cursor = moveCursor(m.cursor, -1, m.mappingRowCount())
	case "down":
		m.cursor = moveCursor(m.cursor, 1, m.mappingRowCount())
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch {
		case m.cursor == 0:
			m.err = m.cycleDestinationType(delta)
		case onColumn:
			m.err = m.cycleField(delta, session.ColumnMappings[columnIndex].DestinationField, func(fieldID string) error {
				return m.wizard.Mapping.AssignField(session, columnIndex, fieldID)
			})
		case onStatic:
			m.err = m.cycleField(delta, session.StaticFieldMappings[staticIndex].DestinationField, func(fieldID string) error {
				return m.wizard.Mapping.SetStaticField(session, staticIndex, fieldID)
			})
		}
	case "k":
		if onColumn {
			m.err = m.wizard.Mapping.ToggleReconciliationKey(session, columnIndex)
		}
	case "a":
		index := m.wizard.Mapping.AddStaticField(session)
		m.cursor = 1 + len(session.ColumnMappings) + index
	case "x":
		if onStatic {
			m.err = m.wizard.Mapping.RemoveStaticField(session, staticIndex)
			m.cursor = moveCursor(m.cursor, 0, m.mappingRowCount())
		}
	case "enter":
		if onStatic {
			m.editingStatic = staticIndex
			return m.openInput(inputStaticValue, "Value", session.StaticFieldMappings[staticIndex].LiteralValue)
		}
	case "s":
		name := ""
		if session.SelectedTemplate != nil {
			name = session.SelectedTemplate.Name
		}
		return m.openInput(inputTemplateName, "Template name", name)
	}
	return m, nil
}

func (m Model) cycleDestinationType(delta int) error {
	ids := []string{""}
	for _, destinationType := range m.wizard.Mapping.DestinationTypes() {
		ids = append(ids, destinationType.ID)
	}
	return m.wizard.Mapping.SelectDestinationType(m.session(), cycleBy(ids, m.session().DestinationType, delta))
}

// cycleField moves to the next field that assign accepts, skipping fields
// claimed elsewhere.
func (m Model) cycleField(delta int, current *string, assign func(fieldID string) error) error {
	ids := []string{""}
	for _, field := range m.wizard.Mapping.Fields(m.session()) {
		ids = append(ids, field.ID)
	}

	candidate := types.FieldValue(current)
	for range ids {
		candidate = cycleBy(ids, candidate, delta)
		if err := assign(candidate); err == nil {
			return nil
		}
	}
	return types.NewValidationError("field", "Every field is already mapped")
}

func (m Model) handleExecuteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	session := m.session()

	switch msg.String() {
	case "i", "r":
		return m.startRun(msg.String() == "r")
	case "e":
		filePath, err := m.wizard.Execute.ExportReport(session)
		if err != nil {
			m.err = err
		} else {
			m.status = "Report written to " + filePath
		}
	case "/":
		return m.openInput(inputLogFilter, "Filter log", m.logFilter)
	case "f":
		m.logSeverity = cycle(severityFilters, m.logSeverity)
	case "N":
		m.logFilter = ""
		m.logSeverity = ""
		m.lastProgress = types.Progress{}
		m.err = m.wizard.Execute.NewImport(session)
	}
	return m, nil
}

func (m Model) openInput(mode inputMode, placeholder string, value string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		mode := m.inputMode
		m.inputMode = inputNone
		m.input.Blur()
		return m.submitInput(mode, m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	session := m.session()
	m.err = nil
	m.status = ""

	switch mode {
	case inputFilePath:
		path, err := filepathparser.ParsePath(strings.TrimSpace(value))
		if err != nil {
			m.err = err
			return m, nil
		}
		if err := m.wizard.Upload.SelectFile(session, path); err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Loaded %d rows from %s", session.Table.RowCount(), session.FileName)
	case inputTemplateName:
		comment := ""
		if session.SelectedTemplate != nil {
			comment = session.SelectedTemplate.Comment
		}
		template, err := m.wizard.Mapping.SaveTemplate(session, value, comment)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Template %s saved", template.Name)
	case inputStaticValue:
		m.err = m.wizard.Mapping.SetStaticValue(session, m.editingStatic, value)
	case inputLogFilter:
		m.logFilter = value
	}
	return m, nil
}

// startRun hands the rows to the executor on a goroutine. Progress comes back
// one message per row through the updates channel.
func (m Model) startRun(dryRun bool) (Model, tea.Cmd) {
	request, err := m.wizard.Execute.Begin(m.session(), dryRun)
	if err != nil {
		m.err = err
		return m, nil
	}

	updates := make(chan tea.Msg)
	importClient := m.wizard.Execute.Importer
	go func() {
		result := importClient.Execute(request, func(progress types.Progress) {
			updates <- runProgressMsg{progress: progress}
		})
		updates <- runFinishedMsg{result: result}
		close(updates)
	}()

	m.updates = updates
	m.lastProgress = types.Progress{Total: len(request.Rows)}
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, waitForRunUpdate(updates))
}

func (m Model) startPendingRun(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if !m.launch.requested {
		return m, cmd
	}
	m.launch.requested = false
	m, runCmd := m.startRun(m.launch.dryRun)
	return m, tea.Batch(cmd, runCmd)
}

func waitForRunUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

func moveCursor(cursor int, delta int, count int) int {
	if count <= 0 {
		return 0
	}
	cursor += delta
	if cursor < 0 {
		return 0
	}
	if cursor >= count {
		return count - 1
	}
	return cursor
}

func cycle[T comparable](values []T, current T) T {
	return cycleBy(values, current, 1)
}

func cycleBy[T comparable](values []T, current T, delta int) T {
	index := 0
	for i, value := range values {
		if value == current {
			index = i
			break
		}
	}
	index = (index + delta + len(values)) % len(values)
	return values[index]
}
