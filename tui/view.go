package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/csvimport/import-wizard/filepathparser"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/types"
	"github.com/csvimport/import-wizard/wizard"
)

const (
	previewRowCount = 5
	logTailCount    = 12
	stepCount       = 4
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	stepInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	barFullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("117"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))
)

func (m Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	var body string
	switch m.wizard.Step() {
	case wizard.StepStart:
		body = m.renderStart()
	case wizard.StepUpload:
		body = m.renderUpload()
	case wizard.StepMapping:
		body = m.renderMapping()
	case wizard.StepExecute:
		body = m.renderExecute()
	}
	b.WriteString(paneStyle.Width(max(m.width-4, 40)).Render(body))
	b.WriteString("\n")

	if m.inputMode != inputNone {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	step := m.wizard.Step()
	title := fmt.Sprintf("CSV IMPORT WIZARD - %s", step.Title())

	barWidth := 20
	filled := int(step) * barWidth / stepCount
	bar := barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render(title),
		"  ",
		bar,
		"  ",
		stepInfoStyle.Render(fmt.Sprintf("Step %d of %d", step, stepCount)),
	)
}

func (m Model) renderStart() string {
	var b strings.Builder
	entries, remaining := m.startEntries()

	b.WriteString(headerStyle.Render("How do you want to import?"))
	b.WriteString("\n\n")

	for i, entry := range entries {
		line := entry.label
		if entry.template != nil {
			line = fmt.Sprintf("%s  %s", entry.template.Name, dimStyle.Render(fmt.Sprintf("%s, %d mapped fields, last used %s",
				entry.template.DestinationType,
				entry.template.MappedFieldCount(),
				entry.template.LastUsedAt.Local().Format("2006-01-02 15:04"))))
			if entry.template.Comment != "" {
				line += "\n     " + dimStyle.Render(entry.template.Comment)
			}
		}
		b.WriteString(cursorLine(i == m.cursor, line))
		if i == 0 && len(entries) > 1 {
			b.WriteString("\n" + dimStyle.Render("  Saved templates"))
		}
		b.WriteString("\n")
	}

	if len(entries) == 1 {
		b.WriteString(dimStyle.Render("  No saved templates yet"))
		b.WriteString("\n")
	}
	if remaining > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  View all templates (%d more)", remaining)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderUpload() string {
	var b strings.Builder
	session := m.session()
	options := session.FormatOptions

	if session.IsTemplateMode() {
		b.WriteString(headerStyle.Render("Template: " + session.SelectedTemplate.Name))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Expected columns: " + strings.Join(session.SelectedTemplate.SourceColumnNames(), ", ")))
		b.WriteString("\n\n")
	}

	if !session.HasFile() {
		b.WriteString("No file selected. Press " + selectedStyle.Render("o") + " to choose a .csv or .txt file.")
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("File: %s (%s)\n", selectedStyle.Render(session.FileName), filepathparser.FormatSize(session.FileSize)))
	b.WriteString(fmt.Sprintf("Delimiter: %s   Encoding: %s   Header row: %s   Skip rows: %d\n",
		options.Delimiter.Label(), options.Encoding, yesNo(options.HasHeaderRow), options.SkipRowCount))
	b.WriteString(dimStyle.Render(fmt.Sprintf("Date format: %s   Decimal separator: %s   Create: %s   Update: %s   Relation: %s",
		options.DateFormat, options.DecimalSeparator, yesNo(options.AllowCreation), yesNo(options.AllowUpdate), yesNo(options.IsRelation))))
	b.WriteString("\n\n")

	if session.Table == nil {
		b.WriteString(warningStyle.Render("The file could not be parsed with these options."))
		b.WriteString("\n")
		return b.String()
	}

	if session.IsTemplateMode() {
		if session.FastTrackEligible {
			b.WriteString(successStyle.Render("All template columns were found. Press f to import now or r for a dry run."))
		} else if len(session.MissingColumns) > 0 {
			b.WriteString(warningStyle.Render("Missing columns: " + strings.Join(session.MissingColumns, ", ") + ". Review the mapping."))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("%d rows, %d columns\n", session.Table.RowCount(), session.Table.ColumnCount()))
	b.WriteString(headerStyle.Render(strings.Join(session.Table.Headers, " | ")))
	b.WriteString("\n")
	for i, row := range session.Table.Rows {
		if i == previewRowCount {
			b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more rows", session.Table.RowCount()-previewRowCount)))
			b.WriteString("\n")
			break
		}
		b.WriteString(truncate(strings.Join(row, " | "), max(m.width-8, 40)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMapping() string {
	var b strings.Builder
	session := m.session()
	fields := m.wizard.Mapping.Fields(session)

	destinationType := "none"
	if session.DestinationType != "" {
		destinationType = session.DestinationType
	}
	b.WriteString(cursorLine(m.cursor == 0, "Destination type: < "+destinationType+" >"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Columns"))
	b.WriteString("\n")
	for i, columnMapping := range session.ColumnMappings {
		target := dimStyle.Render("not imported")
		if columnMapping.IsMapped() {
			target = schema.FieldName(fields, types.FieldValue(columnMapping.DestinationField))
		}
		line := fmt.Sprintf("%-24s -> %s", truncate(columnMapping.SourceColumnName, 24), target)
		if columnMapping.IsReconciliationKey {
			line += " " + selectedStyle.Render("[key]")
		}
		if !columnMapping.IsResolved() {
			line += " " + warningStyle.Render("(missing from file)")
		}
		b.WriteString(cursorLine(m.cursor == i+1, line))
		b.WriteString("\n")
	}

	if len(session.StaticFieldMappings) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Static fields"))
		b.WriteString("\n")
	}
	for i, staticFieldMapping := range session.StaticFieldMappings {
		target := dimStyle.Render("choose a field")
		if staticFieldMapping.DestinationField != nil {
			target = schema.FieldName(fields, types.FieldValue(staticFieldMapping.DestinationField))
		}
		line := fmt.Sprintf("%s = %q", target, staticFieldMapping.LiteralValue)
		b.WriteString(cursorLine(m.cursor == 1+len(session.ColumnMappings)+i, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d columns mapped", session.MappedColumnCount(), len(session.ColumnMappings)))
	b.WriteString("\n")

	if session.DestinationType != "" {
		missing := []string{}
		for _, field := range m.wizard.Mapping.Schema.GetRequiredFields(session.DestinationType) {
			claimed := false
			for _, columnMapping := range session.ColumnMappings {
				claimed = claimed || types.FieldValue(columnMapping.DestinationField) == field.ID
			}
			for _, staticFieldMapping := range session.StaticFieldMappings {
				claimed = claimed || types.FieldValue(staticFieldMapping.DestinationField) == field.ID
			}
			if !claimed {
				missing = append(missing, field.Name)
			}
		}
		if len(missing) > 0 {
			b.WriteString(warningStyle.Render("Required fields not mapped: " + strings.Join(missing, ", ")))
			b.WriteString("\n")
		}
	}
	if len(session.ColumnMappings) > 0 && !hasReconciliationKey(session.ColumnMappings) {
		b.WriteString(warningStyle.Render("Please select at least one reconciliation key (k on a mapped column)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderExecute() string {
	var b strings.Builder
	session := m.session()

	b.WriteString(fmt.Sprintf("File: %s   Type: %s   Rows: %d   Mapped columns: %d   Static fields: %d\n",
		session.FileName, session.DestinationType, session.Table.RowCount(), session.MappedColumnCount(), len(session.StaticFieldMappings)))
	b.WriteString("\n")

	if session.Running {
		percent := float64(m.lastProgress.PercentageComplete) / 100
		b.WriteString(fmt.Sprintf("%s Importing row %d of %d\n", m.spinner.View(), m.lastProgress.CurrentIndex, m.lastProgress.Total))
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		if m.lastProgress.LastLogEntry.Message != "" {
			b.WriteString(renderLogEntry(m.lastProgress.LastLogEntry))
			b.WriteString("\n")
		}
		return b.String()
	}

	result := session.Result
	if result == nil {
		b.WriteString("Press " + selectedStyle.Render("i") + " to import or " + selectedStyle.Render("r") + " for a dry run.")
		b.WriteString("\n")
		return b.String()
	}

	label := "Import complete"
	if result.DryRun {
		label = "Dry run complete"
	}
	b.WriteString(headerStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s   %s   %s   %s\n",
		successStyle.Render(fmt.Sprintf("%d succeeded", result.SuccessCount)),
		warningStyle.Render(fmt.Sprintf("%d warnings", result.WarningCount)),
		errorStyle.Render(fmt.Sprintf("%d errors", result.ErrorCount)),
		dimStyle.Render(result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String())))
	b.WriteString("\n")

	entries := wizard.FilterLog(result.Log, m.logFilter, m.logSeverity)
	filter := "all"
	if m.logSeverity != "" {
		filter = string(m.logSeverity)
	}
	if m.logFilter != "" {
		filter += fmt.Sprintf(", matching %q", m.logFilter)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Log (%s): %d of %d entries", filter, len(entries), len(result.Log))))
	b.WriteString("\n")

	start := max(len(entries)-logTailCount, 0)
	for _, entry := range entries[start:] {
		b.WriteString(renderLogEntry(entry))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	if m.inputMode != inputNone {
		return helpStyle.Render("enter confirm • esc cancel")
	}
	if m.session().Running {
		return helpStyle.Render("importing... • ctrl+c quit")
	}

	keys := []string{}
	switch m.wizard.Step() {
	case wizard.StepStart:
		keys = append(keys, "↑/↓ move", "enter choose", "d delete template", "a all templates")
	case wizard.StepUpload:
		keys = append(keys, "o open file", "d delimiter", "e encoding", "h header", "+/- skip rows", "c date", "m decimal", "i/u/l create/update/relation", "x remove")
		if m.session().IsTemplateMode() {
			keys = append(keys, "f fast track", "r dry run", "w example file")
		}
	case wizard.StepMapping:
		keys = append(keys, "↑/↓ move", "←/→ change", "k key", "a add static", "enter edit value", "x remove static", "s save template")
	case wizard.StepExecute:
		keys = append(keys, "i import", "r dry run", "e export report", "/ filter", "f severity", "N new import")
	}

	if m.wizard.Controller.NextEnabled() {
		keys = append(keys, "n next")
	}
	if m.wizard.Controller.PrevEnabled() {
		keys = append(keys, "b back")
	}
	keys = append(keys, "q quit")
	return helpStyle.Render(strings.Join(keys, " • "))
}

func hasReconciliationKey(columnMappings []types.ColumnMapping) bool {
	for _, columnMapping := range columnMappings {
		if columnMapping.IsReconciliationKey {
			return true
		}
	}
	return false
}

func renderLogEntry(entry types.LogEntry) string {
	switch entry.Severity {
	case types.SeveritySuccess:
		return successStyle.Render("✓ ") + entry.Message
	case types.SeverityWarning:
		return warningStyle.Render("! ") + entry.Message
	default:
		return errorStyle.Render("✗ ") + entry.Message
	}
}

func cursorLine(selected bool, line string) string {
	if selected {
		return selectedStyle.Render("> ") + line
	}
	return "  " + line
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
