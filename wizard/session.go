package wizard

import (
	"github.com/csvimport/import-wizard/types"
)

type Step int

const (
	StepStart Step = iota + 1
	StepUpload
	StepMapping
	StepExecute
)

func (step Step) IsValidStep() bool {
	return step >= StepStart && step <= StepExecute
}

func (step Step) Title() string {
	switch step {
	case StepStart:
		return "Start"
	case StepUpload:
		return "Upload file"
	case StepMapping:
		return "Map columns"
	case StepExecute:
		return "Import"
	default:
		return ""
	}
}

// Session is everything the wizard knows about the import in progress. Every
// step reads and writes it; nothing else holds wizard state.
type Session struct {
	Mode             types.Mode
	SelectedTemplate *types.Template

	FilePath    string
	FileName    string
	FileSize    int64
	FileContent []byte

	FormatOptions types.FormatOptions
	Table         *types.ParsedTable

	DestinationType     string
	ColumnMappings      []types.ColumnMapping
	StaticFieldMappings []types.StaticFieldMapping

	FastTrackEligible bool
	MissingColumns    []string

	AutoStartImport bool
	AutoStartDryRun bool
	Running         bool
	Result          *types.ImportResult
}

func NewSession() *Session {
	return &Session{
		Mode:                types.ModeNew,
		FormatOptions:       types.DefaultFormatOptions(),
		ColumnMappings:      []types.ColumnMapping{},
		StaticFieldMappings: []types.StaticFieldMapping{},
		MissingColumns:      []string{},
	}
}

func (session *Session) Reset() {
	*session = *NewSession()
}

func (session *Session) HasFile() bool {
	return session.FileContent != nil
}

func (session *Session) MappedColumnCount() int {
	count := 0
	for _, columnMapping := range session.ColumnMappings {
		if columnMapping.IsMapped() {
			count++
		}
	}
	return count
}

func (session *Session) SelectedTemplateID() string {
	if session.SelectedTemplate == nil {
		return ""
	}
	return session.SelectedTemplate.ID
}

func (session *Session) IsTemplateMode() bool {
	return session.Mode == types.ModeTemplate && session.SelectedTemplate != nil
}

// CanAdvance reports whether the wizard may move forward from step.
func (session *Session) CanAdvance(step Step) bool {
	switch step {
	case StepStart:
		return true
	case StepUpload:
		return session.Table.RowCount() > 0
	case StepMapping:
		return session.DestinationType != "" && session.MappedColumnCount() > 0
	default:
		return false
	}
}

func (session *Session) clearFile() {
	session.FilePath = ""
	session.FileName = ""
	session.FileSize = 0
	session.FileContent = nil
	session.Table = nil
	session.FastTrackEligible = false
	session.MissingColumns = []string{}
}

func (session *Session) clearMappings() {
	session.DestinationType = ""
	session.ColumnMappings = []types.ColumnMapping{}
	session.StaticFieldMappings = []types.StaticFieldMapping{}
}
