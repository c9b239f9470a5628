package types

import "time"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (severity Severity) IsValidSeverity() bool {
	switch severity {
	case SeveritySuccess,
		SeverityWarning,
		SeverityError:
		return true
	default:
		return false
	}
}

type LogEntry struct {
	RowNumber int      `json:"row"`
	Severity  Severity `json:"type"`
	Message   string   `json:"message"`
}

type ImportResult struct {
	SuccessCount    int
	WarningCount    int
	ErrorCount      int
	Log             []LogEntry
	DryRun          bool
	DestinationType string
	StartedAt       time.Time
	FinishedAt      time.Time
}

func (result *ImportResult) Total() int {
	return result.SuccessCount + result.WarningCount + result.ErrorCount
}

type Progress struct {
	CurrentIndex       int
	Total              int
	PercentageComplete int
	LastLogEntry       LogEntry
}
