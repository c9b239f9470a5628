package importer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/types"
)

const (
	DefaultRowDelayMin = 50 * time.Millisecond
	DefaultRowDelayMax = 150 * time.Millisecond
)

type IImportClient interface {
	Execute(request ImportRequest, onProgress func(types.Progress)) *types.ImportResult
}

// RowOutcomeDecider decides how a single row fares. rowIndex is zero based.
type RowOutcomeDecider interface {
	Decide(rowIndex int, row []string) types.Severity
}

// RandomOutcomeDecider makes one uniform draw per row: 85% success, 10%
// warning, 5% error.
type RandomOutcomeDecider struct {
	Float64 func() float64
}

func NewRandomOutcomeDecider() *RandomOutcomeDecider {
	return &RandomOutcomeDecider{
		Float64: rand.Float64,
	}
}

func (decider *RandomOutcomeDecider) Decide(rowIndex int, row []string) types.Severity {
	draw := decider.Float64()
	switch {
	case draw < 0.85:
		return types.SeveritySuccess
	case draw < 0.95:
		return types.SeverityWarning
	default:
		return types.SeverityError
	}
}

type ImportRequest struct {
	Rows            [][]string
	ColumnMappings  []types.ColumnMapping
	DestinationType string
	DryRun          bool
}

type ImportClient struct {
	RowDelayMin time.Duration
	RowDelayMax time.Duration
	Decider     RowOutcomeDecider
	Sleep       func(time.Duration)
	Now         func() time.Time
	Logger      *logrus.Logger
}

func NewImportClient(rowDelayMin time.Duration, rowDelayMax time.Duration, logger *logrus.Logger) *ImportClient {
	if rowDelayMin < 0 {
		rowDelayMin = 0
	}
	if rowDelayMax < rowDelayMin {
		rowDelayMax = rowDelayMin
	}
	return &ImportClient{
		RowDelayMin: rowDelayMin,
		RowDelayMax: rowDelayMax,
		Decider:     NewRandomOutcomeDecider(),
		Sleep:       time.Sleep,
		Now:         time.Now,
		Logger:      logger,
	}
}

// Execute simulates importing every row in order. Each row produces exactly one
// log entry and one progress notification; nothing is written anywhere.
func (importClient *ImportClient) Execute(request ImportRequest, onProgress func(types.Progress)) *types.ImportResult {
	result := &types.ImportResult{
		Log:             []types.LogEntry{},
		DryRun:          request.DryRun,
		DestinationType: request.DestinationType,
		StartedAt:       importClient.Now(),
	}

	total := len(request.Rows)
	importClient.Logger.Infof("Starting import of %d rows as %s (dry run: %t)", total, request.DestinationType, request.DryRun)

	for i, row := range request.Rows {
		importClient.Sleep(importClient.rowDelay())

		rowNumber := i + 1
		entry := types.LogEntry{
			RowNumber: rowNumber,
			Severity:  importClient.Decider.Decide(i, row),
		}

		switch entry.Severity {
		case types.SeveritySuccess:
			result.SuccessCount++
			entry.Message = fmt.Sprintf("Created %s: %s", request.DestinationType, rowIdentifier(row, rowNumber, request.ColumnMappings))
		case types.SeverityWarning:
			result.WarningCount++
			entry.Message = fmt.Sprintf("Partial import for row %d: Some fields skipped", rowNumber)
		default:
			entry.Severity = types.SeverityError
			result.ErrorCount++
			entry.Message = fmt.Sprintf("Failed to import row %d: Validation error", rowNumber)
		}
		result.Log = append(result.Log, entry)
		importClient.Logger.Tracef("Row %d: %s", rowNumber, entry.Message)

		if onProgress != nil {
			onProgress(types.Progress{
				CurrentIndex:       rowNumber,
				Total:              total,
				PercentageComplete: int(math.Round(float64(rowNumber) / float64(total) * 100)),
				LastLogEntry:       entry,
			})
		}
	}

	result.FinishedAt = importClient.Now()
	importClient.Logger.Infof("Import finished: %d succeeded, %d with warnings, %d failed", result.SuccessCount, result.WarningCount, result.ErrorCount)
	return result
}

func (importClient *ImportClient) rowDelay() time.Duration {
	spread := importClient.RowDelayMax - importClient.RowDelayMin
	if spread <= 0 {
		return importClient.RowDelayMin
	}
	return importClient.RowDelayMin + rand.N(spread+1)
}

// rowIdentifier names a row in the log: the first reconciliation key column
// with a value, then the first cell, then its position.
func rowIdentifier(row []string, rowNumber int, columnMappings []types.ColumnMapping) string {
	for _, columnMapping := range columnMappings {
		if !columnMapping.IsReconciliationKey || !columnMapping.IsResolved() || columnMapping.SourceColumnIndex >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[columnMapping.SourceColumnIndex]); value != "" {
			return value
		}
	}
	if len(row) > 0 && row[0] != "" {
		return row[0]
	}
	return fmt.Sprintf("Item %d", rowNumber)
}
