package csv

import (
	"bytes"
	csvwriter "encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/csvimport/import-wizard/types"
)

var reportHeader = []string{"Row", "Status", "Message"}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

func ReportFileName(result *types.ImportResult) string {
	return fmt.Sprintf("import-report-%s.csv", result.FinishedAt.Format("2006-01-02"))
}

func ExampleFileName(template *types.Template) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(template.Name, "_")) + "_example.csv"
}

func newWriter(writer io.Writer, delimiter types.Delimiter) *csvwriter.Writer {
	csvWriter := csvwriter.NewWriter(writer)
	csvWriter.Comma = delimiter.Rune()
	return csvWriter
}

func (csvClient *CsvClient) WriteReport(writer io.Writer, result *types.ImportResult, delimiter types.Delimiter) error {
	csvData := [][]string{reportHeader}
	for _, entry := range result.Log {
		csvData = append(csvData, []string{
			strconv.Itoa(entry.RowNumber),
			string(entry.Severity),
			entry.Message,
		})
	}

	return newWriter(writer, delimiter).WriteAll(csvData)
}

// ReadReport reads back a report written by WriteReport.
func (csvClient *CsvClient) ReadReport(reader io.Reader, delimiter types.Delimiter) ([]types.LogEntry, error) {
	csvReader := csvwriter.NewReader(reader)
	csvReader.Comma = delimiter.Rune()

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("report is empty")
	}

	entries := []types.LogEntry{}
	for i, record := range records[1:] {
		if len(record) != len(reportHeader) {
			return nil, fmt.Errorf("report line %d has %d fields, expected %d", i+2, len(record), len(reportHeader))
		}
		rowNumber, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("report line %d: invalid row number %q", i+2, record[0])
		}
		severity := types.Severity(record[1])
		if !severity.IsValidSeverity() {
			return nil, fmt.Errorf("report line %d: invalid status %q", i+2, record[1])
		}
		entries = append(entries, types.LogEntry{
			RowNumber: rowNumber,
			Severity:  severity,
			Message:   record[2],
		})
	}
	return entries, nil
}

// WriteExample writes the template's source column names as a single header line.
func (csvClient *CsvClient) WriteExample(writer io.Writer, template *types.Template, delimiter types.Delimiter) error {
	headers := template.SourceColumnNames()
	if len(headers) == 0 {
		return types.NewValidationError("template", "template %q has no mapped columns", template.Name)
	}
	if delimiter == types.DelimiterAuto {
		delimiter = types.DelimiterSemicolon
	}

	var buffer bytes.Buffer
	csvWriter := newWriter(&buffer, delimiter)
	if err := csvWriter.Write(headers); err != nil {
		return err
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return err
	}

	_, err := writer.Write(bytes.TrimSuffix(buffer.Bytes(), []byte("\n")))
	return err
}

func (csvClient *CsvClient) WriteReportFile(result *types.ImportResult, fileName string) (string, error) {
	if fileName == "" {
		fileName = ReportFileName(result)
	}
	return csvClient.writeFile(fileName, func(writer io.Writer) error {
		return csvClient.WriteReport(writer, result, types.DelimiterComma)
	})
}

func (csvClient *CsvClient) WriteExampleFile(template *types.Template, delimiter types.Delimiter, fileName string) (string, error) {
	if fileName == "" {
		fileName = ExampleFileName(template)
	}
	return csvClient.writeFile(fileName, func(writer io.Writer) error {
		return csvClient.WriteExample(writer, template, delimiter)
	})
}

func (csvClient *CsvClient) writeFile(fileName string, write func(io.Writer) error) (string, error) {
	var buffer bytes.Buffer
	if err := write(&buffer); err != nil {
		return "", err
	}

	csvFilePath := fileName
	if !filepath.IsAbs(csvFilePath) {
		csvFilePath = filepath.Join(csvClient.WorkingFolderPath, fileName)
	}
	if err := os.WriteFile(csvFilePath, buffer.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", csvFilePath, err)
	}

	csvClient.Logger.Infof("File written to %s", csvFilePath)
	return csvFilePath, nil
}
