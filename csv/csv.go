package csv

import (
	"bytes"
	csvreader "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/csvimport/import-wizard/types"
)

const delimiterSampleSize = 2000

var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

type ICsvClient interface {
	Parse(content []byte, options types.FormatOptions) (*types.ParsedTable, error)
	DetectDelimiter(content []byte, encoding types.Encoding) types.Delimiter
	WriteReport(writer io.Writer, result *types.ImportResult, delimiter types.Delimiter) error
	ReadReport(reader io.Reader, delimiter types.Delimiter) ([]types.LogEntry, error)
	WriteExample(writer io.Writer, template *types.Template, delimiter types.Delimiter) error
	WriteReportFile(result *types.ImportResult, fileName string) (string, error)
	WriteExampleFile(template *types.Template, delimiter types.Delimiter, fileName string) (string, error)
}

type CsvClient struct {
	WorkingFolderPath string
	Logger            *logrus.Logger
}

func NewCsvClient(workingFolderPath string, logger *logrus.Logger) *CsvClient {
	return &CsvClient{
		WorkingFolderPath: workingFolderPath,
		Logger:            logger,
	}
}

// ParseError reports a table that could not be read with the current options.
type ParseError struct {
	Line int
	Err  error
}

func (parseError *ParseError) Error() string {
	if parseError.Line > 0 {
		return fmt.Sprintf("failed to parse file at line %d: %v", parseError.Line, parseError.Err)
	}
	return fmt.Sprintf("failed to parse file: %v", parseError.Err)
}

func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}

func decode(content []byte, encoding types.Encoding) ([]byte, error) {
	switch encoding {
	case types.EncodingISO88591:
		return charmap.ISO8859_1.NewDecoder().Bytes(content)
	case types.EncodingWindows1252:
		return charmap.Windows1252.NewDecoder().Bytes(content)
	default:
		return bytes.TrimPrefix(content, utf8ByteOrderMark), nil
	}
}

// DetectDelimiter picks the candidate delimiter that occurs most often in the
// first characters of the file. Ties keep the earlier candidate; a sample with
// no candidate at all yields a comma.
func (csvClient *CsvClient) DetectDelimiter(content []byte, encoding types.Encoding) types.Delimiter {
	decoded, err := decode(content, encoding)
	if err != nil {
		csvClient.Logger.Debugf("Failed to decode sample for delimiter detection: %v", err)
		decoded = content
	}

	sample := []rune(string(decoded))
	if len(sample) > delimiterSampleSize {
		sample = sample[:delimiterSampleSize]
	}
	sampleText := string(sample)

	detected := types.DelimiterComma
	highest := 0
	for _, delimiter := range types.Delimiters {
		count := strings.Count(sampleText, string(delimiter))
		if count > highest {
			highest = count
			detected = delimiter
		}
	}

	csvClient.Logger.Debugf("Detected delimiter %s", detected.Label())
	return detected
}

// Parse reads the whole file into a table. Skipped rows are dropped before the
// header row is taken; without a header row the columns are named
// "Column 1", "Column 2", ... after the width of the first remaining row.
func (csvClient *CsvClient) Parse(content []byte, options types.FormatOptions) (*types.ParsedTable, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	decoded, err := decode(content, options.Encoding)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode %s: %w", options.Encoding, err)}
	}

	delimiter := options.Delimiter
	if delimiter == types.DelimiterAuto {
		delimiter = csvClient.DetectDelimiter(decoded, types.EncodingUTF8)
	}

	reader := csvreader.NewReader(bytes.NewReader(decoded))
	reader.Comma = delimiter.Rune()
	reader.FieldsPerRecord = -1

	records := [][]string{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csvreader.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, &ParseError{Err: err}
		}
		records = append(records, record)
	}

	if options.SkipRowCount > 0 {
		if options.SkipRowCount >= len(records) {
			records = [][]string{}
		} else {
			records = records[options.SkipRowCount:]
		}
	}

	table := &types.ParsedTable{}
	if options.HasHeaderRow && len(records) > 0 {
		table.Headers = records[0]
		table.Rows = records[1:]
	} else {
		columnCount := 0
		if len(records) > 0 {
			columnCount = len(records[0])
		}
		table.Headers = make([]string, columnCount)
		for i := range table.Headers {
			table.Headers[i] = fmt.Sprintf("Column %d", i+1)
		}
		table.Rows = records
	}

	csvClient.Logger.Debugf("Parsed %d rows and %d columns", len(table.Rows), len(table.Headers))
	return table, nil
}
