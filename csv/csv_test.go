package csv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvimport/import-wizard/types"
)

func newTestCsvClient(t *testing.T) *CsvClient {
	return NewCsvClient(t.TempDir(), logrus.New())
}

func TestCsvClient_Parse_WithHeaderRow(t *testing.T) {
	csvClient := newTestCsvClient(t)

	table, err := csvClient.Parse([]byte("Name,Serial\npc-1,S1\npc-2,S2\npc-3,S3\n"), types.DefaultFormatOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Serial"}, table.Headers)
	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, []string{"pc-2", "S2"}, table.Rows[1])
}

func TestCsvClient_Parse_WithoutHeaderRow(t *testing.T) {
	csvClient := newTestCsvClient(t)
	options := types.DefaultFormatOptions()
	options.HasHeaderRow = false

	table, err := csvClient.Parse([]byte("pc-1;S1;x\npc-2;S2;y\n"), withDelimiter(options, types.DelimiterSemicolon))
	require.NoError(t, err)

	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, table.Headers)
	assert.Equal(t, 2, table.RowCount())
}

func TestCsvClient_Parse_SkipRows(t *testing.T) {
	csvClient := newTestCsvClient(t)
	options := types.DefaultFormatOptions()
	options.SkipRowCount = 2

	table, err := csvClient.Parse([]byte("exported by tool\ngenerated today\nName,Serial\npc-1,S1\n"), options)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Serial"}, table.Headers)
	assert.Equal(t, [][]string{{"pc-1", "S1"}}, table.Rows)
}

func TestCsvClient_Parse_SkipMoreRowsThanPresent(t *testing.T) {
	csvClient := newTestCsvClient(t)
	options := types.DefaultFormatOptions()
	options.SkipRowCount = 10

	table, err := csvClient.Parse([]byte("Name\npc-1\n"), options)
	require.NoError(t, err)

	assert.Empty(t, table.Headers)
	assert.Equal(t, 0, table.RowCount())
}

func TestCsvClient_Parse_SkipsEmptyLinesAndKeepsRaggedRows(t *testing.T) {
	csvClient := newTestCsvClient(t)

	table, err := csvClient.Parse([]byte("A,B\n\n1,2,3\n\n4\n"), types.DefaultFormatOptions())
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4"}}, table.Rows)
}

func TestCsvClient_Parse_QuotedFields(t *testing.T) {
	csvClient := newTestCsvClient(t)

	table, err := csvClient.Parse([]byte("Name,Comment\n\"pc,1\",\"said \"\"hi\"\"\"\n"), types.DefaultFormatOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"pc,1", `said "hi"`}, table.Rows[0])
}

func TestCsvClient_Parse_AutoDetectDelimiter(t *testing.T) {
	csvClient := newTestCsvClient(t)

	table, err := csvClient.Parse([]byte("Name|Serial|Model\npc-1|S1|M1\n"), withDelimiter(types.DefaultFormatOptions(), types.DelimiterAuto))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Serial", "Model"}, table.Headers)
}

func TestCsvClient_Parse_Malformed(t *testing.T) {
	csvClient := newTestCsvClient(t)

	_, err := csvClient.Parse([]byte("Name,Serial\npc\"1,S1\n"), types.DefaultFormatOptions())
	require.Error(t, err)

	var parseError *ParseError
	require.ErrorAs(t, err, &parseError)
	assert.Equal(t, 2, parseError.Line)
}

func TestCsvClient_Parse_InvalidOptions(t *testing.T) {
	csvClient := newTestCsvClient(t)
	options := types.DefaultFormatOptions()
	options.SkipRowCount = -1

	_, err := csvClient.Parse([]byte("a\n"), options)
	assert.True(t, types.IsValidationError(err))
}

func TestCsvClient_Parse_Encodings(t *testing.T) {
	csvClient := newTestCsvClient(t)
	latin1 := []byte("Name;Lieu\nposte;Salle \xe9t\xe9\n")

	for _, encoding := range []types.Encoding{types.EncodingISO88591, types.EncodingWindows1252} {
		options := withDelimiter(types.DefaultFormatOptions(), types.DelimiterSemicolon)
		options.Encoding = encoding

		table, err := csvClient.Parse(latin1, options)
		require.NoError(t, err)
		assert.Equal(t, "Salle été", table.Rows[0][1], string(encoding))
	}

	table, err := csvClient.Parse(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name\npc\n")...), types.DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, table.Headers)
}

func TestCsvClient_DetectDelimiter(t *testing.T) {
	csvClient := newTestCsvClient(t)

	tests := []struct {
		name     string
		sample   string
		expected types.Delimiter
	}{
		{"comma", "a,b,c\n1,2,3", types.DelimiterComma},
		{"semicolon", "a;b;c\n1;2,5;3", types.DelimiterSemicolon},
		{"tab", "a\tb\tc\n1\t2\t3", types.DelimiterTab},
		{"pipe", "a|b|c", types.DelimiterPipe},
		{"none", "single", types.DelimiterComma},
		{"tie keeps earlier", "a,b;c", types.DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, csvClient.DetectDelimiter([]byte(tt.sample), types.EncodingUTF8))
		})
	}
}

func TestCsvClient_DetectDelimiter_OnlySamplesStart(t *testing.T) {
	csvClient := newTestCsvClient(t)
	sample := strings.Repeat("a,", 1000) + strings.Repeat(";", 5000)

	assert.Equal(t, types.DelimiterComma, csvClient.DetectDelimiter([]byte(sample), types.EncodingUTF8))
}

func testResult() *types.ImportResult {
	return &types.ImportResult{
		SuccessCount: 1,
		WarningCount: 1,
		ErrorCount:   1,
		Log: []types.LogEntry{
			{RowNumber: 1, Severity: types.SeveritySuccess, Message: "Created Computer: pc, \"lab\""},
			{RowNumber: 2, Severity: types.SeverityWarning, Message: "Partial import for row 2: Some fields skipped"},
			{RowNumber: 3, Severity: types.SeverityError, Message: "multi\nline"},
		},
		FinishedAt: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestCsvClient_ReportRoundTrip(t *testing.T) {
	csvClient := newTestCsvClient(t)
	result := testResult()

	for _, delimiter := range []types.Delimiter{types.DelimiterComma, types.DelimiterSemicolon} {
		var buffer bytes.Buffer
		require.NoError(t, csvClient.WriteReport(&buffer, result, delimiter))

		entries, err := csvClient.ReadReport(&buffer, delimiter)
		require.NoError(t, err)
		assert.Equal(t, result.Log, entries)
	}
}

func TestCsvClient_WriteReport_Format(t *testing.T) {
	csvClient := newTestCsvClient(t)

	var buffer bytes.Buffer
	require.NoError(t, csvClient.WriteReport(&buffer, testResult(), types.DelimiterComma))

	lines := strings.Split(buffer.String(), "\n")
	assert.Equal(t, "Row,Status,Message", lines[0])
	assert.Equal(t, `1,success,"Created Computer: pc, ""lab"""`, lines[1])
	assert.Equal(t, "2,warning,Partial import for row 2: Some fields skipped", lines[2])
}

func TestCsvClient_ReadReport_Invalid(t *testing.T) {
	csvClient := newTestCsvClient(t)

	_, err := csvClient.ReadReport(strings.NewReader(""), types.DelimiterComma)
	assert.Error(t, err)

	_, err = csvClient.ReadReport(strings.NewReader("Row,Status,Message\nx,success,m\n"), types.DelimiterComma)
	assert.Error(t, err)

	_, err = csvClient.ReadReport(strings.NewReader("Row,Status,Message\n1,unknown,m\n"), types.DelimiterComma)
	assert.Error(t, err)
}

func TestCsvClient_WriteExample(t *testing.T) {
	csvClient := newTestCsvClient(t)
	template := &types.Template{
		Name: "Laptops 2025",
		FieldMappings: []types.FieldMapping{
			{SourceColumnName: "Name"},
			{SourceColumnName: ""},
			{SourceColumnName: "Serial;Number"},
			{SourceColumnName: `Say "hi"`},
		},
	}

	var buffer bytes.Buffer
	require.NoError(t, csvClient.WriteExample(&buffer, template, types.DelimiterAuto))
	assert.Equal(t, `Name;"Serial;Number";"Say ""hi"""`, buffer.String())

	buffer.Reset()
	require.NoError(t, csvClient.WriteExample(&buffer, template, types.DelimiterComma))
	assert.Equal(t, `Name,Serial;Number,"Say ""hi"""`, buffer.String())
}

func TestCsvClient_WriteExample_NoColumns(t *testing.T) {
	csvClient := newTestCsvClient(t)

	err := csvClient.WriteExample(&bytes.Buffer{}, &types.Template{Name: "Empty"}, types.DelimiterComma)
	assert.True(t, types.IsValidationError(err))
}

func TestCsvClient_WriteFiles(t *testing.T) {
	csvClient := newTestCsvClient(t)

	reportPath, err := csvClient.WriteReportFile(testResult(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(csvClient.WorkingFolderPath, "import-report-2025-03-04.csv"), reportPath)

	examplePath, err := csvClient.WriteExampleFile(&types.Template{Name: "My Template!", FieldMappings: []types.FieldMapping{{SourceColumnName: "Name"}}}, types.DelimiterComma, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(csvClient.WorkingFolderPath, "my_template__example.csv"), examplePath)

	content, err := os.ReadFile(examplePath)
	require.NoError(t, err)
	assert.Equal(t, "Name", string(content))
}

func withDelimiter(options types.FormatOptions, delimiter types.Delimiter) types.FormatOptions {
	options.Delimiter = delimiter
	return options
}
