package types

type ParsedTable struct {
	Headers []string
	Rows    [][]string
}

func (table *ParsedTable) RowCount() int {
	if table == nil {
		return 0
	}
	return len(table.Rows)
}

func (table *ParsedTable) ColumnCount() int {
	if table == nil {
		return 0
	}
	return len(table.Headers)
}

type Delimiter string

const (
	DelimiterAuto      Delimiter = ""
	DelimiterComma     Delimiter = ","
	DelimiterSemicolon Delimiter = ";"
	DelimiterTab       Delimiter = "\t"
	DelimiterPipe      Delimiter = "|"
)

// Delimiters lists the delimiters considered by auto-detection, in tie-break order.
var Delimiters = []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterPipe}

func (delimiter Delimiter) IsValidDelimiter() bool {
	switch delimiter {
	case DelimiterAuto,
		DelimiterComma,
		DelimiterSemicolon,
		DelimiterTab,
		DelimiterPipe:
		return true
	default:
		return false
	}
}

func (delimiter Delimiter) Rune() rune {
	if delimiter == DelimiterAuto {
		return ','
	}
	return rune(delimiter[0])
}

func (delimiter Delimiter) Label() string {
	switch delimiter {
	case DelimiterComma:
		return "Comma (,)"
	case DelimiterSemicolon:
		return "Semicolon (;)"
	case DelimiterTab:
		return "Tab"
	case DelimiterPipe:
		return "Pipe (|)"
	default:
		return "Auto-detect"
	}
}

// ParseDelimiter accepts the literal delimiter or one of the names used on the command line.
func ParseDelimiter(value string) (Delimiter, bool) {
	switch value {
	case "", "auto":
		return DelimiterAuto, true
	case ",", "comma":
		return DelimiterComma, true
	case ";", "semicolon":
		return DelimiterSemicolon, true
	case "\t", `\t`, "tab":
		return DelimiterTab, true
	case "|", "pipe":
		return DelimiterPipe, true
	default:
		return DelimiterAuto, false
	}
}

type Encoding string

const (
	EncodingUTF8        Encoding = "UTF-8"
	EncodingISO88591    Encoding = "ISO-8859-1"
	EncodingWindows1252 Encoding = "Windows-1252"
)

var Encodings = []Encoding{EncodingUTF8, EncodingISO88591, EncodingWindows1252}

func (encoding Encoding) IsValidEncoding() bool {
	switch encoding {
	case EncodingUTF8,
		EncodingISO88591,
		EncodingWindows1252:
		return true
	default:
		return false
	}
}

type DateFormat string

const (
	DateFormatYMD       DateFormat = "Y-m-d"
	DateFormatDMY       DateFormat = "d-m-Y"
	DateFormatMDY       DateFormat = "m-d-Y"
	DateFormatDMYDotted DateFormat = "d.m.Y"
	DateFormatDMYSlash  DateFormat = "d/m/Y"
)

var DateFormats = []DateFormat{DateFormatYMD, DateFormatDMY, DateFormatMDY, DateFormatDMYDotted, DateFormatDMYSlash}

func (dateFormat DateFormat) IsValidDateFormat() bool {
	switch dateFormat {
	case DateFormatYMD,
		DateFormatDMY,
		DateFormatMDY,
		DateFormatDMYDotted,
		DateFormatDMYSlash:
		return true
	default:
		return false
	}
}

type DecimalSeparator string

const (
	DecimalSeparatorPoint DecimalSeparator = "."
	DecimalSeparatorComma DecimalSeparator = ","
)

func (decimalSeparator DecimalSeparator) IsValidDecimalSeparator() bool {
	return decimalSeparator == DecimalSeparatorPoint || decimalSeparator == DecimalSeparatorComma
}

// FormatOptions controls how an uploaded file is parsed. Only Delimiter, Encoding,
// HasHeaderRow and SkipRowCount affect parsing; the rest is carried with the import.
type FormatOptions struct {
	Delimiter        Delimiter
	Encoding         Encoding
	HasHeaderRow     bool
	SkipRowCount     int
	DateFormat       DateFormat
	DecimalSeparator DecimalSeparator
	AllowCreation    bool
	AllowUpdate      bool
	IsRelation       bool
}

func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Delimiter:        DelimiterComma,
		Encoding:         EncodingUTF8,
		HasHeaderRow:     true,
		SkipRowCount:     0,
		DateFormat:       DateFormatYMD,
		DecimalSeparator: DecimalSeparatorPoint,
		AllowCreation:    true,
		AllowUpdate:      true,
		IsRelation:       false,
	}
}

func (options FormatOptions) Validate() error {
	if !options.Delimiter.IsValidDelimiter() {
		return NewValidationError("delimiter", "unsupported delimiter %q", string(options.Delimiter))
	}
	if !options.Encoding.IsValidEncoding() {
		return NewValidationError("encoding", "unsupported encoding %q", string(options.Encoding))
	}
	if options.SkipRowCount < 0 {
		return NewValidationError("skipRowCount", "skip row count must not be negative")
	}
	if !options.DateFormat.IsValidDateFormat() {
		return NewValidationError("dateFormat", "unsupported date format %q", string(options.DateFormat))
	}
	if !options.DecimalSeparator.IsValidDecimalSeparator() {
		return NewValidationError("decimalSeparator", "unsupported decimal separator %q", string(options.DecimalSeparator))
	}
	return nil
}
