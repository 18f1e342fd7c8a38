package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// Options control how raw bytes are decoded into a table.
type Options struct {
	// Encoding names the text encoding. Empty means detect.
	Encoding string
	// Delimiter separates fields. Zero means sniff from the header line.
	Delimiter rune
	// MaxBytes limits decompressed sizes. Zero means unlimited.
	MaxBytes int64
}

// delimiterCandidates are tried in order when sniffing; earlier wins ties.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// naValues are read as null, matching the usual dataframe defaults.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// DefaultTableParser reads delimited text and xlsx workbooks, after
// unwrapping any compression or archive layer.
type DefaultTableParser struct {
	opts Options
}

// NewTableParser creates a parser with the given options.
func NewTableParser(opts Options) *DefaultTableParser {
	return &DefaultTableParser{opts: opts}
}

// ParseTable implements TableParser.
func (p *DefaultTableParser) ParseTable(name string, data []byte) (*models.Table, error) {
	logger := config.GetLogger()

	entry, content, err := Unwrap(name, data, p.opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	var table *models.Table
	switch strings.ToLower(path.Ext(entry)) {
	case ".xlsx", ".xlsm":
		table, err = p.parseWorkbook(content)
	case ".xls", ".parquet", ".json", ".ods":
		return nil, &apperrors.ErrUnsupportedFormat{Name: entry, Reason: "only delimited text and xlsx workbooks are supported"}
	default:
		table, err = p.parseDelimited(content)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", name).
		Str("entry", entry).
		Int("columns", len(table.Columns)).
		Int("rows", table.Len()).
		Msg("Parsed table")
	return table, nil
}

func (p *DefaultTableParser) parseDelimited(content []byte) (*models.Table, error) {
	reader, err := NewUTF8Reader(bytes.NewReader(content), p.opts.Encoding)
	if err != nil {
		return nil, err
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	text = bytes.TrimPrefix(text, []byte("\ufeff"))

	delimiter := p.opts.Delimiter
	if delimiter == 0 {
		delimiter = SniffDelimiter(text)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited text: %w", err)
	}
	return buildTable(records)
}

func (p *DefaultTableParser) parseWorkbook(content []byte) (*models.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &apperrors.ErrUnsupportedFormat{Name: "workbook", Reason: "no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return buildTable(rows)
}

// buildTable turns raw records into a table: the first record is the header,
// short rows are padded with nulls, long rows are truncated and NA markers
// become null cells.
func buildTable(records [][]string) (*models.Table, error) {
	if len(records) == 0 {
		return nil, &apperrors.ErrUnsupportedFormat{Name: "table", Reason: "no header row"}
	}

	header := DedupeHeader(records[0])
	rows := make([]models.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(models.Row, len(header))
		for j := range header {
			if j >= len(rec) {
				break
			}
			if _, na := naValues[rec[j]]; !na {
				row[j] = models.NewCell(rec[j])
			}
		}
		rows = append(rows, row)
	}

	return models.NewTable(header, rows), nil
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// DedupeHeader trims header names, names blank ones "Unnamed: <i>" and
// suffixes repeated names with ".1", ".2" and so on.
func DedupeHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	used := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if used[name] {
			base := name
			for {
				seen[base]++
				name = base + "." + strconv.Itoa(seen[base])
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		header[i] = name
	}
	return header
}

// SniffDelimiter picks the candidate separator that occurs most often,
// outside quotes, on the first line of text. It defaults to a comma.
func SniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, c := range string(line) {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range delimiterCandidates {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// ParseDelimiter reads a configured delimiter. Empty input returns zero,
// which means sniff. "tab" and the escaped form "\t" name a tab.
func ParseDelimiter(s string) rune {
	switch strings.ToLower(s) {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
