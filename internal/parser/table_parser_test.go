package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/testutil"
)

func mustParse(t *testing.T, name string, data []byte, opts Options) *models.Table {
	t.Helper()
	table, err := NewTableParser(opts).ParseTable(name, data)
	if err != nil {
		t.Fatalf("ParseTable(%s) failed: %v", name, err)
	}
	return table
}

// ---------------------------------------------------------------------------
// Delimited text
// ---------------------------------------------------------------------------

func TestParseTable_CSV(t *testing.T) {
	t.Parallel()
	table := mustParse(t, "titles.csv", testutil.TitlesCSV(), Options{})

	if !reflect.DeepEqual(table.Columns, testutil.TitlesHeader) {
		t.Errorf("Expected columns %v, got %v", testutil.TitlesHeader, table.Columns)
	}
	if table.Len() != len(testutil.TitlesRows) {
		t.Fatalf("Expected %d rows, got %d", len(testutil.TitlesRows), table.Len())
	}
	if title, _ := table.Text(1, "title"); title != "Beta" {
		t.Errorf("Expected second title Beta, got %q", title)
	}
	if c := table.Cell(0, "seasons"); c.Valid {
		t.Errorf("Expected empty seasons to be null, got %q", c.Value)
	}
}

func TestParseTable_NAMarkersBecomeNull(t *testing.T) {
	t.Parallel()
	data := []byte("id,score,label\n1,NaN,N/A\n2,NULL,none\n3,<NA>,#N/A\n")
	table := mustParse(t, "na.csv", data, Options{})

	for i := 0; i < table.Len(); i++ {
		if c := table.Cell(i, "score"); c.Valid {
			t.Errorf("Row %d: expected null score, got %q", i, c.Value)
		}
	}
	// Only the listed markers are null; lower-case "none" is text.
	if v, ok := table.Text(1, "label"); !ok || v != "none" {
		t.Errorf("Expected 'none' to stay text, got %q (ok=%v)", v, ok)
	}
}

func TestParseTable_SniffsDelimiter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		sep  rune
	}{
		{name: "semicolon", sep: ';'},
		{name: "tab", sep: '\t'},
		{name: "pipe", sep: '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := testutil.Delimited(tt.sep, []string{"id", "title", "type"}, []string{"tm1", "Alpha, the movie", "MOVIE"})
			table := mustParse(t, "titles.txt", data, Options{})

			if len(table.Columns) != 3 {
				t.Fatalf("Expected 3 columns, got %v", table.Columns)
			}
			if v, _ := table.Text(0, "title"); v != "Alpha, the movie" {
				t.Errorf("Expected title with embedded comma, got %q", v)
			}
		})
	}
}

func TestSniffDelimiter_IgnoresQuotedSeparators(t *testing.T) {
	t.Parallel()
	if got := SniffDelimiter([]byte("\"a,b,c\";d;e\n1;2;3")); got != ';' {
		t.Errorf("Expected ';', got %q", got)
	}
	if got := SniffDelimiter([]byte("single")); got != ',' {
		t.Errorf("Expected default ',', got %q", got)
	}
}

func TestParseTable_ExplicitDelimiter(t *testing.T) {
	t.Parallel()
	// Sniffing would pick ',' here.
	data := []byte("a,b;c\n1,2;3\n")
	table := mustParse(t, "x.csv", data, Options{Delimiter: ';'})

	want := []string{"a,b", "c"}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Expected columns %v, got %v", want, table.Columns)
	}
}

func TestParseTable_RaggedRows(t *testing.T) {
	t.Parallel()
	data := []byte("a,b,c\n1\n1,2,3,4\n\n5,6,7\n")
	table := mustParse(t, "ragged.csv", data, Options{})

	if table.Len() != 3 {
		t.Fatalf("Expected blank line to be skipped and 3 rows kept, got %d", table.Len())
	}
	if c := table.Cell(0, "c"); c.Valid {
		t.Errorf("Expected short row to be padded with null, got %q", c.Value)
	}
	if len(table.Rows[1]) != 3 {
		t.Errorf("Expected long row to be truncated to 3 cells, got %d", len(table.Rows[1]))
	}
}

func TestParseTable_StripsBOM(t *testing.T) {
	t.Parallel()
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,title\n1,x\n")...)
	table := mustParse(t, "bom.csv", data, Options{})

	if table.Columns[0] != "id" {
		t.Errorf("Expected first column 'id', got %q", table.Columns[0])
	}
}

func TestParseTable_ExplicitEncoding(t *testing.T) {
	t.Parallel()
	data := []byte("title\nCaf\xe9\n")
	table := mustParse(t, "latin.csv", data, Options{Encoding: "windows-1252"})

	if v, _ := table.Text(0, "title"); v != "Café" {
		t.Errorf("Expected 'Café', got %q", v)
	}
}

func TestDedupeHeader(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "unique", in: []string{"id", "title"}, want: []string{"id", "title"}},
		{name: "repeated", in: []string{"id", "name", "name", "name"}, want: []string{"id", "name", "name.1", "name.2"}},
		{name: "blank", in: []string{"", "title", " "}, want: []string{"Unnamed: 0", "title", "Unnamed: 2"}},
		{name: "collision with suffix", in: []string{"a", "a.1", "a"}, want: []string{"a", "a.1", "a.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DedupeHeader(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseTable_Empty(t *testing.T) {
	t.Parallel()
	_, err := NewTableParser(Options{}).ParseTable("empty.csv", nil)
	if !errors.Is(err, &apperrors.ErrUnsupportedFormat{}) {
		t.Fatalf("Expected ErrUnsupportedFormat for empty input, got %v", err)
	}
}

func TestParseTable_HeaderOnly(t *testing.T) {
	t.Parallel()
	table := mustParse(t, "header.csv", []byte("id,title\n"), Options{})
	if table.Len() != 0 || len(table.Columns) != 2 {
		t.Errorf("Expected 0 rows and 2 columns, got %d rows and %v", table.Len(), table.Columns)
	}
}

// ---------------------------------------------------------------------------
// Workbooks and unsupported formats
// ---------------------------------------------------------------------------

func TestParseTable_XLSX(t *testing.T) {
	t.Parallel()
	data := testutil.XLSX(t, []string{"id", "title", "release_year"},
		[]string{"tm1", "Alpha", "2020"},
		[]string{"tm2", "Beta", ""},
	)
	table := mustParse(t, "titles.xlsx", data, Options{})

	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.Len())
	}
	if year, state := table.Int(0, "release_year"); state != models.CellOK || year != 2020 {
		t.Errorf("Expected year 2020, got %d (state %d)", year, state)
	}
	if c := table.Cell(1, "release_year"); c.Valid {
		t.Errorf("Expected trailing empty cell to be null, got %q", c.Value)
	}
}

func TestParseTable_UnsupportedExtension(t *testing.T) {
	t.Parallel()
	_, err := NewTableParser(Options{}).ParseTable("legacy.xls", []byte{0xD0, 0xCF})
	var unsupported *apperrors.ErrUnsupportedFormat
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if unsupported.Name != "legacy.xls" {
		t.Errorf("Expected name legacy.xls, got %q", unsupported.Name)
	}
}

func TestParseDelimiter(t *testing.T) {
	t.Parallel()
	tests := map[string]rune{
		"":    0,
		";":   ';',
		"tab": '\t',
		`\t`:  '\t',
		"|":   '|',
	}
	for in, want := range tests {
		if got := ParseDelimiter(in); got != want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}
