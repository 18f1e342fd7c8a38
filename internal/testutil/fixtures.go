package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/Belphemur/CatalogLens/internal/models"
)

// TitlesHeader is the header of the titles fixture.
var TitlesHeader = []string{"id", "title", "type", "release_year", "genres", "imdb_score", "imdb_votes", "tmdb_popularity", "seasons"}

// TitlesRows is a small catalog covering movies, shows, duplicates and gaps.
var TitlesRows = [][]string{
	{"tm1", "Alpha", "MOVIE", "2020", "['drama', 'comedy']", "7.5", "1200", "55.1", ""},
	{"ts1", "Beta", "SHOW", "2020", "['drama']", "8.1", "5400", "80.2", "3"},
	{"tm2", "Gamma", "MOVIE", "1999", "['action']", "6.2", "300", "12.0", ""},
	{"ts2", "Delta", "SHOW", "2015", "['comedy', 'family']", "7.0", "900", "20.5", "1"},
	{"tm3", "Alpha", "MOVIE", "2021", "['drama']", "5.0", "10", "99.0", ""},
	{"tm4", "Epsilon", "MOVIE", "", "['horror']", "", "", "", ""},
}

// CreditsHeader is the header of the credits fixture.
var CreditsHeader = []string{"person_id", "id", "name", "character", "role"}

// CreditsRows attaches two actors to tm1 and one to ts1.
var CreditsRows = [][]string{
	{"p1", "tm1", "Ann Lee", "Hero", "ACTOR"},
	{"p2", "tm1", "Bob Ray", "Villain", "ACTOR"},
	{"p3", "ts1", "Cid Moe", "Host", "ACTOR"},
	{"p4", "tx9", "Dee Roe", "Nobody", "DIRECTOR"},
}

// CSV renders a header and rows as comma-separated text.
func CSV(header []string, rows ...[]string) []byte {
	return Delimited(',', header, rows...)
}

// Delimited renders a header and rows with the given separator.
func Delimited(sep rune, header []string, rows ...[]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = sep
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return buf.Bytes()
}

// TitlesCSV returns the titles fixture as CSV.
func TitlesCSV() []byte {
	return CSV(TitlesHeader, TitlesRows...)
}

// CreditsCSV returns the credits fixture as CSV.
func CreditsCSV() []byte {
	return CSV(CreditsHeader, CreditsRows...)
}

// Table builds a models.Table from raw strings. Empty strings become null cells.
func Table(header []string, rows ...[]string) *models.Table {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		row := make(models.Row, len(header))
		for j := range header {
			if j < len(r) && r[j] != "" {
				row[j] = models.NewCell(r[j])
			}
		}
		out[i] = row
	}
	return models.NewTable(append([]string(nil), header...), out)
}

// TitlesTable returns the titles fixture as a table.
func TitlesTable() *models.Table {
	return Table(TitlesHeader, TitlesRows...)
}

// WriteFile writes data to name inside a per-test temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
