package models

import "strings"

// Field is a semantic column consumed by filters and charts.
type Field int

const (
	FieldID Field = iota
	FieldTitle
	FieldType
	FieldGenres
	FieldCast
	FieldReleaseYear
	FieldIMDBScore
	FieldIMDBVotes
	FieldTMDBPopularity
	FieldSeasons
)

// AllFields lists every semantic field in declaration order.
var AllFields = []Field{
	FieldID,
	FieldTitle,
	FieldType,
	FieldGenres,
	FieldCast,
	FieldReleaseYear,
	FieldIMDBScore,
	FieldIMDBVotes,
	FieldTMDBPopularity,
	FieldSeasons,
}

// String returns the canonical column name of the field.
func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldTitle:
		return "title"
	case FieldType:
		return "type"
	case FieldGenres:
		return "genres"
	case FieldCast:
		return "cast"
	case FieldReleaseYear:
		return "release_year"
	case FieldIMDBScore:
		return "imdb_score"
	case FieldIMDBVotes:
		return "imdb_votes"
	case FieldTMDBPopularity:
		return "tmdb_popularity"
	case FieldSeasons:
		return "seasons"
	default:
		return "unknown"
	}
}

// Candidates returns the column names that can carry the field, in order of
// preference.
func (f Field) Candidates() []string {
	if f == FieldCast {
		return []string{"cast", "role"}
	}
	return []string{f.String()}
}

// Schema maps semantic fields to the concrete columns of one table.
type Schema struct {
	columns map[Field]string
}

// NewSchema resolves fields against a header. Resolution depends only on
// which names are present, never on their order.
func NewSchema(header []string) Schema {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	s := Schema{columns: make(map[Field]string)}
	for _, f := range AllFields {
		for _, name := range f.Candidates() {
			if present[name] {
				s.columns[f] = name
				break
			}
		}
	}
	return s
}

// Has reports whether the field is backed by a column.
func (s Schema) Has(f Field) bool {
	_, ok := s.columns[f]
	return ok
}

// Column returns the column backing the field, or "" when absent.
func (s Schema) Column(f Field) string {
	return s.columns[f]
}

// Missing returns the fields from the list that the schema lacks.
func (s Schema) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// FieldNames renders fields as their canonical column names.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return names
}

// SplitList splits a comma-separated multi-value cell into trimmed, non-empty
// tokens. Python list literals such as "['drama', 'comedy']" are tolerated by
// stripping brackets and quotes around each token.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := strings.Trim(strings.TrimSpace(p), "[]'\"")
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
