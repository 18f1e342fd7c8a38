package models

import "strings"

// GenreScope restricts the genre-score view to one content type.
type GenreScope string

const (
	GenreScopeAll   GenreScope = "All"
	GenreScopeMovie GenreScope = "MOVIE"
	GenreScopeShow  GenreScope = "SHOW"
)

// ParseGenreScope converts user input to a GenreScope. Empty input means All.
func ParseGenreScope(s string) (GenreScope, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return GenreScopeAll, true
	case "MOVIE":
		return GenreScopeMovie, true
	case "SHOW":
		return GenreScopeShow, true
	default:
		return "", false
	}
}

// YearRange is an inclusive release-year window.
type YearRange struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gte=0"`
}

// Contains reports whether year falls inside the window.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Selection holds the user's filter choices for one interaction.
//
// An empty set means "no constraint". Years and YearRange are alternative
// forms of the year predicate and must not both be set.
type Selection struct {
	Types      []string   `json:"types,omitempty" validate:"omitempty,dive,required"`
	Cast       []string   `json:"cast,omitempty" validate:"omitempty,dive,required"`
	Years      []int      `json:"years,omitempty" validate:"omitempty,dive,gte=0"`
	YearRange  *YearRange `json:"yearRange,omitempty" validate:"omitempty"`
	GenreScope GenreScope `json:"genreScope,omitempty"`
}

// IncludesType reports whether rows of the given type survive the type
// predicate. An empty type set includes everything.
func (s Selection) IncludesType(t string) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, v := range s.Types {
		if strings.EqualFold(strings.TrimSpace(v), t) {
			return true
		}
	}
	return false
}

// FilterOptions lists the values a user can pick from, derived from the
// unified table.
type FilterOptions struct {
	Types       []string   `json:"types"`
	Cast        []string   `json:"cast"`
	Years       []int      `json:"years"`
	YearBounds  *YearRange `json:"yearBounds,omitempty"`
	GenreScopes []string   `json:"genreScopes"`
	Unavailable []string   `json:"unavailable,omitempty"`
	Defaults    Selection  `json:"defaults"`
	Warnings    []string   `json:"warnings,omitempty"`
}
