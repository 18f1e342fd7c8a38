package filter

import (
	"strings"
	"time"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// CastMatch decides how a selected cast name is compared to a row's entries.
type CastMatch string

const (
	// CastExact requires an entry equal to the selected name.
	CastExact CastMatch = "exact"
	// CastSubstring accepts an entry containing the selected name.
	CastSubstring CastMatch = "substring"
)

// ParseCastMatch maps configuration text to a mode, defaulting to exact.
func ParseCastMatch(s string) CastMatch {
	if strings.EqualFold(strings.TrimSpace(s), string(CastSubstring)) {
		return CastSubstring
	}
	return CastExact
}

// Engine applies a selection to a table. It holds no per-request state.
type Engine struct {
	castMatch CastMatch
}

// NewEngine creates an engine using the given cast match mode.
func NewEngine(castMatch CastMatch) *Engine {
	if castMatch == "" {
		castMatch = CastExact
	}
	return &Engine{castMatch: castMatch}
}

// predicate keeps row i when it returns true.
type predicate struct {
	field models.Field
	keep  func(i int) bool
}

// Apply returns the rows of t that satisfy every active predicate, in their
// original order. A predicate is active when its selection set is non-empty
// and its column exists.
func (e *Engine) Apply(t *models.Table, sel models.Selection) *models.Table {
	logger := config.GetLogger()
	start := time.Now()
	defer func() { metrics.FilterDuration.Observe(time.Since(start).Seconds()) }()

	skips := &skipCounter{}
	preds := e.predicates(t, sel, skips)
	if len(preds) == 0 {
		return t.Where(func(int) bool { return true })
	}

	out := t.Where(func(i int) bool {
		for _, p := range preds {
			if !p.keep(i) {
				return false
			}
		}
		return true
	})

	active := make([]string, len(preds))
	for i, p := range preds {
		active[i] = p.field.String()
	}

	skips.flush()
	logger.Debug().
		Strs("predicates", active).
		Int("input", t.Len()).
		Int("output", out.Len()).
		Int("coercionSkips", skips.total()).
		Msg("Selection applied")
	return out
}

func (e *Engine) predicates(t *models.Table, sel models.Selection, skips *skipCounter) []predicate {
	schema := t.Schema()
	var preds []predicate

	// Blank entries carry no constraint; a list of only blanks is empty.
	if types := nonBlank(sel.Types); len(types) > 0 && schema.Has(models.FieldType) {
		preds = append(preds, typePredicate(t, schema.Column(models.FieldType), types))
	}
	if (len(sel.Years) > 0 || sel.YearRange != nil) && schema.Has(models.FieldReleaseYear) {
		preds = append(preds, yearPredicate(t, schema.Column(models.FieldReleaseYear), sel, skips))
	}
	if cast := nonBlank(sel.Cast); len(cast) > 0 && schema.Has(models.FieldCast) {
		preds = append(preds, e.castPredicate(t, schema.Column(models.FieldCast), cast))
	}
	return preds
}

// nonBlank returns the trimmed, non-empty values.
func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func typePredicate(t *models.Table, column string, types []string) predicate {
	wanted := make(map[string]bool, len(types))
	for _, v := range types {
		wanted[v] = true
	}
	return predicate{
		field: models.FieldType,
		keep: func(i int) bool {
			v, ok := t.Text(i, column)
			return ok && wanted[v]
		},
	}
}

func yearPredicate(t *models.Table, column string, sel models.Selection, skips *skipCounter) predicate {
	var inSelection func(year int) bool
	if sel.YearRange != nil {
		r := *sel.YearRange
		inSelection = r.Contains
	} else {
		years := make(map[int]bool, len(sel.Years))
		for _, y := range sel.Years {
			years[y] = true
		}
		inSelection = func(year int) bool { return years[year] }
	}

	return predicate{
		field: models.FieldReleaseYear,
		keep: func(i int) bool {
			year, state := t.Int(i, column)
			if state != models.CellOK {
				skips.add(column, i, t.Cell(i, column).Value)
				return false
			}
			return inSelection(year)
		},
	}
}

func (e *Engine) castPredicate(t *models.Table, column string, names []string) predicate {
	match := func(entry, name string) bool { return entry == name }
	if e.castMatch == CastSubstring {
		match = strings.Contains
	}

	return predicate{
		field: models.FieldCast,
		keep: func(i int) bool {
			raw, ok := t.Text(i, column)
			if !ok {
				return false
			}
			for _, entry := range models.SplitList(raw) {
				for _, name := range names {
					if match(entry, name) {
						return true
					}
				}
			}
			return false
		},
	}
}

// Validate rejects selections whose parts contradict each other.
func Validate(sel models.Selection) error {
	if len(sel.Years) > 0 && sel.YearRange != nil {
		return apperrors.NewInvalidSelectionError("years", "years and yearRange are mutually exclusive")
	}
	if sel.YearRange != nil && sel.YearRange.Min > sel.YearRange.Max {
		return apperrors.NewInvalidSelectionError("yearRange", "min is greater than max")
	}
	if sel.GenreScope != "" {
		if _, ok := models.ParseGenreScope(string(sel.GenreScope)); !ok {
			return apperrors.NewInvalidSelectionError("genreScope", "must be one of All, MOVIE, SHOW")
		}
	}
	return nil
}
