package filter

import (
	"sort"

	"github.com/Belphemur/CatalogLens/internal/models"
)

// DefaultVariant picks the initial year control of a dashboard.
type DefaultVariant int

const (
	// VariantAll starts with every type and year selected and no cast.
	VariantAll DefaultVariant = iota
	// VariantRange starts with the DefaultYearWindow clamped to the data.
	VariantRange
)

// DefaultYearWindow is the initial range of the range variant.
var DefaultYearWindow = models.YearRange{Min: 2000, Max: 2022}

// DefaultSelection returns the initial selection of a dashboard. The result
// never constrains types or cast; VariantRange limits years to
// DefaultYearWindow intersected with the data's span, or to the whole span
// when they do not overlap.
func DefaultSelection(t *models.Table, variant DefaultVariant) models.Selection {
	sel := models.Selection{GenreScope: models.GenreScopeAll}
	if variant != VariantRange {
		return sel
	}

	bounds := yearBounds(distinctYears(t))
	if bounds == nil {
		return sel
	}

	r := models.YearRange{
		Min: max(DefaultYearWindow.Min, bounds.Min),
		Max: min(DefaultYearWindow.Max, bounds.Max),
	}
	if r.Min > r.Max {
		r = *bounds
	}
	sel.YearRange = &r
	return sel
}

// Options lists the values the filter controls can offer for t. Controls
// whose column is missing are reported in Unavailable.
func Options(t *models.Table) models.FilterOptions {
	schema := t.Schema()
	opts := models.FilterOptions{
		Types:       []string{},
		Cast:        []string{},
		Years:       []int{},
		GenreScopes: []string{string(models.GenreScopeAll), string(models.GenreScopeMovie), string(models.GenreScopeShow)},
		Defaults:    DefaultSelection(t, VariantAll),
	}

	if schema.Has(models.FieldType) {
		opts.Types = distinctTypes(t, schema.Column(models.FieldType))
	} else {
		opts.Unavailable = append(opts.Unavailable, models.FieldType.String())
	}

	if schema.Has(models.FieldCast) {
		opts.Cast = distinctCast(t, schema.Column(models.FieldCast))
	} else {
		opts.Unavailable = append(opts.Unavailable, models.FieldCast.String())
	}

	if schema.Has(models.FieldReleaseYear) {
		opts.Years = distinctYears(t)
		opts.YearBounds = yearBounds(opts.Years)
	} else {
		opts.Unavailable = append(opts.Unavailable, models.FieldReleaseYear.String())
	}

	return opts
}

// distinctTypes keeps first-seen order.
func distinctTypes(t *models.Table, column string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for i := range t.Rows {
		v, ok := t.Text(i, column)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func distinctCast(t *models.Table, column string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for i := range t.Rows {
		raw, ok := t.Text(i, column)
		if !ok {
			continue
		}
		for _, name := range models.SplitList(raw) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// distinctYears returns the sorted parseable years of t.
func distinctYears(t *models.Table) []int {
	column := t.Schema().Column(models.FieldReleaseYear)
	if column == "" {
		return []int{}
	}
	seen := make(map[int]bool)
	out := []int{}
	for i := range t.Rows {
		y, state := t.Int(i, column)
		if state != models.CellOK || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func yearBounds(sorted []int) *models.YearRange {
	if len(sorted) == 0 {
		return nil
	}
	return &models.YearRange{Min: sorted[0], Max: sorted[len(sorted)-1]}
}
