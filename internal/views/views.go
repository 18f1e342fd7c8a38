// Package views derives chart-ready aggregates from a filtered table. Every
// function is pure, tolerates an empty or column-less table and then returns
// an empty, non-nil result.
package views

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Belphemur/CatalogLens/internal/models"
)

// TopN ranks rows by metric and returns the n highest as title bars.
//
// Rows with a null metric or no title are dropped, then titles are
// de-duplicated keeping their first occurrence. A non-empty typeScope keeps
// only rows of that type (case-insensitive) after de-duplication. Ties keep
// their table order.
func TopN(t *models.Table, metric string, n int, typeScope string) []models.Bar {
	bars := []models.Bar{}
	schema := t.Schema()
	titleCol := schema.Column(models.FieldTitle)
	if titleCol == "" || !t.HasColumn(metric) || n <= 0 {
		return bars
	}
	typeCol := schema.Column(models.FieldType)
	scope := strings.ToUpper(strings.TrimSpace(typeScope))
	if scope != "" && typeCol == "" {
		return bars
	}

	seen := make(map[string]bool)
	for i := range t.Rows {
		value, ok := numberAt(t, i, metric)
		if !ok {
			continue
		}
		title, ok := t.Text(i, titleCol)
		if !ok || seen[title] {
			continue
		}
		seen[title] = true

		if scope != "" {
			rowType, _ := t.Text(i, typeCol)
			if strings.ToUpper(rowType) != scope {
				continue
			}
		}
		bars = append(bars, models.Bar{Label: title, Value: value})
	}

	sort.SliceStable(bars, func(a, b int) bool { return bars[a].Value > bars[b].Value })
	if len(bars) > n {
		bars = bars[:n]
	}
	return bars
}

// group collects the values of one key.
type group struct {
	key    string
	values []float64
}

func (g group) mean() float64 {
	return stat.Mean(g.values, nil)
}

// meanBy groups value per key in first-seen key order. keys may return
// several keys for one row (exploded lists). Groups without any parseable
// value are never created.
func meanBy(t *models.Table, keys func(i int) []string, value string) []group {
	index := make(map[string]int)
	var groups []group
	for i := range t.Rows {
		v, ok := numberAt(t, i, value)
		if !ok {
			continue
		}
		for _, k := range keys(i) {
			idx, exists := index[k]
			if !exists {
				idx = len(groups)
				index[k] = idx
				groups = append(groups, group{key: k})
			}
			groups[idx].values = append(groups[idx].values, v)
		}
	}
	return groups
}

// MeanByYear returns the mean of value per release year, sorted by year.
func MeanByYear(t *models.Table, value string) []models.Point {
	points := []models.Point{}
	yearCol := t.Schema().Column(models.FieldReleaseYear)
	if yearCol == "" || !t.HasColumn(value) {
		return points
	}

	groups := meanBy(t, func(i int) []string {
		y, ok := yearAt(t, i, yearCol)
		if !ok {
			return nil
		}
		return []string{strconv.Itoa(y)}
	}, value)

	for _, g := range groups {
		year, _ := strconv.Atoi(g.key)
		points = append(points, models.Point{X: float64(year), Y: g.mean()})
	}
	sort.Slice(points, func(a, b int) bool { return points[a].X < points[b].X })
	return points
}

// MeanByGenre returns the mean of value per exploded genre, sorted by mean
// descending with ties in first-seen order. Means are rounded to decimals
// places when decimals >= 0, and only the first topN groups are kept when
// topN > 0.
func MeanByGenre(t *models.Table, value string, topN, decimals int) []models.Bar {
	bars := []models.Bar{}
	genreCol := t.Schema().Column(models.FieldGenres)
	if genreCol == "" || !t.HasColumn(value) {
		return bars
	}

	groups := meanBy(t, func(i int) []string {
		raw, ok := t.Text(i, genreCol)
		if !ok {
			return nil
		}
		return models.SplitList(raw)
	}, value)

	for _, g := range groups {
		bars = append(bars, models.Bar{Label: g.key, Value: round(g.mean(), decimals)})
	}
	sort.SliceStable(bars, func(a, b int) bool { return bars[a].Value > bars[b].Value })
	if topN > 0 && len(bars) > topN {
		bars = bars[:topN]
	}
	return bars
}

func round(v float64, decimals int) float64 {
	if decimals < 0 {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// ExplodeCounts splits a multi-value column and counts every token
// occurrence. Results are sorted by count descending, ties in first-seen
// order, and truncated to topN when topN > 0.
func ExplodeCounts(t *models.Table, column string, topN int) []models.Bar {
	if !t.HasColumn(column) {
		return []models.Bar{}
	}
	return countBy(t, func(i int) []string {
		raw, ok := t.Text(i, column)
		if !ok {
			return nil
		}
		return models.SplitList(raw)
	}, topN)
}

// CategoryCounts counts rows per distinct non-null value of column.
func CategoryCounts(t *models.Table, column string, topN int) []models.Bar {
	if !t.HasColumn(column) {
		return []models.Bar{}
	}
	return countBy(t, func(i int) []string {
		v, ok := t.Text(i, column)
		if !ok {
			return nil
		}
		return []string{v}
	}, topN)
}

func countBy(t *models.Table, keys func(i int) []string, topN int) []models.Bar {
	index := make(map[string]int)
	bars := []models.Bar{}
	for i := range t.Rows {
		for _, k := range keys(i) {
			idx, ok := index[k]
			if !ok {
				idx = len(bars)
				index[k] = idx
				bars = append(bars, models.Bar{Label: k})
			}
			bars[idx].Value++
		}
	}
	sort.SliceStable(bars, func(a, b int) bool { return bars[a].Value > bars[b].Value })
	if topN > 0 && len(bars) > topN {
		bars = bars[:topN]
	}
	return bars
}

// Histogram splits the range of column into equal-width bins. Each bin covers
// [Start, End) except the last, which also includes End. A column holding a
// single distinct value is spread over [v-0.5, v+0.5].
func Histogram(t *models.Table, column string, bins int) []models.Bin {
	out := []models.Bin{}
	if bins <= 0 || !t.HasColumn(column) {
		return out
	}

	var values []float64
	for i := range t.Rows {
		if v, ok := numberAt(t, i, column); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return out
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)

	out = make([]models.Bin, bins)
	for b := range out {
		out[b] = models.Bin{Start: dividers[b], End: dividers[b+1]}
	}

	// stat.Histogram treats the last divider as exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)
	for b, c := range counts {
		out[b].Count = int(c)
	}
	return out
}

// Scatter pairs x and y for rows where both parse. With logX, non-positive x
// values are dropped since they cannot be drawn on a log axis.
func Scatter(t *models.Table, x, y string, logX bool) []models.Point {
	points := []models.Point{}
	if !t.HasColumn(x) || !t.HasColumn(y) {
		return points
	}
	for i := range t.Rows {
		xv, ok := numberAt(t, i, x)
		if !ok {
			continue
		}
		yv, ok := numberAt(t, i, y)
		if !ok {
			continue
		}
		if logX && xv <= 0 {
			continue
		}
		points = append(points, models.Point{X: xv, Y: yv})
	}
	return points
}
