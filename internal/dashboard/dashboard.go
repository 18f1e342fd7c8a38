// Package dashboard holds the fixed chart menu and turns a filtered table
// into chart payloads.
package dashboard

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/views"
)

const (
	topTitles       = 10
	topGenres       = 10
	topGenreScores  = 15
	scoreDecimals   = 2
	scoreBins       = 20
	seasonBins      = 30
	typeMovie       = "MOVIE"
	typeShow        = "SHOW"
	defaultSeriesID = "All"
)

// chart describes one panel of the dashboard.
type chart struct {
	id       string
	title    string
	kind     models.ChartKind
	requires []models.Field
	// active reports whether the chart applies to the selection; nil means always.
	active func(sel models.Selection) (bool, string)
	build  func(in input) []models.Series
}

// input is what every chart builder receives.
type input struct {
	table  *models.Table
	schema models.Schema
	sel    models.Selection
}

func (in input) col(f models.Field) string {
	return in.schema.Column(f)
}

// ofType keeps the rows whose type equals kind, ignoring case.
func (in input) ofType(kind string) *models.Table {
	typeCol := in.col(models.FieldType)
	return in.table.Where(func(i int) bool {
		v, ok := in.table.Text(i, typeCol)
		return ok && strings.EqualFold(v, kind)
	})
}

// typed keeps the rows that have a type, so per-type panels and their "All"
// series cover the same rows.
func (in input) typed() *models.Table {
	typeCol := in.col(models.FieldType)
	return in.table.Where(func(i int) bool {
		_, ok := in.table.Text(i, typeCol)
		return ok
	})
}

var titleCaser = cases.Title(language.English)

// Label renders a type value such as "MOVIE" as "Movie".
func Label(v string) string {
	return titleCaser.String(strings.ToLower(v))
}

func bars(name string, b []models.Bar) []models.Series {
	return []models.Series{{Name: name, Bars: b}}
}

func points(name string, p []models.Point) []models.Series {
	return []models.Series{{Name: name, Points: p}}
}

func bins(name string, b []models.Bin) []models.Series {
	return []models.Series{{Name: name, Bins: b}}
}

// menu lists every chart in display order.
var menu = []chart{
	{
		id:       "votes_vs_score",
		title:    "IMDb votes vs. IMDb score",
		kind:     models.ChartScatterLogX,
		requires: []models.Field{models.FieldIMDBVotes, models.FieldIMDBScore},
		build: func(in input) []models.Series {
			return points(defaultSeriesID, views.Scatter(in.table, in.col(models.FieldIMDBVotes), in.col(models.FieldIMDBScore), true))
		},
	},
	{
		id:       "top_popular_movies",
		title:    "Top 10 most popular movies",
		kind:     models.ChartHorizontalBar,
		requires: []models.Field{models.FieldTitle, models.FieldTMDBPopularity, models.FieldType},
		build: func(in input) []models.Series {
			return bars(defaultSeriesID, views.TopN(in.table, in.col(models.FieldTMDBPopularity), topTitles, typeMovie))
		},
	},
	{
		id:       "top_popular_titles",
		title:    "Top 10 most popular titles",
		kind:     models.ChartHorizontalBar,
		requires: []models.Field{models.FieldTitle, models.FieldTMDBPopularity},
		build: func(in input) []models.Series {
			return bars(defaultSeriesID, views.TopN(in.table, in.col(models.FieldTMDBPopularity), topTitles, ""))
		},
	},
	{
		id:       "top_voted_titles",
		title:    "Top 10 most voted titles",
		kind:     models.ChartHorizontalBar,
		requires: []models.Field{models.FieldTitle, models.FieldIMDBVotes},
		build: func(in input) []models.Series {
			return bars(defaultSeriesID, views.TopN(in.table, in.col(models.FieldIMDBVotes), topTitles, ""))
		},
	},
	{
		id:       "score_by_year_movies",
		title:    "Average IMDb score of movies by release year",
		kind:     models.ChartLine,
		requires: []models.Field{models.FieldReleaseYear, models.FieldIMDBScore, models.FieldType},
		build: func(in input) []models.Series {
			return points(Label(typeMovie), views.MeanByYear(in.ofType(typeMovie), in.col(models.FieldIMDBScore)))
		},
	},
	{
		id:       "score_by_year",
		title:    "Average IMDb score by release year",
		kind:     models.ChartLine,
		requires: []models.Field{models.FieldReleaseYear, models.FieldIMDBScore},
		build: func(in input) []models.Series {
			return points(defaultSeriesID, views.MeanByYear(in.table, in.col(models.FieldIMDBScore)))
		},
	},
	{
		id:       "genre_score",
		title:    "Average IMDb score by genre",
		kind:     models.ChartHeatmap,
		requires: []models.Field{models.FieldGenres, models.FieldIMDBScore, models.FieldType},
		build: func(in input) []models.Series {
			scope, _ := models.ParseGenreScope(string(in.sel.GenreScope))
			table := in.typed()
			if scope != models.GenreScopeAll {
				table = in.ofType(string(scope))
			}
			return bars(string(scope), views.MeanByGenre(table, in.col(models.FieldIMDBScore), topGenreScores, scoreDecimals))
		},
	},
	{
		id:       "type_distribution",
		title:    "Content type distribution",
		kind:     models.ChartPie,
		requires: []models.Field{models.FieldType},
		build: func(in input) []models.Series {
			counts := views.CategoryCounts(in.table, in.col(models.FieldType), 0)
			for i := range counts {
				counts[i].Label = Label(counts[i].Label)
			}
			return bars(defaultSeriesID, counts)
		},
	},
	{
		id:       "top_genres",
		title:    "Top 10 genres",
		kind:     models.ChartToggleBar,
		requires: []models.Field{models.FieldGenres, models.FieldType},
		build: func(in input) []models.Series {
			genres := in.col(models.FieldGenres)
			return []models.Series{
				{Name: defaultSeriesID, Bars: views.ExplodeCounts(in.typed(), genres, topGenres)},
				{Name: Label(typeMovie) + "s", Bars: views.ExplodeCounts(in.ofType(typeMovie), genres, topGenres)},
				{Name: Label(typeShow) + "s", Bars: views.ExplodeCounts(in.ofType(typeShow), genres, topGenres)},
			}
		},
	},
	{
		id:       "score_distribution",
		title:    "IMDb score distribution",
		kind:     models.ChartHistogram,
		requires: []models.Field{models.FieldIMDBScore},
		build: func(in input) []models.Series {
			return bins(defaultSeriesID, views.Histogram(in.table, in.col(models.FieldIMDBScore), scoreBins))
		},
	},
	{
		id:       "season_distribution",
		title:    "Number of seasons of shows",
		kind:     models.ChartHistogram,
		requires: []models.Field{models.FieldSeasons, models.FieldType},
		active: func(sel models.Selection) (bool, string) {
			if sel.IncludesType(typeShow) {
				return true, ""
			}
			return false, "SHOW is not part of the type selection"
		},
		build: func(in input) []models.Series {
			return bins(Label(typeShow)+"s", views.Histogram(in.ofType(typeShow), in.col(models.FieldSeasons), seasonBins))
		},
	},
}

// ChartIDs returns the identifiers of every chart in display order.
func ChartIDs() []string {
	ids := make([]string, len(menu))
	for i, c := range menu {
		ids[i] = c.id
	}
	return ids
}

// Render builds every chart whose required fields are present in t and that
// applies to sel. The others are returned as unavailable, with the missing
// field names or the reason they do not apply.
func Render(t *models.Table, sel models.Selection) ([]models.Chart, []models.UnavailableChart) {
	in := input{table: t, schema: t.Schema(), sel: sel}

	charts := make([]models.Chart, 0, len(menu))
	var unavailable []models.UnavailableChart
	for _, c := range menu {
		if missing := in.schema.Missing(c.requires...); len(missing) > 0 {
			unavailable = append(unavailable, models.UnavailableChart{ID: c.id, Missing: models.FieldNames(missing)})
			continue
		}
		if c.active != nil {
			if ok, reason := c.active(sel); !ok {
				unavailable = append(unavailable, models.UnavailableChart{ID: c.id, Reason: reason})
				continue
			}
		}
		charts = append(charts, models.Chart{
			ID:     c.id,
			Title:  c.title,
			Kind:   c.kind,
			Series: c.build(in),
		})
	}
	return charts, unavailable
}
