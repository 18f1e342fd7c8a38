package models

import "encoding/json"

// ChartKind tells the renderer how to draw a chart.
type ChartKind string

const (
	ChartScatterLogX   ChartKind = "scatter_log_x"
	ChartHorizontalBar ChartKind = "horizontal_bar"
	ChartLine          ChartKind = "line"
	ChartHeatmap       ChartKind = "heatmap"
	ChartPie           ChartKind = "pie"
	ChartToggleBar     ChartKind = "toggle_bar"
	ChartHistogram     ChartKind = "histogram"
)

// Point is an x/y pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bar is a category label with its value.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bin is one histogram bucket covering [Start, End).
// The last bin of a histogram also includes End.
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Series is one named data set of a chart. Only the slice matching the
// chart kind is set; it encodes as [] when empty and the nil ones are left out.
type Series struct {
	Name   string  `json:"name"`
	Bars   []Bar   `json:"bars,omitempty"`
	Points []Point `json:"points,omitempty"`
	Bins   []Bin   `json:"bins,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	out := struct {
		Name   string   `json:"name"`
		Bars   *[]Bar   `json:"bars,omitempty"`
		Points *[]Point `json:"points,omitempty"`
		Bins   *[]Bin   `json:"bins,omitempty"`
	}{Name: s.Name}
	if s.Bars != nil {
		out.Bars = &s.Bars
	}
	if s.Points != nil {
		out.Points = &s.Points
	}
	if s.Bins != nil {
		out.Bins = &s.Bins
	}
	return json.Marshal(out)
}

// Chart is the data behind one dashboard panel.
type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Series []Series  `json:"series"`
}

// UnavailableChart names a chart that cannot be drawn and the fields it lacks.
type UnavailableChart struct {
	ID      string   `json:"id"`
	Missing []string `json:"missing,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Dashboard is the full response for one interaction.
type Dashboard struct {
	Selection    Selection          `json:"selection"`
	TotalRows    int                `json:"totalRows"`
	FilteredRows int                `json:"filteredRows"`
	Charts       []Chart            `json:"charts"`
	Unavailable  []UnavailableChart `json:"unavailable,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
}
