package grpc

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/CatalogLens/internal/models"
)

func TestEncodeStruct_Dashboard(t *testing.T) {
	t.Parallel()
	dash := models.Dashboard{
		TotalRows:    6,
		FilteredRows: 2,
		Charts: []models.Chart{{
			ID:     "score_by_year",
			Kind:   models.ChartLine,
			Series: []models.Series{{Name: "All", Points: []models.Point{{X: 2020, Y: 7.5}}}},
		}},
		Unavailable: []models.UnavailableChart{{ID: "top_genres", Missing: []string{"genres"}}},
	}

	s, err := encodeStruct(dash)
	if err != nil {
		t.Fatalf("encodeStruct: %v", err)
	}

	if got := s.Fields["totalRows"].GetNumberValue(); got != 6 {
		t.Errorf("Expected totalRows 6, got %v", got)
	}
	charts := s.Fields["charts"].GetListValue().GetValues()
	if len(charts) != 1 {
		t.Fatalf("Expected 1 chart, got %d", len(charts))
	}
	chart := charts[0].GetStructValue()
	if chart.Fields["kind"].GetStringValue() != "line" {
		t.Errorf("Expected kind line, got %v", chart.Fields["kind"])
	}
	point := chart.Fields["series"].GetListValue().GetValues()[0].GetStructValue().
		Fields["points"].GetListValue().GetValues()[0].GetStructValue()
	if point.Fields["y"].GetNumberValue() != 7.5 {
		t.Errorf("Expected y 7.5, got %v", point.Fields["y"])
	}
}

func TestDecodeStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      *structpb.Struct
		want    models.DashboardRequest
		wantErr bool
	}{
		{
			name: "nil struct",
			in:   nil,
			want: models.DashboardRequest{},
		},
		{
			name: "years and sources",
			in: func() *structpb.Struct {
				s, _ := structpb.NewStruct(map[string]any{
					"selection": map[string]any{"years": []any{2020, 1999}},
					"sources":   []any{"titles.csv"},
				})
				return s
			}(),
			want: models.DashboardRequest{
				Selection: models.Selection{Years: []int{2020, 1999}},
				Sources:   []string{"titles.csv"},
			},
		},
		{
			name: "wrong type",
			in: func() *structpb.Struct {
				s, _ := structpb.NewStruct(map[string]any{"sources": "titles.csv"})
				return s
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got models.DashboardRequest
			err := decodeStruct(tt.in, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeStruct error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
