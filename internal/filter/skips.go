package filter

import (
	"sync"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
)

// maxLoggedSkips caps the per-call warnings; the metric still counts all.
const maxLoggedSkips = 5

// skipCounter tallies cells a predicate could not convert.
type skipCounter struct {
	mu       sync.Mutex
	byColumn map[string]int
	samples  []*apperrors.ErrCoercionSkip
}

func (s *skipCounter) add(column string, row int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byColumn == nil {
		s.byColumn = make(map[string]int)
	}
	s.byColumn[column]++
	if len(s.samples) < maxLoggedSkips {
		s.samples = append(s.samples, &apperrors.ErrCoercionSkip{Column: column, Row: row, Value: value})
	}
}

func (s *skipCounter) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.byColumn {
		n += c
	}
	return n
}

// flush publishes the counts to Prometheus and logs a few samples.
func (s *skipCounter) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := config.GetLogger()
	for column, n := range s.byColumn {
		metrics.CoercionSkipsTotal.WithLabelValues(column).Add(float64(n))
	}
	for _, e := range s.samples {
		logger.Debug().Err(e).Msg("Row excluded by filter")
	}
}
