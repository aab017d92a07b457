package report

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/labreport/labreport/internal/domain/extraction"
	"github.com/labreport/labreport/internal/domain/record"
)

// Service runs the full report pipeline over patient records and
// accumulates the cross-record extraction rollup. Safe for concurrent use;
// the shared registry is the only cross-record state.
type Service struct {
	opts Options
	agg  *record.Aggregator
	now  func() time.Time

	mu  sync.Mutex
	reg *extraction.Registry
}

func NewService(opts Options, log zerolog.Logger) *Service {
	opts.ApplyDefaults()
	return &Service{
		opts: opts,
		agg:  record.NewAggregator(log),
		now:  time.Now,
		reg:  extraction.NewRegistry(),
	}
}

// Options returns the effective configuration after defaults.
func (s *Service) Options() Options { return s.opts }

// Process runs one patient record through aggregation, filtering, ordering
// and layout, feeding the rollup as a side effect.
func (s *Service) Process(rec *record.PatientRecord) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.agg.Aggregate(rec, s.reg)
	filtered := ApplyFilters(series, s.opts)

	surviving := make([]string, 0, len(filtered))
	for name := range filtered {
		surviving = append(surviving, name)
	}
	ordered := ResolveOrder(surviving, s.opts.TestSequence)
	for _, name := range ordered {
		s.reg.MarkUsed(name)
	}

	return &Report{
		Header:       BuildHeader(rec, s.opts.DateFormat, s.now()),
		OrderedTests: ordered,
		Series:       filtered,
		Layout:       BuildLayout(filtered, ordered, s.opts.DateFormat),
		Charts:       BuildChartSeries(filtered, ordered, s.opts.Chart),
	}
}

// Extraction finalizes and returns the rollup accumulated so far. The
// registry keeps accumulating afterwards; finalizing is repeatable.
func (s *Service) Extraction() extraction.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Finalize()
}

// UsedTests returns the sorted names of tests that survived filtering for
// at least one processed record.
func (s *Service) UsedTests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.UsedTests()
}
