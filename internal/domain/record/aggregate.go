package record

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/labreport/labreport/internal/domain/extraction"
	"github.com/labreport/labreport/internal/platform/dates"
)

// Aggregator flattens the nested visit structure of a patient record into
// per-test reading series, feeding the shared extraction registry as it
// goes.
type Aggregator struct {
	log zerolog.Logger
}

func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{log: log}
}

// Aggregate walks one patient record and returns the readings grouped by
// test name, in traversal order. Leaves missing a test name or result are
// skipped; visit entries missing a date, or whose date cannot be parsed,
// are skipped whole. Registry mutations happen once per accepted leaf.
func (a *Aggregator) Aggregate(rec *PatientRecord, reg *extraction.Registry) map[string][]Reading {
	series := make(map[string][]Reading)

	for i := range rec.Visits {
		visit := &rec.Visits[i]
		if visit.Date == "" {
			continue
		}
		visitDate, err := dates.Parse(visit.Date)
		if err != nil {
			a.log.Warn().Str("date", visit.Date).Msg("skipping visit with unparsable date")
			continue
		}

		if visit.Result != nil {
			a.acceptLeaf(series, reg, visit, visitDate, visit.Name, visit.Result, visit.Unit, visit.RefRange)
		}

		for j := range visit.Tests {
			node := &visit.Tests[j]
			if node.IsGroup() {
				for k := range node.Tests {
					sub := &node.Tests[k]
					a.acceptLeaf(series, reg, visit, visitDate, sub.Name, sub.Result, sub.Unit, sub.RefRange)
				}
				continue
			}
			a.acceptLeaf(series, reg, visit, visitDate, node.Name, node.Result, node.Unit, node.RefRange)
		}
	}

	return series
}

func (a *Aggregator) acceptLeaf(series map[string][]Reading, reg *extraction.Registry,
	visit *VisitEntry, visitDate time.Time, name string, result *Value, unit, refRange string) {

	if name == "" || result == nil || string(*result) == "" {
		return
	}

	series[name] = append(series[name], Reading{
		TestName: name,
		Date:     visitDate,
		DateRaw:  visit.Date,
		Value:    string(*result),
		Unit:     unit,
		RefRange: refRange,
		Context:  visit.Context,
	})

	reg.RecordTest(name, unit, refRange)

	if visit.Meta != nil {
		reg.RecordDoctor(visit.Meta.RefDoc, visit.Context, visit.Date)
		reg.RecordFacility(visit.Meta.Facility, visit.Context, visit.Date)
	}
}
