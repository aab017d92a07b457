// Package extraction accumulates the deduplicated entities referenced by
// patient records across a whole processing run: the tests observed, the
// issuing doctors, the facilities, and the set of tests that actually made
// it into a generated report.
package extraction

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeID derives the identity key for a display name: non-alphanumeric
// characters are stripped, runs of whitespace become single underscores, and
// the result is lowercased.
func NormalizeID(name string) string {
	id := nonAlnumRe.ReplaceAllString(name, "")
	id = whitespaceRe.ReplaceAllString(id, "_")
	return strings.ToLower(strings.Trim(id, "_"))
}

// TestRecord is one deduplicated test definition. Unit and Range are
// overwritten by later observations only when the new value is non-empty.
type TestRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Range string `json:"range"`
}

// DoctorRecord is one deduplicated issuing doctor, with every distinct
// context label and visit-date string seen for them.
type DoctorRecord struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Contexts    []string `json:"contexts"`
	VisitDates  []string `json:"visit_dates"`
}

// FacilityRecord is one deduplicated facility.
type FacilityRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Contexts   []string `json:"contexts"`
	VisitDates []string `json:"visit_dates"`
}

// Document is the finalized extraction written alongside the reports.
type Document struct {
	Tests      []TestRecord     `json:"tests"`
	Doctors    []DoctorRecord   `json:"doctors"`
	Facilities []FacilityRecord `json:"facilities"`
}

type contactEntry struct {
	name       string
	contexts   map[string]struct{}
	visitDates map[string]struct{}
}

func newContactEntry(name string) *contactEntry {
	return &contactEntry{
		name:       name,
		contexts:   make(map[string]struct{}),
		visitDates: make(map[string]struct{}),
	}
}

func (e *contactEntry) observe(context, visitDate string) {
	if context != "" {
		e.contexts[context] = struct{}{}
	}
	if visitDate != "" {
		e.visitDates[visitDate] = struct{}{}
	}
}

// Registry is the mutable cross-record accumulator. It is not safe for
// concurrent use; callers that process records in parallel must serialize
// access.
type Registry struct {
	tests      map[string]*TestRecord
	testOrder  []string
	doctors    map[string]*contactEntry
	facilities map[string]*contactEntry
	usedTests  map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		tests:      make(map[string]*TestRecord),
		doctors:    make(map[string]*contactEntry),
		facilities: make(map[string]*contactEntry),
		usedTests:  make(map[string]struct{}),
	}
}

// RecordTest registers one observation of a named test. The first sighting
// creates the record; later sightings overwrite unit and range only when the
// new value is non-empty.
func (r *Registry) RecordTest(name, unit, refRange string) {
	id := NormalizeID(name)
	if id == "" {
		return
	}
	rec, ok := r.tests[id]
	if !ok {
		r.tests[id] = &TestRecord{ID: id, Name: name, Unit: unit, Range: refRange}
		r.testOrder = append(r.testOrder, id)
		return
	}
	if unit != "" {
		rec.Unit = unit
	}
	if refRange != "" {
		rec.Range = refRange
	}
}

// RecordDoctor registers a doctor attribution from one visit.
func (r *Registry) RecordDoctor(name, context, visitDate string) {
	if name == "" {
		return
	}
	id := NormalizeID(name)
	entry, ok := r.doctors[id]
	if !ok {
		entry = newContactEntry(name)
		r.doctors[id] = entry
	}
	entry.observe(context, visitDate)
}

// RecordFacility registers a facility attribution from one visit.
func (r *Registry) RecordFacility(name, context, visitDate string) {
	if name == "" {
		return
	}
	id := NormalizeID(name)
	entry, ok := r.facilities[id]
	if !ok {
		entry = newContactEntry(name)
		r.facilities[id] = entry
	}
	entry.observe(context, visitDate)
}

// MarkUsed records that a test survived filtering and ordering for at least
// one processed record.
func (r *Registry) MarkUsed(testName string) {
	r.usedTests[testName] = struct{}{}
}

// UsedTests returns the cumulative surviving test names, alphabetically.
func (r *Registry) UsedTests() []string {
	names := make([]string, 0, len(r.usedTests))
	for n := range r.usedTests {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Finalize converts the accumulated registries into plain sorted collections:
// tests in the order they were first encountered, doctors and facilities
// alphabetically by normalized id with sorted context and visit-date lists.
// The registry itself is left untouched, so Finalize may be called more than
// once during a run.
func (r *Registry) Finalize() Document {
	doc := Document{
		Tests:      make([]TestRecord, 0, len(r.testOrder)),
		Doctors:    make([]DoctorRecord, 0, len(r.doctors)),
		Facilities: make([]FacilityRecord, 0, len(r.facilities)),
	}

	for _, id := range r.testOrder {
		doc.Tests = append(doc.Tests, *r.tests[id])
	}

	for _, id := range sortedKeys(r.doctors) {
		e := r.doctors[id]
		doc.Doctors = append(doc.Doctors, DoctorRecord{
			ID:          id,
			DisplayName: e.name,
			Contexts:    sortedSet(e.contexts),
			VisitDates:  sortedSet(e.visitDates),
		})
	}

	for _, id := range sortedKeys(r.facilities) {
		e := r.facilities[id]
		doc.Facilities = append(doc.Facilities, FacilityRecord{
			ID:         id,
			Name:       e.name,
			Contexts:   sortedSet(e.contexts),
			VisitDates: sortedSet(e.visitDates),
		})
	}

	return doc
}

func sortedKeys(m map[string]*contactEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
