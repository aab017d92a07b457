package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/labreport/labreport/internal/domain/record"
)

type memRepo struct {
	recs map[uuid.UUID]*record.StoredRecord
}

func (m *memRepo) Create(_ context.Context, rec *record.StoredRecord) error {
	rec.ID = uuid.New()
	m.recs[rec.ID] = rec
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*record.StoredRecord, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return rec, nil
}

func (m *memRepo) Update(_ context.Context, rec *record.StoredRecord) error { return nil }
func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error             { return nil }

func (m *memRepo) List(_ context.Context, limit, offset int) ([]*record.StoredRecord, int, error) {
	return nil, 0, nil
}

func (m *memRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*record.StoredRecord, int, error) {
	return nil, 0, nil
}

func TestGenerateReportHandler(t *testing.T) {
	records := record.NewService(&memRepo{recs: make(map[uuid.UUID]*record.StoredRecord)})
	stored, err := records.Import(context.Background(), []byte(`{
		"name": "Maria Santos",
		"reading": [{"date": "2023-04-15", "name": "Glucose", "result": 92, "ref_range": "70-100"}]
	}`))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewHandler(NewService(Options{}, zerolog.Nop()), records)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/records/"+stored.ID.String()+"/report", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(stored.ID.String())

	if err := h.GenerateReport(c); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var rep Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.OrderedTests) != 1 || rep.OrderedTests[0] != "Glucose" {
		t.Errorf("ordered tests = %v", rep.OrderedTests)
	}
}

func TestGenerateReportHandler_UnknownRecord(t *testing.T) {
	records := record.NewService(&memRepo{recs: make(map[uuid.UUID]*record.StoredRecord)})
	h := NewHandler(NewService(Options{}, zerolog.Nop()), records)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/records/x/report", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GenerateReport(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestGetExtractionHandler(t *testing.T) {
	records := record.NewService(&memRepo{recs: make(map[uuid.UUID]*record.StoredRecord)})
	h := NewHandler(NewService(Options{}, zerolog.Nop()), records)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/extraction", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetExtraction(c); err != nil {
		t.Fatalf("GetExtraction: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
