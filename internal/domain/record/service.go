package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

// Import validates and stores one raw patient record document. The
// identity columns are extracted from the payload so listings do not
// need to decode it.
func (s *Service) Import(ctx context.Context, payload json.RawMessage) (*StoredRecord, error) {
	var rec PatientRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("invalid record payload: %w", err)
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("record is missing a patient name")
	}

	stored := &StoredRecord{
		PatientName: rec.Name,
		Payload:     payload,
	}
	if rec.DOB != "" {
		stored.DOB = &rec.DOB
	}
	if rec.Gender != "" {
		stored.Gender = &rec.Gender
	}
	if err := s.records.Create(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	return s.records.GetByID(ctx, id)
}

// GetRecord fetches a stored record and decodes its payload.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	stored, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return stored.Record()
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, payload json.RawMessage) (*StoredRecord, error) {
	var rec PatientRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("invalid record payload: %w", err)
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("record is missing a patient name")
	}

	stored, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored.PatientName = rec.Name
	stored.DOB, stored.Gender = nil, nil
	if rec.DOB != "" {
		stored.DOB = &rec.DOB
	}
	if rec.Gender != "" {
		stored.Gender = &rec.Gender
	}
	stored.Payload = payload
	if err := s.records.Update(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*StoredRecord, int, error) {
	return s.records.List(ctx, limit, offset)
}

func (s *Service) SearchByName(ctx context.Context, name string, limit, offset int) ([]*StoredRecord, int, error) {
	return s.records.SearchByName(ctx, name, limit, offset)
}
