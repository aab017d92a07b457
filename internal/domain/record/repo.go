package record

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rec *StoredRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*StoredRecord, error)
	Update(ctx context.Context, rec *StoredRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*StoredRecord, int, error)
	SearchByName(ctx context.Context, name string, limit, offset int) ([]*StoredRecord, int, error)
}
