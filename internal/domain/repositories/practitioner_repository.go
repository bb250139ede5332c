package repositories

import (
	"context"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/query/predicate"
)

// PractitionerRepository defines the read operations the discovery engine needs from practitioner storage
type PractitionerRepository interface {
	// GetByID retrieves an active practitioner by ID
	GetByID(ctx context.Context, id string) (*entities.Practitioner, error)

	// Find retrieves practitioners matching the query
	Find(ctx context.Context, q Query) ([]*entities.Practitioner, error)

	// Count counts practitioners matching the constraints
	Count(ctx context.Context, constraints predicate.Set) (int, error)
}

// PractitionerWriter persists practitioners; used by seeding, never by discovery
type PractitionerWriter interface {
	Create(ctx context.Context, practitioner *entities.Practitioner) error
}
