package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/infrastructure/clients/postgres"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/query/predicate"
	apperrors "github.com/medilink/backend/pkg/errors"
)

const practitionersTable = "practitioners"

var practitionerColumns = []interface{}{
	"id", "name", "specialty", "qualifications", "experience_years", "consultation_fee",
	"facility_id", "city", "state", "rating", "review_count",
	"availability_days", "availability_start", "availability_end", "accepting_patients",
	"is_active", "created_at", "updated_at",
}

// PractitionerAdapter implements the PractitionerRepository interface
type PractitionerAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewPractitionerAdapter creates a new practitioner adapter. metrics may be nil.
func NewPractitionerAdapter(client *postgres.Client, metrics *observability.Metrics) *PractitionerAdapter {
	return &PractitionerAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

var _ repositories.PractitionerRepository = (*PractitionerAdapter)(nil)

// Create inserts a practitioner, leaving an existing row with the same id untouched
func (a *PractitionerAdapter) Create(ctx context.Context, p *entities.Practitioner) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	var facilityID sql.NullString
	if p.FacilityID != nil {
		facilityID = sql.NullString{String: *p.FacilityID, Valid: true}
	}

	record := goqu.Record{
		"id":                 p.ID,
		"name":               p.Name,
		"specialty":          p.Specialty,
		"qualifications":     pq.Array(nonNil(p.Qualifications)),
		"experience_years":   p.ExperienceYears,
		"consultation_fee":   p.ConsultationFee,
		"facility_id":        facilityID,
		"city":               p.City,
		"state":              p.State,
		"rating":             p.Rating,
		"review_count":       p.ReviewCount,
		"availability_days":  pq.Array(nonNil(p.Availability.Days)),
		"availability_start": p.Availability.StartTime,
		"availability_end":   p.Availability.EndTime,
		"accepting_patients": p.Availability.AcceptingPatients,
		"is_active":          p.IsActive,
		"created_at":         p.CreatedAt,
		"updated_at":         p.UpdatedAt,
	}

	query, args, err := a.db.Insert(practitionersTable).
		Rows(record).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return storeError("failed to create practitioner", err)
	}
	return nil
}

// GetByID retrieves an active practitioner by ID
func (a *PractitionerAdapter) GetByID(ctx context.Context, id string) (*entities.Practitioner, error) {
	defer a.observe(ctx, "practitioners.get_by_id", time.Now())

	query, args, err := a.db.From(practitionersTable).
		Select(practitionerColumns...).
		Where(goqu.C("id").Eq(id), goqu.C("is_active").IsTrue()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	p, err := scanPractitioner(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("practitioner with id %s not found", id))
	}
	if err != nil {
		return nil, storeError("failed to get practitioner", err)
	}
	return p, nil
}

// Find retrieves practitioners matching the query
func (a *PractitionerAdapter) Find(ctx context.Context, q repositories.Query) ([]*entities.Practitioner, error) {
	defer a.observe(ctx, "practitioners.find", time.Now())

	where, err := whereExpressions(q.Constraints)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to translate constraints", err)
	}

	ds := a.db.From(practitionersTable).Select(practitionerColumns...).Where(where...)
	if len(q.Order) > 0 {
		ds = ds.Order(orderExpressions(q.Order)...)
	}
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to find practitioners", err)
	}
	defer rows.Close()

	practitioners := []*entities.Practitioner{}
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan practitioner", err)
		}
		practitioners = append(practitioners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("error iterating practitioners", err)
	}
	return practitioners, nil
}

// Count counts practitioners matching the constraints
func (a *PractitionerAdapter) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	defer a.observe(ctx, "practitioners.count", time.Now())
	return countRows(ctx, a.client, a.db, practitionersTable, constraints)
}

func (a *PractitionerAdapter) observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

func scanPractitioner(row rowScanner) (*entities.Practitioner, error) {
	p := &entities.Practitioner{}
	var facilityID sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		pq.Array(&p.Qualifications),
		&p.ExperienceYears,
		&p.ConsultationFee,
		&facilityID,
		&p.City,
		&p.State,
		&p.Rating,
		&p.ReviewCount,
		pq.Array(&p.Availability.Days),
		&p.Availability.StartTime,
		&p.Availability.EndTime,
		&p.Availability.AcceptingPatients,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if facilityID.Valid {
		p.FacilityID = &facilityID.String
	}
	return p, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
