package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/infrastructure/clients/postgres"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/query/predicate"
	apperrors "github.com/medilink/backend/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the discovery tables and indexes when they do not exist
func Migrate(ctx context.Context, client *postgres.Client) error {
	if _, err := client.DB().ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const facilitiesTable = "facilities"

var facilityColumns = []interface{}{
	"id", "name", "facility_type", "street", "city", "state", "zip_code", "country",
	"latitude", "longitude", "phone_number", "email", "website",
	"bed_count", "program_eligible", "is_active", "created_at", "updated_at",
}

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewFacilityAdapter creates a new facility adapter. metrics may be nil.
func NewFacilityAdapter(client *postgres.Client, metrics *observability.Metrics) *FacilityAdapter {
	return &FacilityAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

var _ repositories.FacilityRepository = (*FacilityAdapter)(nil)

// Create inserts a facility, leaving an existing row with the same id untouched
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	now := time.Now()
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = now
	}
	if facility.UpdatedAt.IsZero() {
		facility.UpdatedAt = now
	}

	record := goqu.Record{
		"id":               facility.ID,
		"name":             facility.Name,
		"facility_type":    facility.FacilityType,
		"street":           facility.Address.Street,
		"city":             facility.Address.City,
		"state":            facility.Address.State,
		"zip_code":         facility.Address.ZipCode,
		"country":          facility.Address.Country,
		"latitude":         facility.Location.Latitude,
		"longitude":        facility.Location.Longitude,
		"phone_number":     facility.PhoneNumber,
		"email":            facility.Email,
		"website":          facility.Website,
		"bed_count":        facility.BedCount,
		"program_eligible": facility.ProgramEligible,
		"is_active":        facility.IsActive,
		"created_at":       facility.CreatedAt,
		"updated_at":       facility.UpdatedAt,
	}

	query, args, err := a.db.Insert(facilitiesTable).
		Rows(record).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return storeError("failed to create facility", err)
	}
	return nil
}

// GetByID retrieves an active facility by ID
func (a *FacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	defer a.observe(ctx, "facilities.get_by_id", time.Now())

	query, args, err := a.db.From(facilitiesTable).
		Select(facilityColumns...).
		Where(goqu.C("id").Eq(id), goqu.C("is_active").IsTrue()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility, err := scanFacility(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	if err != nil {
		return nil, storeError("failed to get facility", err)
	}
	return facility, nil
}

// GetSummariesByIDs returns summaries for the active facilities among ids
func (a *FacilityAdapter) GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error) {
	if len(ids) == 0 {
		return []entities.FacilitySummary{}, nil
	}
	defer a.observe(ctx, "facilities.summaries", time.Now())

	query, args, err := a.db.From(facilitiesTable).
		Select("id", "name", "city", "state").
		Where(goqu.C("id").In(ids), goqu.C("is_active").IsTrue()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to get facility summaries", err)
	}
	defer rows.Close()

	summaries := make([]entities.FacilitySummary, 0, len(ids))
	for rows.Next() {
		var s entities.FacilitySummary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("error iterating facility summaries", err)
	}
	return summaries, nil
}

// Find retrieves facilities matching the query
func (a *FacilityAdapter) Find(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	defer a.observe(ctx, "facilities.find", time.Now())

	where, err := whereExpressions(q.Constraints)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to translate constraints", err)
	}

	ds := a.db.From(facilitiesTable).Select(facilityColumns...).Where(where...)
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
		return nil, storeError("failed to find facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.Facility{}
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("error iterating facilities", err)
	}
	return facilities, nil
}

// Count counts facilities matching the constraints
func (a *FacilityAdapter) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	defer a.observe(ctx, "facilities.count", time.Now())
	return countRows(ctx, a.client, a.db, facilitiesTable, constraints)
}

func (a *FacilityAdapter) observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacility(row rowScanner) (*entities.Facility, error) {
	f := &entities.Facility{}
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.FacilityType,
		&f.Address.Street,
		&f.Address.City,
		&f.Address.State,
		&f.Address.ZipCode,
		&f.Address.Country,
		&f.Location.Latitude,
		&f.Location.Longitude,
		&f.PhoneNumber,
		&f.Email,
		&f.Website,
		&f.BedCount,
		&f.ProgramEligible,
		&f.IsActive,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func countRows(ctx context.Context, client *postgres.Client, db *goqu.Database, table string, constraints predicate.Set) (int, error) {
	where, err := whereExpressions(constraints)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to translate constraints", err)
	}

	query, args, err := db.From(table).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var n int
	if err := client.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storeError(fmt.Sprintf("failed to count %s", table), err)
	}
	return n, nil
}
