package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/medilink/backend/internal/query/predicate"
	apperrors "github.com/medilink/backend/pkg/errors"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching value anywhere, with wildcards in value escaped.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// whereExpressions translates a constraint set into goqu expressions. List and count queries
// both call this, so they always filter identically.
func whereExpressions(set predicate.Set) ([]exp.Expression, error) {
	out := make([]exp.Expression, 0, len(set))
	for _, c := range set {
		e, err := constraintExpression(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func constraintExpression(c predicate.Constraint) (exp.Expression, error) {
	switch c := c.(type) {
	case predicate.ExactMatch:
		return goqu.C(string(c.Field)).Eq(c.Value), nil
	case predicate.SubstringMatch:
		pattern := containsPattern(c.Value)
		ors := make([]exp.Expression, 0, len(c.Fields))
		for _, f := range c.Fields {
			if f == predicate.FieldQualifications {
				ors = append(ors, goqu.L("array_to_string(?, ' ')", goqu.C(string(f))).ILike(pattern))
				continue
			}
			ors = append(ors, goqu.C(string(f)).ILike(pattern))
		}
		return goqu.Or(ors...), nil
	case predicate.LowerBound:
		return goqu.C(string(c.Field)).Gte(c.Value), nil
	case predicate.UpperBound:
		return goqu.C(string(c.Field)).Lte(c.Value), nil
	case predicate.BooleanEquals:
		return goqu.C(string(c.Field)).Eq(c.Value), nil
	}
	return nil, fmt.Errorf("unsupported constraint %T", c)
}

// byteOrderedFields sort by byte value regardless of the database collation, matching the
// in-memory store's string comparison.
var byteOrderedFields = map[predicate.Field]bool{
	predicate.FieldName: true,
	predicate.FieldID:   true,
}

func orderExpressions(orders []predicate.Order) []exp.OrderedExpression {
	out := make([]exp.OrderedExpression, len(orders))
	for i, o := range orders {
		var col exp.Orderable = goqu.C(string(o.Field))
		if byteOrderedFields[o.Field] {
			col = goqu.L(`? COLLATE "C"`, goqu.C(string(o.Field)))
		}
		if o.Desc {
			out[i] = col.Desc()
		} else {
			out[i] = col.Asc()
		}
	}
	return out
}

// storeError classifies a driver error. Connection, resource and cancellation failures
// become STORE_UNAVAILABLE; everything else is INTERNAL.
func storeError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return apperrors.NewStoreUnavailableError(msg, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return apperrors.NewStoreUnavailableError(msg, err)
		}
		return apperrors.NewInternalError(msg, err)
	}
	return apperrors.NewStoreUnavailableError(msg, err)
}
