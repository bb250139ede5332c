package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/query/predicate"
	"github.com/medilink/backend/pkg/config"
	apperrors "github.com/medilink/backend/pkg/errors"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPractitioners struct {
	calls int
	err   error
}

func (s *stubPractitioners) GetByID(_ context.Context, id string) (*entities.Practitioner, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Practitioner{ID: id}, nil
}

func (s *stubPractitioners) Find(_ context.Context, _ repositories.Query) ([]*entities.Practitioner, error) {
	s.calls++
	return nil, s.err
}

func (s *stubPractitioners) Count(_ context.Context, _ predicate.Set) (int, error) {
	s.calls++
	return 0, s.err
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreaker_OpensAfterStoreFailures(t *testing.T) {
	stub := &stubPractitioners{err: apperrors.NewStoreUnavailableError("query failed", errors.New("connection refused"))}
	breaker := NewBreaker("practitioners", testBreakerConfig(), nil)
	repo := NewPractitionerRepository(stub, breaker)

	for i := 0; i < 3; i++ {
		_, err := repo.Find(context.Background(), repositories.Query{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	_, err := repo.Count(context.Background(), nil)

	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, stub.calls)
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	stub := &stubPractitioners{err: apperrors.NewNotFoundError("practitioner not found")}
	breaker := NewBreaker("practitioners", testBreakerConfig(), nil)
	repo := NewPractitionerRepository(stub, breaker)

	for i := 0; i < 5; i++ {
		_, err := repo.GetByID(context.Background(), "missing")
		assert.True(t, apperrors.IsNotFound(err))
	}

	assert.Equal(t, gobreaker.StateClosed, breaker.State())
	assert.Equal(t, 5, stub.calls)
}

func TestBreaker_PassesResultsThrough(t *testing.T) {
	stub := &stubPractitioners{}
	repo := NewPractitionerRepository(stub, NewBreaker("practitioners", testBreakerConfig(), nil))

	got, err := repo.GetByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(apperrors.NewInvalidParameterError("bad limit")))
	assert.True(t, isSuccessful(context.Canceled))
	assert.False(t, isSuccessful(apperrors.NewInternalError("scan failed", errors.New("boom"))))
	assert.False(t, isSuccessful(context.DeadlineExceeded))
}
