package pagination

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/medilink/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_LastPartialPage(t *testing.T) {
	page, err := Paginate(context.Background(), seq(25), 10, 20, Static(25))

	require.NoError(t, err)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, page.Items)
	assert.Equal(t, 25, page.Total)
	assert.False(t, page.HasMore)
}

func TestPaginate_RejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{-1, 0} {
		_, err := Paginate(context.Background(), seq(5), limit, 0, Static(5))

		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidParameter(err))
	}
}

func TestPaginate_ClampsNegativeOffset(t *testing.T) {
	page, err := Paginate(context.Background(), seq(5), 2, -3, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, []int{0, 1}, page.Items)
	assert.True(t, page.HasMore)
}

func TestPaginate_OffsetPastEnd(t *testing.T) {
	page, err := Paginate(context.Background(), seq(5), 10, 50, Static(5))

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPaginate_TotalComesFromCount(t *testing.T) {
	// candidates were capped upstream; the store count still reports every match
	page, err := Paginate(context.Background(), seq(10), 10, 0, Static(42))

	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 42, page.Total)
	assert.True(t, page.HasMore)
}

func TestPaginate_CountError(t *testing.T) {
	boom := apperrors.NewStoreUnavailableError("count failed", errors.New("timeout"))

	_, err := Paginate(context.Background(), seq(3), 10, 0, func(context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestPaginate_PagesCoverEverythingOnce(t *testing.T) {
	data := seq(37)
	for _, limit := range []int{1, 5, 10, 37, 50} {
		seen := map[int]int{}
		for offset := 0; ; offset += limit {
			page, err := Paginate(context.Background(), data, limit, offset, Static(len(data)))
			require.NoError(t, err)

			assert.LessOrEqual(t, len(page.Items), limit)
			assert.Equal(t, page.Offset+len(page.Items) < page.Total, page.HasMore)
			for _, v := range page.Items {
				seen[v]++
			}
			if !page.HasMore {
				break
			}
		}

		assert.Len(t, seen, len(data), "limit %d", limit)
		for v, n := range seen {
			assert.Equal(t, 1, n, "value %d seen %d times with limit %d", v, n, limit)
		}
	}
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	data := seq(4)
	page, err := Paginate(context.Background(), data, 2, 0, nil)
	require.NoError(t, err)

	page.Items[0] = 99

	assert.Equal(t, 0, data[0])
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 30, Window(10, 20))
	assert.Equal(t, 10, Window(10, -5))
}
