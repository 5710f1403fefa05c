package window_test

import (
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset/datasettest"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = datasettest.At(2024, time.June, 15, 10)

func retentionFixture(t *testing.T) *datasettest.Builder {
	t.Helper()
	return datasettest.New().
		Category(1, "Books").
		Customer(1, "Ada", "Boston").
		Customer(2, "Grace", "Denver").
		Customer(3, "Linus", "Austin").
		// Past cohort for months_back=2: [2024-03-15, 2024-04-15).
		Amount(10, 1, datasettest.Date(2024, time.March, 20), 50).
		Amount(11, 2, datasettest.Date(2024, time.April, 1), 70).
		// Recent cohort: on or after 2024-05-15.
		Amount(12, 1, datasettest.Date(2024, time.June, 1), 30).
		Amount(13, 3, datasettest.Date(2024, time.June, 2), 30).
		Order(14, 2, datasettest.Date(2024, time.June, 3), model.OrderStatusCancelled)
}

func TestRetention(t *testing.T) {
	ds := retentionFixture(t).Dataset(t)

	got, err := window.Retention(ds, 2, now)

	require.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-9, "cancelled orders do not retain a customer")
}

func TestRetention_EmptyReferenceMonthIsZero(t *testing.T) {
	ds := retentionFixture(t).Dataset(t)

	got, err := window.Retention(ds, 10, now)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestRetention_RejectsNegativeMonths(t *testing.T) {
	ds := retentionFixture(t).Dataset(t)

	_, err := window.Retention(ds, -1, now)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidParameter))
}
