package router

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(t *testing.T, root *cobra.Command, path ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(path)
	require.NoError(t, err)
	require.Equal(t, path[len(path)-1], cmd.Name())
	return cmd
}

func TestNewRootCommand_RegistersEveryCommand(t *testing.T) {
	root, _ := NewRootCommand(&bytes.Buffer{})

	for _, name := range []string{
		"dashboard", "clv", "daily", "retention", "segments", "trends",
		"anomalies", "abc", "products", "top-customers", "sales", "orders",
		"reorder", "slow-movers", "quality", "migrate", "status", "worker",
	} {
		cmd := find(t, root, name)
		assert.NotEmpty(t, cmd.Short, name)
	}

	find(t, root, "enqueue", "daily")
	find(t, root, "snapshot", "seed")
	find(t, root, "snapshot", "export")
	find(t, root, "email", "preview")
}

func TestNeeds(t *testing.T) {
	root, _ := NewRootCommand(&bytes.Buffer{})

	assert.Equal(t, map[string]bool{needsSnapshot: true}, needs(find(t, root, "abc")))
	assert.Equal(t, map[string]bool{needsSnapshot: true, needsRedis: true}, needs(find(t, root, "worker")))
	assert.Equal(t, map[string]bool{needsRedis: true}, needs(find(t, root, "enqueue", "daily")))
	assert.Empty(t, needs(find(t, root, "enqueue")))
}

func TestReportFlagDefaults(t *testing.T) {
	root, _ := NewRootCommand(&bytes.Buffer{})

	assert.Equal(t, "last_30_days", find(t, root, "dashboard").Flag("range").DefValue)
	assert.Equal(t, "6", find(t, root, "retention").Flag("months-back").DefValue)
	assert.Equal(t, "90", find(t, root, "slow-movers").Flag("days").DefValue)
	assert.Equal(t, "10", find(t, root, "top-customers").Flag("limit").DefValue)
	assert.Equal(t, "summary", find(t, root, "sales").Flag("type").DefValue)
}

func TestDateBinder(t *testing.T) {
	b := &dateBinder{loc: time.UTC}
	var start, end, empty time.Time

	b.parse("start_date", "2024-06-01", &start)
	b.parse("end_date", "06/30/2024", &end)
	b.parse("date", "", &empty)

	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.IsZero())
	assert.True(t, empty.IsZero())

	err := b.err()
	require.True(t, errors.Is(err, errs.ErrInvalidParameter))
	assert.Equal(t, []errs.FieldError{{Field: "end_date", Error: "must be a date in YYYY-MM-DD format"}}, err.(*errs.Error).Errors)
}

func TestExecute_HelpNeedsNoConfig(t *testing.T) {
	var out bytes.Buffer

	err := Execute(t.Context(), &out, []string{"--help"})

	assert.NoError(t, err)
}
