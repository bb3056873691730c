package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/contractsync/internal/domain/contract"
)

func TestCollector_Observe(t *testing.T) {
	c := NewCollector()

	c.ObservePage(100, 97, 1)
	c.ObservePage(3, 3, 0)
	c.ObserveFailure(contract.StageAuth)
	c.ObserveFailure(contract.StageAuth)
	c.ObserveFailure(contract.StageWrite)

	retrieved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.ObserveWrite(100, retrieved)
	c.ObserveRun(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.pagesFetched))
	assert.Equal(t, 103.0, testutil.ToFloat64(c.recordsFetched))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.recordsAdmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsRejected))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.rowsWritten))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.failures.WithLabelValues(string(contract.StageAuth))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues(string(contract.StageWrite))))
	assert.Equal(t, float64(retrieved.Unix()), testutil.ToFloat64(c.lastRetrieved))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.runDuration))
}

func TestCollector_PrivateRegistry(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.ObservePage(1, 1, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.pagesFetched))
	assert.Zero(t, testutil.ToFloat64(b.pagesFetched))

	n, err := testutil.GatherAndCount(a.Registry(), "contractsync_pages_fetched_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_PushDisabled(t *testing.T) {
	assert.NoError(t, NewCollector().Push(context.Background(), ""))
}

func TestCollector_Push(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewCollector()
	c.ObserveWrite(3, time.Now())

	require.NoError(t, c.Push(context.Background(), srv.URL))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasSuffix(gotPath, "/metrics/job/contractsync"), gotPath)
}

func TestCollector_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewCollector().Push(context.Background(), srv.URL)
	assert.Error(t, err)
}
