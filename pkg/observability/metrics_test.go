package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorObservations(t *testing.T) {
	c := NewCollector("flowy")

	c.ObserveStore("HSET", nil, time.Millisecond)
	c.ObserveStore("HSET", errors.New("boom"), time.Millisecond)
	c.ObserveCommand("UpsertNodeCommand", nil)
	c.ObserveQuery("GetNodeQuery", nil)
	c.ObserveHTTP("GET", "/{id}", "200", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("HSET", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("HSET", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("UpsertNodeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetNodeQuery", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/{id}", "200")))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("flowy")
	b := NewCollector("flowy")

	a.ObserveCommand("DeleteNodeCommand", nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Commands.WithLabelValues("DeleteNodeCommand", "success")))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector("flowy")
	c.ObserveStore("DEL", nil, time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flowy_store_operations_total")
}
