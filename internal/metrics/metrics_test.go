package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	assert.Equal(t, 2.0, after-before)
}

func TestObserveScan(t *testing.T) {
	before := testutil.ToFloat64(scans.WithLabelValues(ScanNoCredits))
	ObserveScan(ScanNoCredits, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(scans.WithLabelValues(ScanNoCredits))-before)
}

func TestAddCreditResets(t *testing.T) {
	before := testutil.ToFloat64(creditResets)
	AddCreditResets(0)
	AddCreditResets(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(creditResets)-before)
}
