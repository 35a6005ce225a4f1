package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Route labels must use the registered pattern so every inquiry gets the same
// series; unmatched paths fall back to the raw URL.
func TestMetrics_CountsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/inquiries/:id", func(c *gin.Context) { c.String(http.StatusOK, `{"success":true}`) })
	r.POST("/inquiries/:id/submit", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseGet := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/inquiries/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	for _, id := range []string{"inq-1", "inq-2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/inquiries/"+id, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET /inquiries/%s -> %d", id, w.Code)
		}
	}

	// Bodyless response: exercises the size < 0 branch of the size histogram.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/inquiries/inq-1/submit", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST submit -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}

	// Both inquiry IDs land on the one pattern series.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/inquiries/:id", "200")); got != baseGet+2 {
		t.Fatalf("pattern counter = %v, want %v", got, baseGet+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404")); got != base404+1 {
		t.Fatalf("fallback counter = %v, want %v", got, base404+1)
	}
	if inflight := testutil.ToFloat64(httpInflight); inflight != 0 {
		t.Fatalf("inflight gauge = %v after requests drained", inflight)
	}
}
