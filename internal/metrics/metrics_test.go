package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	okBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200"))
	teapotBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "418"))

	for _, path := range []string{"/test", "/teapot"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200")) - okBefore; val != 1 {
		t.Errorf("Expected one GET 200, got %f", val)
	}
	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "418")) - teapotBefore; val != 1 {
		t.Errorf("Expected one GET 418, got %f", val)
	}
	if val := testutil.CollectAndCount(httpRequestDurationSeconds); val <= 0 {
		t.Errorf("Expected httpRequestDurationSeconds to be observed, got %d", val)
	}
}

func TestObserveFetch(t *testing.T) {
	okBefore := testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("test", OutcomeSuccess))
	errBefore := testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("test", OutcomeError))

	ObserveFetch("test", nil, 10*time.Millisecond)
	ObserveFetch("test", errors.New("boom"), time.Millisecond)
	ObserveFetch("test", errors.New("boom"), time.Millisecond)

	if val := testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("test", OutcomeSuccess)) - okBefore; val != 1 {
		t.Errorf("Expected one successful fetch, got %f", val)
	}
	if val := testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("test", OutcomeError)) - errBefore; val != 2 {
		t.Errorf("Expected two failed fetches, got %f", val)
	}
}

func TestObservePage(t *testing.T) {
	ObservePage("results", 3)
	if val := testutil.CollectAndCount(pageResults); val <= 0 {
		t.Errorf("Expected pageResults to be observed, got %d", val)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveFetch("handler", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "workerlist_upstream_fetch_total") {
		t.Errorf("expected fetch counter in exposition, got %q", body)
	}
}
