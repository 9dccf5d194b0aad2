package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	router := chi.NewRouter()
	router.Use(collector.Middleware)
	router.Get("/{listingID}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/7/", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() != "adboard_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["code"] == "200" && labels["method"] == "GET" && labels["route"] == "/{listingID}/" {
				found = true
				if metric.GetCounter().GetValue() != 1 {
					t.Errorf("counter = %v, want 1", metric.GetCounter().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("request counter with route label not found")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	router := chi.NewRouter()
	router.Use(collector.Middleware)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	w := httptest.NewRecorder()
	Handler(registry).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), "adboard_http_requests_total") {
		t.Error("exposition missing request counter")
	}
}
