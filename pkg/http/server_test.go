package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetricsEndpointServedByDefault(t *testing.T) {
	s := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpointCanBeDisabled(t *testing.T) {
	s := NewServer(nil, WithMetrics(false, ""))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when disabled", rec.Code)
	}
}

func TestMetricsEndpointCustomPath(t *testing.T) {
	s := NewServer(nil, WithMetrics(true, "/internal/prom"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/prom", nil)
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on custom path", rec.Code)
	}
}
