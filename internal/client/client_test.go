package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok", "version": "v1", "db": true, "db_path": "/tmp/x.db", "active_items": 3,
		})
	}))
	defer ts.Close()

	t.Setenv(EnvURL, "")
	c := New(ts.URL)
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Version != "v1" || h.ActiveItems != 3 || !h.DB {
		t.Errorf("health = %+v", h)
	}
	if !c.Healthy(context.Background()) {
		t.Error("Healthy = false")
	}
}

func TestHealthyUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	t.Setenv(EnvURL, "")
	if New(url).Healthy(context.Background()) {
		t.Error("closed server reported healthy")
	}
}

func TestPostErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"full"}`))
	}))
	defer ts.Close()

	t.Setenv(EnvURL, "")
	data, err := New(ts.URL).Post(context.Background(), "/api/items", []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(string(data), "full") {
		t.Errorf("body = %s", data)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvURL, "http://example.invalid:1")
	if got := New("http://127.0.0.1:2").URL(); got != "http://example.invalid:1" {
		t.Errorf("URL = %q", got)
	}
}
