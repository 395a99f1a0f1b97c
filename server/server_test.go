package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/existflow/deadlines/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *store.Store, *clock.Manual) {
	t.Helper()
	c := clock.NewManual(start)
	st := store.New(storage.NewMemory(), store.WithClock(c))
	_, err := st.Load(context.Background())
	require.NoError(t, err)
	return New(st, Options{Clock: c}), st, c
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("GET", "/health", "200")))
}

func TestList_SharedInstant(t *testing.T) {
	s, _, c := newTestServer(t)
	c.Advance(time.Minute)

	w := do(t, s, http.MethodGet, "/api/v1/deadlines", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-02-07T09:01:00.000Z", resp.Now)
	require.Len(t, resp.Deadlines, 4)

	assert.Equal(t, "Maria", resp.Deadlines[0].Name)
	assert.Equal(t, countdown.Warning, resp.Deadlines[0].State.Tier)
	assert.Equal(t, countdown.Critical, resp.Deadlines[1].State.Tier)
	assert.Equal(t, countdown.Safe, resp.Deadlines[2].State.Tier)

	pedro := resp.Deadlines[3]
	assert.True(t, pedro.State.TimeLeft.Overdue)
	assert.True(t, pedro.State.Pulse)
	assert.Zero(t, pedro.State.RemainingPercent)
}

func TestCreate(t *testing.T) {
	s, st, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/deadlines",
		`{"name":" Lucia ","task":"Prepare slides","dueDate":"2026-02-10T11:00:00.000Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got DeadlineView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "1770454800000", got.ID)
	assert.Equal(t, "Lucia", got.Name)
	assert.Equal(t, "2026-02-07T09:00:00.000Z", got.CreatedAt)
	assert.Equal(t, countdown.Safe, got.State.Tier)
	assert.Len(t, st.List(), 5)
}

func TestCreate_Invalid(t *testing.T) {
	s, st, _ := newTestServer(t)

	for _, body := range []string{
		`{"name":"","task":"Slides","dueDate":"2026-02-10T11:00:00Z"}`,
		`{"name":"Lucia","task":"  ","dueDate":"2026-02-10T11:00:00Z"}`,
		`{"name":"Lucia","task":"Slides","dueDate":"next week"}`,
		`{"name":"Lucia","task":"Slides"}`,
		`not json`,
	} {
		w := do(t, s, http.MethodPost, "/api/v1/deadlines", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Len(t, st.List(), 4)
}

func TestGetUpdateDelete(t *testing.T) {
	s, st, _ := newTestServer(t)
	before, _ := st.Get("2")

	w := do(t, s, http.MethodGet, "/api/v1/deadlines/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Carlos"`)

	w = do(t, s, http.MethodPut, "/api/v1/deadlines/2", `{"task":"Review and merge"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after, _ := st.Get("2")
	assert.Equal(t, "Review and merge", after.Task)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.DueDate, after.DueDate)

	w = do(t, s, http.MethodPut, "/api/v1/deadlines/2", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/v1/deadlines/2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, st.List(), 3)
}

func TestUnknownID(t *testing.T) {
	s, st, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/deadlines/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/api/v1/deadlines/nope", `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/deadlines/nope", "").Code)
	assert.Len(t, st.List(), 4)
}

func TestMetrics_TiersAtScrapeTime(t *testing.T) {
	s, _, c := newTestServer(t)

	body := do(t, s, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `deadlines_tracked{tier="safe"} 1`)
	assert.Contains(t, body, `deadlines_tracked{tier="warning"} 1`)
	assert.Contains(t, body, `deadlines_tracked{tier="critical"} 2`)

	// Maria's week has passed
	c.Advance(3 * 24 * time.Hour)
	body = do(t, s, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `deadlines_tracked{tier="safe"} 0`)
	assert.Contains(t, body, `deadlines_tracked{tier="critical"} 4`)
	assert.Contains(t, body, `deadlines_http_requests_total{method="GET",route="/metrics",status="200"} 1`)
}
