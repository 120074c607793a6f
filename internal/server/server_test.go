package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippet-activity/internal/config"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/service"
)

var allCaps = []string{model.CapabilityView, model.CapabilityAddSnip, model.CapabilityAddCategory}

type testServer struct {
	*Server
	http     *httptest.Server
	activity int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 8080, BaseURL: "https://lms.example.org/mod/snippet"},
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Auth:      config.AuthConfig{JWTSecret: "server-test-secret-1234", Issuer: "lms-test"},
		Highlight: config.HighlightConfig{Style: "github", CacheSize: 16},
		Log:       config.LogConfig{Level: "error"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	activity, err := s.activities.Create(context.Background(), "Algorithms")
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: s, http: ts, activity: activity.ID}
}

func (ts *testServer) do(t *testing.T, method, path string, user int64, caps []string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.http.URL+path, reader)
	require.NoError(t, err)
	if user != 0 {
		token, err := ts.tokens.Generate(user, caps)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/healthz", 0, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStylesheet(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/highlight.css", 0, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), ".chroma")
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	base := fmt.Sprintf("/api/activities/%d", ts.activity)

	resp := ts.do(t, http.MethodGet, base+"/categories", 0, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, base+"/categories", 7, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "view capability missing")

	resp = ts.do(t, http.MethodPost, base+"/snips", 7, []string{model.CapabilityView},
		map[string]any{"newCategoryName": "x", "name": "y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "addsnip capability missing")

	resp = ts.do(t, http.MethodGet, "/api/activities/9999/categories", 7, allCaps, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unknown activity")
}

func TestSnipLifecycle(t *testing.T) {
	ts := newTestServer(t)
	base := fmt.Sprintf("/api/activities/%d", ts.activity)

	// First snip creates its category.
	resp := ts.do(t, http.MethodPost, base+"/snips", 7, allCaps, map[string]any{
		"newCategoryName": "My First",
		"name":            "hello",
		"description":     map[string]any{"text": "says **hi**", "format": 4},
		"language":        "Go",
		"code":            "package main\n\nfunc main() { println(\"hi\") }",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[struct{ ID int64 }](t, resp)

	resp = ts.do(t, http.MethodGet, base+"/categories/options", 7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	options := decode[[]model.Option](t, resp)
	require.Len(t, options, 1)
	assert.Equal(t, "My First", options[0].Name)
	categoryID := options[0].ID

	resp = ts.do(t, http.MethodPost, base+"/snips", 7, allCaps, map[string]any{
		"categoryId": categoryID,
		"name":       "second",
		"language":   "python",
		"code":       "print('hi')",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Two snips in the category: the single view has navigation.
	resp = ts.do(t, http.MethodGet,
		fmt.Sprintf("/view?id=%d&categoryid=%d&snipid=%d&highlight=1", ts.activity, categoryID, first.ID),
		7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[service.ViewData](t, resp)
	assert.Equal(t, model.LayoutSnipWithNav, view.Layout)
	assert.True(t, view.CanAddSnip)
	require.NotNil(t, view.Snip)
	assert.Contains(t, string(view.Snip.DescriptionHTML), "<strong>hi</strong>")
	assert.Contains(t, string(view.Snip.CodeHTML), "snippet-copy")
	require.Len(t, view.SnipsInCategory, 2)
	for _, s := range view.SnipsInCategory {
		assert.Equal(t, s.ID == first.ID, s.Active)
	}

	// Update.
	resp = ts.do(t, http.MethodPut, fmt.Sprintf("%s/snips/%d", base, first.ID), 7, allCaps, map[string]any{
		"categoryId": categoryID,
		"name":       "renamed",
		"language":   "go",
		"code":       "package main",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("%s/snips/%d", base, first.ID), 7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snip := decode[model.Snip](t, resp)
	assert.Equal(t, "renamed", snip.Name)
	assert.Equal(t, "Go", snip.DisplayLanguage)
	assert.True(t, strings.HasPrefix(snip.URL, "https://lms.example.org/mod/snippet/view?"))

	// Someone else cannot update it.
	resp = ts.do(t, http.MethodPut, fmt.Sprintf("%s/snips/%d", base, first.ID), 8, allCaps, map[string]any{
		"categoryId": categoryID,
		"name":       "stolen",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, base+"/snips/latest?max=1", 7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	latest := decode[[]model.Snip](t, resp)
	require.Len(t, latest, 1)
	assert.Equal(t, "second", latest[0].Name)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("%s/categories/%d/snips", base, categoryID), 7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Snip](t, resp), 2)

	resp = ts.do(t, http.MethodGet, base+"/categories", 7, allCaps, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decode[[]model.Category](t, resp)
	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].Count)
}

func TestCreateCategory(t *testing.T) {
	ts := newTestServer(t)
	base := fmt.Sprintf("/api/activities/%d", ts.activity)

	resp := ts.do(t, http.MethodPost, base+"/categories", 7, allCaps, map[string]any{"name": ""})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, base+"/categories", 7, allCaps, nil)
	categories := decode[[]model.Category](t, resp)
	require.Len(t, categories, 1)
	assert.Equal(t, model.DefaultCategoryName, categories[0].Name)
	assert.True(t, categories[0].HasNoSnip)
}

func TestEmptyView(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/view?id=%d", ts.activity), 7, []string{model.CapabilityView}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[service.ViewData](t, resp)
	assert.Equal(t, model.LayoutNoSnip, view.Layout)
	assert.NotNil(t, view.Snips)
	assert.Empty(t, view.Snips)
	assert.False(t, view.CanAddSnip)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)
	base := fmt.Sprintf("/api/activities/%d", ts.activity)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"both category fields", http.MethodPost, base + "/snips", map[string]any{"categoryId": 1, "newCategoryName": "x", "name": "n"}},
		{"no category", http.MethodPost, base + "/snips", map[string]any{"name": "n"}},
		{"unknown field", http.MethodPost, base + "/categories", map[string]any{"title": "x"}},
		{"bad snip id", http.MethodGet, base + "/snips/abc", nil},
		{"bad max", http.MethodGet, base + "/snips/latest?max=-1", nil},
		{"bad category param", http.MethodGet, fmt.Sprintf("/view?id=%d&categoryid=x", ts.activity), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.method, tt.path, 7, allCaps, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
