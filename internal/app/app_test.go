package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanioooook/TodoApp/internal/config"
	"github.com/sanioooook/TodoApp/internal/identity"
	"github.com/sanioooook/TodoApp/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		App:   config.AppConfig{Env: "test", Version: "1.2.3"},
		HTTP:  config.HTTPConfig{CORSOrigins: []string{"*"}},
		Store: config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"},
	}
	a, err := New(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, method, path string, header map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestApp_ServiceEndpoints(t *testing.T) {
	a := newTestApp(t)

	w := serve(a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"env":"test"}`, w.Body.String())

	w = serve(a, http.MethodGet, "/version", nil, "")
	assert.JSONEq(t, `{"version":"1.2.3"}`, w.Body.String())
}

func TestApp_ListRoutesNeedCaller(t *testing.T) {
	a := newTestApp(t)

	w := serve(a, http.MethodGet, "/api/v1/lists", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(a, http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_EndToEnd(t *testing.T) {
	a := newTestApp(t)

	w := serve(a, http.MethodPost, "/api/v1/users", nil, `{"email":"ann@example.com","full_name":"Ann"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	caller := map[string]string{identity.Header: user.ID.String()}

	w = serve(a, http.MethodPost, "/api/v1/lists", caller, `{"title":"Weekend"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(a, http.MethodGet, "/api/v1/lists", caller, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Take int `json:"take"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Weekend", page.Items[0].Title)
	assert.Equal(t, 20, page.Take)
}

func TestApp_CloseReleasesStore(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.Close())

	w := serve(a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
