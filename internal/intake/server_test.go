package intake

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triageworks/sentinel/internal/classify"
	"github.com/triageworks/sentinel/pkg/cerr"
)

func newToggleServer(t *testing.T) (*httptest.Server, *Watcher) {
	t.Helper()
	f := newFixture(t, &stubClassifier{proposal: &classify.Proposal{Summary: "s"}})
	w := NewWatcher(f.env, f.pipeline)
	t.Cleanup(w.Stop)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	NewServer(context.Background(), w).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, w
}

func TestWatcherToggle(t *testing.T) {
	srv, w := newToggleServer(t)

	resp, err := http.Post(srv.URL+"/watcher", "application/json", strings.NewReader(`{"running": true}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, w.Running())

	resp, err = http.Post(srv.URL+"/watcher", "application/json", strings.NewReader(`{"running": false}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, w.Running())
}

func TestWatcherStatusEndpoint(t *testing.T) {
	srv, w := newToggleServer(t)

	resp, err := http.Get(srv.URL + "/watcher")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, w.Running())
}

func TestWatcherToggleInvalidBody(t *testing.T) {
	srv, _ := newToggleServer(t)

	resp, err := http.Post(srv.URL+"/watcher", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
