package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/libertalk/internal/server/services"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	media   *media.LocalStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SecretKey:               "test-secret",
		SessionValidityDuration: time.Hour,
		MaxVoiceDuration:        30 * time.Second,
	}
	logger := logging.NewNopLogger()
	repos := repomanager.NewDocumentRepositoryManager(storage.NewMemoryStore(), repomanager.RetryPolicy{Retries: 1, Base: time.Millisecond})
	gate := services.NewAccessGate()
	us := services.NewUserService(repos, gate, cfg, logger)
	rs := services.NewRoomService(repos, us, gate, cfg, logger)

	ms, err := media.NewLocalStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	srv := NewHTTPServer(":0", logger, us, rs, ms, 1<<20)
	return &testServer{t: t, handler: srv.Handler(), media: ms}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

type formFile struct {
	field, name string
	data        []byte
}

func (ts *testServer) doMultipart(path, token string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(ts.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(ts.t, err)
		_, err = fw.Write(f.data)
		require.NoError(ts.t, err)
	}
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// login registers username and returns a fresh session token.
func (ts *testServer) login(username string) string {
	ts.t.Helper()

	creds := map[string]string{"username": username, "password": "pw-" + username}
	w := ts.do(http.MethodPost, "/api/register", "", creds)
	require.Contains(ts.t, []int{http.StatusCreated, http.StatusConflict}, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/api/login", "", creds)
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(ts.t, w, &out)
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
