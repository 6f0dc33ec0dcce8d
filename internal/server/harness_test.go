package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/app"
	"github.com/purunsolnp/sonagi-stock/internal/catalog"
	"github.com/purunsolnp/sonagi-stock/internal/clients/fake"
	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/storage/memory"
)

type testHarness struct {
	app     *app.App
	ai      *fake.Client
	handler http.Handler
}

func newHarness(t *testing.T, quotaLimit int) *testHarness {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "memory"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Quota.DefaultLimit = quotaLimit
	cfg.Clients.Gemini.Timeout = "5s"

	logger := common.NewSilentLogger()
	ai := fake.New()
	a := app.New(cfg, logger, memory.NewManager(logger), catalog.Default(), ai)
	t.Cleanup(a.Close)

	return &testHarness{app: a, ai: ai, handler: NewServer(a).Handler()}
}

func (h *testHarness) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns a bearer token for it.
func (h *testHarness) register(t *testing.T, email string) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/users", map[string]string{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
