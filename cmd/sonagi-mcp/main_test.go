package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithIO_ForwardsWithToken(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "notifications/") {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}` + "\n"))
	}))
	defer srv.Close()

	p := &StdioProxy{serverURL: srv.URL, token: "tok"}
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, p.RunWithIO(in, &out))
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", out.String())
	assert.Equal(t, []string{"Bearer tok", "Bearer tok"}, gotAuth)
}

func TestRunWithIO_ServerErrorBecomesJSONRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := &StdioProxy{serverURL: srv.URL}
	var out bytes.Buffer
	require.NoError(t, p.RunWithIO(strings.NewReader(`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`+"\n"), &out))

	var resp struct {
		ID    string `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, -32000, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "401")
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, json.RawMessage("7"), extractID([]byte(`{"id":7}`)))
	assert.Equal(t, json.RawMessage("null"), extractID([]byte(`not json`)))
	assert.Equal(t, json.RawMessage("null"), extractID([]byte(`{"method":"x"}`)))
}
