package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

// mockServer is a test HTTP server with per-path handlers.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m.handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(path string, h http.HandlerFunc) {
	m.handlers[path] = h
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// runApp runs the CLI with args against an isolated config file and
// returns stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"cardchat-cli", "--config", filepath.Join(t.TempDir(), "cli.yaml")}, args...)
	err := app.Run(full)
	return out.String(), err
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}
