package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/config"
	"fantasygw/internal/infra/httpapi"
)

func fakeSleeper(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/league/L1":
			_, _ = w.Write([]byte(`{"league_id":"L1","name":"Sunday Club","season":"2025","status":"in_season","total_rosters":10}`))
		case "/v1/players/nfl":
			_, _ = w.Write([]byte(`{"4046":{"player_id":"4046","full_name":"Patrick Mahomes","position":"QB","team":"KC","active":true}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	body := fmt.Sprintf(`
upstream:
  baseURL: %s/v1
cache:
  backend: memory
server:
  listenAddress: 127.0.0.1:0
`, baseURL)
	path := filepath.Join(t.TempDir(), "fantasygw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestExec_WritesEnvelope(t *testing.T) {
	upstream := fakeSleeper(t)
	var out bytes.Buffer

	err := New(zap.NewNop()).Exec(context.Background(), ExecConfig{
		ConfigPath: writeConfig(t, upstream.URL),
		Request: domain.ToolRequest{
			Tool:   "get_league_info",
			Params: domain.ToolParams{Sport: "football", LeagueID: "L1"},
		},
		Out: &out,
	})
	require.NoError(t, err)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Name  string `json:"name"`
			Sport string `json:"sport"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Sunday Club", resp.Data.Name)
	require.Equal(t, "football", resp.Data.Sport)
}

func TestExec_FailedEnvelopeIsError(t *testing.T) {
	upstream := fakeSleeper(t)
	var out bytes.Buffer

	err := New(nil).Exec(context.Background(), ExecConfig{
		ConfigPath: writeConfig(t, upstream.URL),
		Request: domain.ToolRequest{
			Tool:   "get_league_info",
			Params: domain.ToolParams{Sport: "football", LeagueID: "missing"},
		},
		Out: &out,
	})
	require.ErrorContains(t, err, "SLEEPER_NOT_FOUND")
	require.Contains(t, out.String(), `"success": false`)
}

func TestInitializeGateway_ServesExecuteAndMCP(t *testing.T) {
	upstream := fakeSleeper(t)
	cfg, err := config.NewLoader(nil).Load(context.Background(), writeConfig(t, upstream.URL))
	require.NoError(t, err)

	gateway, cleanup, err := InitializeGateway(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, httpapi.ExecutePath,
		strings.NewReader(`{"tool":"search_players","params":{"sport":"football","query":"mahomes"}}`))
	req.Header.Set("Content-Type", "application/json")
	gateway.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Patrick Mahomes")

	rec = httptest.NewRecorder()
	gateway.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, httpapi.MetricsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "fantasygw_tool_duration_seconds")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, domain.DefaultMCPPath, strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	gateway.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), domain.ServiceName)
}

func TestValidateConfig_PrintsWithoutSecrets(t *testing.T) {
	t.Setenv("FANTASYGW_UPSTREAM_AUTHHEADER", "X-Api-Key")
	t.Setenv("FANTASYGW_UPSTREAM_AUTHTOKEN", "top-secret")
	var out bytes.Buffer

	err := New(nil).ValidateConfig(context.Background(), ValidateConfig{Print: true, Out: &out})
	require.NoError(t, err)
	require.Contains(t, out.String(), "listenAddress:")
	require.Contains(t, out.String(), "0.0.0.0:8787")
	require.Contains(t, out.String(), "authHeader: X-Api-Key")
	require.NotContains(t, out.String(), "top-secret")
}

func TestValidateConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("FANTASYGW_CACHE_BACKEND", "redis")
	err := New(nil).ValidateConfig(context.Background(), ValidateConfig{})
	require.ErrorContains(t, err, "cache.backend")
}

func TestNewLogger_Levels(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}
