package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/database"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/storage"
)

var serverMemDBCounter int

func newTestServer(t *testing.T) (*httptest.Server, config.Snapshot) {
	t.Helper()
	serverMemDBCounter++
	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", serverMemDBCounter),
		Name: "results",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := storage.NewRunRepository(db, zerolog.Nop())
	require.NoError(t, err)

	snap := config.Default()
	snap.Simulation.NHouseholds = 200
	snap.Simulation.NReplications = 2

	srv := New(Config{
		Log:       zerolog.Nop(),
		Snapshot:  snap,
		Repo:      repo,
		ResultsDB: db,
		Port:      0,
		DevMode:   true,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, snap
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestServer_HealthAndStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var health map[string]string
	decodeBody(t, resp, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	resp, err = http.Get(ts.URL + "/api/system/status")
	require.NoError(t, err)
	var status systemStatus
	decodeBody(t, resp, &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "results", status.ResultsDB.Name)
	assert.Equal(t, "ok", status.ResultsDB.HealthStatus)
	assert.Zero(t, status.ResultsDB.StoredRuns)
}

func TestServer_LatestBeforeAnyRunIs404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs/latest/decision")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_TriggerRunAndReadBack(t *testing.T) {
	ts, snap := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	var created struct {
		RunID     string `json:"run_id"`
		ElapsedMS int64  `json:"elapsed_ms"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.RunID)

	resp, err = http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	var runs []storage.RunMeta
	decodeBody(t, resp, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, created.RunID, runs[0].ID)
	assert.NotEmpty(t, runs[0].RecommendedStrategy)

	resp, err = http.Get(ts.URL + "/api/runs/latest/decision")
	require.NoError(t, err)
	var decisions []domain.DecisionRecord
	decodeBody(t, resp, &decisions)
	require.Len(t, decisions, len(snap.Strategies))
	assert.Equal(t, 1, decisions[0].Rank)

	resp, err = http.Get(ts.URL + "/api/runs/" + created.RunID + "/plan")
	require.NoError(t, err)
	var plan []domain.CityRecommendation
	decodeBody(t, resp, &plan)
	assert.Len(t, plan, len(snap.Cities))

	resp, err = http.Get(ts.URL + "/api/runs/latest/summary")
	require.NoError(t, err)
	var summaries []domain.ScenarioStrategySummary
	decodeBody(t, resp, &summaries)
	assert.Len(t, summaries, len(snap.Scenarios)*len(snap.Strategies))
}

func TestServer_ReportIsMarkdown(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/runs/latest/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Costco Germany 2026")
	assert.Contains(t, string(body), "## Decision Matrix")
}

func TestServer_UnknownRunIs404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/runs/no-such-run/valuation")
	require.NoError(t, err)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "no-such-run")
}

func TestServer_ListRunsRejectsBadLimit(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs?limit=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_AssumptionsEndpointReturnsSnapshot(t *testing.T) {
	ts, snap := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/system/assumptions")
	require.NoError(t, err)
	var got config.Snapshot
	decodeBody(t, resp, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, snap.Simulation.NHouseholds, got.Simulation.NHouseholds)
	assert.Len(t, got.Strategies, len(snap.Strategies))
}
