package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	rows     []sportsdata.StatRow
	players  []roster.Player
	err      error
	panicked bool
}

func (s *stubProvider) Season() string { return "2025REG" }

func (s *stubProvider) SeasonStats(ctx context.Context) ([]sportsdata.StatRow, error) {
	return s.rows, s.err
}

func (s *stubProvider) Roster(ctx context.Context) ([]roster.Player, error) {
	if s.panicked {
		panic("boom")
	}
	return s.players, s.err
}

func newTestServer(p RosterProvider) http.Handler {
	status := func() map[string]interface{} {
		return map[string]interface{}{"enrichment": "enabled"}
	}
	h := NewHandler(p, status, logging.Discard())
	return NewServer("0", h, []string{"http://localhost:3000"}, logging.Discard()).Handler()
}

func serve(t *testing.T, handler http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	rec := serve(t, newTestServer(&stubProvider{}), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend is running", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHealthCheck(t *testing.T) {
	rec := serve(t, newTestServer(&stubProvider{}), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "gridiron", body["service"])
	assert.Equal(t, "2025REG", body["season"])
	assert.Equal(t, "enabled", body["enrichment"])
}

func TestGetPlayers(t *testing.T) {
	provider := &stubProvider{players: []roster.Player{
		{PlayerID: "42", FirstName: "Joe", LastName: "Smith", PhotoURL: "p.png"},
	}}

	rec := serve(t, newTestServer(provider), http.MethodGet, "/api/players", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"PlayerID":42,"FirstName":"Joe","LastName":"Smith","Team":"","Position":"","Status":"","Jersey":"","BirthDate":"","photoUrl":"p.png"}]`, rec.Body.String())
}

func TestGetSeasonStats(t *testing.T) {
	provider := &stubProvider{rows: []sportsdata.StatRow{{"PlayerID": json.Number("7"), "Name": "A B"}}}

	rec := serve(t, newTestServer(provider), http.MethodGet, "/api/player-season-stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"PlayerID":7,"Name":"A B"}]`, rec.Body.String())
}

func TestUpstreamFailureIsGeneric(t *testing.T) {
	provider := &stubProvider{err: &sportsdata.StatsFetchError{
		Season:     "2025REG",
		StatusCode: 401,
		Err:        errors.New("invalid subscription key abc123"),
	}}
	handler := newTestServer(provider)

	rec := serve(t, handler, http.MethodGet, "/api/players", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch players"}`, rec.Body.String())

	rec = serve(t, handler, http.MethodGet, "/api/player-season-stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch season stats"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "abc123")
}

func TestRecoveryMiddleware(t *testing.T) {
	rec := serve(t, newTestServer(&stubProvider{panicked: true}), http.MethodGet, "/api/players", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	handler := newTestServer(&stubProvider{})

	rec := serve(t, handler, http.MethodGet, "/health", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, handler, http.MethodGet, "/health", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, handler, http.MethodOptions, "/api/players", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestIDPropagated(t *testing.T) {
	rec := serve(t, newTestServer(&stubProvider{}), http.MethodGet, "/health", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
}
