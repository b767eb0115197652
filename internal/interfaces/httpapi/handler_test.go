package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/pubsub"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJobToken  = "job-secret"
	managerToken  = "manager-token"
	moderatorTok  = "moderator-token"
	viewerToken   = "viewer-token"
	seedHomeTeam  = "idn-persija"
	seedAwayTeam  = "idn-persib"
	seedHomeStar  = "idn-fwd-01"
	testMatchPath = "/v1/matches/" + memory.SeedMatchID
)

type stubVerifier map[string]user.Principal

func (v stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type apiFixture struct {
	router http.Handler
	hub    *pubsub.Hub
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := logging.NewNop()
	hub := pubsub.NewHub(16, logger)
	t.Cleanup(hub.Close)

	matches := memory.NewMatchRepository(memory.SeedMatches()...)
	events := memory.NewEventRepository()
	lineups := memory.NewLineupRepository()
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	teams := memory.NewTeamRepository(memory.SeedTeams())
	locks := usecase.NewMatchLocks()

	scores := usecase.NewScoreService(matches, events, hub, locks, logger)
	clock := usecase.NewClockService(matches, events, teams, hub, locks, nil, logger)
	eventsSvc := usecase.NewEventService(matches, events, players, scores, hub, locks, nil, logger)
	lineupSvc := usecase.NewLineupService(matches, lineups, players, hub, locks, nil, logger)
	snapshot := usecase.NewSnapshotService(clock, eventsSvc, lineupSvc)

	handler := NewHandler(clock, eventsSvc, lineupSvc, snapshot, scores, hub, logger)
	verifier := stubVerifier{
		managerToken: user.NewPrincipal("u-manager", "Match Desk", user.CapabilityManageMatch),
		moderatorTok: user.NewPrincipal("u-mod", "Moderator", user.CapabilityModerate),
		viewerToken:  user.NewPrincipal("u-viewer", "Viewer"),
	}

	return &apiFixture{
		router: NewRouter(handler, verifier, logger, []string{"*"}, testJobToken, 0),
		hub:    hub,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec.Code, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", envelope)
	return data
}

func errorStatusOf(envelope map[string]any) string {
	errObj, _ := envelope["error"].(map[string]any)
	status, _ := errObj["status"].(string)
	return status
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	code, body := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", dataOf(t, body)["status"])
}

func TestCreateMatch_RequiresManageCapability(t *testing.T) {
	f := newAPIFixture(t)
	payload := `{"home_team_id":"idn-persebaya","away_team_id":"idn-baliutd"}`

	code, body := f.do(t, http.MethodPost, "/v1/matches", "", payload)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", errorStatusOf(body))

	code, body = f.do(t, http.MethodPost, "/v1/matches", viewerToken, payload)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PERMISSION_DENIED", errorStatusOf(body))

	code, body = f.do(t, http.MethodPost, "/v1/matches", managerToken, payload)
	require.Equal(t, http.StatusCreated, code)
	data := dataOf(t, body)
	assert.Equal(t, "NOT_STARTED", data["status"])
	assert.NotEmpty(t, data["id"])
}

func TestCreateMatch_RejectsUnknownFieldsAndSameTeams(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodPost, "/v1/matches", managerToken, `{"home_team_id":"idn-persija","away_team_id":"idn-persib","venue":"GBK"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ARGUMENT", errorStatusOf(body))

	code, _ = f.do(t, http.MethodPost, "/v1/matches", managerToken, `{"home_team_id":"idn-persija","away_team_id":"idn-persija"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestClock_InvalidTransitionIsConflict(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodPost, testMatchPath+"/clock/halftime", managerToken, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "FAILED_PRECONDITION", errorStatusOf(body))

	code, _ = f.do(t, http.MethodPost, testMatchPath+"/clock/first-half", managerToken, `{"half_duration_minutes":90}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMatchFlow_GoalListAndModeration(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodPost, testMatchPath+"/clock/first-half", managerToken, `{"half_duration_minutes":45}`)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	started := dataOf(t, body)
	assert.Equal(t, "FIRST_HALF", started["status"])
	clock, _ := started["clock"].(map[string]any)
	assert.Equal(t, "1H", clock["period"])

	code, body = f.do(t, http.MethodPost, testMatchPath+"/goals", managerToken,
		`{"team_id":"`+seedHomeTeam+`","player_ref":"`+seedHomeStar+`","minute":12,"caption":"Header from a corner"}`)
	require.Equal(t, http.StatusCreated, code, "body: %v", body)
	goal := dataOf(t, body)
	goalEvent, _ := goal["event"].(map[string]any)
	goalMatch, _ := goal["match"].(map[string]any)
	assert.Equal(t, "GOAL", goalEvent["type"])
	assert.Equal(t, "Gustavo Almeida", goalEvent["player_display_name"])
	assert.EqualValues(t, 1, goalMatch["home_score"])

	code, body = f.do(t, http.MethodPost, testMatchPath+"/messages", viewerToken, `{"body":"  what a header  "}`)
	require.Equal(t, http.StatusCreated, code, "body: %v", body)
	assert.Equal(t, "what a header", dataOf(t, body)["body"])

	code, body = f.do(t, http.MethodGet, testMatchPath+"/events?page_size=2", "", "")
	require.Equal(t, http.StatusOK, code)
	page := dataOf(t, body)
	items, _ := page["items"].([]any)
	require.Len(t, items, 2)
	assert.NotEmpty(t, page["next_cursor"], "full page should carry a cursor")

	goalID, _ := goalEvent["id"].(string)
	code, body = f.do(t, http.MethodDelete, "/v1/events/"+goalID, viewerToken, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PERMISSION_DENIED", errorStatusOf(body))

	code, body = f.do(t, http.MethodDelete, "/v1/events/"+goalID, moderatorTok, "")
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	deleted := dataOf(t, body)
	deletedEvent, _ := deleted["event"].(map[string]any)
	deletedMatch, _ := deleted["match"].(map[string]any)
	assert.Equal(t, true, deletedEvent["is_deleted"])
	assert.EqualValues(t, 0, deletedMatch["home_score"])

	code, body = f.do(t, http.MethodGet, testMatchPath, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, dataOf(t, body)["home_score"])
}

func TestAppendGoal_RequiresExactlyOnePlayerIdentity(t *testing.T) {
	f := newAPIFixture(t)
	code, _ := f.do(t, http.MethodPost, testMatchPath+"/clock/first-half", managerToken, `{"half_duration_minutes":45}`)
	require.Equal(t, http.StatusOK, code)

	code, body := f.do(t, http.MethodPost, testMatchPath+"/goals", managerToken,
		`{"team_id":"`+seedHomeTeam+`","player_ref":"`+seedHomeStar+`","player_name":"Someone Else"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ARGUMENT", errorStatusOf(body))

	code, _ = f.do(t, http.MethodPost, testMatchPath+"/goals", managerToken, `{"team_id":"`+seedHomeTeam+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListEvents_UnknownMatchAndBadPageSize(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodGet, "/v1/matches/missing/events", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", errorStatusOf(body))

	code, _ = f.do(t, http.MethodGet, testMatchPath+"/events?page_size=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLineup_SetAndGet(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodGet, "/v1/formations", "", "")
	require.Equal(t, http.StatusOK, code)
	formations, _ := body["data"].([]any)
	assert.NotEmpty(t, formations)

	code, body = f.do(t, http.MethodGet, testMatchPath+"/lineups/"+seedAwayTeam, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, dataOf(t, body)["is_set"])

	code, body = f.do(t, http.MethodPut, testMatchPath+"/lineups/"+seedHomeTeam, managerToken,
		`{"formation_name":"4-3-3","positions":[{"position_code":"GK","player_ref":"idn-gk-01"},{"position_code":"ST","player_ref":"`+seedHomeStar+`","display_name":"Gustavo"}]}`)
	require.Equal(t, http.StatusOK, code, "body: %v", body)

	code, body = f.do(t, http.MethodGet, testMatchPath+"/lineups/"+seedHomeTeam, "", "")
	require.Equal(t, http.StatusOK, code)
	view := dataOf(t, body)
	assert.Equal(t, true, view["is_set"])
	assert.Equal(t, "4-3-3", view["formation_name"])
	positions, _ := view["positions"].([]any)
	assert.Len(t, positions, 2)
	assert.EqualValues(t, 1, view["version"])

	code, _ = f.do(t, http.MethodPut, testMatchPath+"/lineups/idn-baliutd", managerToken, `{"formation_name":"4-3-3","positions":[]}`)
	assert.Equal(t, http.StatusBadRequest, code, "team outside the match")

	code, _ = f.do(t, http.MethodGet, testMatchPath+"/lineups/idn-baliutd", "", "")
	assert.Equal(t, http.StatusBadRequest, code, "read for team outside the match")

	code, _ = f.do(t, http.MethodGet, "/v1/matches/missing/lineups/"+seedHomeTeam, "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReconcileJob_RequiresInternalToken(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile-scores", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile-scores", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var envelope map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.EqualValues(t, 0, dataOf(t, envelope)["failed_count"])
}

func TestReconcileJob_ScopedToMatch(t *testing.T) {
	f := newAPIFixture(t)

	post := func(body string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile-scores", strings.NewReader(body))
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		var envelope map[string]any
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
		return rec.Code, envelope
	}

	code, envelope := post(`{"match_id":"` + memory.SeedMatchID + `"}`)
	require.Equal(t, http.StatusOK, code)
	data := dataOf(t, envelope)
	assert.EqualValues(t, 1, data["match_count"])
	assert.Equal(t, []any{}, data["updated_ids"])

	code, _ = post(`{"match_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = post(`{"match_id":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetSnapshot(t *testing.T) {
	f := newAPIFixture(t)

	code, body := f.do(t, http.MethodGet, testMatchPath+"/snapshot", "", "")
	require.Equal(t, http.StatusOK, code)
	snap := dataOf(t, body)
	m, _ := snap["match"].(map[string]any)
	assert.Equal(t, memory.SeedMatchID, m["id"])
	home, _ := snap["home_lineup"].(map[string]any)
	assert.Equal(t, seedHomeTeam, home["team_id"])
}
