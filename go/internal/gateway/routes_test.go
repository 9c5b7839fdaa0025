package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/countdown/go/internal/timers"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *timers.App, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testEpoch)
	app := timers.NewApp(timers.NewRepository(), events.NewDispatcher(), clock)

	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, NewStateHandler(app), NewControlHandler(app, app))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, app, clock
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeState(t *testing.T, resp *http.Response) timers.TimerState {
	t.Helper()
	defer resp.Body.Close()

	var state timers.TimerState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestCreateTimerEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/timers", map[string]interface{}{
		"label":    "Pomodoro",
		"duration": "00:25:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Equal(t, "Pomodoro", state.Label)
	assert.Equal(t, 1500, state.DurationSec)
	assert.Equal(t, "IDLE", state.Phase)
	assert.Equal(t, "00:25:00", state.Remaining)
}

func TestCreateTimerClockStringWinsOverSeconds(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/timers", map[string]interface{}{
		"label":        "both",
		"duration_sec": 60,
		"duration":     "00:02:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 120, decodeState(t, resp).DurationSec)
}

func TestCreateTimerInvalidDuration(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/timers", map[string]interface{}{
		"label":    "bad",
		"duration": "later",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTimersEndpoint(t *testing.T) {
	server, app, clock := newTestServer(t)

	_, err := app.CreateTimer(context.Background(), timers.CreateTimerRequest{Label: "a", DurationSec: 10})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = app.CreateTimer(context.Background(), timers.CreateTimerRequest{Label: "b", DurationSec: 20})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/timers")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var states []timers.TimerState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&states))
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].Label)
	assert.Equal(t, "b", states[1].Label)
}

func TestTimerLifecycleOverHTTP(t *testing.T) {
	server, _, clock := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/timers", map[string]interface{}{
		"label":        "lifecycle",
		"duration_sec": 60,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	timerID := decodeState(t, resp).TimerID

	base := fmt.Sprintf("%s/api/timers/%s", server.URL, timerID)

	resp = postJSON(t, base+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RUNNING", decodeState(t, resp).Phase)

	clock.Advance(10 * time.Second)

	resp = postJSON(t, base+"/pause", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	assert.Equal(t, "PAUSED", state.Phase)
	assert.Equal(t, "00:00:50", state.Remaining)

	resp = postJSON(t, base+"/resume", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RUNNING", decodeState(t, resp).Phase)

	resp = postJSON(t, base+"/add", map[string]interface{}{"seconds": 30})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "00:01:20", decodeState(t, resp).Remaining)

	resp = postJSON(t, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(t, resp)
	assert.Equal(t, "IDLE", state.Phase)
	assert.Equal(t, 60, state.DurationSec)

	resp = postJSON(t, base+"/duration", map[string]interface{}{"duration": "01:00:00"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3600, decodeState(t, resp).DurationSec)
}

func TestGetTimerStateEndpoint(t *testing.T) {
	server, app, _ := newTestServer(t)

	timer, err := app.CreateTimer(context.Background(), timers.CreateTimerRequest{Label: "get", DurationSec: 90})
	require.NoError(t, err)

	for _, path := range []string{
		fmt.Sprintf("/api/timers/%s", timer.ID),
		fmt.Sprintf("/api/timers/%s/state", timer.ID),
	} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "00:01:30", decodeState(t, resp).Remaining)
	}
}

func TestDeleteTimerEndpoint(t *testing.T) {
	server, app, _ := newTestServer(t)

	timer, err := app.CreateTimer(context.Background(), timers.CreateTimerRequest{Label: "del", DurationSec: 10})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/timers/%s", server.URL, timer.ID), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownTimerReturns404(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp := postJSON(t, fmt.Sprintf("%s/api/timers/%s/start", server.URL, uuid.New()), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	getResp, err := http.Get(fmt.Sprintf("%s/api/timers/%s", server.URL, uuid.New()))
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestInvalidTimerIDReturns400(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/timers/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	server, app, _ := newTestServer(t)

	timer, err := app.CreateTimer(context.Background(), timers.CreateTimerRequest{Label: "m", DurationSec: 10})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/timers", bytes.NewReader(nil))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	getResp, err := http.Get(fmt.Sprintf("%s/api/timers/%s/start", server.URL, timer.ID))
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
}
