package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agv-simulator/config"
	"agv-simulator/fleet"
	"agv-simulator/models"
	"agv-simulator/transport"
	"agv-simulator/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct{}

func (f *fakeTransport) Connect() error { return nil }
func (f *fakeTransport) Subscribe(topic string, handler transport.MessageHandler) error {
	return nil
}
func (f *fakeTransport) Publish(topic string, payload []byte) error { return nil }
func (f *fakeTransport) Disconnect()                                {}

func newTestAPI(t *testing.T) (*echo.Echo, *fleet.Supervisor) {
	t.Helper()
	cfg := &config.Config{
		RobotCount:        2,
		HeartbeatInterval: time.Hour,
		StepDelay:         time.Millisecond,
		NodeDelay:         time.Millisecond,
		OrderQueueMode:    config.OrderQueueConcurrent,
	}
	factory := func(robotID string) transport.Transport { return &fakeTransport{} }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	supervisor := fleet.NewSupervisor(cfg, factory, nil, logger)

	e := echo.New()
	RegisterRoutes(e, NewAPIHandler(supervisor, nil))
	return e, supervisor
}

func doJSON(e *echo.Echo, method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp utils.StandardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
}

func TestListRobots(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/robots", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Count  int `json:"count"`
			Robots []struct {
				RobotID      string `json:"robotId"`
				SerialNumber string `json:"serialNumber"`
			} `json:"robots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, "robot_1", resp.Data.Robots[0].RobotID)
	assert.True(t, strings.HasPrefix(resp.Data.Robots[0].SerialNumber, "SN"))
}

func TestGetRobotStateLiveFallback(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/robots/robot_2/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state models.StateMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "START", state.State.LastNodeID)
	assert.Equal(t, 100.0, state.State.BatteryState.BatteryCharge)
	// robot_2 starts from its pose-table entry.
	assert.Equal(t, models.Position{X: 150.0, Y: 150.0, Theta: 90.0}, state.State.Position)
}

func TestGetRobotStateUnknownRobot(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/robots/robot_99/state", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchOrderMintsOrderID(t *testing.T) {
	e, supervisor := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/robots/robot_1/order",
		`{"nodes":[{"nodeId":"P1","x":3,"y":3}]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Data struct {
			OrderID string `json:"orderId"`
			Nodes   int    `json:"nodes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Data.OrderID, "order_"))
	assert.Equal(t, 1, resp.Data.Nodes)

	r, ok := supervisor.Robot("robot_1")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return r.Snapshot().State.LastNodeID == "P1"
	}, 2*time.Second, 2*time.Millisecond, "dispatched order did not execute")
}

func TestSimulateAndClearErrorsViaAPI(t *testing.T) {
	e, supervisor := newTestAPI(t)
	r, ok := supervisor.Robot("robot_1")
	require.True(t, ok)

	rec := doJSON(e, http.MethodPost, "/api/v1/robots/robot_1/error", `{"errorType":"SENSOR_FAULT"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := r.Snapshot()
	require.Len(t, snap.State.Errors, 1)
	assert.Equal(t, "SENSOR_FAULT", snap.State.Errors[0].ErrorType)

	rec = doJSON(e, http.MethodDelete, "/api/v1/robots/robot_1/errors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, r.Snapshot().State.Errors)
}

func TestDispatchOrderUnknownRobot(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/robots/robot_99/order",
		`{"nodes":[{"nodeId":"P1","x":3,"y":3}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
