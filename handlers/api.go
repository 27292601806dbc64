package handlers

import (
	"net/http"

	"agv-simulator/fleet"
	"agv-simulator/models"
	"agv-simulator/redis"
	"agv-simulator/utils"

	"github.com/labstack/echo/v4"
)

// APIHandler exposes the simulator control surface: state inspection, direct
// order dispatch and error injection. The cache may be nil, in which case
// state reads always come from the live robots.
type APIHandler struct {
	fleet *fleet.Supervisor
	cache *redis.Client
}

// NewAPIHandler creates a new instance of APIHandler.
func NewAPIHandler(fleetSupervisor *fleet.Supervisor, cache *redis.Client) *APIHandler {
	return &APIHandler{
		fleet: fleetSupervisor,
		cache: cache,
	}
}

// RegisterRoutes wires all API routes onto the echo instance.
func RegisterRoutes(e *echo.Echo, h *APIHandler) {
	api := e.Group("/api/v1")

	api.GET("/health", h.HealthCheck)
	api.GET("/robots", h.ListRobots)
	api.GET("/robots/:robotId/state", h.GetRobotState)
	api.POST("/robots/:robotId/order", h.DispatchOrder)
	api.POST("/robots/:robotId/error", h.SimulateError)
	api.DELETE("/robots/:robotId/errors", h.ClearErrors)
}

// ===================================================================
// HEALTH CHECK
// ===================================================================

// HealthCheck provides a simple health status of the service.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	data := map[string]interface{}{
		"service":   "agv-simulator",
		"timestamp": utils.GetUnixTimestamp(),
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Service is healthy", data))
}

// ===================================================================
// ROBOT MANAGEMENT
// ===================================================================

// ListRobots returns every simulated robot with a live state snapshot.
func (h *APIHandler) ListRobots(c echo.Context) error {
	type robotEntry struct {
		RobotID      string               `json:"robotId"`
		SerialNumber string               `json:"serialNumber"`
		State        *models.StateMessage `json:"state"`
	}

	robots := h.fleet.Robots()
	entries := make([]robotEntry, 0, len(robots))
	for _, r := range robots {
		entries = append(entries, robotEntry{
			RobotID:      r.ID,
			SerialNumber: r.SerialNumber(),
			State:        r.Snapshot(),
		})
	}

	data := map[string]interface{}{
		"robots": entries,
		"count":  len(entries),
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Robots retrieved successfully", data))
}

// GetRobotState returns the most recently published snapshot from the cache,
// falling back to a live snapshot when the cache is unavailable or empty.
func (h *APIHandler) GetRobotState(c echo.Context) error {
	robotID := c.Param("robotId")

	r, ok := h.fleet.Robot(robotID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown robot: "+robotID)
	}

	if h.cache != nil {
		if state, err := h.cache.GetState(robotID); err == nil {
			return c.JSON(http.StatusOK, state)
		}
	}
	return c.JSON(http.StatusOK, r.Snapshot())
}

// ===================================================================
// ROBOT CONTROL
// ===================================================================

// DispatchOrder hands an order document directly to a robot's state machine,
// bypassing the message bus. An order without an id gets one minted.
func (h *APIHandler) DispatchOrder(c echo.Context) error {
	robotID := c.Param("robotId")

	r, ok := h.fleet.Robot(robotID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown robot: "+robotID)
	}

	var order models.Order
	if err := c.Bind(&order); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order payload: "+err.Error())
	}
	if order.OrderID == "" {
		order.OrderID = utils.GenerateOrderID()
	}

	r.HandleOrder(&order)

	data := map[string]interface{}{
		"orderId": order.OrderID,
		"nodes":   len(order.Nodes),
	}
	return c.JSON(http.StatusAccepted, utils.SuccessResponse("Order accepted", data))
}

type simulateErrorRequest struct {
	ErrorType string `json:"errorType"`
}

// SimulateError injects a simulated fault into a robot's error list.
func (h *APIHandler) SimulateError(c echo.Context) error {
	robotID := c.Param("robotId")

	r, ok := h.fleet.Robot(robotID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown robot: "+robotID)
	}

	var req simulateErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload: "+err.Error())
	}

	r.SimulateError(req.ErrorType)
	return c.JSON(http.StatusOK, utils.SuccessResponse("Error injected", map[string]interface{}{
		"robotId": robotID,
	}))
}

// ClearErrors empties a robot's error list.
func (h *APIHandler) ClearErrors(c echo.Context) error {
	robotID := c.Param("robotId")

	r, ok := h.fleet.Robot(robotID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown robot: "+robotID)
	}

	r.ClearErrors()
	return c.JSON(http.StatusOK, utils.SuccessResponse("Errors cleared", map[string]interface{}{
		"robotId": robotID,
	}))
}
