package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/voicelink/pkg/api/types"
	"github.com/urmzd/voicelink/pkg/backend"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	controller backend.Controller
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(controller backend.Controller) *HealthHandler {
	return &HealthHandler{controller: controller}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the API and the device backend
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Device backend unreachable"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	backendStatus := "disconnected"
	if h.controller.IsConnected() {
		backendStatus = "connected"
	}

	status := "healthy"
	httpStatus := http.StatusOK

	if backendStatus != "connected" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Backend:   backendStatus,
		Timestamp: time.Now(),
	})
}
