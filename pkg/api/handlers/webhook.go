package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/voicelink/pkg/api/types"
	"github.com/urmzd/voicelink/pkg/device/schema"
	"github.com/urmzd/voicelink/pkg/oauth"
	"github.com/urmzd/voicelink/pkg/provider"
)

// RequestIDHeader carries the platform's request id
const RequestIDHeader = "X-Request-Id"

// UnlinkFunc is called when a user unlinks the account from the platform
type UnlinkFunc func(ctx context.Context, userID string) error

// WebhookHandler serves the platform's device endpoints
type WebhookHandler struct {
	provider  *provider.Service
	validator *schema.Validator
	unlink    UnlinkFunc
}

// NewWebhookHandler creates a new webhook handler. unlink may be nil.
func NewWebhookHandler(p *provider.Service, validator *schema.Validator, unlink UnlinkFunc) *WebhookHandler {
	return &WebhookHandler{provider: p, validator: validator, unlink: unlink}
}

// Ping handles HEAD /v1.0
// @Summary      Endpoint check
// @Description  Lets the platform check that the endpoint is reachable
// @Tags         webhook
// @Success      200
// @Router       /v1.0 [head]
func (h *WebhookHandler) Ping(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Devices handles GET /v1.0/user/devices
// @Summary      List user devices
// @Description  Returns the devices of the linked user with their capabilities and properties
// @Tags         webhook
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-Id  header    string  false  "Platform request id"
// @Success      200  {object}  types.DevicesResponse
// @Failure      403  "Missing or invalid token"
// @Failure      404  "Device list unavailable"
// @Router       /v1.0/user/devices [get]
func (h *WebhookHandler) Devices(c *gin.Context) {
	userID := oauth.UserID(c)

	devices, err := h.provider.Devices(c.Request.Context(), userID)
	if err != nil {
		notFound(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DevicesResponse{
		RequestID: c.GetHeader(RequestIDHeader),
		Payload: types.DevicesPayload{
			UserID:  userID,
			Devices: types.Describe(devices),
		},
	})
}

// Query handles POST /v1.0/user/devices/query
// @Summary      Query device state
// @Description  Returns the current state of the requested devices. A failing device reports an error code without affecting the others.
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-Id  header    string              false  "Platform request id"
// @Param        request       body      types.QueryRequest  true   "Devices to query"
// @Success      200  {object}  types.QueryResponse
// @Failure      400  {object}  types.ErrorResponse  "Invalid request"
// @Failure      403  "Missing or invalid token"
// @Failure      404  "Device list unavailable"
// @Router       /v1.0/user/devices/query [post]
func (h *WebhookHandler) Query(c *gin.Context) {
	var req types.QueryRequest
	if !h.bind(c, schema.QueryRequest, &req) {
		return
	}

	ids := make([]string, 0, len(req.Devices))
	for _, d := range req.Devices {
		ids = append(ids, d.ID)
	}

	states, err := h.provider.Query(c.Request.Context(), oauth.UserID(c), ids)
	if err != nil {
		notFound(c, err)
		return
	}

	c.JSON(http.StatusOK, types.QueryResponse{
		RequestID: c.GetHeader(RequestIDHeader),
		Payload:   types.QueryPayload{Devices: states},
	})
}

// Action handles POST /v1.0/user/devices/action
// @Summary      Change device state
// @Description  Applies the requested capability states. Unknown capabilities report INVALID_ACTION; a failing device reports an error without affecting the others.
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-Id  header    string               false  "Platform request id"
// @Param        request       body      types.ActionRequest  true   "Requested actions"
// @Success      200  {object}  types.ActionResponse
// @Failure      400  {object}  types.ErrorResponse  "Invalid request"
// @Failure      403  "Missing or invalid token"
// @Failure      404  "Device list unavailable"
// @Router       /v1.0/user/devices/action [post]
func (h *WebhookHandler) Action(c *gin.Context) {
	var req types.ActionRequest
	if !h.bind(c, schema.ActionRequest, &req) {
		return
	}

	results, err := h.provider.Action(c.Request.Context(), oauth.UserID(c), req.Payload.Devices)
	if err != nil {
		notFound(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ActionResponse{
		RequestID: c.GetHeader(RequestIDHeader),
		Payload:   types.ActionPayload{Devices: results},
	})
}

// Unlink handles POST /v1.0/user/unlink
// @Summary      Unlink account
// @Description  Called by the platform after the user unlinks the account
// @Tags         webhook
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-Id  header    string  false  "Platform request id"
// @Success      200  {object}  types.UnlinkResponse
// @Failure      403  "Missing or invalid token"
// @Failure      500  {object}  types.ErrorResponse  "Unlink failed"
// @Router       /v1.0/user/unlink [post]
func (h *WebhookHandler) Unlink(c *gin.Context) {
	if h.unlink != nil {
		if err := h.unlink(c.Request.Context(), oauth.UserID(c)); err != nil {
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{
				Error:   "unlink_failed",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, types.UnlinkResponse{RequestID: c.GetHeader(RequestIDHeader)})
}

// bind validates the body against schemaDoc and decodes it into dst
func (h *WebhookHandler) bind(c *gin.Context, schemaDoc json.RawMessage, dst any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return false
	}

	if err := h.validator.ValidateJSON(schemaDoc, body); err != nil {
		code := "validation_error"
		if !errors.Is(err, schema.ErrInvalid) {
			code = "schema_error"
		}
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// notFound answers a device list failure with an empty 404
func notFound(c *gin.Context, err error) {
	log.Warn().Err(err).Str("user", oauth.UserID(c)).Msg("Device list unavailable")
	c.Status(http.StatusNotFound)
}
