package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/models"
	"smartgarden/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
	errTrigger         = "acquisition failed"

	// actuatorWait bounds how long POST /actuator waits for the device to confirm.
	actuatorWait = 6 * time.Second
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondAppError maps an apperr code to an HTTP status and writes the error.
func (h *Handler) respondAppError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := apperr.CodeOf(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		h.logAndJSONError(c, status, err.Error(), logKey, err, kv...)
		return
	}
	if h.log != nil {
		h.log.Infow(logKey, append([]interface{}{"err", err, "code", code}, kv...)...)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func httpStatus(code apperr.Code) int {
	switch code {
	case apperr.ValidationFailure:
		return http.StatusBadRequest
	case apperr.InvalidTransition:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.NetworkFailure, apperr.DecodeFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ConnectRequest is the payload of POST /api/v1/connection.
type ConnectRequest struct {
	// Base URL of the garden controller
	URL string `json:"url" binding:"required" example:"http://192.168.1.50"`
}

// ActuatorRequest is the payload of POST /api/v1/actuator.
type ActuatorRequest struct {
	// Desired pump state
	Status *bool `json:"status" binding:"required" example:"true"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current telemetry
// @Description  Reading, pump state, status bands, connection mode and LCD lines
// @Tags         garden
// @Produce      json
// @Success      200  {object}  models.Telemetry
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/telemetry [get]
// @Security     BearerAuth
func (h *Handler) getTelemetry(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.GetTelemetry(c.Request.Context()))
}

// @Summary      Get thresholds
// @Tags         config
// @Produce      json
// @Success      200  {object}  models.ThresholdConfig
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/config [get]
// @Security     BearerAuth
func (h *Handler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.GetConfig(c.Request.Context()))
}

// @Summary      Apply thresholds
// @Description  Out-of-range values are clamped and listed in adjustments
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        body  body      models.ThresholdConfig  true  "Thresholds"
// @Success      200   {object}  map[string]interface{}  "config, adjustments"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/config [put]
// @Security     BearerAuth
func (h *Handler) putConfig(c *gin.Context) {
	var req models.ThresholdConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	applied, adjustments, err := h.services.ApplyConfig(c.Request.Context(), req)
	if err != nil {
		h.respondAppError(c, "config_apply_failed", err)
		return
	}
	if adjustments == nil {
		adjustments = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"config": applied, "adjustments": adjustments})
}

// @Summary      Connection status
// @Tags         connection
// @Produce      json
// @Success      200  {object}  models.ConnectionStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection [get]
// @Security     BearerAuth
func (h *Handler) getConnection(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status())
}

// @Summary      Connect to device
// @Description  Only valid in simulated mode
// @Tags         connection
// @Accept       json
// @Produce      json
// @Param        body  body      ConnectRequest  true  "Device URL"
// @Success      200   {object}  models.ConnectionStatus
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/connection [post]
// @Security     BearerAuth
func (h *Handler) connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Connect(c.Request.Context(), req.URL)
	if err != nil {
		h.respondAppError(c, "connect_failed", err, "url", req.URL)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Disconnect from device
// @Description  Returns to the simulated stream
// @Tags         connection
// @Produce      json
// @Success      200  {object}  models.ConnectionStatus
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/connection [delete]
// @Security     BearerAuth
func (h *Handler) disconnect(c *gin.Context) {
	st, err := h.services.Disconnect(c.Request.Context())
	if err != nil {
		h.respondAppError(c, "disconnect_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Switch the pump
// @Description  The new state is shown at once; a device failure rolls it back
// @Tags         actuator
// @Accept       json
// @Produce      json
// @Param        body  body      ActuatorRequest         true  "Desired state"
// @Success      200   {object}  map[string]interface{}  "outcome, desired, pump_on"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Router       /api/v1/actuator [post]
// @Security     BearerAuth
func (h *Handler) setActuator(c *gin.Context) {
	var req ActuatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	cmd := h.services.SetActuator(c.Request.Context(), *req.Status)

	ctx, cancel := context.WithTimeout(c.Request.Context(), actuatorWait)
	defer cancel()
	outcome, err := cmd.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = nil
	}

	tel := h.services.GetTelemetry(c.Request.Context())
	resp := gin.H{
		"id":      cmd.ID,
		"outcome": outcome,
		"desired": *req.Status,
		"pump_on": tel.PumpOn,
	}
	if outcome == service.OutcomeRolledBack {
		if h.log != nil {
			h.log.Infow("actuator_rejected", "desired", *req.Status, "err", err)
		}
		if err != nil {
			resp["error"] = err.Error()
		}
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Acquire now
// @Description  Runs one acquisition, after any in-flight one
// @Tags         garden
// @Produce      json
// @Success      200  {object}  models.Telemetry
// @Failure      502  {object}  map[string]interface{}
// @Router       /api/v1/acquisition/trigger [post]
// @Security     BearerAuth
func (h *Handler) triggerAcquisition(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Trigger(ctx); err != nil {
		status := httpStatus(apperr.CodeOf(err))
		if h.log != nil {
			h.log.Infow("trigger_failed", "err", err)
		}
		c.JSON(status, gin.H{
			"error":     errTrigger + ": " + err.Error(),
			"telemetry": h.services.GetTelemetry(ctx),
		})
		return
	}
	c.JSON(http.StatusOK, h.services.GetTelemetry(ctx))
}
