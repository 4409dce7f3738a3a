package handlers

import (
	"errors"
	"net/http"

	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK        = "ok"
	statusSelected  = "selected"
	statusStarted   = "started"
	statusCancelled = "cancelled"

	errArmTimer        = "could not arm timer"
	errCancelTimer     = "failed to cancel timer"
	errSelectDuration  = "failed to select duration"
	errInvalidBodyPref = "invalid body: "
)

// logAndJSONError logs err under logKey and writes {"error": userMsg}.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// DurationRequest selects a duration option by index.
type DurationRequest struct {
	// Index into GET /api/v1/timer/options; 0 is the short test timer
	Index *int `json:"index" binding:"required" example:"3"`
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

// @Summary      List duration options
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, options"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/options [get]
// @Security     BearerAuth
func (h *Handler) getOptions(c *gin.Context) {
	opts := h.services.Options()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(opts),
		"options": opts,
	})
}

// @Summary      Get timer state
// @Tags         timer
// @Produce      json
// @Success      200  {object}  models.TimerState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.State())
}

// @Summary      Select duration
// @Description  Takes effect on the next start; a running countdown is not touched.
// @Tags         timer
// @Accept       json
// @Produce      json
// @Param        body  body      DurationRequest  true  "Duration index"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/timer/duration [put]
// @Security     BearerAuth
func (h *Handler) setDuration(c *gin.Context) {
	var req DurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.SetDuration(c.Request.Context(), *req.Index)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSelection) {
			h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "timer_set_duration_rejected", err, "index", *req.Index)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSelectDuration, "timer_set_duration_failed", err, "index", *req.Index)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSelected, "state": st})
}

// @Summary      Start timer
// @Description  Starting while already active keeps the current trigger time.
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timer/start [post]
// @Security     BearerAuth
func (h *Handler) startTimer(c *gin.Context) {
	st, err := h.services.Start(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": statusStarted, "state": st})
	case errors.Is(err, service.ErrNoDurationSelected):
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "timer_start_rejected", err)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errArmTimer, "timer_start_failed", err)
	}
}

// @Summary      Cancel timer
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timer/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelTimer(c *gin.Context) {
	st, err := h.services.Cancel(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errCancelTimer, "timer_cancel_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCancelled, "state": st})
}
