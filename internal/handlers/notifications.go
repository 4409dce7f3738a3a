package handlers

import (
	"errors"
	"net/http"

	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusDismissed = "dismissed"
	statusSnoozed   = "snoozed"

	errDismiss = "failed to dismiss notifications"
	errSnooze  = "failed to snooze"
)

// @Summary      Current notification
// @Description  notification is null when nothing is displayed.
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "notification"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/notifications/current [get]
// @Security     BearerAuth
func (h *Handler) getCurrentNotification(c *gin.Context) {
	n, ok := h.services.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"notification": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// @Summary      Dismiss notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications [delete]
// @Security     BearerAuth
func (h *Handler) dismissNotifications(c *gin.Context) {
	if err := h.services.CancelAll(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDismiss, "notifications_dismiss_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDismissed})
}

// @Summary      Snooze
// @Description  Dismisses the displayed notification and shows it again after notify.snooze.
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, trigger_at_millis"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/notifications/snooze [post]
// @Security     BearerAuth
func (h *Handler) snooze(c *gin.Context) {
	at, err := h.services.Snooze(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": statusSnoozed, "trigger_at_millis": at})
	case errors.Is(err, service.ErrNothingToSnooze):
		h.logAndJSONError(c, http.StatusConflict, err.Error(), "snooze_rejected", err)
	case errors.Is(err, service.ErrSnoozeUnavailable):
		h.logAndJSONError(c, http.StatusServiceUnavailable, err.Error(), "snooze_unavailable", err)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errSnooze, "snooze_failed", err)
	}
}
