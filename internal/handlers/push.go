package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"eggtimer/internal/models"
	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusSubscribed   = "subscribed"
	statusUnsubscribed = "unsubscribed"

	errTopics    = "failed to load topics"
	errSubscribe = "failed to update subscription"
	errPublish   = "failed to publish"
	errNoUser    = "missing user"
)

// PublishRequest is the body of POST /api/v1/push/topics/{topic}/messages.
type PublishRequest struct {
	Data         map[string]string        `json:"data,omitempty"`
	Notification *models.PushNotification `json:"notification,omitempty"`
}

// pushStatus maps push validation errors to 400 and everything else to 500.
func pushStatus(err error) int {
	if errors.Is(err, service.ErrInvalidTopic) || errors.Is(err, service.ErrEmptyPush) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// @Summary      List subscribed topics
// @Tags         push
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "topics"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/push/topics [get]
// @Security     BearerAuth
func (h *Handler) listTopics(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNoUser})
		return
	}
	topics, err := h.services.Topics(c.Request.Context(), uid)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errTopics, "push_topics_failed", err, "user_id", uid)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// @Summary      Subscribe to topic
// @Tags         push
// @Produce      json
// @Param        topic  path      string  true  "Topic name ([a-zA-Z0-9-_.~%]+)"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/push/topics/{topic}/subscribe [post]
// @Security     BearerAuth
func (h *Handler) subscribeTopic(c *gin.Context) {
	h.changeSubscription(c, true)
}

// @Summary      Unsubscribe from topic
// @Tags         push
// @Produce      json
// @Param        topic  path      string  true  "Topic name"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/push/topics/{topic}/subscribe [delete]
// @Security     BearerAuth
func (h *Handler) unsubscribeTopic(c *gin.Context) {
	h.changeSubscription(c, false)
}

func (h *Handler) changeSubscription(c *gin.Context, subscribe bool) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNoUser})
		return
	}
	topic := c.Param("topic")
	ctx := c.Request.Context()

	var err error
	status := statusSubscribed
	if subscribe {
		err = h.services.SubscribeTopic(ctx, uid, topic)
	} else {
		status = statusUnsubscribed
		err = h.services.UnsubscribeTopic(ctx, uid, topic)
	}
	if err != nil {
		code := pushStatus(err)
		msg := errSubscribe
		if code == http.StatusBadRequest {
			msg = err.Error()
		}
		h.logAndJSONError(c, code, msg, "push_subscription_failed", err, "user_id", uid, "topic", topic)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "topic": topic})
}

// @Summary      Publish to topic
// @Description  The notification part is shown on the push channel when the topic has subscribers.
// @Tags         push
// @Accept       json
// @Produce      json
// @Param        topic  path      string          true  "Topic name"
// @Param        body   body      PublishRequest  true  "Message"
// @Success      202    {object}  map[string]interface{}  "topic, subscribers"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/push/topics/{topic}/messages [post]
// @Security     BearerAuth
func (h *Handler) publish(c *gin.Context) {
	var req PublishRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	uid, _ := userID(c)
	topic := c.Param("topic")

	n, err := h.services.Publish(c.Request.Context(), models.PushMessage{
		From:         "user:" + strconv.Itoa(uid),
		Topic:        topic,
		Data:         req.Data,
		Notification: req.Notification,
	})
	if err != nil {
		code := pushStatus(err)
		msg := errPublish
		if code == http.StatusBadRequest {
			msg = err.Error()
		}
		h.logAndJSONError(c, code, msg, "push_publish_failed", err, "topic", topic)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"topic": topic, "subscribers": n})
}
