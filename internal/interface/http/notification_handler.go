package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/application"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/mailer"
	tpl "github.com/oksasatya/vpms/pkg/mailer/templates"
	"github.com/oksasatya/vpms/pkg/response"
)

// NotificationHandler lets admins enqueue a notification by hand, e.g. to
// check the worker and Mailgun setup.
type NotificationHandler struct {
	Pub     application.JobPublisher
	Logger  *logrus.Logger
	AppName string
}

func NewNotificationHandler(pub application.JobPublisher, logger *logrus.Logger, appName string) *NotificationHandler {
	return &NotificationHandler{Pub: pub, Logger: logger, AppName: appName}
}

type sendNotificationRequest struct {
	To       string         `json:"to" binding:"required,basicemail"`
	Name     string         `json:"name"`
	Template string         `json:"template" binding:"required"`
	Data     map[string]any `json:"data"`
}

func (h *NotificationHandler) Send(c *gin.Context) {
	var req sendNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if !tpl.Known(req.Template) {
		_ = c.Error(apperror.Validation("unknown template", map[string]string{"template": "must be one of: " + strings.Join([]string{tpl.VisitorAwaitingApproval, tpl.ParcelReceived}, ", ")}))
		return
	}
	if h.Pub == nil {
		response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": false, "disabled": true}, "notifications disabled", nil)
		return
	}

	opts := []tpl.Option{tpl.WithAppName(h.AppName)}
	for k, v := range req.Data {
		opts = append(opts, tpl.WithField(k, v))
	}
	job := mailer.NotificationJob{
		To:       strings.ToLower(strings.TrimSpace(req.To)),
		Name:     req.Name,
		Template: req.Template,
		Data:     tpl.NewData(req.Name, opts...),
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		helpers.Component(h.Logger, "notifications").WithError(err).Warn("publish notification failed")
		_ = c.Error(apperror.Internal(err))
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": true}, "notification enqueued", nil)
}

