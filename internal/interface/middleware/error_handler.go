package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/response"
)

// ErrorHandler turns the last error recorded with c.Error into the JSON
// envelope. Errors that are not *apperror.Error are masked as INTERNAL.
func ErrorHandler(logger *logrus.Logger, m *observability.Metrics) gin.HandlerFunc {
	log := helpers.Component(logger, "http")
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		ae, ok := apperror.As(last.Err)
		if !ok {
			ae = apperror.Internal(last.Err)
		}
		status := apperror.HTTPStatus(ae.Kind)
		m.ObserveError(string(ae.Kind))

		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"kind":       ae.Kind,
		})
		if ae.Kind == apperror.KindInternal {
			entry.WithError(last.Err).Error("request failed")
		} else {
			entry.Debug(ae.Message)
		}
		response.Fail(c, ae)
	}
}
