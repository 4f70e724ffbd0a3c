// Package response writes the JSON envelope shared by every /api endpoint.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/pkg/apperror"
)

// RequestIDKey is the gin context key the request id middleware fills.
const RequestIDKey = "request_id"

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// ErrorBody is the "error" member of a failed response.
type ErrorBody struct {
	Kind    apperror.Kind     `json:"kind"`
	Details map[string]string `json:"details"`
}

func envelope[T any](c *gin.Context, status int, ok bool, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(RequestIDKey),
		Success:   ok,
		Message:   message,
	}
}

// Success writes a success envelope and returns it.
func Success[T any](c *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := envelope[T](c, status, true, message)
	resp.Data, resp.Meta = data, meta
	c.JSON(status, resp)
	return resp
}

// Error writes a failure envelope and aborts the chain.
func Error(c *gin.Context, status int, message string, body any) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := envelope[any](c, status, false, message)
	resp.Error = body
	c.AbortWithStatusJSON(status, resp)
	return resp
}

// Fail writes err with the status of its kind. Details are omitted when empty.
func Fail(c *gin.Context, err *apperror.Error) APIResponse[any] {
	body := ErrorBody{Kind: err.Kind}
	if len(err.Details) > 0 {
		body.Details = err.Details
	}
	return Error(c, apperror.HTTPStatus(err.Kind), err.Message, body)
}
