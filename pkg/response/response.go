package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every endpoint. Alerts carries the
// notifications drained from the alert regions for this request, so the
// front-end can render them without a separate fetch.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Alerts    interface{} `json:"alerts,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, alerts interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Alerts:    alerts,
	})
}

func Error[T any](ctx *gin.Context, status int, message string, err interface{}, alerts interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
		Alerts:    alerts,
	})
}
