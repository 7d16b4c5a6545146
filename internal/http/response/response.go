package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Token   string `json:"token,omitempty"`
}

const serverErrorMessage = "Server error"

func RespondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// RespondList writes items with their count. A nil slice is sent as [].
func RespondList(c *gin.Context, items any) {
	n := 0
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice {
		n = v.Len()
		if v.IsNil() {
			items = []any{}
		}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func RespondToken(c *gin.Context, status int, token string, data any) {
	c.JSON(status, Envelope{Success: true, Data: data, Token: token})
}

func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: true, Message: msg})
}

// RespondError maps err to the failure envelope. Errors that do not carry an
// apierr status, and every 5xx, are logged and reported as a generic server error.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	ae, ok := apierr.As(err)
	if !ok || ae.Status >= http.StatusInternalServerError {
		status := http.StatusInternalServerError
		code := "server_error"
		if ok {
			status = ae.Status
			code = ae.Code
		}
		if log != nil {
			fields := append([]interface{}{"path", c.FullPath(), "code", code, "error", err}, ctxutil.LogFields(c.Request.Context())...)
			log.Error("Request failed", fields...)
		}
		abort(c, status, code, serverErrorMessage)
		return
	}
	msg := ae.Code
	if ae.Err != nil {
		msg = ae.Err.Error()
	}
	abort(c, ae.Status, ae.Code, msg)
}

// RespondFailure writes a failure envelope with an explicit status.
func RespondFailure(c *gin.Context, status int, code, msg string) {
	abort(c, status, code, msg)
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Code: code, Message: msg})
}
