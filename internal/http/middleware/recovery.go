package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// Recovery turns handler panics into the failure envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			fields := append([]interface{}{
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"panic", recovered,
			}, ctxutil.LogFields(c.Request.Context())...)
			log.Error("Handler panic recovered", fields...)
		}
		response.RespondFailure(c, http.StatusInternalServerError, "server_error", "Server error")
	})
}
