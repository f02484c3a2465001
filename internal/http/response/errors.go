package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

const internalMessage = "internal server error"

// RespondAPIError translates a usecase error into the error envelope.
// Server-side failures are logged with their cause and answered with a
// generic message; fallbackCode is used when err carries no code.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error, fallbackCode string) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = apierr.Internal(fallbackCode, err)
	}
	code := ae.Code
	if code == "" {
		code = fallbackCode
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"code", code,
				"error", ae.Err,
			)
		}
		RespondError(c, status, code, errors.New(internalMessage))
		return
	}
	RespondError(c, status, code, ae.Err)
}
