package response

import (
	"errors"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/pkg/logger"
)

// Response is the JSON envelope for every API reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// retryMessage hides storage details from end users.
const retryMessage = "temporarily unavailable, please retry"

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg, Error: string(apperr.CodeValidation)})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg, Error: string(apperr.CodeUnauthenticated)})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"})
}

func InternalError(c *gin.Context, err error) {
	logger.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
	capture(c, err)
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "internal server error"})
}

// Error maps an apperr code onto status and body. Foreign errors become 500.
func Error(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		InternalError(c, err)
		return
	}
	status := StatusFor(appErr.Code)
	msg := appErr.Message
	if appErr.Code == apperr.CodeStorageFailure {
		logger.Error("storage failure", zap.Error(err), zap.String("op", appErr.Op), zap.String("path", c.FullPath()))
		capture(c, err)
		msg = retryMessage
	}
	c.JSON(status, Response{Code: status, Message: msg, Error: string(appErr.Code)})
}

// StatusFor returns the HTTP status for a code.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInvalidState:
		return http.StatusConflict
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func capture(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
