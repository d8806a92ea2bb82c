package httpkit

import (
	"errors"
	"net/http"

	"byabshik_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// HandleError writes err and reports whether there was one. Typed errors
// keep their message; anything else is a 500 whose cause only reaches the
// request log through c.Error.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "internal server error", nil)
		return true
	}
	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindUpstream {
		_ = c.Error(err)
	}
	Error(c, appErr.HTTPStatus(), appErr.Message, appErr.Details)
	return true
}
