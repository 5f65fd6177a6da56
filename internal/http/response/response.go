package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adverto/adboard-backend/internal/domain/aggregates"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service error codes onto HTTP statuses so
// handlers do not repeat the translation.
func RespondServiceError(c *gin.Context, err error) {
	code := aggregates.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case aggregates.CodeValidation:
		status = http.StatusBadRequest
	case aggregates.CodeNotFound:
		status = http.StatusNotFound
	case aggregates.CodeConflict:
		status = http.StatusConflict
	case aggregates.CodePreconditionFailed:
		status = http.StatusPreconditionFailed
	case aggregates.CodeRetryable:
		status = http.StatusServiceUnavailable
	}
	RespondError(c, status, string(code), err)
}
