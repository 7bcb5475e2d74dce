package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Envelope is the uniform JSON shape for every handler response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: string(shared.KindValidation), Message: message},
	})
}

// Error maps a domain error to its HTTP status. Unknown errors become 500
// with a generic message so internals never leak to callers.
func Error(c *gin.Context, err error) {
	var derr *shared.DomainError
	if !errors.As(err, &derr) {
		c.JSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Error:   &ErrorBody{Code: string(shared.KindInternal), Message: "internal server error"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch derr.Kind {
	case shared.KindValidation:
		status = http.StatusBadRequest
	case shared.KindNotFound:
		status = http.StatusNotFound
	case shared.KindConflict:
		status = http.StatusConflict
	case shared.KindInvalidState:
		status = http.StatusUnprocessableEntity
	case shared.KindLimitExceeded:
		status = http.StatusTooManyRequests
	}

	msg := derr.Message
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: string(derr.Kind), Message: msg},
	})
}
