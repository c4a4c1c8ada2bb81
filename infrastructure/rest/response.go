package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/errors"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// respondError maps a domain error kind onto its HTTP status and stable code.
func respondError(c *gin.Context, err error) {
	c.JSON(errors.MapToHTTPStatus(err), ErrorEnvelope{
		Error: APIError{
			Code:    errors.Code(err),
			Message: err.Error(),
		},
	})
}

// respondBadParameters is used for binding failures, before any domain error exists.
func respondBadParameters(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{
			Code:    "bad-parameters",
			Message: err.Error(),
		},
	})
}
