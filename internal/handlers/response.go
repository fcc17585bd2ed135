package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/labelsense-backend/internal/services"
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

// RespondServiceError maps the service failure classes onto HTTP statuses.
// A generation failure or store outage always becomes an explicit error
// response, never a silently empty artifact.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		RespondError(c, http.StatusNotFound, "product_not_found", err)
	case errors.Is(err, services.ErrGenerationFailed):
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
	case errors.Is(err, services.ErrStoreUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
