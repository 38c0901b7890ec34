package handlers

import (
	"errors"
	"net/http"

	"github.com/sanioooook/TodoApp/internal/dto"
	"github.com/sanioooook/TodoApp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the outcome of a failed service call.
func fail(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindServer, Message: "internal error"}
	}
	msg := se.Message
	if se.Kind == service.KindServer {
		// store details stay in the logs
		_ = c.Error(err)
		msg = "internal error"
	}
	if msg == "" {
		msg = se.Kind.String()
	}
	c.AbortWithStatusJSON(statusFor(se.Kind), dto.ErrorResponse{Error: msg, Kind: se.Kind.String()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: service.KindValidation.String()})
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name, Kind: service.KindValidation.String()})
		return uuid.Nil, false
	}
	return id, true
}
