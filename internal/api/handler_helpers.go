package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/response"
)

// HandleError maps the service error taxonomy onto HTTP statuses:
// validation -> 400, not-found -> 404, persistence and anything else -> 500.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")

	var ve *internal.ValidationError
	var pe *internal.PersistenceError
	switch {
	case errors.As(err, &ve):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusBadRequest, response.BadRequest(msg+": "+ve.Reason))
	case internal.IsNotFound(err):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusNotFound, response.NotFound(msg+": "+err.Error()))
	case errors.As(err, &pe):
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusInternalServerError, response.InternalError(msg+": "+err.Error()))
	default:
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusInternalServerError, response.InternalError(msg+": "+err.Error()))
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}
