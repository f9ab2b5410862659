package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/response"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
)

// GetToday returns the current day's schedule. Before the first wake event
// there is nothing to show: a 200 with status "not_found", not an error, and
// no records are created looking.
func GetToday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := app.Scheduler().Today(c.Request.Context())
		if errors.Is(err, internal.ErrDayNotFound) {
			c.JSON(http.StatusOK, response.NotFoundStatus())
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load today")
			return
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

// PostBedtime logs a sleep or wake event.
func PostBedtime(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.BedtimeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid bedtime payload")
			return
		}

		msg, err := app.Scheduler().LogBedtime(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to log bedtime event")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"message": msg})
	}
}

// PostAlarm sets the day's nap alarm lead time.
func PostAlarm(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.AlarmRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid alarm payload")
			return
		}

		day, err := app.Scheduler().SetDayAlarm(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to set alarm")
			return
		}
		HandleSuccess(c, app.Logger(), day, nil)
	}
}
