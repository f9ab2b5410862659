package api

import (
	"github.com/gin-gonic/gin"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
)

// PatchScheduleToday applies a bulk edit to today's upcoming naps.
func PatchScheduleToday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.ScheduleEditRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid schedule edit payload")
			return
		}

		result, err := app.Scheduler().EditToday(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to edit schedule")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"day": result.Day, "naps": result.Naps}, nil)
	}
}
