package api

import (
	"github.com/gin-gonic/gin"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
)

func PostNapStart(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.NapEventRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid nap start payload")
			return
		}

		slot, err := app.Scheduler().StartNap(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to start nap")
			return
		}
		HandleSuccess(c, app.Logger(), slot, map[string]any{"message": "nap started"})
	}
}

func PostNapStop(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.NapEventRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid nap stop payload")
			return
		}

		slot, err := app.Scheduler().StopNap(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to stop nap")
			return
		}
		HandleSuccess(c, app.Logger(), slot, map[string]any{"message": "nap stopped, schedule adjusted"})
	}
}

func PostNapUpdate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.NapUpdateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid nap update payload")
			return
		}

		slot, err := app.Scheduler().UpdateNap(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update nap")
			return
		}
		HandleSuccess(c, app.Logger(), slot, nil)
	}
}
