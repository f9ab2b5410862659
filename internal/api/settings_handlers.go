package api

import (
	"github.com/gin-gonic/gin"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
)

func GetReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		lead, err := app.Scheduler().GetReminderLead(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to read reminder setting")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"lead_sec": lead}, nil)
	}
}

func PatchReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.ReminderRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), internal.Validationf("invalid JSON: %v", err), "Invalid reminder payload")
			return
		}

		if err := app.Scheduler().SetReminderLead(c.Request.Context(), &body); err != nil {
			HandleError(c, app.Logger(), err, "Failed to update reminder setting")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"lead_sec": body.LeadSec}, nil)
	}
}
