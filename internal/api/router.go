package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the schedule endpoints onto r.
func RegisterRoutes(r *gin.Engine, app App) {
	r.Use(RequestIDMiddleware())

	day := r.Group("/api/day")
	day.GET("/today", GetToday(app))
	day.POST("/bedtime", PostBedtime(app))
	day.POST("/alarm", PostAlarm(app))

	naps := r.Group("/api/naps")
	naps.POST("/start", PostNapStart(app))
	naps.POST("/stop", PostNapStop(app))
	naps.POST("/update", PostNapUpdate(app))

	r.PATCH("/api/schedule/today", PatchScheduleToday(app))

	settings := r.Group("/api/settings")
	settings.GET("/reminder", GetReminder(app))
	settings.PATCH("/reminder", PatchReminder(app))
}
