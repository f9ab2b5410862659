package api

import (
	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
)

type App interface {
	Logger() internal.Logger
	Scheduler() *service.Scheduler
}
