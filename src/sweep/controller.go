package sweep

import (
	"gorm.io/gorm"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/transfer"
	"hemolink/src/utils/config"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// Controller groups the three reconciliation sweepers under one task so the
// serve and sweep commands start and stop them together.
type Controller struct {
	*task.Task
}

func NewController(config *config.Config, db *gorm.DB, monitor monitoring.Monitor, notifier *notify.Notifier, auditor *audit.Sink) (self *Controller) {
	self = new(Controller)

	machine := transfer.NewMachine().
		WithDatabase(db).
		WithMonitor(monitor).
		WithNotifier(notifier).
		WithAuditor(auditor)

	self.Task = task.NewTask(config, "sweep-controller").
		WithSubtask(NewRequestSweeper(config).
			WithDatabase(db).
			WithMonitor(monitor).
			WithNotifier(notifier).
			WithAuditor(auditor).
			Task).
		WithSubtask(NewInventorySweeper(config).
			WithDatabase(db).
			WithMonitor(monitor).
			WithNotifier(notifier).
			WithAuditor(auditor).
			Task).
		WithSubtask(NewWatchdog(config).
			WithMachine(machine).
			WithDatabase(db).
			WithMonitor(monitor).
			Task)

	return
}
