package serve

import (
	"hemolink/src/allocate"
	"hemolink/src/audit"
	"hemolink/src/gateway"
	"hemolink/src/notify"
	"hemolink/src/sweep"
	"hemolink/src/transfer"
	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	monitor_engine "hemolink/src/utils/monitoring/engine"
	"hemolink/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Orchestrates the whole engine: gateway, sweepers, notifier, audit sink and
// the monitoring server share one database connection and stop together.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	db, err := model.NewConnection(self.Ctx, config, "engine")
	if err != nil {
		return
	}

	monitor := monitor_engine.NewMonitor()

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	notifier := notify.NewNotifier(config).
		WithDatabase(db).
		WithMonitor(monitor)

	auditor := audit.NewSink(config).
		WithDatabase(db)

	coordinator := allocate.NewCoordinator().
		WithDatabase(db).
		WithMonitor(monitor).
		WithNotifier(notifier).
		WithAuditor(auditor)

	machine := transfer.NewMachine().
		WithDatabase(db).
		WithMonitor(monitor).
		WithNotifier(notifier).
		WithAuditor(auditor)

	gatewayServer := gateway.NewServer(config).
		WithDatabase(db).
		WithCoordinator(coordinator).
		WithMachine(machine).
		WithMonitor(monitor)

	sweepers := sweep.NewController(config, db, monitor, notifier, auditor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(auditor.Task).
		WithSubtask(notifier.Task).
		WithSubtask(gatewayServer.Task).
		WithSubtask(sweepers.Task)

	return
}
