package cmd

import (
	"github.com/spf13/cobra"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/sweep"
	"hemolink/src/utils/logger"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	monitor_engine "hemolink/src/utils/monitoring/engine"
	"hemolink/src/utils/task"
)

func init() {
	RootCmd.AddCommand(sweepCmd)
}

// Runs only the reconciliation sweepers, for deployments that keep the
// gateway and the sweepers in separate processes.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the reconciliation sweepers without the gateway",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller := task.NewTask(conf, "sweep-standalone")

		db, err := model.NewConnection(controller.Ctx, conf, "sweep")
		if err != nil {
			return
		}

		monitor := monitor_engine.NewMonitor()

		monitoringServer := monitoring.NewServer(conf).
			WithMonitor(monitor)

		notifier := notify.NewNotifier(conf).
			WithDatabase(db).
			WithMonitor(monitor)

		auditor := audit.NewSink(conf).
			WithDatabase(db)

		controller = controller.
			WithSubtask(monitor.Task).
			WithSubtask(monitoringServer.Task).
			WithSubtask(auditor.Task).
			WithSubtask(notifier.Task).
			WithSubtask(sweep.NewController(conf, db, monitor, notifier, auditor).Task)

		err = controller.Start()
		if err != nil {
			return
		}

		<-applicationCtx.Done()

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("sweep-cmd")
		log.Debug("Finished sweep command")
		return
	},
}
