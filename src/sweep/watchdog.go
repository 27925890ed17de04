package sweep

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hemolink/src/transfer"
	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// Watchdog force-cancels transfers stuck past their deadline: created ones
// nobody sent, in-transit ones nobody received. Each transfer is settled in
// its own transaction through the state machine, so a transfer that advanced
// between the listing and the cancel simply fails its state guard and falls
// out of the next sweep.
type Watchdog struct {
	*task.Task

	db      *gorm.DB
	machine *transfer.Machine
	monitor monitoring.Monitor
}

func NewWatchdog(config *config.Config) (self *Watchdog) {
	self = new(Watchdog)

	self.Task = task.NewTask(config, "transfer-watchdog").
		WithRepeatedSubtaskFunc(config.Sweeper.WatchdogInterval, self.sweep)

	return
}

func (self *Watchdog) WithDatabase(db *gorm.DB) *Watchdog {
	self.db = db
	return self
}

func (self *Watchdog) WithMachine(machine *transfer.Machine) *Watchdog {
	self.machine = machine
	return self
}

func (self *Watchdog) WithMonitor(monitor monitoring.Monitor) *Watchdog {
	self.monitor = monitor
	return self
}

// A full batch means more stale transfers may be waiting, so the sweep asks
// to be re-run immediately instead of sleeping out the interval.
func (self *Watchdog) sweep() (repeat bool, err error) {
	now := time.Now()
	createdCutoff := now.Add(-self.Config.Sweeper.TransferCreatedMaxAge)
	transitCutoff := now.Add(-self.Config.Sweeper.TransferTransitMaxAge)

	var stale []*model.Transfer
	err = self.db.WithContext(self.Ctx).
		Where("(state = ? AND created_at < ?) OR (state = ? AND sent_at < ?)",
			model.TransferStateCreated, createdCutoff,
			model.TransferStateInTransit, transitCutoff).
		Limit(self.Config.Sweeper.MaxTransfersPerRun).
		Find(&stale).
		Error
	if err != nil {
		self.monitor.GetReport().Sweeper.Errors.WatchdogError.Inc()
		self.Log.WithError(err).Error("Failed to list stale transfers")
		return false, nil
	}

	for _, row := range stale {
		reason := fmt.Sprintf("stuck in %s since %s", row.State, staleSince(row))
		_, err = self.machine.ForceCancel(self.Ctx, row.ID, reason)
		if err != nil {
			// Advanced or settled between the listing and the lock
			if errors.Is(err, model.ErrInvalidState) || errors.Is(err, model.ErrNotFound) {
				continue
			}
			self.monitor.GetReport().Sweeper.Errors.WatchdogError.Inc()
			self.Log.WithError(err).WithField("transfer_id", row.ID).Error("Failed to force-cancel transfer")
			continue
		}
		self.monitor.GetReport().Sweeper.State.TransfersForceCancelled.Inc()
	}
	return len(stale) == self.Config.Sweeper.MaxTransfersPerRun, nil
}

func staleSince(row *model.Transfer) time.Time {
	if row.State == model.TransferStateInTransit && row.SentAt.Valid {
		return row.SentAt.Time
	}
	return row.CreatedAt
}
