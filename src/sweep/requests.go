package sweep

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// RequestSweeper cancels pending requests nobody allocated against within
// the configured age. One UPDATE ... RETURNING per tick, so two overlapping
// runs cannot cancel the same request twice.
type RequestSweeper struct {
	*task.Task

	db       *gorm.DB
	monitor  monitoring.Monitor
	notifier *notify.Notifier
	auditor  *audit.Sink
}

func NewRequestSweeper(config *config.Config) (self *RequestSweeper) {
	self = new(RequestSweeper)

	self.Task = task.NewTask(config, "request-sweeper").
		WithPeriodicSubtaskFunc(config.Sweeper.RequestInterval, self.sweep)

	return
}

func (self *RequestSweeper) WithDatabase(db *gorm.DB) *RequestSweeper {
	self.db = db
	return self
}

func (self *RequestSweeper) WithMonitor(monitor monitoring.Monitor) *RequestSweeper {
	self.monitor = monitor
	return self
}

func (self *RequestSweeper) WithNotifier(notifier *notify.Notifier) *RequestSweeper {
	self.notifier = notifier
	return self
}

func (self *RequestSweeper) WithAuditor(auditor *audit.Sink) *RequestSweeper {
	self.auditor = auditor
	return self
}

// Errors skip the tick, the next tick retries
func (self *RequestSweeper) sweep() error {
	cutoff := time.Now().Add(-self.Config.Sweeper.RequestMaxAge)

	var expired []*model.Request
	err := self.db.WithContext(self.Ctx).
		Raw(`UPDATE requests SET state = ?
			WHERE state = ? AND created_at < ?
			RETURNING *`,
			model.RequestStateCancelled, model.RequestStatePending, cutoff).
		Scan(&expired).
		Error
	if err != nil {
		self.monitor.GetReport().Sweeper.Errors.RequestExpiryError.Inc()
		self.Log.WithError(err).Error("Failed to cancel expired requests")
		return nil
	}
	if len(expired) == 0 {
		return nil
	}

	self.monitor.GetReport().Sweeper.State.RequestsExpired.Add(uint64(len(expired)))
	self.Log.WithField("count", len(expired)).Info("Cancelled expired requests")

	for _, request := range expired {
		if self.auditor != nil {
			self.auditor.Record(uuid.NullUUID{}, audit.EntityRequest, request.ID, audit.ActionAutoCancel, map[string]any{
				"state":      model.RequestStateCancelled,
				"created_at": request.CreatedAt,
			})
		}
		if self.notifier != nil {
			self.notifier.Enqueue(&notify.Event{
				Kind:        notify.KindRequestStateChanged,
				EntityType:  audit.EntityRequest,
				EntityID:    request.ID,
				FacilityIDs: []uuid.UUID{request.FacilityID},
				Message:     fmt.Sprintf("Request cancelled after %s without allocation", self.Config.Sweeper.RequestMaxAge),
			})
		}
	}
	return nil
}
