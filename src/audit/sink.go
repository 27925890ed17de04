package audit

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/task"
)

const (
	EntityUnit     = "unit"
	EntityOffer    = "offer"
	EntityRequest  = "request"
	EntityTransfer = "transfer"
)

const (
	ActionCreate        = "create"
	ActionStateChange   = "state-change"
	ActionAutoCancel    = "auto-cancel"
	ActionExpiryArchive = "expiry-archive"
)

// Sink appends audit entries on a small worker pool. Recording happens after
// the mutating transaction commits and is best-effort, a failed insert is
// logged and dropped.
type Sink struct {
	*task.Task

	db *gorm.DB
}

func NewSink(config *config.Config) (self *Sink) {
	self = new(Sink)

	self.Task = task.NewTask(config, "audit").
		WithSubtaskFunc(self.run).
		WithWorkerPool(config.Audit.MaxWorkers, config.Audit.MaxQueueSize)

	return
}

// Keeps the worker pool alive until the task is stopped
func (self *Sink) run() error {
	<-self.StopChannel
	return nil
}

func (self *Sink) WithDatabase(db *gorm.DB) *Sink {
	self.db = db
	return self
}

func (self *Sink) Record(userID uuid.NullUUID, entity string, entityID uuid.UUID, action string, details any) {
	var payload json.RawMessage
	if details != nil {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			self.Log.WithError(err).WithField("entity", entity).Error("Failed to marshal audit details")
			payload = nil
		}
	}

	if self.IsStopping.Load() {
		return
	}

	self.SubmitToWorker(func() {
		entry := model.AuditEntry{
			UserID:   userID,
			Entity:   entity,
			EntityID: uuid.NullUUID{UUID: entityID, Valid: true},
			Action:   action,
			Details:  payload,
		}
		err := self.db.WithContext(self.CtxRunning).Create(&entry).Error
		if err != nil {
			self.Log.WithError(err).
				WithField("entity", entity).
				WithField("action", action).
				Error("Failed to insert audit entry")
		}
	})
}
