package allocate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/audit"
	"hemolink/src/match"
	"hemolink/src/notify"
	"hemolink/src/utils/logger"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
)

// Coordinator owns every mutation that claims or releases units. Each
// operation is a single transaction; explicit row locks are taken before any
// dependent read, so two racing claims on the same unit serialize and the
// loser sees the updated state. Events and audit entries go out only after
// the transaction commits.
type Coordinator struct {
	log *logrus.Entry

	db       *gorm.DB
	matcher  *match.Matcher
	monitor  monitoring.Monitor
	notifier *notify.Notifier
	auditor  *audit.Sink
}

func NewCoordinator() (self *Coordinator) {
	self = new(Coordinator)
	self.log = logger.NewSublogger("allocator")
	self.matcher = match.NewMatcher()
	return
}

func (self *Coordinator) WithDatabase(db *gorm.DB) *Coordinator {
	self.db = db
	return self
}

func (self *Coordinator) WithMonitor(monitor monitoring.Monitor) *Coordinator {
	self.monitor = monitor
	return self
}

func (self *Coordinator) WithNotifier(notifier *notify.Notifier) *Coordinator {
	self.notifier = notifier
	return self
}

func (self *Coordinator) WithAuditor(auditor *audit.Sink) *Coordinator {
	self.auditor = auditor
	return self
}

// Post-commit side effects are optional collaborators, nil in tests
func (self *Coordinator) emit(event *notify.Event) {
	if self.notifier == nil {
		return
	}
	self.notifier.Enqueue(event)
}

func (self *Coordinator) record(actor model.Actor, entity string, entityID uuid.UUID, action string, details any) {
	if self.auditor == nil {
		return
	}
	self.auditor.Record(actor.UserID, entity, entityID, action, details)
}

func (self *Coordinator) countAllocationError(err error) {
	switch {
	case errors.Is(err, model.ErrInvalidSelection):
		self.monitor.GetReport().Allocator.Errors.SelectionRejected.Inc()
	case errors.Is(err, model.ErrConflict):
		self.monitor.GetReport().Allocator.Errors.ConflictRejected.Inc()
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrForbidden),
		errors.Is(err, model.ErrNotFound):
		// Caller mistakes, not worth a counter
	default:
		self.monitor.GetReport().Allocator.Errors.DbError.Inc()
	}
}

// TakeCount is how many units an allocation claims: never more than
// selected, never more than the request still needs.
func TakeCount(selected, requested int) int {
	if selected < requested {
		return selected
	}
	return requested
}

func UniqueIDs(ids []uuid.UUID) (out []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return
}

func UnitIDs(units []*model.Unit) (out []uuid.UUID) {
	out = make([]uuid.UUID, 0, len(units))
	for _, unit := range units {
		out = append(out, unit.ID)
	}
	return
}

func noteOrNull(note string) sql.NullString {
	return sql.NullString{String: note, Valid: note != ""}
}

// lockOwnedAvailable locks the named units FOR UPDATE and verifies every one
// belongs to facilityID and is available. Units come back expiry-ascending.
func (self *Coordinator) lockOwnedAvailable(tx *gorm.DB, facilityID uuid.UUID, ids []uuid.UUID) (units []*model.Unit, err error) {
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("expires_at ASC").
		Find(&units).
		Error
	if err != nil {
		return nil, err
	}
	if len(units) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d units not found", model.ErrInvalidSelection, len(ids)-len(units), len(ids))
	}
	for _, unit := range units {
		if unit.FacilityID != facilityID {
			return nil, fmt.Errorf("%w: unit %s belongs to another facility", model.ErrInvalidSelection, unit.TrackingCode)
		}
		if unit.State != model.UnitStateAvailable {
			return nil, fmt.Errorf("%w: unit %s is %s", model.ErrInvalidSelection, unit.TrackingCode, unit.State)
		}
	}
	return
}

func (self *Coordinator) createOfferItems(tx *gorm.DB, offerID uuid.UUID, units []*model.Unit) error {
	items := make([]*model.OfferItem, 0, len(units))
	for _, unit := range units {
		items = append(items, &model.OfferItem{
			ID:      uuid.New(),
			OfferID: offerID,
			UnitID:  unit.ID,
		})
	}
	return tx.Create(&items).Error
}

func (self *Coordinator) createTransferItems(tx *gorm.DB, transferID uuid.UUID, units []*model.Unit) error {
	items := make([]*model.TransferItem, 0, len(units))
	for _, unit := range units {
		items = append(items, &model.TransferItem{
			ID:         uuid.New(),
			TransferID: transferID,
			UnitID:     unit.ID,
		})
	}
	return tx.Create(&items).Error
}

func (self *Coordinator) setUnitStates(tx *gorm.DB, ids []uuid.UUID, state model.UnitState) error {
	return tx.Model(&model.Unit{}).
		Where("id IN ?", ids).
		Update("state", state).
		Error
}
