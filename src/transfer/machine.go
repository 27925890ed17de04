package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/utils/logger"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
)

// Machine advances transfers through created -> in_transit -> received, with
// a single divert to cancelled. Every transition locks the transfer row
// first, so a second concurrent call on an advanced transfer fails its state
// guard instead of applying twice.
type Machine struct {
	log *logrus.Entry

	db       *gorm.DB
	monitor  monitoring.Monitor
	notifier *notify.Notifier
	auditor  *audit.Sink
}

func NewMachine() (self *Machine) {
	self = new(Machine)
	self.log = logger.NewSublogger("transfer")
	return
}

func (self *Machine) WithDatabase(db *gorm.DB) *Machine {
	self.db = db
	return self
}

func (self *Machine) WithMonitor(monitor monitoring.Monitor) *Machine {
	self.monitor = monitor
	return self
}

func (self *Machine) WithNotifier(notifier *notify.Notifier) *Machine {
	self.notifier = notifier
	return self
}

func (self *Machine) WithAuditor(auditor *audit.Sink) *Machine {
	self.auditor = auditor
	return self
}

func (self *Machine) emit(event *notify.Event) {
	if self.notifier == nil {
		return
	}
	self.notifier.Enqueue(event)
}

func (self *Machine) record(userID uuid.NullUUID, transferID uuid.UUID, action string, details any) {
	if self.auditor == nil {
		return
	}
	self.auditor.Record(userID, audit.EntityTransfer, transferID, action, details)
}

func (self *Machine) countError(err error) {
	switch {
	case errors.Is(err, model.ErrForbidden):
		self.monitor.GetReport().Transfer.Errors.ForbiddenRejected.Inc()
	case errors.Is(err, model.ErrInvalidState):
		self.monitor.GetReport().Transfer.Errors.InvalidStateRejected.Inc()
	case errors.Is(err, model.ErrNotFound):
		// not counted
	default:
		self.monitor.GetReport().Transfer.Errors.DbError.Inc()
	}
}

// Send dispatches a created transfer. Units go in transit, custody stays at
// the origin until reception.
func (self *Machine) Send(ctx context.Context, actor model.Actor, transferID uuid.UUID) (transfer *model.Transfer, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		transfer, err = self.lockTransfer(tx, transferID)
		if err != nil {
			return
		}
		err = CheckSend(transfer, actor.FacilityID)
		if err != nil {
			return
		}

		err = self.setLinkedUnitStates(tx, transfer.ID, model.UnitStateInTransit, uuid.Nil)
		if err != nil {
			return
		}

		transfer.State = model.TransferStateInTransit
		transfer.SentAt = sql.NullTime{Time: time.Now(), Valid: true}
		return tx.Model(transfer).
			Updates(map[string]any{"state": transfer.State, "sent_at": transfer.SentAt}).
			Error
	})
	if err != nil {
		self.countError(err)
		return
	}

	self.monitor.GetReport().Transfer.State.Sent.Inc()
	self.record(actor.UserID, transfer.ID, audit.ActionStateChange, map[string]any{"state": transfer.State})
	self.emit(&notify.Event{
		Kind:        notify.KindTransferStateChanged,
		EntityType:  audit.EntityTransfer,
		EntityID:    transfer.ID,
		FacilityIDs: []uuid.UUID{transfer.DestFacilityID},
		Message:     "Transfer is on its way",
	})
	return
}

// Receive completes an in-transit transfer. Units become transferred and
// custody moves to the destination.
func (self *Machine) Receive(ctx context.Context, actor model.Actor, transferID uuid.UUID) (transfer *model.Transfer, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		transfer, err = self.lockTransfer(tx, transferID)
		if err != nil {
			return
		}
		err = CheckReceive(transfer, actor.FacilityID)
		if err != nil {
			return
		}

		err = self.setLinkedUnitStates(tx, transfer.ID, model.UnitStateTransferred, transfer.DestFacilityID)
		if err != nil {
			return
		}

		transfer.State = model.TransferStateReceived
		transfer.ReceivedAt = sql.NullTime{Time: time.Now(), Valid: true}
		return tx.Model(transfer).
			Updates(map[string]any{"state": transfer.State, "received_at": transfer.ReceivedAt}).
			Error
	})
	if err != nil {
		self.countError(err)
		return
	}

	self.monitor.GetReport().Transfer.State.Received.Inc()
	self.record(actor.UserID, transfer.ID, audit.ActionStateChange, map[string]any{"state": transfer.State})
	self.emit(&notify.Event{
		Kind:        notify.KindTransferStateChanged,
		EntityType:  audit.EntityTransfer,
		EntityID:    transfer.ID,
		FacilityIDs: []uuid.UUID{transfer.OriginFacilityID},
		Message:     "Transfer received",
	})
	return
}

// Cancel aborts a created or in-transit transfer. Units revert to the
// origin: back to reserved under the linked offer, which reopens when
// closed, or released to available when the offer was cancelled in the
// meantime and cannot take them back.
func (self *Machine) Cancel(ctx context.Context, actor model.Actor, transferID uuid.UUID) (transfer *model.Transfer, err error) {
	var reopened bool
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		transfer, err = self.lockTransfer(tx, transferID)
		if err != nil {
			return
		}
		err = CheckCancel(transfer, actor.FacilityID)
		if err != nil {
			return
		}
		reopened, err = self.cancel(tx, transfer)
		return
	})
	if err != nil {
		self.countError(err)
		return
	}

	self.afterCancel(actor.UserID, transfer, reopened, audit.ActionStateChange)
	return
}

// ForceCancel is Cancel without the role guard. The watchdog sweeper uses it
// on transfers stuck past their deadline.
func (self *Machine) ForceCancel(ctx context.Context, transferID uuid.UUID, reason string) (transfer *model.Transfer, err error) {
	var reopened bool
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		transfer, err = self.lockTransfer(tx, transferID)
		if err != nil {
			return
		}
		err = CheckForceCancel(transfer)
		if err != nil {
			return
		}
		reopened, err = self.cancel(tx, transfer)
		return
	})
	if err != nil {
		self.countError(err)
		return
	}

	self.log.WithField("transfer_id", transfer.ID).WithField("reason", reason).Info("Transfer force-cancelled")
	self.afterCancel(uuid.NullUUID{}, transfer, reopened, audit.ActionAutoCancel)
	return
}

func (self *Machine) cancel(tx *gorm.DB, transfer *model.Transfer) (reopened bool, err error) {
	err = self.setLinkedUnitStates(tx, transfer.ID, model.UnitStateReserved, transfer.OriginFacilityID)
	if err != nil {
		return
	}

	transfer.State = model.TransferStateCancelled
	transfer.CancelledAt = sql.NullTime{Time: time.Now(), Valid: true}
	err = tx.Model(transfer).
		Updates(map[string]any{"state": transfer.State, "cancelled_at": transfer.CancelledAt}).
		Error
	if err != nil {
		return
	}

	outcome := offerGone
	if transfer.OfferID.Valid {
		outcome, err = self.settleOffer(tx, transfer.OfferID.UUID)
		if err != nil {
			return
		}
	}

	if outcome == offerGone {
		// A cancelled offer has nothing to hold the reservation, units go
		// straight back into circulation
		err = self.setLinkedUnitStates(tx, transfer.ID, model.UnitStateAvailable, uuid.Nil)
		if err != nil {
			return
		}
	}
	return outcome == offerReopens, nil
}

// What the linked offer does with the units a cancelled transfer returns
type offerOutcome int

const (
	// Offer is still open, the returned units stay reserved under it
	offerKeepsUnits offerOutcome = iota
	// Offer was closed and takes the units back by reopening
	offerReopens
	// Offer was cancelled in the meantime, the units must be released
	offerGone
)

func outcomeFor(state model.OfferState, reservedLinked int64) offerOutcome {
	switch {
	case state == model.OfferStateOpen:
		return offerKeepsUnits
	case state == model.OfferStateClosed && reservedLinked > 0:
		return offerReopens
	default:
		return offerGone
	}
}

// settleOffer decides where the units reverted by a transfer cancel land,
// reopening the linked offer when it can take them back.
func (self *Machine) settleOffer(tx *gorm.DB, offerID uuid.UUID) (outcome offerOutcome, err error) {
	var offer model.Offer
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&offer, "id = ?", offerID).
		Error
	if err != nil {
		return
	}

	var reserved int64
	err = tx.Model(&model.Unit{}).
		Joins("JOIN offer_items ON offer_items.unit_id = units.id").
		Where("offer_items.offer_id = ?", offerID).
		Where("units.state = ?", model.UnitStateReserved).
		Count(&reserved).
		Error
	if err != nil {
		return
	}

	outcome = outcomeFor(offer.State, reserved)
	if outcome == offerReopens {
		err = tx.Model(&offer).Update("state", model.OfferStateOpen).Error
	}
	return
}

func (self *Machine) afterCancel(userID uuid.NullUUID, transfer *model.Transfer, reopened bool, action string) {
	self.monitor.GetReport().Transfer.State.Cancelled.Inc()
	if reopened {
		self.monitor.GetReport().Transfer.State.OffersReopened.Inc()
	}

	self.record(userID, transfer.ID, action, map[string]any{
		"state":          transfer.State,
		"offer_reopened": reopened,
	})
	self.emit(&notify.Event{
		Kind:        notify.KindTransferStateChanged,
		EntityType:  audit.EntityTransfer,
		EntityID:    transfer.ID,
		FacilityIDs: []uuid.UUID{transfer.OriginFacilityID, transfer.DestFacilityID},
		Message:     "Transfer cancelled, units returned to the origin facility",
	})
}

func (self *Machine) lockTransfer(tx *gorm.DB, transferID uuid.UUID) (transfer *model.Transfer, err error) {
	transfer = new(model.Transfer)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(transfer, "id = ?", transferID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: transfer %s", model.ErrNotFound, transferID)
	}
	return
}

// setLinkedUnitStates updates every unit in the transfer's immutable item
// set. A zero facility id leaves custody unchanged.
func (self *Machine) setLinkedUnitStates(tx *gorm.DB, transferID uuid.UUID, state model.UnitState, facilityID uuid.UUID) error {
	updates := map[string]any{"state": state}
	if facilityID != uuid.Nil {
		updates["facility_id"] = facilityID
	}
	linked := tx.Model(&model.TransferItem{}).
		Select("unit_id").
		Where("transfer_id = ?", transferID)
	return tx.Model(&model.Unit{}).
		Where("id IN (?)", linked).
		Updates(updates).
		Error
}
