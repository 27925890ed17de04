package allocate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/audit"
	"hemolink/src/match"
	"hemolink/src/notify"
	"hemolink/src/utils/model"
)

type AllocationResult struct {
	Transfer *model.Transfer
	Request  *model.Request
	Offer    *model.Offer
	Units    []*model.Unit
}

// AllocateFromRequest ships the actor's units against another facility's
// pending request. The taken units are reserved under a closed shadow offer
// and a created transfer in the same transaction, so a racing claim on the
// same units loses at the row lock.
func (self *Coordinator) AllocateFromRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, unitIDs []uuid.UUID, note string) (out *AllocationResult, err error) {
	ids := UniqueIDs(unitIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: allocation needs at least one unit", model.ErrInvalidInput)
	}

	var (
		request  *model.Request
		offer    *model.Offer
		transfer *model.Transfer
		taken    []*model.Unit
		accepted bool
	)

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		request, err = self.lockRequest(tx, requestID)
		if err != nil {
			return
		}
		if request.FacilityID == actor.FacilityID {
			return fmt.Errorf("%w: cannot allocate to the facility's own request", model.ErrForbidden)
		}
		if request.State != model.RequestStatePending {
			return fmt.Errorf("%w: request is %s", model.ErrConflict, request.State)
		}

		units, err := self.lockOwnedAvailable(tx, actor.FacilityID, ids)
		if err != nil {
			return err
		}
		if !match.UnitsHomogeneous(units, request.Spec()) {
			return fmt.Errorf("%w: units do not match the requested specification", model.ErrInvalidSelection)
		}

		take := TakeCount(len(units), request.Quantity)
		if take == 0 {
			return fmt.Errorf("%w: request needs no units", model.ErrConflict)
		}
		// Units come back expiry-ascending, soonest-expiring go first
		taken = units[:take]

		offer = &model.Offer{
			ID:         uuid.New(),
			FacilityID: actor.FacilityID,
			State:      model.OfferStateClosed,
			Note:       noteOrNull(note),
			Shadow:     true,
		}
		err = tx.Create(offer).Error
		if err != nil {
			return
		}
		err = self.createOfferItems(tx, offer.ID, taken)
		if err != nil {
			return
		}

		err = self.setUnitStates(tx, UnitIDs(taken), model.UnitStateReserved)
		if err != nil {
			return
		}

		transfer = &model.Transfer{
			ID:               uuid.New(),
			RequestID:        request.ID,
			OfferID:          uuid.NullUUID{UUID: offer.ID, Valid: true},
			OriginFacilityID: actor.FacilityID,
			DestFacilityID:   request.FacilityID,
			State:            model.TransferStateCreated,
		}
		err = tx.Create(transfer).Error
		if err != nil {
			return
		}
		err = self.createTransferItems(tx, transfer.ID, taken)
		if err != nil {
			return
		}

		accepted = take == request.Quantity
		request.Quantity -= take
		if accepted {
			request.State = model.RequestStateAccepted
		}
		return tx.Model(request).
			Updates(map[string]any{"quantity": request.Quantity, "state": request.State}).
			Error
	})
	if err != nil {
		self.countAllocationError(err)
		return
	}

	self.monitor.GetReport().Allocator.State.TransfersFromRequest.Inc()
	self.monitor.GetReport().Allocator.State.ShadowOffersCreated.Inc()
	self.monitor.GetReport().Allocator.State.UnitsReserved.Add(uint64(len(taken)))

	self.record(actor, audit.EntityTransfer, transfer.ID, audit.ActionCreate, map[string]any{
		"request_id": request.ID,
		"offer_id":   offer.ID,
		"unit_ids":   UnitIDs(taken),
	})
	self.emit(&notify.Event{
		Kind:        notify.KindTransferCreated,
		EntityType:  audit.EntityTransfer,
		EntityID:    transfer.ID,
		FacilityIDs: []uuid.UUID{request.FacilityID},
		UnitIDs:     UnitIDs(taken),
		Message:     fmt.Sprintf("%d units allocated to your request", len(taken)),
	})
	if accepted {
		self.record(actor, audit.EntityRequest, request.ID, audit.ActionStateChange, map[string]any{
			"state": request.State,
		})
		self.emit(&notify.Event{
			Kind:        notify.KindRequestStateChanged,
			EntityType:  audit.EntityRequest,
			EntityID:    request.ID,
			FacilityIDs: []uuid.UUID{request.FacilityID},
			Message:     "Request fully allocated",
		})
	}

	return &AllocationResult{
		Transfer: transfer,
		Request:  request,
		Offer:    offer,
		Units:    taken,
	}, nil
}

func (self *Coordinator) lockRequest(tx *gorm.DB, requestID uuid.UUID) (request *model.Request, err error) {
	request = new(model.Request)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(request, "id = ?", requestID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request %s", model.ErrNotFound, requestID)
	}
	return
}
