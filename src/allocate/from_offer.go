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

// AllocateFromOffer claims units from another facility's open offer for the
// actor's own best-matching pending request, or for a synthesized shadow
// request when none is pending. Claimed units are already reserved under the
// offer; the offer closes only when nothing claimable remains linked.
func (self *Coordinator) AllocateFromOffer(ctx context.Context, actor model.Actor, offerID uuid.UUID, unitIDs []uuid.UUID, note string) (out *AllocationResult, err error) {
	var (
		offer       *model.Offer
		request     *model.Request
		transfer    *model.Transfer
		taken       []*model.Unit
		offerClosed bool
	)

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		offer, err = self.lockOffer(tx, offerID)
		if err != nil {
			return
		}
		if offer.FacilityID == actor.FacilityID {
			return fmt.Errorf("%w: cannot claim the facility's own offer", model.ErrForbidden)
		}
		if offer.State != model.OfferStateOpen {
			return fmt.Errorf("%w: offer is %s", model.ErrConflict, offer.State)
		}

		claimable, err := self.lockClaimableUnits(tx, offer.ID)
		if err != nil {
			return err
		}

		selected, err := selectUnits(claimable, UniqueIDs(unitIDs))
		if err != nil {
			return err
		}

		spec := selected[0].Spec()
		if !match.UnitsHomogeneous(selected, spec) {
			return fmt.Errorf("%w: selected units are not homogeneous", model.ErrInvalidSelection)
		}

		request, err = self.matcher.BestPendingRequest(tx, spec, len(selected), actor.FacilityID)
		if err != nil {
			return err
		}
		if request == nil {
			request = &model.Request{
				ID:            uuid.New(),
				FacilityID:    actor.FacilityID,
				ComponentType: spec.ComponentType,
				BloodGroup:    spec.BloodGroup,
				Rh:            spec.Rh,
				Filtered:      spec.Filtered,
				Irradiated:    spec.Irradiated,
				Quantity:      len(selected),
				Note:          noteOrNull(note),
				Shadow:        true,
				State:         model.RequestStatePending,
				CreatedByID:   actor.UserID,
			}
			err = tx.Create(request).Error
			if err != nil {
				return err
			}
			self.monitor.GetReport().Allocator.State.ShadowRequestsCreated.Inc()
		}

		// The request is fully satisfiable by construction
		take := request.Quantity
		taken = selected[:take]

		transfer = &model.Transfer{
			ID:               uuid.New(),
			RequestID:        request.ID,
			OfferID:          uuid.NullUUID{UUID: offer.ID, Valid: true},
			OriginFacilityID: offer.FacilityID,
			DestFacilityID:   actor.FacilityID,
			State:            model.TransferStateCreated,
		}
		err = tx.Create(transfer).Error
		if err != nil {
			return err
		}
		err = self.createTransferItems(tx, transfer.ID, taken)
		if err != nil {
			return err
		}

		request.Quantity = 0
		request.State = model.RequestStateAccepted
		err = tx.Model(request).
			Updates(map[string]any{"quantity": 0, "state": model.RequestStateAccepted}).
			Error
		if err != nil {
			return err
		}

		if len(claimable)-len(taken) == 0 {
			offerClosed = true
			offer.State = model.OfferStateClosed
			err = tx.Model(offer).Update("state", model.OfferStateClosed).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		self.countAllocationError(err)
		return
	}

	self.monitor.GetReport().Allocator.State.TransfersFromOffer.Inc()

	self.record(actor, audit.EntityTransfer, transfer.ID, audit.ActionCreate, map[string]any{
		"request_id": request.ID,
		"offer_id":   offer.ID,
		"unit_ids":   UnitIDs(taken),
	})
	self.emit(&notify.Event{
		Kind:        notify.KindTransferCreated,
		EntityType:  audit.EntityTransfer,
		EntityID:    transfer.ID,
		FacilityIDs: []uuid.UUID{offer.FacilityID},
		UnitIDs:     UnitIDs(taken),
		Message:     fmt.Sprintf("%d units claimed from your offer", len(taken)),
	})
	if offerClosed {
		self.record(actor, audit.EntityOffer, offer.ID, audit.ActionStateChange, map[string]any{
			"state": offer.State,
		})
		self.emit(&notify.Event{
			Kind:        notify.KindOfferStateChanged,
			EntityType:  audit.EntityOffer,
			EntityID:    offer.ID,
			FacilityIDs: []uuid.UUID{offer.FacilityID},
			Message:     "Offer fully claimed and closed",
		})
	}

	return &AllocationResult{
		Transfer: transfer,
		Request:  request,
		Offer:    offer,
		Units:    taken,
	}, nil
}

func (self *Coordinator) lockOffer(tx *gorm.DB, offerID uuid.UUID) (offer *model.Offer, err error) {
	offer = new(model.Offer)
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(offer, "id = ?", offerID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: offer %s", model.ErrNotFound, offerID)
	}
	return
}

// lockClaimableUnits locks the offer's units and returns the reserved ones
// not already tied to an active transfer, expiry-ascending.
func (self *Coordinator) lockClaimableUnits(tx *gorm.DB, offerID uuid.UUID) (out []*model.Unit, err error) {
	units, err := self.lockOfferUnits(tx, offerID)
	if err != nil {
		return
	}

	active, err := self.matcher.ActiveTransferUnitIDs(tx, UnitIDs(units))
	if err != nil {
		return
	}

	for _, unit := range units {
		if unit.State != model.UnitStateReserved {
			continue
		}
		if _, ok := active[unit.ID]; ok {
			continue
		}
		out = append(out, unit)
	}
	return
}

// selectUnits narrows the claimable set to the explicitly requested ids, or
// returns all of it when none are named. Naming a unit that is not
// claimable rejects the whole selection.
func selectUnits(claimable []*model.Unit, ids []uuid.UUID) (out []*model.Unit, err error) {
	if len(claimable) == 0 {
		return nil, fmt.Errorf("%w: offer has no claimable units", model.ErrInvalidSelection)
	}
	if len(ids) == 0 {
		return claimable, nil
	}

	byID := make(map[uuid.UUID]*model.Unit, len(claimable))
	for _, unit := range claimable {
		byID[unit.ID] = unit
	}
	for _, id := range ids {
		unit, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unit %s is not claimable from this offer", model.ErrInvalidSelection, id)
		}
		out = append(out, unit)
	}
	return
}
