package allocate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/utils/model"
)

// UpdateOfferState applies a manual state change to the actor's own offer,
// adjusting inventory to match: cancelling or closing frees the linked
// units, reopening re-reserves them. Offers with units tied to an active
// transfer cannot be changed manually, the transfer governs those units.
func (self *Coordinator) UpdateOfferState(ctx context.Context, actor model.Actor, offerID uuid.UUID, next model.OfferState) (offer *model.Offer, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		offer, err = self.lockOffer(tx, offerID)
		if err != nil {
			return
		}
		if offer.FacilityID != actor.FacilityID {
			return fmt.Errorf("%w: offer belongs to another facility", model.ErrForbidden)
		}
		if !offer.State.CanTransitionTo(next) {
			return fmt.Errorf("%w: offer cannot go from %s to %s", model.ErrInvalidState, offer.State, next)
		}

		units, err := self.lockOfferUnits(tx, offer.ID)
		if err != nil {
			return err
		}

		active, err := self.matcher.ActiveTransferUnitIDs(tx, UnitIDs(units))
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return fmt.Errorf("%w: offer has units in an active transfer", model.ErrConflict)
		}

		switch next {
		case model.OfferStateClosed, model.OfferStateCancelled:
			var freed []uuid.UUID
			for _, unit := range units {
				if unit.State == model.UnitStateReserved {
					freed = append(freed, unit.ID)
				}
			}
			if len(freed) > 0 {
				err = self.setUnitStates(tx, freed, model.UnitStateAvailable)
				if err != nil {
					return err
				}
			}
		case model.OfferStateOpen:
			// Reopen: every linked unit must still be claimable
			for _, unit := range units {
				if unit.State != model.UnitStateAvailable {
					return fmt.Errorf("%w: unit %s is %s, offer cannot reopen", model.ErrConflict, unit.TrackingCode, unit.State)
				}
			}
			err = self.setUnitStates(tx, UnitIDs(units), model.UnitStateReserved)
			if err != nil {
				return err
			}
		}

		offer.State = next
		return tx.Model(offer).Update("state", next).Error
	})
	if err != nil {
		self.countAllocationError(err)
		return
	}

	self.record(actor, audit.EntityOffer, offer.ID, audit.ActionStateChange, map[string]any{
		"state": offer.State,
	})
	self.emit(&notify.Event{
		Kind:       notify.KindOfferStateChanged,
		EntityType: audit.EntityOffer,
		EntityID:   offer.ID,
		Message:    fmt.Sprintf("Offer is now %s", offer.State),
	})
	return
}

// UpdateRequestState applies a manual state change to the actor's own
// request. Only cancellation and rejection can be requested manually,
// acceptance is driven by allocations.
func (self *Coordinator) UpdateRequestState(ctx context.Context, actor model.Actor, requestID uuid.UUID, next model.RequestState) (request *model.Request, err error) {
	if next != model.RequestStateCancelled && next != model.RequestStateRejected {
		return nil, fmt.Errorf("%w: requests can only be cancelled or rejected manually", model.ErrInvalidInput)
	}

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		request, err = self.lockRequest(tx, requestID)
		if err != nil {
			return
		}
		if request.FacilityID != actor.FacilityID {
			return fmt.Errorf("%w: request belongs to another facility", model.ErrForbidden)
		}
		if !request.State.CanTransitionTo(next) {
			return fmt.Errorf("%w: request cannot go from %s to %s", model.ErrInvalidState, request.State, next)
		}

		request.State = next
		return tx.Model(request).Update("state", next).Error
	})
	if err != nil {
		self.countAllocationError(err)
		return
	}

	self.record(actor, audit.EntityRequest, request.ID, audit.ActionStateChange, map[string]any{
		"state": request.State,
	})
	self.emit(&notify.Event{
		Kind:        notify.KindRequestStateChanged,
		EntityType:  audit.EntityRequest,
		EntityID:    request.ID,
		FacilityIDs: []uuid.UUID{request.FacilityID},
		Message:     fmt.Sprintf("Request is now %s", request.State),
	})
	return
}

func (self *Coordinator) lockOfferUnits(tx *gorm.DB, offerID uuid.UUID) (units []*model.Unit, err error) {
	err = tx.Model(&model.Unit{}).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: model.TableUnit}}).
		Joins("JOIN offer_items ON offer_items.unit_id = units.id").
		Where("offer_items.offer_id = ?", offerID).
		Order("units.expires_at ASC").
		Find(&units).
		Error
	return
}
