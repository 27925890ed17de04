package allocate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/utils/model"
)

type OfferResult struct {
	Offer *model.Offer
	Units []*model.Unit

	// Pending requests at other facilities this offer could fully satisfy
	MatchingRequests int
}

// CreateOffer publishes the actor's units for other facilities to claim. All
// named units must belong to the actor's facility and be available; they are
// reserved under the new open offer in the same transaction.
func (self *Coordinator) CreateOffer(ctx context.Context, actor model.Actor, unitIDs []uuid.UUID, note string) (out *OfferResult, err error) {
	ids := UniqueIDs(unitIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: offer needs at least one unit", model.ErrInvalidInput)
	}

	var (
		offer              *model.Offer
		units              []*model.Unit
		matching           []*model.Request
		notifiedFacilities []uuid.UUID
	)

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		units, err = self.lockOwnedAvailable(tx, actor.FacilityID, ids)
		if err != nil {
			return
		}

		offer = &model.Offer{
			ID:         uuid.New(),
			FacilityID: actor.FacilityID,
			State:      model.OfferStateOpen,
			Note:       noteOrNull(note),
		}
		err = tx.Create(offer).Error
		if err != nil {
			return
		}

		err = self.createOfferItems(tx, offer.ID, units)
		if err != nil {
			return
		}

		err = self.setUnitStates(tx, UnitIDs(units), model.UnitStateReserved)
		if err != nil {
			return
		}

		matching, err = self.matchingRequests(tx, units, actor.FacilityID)
		return
	})
	if err != nil {
		self.countAllocationError(err)
		return
	}

	seen := make(map[uuid.UUID]struct{})
	for _, request := range matching {
		if _, ok := seen[request.FacilityID]; ok {
			continue
		}
		seen[request.FacilityID] = struct{}{}
		notifiedFacilities = append(notifiedFacilities, request.FacilityID)
	}

	self.monitor.GetReport().Allocator.State.OffersCreated.Inc()
	self.monitor.GetReport().Allocator.State.UnitsReserved.Add(uint64(len(units)))

	self.record(actor, audit.EntityOffer, offer.ID, audit.ActionCreate, map[string]any{
		"unit_ids": ids,
	})
	self.emit(&notify.Event{
		Kind:        notify.KindOfferCreated,
		EntityType:  audit.EntityOffer,
		EntityID:    offer.ID,
		FacilityIDs: notifiedFacilities,
		UnitIDs:     UnitIDs(units),
		Message:     fmt.Sprintf("New offer of %d units", len(units)),
	})

	return &OfferResult{
		Offer:            offer,
		Units:            units,
		MatchingRequests: len(matching),
	}, nil
}

// Precheck runs CreateOffer's validation and match lookup without writing
// anything. Used by the gateway to preview an offer.
func (self *Coordinator) Precheck(ctx context.Context, actor model.Actor, unitIDs []uuid.UUID) (matching []*model.Request, err error) {
	ids := UniqueIDs(unitIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: offer needs at least one unit", model.ErrInvalidInput)
	}

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		var units []*model.Unit
		err = tx.Where("id IN ?", ids).Order("expires_at ASC").Find(&units).Error
		if err != nil {
			return
		}
		if len(units) != len(ids) {
			return fmt.Errorf("%w: %d of %d units not found", model.ErrInvalidSelection, len(ids)-len(units), len(ids))
		}
		for _, unit := range units {
			if unit.FacilityID != actor.FacilityID {
				return fmt.Errorf("%w: unit %s belongs to another facility", model.ErrInvalidSelection, unit.TrackingCode)
			}
			if unit.State != model.UnitStateAvailable {
				return fmt.Errorf("%w: unit %s is %s", model.ErrInvalidSelection, unit.TrackingCode, unit.State)
			}
		}

		matching, err = self.matchingRequests(tx, units, actor.FacilityID)
		return
	})
	if err != nil {
		self.countAllocationError(err)
	}
	return
}

// matchingRequests collects the pending requests an offer of these units
// could fully satisfy. Units need not be homogeneous, each attribute group
// is matched against its own unit count.
func (self *Coordinator) matchingRequests(tx *gorm.DB, units []*model.Unit, excludeFacilityID uuid.UUID) (out []*model.Request, err error) {
	groups := make(map[model.Spec]int)
	order := make([]model.Spec, 0, 1)
	for _, unit := range units {
		if _, ok := groups[unit.Spec()]; !ok {
			order = append(order, unit.Spec())
		}
		groups[unit.Spec()]++
	}

	for _, spec := range order {
		requests, err := self.matcher.PendingRequests(tx, spec, groups[spec], excludeFacilityID)
		if err != nil {
			return nil, err
		}
		out = append(out, requests...)
	}
	return
}
