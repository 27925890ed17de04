package allocate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hemolink/src/audit"
	"hemolink/src/notify"
	"hemolink/src/utils/model"
)

// UnitInput describes one drawn unit being registered into inventory.
type UnitInput struct {
	Spec      model.Spec
	DrawnAt   time.Time
	ExpiresAt time.Time
}

// RequestInput describes a new demand for units.
type RequestInput struct {
	Spec     model.Spec
	Quantity int
	Urgent   bool
	Note     string
}

type RequestResult struct {
	Request *model.Request

	// Open offers at other facilities that could fully satisfy this request
	MatchingOffers int64
}

// CreateUnits registers drawn units as available inventory at the actor's
// facility.
func (self *Coordinator) CreateUnits(ctx context.Context, actor model.Actor, inputs []UnitInput) (units []*model.Unit, err error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: nothing to register", model.ErrInvalidInput)
	}

	now := time.Now()
	units = make([]*model.Unit, 0, len(inputs))
	for _, input := range inputs {
		if input.Spec.ComponentType == "" || input.Spec.BloodGroup == "" || input.Spec.Rh == "" {
			return nil, fmt.Errorf("%w: component type, blood group and rh are required", model.ErrInvalidInput)
		}
		if input.DrawnAt.IsZero() || input.ExpiresAt.IsZero() {
			return nil, fmt.Errorf("%w: drawn and expiry timestamps are required", model.ErrInvalidInput)
		}
		if !input.ExpiresAt.After(input.DrawnAt) {
			return nil, fmt.Errorf("%w: unit expires before it was drawn", model.ErrInvalidInput)
		}
		if input.ExpiresAt.Before(now) {
			return nil, fmt.Errorf("%w: unit is already expired", model.ErrInvalidInput)
		}

		units = append(units, &model.Unit{
			ID:            uuid.New(),
			ComponentType: input.Spec.ComponentType,
			BloodGroup:    input.Spec.BloodGroup,
			Rh:            input.Spec.Rh,
			Filtered:      input.Spec.Filtered,
			Irradiated:    input.Spec.Irradiated,
			DrawnAt:       input.DrawnAt,
			ExpiresAt:     input.ExpiresAt,
			TrackingCode:  model.NewTrackingCode(),
			FacilityID:    actor.FacilityID,
			State:         model.UnitStateAvailable,
			CreatedByID:   actor.UserID,
		})
	}

	err = self.db.WithContext(ctx).Create(&units).Error
	if err != nil {
		self.monitor.GetReport().Allocator.Errors.DbError.Inc()
		return nil, err
	}

	for _, unit := range units {
		self.record(actor, audit.EntityUnit, unit.ID, audit.ActionCreate, map[string]any{
			"tracking_code": unit.TrackingCode,
			"spec":          unit.Spec(),
		})
	}
	return
}

// CreateRequest records a pending demand and reports how many open offers
// elsewhere could satisfy it right now.
func (self *Coordinator) CreateRequest(ctx context.Context, actor model.Actor, input RequestInput) (out *RequestResult, err error) {
	if input.Spec.ComponentType == "" || input.Spec.BloodGroup == "" || input.Spec.Rh == "" {
		return nil, fmt.Errorf("%w: component type, blood group and rh are required", model.ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}

	request := &model.Request{
		ID:            uuid.New(),
		FacilityID:    actor.FacilityID,
		ComponentType: input.Spec.ComponentType,
		BloodGroup:    input.Spec.BloodGroup,
		Rh:            input.Spec.Rh,
		Filtered:      input.Spec.Filtered,
		Irradiated:    input.Spec.Irradiated,
		Quantity:      input.Quantity,
		Urgent:        input.Urgent,
		Note:          noteOrNull(input.Note),
		State:         model.RequestStatePending,
		CreatedByID:   actor.UserID,
	}

	var (
		matchCount  int64
		offerOwners []uuid.UUID
	)
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		err = tx.Create(request).Error
		if err != nil {
			return
		}
		matchCount, err = self.matcher.OpenOfferCount(tx, input.Spec, input.Quantity, actor.FacilityID)
		if err != nil {
			return
		}
		offerOwners, err = self.matcher.OpenOfferFacilities(tx, input.Spec, input.Quantity, actor.FacilityID)
		return
	})
	if err != nil {
		self.monitor.GetReport().Allocator.Errors.DbError.Inc()
		return nil, err
	}

	self.record(actor, audit.EntityRequest, request.ID, audit.ActionCreate, map[string]any{
		"spec":     input.Spec,
		"quantity": input.Quantity,
		"urgent":   input.Urgent,
	})
	self.emit(&notify.Event{
		Kind:        notify.KindRequestCreated,
		EntityType:  audit.EntityRequest,
		EntityID:    request.ID,
		FacilityIDs: offerOwners,
		Message:     fmt.Sprintf("New request for %d units of %s", input.Quantity, input.Spec),
	})

	return &RequestResult{
		Request:        request,
		MatchingOffers: matchCount,
	}, nil
}
