package match

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/utils/logger"
	"hemolink/src/utils/model"
)

// Matcher answers compatibility questions between units, offers and
// requests. All queries run on the transaction handle passed in, so callers
// decide the locking scope.
type Matcher struct {
	log *logrus.Entry
}

func NewMatcher() (self *Matcher) {
	self = new(Matcher)
	self.log = logger.NewSublogger("matcher")
	return
}

func (self *Matcher) pendingQuery(tx *gorm.DB, spec model.Spec, maxQuantity int) *gorm.DB {
	query := tx.Model(&model.Request{}).
		Where("state = ?", model.RequestStatePending).
		Where("component_type = ? AND blood_group = ? AND rh = ? AND filtered = ? AND irradiated = ?",
			spec.ComponentType, spec.BloodGroup, spec.Rh, spec.Filtered, spec.Irradiated)
	if maxQuantity > 0 {
		query = query.Where("quantity <= ?", maxQuantity)
	}
	return query
}

// PendingRequests lists pending requests whose attributes match spec exactly
// and that could be fully satisfied by maxQuantity units, skipping requests
// owned by excludeFacilityID. Urgent requests come first, older before newer
// within the same urgency. maxQuantity <= 0 disables the cap.
func (self *Matcher) PendingRequests(tx *gorm.DB, spec model.Spec, maxQuantity int, excludeFacilityID uuid.UUID) (out []*model.Request, err error) {
	err = self.pendingQuery(tx, spec, maxQuantity).
		Where("facility_id <> ?", excludeFacilityID).
		Order("urgent DESC, created_at ASC").
		Find(&out).
		Error
	return
}

// BestPendingRequest locks and returns the first of facilityID's own pending
// requests that spec matches and that maxQuantity units fully satisfy, or
// nil when none qualifies. Rows locked by a concurrent allocation are
// skipped rather than waited on.
func (self *Matcher) BestPendingRequest(tx *gorm.DB, spec model.Spec, maxQuantity int, facilityID uuid.UUID) (out *model.Request, err error) {
	var requests []*model.Request
	err = self.pendingQuery(tx, spec, maxQuantity).
		Where("facility_id = ?", facilityID).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Order("urgent DESC, created_at ASC").
		Limit(1).
		Find(&requests).
		Error
	if err != nil {
		return
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return requests[0], nil
}

// OpenOfferCount counts open offers at other facilities holding at least
// quantity reserved units matching spec. Used as the match hint when a
// request is created.
func (self *Matcher) OpenOfferCount(tx *gorm.DB, spec model.Spec, quantity int, excludeFacilityID uuid.UUID) (count int64, err error) {
	err = tx.Raw(`
		SELECT COUNT(*) FROM (
			SELECT offers.id
			FROM offers
			JOIN offer_items ON offer_items.offer_id = offers.id
			JOIN units ON units.id = offer_items.unit_id
			WHERE offers.state = ?
			AND offers.facility_id <> ?
			AND units.state = ?
			AND units.component_type = ?
			AND units.blood_group = ?
			AND units.rh = ?
			AND units.filtered = ?
			AND units.irradiated = ?
			GROUP BY offers.id
			HAVING COUNT(units.id) >= ?
		) matching`,
		model.OfferStateOpen,
		excludeFacilityID,
		model.UnitStateReserved,
		spec.ComponentType, spec.BloodGroup, spec.Rh, spec.Filtered, spec.Irradiated,
		quantity).
		Scan(&count).
		Error
	return
}

// OpenOfferFacilities lists the distinct facilities behind the offers
// OpenOfferCount counts. Used for notification fan-out when a request is
// created.
func (self *Matcher) OpenOfferFacilities(tx *gorm.DB, spec model.Spec, quantity int, excludeFacilityID uuid.UUID) (out []uuid.UUID, err error) {
	err = tx.Raw(`
		SELECT DISTINCT facility_id FROM (
			SELECT offers.id, offers.facility_id
			FROM offers
			JOIN offer_items ON offer_items.offer_id = offers.id
			JOIN units ON units.id = offer_items.unit_id
			WHERE offers.state = ?
			AND offers.facility_id <> ?
			AND units.state = ?
			AND units.component_type = ?
			AND units.blood_group = ?
			AND units.rh = ?
			AND units.filtered = ?
			AND units.irradiated = ?
			GROUP BY offers.id, offers.facility_id
			HAVING COUNT(units.id) >= ?
		) matching`,
		model.OfferStateOpen,
		excludeFacilityID,
		model.UnitStateReserved,
		spec.ComponentType, spec.BloodGroup, spec.Rh, spec.Filtered, spec.Irradiated,
		quantity).
		Scan(&out).
		Error
	return
}

// AvailableUnits lists the facility's available units matching spec, soonest
// expiry first. Read-only, callers that mutate lock their own rows.
func (self *Matcher) AvailableUnits(tx *gorm.DB, facilityID uuid.UUID, spec model.Spec) (out []*model.Unit, err error) {
	err = tx.Model(&model.Unit{}).
		Where("facility_id = ? AND state = ?", facilityID, model.UnitStateAvailable).
		Where("component_type = ? AND blood_group = ? AND rh = ? AND filtered = ? AND irradiated = ?",
			spec.ComponentType, spec.BloodGroup, spec.Rh, spec.Filtered, spec.Irradiated).
		Order("expires_at ASC").
		Find(&out).
		Error
	return
}

// ActiveTransferUnitIDs returns which of the given units sit in a transfer
// that is still created or in transit. Such units stay reserved but cannot
// be claimed, released or archived.
func (self *Matcher) ActiveTransferUnitIDs(tx *gorm.DB, unitIDs []uuid.UUID) (out map[uuid.UUID]struct{}, err error) {
	var ids []uuid.UUID
	err = tx.Model(&model.TransferItem{}).
		Joins("JOIN transfers ON transfers.id = transfer_items.transfer_id").
		Where("transfers.state IN ?", []model.TransferState{model.TransferStateCreated, model.TransferStateInTransit}).
		Where("transfer_items.unit_id IN ?", unitIDs).
		Pluck("transfer_items.unit_id", &ids).
		Error
	if err != nil {
		return
	}
	out = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return
}

// UnitsHomogeneous reports whether every unit carries exactly the given
// attribute set.
func UnitsHomogeneous(units []*model.Unit, spec model.Spec) bool {
	for _, unit := range units {
		if !unit.Spec().Matches(spec) {
			return false
		}
	}
	return true
}
