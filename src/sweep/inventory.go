package sweep

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hemolink/src/audit"
	"hemolink/src/match"
	"hemolink/src/notify"
	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// InventorySweeper retires expired units. Offers holding an expired unit are
// claimed one at a time with SKIP LOCKED so concurrent sweeps partition the
// work: the offer is cancelled, its expired units archived and the rest
// released. Loose expired units sitting available are archived afterwards.
// Units inside an active transfer are left for the watchdog.
type InventorySweeper struct {
	*task.Task

	db       *gorm.DB
	matcher  *match.Matcher
	monitor  monitoring.Monitor
	notifier *notify.Notifier
	auditor  *audit.Sink
}

func NewInventorySweeper(config *config.Config) (self *InventorySweeper) {
	self = new(InventorySweeper)
	self.matcher = match.NewMatcher()

	self.Task = task.NewTask(config, "inventory-sweeper").
		WithPeriodicSubtaskFunc(config.Sweeper.InventoryInterval, self.sweep)

	return
}

func (self *InventorySweeper) WithDatabase(db *gorm.DB) *InventorySweeper {
	self.db = db
	return self
}

func (self *InventorySweeper) WithMonitor(monitor monitoring.Monitor) *InventorySweeper {
	self.monitor = monitor
	return self
}

func (self *InventorySweeper) WithNotifier(notifier *notify.Notifier) *InventorySweeper {
	self.notifier = notifier
	return self
}

func (self *InventorySweeper) WithAuditor(auditor *audit.Sink) *InventorySweeper {
	self.auditor = auditor
	return self
}

func (self *InventorySweeper) sweep() error {
	for i := 0; i < self.Config.Sweeper.MaxOffersPerRun; i++ {
		found, err := self.sweepOneOffer()
		if err != nil {
			self.monitor.GetReport().Sweeper.Errors.InventoryExpiryError.Inc()
			self.Log.WithError(err).Error("Failed to sweep expired offer")
			break
		}
		if !found {
			break
		}
	}

	err := self.sweepLooseUnits()
	if err != nil {
		self.monitor.GetReport().Sweeper.Errors.InventoryExpiryError.Inc()
		self.Log.WithError(err).Error("Failed to archive loose expired units")
	}
	return nil
}

// sweepOneOffer claims and settles a single open offer holding at least one
// expired unit. Returns found=false when no such offer is left unclaimed.
func (self *InventorySweeper) sweepOneOffer() (found bool, err error) {
	var (
		offer    *model.Offer
		archived []*model.Unit
		released []uuid.UUID
	)

	err = self.db.WithContext(self.Ctx).Transaction(func(tx *gorm.DB) (err error) {
		now := time.Now()

		var offers []*model.Offer
		err = tx.Raw(`SELECT * FROM offers
			WHERE state = ?
			AND EXISTS (
				SELECT 1 FROM offer_items
				JOIN units ON units.id = offer_items.unit_id
				WHERE offer_items.offer_id = offers.id
				AND units.expires_at < ?
			)
			LIMIT 1
			FOR UPDATE SKIP LOCKED`,
			model.OfferStateOpen, now).
			Scan(&offers).
			Error
		if err != nil || len(offers) == 0 {
			return
		}
		offer = offers[0]

		var units []*model.Unit
		err = tx.Model(&model.Unit{}).
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: model.TableUnit}}).
			Joins("JOIN offer_items ON offer_items.unit_id = units.id").
			Where("offer_items.offer_id = ?", offer.ID).
			Find(&units).
			Error
		if err != nil {
			return
		}

		active, err := self.matcher.ActiveTransferUnitIDs(tx, unitIDs(units))
		if err != nil {
			return
		}

		err = tx.Model(offer).Update("state", model.OfferStateCancelled).Error
		if err != nil {
			return
		}
		offer.State = model.OfferStateCancelled

		for _, unit := range units {
			if _, ok := active[unit.ID]; ok {
				continue
			}
			if unit.IsExpired(now) {
				archived = append(archived, unit)
			} else if unit.State == model.UnitStateReserved {
				released = append(released, unit.ID)
			}
		}

		err = self.archiveUnits(tx, archived, now)
		if err != nil {
			return
		}

		if len(released) > 0 {
			err = tx.Model(&model.Unit{}).
				Where("id IN ?", released).
				Update("state", model.UnitStateAvailable).
				Error
		}
		return
	})
	if err != nil || offer == nil {
		return false, err
	}

	self.monitor.GetReport().Sweeper.State.OffersCancelledByExpiry.Inc()
	self.monitor.GetReport().Sweeper.State.UnitsArchived.Add(uint64(len(archived)))
	self.monitor.GetReport().Sweeper.State.UnitsReleased.Add(uint64(len(released)))

	if self.auditor != nil {
		self.auditor.Record(uuid.NullUUID{}, audit.EntityOffer, offer.ID, audit.ActionAutoCancel, map[string]any{
			"archived_units": len(archived),
			"released_units": len(released),
		})
	}
	if self.notifier != nil {
		self.notifier.Enqueue(&notify.Event{
			Kind:        notify.KindOfferCancelledByExpiry,
			EntityType:  audit.EntityOffer,
			EntityID:    offer.ID,
			FacilityIDs: []uuid.UUID{offer.FacilityID},
			UnitIDs:     unitIDs(archived),
			Message:     "Offer cancelled, it contained expired units",
		})
	}
	return true, nil
}

// sweepLooseUnits archives expired units that are still sitting available,
// i.e. not linked to any open offer.
func (self *InventorySweeper) sweepLooseUnits() (err error) {
	var archived []*model.Unit

	err = self.db.WithContext(self.Ctx).Transaction(func(tx *gorm.DB) (err error) {
		now := time.Now()

		var units []*model.Unit
		err = tx.Raw(`SELECT * FROM units
			WHERE state = ? AND expires_at < ?
			FOR UPDATE SKIP LOCKED`,
			model.UnitStateAvailable, now).
			Scan(&units).
			Error
		if err != nil || len(units) == 0 {
			return
		}

		archived = units
		return self.archiveUnits(tx, archived, now)
	})
	if err != nil || len(archived) == 0 {
		return
	}

	self.monitor.GetReport().Sweeper.State.UnitsArchived.Add(uint64(len(archived)))
	self.Log.WithField("count", len(archived)).Info("Archived loose expired units")

	if self.auditor != nil {
		for _, unit := range archived {
			self.auditor.Record(uuid.NullUUID{}, audit.EntityUnit, unit.ID, audit.ActionExpiryArchive, map[string]any{
				"tracking_code": unit.TrackingCode,
				"expires_at":    unit.ExpiresAt,
			})
		}
	}
	return nil
}

// archiveUnits snapshots the units into archived_units with terminal state
// expired and removes them from the active ledger.
func (self *InventorySweeper) archiveUnits(tx *gorm.DB, units []*model.Unit, now time.Time) (err error) {
	if len(units) == 0 {
		return nil
	}

	rows := make([]*model.ArchivedUnit, 0, len(units))
	for _, unit := range units {
		rows = append(rows, &model.ArchivedUnit{
			ID:            unit.ID,
			ComponentType: unit.ComponentType,
			BloodGroup:    unit.BloodGroup,
			Rh:            unit.Rh,
			Filtered:      unit.Filtered,
			Irradiated:    unit.Irradiated,
			DrawnAt:       unit.DrawnAt,
			ExpiresAt:     unit.ExpiresAt,
			TrackingCode:  unit.TrackingCode,
			FacilityID:    unit.FacilityID,
			State:         model.UnitStateExpired,
			CreatedByID:   unit.CreatedByID,
			CreatedAt:     unit.CreatedAt,
			ArchivedAt:    now,
		})
	}
	err = tx.Create(&rows).Error
	if err != nil {
		return
	}

	// Item rows cascade
	return tx.Delete(&model.Unit{}, "id IN ?", unitIDs(units)).Error
}

func unitIDs(units []*model.Unit) (out []uuid.UUID) {
	out = make([]uuid.UUID, 0, len(units))
	for _, unit := range units {
		out = append(out, unit.ID)
	}
	return
}
