package transfer

import (
	"fmt"

	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

// Role and state guards, checked in that order so an actor from the wrong
// facility always sees Forbidden, never a state hint.

func CheckSend(transfer *model.Transfer, facilityID uuid.UUID) error {
	if transfer.OriginFacilityID != facilityID {
		return fmt.Errorf("%w: only the origin facility can send", model.ErrForbidden)
	}
	if transfer.State != model.TransferStateCreated {
		return fmt.Errorf("%w: transfer is %s", model.ErrInvalidState, transfer.State)
	}
	return nil
}

func CheckReceive(transfer *model.Transfer, facilityID uuid.UUID) error {
	if transfer.DestFacilityID != facilityID {
		return fmt.Errorf("%w: only the destination facility can receive", model.ErrForbidden)
	}
	if transfer.State != model.TransferStateInTransit {
		return fmt.Errorf("%w: transfer is %s", model.ErrInvalidState, transfer.State)
	}
	return nil
}

func CheckCancel(transfer *model.Transfer, facilityID uuid.UUID) error {
	if transfer.OriginFacilityID != facilityID {
		return fmt.Errorf("%w: only the origin facility can cancel", model.ErrForbidden)
	}
	return CheckForceCancel(transfer)
}

// CheckForceCancel is the cancel guard without the role check, used by the
// watchdog sweeper.
func CheckForceCancel(transfer *model.Transfer) error {
	if transfer.State != model.TransferStateCreated && transfer.State != model.TransferStateInTransit {
		return fmt.Errorf("%w: transfer is %s", model.ErrInvalidState, transfer.State)
	}
	return nil
}
