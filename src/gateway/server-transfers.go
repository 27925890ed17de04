package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hemolink/src/gateway/response"
	"hemolink/src/utils/model"
)

// Transfers where the caller is origin or destination
func (self *Server) onListOwnTransfers(c *gin.Context) {
	limit, offset := self.pagination(c)
	facilityID := Actor(c).FacilityID

	query := self.db.WithContext(c).
		Where("origin_facility_id = ? OR dest_facility_id = ?", facilityID, facilityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var transfers []*model.Transfer
	err := query.Find(&transfers).Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.TransfersToResponse(transfers))
}

// Detail view with the linked request, offer and unit set
func (self *Server) onGetTransfer(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	var transfer model.Transfer
	err = self.db.WithContext(c).First(&transfer, "id = ?", id).Error
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: transfer %s", model.ErrNotFound, id))
		return
	}

	facilityID := Actor(c).FacilityID
	if transfer.OriginFacilityID != facilityID && transfer.DestFacilityID != facilityID {
		self.abortWithError(c, fmt.Errorf("%w: transfer involves other facilities", model.ErrForbidden))
		return
	}

	out := response.TransferToResponse(&transfer)

	var req model.Request
	err = self.db.WithContext(c).First(&req, "id = ?", transfer.RequestID).Error
	if err == nil {
		out.Request = response.RequestToResponse(&req)
	}

	if transfer.OfferID.Valid {
		var offer model.Offer
		err = self.db.WithContext(c).First(&offer, "id = ?", transfer.OfferID.UUID).Error
		if err == nil {
			out.Offer = response.OfferToResponse(&offer)
		}
	}

	var units []*model.Unit
	err = self.db.WithContext(c).
		Model(&model.Unit{}).
		Joins("JOIN transfer_items ON transfer_items.unit_id = units.id").
		Where("transfer_items.transfer_id = ?", transfer.ID).
		Order("units.expires_at ASC").
		Find(&units).
		Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}
	out.Units = response.UnitsToResponse(units)

	c.JSON(http.StatusOK, out)
}

func (self *Server) onSendTransfer(c *gin.Context) {
	self.advanceTransfer(c, self.machine.Send)
}

func (self *Server) onReceiveTransfer(c *gin.Context) {
	self.advanceTransfer(c, self.machine.Receive)
}

func (self *Server) onCancelTransfer(c *gin.Context) {
	self.advanceTransfer(c, self.machine.Cancel)
}

func (self *Server) advanceTransfer(c *gin.Context, transition func(ctx context.Context, actor model.Actor, transferID uuid.UUID) (*model.Transfer, error)) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	transfer, err := transition(c, Actor(c), id)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.TransferToResponse(transfer))
}
