package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hemolink/src/gateway/request"
	"hemolink/src/gateway/response"
	"hemolink/src/utils/model"
)

func (self *Server) onCreateOffer(c *gin.Context) {
	var in request.CreateOffer
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	result, err := self.coordinator.CreateOffer(c, Actor(c), in.UnitIDs, in.Note)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	out := response.OfferToResponse(result.Offer)
	out.Units = response.UnitsToResponse(result.Units)
	out.MatchingRequests = &result.MatchingRequests
	c.JSON(http.StatusCreated, out)
}

// Same validation and match lookup as offer creation, without writing
func (self *Server) onPrecheckOffer(c *gin.Context) {
	var in request.PrecheckOffer
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	matching, err := self.coordinator.Precheck(c, Actor(c), in.UnitIDs)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matching_requests": len(matching),
		"requests":          response.RequestsToResponse(matching),
	})
}

// Shadow offers back accepted requests and never show up in the public
// listing, even after a transfer cancel reopens them
func publicOffersQuery(tx *gorm.DB, facilityID uuid.UUID) *gorm.DB {
	return tx.
		Where("state = ?", model.OfferStateOpen).
		Where("shadow = false").
		Where("facility_id <> ?", facilityID)
}

// Open offers from other facilities
func (self *Server) onListOffers(c *gin.Context) {
	limit, offset := self.pagination(c)

	var offers []*model.Offer
	err := publicOffersQuery(self.db.WithContext(c), Actor(c).FacilityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&offers).
		Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OffersToResponse(offers))
}

func (self *Server) onListOwnOffers(c *gin.Context) {
	limit, offset := self.pagination(c)

	query := self.db.WithContext(c).
		Where("facility_id = ?", Actor(c).FacilityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var offers []*model.Offer
	err := query.Find(&offers).Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OffersToResponse(offers))
}

func (self *Server) onGetOffer(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	var offer model.Offer
	err = self.db.WithContext(c).First(&offer, "id = ?", id).Error
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: offer %s", model.ErrNotFound, id))
		return
	}

	var units []*model.Unit
	err = self.db.WithContext(c).
		Model(&model.Unit{}).
		Joins("JOIN offer_items ON offer_items.unit_id = units.id").
		Where("offer_items.offer_id = ?", offer.ID).
		Order("units.expires_at ASC").
		Find(&units).
		Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	out := response.OfferToResponse(&offer)
	out.Units = response.UnitsToResponse(units)
	c.JSON(http.StatusOK, out)
}

func (self *Server) onUpdateOfferState(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	var in request.UpdateState
	err = c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	offer, err := self.coordinator.UpdateOfferState(c, Actor(c), id, model.OfferState(in.State))
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OfferToResponse(offer))
}

func (self *Server) onAllocateFromOffer(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	// Body is optional, an empty one claims everything claimable
	var in request.AllocateFromOffer
	err = c.ShouldBindJSON(&in)
	if err != nil && !errors.Is(err, io.EOF) {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	result, err := self.coordinator.AllocateFromOffer(c, Actor(c), id, in.UnitIDs, in.Note)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	out := response.TransferToResponse(result.Transfer)
	out.Request = response.RequestToResponse(result.Request)
	out.Offer = response.OfferToResponse(result.Offer)
	out.Units = response.UnitsToResponse(result.Units)
	c.JSON(http.StatusCreated, out)
}
