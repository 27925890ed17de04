package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hemolink/src/allocate"
	"hemolink/src/gateway/request"
	"hemolink/src/gateway/response"
	"hemolink/src/utils/model"
)

func (self *Server) onCreateRequest(c *gin.Context) {
	var in request.CreateRequest
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	result, err := self.coordinator.CreateRequest(c, Actor(c), allocate.RequestInput{
		Spec: model.Spec{
			ComponentType: in.ComponentType,
			BloodGroup:    in.BloodGroup,
			Rh:            in.Rh,
			Filtered:      in.Filtered,
			Irradiated:    in.Irradiated,
		},
		Quantity: in.Quantity,
		Urgent:   in.Urgent,
		Note:     in.Note,
	})
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	out := response.RequestToResponse(result.Request)
	out.MatchingOffers = &result.MatchingOffers
	c.JSON(http.StatusCreated, out)
}

// Pending requests from other facilities. Shadow requests never show up
// here, they are born for an already-settled allocation.
func (self *Server) onListRequests(c *gin.Context) {
	limit, offset := self.pagination(c)

	var requests []*model.Request
	err := self.db.WithContext(c).
		Where("state = ?", model.RequestStatePending).
		Where("facility_id <> ?", Actor(c).FacilityID).
		Where("shadow = false").
		Order("urgent DESC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&requests).
		Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.RequestsToResponse(requests))
}

func (self *Server) onListOwnRequests(c *gin.Context) {
	limit, offset := self.pagination(c)

	query := self.db.WithContext(c).
		Where("facility_id = ?", Actor(c).FacilityID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var requests []*model.Request
	err := query.Find(&requests).Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.RequestsToResponse(requests))
}

// Detail view. For a foreign pending request the caller also gets its own
// available units matching the requested specification, the candidates it
// could allocate.
func (self *Server) onGetRequest(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	var req model.Request
	err = self.db.WithContext(c).First(&req, "id = ?", id).Error
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: request %s", model.ErrNotFound, id))
		return
	}

	out := response.RequestToResponse(&req)

	actor := Actor(c)
	if req.FacilityID != actor.FacilityID && req.State == model.RequestStatePending {
		candidates, err := self.matcher.AvailableUnits(self.db.WithContext(c), actor.FacilityID, req.Spec())
		if err != nil {
			self.abortWithError(c, err)
			return
		}
		out.CandidateUnits = response.UnitsToResponse(candidates)
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onUpdateRequestState(c *gin.Context) {
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

	req, err := self.coordinator.UpdateRequestState(c, Actor(c), id, model.RequestState(in.State))
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.RequestToResponse(req))
}

func (self *Server) onAllocateFromRequest(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	var in request.AllocateFromRequest
	err = c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	result, err := self.coordinator.AllocateFromRequest(c, Actor(c), id, in.UnitIDs, in.Note)
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
