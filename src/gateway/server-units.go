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

func (self *Server) onCreateUnits(c *gin.Context) {
	var in request.CreateUnits
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.abortWithError(c, fmt.Errorf("%w: %s", model.ErrInvalidInput, err))
		return
	}

	inputs := make([]allocate.UnitInput, 0, len(in.Units))
	for _, unit := range in.Units {
		inputs = append(inputs, allocate.UnitInput{
			Spec: model.Spec{
				ComponentType: unit.ComponentType,
				BloodGroup:    unit.BloodGroup,
				Rh:            unit.Rh,
				Filtered:      unit.Filtered,
				Irradiated:    unit.Irradiated,
			},
			DrawnAt:   unit.DrawnAt,
			ExpiresAt: unit.ExpiresAt,
		})
	}

	units, err := self.coordinator.CreateUnits(c, Actor(c), inputs)
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.UnitsToResponse(units))
}

// Lists the caller's own inventory, optionally filtered by state
func (self *Server) onListUnits(c *gin.Context) {
	limit, offset := self.pagination(c)

	query := self.db.WithContext(c).
		Where("facility_id = ?", Actor(c).FacilityID).
		Order("expires_at ASC").
		Limit(limit).
		Offset(offset)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var units []*model.Unit
	err := query.Find(&units).Error
	if err != nil {
		self.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.UnitsToResponse(units))
}
