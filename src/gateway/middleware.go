package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

const (
	HeaderFacilityID = "X-Facility-Id"
	HeaderUserID     = "X-User-Id"
	HeaderRole       = "X-Role"

	actorKey = "actor"
)

// identity parses the trusted identity headers into an actor value. The
// fronting proxy authenticates the caller, the engine only needs to know who
// it is.
func (self *Server) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		facilityID, err := uuid.Parse(c.GetHeader(HeaderFacilityID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed " + HeaderFacilityID + " header"})
			return
		}

		actor := model.Actor{
			FacilityID: facilityID,
			Role:       c.GetHeader(HeaderRole),
		}

		if raw := c.GetHeader(HeaderUserID); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed " + HeaderUserID + " header"})
				return
			}
			actor.UserID = uuid.NullUUID{UUID: userID, Valid: true}
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the identity the middleware stored on the context.
func Actor(c *gin.Context) model.Actor {
	return c.MustGet(actorKey).(model.Actor)
}

// StatusFor maps domain errors to HTTP statuses. Conflict and InvalidState
// both come back 409, the body tells them apart.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (self *Server) abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		self.Log.WithError(err).Error("Request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// pagination clamps limit/offset query params to the configured page sizes.
func (self *Server) pagination(c *gin.Context) (limit, offset int) {
	limit = self.Config.Gateway.DefaultPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > self.Config.Gateway.MaxPageSize {
		limit = self.Config.Gateway.MaxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return
}

func pathID(c *gin.Context) (id uuid.UUID, err error) {
	id, err = uuid.Parse(c.Param("id"))
	if err != nil {
		err = fmt.Errorf("%w: malformed id in path", model.ErrInvalidInput)
	}
	return
}
