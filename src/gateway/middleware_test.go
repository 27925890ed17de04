package gateway

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
)

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

type MiddlewareTestSuite struct {
	suite.Suite
	server *Server
}

func (s *MiddlewareTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.server = NewServer(config.Default())
}

func (s *MiddlewareTestSuite) TestStatusMapping() {
	s.Equal(http.StatusNotFound, StatusFor(model.ErrNotFound))
	s.Equal(http.StatusConflict, StatusFor(model.ErrConflict))
	s.Equal(http.StatusConflict, StatusFor(model.ErrInvalidState))
	s.Equal(http.StatusForbidden, StatusFor(model.ErrForbidden))
	s.Equal(http.StatusBadRequest, StatusFor(model.ErrInvalidInput))
	s.Equal(http.StatusBadRequest, StatusFor(model.ErrInvalidSelection))
	s.Equal(http.StatusInternalServerError, StatusFor(fmt.Errorf("connection reset")))
}

func (s *MiddlewareTestSuite) TestWrappedErrorsKeepTheirStatus() {
	err := fmt.Errorf("%w: offer is closed", model.ErrConflict)
	s.Equal(http.StatusConflict, StatusFor(err))
}

func (s *MiddlewareTestSuite) identityRouter(capture *model.Actor) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", s.server.identity(), func(c *gin.Context) {
		*capture = Actor(c)
		c.Status(http.StatusOK)
	})
	return router
}

func (s *MiddlewareTestSuite) TestIdentityParsesHeaders() {
	var actor model.Actor
	router := s.identityRouter(&actor)

	facilityID := uuid.New()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderFacilityID, facilityID.String())
	req.Header.Set(HeaderUserID, userID.String())
	req.Header.Set(HeaderRole, "coordinator")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(facilityID, actor.FacilityID)
	s.True(actor.UserID.Valid)
	s.Equal(userID, actor.UserID.UUID)
	s.Equal("coordinator", actor.Role)
}

func (s *MiddlewareTestSuite) TestIdentityRejectsMissingFacility() {
	var actor model.Actor
	router := s.identityRouter(&actor)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *MiddlewareTestSuite) TestIdentityRejectsMalformedUser() {
	var actor model.Actor
	router := s.identityRouter(&actor)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderFacilityID, uuid.New().String())
	req.Header.Set(HeaderUserID, "not-a-uuid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *MiddlewareTestSuite) TestUserHeaderIsOptional() {
	var actor model.Actor
	router := s.identityRouter(&actor)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderFacilityID, uuid.New().String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.False(actor.UserID.Valid)
}

func (s *MiddlewareTestSuite) paginate(query string) (limit, offset int) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/units"+query, nil)
	return s.server.pagination(c)
}

func (s *MiddlewareTestSuite) TestPaginationDefaults() {
	limit, offset := s.paginate("")
	s.Equal(s.server.Config.Gateway.DefaultPageSize, limit)
	s.Equal(0, offset)
}

func (s *MiddlewareTestSuite) TestPaginationClampsToMax() {
	limit, _ := s.paginate("?limit=100000")
	s.Equal(s.server.Config.Gateway.MaxPageSize, limit)
}

func (s *MiddlewareTestSuite) TestPaginationIgnoresGarbage() {
	limit, offset := s.paginate("?limit=banana&offset=-3")
	s.Equal(s.server.Config.Gateway.DefaultPageSize, limit)
	s.Equal(0, offset)
}
