package gateway

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hemolink/src/utils/model"
)

func TestOfferListingTestSuite(t *testing.T) {
	suite.Run(t, new(OfferListingTestSuite))
}

type OfferListingTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *OfferListingTestSuite) SetupSuite() {
	// Generates SQL without touching a database
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	s.Require().NoError(err)
	s.db = db
}

func (s *OfferListingTestSuite) TestPublicListingExcludesShadowOffers() {
	var offers []*model.Offer
	tx := publicOffersQuery(s.db, uuid.New()).Find(&offers)
	s.NoError(tx.Error)
	s.Contains(tx.Statement.SQL.String(), "shadow = false")
}

func (s *OfferListingTestSuite) TestPublicListingExcludesOwnAndNonOpenOffers() {
	facilityID := uuid.New()

	var offers []*model.Offer
	tx := publicOffersQuery(s.db, facilityID).Find(&offers)
	s.NoError(tx.Error)

	sql := tx.Statement.SQL.String()
	s.Contains(sql, "state = ")
	s.Contains(sql, "facility_id <> ")
	s.Contains(tx.Statement.Vars, model.OfferStateOpen)
	s.Contains(tx.Statement.Vars, facilityID)
}
