package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hemolink/src/allocate"
	"hemolink/src/match"
	"hemolink/src/transfer"
	"hemolink/src/utils/config"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// Facility-facing REST API. Identity comes from trusted headers set by the
// fronting proxy, all domain decisions are delegated to the allocation
// coordinator and the transfer machine.
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	db          *gorm.DB
	matcher     *match.Matcher
	coordinator *allocate.Coordinator
	machine     *transfer.Machine
	monitor     monitoring.Monitor
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.matcher = match.NewMatcher()

	self.Task = task.NewTask(config, "gateway").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:        config.Gateway.ListenAddress,
		Handler:     self.Router,
		ReadTimeout: config.Gateway.ServerRequestTimeout,
	}

	return
}

func (self *Server) WithDatabase(db *gorm.DB) *Server {
	self.db = db
	return self
}

func (self *Server) WithCoordinator(coordinator *allocate.Coordinator) *Server {
	self.coordinator = coordinator
	return self
}

func (self *Server) WithMachine(machine *transfer.Machine) *Server {
	self.machine = machine
	return self
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) run() (err error) {
	v1 := self.Router.Group("v1", self.identity())
	{
		v1.POST("units", self.onCreateUnits)
		v1.GET("units", self.onListUnits)

		v1.POST("offers", self.onCreateOffer)
		v1.POST("offers/precheck", self.onPrecheckOffer)
		v1.GET("offers", self.onListOffers)
		v1.GET("offers/mine", self.onListOwnOffers)
		v1.GET("offers/:id", self.onGetOffer)
		v1.PATCH("offers/:id/state", self.onUpdateOfferState)
		v1.POST("offers/:id/allocate", self.onAllocateFromOffer)

		v1.POST("requests", self.onCreateRequest)
		v1.GET("requests", self.onListRequests)
		v1.GET("requests/mine", self.onListOwnRequests)
		v1.GET("requests/:id", self.onGetRequest)
		v1.PATCH("requests/:id/state", self.onUpdateRequestState)
		v1.POST("requests/:id/allocate", self.onAllocateFromRequest)

		v1.GET("transfers/mine", self.onListOwnTransfers)
		v1.GET("transfers/:id", self.onGetTransfer)
		v1.POST("transfers/:id/send", self.onSendTransfer)
		v1.POST("transfers/:id/receive", self.onReceiveTransfer)
		v1.POST("transfers/:id/cancel", self.onCancelTransfer)
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start gateway server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown gateway server")
		return
	}
}
