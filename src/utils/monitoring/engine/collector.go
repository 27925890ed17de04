package monitor_engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	OffersCreated           *prometheus.Desc
	UnitsReserved           *prometheus.Desc
	TransfersFromRequest    *prometheus.Desc
	TransfersFromOffer      *prometheus.Desc
	SelectionRejected       *prometheus.Desc
	ConflictRejected        *prometheus.Desc
	TransfersSent           *prometheus.Desc
	TransfersReceived       *prometheus.Desc
	TransfersCancelled      *prometheus.Desc
	OffersReopened          *prometheus.Desc
	RequestsExpired         *prometheus.Desc
	OffersCancelledByExpiry *prometheus.Desc
	UnitsArchived           *prometheus.Desc
	UnitsReleased           *prometheus.Desc
	TransfersForceCancelled *prometheus.Desc
	EventsQueued            *prometheus.Desc
	NotificationsWritten    *prometheus.Desc
	WebhooksDelivered       *prometheus.Desc
	RedisPublished          *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "engine",
	}

	return &Collector{
		OffersCreated:           prometheus.NewDesc("offers_created", "", nil, labels),
		UnitsReserved:           prometheus.NewDesc("units_reserved", "", nil, labels),
		TransfersFromRequest:    prometheus.NewDesc("transfers_from_request", "", nil, labels),
		TransfersFromOffer:      prometheus.NewDesc("transfers_from_offer", "", nil, labels),
		SelectionRejected:       prometheus.NewDesc("selection_rejected", "", nil, labels),
		ConflictRejected:        prometheus.NewDesc("conflict_rejected", "", nil, labels),
		TransfersSent:           prometheus.NewDesc("transfers_sent", "", nil, labels),
		TransfersReceived:       prometheus.NewDesc("transfers_received", "", nil, labels),
		TransfersCancelled:      prometheus.NewDesc("transfers_cancelled", "", nil, labels),
		OffersReopened:          prometheus.NewDesc("offers_reopened", "", nil, labels),
		RequestsExpired:         prometheus.NewDesc("requests_expired", "", nil, labels),
		OffersCancelledByExpiry: prometheus.NewDesc("offers_cancelled_by_expiry", "", nil, labels),
		UnitsArchived:           prometheus.NewDesc("units_archived", "", nil, labels),
		UnitsReleased:           prometheus.NewDesc("units_released", "", nil, labels),
		TransfersForceCancelled: prometheus.NewDesc("transfers_force_cancelled", "", nil, labels),
		EventsQueued:            prometheus.NewDesc("events_queued", "", nil, labels),
		NotificationsWritten:    prometheus.NewDesc("notifications_written", "", nil, labels),
		WebhooksDelivered:       prometheus.NewDesc("webhooks_delivered", "", nil, labels),
		RedisPublished:          prometheus.NewDesc("redis_published", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.OffersCreated
	ch <- self.UnitsReserved
	ch <- self.TransfersFromRequest
	ch <- self.TransfersFromOffer
	ch <- self.SelectionRejected
	ch <- self.ConflictRejected
	ch <- self.TransfersSent
	ch <- self.TransfersReceived
	ch <- self.TransfersCancelled
	ch <- self.OffersReopened
	ch <- self.RequestsExpired
	ch <- self.OffersCancelledByExpiry
	ch <- self.UnitsArchived
	ch <- self.UnitsReleased
	ch <- self.TransfersForceCancelled
	ch <- self.EventsQueued
	ch <- self.NotificationsWritten
	ch <- self.WebhooksDelivered
	ch <- self.RedisPublished
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report
	ch <- prometheus.MustNewConstMetric(self.OffersCreated, prometheus.CounterValue, float64(r.Allocator.State.OffersCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.UnitsReserved, prometheus.CounterValue, float64(r.Allocator.State.UnitsReserved.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersFromRequest, prometheus.CounterValue, float64(r.Allocator.State.TransfersFromRequest.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersFromOffer, prometheus.CounterValue, float64(r.Allocator.State.TransfersFromOffer.Load()))
	ch <- prometheus.MustNewConstMetric(self.SelectionRejected, prometheus.CounterValue, float64(r.Allocator.Errors.SelectionRejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConflictRejected, prometheus.CounterValue, float64(r.Allocator.Errors.ConflictRejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersSent, prometheus.CounterValue, float64(r.Transfer.State.Sent.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersReceived, prometheus.CounterValue, float64(r.Transfer.State.Received.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersCancelled, prometheus.CounterValue, float64(r.Transfer.State.Cancelled.Load()))
	ch <- prometheus.MustNewConstMetric(self.OffersReopened, prometheus.CounterValue, float64(r.Transfer.State.OffersReopened.Load()))
	ch <- prometheus.MustNewConstMetric(self.RequestsExpired, prometheus.CounterValue, float64(r.Sweeper.State.RequestsExpired.Load()))
	ch <- prometheus.MustNewConstMetric(self.OffersCancelledByExpiry, prometheus.CounterValue, float64(r.Sweeper.State.OffersCancelledByExpiry.Load()))
	ch <- prometheus.MustNewConstMetric(self.UnitsArchived, prometheus.CounterValue, float64(r.Sweeper.State.UnitsArchived.Load()))
	ch <- prometheus.MustNewConstMetric(self.UnitsReleased, prometheus.CounterValue, float64(r.Sweeper.State.UnitsReleased.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransfersForceCancelled, prometheus.CounterValue, float64(r.Sweeper.State.TransfersForceCancelled.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsQueued, prometheus.CounterValue, float64(r.Notifier.State.EventsQueued.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotificationsWritten, prometheus.CounterValue, float64(r.Notifier.State.NotificationsWritten.Load()))
	ch <- prometheus.MustNewConstMetric(self.WebhooksDelivered, prometheus.CounterValue, float64(r.Notifier.State.WebhooksDelivered.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPublished, prometheus.CounterValue, float64(r.Notifier.State.RedisPublished.Load()))
}
