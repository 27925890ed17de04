package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/deque"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hemolink/src/utils/config"
	"hemolink/src/utils/model"
	"hemolink/src/utils/monitoring"
	"hemolink/src/utils/task"
)

// Notifier fans committed events out to three best-effort sinks: per-user
// inbox rows, a Redis channel and an optional webhook. Delivery failures are
// counted and logged, never propagated back to the caller.
type Notifier struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor

	redisClient *redis.Client
	httpClient  *resty.Client

	// Facility id -> []*model.User
	contacts *cache.Cache

	input chan *Event
	queue deque.Deque[*Event]
}

func NewNotifier(config *config.Config) (self *Notifier) {
	self = new(Notifier)

	self.input = make(chan *Event, config.Notifier.QueueSize)
	self.contacts = cache.New(config.Notifier.ContactCacheTTL, 2*config.Notifier.ContactCacheTTL)

	self.Task = task.NewTask(config, "notifier").
		WithOnBeforeStart(self.connect).
		WithSubtaskFunc(self.run).
		WithOnAfterStop(self.disconnect)

	return
}

func (self *Notifier) WithDatabase(db *gorm.DB) *Notifier {
	self.db = db
	return self
}

func (self *Notifier) WithMonitor(monitor monitoring.Monitor) *Notifier {
	self.monitor = monitor
	return self
}

func (self *Notifier) connect() (err error) {
	if self.Config.Redis.Enabled && self.Config.Notifier.RedisChannelName != "" {
		self.redisClient = redis.NewClient(&redis.Options{
			ClientName:      fmt.Sprintf("hemolink/%s", self.Name),
			Addr:            fmt.Sprintf("%s:%d", self.Config.Redis.Host, self.Config.Redis.Port),
			Username:        self.Config.Redis.User,
			Password:        self.Config.Redis.Password,
			DB:              self.Config.Redis.DB,
			MinIdleConns:    self.Config.Redis.MinIdleConns,
			MaxIdleConns:    self.Config.Redis.MaxIdleConns,
			ConnMaxIdleTime: self.Config.Redis.ConnMaxIdleTime,
			PoolSize:        self.Config.Redis.MaxOpenConns,
			ConnMaxLifetime: self.Config.Redis.ConnMaxLifetime,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err = self.redisClient.Ping(ctx).Err()
		if err != nil {
			self.Log.WithError(err).Error("Failed to ping Redis")
			return
		}
	}

	if self.Config.Notifier.WebhookUrl != "" {
		self.httpClient = resty.New().
			SetTimeout(self.Config.Notifier.WebhookTimeout).
			SetHeader("Content-Type", "application/json")
	}

	return nil
}

func (self *Notifier) disconnect() {
	if self.redisClient == nil {
		return
	}
	err := self.redisClient.Close()
	if err != nil {
		self.Log.WithError(err).Error("Failed to close Redis connection")
	}
}

// Enqueue hands an event to the dispatcher. Never blocks, an overflowing
// queue drops the event.
func (self *Notifier) Enqueue(event *Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	select {
	case self.input <- event:
		self.monitor.GetReport().Notifier.State.EventsQueued.Inc()
	default:
		self.monitor.GetReport().Notifier.Errors.QueueFull.Inc()
		self.Log.WithField("kind", event.Kind).Warn("Event queue full, dropping event")
	}
}

func (self *Notifier) run() (err error) {
	ticker := time.NewTicker(self.Config.Notifier.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-self.StopChannel:
			self.drain()
			self.flush()
			return nil
		case event := <-self.input:
			self.queue.PushBack(event)
			if self.queue.Len() >= self.Config.Notifier.BatchSize {
				self.flush()
			}
		case <-ticker.C:
			self.flush()
		}
	}
}

// Move whatever is still buffered in the channel into the queue
func (self *Notifier) drain() {
	for {
		select {
		case event := <-self.input:
			self.queue.PushBack(event)
		default:
			return
		}
	}
}

func (self *Notifier) flush() {
	for self.queue.Len() > 0 {
		event := self.queue.PopFront()
		self.insertInbox(event)
		self.publish(event)
		self.postWebhook(event)
	}
}

func (self *Notifier) insertInbox(event *Event) {
	var rows []*model.Notification
	for _, facilityID := range event.FacilityIDs {
		users, err := self.contactsFor(facilityID)
		if err != nil {
			self.monitor.GetReport().Notifier.Errors.InsertError.Inc()
			self.Log.WithError(err).WithField("facility_id", facilityID).Error("Failed to load contacts")
			continue
		}
		for _, user := range users {
			rows = append(rows, &model.Notification{
				ID:            uuid.New(),
				UserID:        user.ID,
				Kind:          event.Kind,
				Message:       event.Message,
				RefEntityType: event.EntityType,
				RefEntityID:   event.EntityID,
				UnitIds:       event.UnitIdStrings(),
			})
		}
	}

	if len(rows) == 0 {
		return
	}

	err := self.db.WithContext(self.Ctx).Create(&rows).Error
	if err != nil {
		self.monitor.GetReport().Notifier.Errors.InsertError.Inc()
		self.Log.WithError(err).Error("Failed to insert notifications")
		return
	}
	self.monitor.GetReport().Notifier.State.NotificationsWritten.Add(uint64(len(rows)))
}

func (self *Notifier) contactsFor(facilityID uuid.UUID) (users []*model.User, err error) {
	cached, ok := self.contacts.Get(facilityID.String())
	if ok {
		return cached.([]*model.User), nil
	}

	err = self.db.WithContext(self.Ctx).
		Where("facility_id = ? AND active", facilityID).
		Find(&users).
		Error
	if err != nil {
		return
	}

	self.contacts.Set(facilityID.String(), users, cache.DefaultExpiration)
	return
}

func (self *Notifier) publish(event *Event) {
	if self.redisClient == nil {
		return
	}

	err := task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.Config.Notifier.MaxElapsedTime).
		WithMaxInterval(self.Config.Notifier.MaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.monitor.GetReport().Notifier.Errors.PublishError.Inc()
			self.Log.WithError(err).Warn("Failed to publish event, retrying")
			return err
		}).
		Run(func() error {
			return self.redisClient.Publish(self.Ctx, self.Config.Notifier.RedisChannelName, event).Err()
		})
	if err != nil {
		self.Log.WithError(err).WithField("kind", event.Kind).Error("Failed to publish event, giving up")
		return
	}
	self.monitor.GetReport().Notifier.State.RedisPublished.Inc()
}

func (self *Notifier) postWebhook(event *Event) {
	if self.httpClient == nil {
		return
	}

	err := task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.Config.Notifier.MaxElapsedTime).
		WithMaxInterval(self.Config.Notifier.MaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.monitor.GetReport().Notifier.Errors.WebhookError.Inc()
			self.Log.WithError(err).Warn("Failed to deliver webhook, retrying")
			return err
		}).
		Run(func() (err error) {
			resp, err := self.httpClient.R().
				SetContext(self.Ctx).
				SetBody(event).
				Post(self.Config.Notifier.WebhookUrl)
			if err != nil {
				return
			}
			if resp.IsError() {
				return fmt.Errorf("webhook returned %s", resp.Status())
			}
			return nil
		})
	if err != nil {
		self.Log.WithError(err).WithField("kind", event.Kind).Error("Failed to deliver webhook, giving up")
		return
	}
	self.monitor.GetReport().Notifier.State.WebhooksDelivered.Inc()
}
