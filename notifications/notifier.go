package notifications

import (
	"sync"
	"time"

	"github.com/cpacia/dashlink/database"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("NOTIF")

// notificationWrapper is sent to websocket clients for lifecycle events.
type notificationWrapper struct {
	Type         string      `json:"type"`
	Notification interface{} `json:"notification"`
}

// stateWrapper is sent to websocket clients for changes to aggregate state.
type stateWrapper struct {
	Type  string      `json:"type"`
	State interface{} `json:"state"`
}

// notifierStarted is emitted once the notifier has subscribed.
type notifierStarted struct{}

// Option configures a Notifier.
type Option func(n *Notifier)

// ShowPreviews supplies the current preview setting. When it returns false
// notification text is withheld from websocket clients.
func ShowPreviews(fn func() bool) Option {
	return func(n *Notifier) {
		n.showPreviews = fn
	}
}

// DisableLog stops the notifier from persisting the activity log.
func DisableLog() Option {
	return func(n *Notifier) {
		n.logDisabled = true
	}
}

// Notifier translates engine events into activity log entries and
// websocket messages.
type Notifier struct {
	notifyFunc   func(interface{}) error
	bus          events.Bus
	db           database.Database
	showPreviews func() bool
	logDisabled  bool
	shutdown     chan struct{}
	ready        chan struct{}
	readyOnce    sync.Once
}

// NewNotifier returns a new notifier.
func NewNotifier(bus events.Bus, db database.Database, notifyFunc func(interface{}) error, opts ...Option) *Notifier {
	n := &Notifier{
		bus:          bus,
		db:           db,
		notifyFunc:   notifyFunc,
		showPreviews: func() bool { return true },
		shutdown:     make(chan struct{}),
		ready:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start will start up the notifier. This should use its own goroutine.
func (n *Notifier) Start() {
	lifecycle := []interface{}{
		&events.NotificationReceived{},
		&events.NotificationDismissed{},
		&events.NotificationSnoozed{},
		&events.NotificationSuppressed{},
		&events.UrgentNotification{},
		&events.ReplySent{},
		&events.Error{},
	}
	lifecycleSub, err := n.bus.Subscribe(lifecycle, events.BufSize(64))
	if err != nil {
		log.Errorf("Error subscribing to events: %s", err)
		n.markReady()
		return
	}
	defer lifecycleSub.Close()

	state := []interface{}{
		&events.NotificationUpdated{},
		&events.NotificationRead{},
		&events.CountChanged{},
		&events.HasUnreadChanged{},
		&events.PreferencesChanged{},
		&events.ConnectionChanged{},
	}
	stateSub, err := n.bus.Subscribe(state, events.BufSize(64))
	if err != nil {
		log.Errorf("Error subscribing to events: %s", err)
		n.markReady()
		return
	}
	defer stateSub.Close()

	n.markReady()
	n.bus.Emit(&notifierStarted{})

	for {
		select {
		case event := <-lifecycleSub.Out():
			entry := logEntry(event)
			if entry == nil {
				continue
			}
			if !n.logDisabled {
				err := n.db.Update(func(tx database.Tx) error {
					return tx.Save(entry)
				})
				if err != nil {
					log.Errorf("Error saving activity log entry: %s", err)
				}
			}
			if err := n.notifyFunc(notificationWrapper{Type: string(entry.Type), Notification: n.redact(event)}); err != nil {
				log.Errorf("Error sending notification: %s", err)
			}
		case event := <-stateSub.Out():
			if err := n.notifyFunc(stateWrapper{Type: stateType(event), State: event}); err != nil {
				log.Errorf("Error sending notification: %s", err)
			}
		case <-n.shutdown:
			return
		}
	}
}

// Ready is closed once Start has subscribed to the bus. Events emitted
// before then are not seen by the notifier.
func (n *Notifier) Ready() <-chan struct{} {
	return n.ready
}

func (n *Notifier) markReady() {
	n.readyOnce.Do(func() { close(n.ready) })
}

// Stop shuts down the notifier.
func (n *Notifier) Stop() {
	close(n.shutdown)
}

func (n *Notifier) redact(event interface{}) interface{} {
	if n.showPreviews() {
		return event
	}
	switch e := event.(type) {
	case *events.NotificationReceived:
		return &events.NotificationReceived{Notification: e.Notification.Redacted(), Resurfaced: e.Resurfaced}
	case *events.UrgentNotification:
		return &events.UrgentNotification{Notification: e.Notification.Redacted()}
	case *events.ReplySent:
		return &events.ReplySent{ID: e.ID}
	}
	return event
}

// logEntry converts a lifecycle event into an activity log entry.
func logEntry(event interface{}) *models.NotificationLog {
	var entry *models.NotificationLog
	switch e := event.(type) {
	case *events.NotificationReceived:
		entry = models.NewNotificationLog(models.LogReceived, e.Notification.ID)
		entry.AppID = e.Notification.AppID
		entry.Title = e.Notification.Title
		if e.Resurfaced {
			entry.Detail = "resurfaced"
		}
	case *events.NotificationDismissed:
		entry = models.NewNotificationLog(models.LogDismissed, e.ID)
		entry.Detail = string(e.Reason)
	case *events.NotificationSnoozed:
		entry = models.NewNotificationLog(models.LogSnoozed, e.ID)
		entry.Detail = e.Until.Format(time.RFC3339)
	case *events.NotificationSuppressed:
		entry = models.NewNotificationLog(models.LogSuppressed, e.ID)
		entry.AppID = e.AppID
		entry.Detail = e.Reason
	case *events.UrgentNotification:
		entry = models.NewNotificationLog(models.LogUrgent, e.Notification.ID)
		entry.AppID = e.Notification.AppID
		entry.Title = e.Notification.Title
	case *events.ReplySent:
		entry = models.NewNotificationLog(models.LogReply, e.ID)
		entry.Detail = e.Text
	case *events.Error:
		entry = models.NewNotificationLog(models.LogError, "")
		entry.Detail = e.Message
	}
	return entry
}

func stateType(event interface{}) string {
	switch event.(type) {
	case *events.NotificationUpdated:
		return "updated"
	case *events.NotificationRead:
		return "read"
	case *events.CountChanged:
		return "countChanged"
	case *events.HasUnreadChanged:
		return "hasUnreadChanged"
	case *events.PreferencesChanged:
		return "preferencesChanged"
	case *events.ConnectionChanged:
		return "connectionChanged"
	}
	return "unknown"
}
