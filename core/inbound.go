package core

import (
	"strings"
	"time"

	"github.com/cpacia/dashlink/ancs"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
	"github.com/cpacia/dashlink/policy"
)

// HandleFrame decodes a notification source frame from the phone and
// queues the resulting change. A malformed frame is returned to the caller
// and nothing is queued.
func (e *Engine) HandleFrame(frame []byte) error {
	evt, err := ancs.DecodeEvent(frame)
	if err != nil {
		log.Warningf("Dropping device frame %x: %s", frame, err)
		return err
	}

	switch evt.EventID {
	case ancs.EventRemoved:
		return e.submit("deviceRemoved", func(now time.Time) {
			if e.store.remove(evt.NotificationID(), models.ReasonRemovedByDevice, now) {
				log.Debugf("Notification %s removed by device", evt.NotificationID())
			}
		})
	default:
		return e.submit("deviceNotification", func(now time.Time) {
			e.ingest(evt, now)
		})
	}
}

// ingest admits a new notification or, if the ID is already known, updates
// the fields the event carries.
func (e *Engine) ingest(evt *ancs.Event, now time.Time) {
	id := evt.NotificationID()
	if e.store.find(id) != nil {
		e.store.update(id, func(n *models.Notification) {
			n.Category = evt.Category()
			n.Priority = evt.Priority()
		})
		return
	}

	n := &models.Notification{
		ID:          id,
		AppID:       models.PlaceholderAppID,
		AppName:     models.PlaceholderAppName,
		Title:       models.PlaceholderTitle,
		Body:        models.PlaceholderBody,
		Category:    evt.Category(),
		Priority:    evt.Priority(),
		ReceivedAt:  now,
		SurfacedAt:  now,
		PreExisting: evt.PreExisting(),
	}
	if d := e.store.admit(n); d != policy.Admitted {
		log.Debugf("Notification %s suppressed: %s", id, d)
		e.store.emit(&events.NotificationSuppressed{ID: id, AppID: n.AppID, Reason: d.String()})
	}
}

// HandleAttributes decodes a data source response and fills in the text
// and app identity of the notification it refers to. If the app turns out
// to be excluded by the allow or block lists the notification is purged.
func (e *Engine) HandleAttributes(frame []byte) error {
	attrs, err := ancs.DecodeAttributes(frame)
	if err != nil {
		log.Warningf("Dropping attribute frame %x: %s", frame, err)
		return err
	}
	return e.submit("deviceAttributes", func(now time.Time) {
		e.enrich(attrs)
	})
}

func (e *Engine) enrich(attrs *ancs.Attributes) {
	id := attrs.NotificationID()
	n := e.store.find(id)
	if n == nil {
		log.Debugf("Attributes for unknown notification %s", id)
		return
	}

	appID := n.AppID
	if attrs.AppIdentifier != "" {
		appID = attrs.AppIdentifier
	}
	if appID != models.PlaceholderAppID && !e.store.policy.Permits(appID) {
		if e.store.withdraw(id) {
			log.Debugf("Notification %s from %s suppressed after enrichment", id, appID)
			e.store.emit(&events.NotificationSuppressed{ID: id, AppID: appID, Reason: policy.SuppressedByBlocklist.String()})
		}
		return
	}

	e.store.update(id, func(n *models.Notification) {
		n.AppID = appID
		if attrs.AppName != "" {
			n.AppName = attrs.AppName
		} else if attrs.AppIdentifier != "" && n.AppName == models.PlaceholderAppName {
			n.AppName = attrs.AppIdentifier
		}
		if attrs.Title != "" {
			n.Title = attrs.Title
		}
		if body := joinBody(attrs.Subtitle, attrs.Message); body != "" {
			n.Body = body
		}
	})
}

func joinBody(subtitle, message string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{subtitle, message} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
