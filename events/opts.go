package events

type subSettings struct {
	buffer int
	filter func(interface{}) bool
}

var subSettingsDefault = subSettings{
	buffer: 16,
}

// BufSize sets the capacity of the subscription channel.
func BufSize(n int) SubscriptionOpt {
	return func(s interface{}) error {
		s.(*subSettings).buffer = n
		return nil
	}
}

// Filter only delivers events for which fn returns true.
func Filter(fn func(evt interface{}) bool) SubscriptionOpt {
	return func(s interface{}) error {
		s.(*subSettings).filter = fn
		return nil
	}
}

// ForApp only delivers events that carry a notification from the given app.
// Events which carry no app identity (counts, errors, etc) are passed through.
func ForApp(appID string) SubscriptionOpt {
	return Filter(func(evt interface{}) bool {
		switch e := evt.(type) {
		case *NotificationReceived:
			return e.Notification.AppID == appID
		case *UrgentNotification:
			return e.Notification.AppID == appID
		case *NotificationSuppressed:
			return e.AppID == appID
		}
		return true
	})
}
