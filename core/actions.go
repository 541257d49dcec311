package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cpacia/dashlink/ancs"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
)

// ReplyPrefix is prepended to the ID of the original notification to form
// the ID of the local reply echo.
const ReplyPrefix = "reply_"

// MaxSnoozeMinutes is the longest snooze accepted, one week.
const MaxSnoozeMinutes = 7 * 24 * 60

// Dismiss moves the notification into history and asks the phone to
// dismiss it too.
func (e *Engine) Dismiss(id string) error {
	return e.submit("dismiss", func(now time.Time) {
		e.dismiss(id, models.ReasonUserDismissed, ancs.CommandDismiss, now)
	})
}

// DismissAll dismisses every notification active at the time the command
// is applied.
func (e *Engine) DismissAll() error {
	return e.submit("dismissAll", func(now time.Time) {
		ids := make([]string, 0, len(e.store.active))
		for _, n := range e.store.active {
			ids = append(ids, n.ID)
		}
		for _, id := range ids {
			e.dismiss(id, models.ReasonUserDismissed, ancs.CommandDismiss, now)
		}
	})
}

// Open moves the notification into history and asks the phone to perform
// its default action.
func (e *Engine) Open(id string) error {
	return e.submit("open", func(now time.Time) {
		e.dismiss(id, models.ReasonOpened, ancs.CommandOpen, now)
	})
}

// MarkRead flags the notification as read.
func (e *Engine) MarkRead(id string) error {
	return e.submit("markRead", func(now time.Time) {
		if err := e.store.markRead(id); err != nil {
			e.reportError(err, "Mark read %s", id)
		}
	})
}

// Snooze parks the notification for the given number of minutes after
// which it returns to the top of the active list.
func (e *Engine) Snooze(id string, minutes int) error {
	if minutes <= 0 || minutes > MaxSnoozeMinutes {
		return ErrInvalidSnooze
	}
	d := time.Duration(minutes) * time.Minute
	return e.submit("snooze", func(now time.Time) {
		token, ok := e.store.park(id, now.Add(d))
		if !ok {
			e.reportError(fmt.Errorf("%w: %s", ErrNotFound, id), "Snooze")
			return
		}
		e.scheduler.schedule(id, token, d)
		log.Debugf("Notification %s snoozed for %s", id, d)
	})
}

// Reply records a reply to the notification. A read, silent echo of the
// reply is inserted at the top of the active list and the original is
// dismissed.
func (e *Engine) Reply(id, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReply
	}
	return e.submit("reply", func(now time.Time) {
		e.reply(id, text, now)
	})
}

// QuickReply replies with the quick reply template at index. An index out
// of range is rejected without changing anything.
func (e *Engine) QuickReply(id string, index int) error {
	e.mtx.RLock()
	n := len(e.prefs.QuickReplies)
	e.mtx.RUnlock()
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n)
	}
	return e.submit("quickReply", func(now time.Time) {
		// The templates may have changed since the index was checked.
		if index >= len(e.prefs.QuickReplies) {
			e.reportError(fmt.Errorf("%w: %d", ErrIndexOutOfRange, index), "Quick reply to %s", id)
			return
		}
		e.reply(id, e.prefs.QuickReplies[index], now)
	})
}

func (e *Engine) reply(id, text string, now time.Time) {
	original := e.store.find(id)
	if original == nil {
		e.reportError(fmt.Errorf("%w: %s", ErrNotFound, id), "Reply")
		return
	}

	echo := &models.Notification{
		ID:         ReplyPrefix + id,
		AppID:      original.AppID,
		AppName:    original.AppName,
		Title:      "You",
		Body:       text,
		Category:   models.CategoryOther,
		Priority:   models.PrioritySilent,
		ReceivedAt: now,
		SurfacedAt: now,
		Read:       true,
	}
	e.store.insert(echo)
	e.dismiss(id, models.ReasonUserDismissed, ancs.CommandDismiss, now)
	e.store.emit(&events.ReplySent{ID: id, Text: text})
}

// dismiss removes the record and queues the device command. The command is
// skipped for IDs which did not come from the phone.
func (e *Engine) dismiss(id string, reason models.DismissReason, cmd ancs.CommandID, now time.Time) {
	if !e.store.remove(id, reason, now) {
		e.reportError(fmt.Errorf("%w: %s", ErrNotFound, id), "Dismiss")
		return
	}
	frame, err := ancs.EncodeCommand(cmd, id)
	if errors.Is(err, ancs.ErrUnknownNotificationID) {
		log.Debugf("Not forwarding command for local notification %s", id)
		return
	} else if err != nil {
		e.reportError(err, "Encode command for %s", id)
		return
	}
	e.send(frame)
}
