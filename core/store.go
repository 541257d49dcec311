package core

import (
	"fmt"
	"time"

	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/models"
	"github.com/cpacia/dashlink/policy"
)

// HistoryLimit is the maximum number of dismissed notifications kept.
const HistoryLimit = 100

type parkedRecord struct {
	n     *models.Notification
	token uint64
}

// notificationStore holds the active list, the snoozed set and the history.
// It is only touched by the engine worker while holding the write lock, and
// by queries holding the read lock. Every mutation appends the events it
// produces to the outbox which the worker publishes after unlocking.
//
// An ID is in at most one of active, parked or history.
type notificationStore struct {
	// active is ordered most recently surfaced first.
	active []*models.Notification

	parked    map[string]*parkedRecord
	nextToken uint64

	// history is ordered most recently dismissed first.
	history      []*models.Notification
	historyLimit int

	policy *policy.Table
	dnd    bool

	hasUnread bool

	// unpark is called whenever a snoozed record is resolved without
	// resurfacing so the pending timer can be cancelled.
	unpark func(id string)

	outbox []interface{}
}

func newNotificationStore(table *policy.Table, dnd bool) *notificationStore {
	return &notificationStore{
		parked:       make(map[string]*parkedRecord),
		historyLimit: HistoryLimit,
		policy:       table,
		dnd:          dnd,
		unpark:       func(string) {},
	}
}

func (s *notificationStore) emit(evt interface{}) {
	s.outbox = append(s.outbox, evt)
}

// drain returns and clears the pending events.
func (s *notificationStore) drain() []interface{} {
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *notificationStore) indexOf(id string) int {
	for i, n := range s.active {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *notificationStore) find(id string) *models.Notification {
	if i := s.indexOf(id); i >= 0 {
		return s.active[i]
	}
	if p, ok := s.parked[id]; ok {
		return p.n
	}
	return nil
}

// admit runs the policy and, on admission, prepends the record.
func (s *notificationStore) admit(n *models.Notification) policy.Decision {
	if d := policy.Admit(n, s.policy, s.dnd); d != policy.Admitted {
		return d
	}
	s.insert(n)
	return policy.Admitted
}

// insert prepends the record without consulting the policy. Any earlier
// copy of the same ID is replaced.
func (s *notificationStore) insert(n *models.Notification) {
	if i := s.indexOf(n.ID); i >= 0 {
		s.active = append(s.active[:i], s.active[i+1:]...)
	}
	if _, ok := s.parked[n.ID]; ok {
		delete(s.parked, n.ID)
		s.unpark(n.ID)
	}
	s.dropHistory(n.ID)

	s.active = append([]*models.Notification{n}, s.active...)

	s.emit(&events.NotificationReceived{Notification: n.Copy(), Resurfaced: n.Resurfaced})
	s.emit(&events.CountChanged{Count: len(s.active)})
	s.signalUnread()
	// Notifications replayed when the phone reconnects were already seen.
	if n.Priority == models.PriorityUrgent && !n.PreExisting {
		s.emit(&events.UrgentNotification{Notification: n.Copy()})
	}
}

// update applies fn to an active or snoozed record. Only changes to active
// records are signalled.
func (s *notificationStore) update(id string, fn func(n *models.Notification)) bool {
	if i := s.indexOf(id); i >= 0 {
		fn(s.active[i])
		s.emit(&events.NotificationUpdated{ID: id})
		s.signalUnread()
		return true
	}
	if p, ok := s.parked[id]; ok {
		fn(p.n)
		return true
	}
	return false
}

func (s *notificationStore) markRead(id string) error {
	n := s.find(id)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if n.Read {
		return nil
	}
	n.Read = true
	if s.indexOf(id) >= 0 {
		s.emit(&events.NotificationRead{ID: id})
		s.emit(&events.NotificationUpdated{ID: id})
		s.signalUnread()
	}
	return nil
}

// remove moves an active or snoozed record into history.
func (s *notificationStore) remove(id string, reason models.DismissReason, now time.Time) bool {
	if i := s.indexOf(id); i >= 0 {
		n := s.active[i]
		s.active = append(s.active[:i], s.active[i+1:]...)
		s.pushHistory(n, reason, now)
		s.emit(&events.NotificationDismissed{ID: id, Reason: reason})
		s.emit(&events.CountChanged{Count: len(s.active)})
		s.signalUnread()
		return true
	}
	if p, ok := s.parked[id]; ok {
		delete(s.parked, id)
		s.unpark(id)
		p.n.SnoozedUntil = nil
		s.pushHistory(p.n, reason, now)
		s.emit(&events.NotificationDismissed{ID: id, Reason: reason})
		return true
	}
	return false
}

// withdraw drops a record which turned out to fail the policy once its app
// was known. It is treated as never admitted so it does not reach history.
func (s *notificationStore) withdraw(id string) bool {
	if i := s.indexOf(id); i >= 0 {
		s.active[i] = nil
		s.active = append(s.active[:i], s.active[i+1:]...)
		s.emit(&events.CountChanged{Count: len(s.active)})
		s.signalUnread()
		return true
	}
	if _, ok := s.parked[id]; ok {
		delete(s.parked, id)
		s.unpark(id)
		return true
	}
	return false
}

// purge moves every active record matching fn into history. A single
// count signal is emitted for the batch.
func (s *notificationStore) purge(fn func(n *models.Notification) bool, reason models.DismissReason, now time.Time) []string {
	var (
		kept    = s.active[:0]
		removed []*models.Notification
	)
	for _, n := range s.active {
		if fn(n) {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	if len(removed) == 0 {
		return nil
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept

	ids := make([]string, 0, len(removed))
	for _, n := range removed {
		s.pushHistory(n, reason, now)
		s.emit(&events.NotificationDismissed{ID: n.ID, Reason: reason})
		ids = append(ids, n.ID)
	}
	s.emit(&events.CountChanged{Count: len(s.active)})
	s.signalUnread()
	return ids
}

// park moves an active record into the snoozed set. The returned token
// identifies this particular snooze so a stale timer can be told apart.
func (s *notificationStore) park(id string, until time.Time) (uint64, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return 0, false
	}
	n := s.active[i]
	s.active = append(s.active[:i], s.active[i+1:]...)

	n.SnoozedUntil = &until
	s.nextToken++
	s.parked[id] = &parkedRecord{n: n, token: s.nextToken}

	s.emit(&events.NotificationSnoozed{ID: id, Until: until})
	s.emit(&events.CountChanged{Count: len(s.active)})
	s.signalUnread()
	return s.nextToken, true
}

// resurface returns a snoozed record to the head of the active list. The
// policy is not consulted. A token which no longer matches is a no-op.
func (s *notificationStore) resurface(id string, token uint64, now time.Time) bool {
	p, ok := s.parked[id]
	if !ok || p.token != token {
		return false
	}
	delete(s.parked, id)

	n := p.n
	n.SnoozedUntil = nil
	n.Resurfaced = true
	n.SurfacedAt = now
	s.active = append([]*models.Notification{n}, s.active...)

	s.emit(&events.NotificationReceived{Notification: n.Copy(), Resurfaced: true})
	s.emit(&events.CountChanged{Count: len(s.active)})
	s.signalUnread()
	if n.Priority == models.PriorityUrgent {
		s.emit(&events.UrgentNotification{Notification: n.Copy()})
	}
	return true
}

func (s *notificationStore) setDoNotDisturb(enabled bool, now time.Time) []string {
	s.dnd = enabled
	if !enabled {
		return nil
	}
	return s.purge(func(n *models.Notification) bool {
		return n.Priority < models.PriorityUrgent
	}, models.ReasonDoNotDisturb, now)
}

func (s *notificationStore) blockApp(appID string, now time.Time) []string {
	s.policy.Block(appID)
	return s.purge(func(n *models.Notification) bool {
		return n.AppID == appID
	}, models.ReasonBlockedApp, now)
}

func (s *notificationStore) allowApp(appID string) {
	s.policy.Allow(appID)
}

func (s *notificationStore) setBlockedApps(appIDs []string, now time.Time) []string {
	s.policy.SetBlocked(appIDs)
	return s.purge(func(n *models.Notification) bool {
		return s.policy.Membership(n.AppID) == policy.Blocked
	}, models.ReasonBlockedApp, now)
}

func (s *notificationStore) setAllowedApps(appIDs []string) {
	s.policy.SetAllowed(appIDs)
}

func (s *notificationStore) clearHistory() {
	for i := range s.history {
		s.history[i] = nil
	}
	s.history = nil
}

func (s *notificationStore) pushHistory(n *models.Notification, reason models.DismissReason, now time.Time) {
	dismissedAt := now
	n.DismissedAt = &dismissedAt
	n.DismissReason = reason
	s.dropHistory(n.ID)
	s.history = append([]*models.Notification{n}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history[s.historyLimit] = nil
		s.history = s.history[:s.historyLimit]
	}
}

func (s *notificationStore) dropHistory(id string) {
	for i, n := range s.history {
		if n.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			return
		}
	}
}

// signalUnread emits HasUnreadChanged only when the value flips.
func (s *notificationStore) signalUnread() {
	hasUnread := false
	for _, n := range s.active {
		if !n.Read {
			hasUnread = true
			break
		}
	}
	if hasUnread != s.hasUnread {
		s.hasUnread = hasUnread
		s.emit(&events.HasUnreadChanged{HasUnread: hasUnread})
	}
}

func (s *notificationStore) snapshot(list []*models.Notification, fn func(n *models.Notification) bool) []models.Notification {
	out := make([]models.Notification, 0, len(list))
	for _, n := range list {
		if fn == nil || fn(n) {
			out = append(out, n.Copy())
		}
	}
	return out
}
