// Package policy decides whether a notification may enter the active list.
package policy

import (
	"sort"

	"github.com/cpacia/dashlink/models"
)

// Membership is the state of a single app in the policy table.
type Membership uint8

const (
	Unset Membership = iota
	Allowed
	Blocked
)

func (m Membership) String() string {
	switch m {
	case Allowed:
		return "Allowed"
	case Blocked:
		return "Blocked"
	}
	return "Unset"
}

// Decision is the outcome of Admit.
type Decision uint8

const (
	Admitted Decision = iota
	SuppressedByBlocklist
	SuppressedByDND
)

func (d Decision) String() string {
	switch d {
	case SuppressedByBlocklist:
		return "SuppressedByBlocklist"
	case SuppressedByDND:
		return "SuppressedByDND"
	}
	return "Admitted"
}

// Table maps app IDs to a single membership so an app can never be both
// allowed and blocked. The zero value is an empty table.
type Table struct {
	members map[string]Membership
	allowed int
}

// NewTable returns a table seeded from allow and block lists. When an app is
// in both lists the block wins.
func NewTable(allowed, blocked []string) *Table {
	t := &Table{}
	t.SetAllowed(allowed)
	t.SetBlocked(blocked)
	return t
}

// Membership returns the app's membership.
func (t *Table) Membership(appID string) Membership {
	return t.members[appID]
}

func (t *Table) set(appID string, m Membership) {
	if t.members == nil {
		t.members = make(map[string]Membership)
	}
	prev := t.members[appID]
	if prev == Allowed {
		t.allowed--
	}
	if m == Allowed {
		t.allowed++
	}
	if m == Unset {
		delete(t.members, appID)
		return
	}
	t.members[appID] = m
}

// Allow moves the app to the allowed list, removing it from the blocked list.
func (t *Table) Allow(appID string) {
	t.set(appID, Allowed)
}

// Block moves the app to the blocked list, removing it from the allowed list.
func (t *Table) Block(appID string) {
	t.set(appID, Blocked)
}

// SetAllowed replaces the allowed list. Apps listed here are removed from
// the blocked list.
func (t *Table) SetAllowed(appIDs []string) {
	t.replace(Allowed, appIDs)
}

// SetBlocked replaces the blocked list. Apps listed here are removed from
// the allowed list.
func (t *Table) SetBlocked(appIDs []string) {
	t.replace(Blocked, appIDs)
}

func (t *Table) replace(m Membership, appIDs []string) {
	for _, id := range t.list(m) {
		t.set(id, Unset)
	}
	for _, id := range appIDs {
		if id == "" {
			continue
		}
		t.set(id, m)
	}
}

// Allowed returns the allowed apps, sorted.
func (t *Table) Allowed() []string {
	return t.list(Allowed)
}

// Blocked returns the blocked apps, sorted.
func (t *Table) Blocked() []string {
	return t.list(Blocked)
}

func (t *Table) list(m Membership) []string {
	out := []string{}
	for id, membership := range t.members {
		if membership == m {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Permits reports whether the app passes the lists. A blocked app never
// passes. When the allowed list is non-empty only its members pass.
func (t *Table) Permits(appID string) bool {
	switch t.Membership(appID) {
	case Blocked:
		return false
	case Allowed:
		return true
	}
	return t.allowed == 0
}

// Admit decides whether the notification may enter the active list. The
// lists are checked before do-not-disturb, which only lets urgent
// notifications through. A notification whose app identity has not been
// fetched yet skips the lists; they are applied again once it is known.
func Admit(n *models.Notification, table *Table, dnd bool) Decision {
	if n.AppID != models.PlaceholderAppID && !table.Permits(n.AppID) {
		return SuppressedByBlocklist
	}
	if dnd && n.Priority < models.PriorityUrgent {
		return SuppressedByDND
	}
	return Admitted
}
