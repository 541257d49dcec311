package models

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a notification the same way the phone does.
type Category uint8

const (
	CategoryOther Category = iota
	CategoryIncomingCall
	CategoryMissedCall
	CategoryVoicemail
	CategorySocial
	CategorySchedule
	CategoryEmail
	CategoryNews
	CategoryHealthAndFitness
	CategoryBusinessAndFinance
	CategoryLocation
	CategoryEntertainment
)

var categoryNames = []string{
	"Other",
	"IncomingCall",
	"MissedCall",
	"Voicemail",
	"Social",
	"Schedule",
	"Email",
	"News",
	"HealthAndFitness",
	"BusinessAndFinance",
	"Location",
	"Entertainment",
}

// CategoryFromWire maps a raw category byte to a Category. Values the
// phone may add in the future map to CategoryOther.
func CategoryFromWire(b byte) Category {
	if int(b) >= len(categoryNames) {
		return CategoryOther
	}
	return Category(b)
}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return categoryNames[CategoryOther]
	}
	return categoryNames[c]
}

// ParseCategory accepts either the category name (case insensitive) or its
// numeric value.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(name, s) || fmt.Sprint(i) == s {
			return Category(i), nil
		}
	}
	return CategoryOther, fmt.Errorf("unknown category %q", s)
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	cat, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

// Priority orders notifications. Silent < Low < Normal < High < Urgent.
type Priority int8

const (
	PrioritySilent Priority = iota - 1
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PrioritySilent:
		return "Silent"
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return fmt.Sprintf("Priority(%d)", int8(p))
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	for _, candidate := range []Priority{PrioritySilent, PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		if strings.EqualFold(candidate.String(), string(b)) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown priority %q", string(b))
}

// DismissReason records why a notification left the active list.
type DismissReason string

const (
	ReasonUserDismissed   DismissReason = "UserDismissed"
	ReasonOpened          DismissReason = "Opened"
	ReasonAutoDismissed   DismissReason = "AutoDismissed"
	ReasonRemovedByDevice DismissReason = "RemovedByDevice"
	ReasonBlockedApp      DismissReason = "BlockedApp"
	ReasonDoNotDisturb    DismissReason = "DoNotDisturb"
)

// Placeholder text used until the phone supplies the real attributes, and
// when previews are disabled.
const (
	PlaceholderAppName = "Unknown App"
	PlaceholderAppID   = "unknown"
	PlaceholderTitle   = "New Notification"
	PlaceholderBody    = "Tap for details"
)

// Notification is a single notification mirrored from the phone or
// synthesized locally.
type Notification struct {
	ID            string        `json:"id"`
	AppID         string        `json:"appId"`
	AppName       string        `json:"appName"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	Category      Category      `json:"category"`
	Priority      Priority      `json:"priority"`
	ReceivedAt    time.Time     `json:"receivedAt"`
	SurfacedAt    time.Time     `json:"surfacedAt"`
	Read          bool          `json:"read"`
	Resurfaced    bool          `json:"resurfaced,omitempty"`
	PreExisting   bool          `json:"preExisting,omitempty"`
	SnoozedUntil  *time.Time    `json:"snoozedUntil,omitempty"`
	DismissedAt   *time.Time    `json:"dismissedAt,omitempty"`
	DismissReason DismissReason `json:"dismissReason,omitempty"`
}

// Copy returns a deep copy safe to hand out of the engine.
func (n *Notification) Copy() Notification {
	cp := *n
	if n.SnoozedUntil != nil {
		t := *n.SnoozedUntil
		cp.SnoozedUntil = &t
	}
	if n.DismissedAt != nil {
		t := *n.DismissedAt
		cp.DismissedAt = &t
	}
	return cp
}

// Redacted returns a copy with the title and body replaced by placeholder
// text. The app identity is kept.
func (n Notification) Redacted() Notification {
	n.Title = PlaceholderTitle
	n.Body = PlaceholderBody
	return n
}
