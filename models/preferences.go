package models

// DefaultQuickReplies are the canned replies offered before the user
// customizes the list.
var DefaultQuickReplies = []string{
	"OK",
	"Thanks",
	"I'm driving, will respond later",
	"On my way",
	"Can't talk now",
	"Yes",
	"No",
}

// DefaultAutoDismissAfter is the default auto-dismiss threshold in seconds.
const DefaultAutoDismissAfter = 30

// Preferences is the user-configurable notification behavior.
type Preferences struct {
	DoNotDisturb            bool     `json:"doNotDisturb" yaml:"doNotDisturb"`
	AllowedApps             []string `json:"allowedApps" yaml:"allowedApps"`
	BlockedApps             []string `json:"blockedApps" yaml:"blockedApps"`
	ShowPreviews            bool     `json:"showPreviews" yaml:"showPreviews"`
	AutoDismissAfterSeconds int      `json:"autoDismissAfterSeconds" yaml:"autoDismissAfterSeconds"`
	QuickReplies            []string `json:"quickReplies" yaml:"quickReplies"`
}

// DefaultPreferences returns the preferences used on first start.
func DefaultPreferences() Preferences {
	return Preferences{
		AllowedApps:             []string{},
		BlockedApps:             []string{},
		ShowPreviews:            true,
		AutoDismissAfterSeconds: DefaultAutoDismissAfter,
		QuickReplies:            append([]string(nil), DefaultQuickReplies...),
	}
}

// Copy returns a deep copy of the preferences.
func (p Preferences) Copy() Preferences {
	p.AllowedApps = append([]string{}, p.AllowedApps...)
	p.BlockedApps = append([]string{}, p.BlockedApps...)
	p.QuickReplies = append([]string{}, p.QuickReplies...)
	return p
}
