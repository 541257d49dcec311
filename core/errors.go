package core

import (
	"fmt"

	"github.com/cpacia/dashlink/core/coreiface"
)

var (
	// ErrNotFound is returned or reported when an action references an ID
	// which is neither active nor snoozed.
	ErrNotFound = fmt.Errorf("%w: notification", coreiface.ErrNotFound)

	// ErrIndexOutOfRange is returned when a quick reply index does not
	// reference a template.
	ErrIndexOutOfRange = fmt.Errorf("%w: quick reply index out of range", coreiface.ErrBadRequest)

	// ErrInvalidSnooze is returned when a snooze duration is not positive
	// or longer than MaxSnoozeMinutes.
	ErrInvalidSnooze = fmt.Errorf("%w: snooze minutes must be between 1 and %d", coreiface.ErrBadRequest, MaxSnoozeMinutes)

	// ErrEmptyReply is returned when a reply has no text.
	ErrEmptyReply = fmt.Errorf("%w: reply text is empty", coreiface.ErrBadRequest)

	// ErrEngineStopped is returned when work is submitted after Stop.
	ErrEngineStopped = fmt.Errorf("%w: engine stopped", coreiface.ErrUnavailable)
)
