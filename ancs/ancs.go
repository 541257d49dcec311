// Package ancs decodes the notification frames forwarded by the phone and
// encodes the commands sent back to it. The layout follows the Apple
// Notification Center Service: a notification source event announces a
// notification by UID and a separate data source response carries its
// attributes.
package ancs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cpacia/dashlink/models"
)

var (
	// ErrMalformedFrame means a frame was too short or otherwise unparseable.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnknownNotificationID means an ID does not map back to a device UID.
	ErrUnknownNotificationID = errors.New("unknown notification id")
)

// IDPrefix is prepended to the decimal UID to form a notification ID.
const IDPrefix = "ancs_"

// MinFrameLen is the size of a notification source event.
const MinFrameLen = 8

// EventID is the kind of notification source event.
type EventID uint8

const (
	EventAdded    EventID = 0
	EventModified EventID = 1
	EventRemoved  EventID = 2
)

func (e EventID) String() string {
	switch e {
	case EventAdded:
		return "Added"
	case EventModified:
		return "Modified"
	case EventRemoved:
		return "Removed"
	}
	return fmt.Sprintf("EventID(%d)", uint8(e))
}

// Event flags.
const (
	FlagSilent      uint8 = 0x01
	FlagImportant   uint8 = 0x02
	FlagPreExisting uint8 = 0x04
)

// CommandID is an action the phone is asked to perform.
type CommandID uint8

const (
	CommandOpen    CommandID = 0
	CommandDismiss CommandID = 2
)

// Event is a decoded notification source frame.
type Event struct {
	EventID       EventID
	Flags         uint8
	CategoryID    uint8
	CategoryCount uint8
	UID           uint32
}

// DecodeEvent parses a notification source frame. Trailing bytes are ignored.
func DecodeEvent(frame []byte) (*Event, error) {
	if len(frame) < MinFrameLen {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrMalformedFrame, MinFrameLen, len(frame))
	}
	return &Event{
		EventID:       EventID(frame[0]),
		Flags:         frame[1],
		CategoryID:    frame[2],
		CategoryCount: frame[3],
		UID:           binary.BigEndian.Uint32(frame[4:8]),
	}, nil
}

// NotificationID returns the local ID for the event's UID.
func (e *Event) NotificationID() string {
	return NotificationID(e.UID)
}

// Priority maps the event flags to a priority. Important wins over silent.
func (e *Event) Priority() models.Priority {
	switch {
	case e.Flags&FlagImportant != 0:
		return models.PriorityUrgent
	case e.Flags&FlagSilent != 0:
		return models.PrioritySilent
	default:
		return models.PriorityNormal
	}
}

// Category returns the notification category, unknown values map to Other.
func (e *Event) Category() models.Category {
	return models.CategoryFromWire(e.CategoryID)
}

// PreExisting reports whether the notification existed before the
// connection was established.
func (e *Event) PreExisting() bool {
	return e.Flags&FlagPreExisting != 0
}

// Encode returns the wire form of the event.
func (e *Event) Encode() []byte {
	frame := make([]byte, MinFrameLen)
	frame[0] = byte(e.EventID)
	frame[1] = e.Flags
	frame[2] = e.CategoryID
	frame[3] = e.CategoryCount
	binary.BigEndian.PutUint32(frame[4:], e.UID)
	return frame
}

// NotificationID derives the local ID for a device UID.
func NotificationID(uid uint32) string {
	return IDPrefix + strconv.FormatUint(uint64(uid), 10)
}

// ParseNotificationID is the inverse of NotificationID. Locally synthesized
// IDs, such as reply echoes, fail with ErrUnknownNotificationID.
func ParseNotificationID(id string) (uint32, error) {
	if !strings.HasPrefix(id, IDPrefix) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNotificationID, id)
	}
	digits := id[len(IDPrefix):]
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNotificationID, id)
	}
	uid, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNotificationID, id)
	}
	return uint32(uid), nil
}

// EncodeCommand builds a command frame for the notification with the given ID.
func EncodeCommand(cmd CommandID, id string) ([]byte, error) {
	uid, err := ParseNotificationID(id)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 5)
	frame[0] = byte(cmd)
	binary.BigEndian.PutUint32(frame[1:], uid)
	return frame, nil
}
