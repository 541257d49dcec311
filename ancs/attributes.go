package ancs

import (
	"encoding/binary"
	"fmt"
)

// AttributeID identifies a notification attribute in a data source response.
type AttributeID uint8

const (
	AttrAppIdentifier AttributeID = 0
	AttrTitle         AttributeID = 1
	AttrSubtitle      AttributeID = 2
	AttrMessage       AttributeID = 3
	AttrAppName       AttributeID = 8
)

// commandGetNotificationAttributes is the command ID echoed at the start of
// a data source response.
const commandGetNotificationAttributes = 0

// Attributes is a decoded data source response.
type Attributes struct {
	UID           uint32
	AppIdentifier string
	AppName       string
	Title         string
	Subtitle      string
	Message       string
}

// NotificationID returns the local ID the attributes belong to.
func (a *Attributes) NotificationID() string {
	return NotificationID(a.UID)
}

// DecodeAttributes parses a data source response of the form
// [command:1][uid:4]([attr:1][len:2][value:len])*. Unknown attributes are
// skipped.
func DecodeAttributes(frame []byte) (*Attributes, error) {
	if len(frame) < 5 {
		return nil, fmt.Errorf("%w: attribute response too short", ErrMalformedFrame)
	}
	if frame[0] != commandGetNotificationAttributes {
		return nil, fmt.Errorf("%w: unexpected command %d", ErrMalformedFrame, frame[0])
	}
	attrs := &Attributes{UID: binary.BigEndian.Uint32(frame[1:5])}

	rest := frame[5:]
	for len(rest) > 0 {
		if len(rest) < 3 {
			return nil, fmt.Errorf("%w: truncated attribute header", ErrMalformedFrame)
		}
		id := AttributeID(rest[0])
		n := int(binary.BigEndian.Uint16(rest[1:3]))
		rest = rest[3:]
		if len(rest) < n {
			return nil, fmt.Errorf("%w: attribute %d wants %d bytes, have %d", ErrMalformedFrame, id, n, len(rest))
		}
		val := string(rest[:n])
		rest = rest[n:]

		switch id {
		case AttrAppIdentifier:
			attrs.AppIdentifier = val
		case AttrAppName:
			attrs.AppName = val
		case AttrTitle:
			attrs.Title = val
		case AttrSubtitle:
			attrs.Subtitle = val
		case AttrMessage:
			attrs.Message = val
		}
	}
	return attrs, nil
}

// EncodeAttributes builds a data source response. Empty attributes are
// omitted.
func EncodeAttributes(a *Attributes) []byte {
	frame := make([]byte, 5)
	frame[0] = commandGetNotificationAttributes
	binary.BigEndian.PutUint32(frame[1:], a.UID)

	put := func(id AttributeID, val string) {
		if val == "" {
			return
		}
		hdr := make([]byte, 3)
		hdr[0] = byte(id)
		binary.BigEndian.PutUint16(hdr[1:], uint16(len(val)))
		frame = append(frame, hdr...)
		frame = append(frame, val...)
	}
	put(AttrAppIdentifier, a.AppIdentifier)
	put(AttrTitle, a.Title)
	put(AttrSubtitle, a.Subtitle)
	put(AttrMessage, a.Message)
	put(AttrAppName, a.AppName)
	return frame
}
