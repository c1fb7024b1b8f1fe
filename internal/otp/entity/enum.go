package entity

import "strconv"

// CodeStatus is the lifecycle state of a one-time code.
//
// A code is created ACTIVE and leaves that state exactly once: to USED on a
// successful activation or to EXPIRED when its lifetime lapses. There are no
// other transitions.
type CodeStatus int16

const (
	// CodeStatusUnknown means the status is not known / not set.
	CodeStatusUnknown CodeStatus = 0

	// CodeStatusActive means the code can still be activated.
	CodeStatusActive CodeStatus = 1

	// CodeStatusUsed means the code was consumed by a successful activation.
	CodeStatusUsed CodeStatus = 2

	// CodeStatusExpired means the code lapsed before being activated.
	CodeStatusExpired CodeStatus = 3
)

func (cs CodeStatus) String() string {
	switch cs {
	case CodeStatusActive:
		return "Active"
	case CodeStatusUsed:
		return "Used"
	case CodeStatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

func (cs CodeStatus) IsUnknown() bool {
	switch cs {
	case CodeStatusActive, CodeStatusUsed, CodeStatusExpired:
		return false
	default:
		return true
	}
}

// IsTerminal reports whether the status can no longer change.
func (cs CodeStatus) IsTerminal() bool {
	return cs == CodeStatusUsed || cs == CodeStatusExpired
}

// ParseSafeCodeStatuses parses raw status filters, dropping duplicates and
// anything that is not a known status.
func ParseSafeCodeStatuses(raws []string) []CodeStatus {
	out := make([]CodeStatus, 0)
	seen := map[CodeStatus]struct{}{}

	for _, v := range raws {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			continue
		}

		s := CodeStatus(n)
		if s.IsUnknown() {
			continue
		}

		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// Channel identifies a delivery channel for one-time codes.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelTelegram:
		return true
	default:
		return false
	}
}

// ParseChannels parses raw channel names, dropping duplicates and unknown
// values. Order is preserved.
func ParseChannels(raws []string) []Channel {
	out := make([]Channel, 0, len(raws))
	seen := map[Channel]struct{}{}

	for _, v := range raws {
		c := Channel(v)
		if !c.IsValid() {
			continue
		}

		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}
