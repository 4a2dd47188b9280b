package domain

import "strings"

// OnlineThreshold is the lowest presence status value considered online.
const OnlineThreshold = 20

// PresenceStatus is the protocol-reported availability of a contact.
// Higher values mean more available.
type PresenceStatus struct {
	Status int
	Name   string
}

var (
	Offline      = PresenceStatus{Status: 0, Name: "Offline"}
	Away         = PresenceStatus{Status: 40, Name: "Away"}
	Online       = PresenceStatus{Status: 65, Name: "Online"}
	FreeForChat  = PresenceStatus{Status: 85, Name: "Free for chat"}
	DoNotDisturb = PresenceStatus{Status: 30, Name: "Do not disturb"}
)

func (p PresenceStatus) IsOnline() bool {
	return p.Status >= OnlineThreshold
}

var presenceByName = map[string]PresenceStatus{
	"offline":        Offline,
	"away":           Away,
	"online":         Online,
	"free for chat":  FreeForChat,
	"do not disturb": DoNotDisturb,
}

// ParsePresence maps a status name, case-insensitively, to its status.
func ParsePresence(name string) (PresenceStatus, bool) {
	p, ok := presenceByName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}
