package domain

import (
	"fmt"
	"time"
)

// LeaveReason explains how a player session ended
type LeaveReason string

const (
	LeaveLogout              LeaveReason = "logout"
	LeaveRestart             LeaveReason = "restart"             // legacy @restart boundary
	LeaveServerStop          LeaveReason = "serverStop"          // server shut down cleanly
	LeaveServerStartOverride LeaveReason = "serverStartOverride" // next start implies the previous uptime ended (crash)
	LeaveCurrentlyOnline     LeaveReason = "currentlyOnline"     // session still open in the final window
)

// Timestamp is a time.Time that marshals in the log's "YYYY-MM-DD HH:MM:SS"
// UTC layout
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalized to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp literal %s", s)
	}
	parsed, err := time.ParseInLocation(TimeLayout, s[1:len(s)-1], time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Session is one player's continuous presence within an uptime window
type Session struct {
	JoinTime    Timestamp   `json:"joinTime"`
	Person      string      `json:"person"`
	LeaveTime   *Timestamp  `json:"leaveTime,omitempty"`
	LeaveReason LeaveReason `json:"leaveReason,omitempty"`
}

// UptimeWindow is one continuous interval the server process was up, bounded
// by start/stop/restart log markers. EndTime is nil only for the final,
// still-open window.
type UptimeWindow struct {
	StartTime Timestamp  `json:"startTime"`
	EndTime   *Timestamp `json:"endTime,omitempty"`
	Version   string     `json:"version,omitempty"`
	Sessions  []Session  `json:"sessions,omitempty"`
}
