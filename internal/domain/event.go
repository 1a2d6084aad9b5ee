package domain

import (
	"encoding/json"
	"time"
)

// TimeLayout is the timestamp format used by Minecraft server logs and by all
// JSON output of this tool. Log timestamps carry no zone; they are UTC by
// convention.
const TimeLayout = "2006-01-02 15:04:05"

// EventType identifies the kind of log line an Event was parsed from
type EventType string

const (
	EventAchievement EventType = "achievement" // player earns an achievement
	EventChatAction  EventType = "chat_action" // /me
	EventChatMessage EventType = "chat_message"
	EventDeath       EventType = "death"     // known type of death message
	EventGibberish   EventType = "gibberish" // cannot parse prefix
	EventJoin        EventType = "join"      // player joins the game
	EventLeave       EventType = "leave"     // player leaves the game
	EventRestart     EventType = "restart"   // legacy @restart marker
	EventStart       EventType = "start"     // server start
	EventStop        EventType = "stop"      // server stop
	EventUnknown     EventType = "unknown"   // well-formed prefix, unrecognized body
)

// Event is one typed log line. Only the fields relevant to the Type are set;
// every type except gibberish carries a UTC Time.
type Event struct {
	Type EventType
	Time time.Time

	// Player who earned/chatted/joined/left/died (achievement, chat_*,
	// join, leave, death)
	Player Player

	Achievement string // achievement: achievement name
	Message     string // chat_action, chat_message
	Cause       string // death: matched death message instance
	Version     string // start: Minecraft version

	// unknown and gibberish carry the unparsed remainder
	OriginThread string
	LogLevel     string
	Text         string
	Path         string // gibberish: source log file
}

// HasPlayer reports whether this event type attributes a player
func (e *Event) HasPlayer() bool {
	switch e.Type {
	case EventAchievement, EventChatAction, EventChatMessage, EventDeath, EventJoin, EventLeave:
		return true
	}
	return false
}

// eventRecord is the flat JSON form of an Event
type eventRecord struct {
	Type         EventType `json:"type"`
	Time         string    `json:"time,omitempty"`
	Player       string    `json:"player,omitempty"`
	Achievement  string    `json:"achievement,omitempty"`
	Message      string    `json:"message,omitempty"`
	Cause        string    `json:"cause,omitempty"`
	Version      string    `json:"version,omitempty"`
	OriginThread string    `json:"originThread,omitempty"`
	LogLevel     string    `json:"logLevel,omitempty"`
	Text         string    `json:"text,omitempty"`
	Path         string    `json:"path,omitempty"`
}

// MarshalJSON renders the event as a flat record with the timestamp in
// TimeLayout and the player as its string identity
func (e Event) MarshalJSON() ([]byte, error) {
	rec := eventRecord{
		Type:         e.Type,
		Achievement:  e.Achievement,
		Message:      e.Message,
		Cause:        e.Cause,
		Version:      e.Version,
		OriginThread: e.OriginThread,
		LogLevel:     e.LogLevel,
		Text:         e.Text,
		Path:         e.Path,
	}
	if !e.Time.IsZero() {
		rec.Time = e.Time.UTC().Format(TimeLayout)
	}
	if e.HasPlayer() {
		rec.Player = e.Player.String()
	}
	return json.Marshal(rec)
}
