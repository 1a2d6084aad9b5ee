// Package filter narrows an event stream by type, player or text pattern.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minelog/minelog/internal/domain"
)

// Filter determines if an event should be included
type Filter interface {
	// Match returns true if the event passes the filter
	Match(ev *domain.Event) bool
}

// Chain combines multiple filters (all must pass)
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from multiple filters
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Match returns true only if all filters pass
func (c *Chain) Match(ev *domain.Event) bool {
	for _, f := range c.filters {
		if !f.Match(ev) {
			return false
		}
	}
	return true
}

// Add appends a filter to the chain
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// TypeFilter keeps only events of the listed types
type TypeFilter struct {
	types map[domain.EventType]bool
}

// NewTypeFilter parses a comma-separated type list ("death,join,leave")
func NewTypeFilter(spec string) (*TypeFilter, error) {
	known := map[string]domain.EventType{
		string(domain.EventAchievement): domain.EventAchievement,
		string(domain.EventChatAction):  domain.EventChatAction,
		string(domain.EventChatMessage): domain.EventChatMessage,
		string(domain.EventDeath):       domain.EventDeath,
		string(domain.EventGibberish):   domain.EventGibberish,
		string(domain.EventJoin):        domain.EventJoin,
		string(domain.EventLeave):       domain.EventLeave,
		string(domain.EventRestart):     domain.EventRestart,
		string(domain.EventStart):       domain.EventStart,
		string(domain.EventStop):        domain.EventStop,
		string(domain.EventUnknown):     domain.EventUnknown,
	}
	types := make(map[domain.EventType]bool)
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		typ, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown event type %q", name)
		}
		types[typ] = true
	}
	return &TypeFilter{types: types}, nil
}

// Match implements Filter
func (f *TypeFilter) Match(ev *domain.Event) bool {
	if len(f.types) == 0 {
		return true
	}
	return f.types[ev.Type]
}

// PlayerFilter keeps only events attributed to one of the listed player
// identities
type PlayerFilter struct {
	players map[string]bool
}

// NewPlayerFilter builds a filter over player string identities
func NewPlayerFilter(players []string) *PlayerFilter {
	set := make(map[string]bool, len(players))
	for _, p := range players {
		if p != "" {
			set[p] = true
		}
	}
	return &PlayerFilter{players: set}
}

// Match implements Filter
func (f *PlayerFilter) Match(ev *domain.Event) bool {
	if len(f.players) == 0 {
		return true
	}
	return ev.HasPlayer() && f.players[ev.Player.String()]
}

// RegexFilter keeps events whose message, cause or raw text matches a
// pattern
type RegexFilter struct {
	re *regexp.Regexp
}

// NewRegexFilter compiles the pattern
func NewRegexFilter(pattern string) (*RegexFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	return &RegexFilter{re: re}, nil
}

// Match implements Filter
func (f *RegexFilter) Match(ev *domain.Event) bool {
	return f.re.MatchString(ev.Message) ||
		f.re.MatchString(ev.Cause) ||
		f.re.MatchString(ev.Achievement) ||
		f.re.MatchString(ev.Text)
}
