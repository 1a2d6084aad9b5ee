// Package classify parses raw Minecraft server log lines into typed events.
package classify

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/ident"
)

// Pattern fragments shared by the line regexes
const (
	timestampPattern = `[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}`
	nickPattern      = `[A-Za-z0-9_]{1,16}`
	uuidPattern      = `[0-9A-Fa-f]{8}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{12}`
)

var (
	// <ts> [<thread>/<level>]: <body> (current log format)
	reFullPrefix = regexp.MustCompile(`^(` + timestampPattern + `) \[(.+?)/(.+?)\]:? (.*)$`)
	// <ts> [<level>] <body> (pre-1.7 format, no origin thread)
	reOldPrefix = regexp.MustCompile(`^(` + timestampPattern + `) \[(.+?)\]:? (.*)$`)

	reAchievement = regexp.MustCompile(`^(` + nickPattern + `) has just earned the achievement \[(.+)\]$`)
	reChatAction  = regexp.MustCompile(`^\* (` + nickPattern + `) (.*)$`)
	reChatMessage = regexp.MustCompile(`^<(` + nickPattern + `)> (.*)$`)
	reJoinLeave   = regexp.MustCompile(`^(` + nickPattern + `) (joined|left) the game$`)
	reStart       = regexp.MustCompile(`^Starting minecraft server version (.*)$`)
	reStop        = regexp.MustCompile(`^Stopping the server$`)
	reAuth        = regexp.MustCompile(`^UUID of player (` + nickPattern + `) is (` + uuidPattern + `)$`)

	// legacy rollup marker lines, written by the wrapper rather than the
	// server itself
	reMarkRestart = regexp.MustCompile(`^(` + timestampPattern + `) @restart$`)
	reMarkStart   = regexp.MustCompile(`^(` + timestampPattern + `) @start ([^ ]+)$`)
	reMarkStop    = regexp.MustCompile(`^(` + timestampPattern + `) @stop$`)
)

// Classifier turns one raw log line into exactly one typed event. It is
// stateless across lines except for the per-pass nickname associations held
// in a Pass, so one Classifier can serve any number of iterations.
type Classifier struct {
	resolver ident.Resolver
	log      *zap.Logger
	deaths   []*regexp.Regexp
	rawDeath []string
}

// Option configures a Classifier
type Option func(*Classifier)

// WithDeathMessages replaces the canonical death-message list. The list
// length is the cache fingerprint for the death aggregator, so changing it
// invalidates cached death histories.
func WithDeathMessages(messages []string) Option {
	return func(c *Classifier) { c.rawDeath = messages }
}

// WithLogger sets the diagnostic logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Classifier) { c.log = log }
}

// New builds a Classifier resolving players through resolver
func New(resolver ident.Resolver, opts ...Option) *Classifier {
	c := &Classifier{
		resolver: resolver,
		log:      zap.NewNop(),
		rawDeath: DefaultDeathMessages,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = ident.None{}
	}
	c.deaths = make([]*regexp.Regexp, len(c.rawDeath))
	for i, msg := range c.rawDeath {
		c.deaths[i] = regexp.MustCompile(`^(` + nickPattern + `) (` + msg + `)$`)
	}
	return c
}

// DeathMessageCount returns the number of configured death-message patterns
func (c *Classifier) DeathMessageCount() int {
	return len(c.deaths)
}

// Pass carries the nickname associations for one log iteration. The server
// announces each joining player's UUID on an authenticator thread shortly
// before the join line, and nicknames may be reused across history, so the
// association is only trusted within a single pass.
type Pass struct {
	players map[string]domain.Player
}

// NewPass starts a fresh iteration scope
func (c *Classifier) NewPass() *Pass {
	return &Pass{players: make(map[string]domain.Player)}
}

// player resolves nick at the given time, memoized for the rest of the pass
func (c *Classifier) player(p *Pass, nick string, at time.Time) domain.Player {
	if pl, ok := p.players[nick]; ok {
		return pl
	}
	pl, ok := c.resolver.Resolve(nick, at)
	if !ok {
		c.log.Debug("nickname not resolved, using opaque identity", zap.String("nick", nick))
		pl = domain.OpaquePlayer(nick)
	}
	p.players[nick] = pl
	return pl
}

// Classify parses one raw line. The returned bool is false when the line
// produces no event: blank lines and authenticator announcements (which only
// record a nickname association in the pass).
func (c *Classifier) Classify(p *Pass, raw string) (domain.Event, bool) {
	line := strings.TrimRight(raw, "\r\n")
	if line == "" {
		return domain.Event{}, false
	}

	if ev, ok := c.classifyMarker(line); ok {
		return ev, true
	}

	var ts, originThread, logLevel, body string
	if m := reFullPrefix.FindStringSubmatch(line); m != nil {
		ts, originThread, logLevel, body = m[1], m[2], m[3], m[4]
	} else if m := reOldPrefix.FindStringSubmatch(line); m != nil {
		ts, logLevel, body = m[1], m[2], m[3]
	} else {
		return domain.Event{Type: domain.EventGibberish, Text: line}, true
	}

	// the prefix regex guarantees the layout, so this cannot fail
	at, err := time.ParseInLocation(domain.TimeLayout, ts, time.UTC)
	if err != nil {
		return domain.Event{Type: domain.EventGibberish, Text: line}, true
	}

	unknown := domain.Event{
		Type:         domain.EventUnknown,
		Time:         at,
		OriginThread: originThread,
		LogLevel:     logLevel,
		Text:         body,
	}

	switch {
	case originThread == "Server thread" || originThread == "":
		if logLevel != "INFO" {
			return unknown, true
		}
		if ev, ok := c.classifyBody(p, at, body); ok {
			return ev, true
		}
		return unknown, true
	case strings.HasPrefix(originThread, "User Authenticator"):
		if logLevel != "INFO" {
			return unknown, true
		}
		m := reAuth.FindStringSubmatch(body)
		if m == nil {
			return unknown, true
		}
		u, err := uuid.Parse(m[2])
		if err != nil {
			c.log.Debug("unparseable uuid in authenticator line", zap.String("line", line), zap.Error(err))
			return unknown, true
		}
		p.players[m[1]] = domain.PlayerByUUID(u)
		return domain.Event{}, false
	default:
		return unknown, true
	}
}

// classifyBody matches a Server thread INFO body against the known message
// shapes in priority order, trying the death messages last
func (c *Classifier) classifyBody(p *Pass, at time.Time, body string) (domain.Event, bool) {
	if m := reAchievement.FindStringSubmatch(body); m != nil {
		return domain.Event{
			Type:        domain.EventAchievement,
			Time:        at,
			Player:      c.player(p, m[1], at),
			Achievement: m[2],
		}, true
	}
	if m := reChatAction.FindStringSubmatch(body); m != nil {
		return domain.Event{
			Type:    domain.EventChatAction,
			Time:    at,
			Player:  c.player(p, m[1], at),
			Message: m[2],
		}, true
	}
	if m := reChatMessage.FindStringSubmatch(body); m != nil {
		return domain.Event{
			Type:    domain.EventChatMessage,
			Time:    at,
			Player:  c.player(p, m[1], at),
			Message: m[2],
		}, true
	}
	if m := reJoinLeave.FindStringSubmatch(body); m != nil {
		typ := domain.EventJoin
		if m[2] == "left" {
			typ = domain.EventLeave
		}
		return domain.Event{
			Type:   typ,
			Time:   at,
			Player: c.player(p, m[1], at),
		}, true
	}
	if m := reStart.FindStringSubmatch(body); m != nil {
		return domain.Event{Type: domain.EventStart, Time: at, Version: m[1]}, true
	}
	if reStop.MatchString(body) {
		return domain.Event{Type: domain.EventStop, Time: at}, true
	}
	for _, re := range c.deaths {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		return domain.Event{
			Type:   domain.EventDeath,
			Time:   at,
			Player: c.player(p, m[1], at),
			Cause:  m[2],
		}, true
	}
	return domain.Event{}, false
}

// classifyMarker matches the legacy wrapper marker lines
func (c *Classifier) classifyMarker(line string) (domain.Event, bool) {
	if m := reMarkRestart.FindStringSubmatch(line); m != nil {
		if at, err := time.ParseInLocation(domain.TimeLayout, m[1], time.UTC); err == nil {
			return domain.Event{Type: domain.EventRestart, Time: at}, true
		}
	}
	if m := reMarkStart.FindStringSubmatch(line); m != nil {
		if at, err := time.ParseInLocation(domain.TimeLayout, m[1], time.UTC); err == nil {
			return domain.Event{Type: domain.EventStart, Time: at, Version: m[2]}, true
		}
	}
	if m := reMarkStop.FindStringSubmatch(line); m != nil {
		if at, err := time.ParseInLocation(domain.TimeLayout, m[1], time.UTC); err == nil {
			return domain.Event{Type: domain.EventStop, Time: at}, true
		}
	}
	return domain.Event{}, false
}
