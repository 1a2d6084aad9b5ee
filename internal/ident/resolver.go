// Package ident resolves Minecraft nicknames to stable player identities.
//
// Nickname ownership changes over time (accounts get renamed, nicks get
// reused), so resolution is keyed by (nickname, timestamp): the resolver
// answers "who owned this nickname at this moment", not "who owns it now".
package ident

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/domain"
)

// Resolver maps a nickname at a point in time to a stable Player identity.
// The boolean result distinguishes found from not-found; not-found is never
// an error, callers fall back to an opaque nickname identity.
type Resolver interface {
	Resolve(nick string, at time.Time) (domain.Player, bool)
}

// None is a Resolver that never resolves. Every nickname falls back to an
// opaque identity.
type None struct{}

// Resolve implements Resolver
func (None) Resolve(string, time.Time) (domain.Player, bool) {
	return domain.Player{}, false
}

// File resolves nicknames from two optional JSON files next to the server:
//
//   - a nickname-history file mapping internal player IDs to the periods they
//     owned each nickname:
//     {"people": {"<id>": {"nicks": [{"nick": "N", "from": "...", "to": "..."}]}}}
//     (open-ended periods omit "from"/"to")
//   - the server's usercache.json, an array of {"name": ..., "uuid": ...}
//
// History entries win because they are time-aware; usercache only knows the
// current owner of a nickname.
type File struct {
	history   gjson.Result
	usercache gjson.Result
	log       *zap.Logger
}

// NewFile loads the given files. Either path may be empty or missing; the
// resolver degrades to resolving fewer (or no) nicknames.
func NewFile(historyPath, usercachePath string, log *zap.Logger) *File {
	if log == nil {
		log = zap.NewNop()
	}
	f := &File{log: log}
	if historyPath != "" {
		if data, err := os.ReadFile(historyPath); err == nil {
			f.history = gjson.ParseBytes(data)
		} else {
			log.Debug("nickname history unavailable", zap.String("path", historyPath), zap.Error(err))
		}
	}
	if usercachePath != "" {
		if data, err := os.ReadFile(usercachePath); err == nil {
			f.usercache = gjson.ParseBytes(data)
		} else {
			log.Debug("usercache unavailable", zap.String("path", usercachePath), zap.Error(err))
		}
	}
	return f
}

// Resolve implements Resolver
func (f *File) Resolve(nick string, at time.Time) (domain.Player, bool) {
	if p, ok := f.fromHistory(nick, at); ok {
		return p, true
	}
	return f.fromUsercache(nick)
}

func (f *File) fromHistory(nick string, at time.Time) (domain.Player, bool) {
	if !f.history.Exists() {
		return domain.Player{}, false
	}
	var found domain.Player
	var ok bool
	f.history.Get("people").ForEach(func(id, person gjson.Result) bool {
		person.Get("nicks").ForEach(func(_, entry gjson.Result) bool {
			if entry.Get("nick").String() != nick {
				return true
			}
			if !periodContains(entry, at) {
				return true
			}
			found = domain.PlayerByID(id.String())
			ok = true
			return false
		})
		return !ok
	})
	return found, ok
}

func periodContains(entry gjson.Result, at time.Time) bool {
	if from := entry.Get("from"); from.Exists() {
		t, err := time.ParseInLocation(domain.TimeLayout, from.String(), time.UTC)
		if err != nil || at.Before(t) {
			return false
		}
	}
	if to := entry.Get("to"); to.Exists() {
		t, err := time.ParseInLocation(domain.TimeLayout, to.String(), time.UTC)
		if err != nil || !at.Before(t) {
			return false
		}
	}
	return true
}

// KnownPlayers lists every distinct identity in the history and usercache
// files, history IDs first
func (f *File) KnownPlayers() []domain.Player {
	seen := make(map[string]bool)
	var players []domain.Player
	add := func(p domain.Player) {
		if key := p.String(); !seen[key] {
			seen[key] = true
			players = append(players, p)
		}
	}
	if f.history.Exists() {
		f.history.Get("people").ForEach(func(id, _ gjson.Result) bool {
			add(domain.PlayerByID(id.String()))
			return true
		})
	}
	if f.usercache.Exists() {
		f.usercache.ForEach(func(_, entry gjson.Result) bool {
			if u, err := uuid.Parse(entry.Get("uuid").String()); err == nil {
				add(domain.PlayerByUUID(u))
			}
			return true
		})
	}
	return players
}

func (f *File) fromUsercache(nick string) (domain.Player, bool) {
	if !f.usercache.Exists() {
		return domain.Player{}, false
	}
	var found domain.Player
	var ok bool
	f.usercache.ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("name").String() != nick {
			return true
		}
		u, err := uuid.Parse(entry.Get("uuid").String())
		if err != nil {
			f.log.Debug("bad uuid in usercache", zap.String("nick", nick), zap.Error(err))
			return true
		}
		found = domain.PlayerByUUID(u)
		ok = true
		return false
	})
	return found, ok
}
