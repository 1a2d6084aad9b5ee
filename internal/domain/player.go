package domain

import (
	"regexp"

	"github.com/google/uuid"
)

var playerIDPattern = regexp.MustCompile(`^[a-z][0-9a-z]{1,15}$`)

// Player is a stable identity for one person. The authoritative identifier is
// the internal ID when known, the Minecraft account UUID otherwise. As a last
// resort (identity resolution failed) the raw nickname is carried as an
// opaque identity so the event is still attributable.
type Player struct {
	// ID is the internal player ID (or the raw nickname when Opaque)
	ID string
	// UUID is the Minecraft account UUID, zero when unknown
	UUID uuid.UUID
	// Opaque marks a fallback identity built from an unresolved nickname
	Opaque bool
}

// PlayerByID builds a Player from an internal ID
func PlayerByID(id string) Player {
	return Player{ID: id}
}

// PlayerByUUID builds a Player from a Minecraft account UUID
func PlayerByUUID(u uuid.UUID) Player {
	return Player{UUID: u}
}

// OpaquePlayer builds a fallback identity from a raw nickname
func OpaquePlayer(nick string) Player {
	return Player{ID: nick, Opaque: true}
}

// ParsePlayer interprets s as an internal ID or a UUID
func ParsePlayer(s string) (Player, error) {
	if playerIDPattern.MatchString(s) {
		return PlayerByID(s), nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Player{}, err
	}
	return PlayerByUUID(u), nil
}

// String returns the authoritative identifier: the internal ID when known,
// the UUID otherwise. Use it as the map key wherever players are compared;
// two differently-constructed references to the same person render the same.
func (p Player) String() string {
	if p.ID != "" {
		return p.ID
	}
	return p.UUID.String()
}

// IsZero reports whether p carries no identity at all
func (p Player) IsZero() bool {
	return p.ID == "" && p.UUID == uuid.Nil
}
