// Package speaker decides who the bot is allowed to read aloud.
//
// Rules target a speaker reference: a specific user, a role, or the
// catch-all "everyone". Resolution priority is user > roles > everyone.
package speaker

import (
	"errors"
	"fmt"
	"regexp"
)

// RefKind tags a speaker reference.
type RefKind int

const (
	KindEveryone RefKind = iota
	KindUser
	KindRole
)

// Ref identifies a rule target. Everyone carries no ID.
type Ref struct {
	Kind RefKind
	ID   string
}

// Everyone is the catch-all reference present in every store.
var Everyone = Ref{Kind: KindEveryone}

// UserRef returns a reference for a specific user ID.
func UserRef(id string) Ref { return Ref{Kind: KindUser, ID: id} }

// RoleRef returns a reference for a specific role ID.
func RoleRef(id string) Ref { return Ref{Kind: KindRole, ID: id} }

// ErrInvalidSpeaker is returned when a token cannot be parsed as a speaker target.
var ErrInvalidSpeaker = errors.New("not a valid speaker")

var mentionRe = regexp.MustCompile(`^<@([!&]?)(\d+)>$`)

// ParseRef parses a command token into a speaker reference.
// Accepted forms: <@id> / <@!id> (user), <@&id> (role), all / everyone / @everyone.
func ParseRef(token string) (Ref, error) {
	if m := mentionRe.FindStringSubmatch(token); m != nil {
		if m[1] == "&" {
			return RoleRef(m[2]), nil
		}
		return UserRef(m[2]), nil
	}
	switch token {
	case "all", "everyone", "@everyone":
		return Everyone, nil
	}
	return Ref{}, fmt.Errorf("%w: %q", ErrInvalidSpeaker, token)
}

// Mention renders the reference back to its chat-platform literal form.
// Used as a display fallback when a directory lookup fails.
func (r Ref) Mention() string {
	switch r.Kind {
	case KindUser:
		return "<@!" + r.ID + ">"
	case KindRole:
		return "<@&" + r.ID + ">"
	default:
		return "everyone"
	}
}
