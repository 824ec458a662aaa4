package speaker

import "strings"

// Outcome reports what a batch update did.
type Outcome int

const (
	OutcomeShow Outcome = iota
	OutcomeReset
	OutcomeUpdate
)

// Apply processes the token list of an `allow` command.
//
// "show" or "reset" as the first token short-circuit. Otherwise tokens are
// consumed left to right with a carried negation flag: a standalone "-"
// negates the next real target, a "-" prefix negates its own token, and
// anything else affirms itself. Rules set before a bad token stay applied.
func (s *Store) Apply(tokens []string) (Outcome, error) {
	if len(tokens) == 0 {
		return OutcomeShow, ErrInvalidSpeaker
	}

	switch tokens[0] {
	case "show":
		return OutcomeShow, nil
	case "reset":
		s.Reset()
		return OutcomeReset, nil
	}

	minus := false
	for _, token := range tokens {
		if token == "-" {
			minus = true
			continue
		}
		if strings.HasPrefix(token, "-") {
			token = strings.TrimPrefix(token, "-")
			minus = true
		}
		ref, err := ParseRef(token)
		if err != nil {
			return OutcomeUpdate, err
		}
		s.Set(ref, !minus)
		minus = false
	}
	return OutcomeUpdate, nil
}
