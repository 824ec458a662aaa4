package speaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "<@!100>"
	bob   = "<@!200>"
	carol = "<@!300>"
	dave  = "<@!400>"
)

func TestApply_ShowDoesNotMutate(t *testing.T) {
	s := NewStore()
	outcome, err := s.Apply([]string{"show"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeShow, outcome)
	assert.Len(t, s.Rules(), 1)
}

func TestApply_ResetClearsToDefault(t *testing.T) {
	s := NewStore()
	s.Set(UserRef("100"), false)

	outcome, err := s.Apply([]string{"reset"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReset, outcome)

	rules := s.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, Everyone, rules[0].Ref)
	assert.True(t, rules[0].Allowed)
}

func TestApply_MinusHandling(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   map[Ref]bool
	}{
		{
			name:   "standalone minus negates next token",
			tokens: []string{"-", alice},
			want:   map[Ref]bool{UserRef("100"): false},
		},
		{
			name:   "prefixed minus negates itself",
			tokens: []string{"-" + bob},
			want:   map[Ref]bool{UserRef("200"): false},
		},
		{
			name:   "double minus carries until a real target",
			tokens: []string{"-", "-", carol},
			want:   map[Ref]bool{UserRef("300"): false},
		},
		{
			name:   "bare token affirms",
			tokens: []string{dave},
			want:   map[Ref]bool{UserRef("400"): true},
		},
		{
			name:   "minus consumed by one target only",
			tokens: []string{"-", alice, dave},
			want:   map[Ref]bool{UserRef("100"): false, UserRef("400"): true},
		},
		{
			name:   "role and everyone targets",
			tokens: []string{"-<@&900>", "everyone"},
			want:   map[Ref]bool{RoleRef("900"): false, Everyone: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			outcome, err := s.Apply(tt.tokens)
			require.NoError(t, err)
			assert.Equal(t, OutcomeUpdate, outcome)

			got := map[Ref]bool{}
			for _, r := range s.Rules() {
				got[r.Ref] = r.Allowed
			}
			for ref, allowed := range tt.want {
				assert.Equal(t, allowed, got[ref], "rule for %v", ref)
			}
		})
	}
}

func TestApply_BadTokenFailsButKeepsEarlierRules(t *testing.T) {
	s := NewStore()
	_, err := s.Apply([]string{alice, "garbage"})
	require.ErrorIs(t, err, ErrInvalidSpeaker)

	// alice was applied before the parse error surfaced
	assert.True(t, s.Resolve("100", nil))
	rules := s.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, UserRef("100"), rules[1].Ref)
}

func TestApply_EmptyTokensIsError(t *testing.T) {
	s := NewStore()
	_, err := s.Apply(nil)
	assert.ErrorIs(t, err, ErrInvalidSpeaker)
}
