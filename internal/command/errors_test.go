package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"yomiage/internal/speaker"
	"yomiage/internal/voice"
)

func TestUserMessage_NeverLeaksInternalDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid speaker", speaker.ErrInvalidSpeaker, noticeInvalidSpeaker},
		{"wrapped invalid speaker", fmt.Errorf("apply: %w", speaker.ErrInvalidSpeaker), noticeInvalidSpeaker},
		{"connect timeout", voice.ErrConnectTimeout, noticeConnectFailed},
		{"already connected", voice.ErrAlreadyConnected, noticeAlreadyJoined},
		{"not connected", voice.ErrNotConnected, noticeNotConnected},
		{"unknown internal error", errors.New("pq: connection refused at 10.0.0.3"), noticeGenericError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "10.0.0.3")
		})
	}
}
