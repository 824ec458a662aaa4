package command

import (
	"errors"

	"yomiage/internal/speaker"
	"yomiage/internal/voice"
)

// User-facing notices. Internal error detail stays in the logs; only
// these fixed strings ever reach the chat channel.
const (
	noticeUnknownCommand = "このコマンドは利用できません"
	noticeGenericError   = "エラーが発生しました。"
	noticeInvalidSpeaker = "話者の指定が正しくありません。"
	noticeNotInVoice     = "ボイスチャンネルに接続してから呼び出してください。"
	noticeConnectFailed  = "接続に失敗しました。"
	noticeAlreadyJoined  = "接続済みです。"
	noticeNotConnected   = "ボイスチャンネルに接続していません。"
)

// UserMessage maps an error to the safe notice shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, speaker.ErrInvalidSpeaker):
		return noticeInvalidSpeaker
	case errors.Is(err, voice.ErrConnectTimeout):
		return noticeConnectFailed
	case errors.Is(err, voice.ErrAlreadyConnected):
		return noticeAlreadyJoined
	case errors.Is(err, voice.ErrNotConnected):
		return noticeNotConnected
	default:
		return noticeGenericError
	}
}

// UnknownCommandNotice is sent when no command matches the token.
func UnknownCommandNotice() string { return noticeUnknownCommand }
