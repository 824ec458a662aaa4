package command

import (
	"context"
	"errors"
	"log"

	"yomiage/internal/voice"
)

func init() { Register(&connectCommand{}) }

type connectCommand struct{}

func (c *connectCommand) Name() string        { return "c" }
func (c *connectCommand) Aliases() []string   { return nil }
func (c *connectCommand) Description() string { return "ボイスチャンネルに接続します。" }

func (c *connectCommand) Run(ctx *Context) error {
	deleteInvocation(ctx)

	vs, err := ctx.Session.State.VoiceState(ctx.Message.GuildID, ctx.Message.Author.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		Reply(ctx, noticeNotInVoice)
		return nil
	}

	err = ctx.Coord.Connect(context.Background(), vs.ChannelID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, voice.ErrAlreadyConnected):
		Reply(ctx, noticeAlreadyJoined)
		return nil
	default:
		log.Printf("[ERR] Voice connect failed for guild %s: %v", ctx.Message.GuildID, err)
		Reply(ctx, noticeConnectFailed)
		return nil
	}
}
