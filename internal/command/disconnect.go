package command

import (
	"errors"
	"log"

	"yomiage/internal/voice"
)

func init() { Register(&disconnectCommand{}) }

type disconnectCommand struct{}

func (d *disconnectCommand) Name() string        { return "d" }
func (d *disconnectCommand) Aliases() []string   { return nil }
func (d *disconnectCommand) Description() string { return "ボイスチャンネルから切断します。" }

func (d *disconnectCommand) Run(ctx *Context) error {
	deleteInvocation(ctx)

	if err := ctx.Coord.Disconnect(); err != nil {
		if errors.Is(err, voice.ErrNotConnected) {
			Reply(ctx, noticeNotConnected)
			return nil
		}
		log.Printf("[ERR] Voice disconnect failed for guild %s: %v", ctx.Message.GuildID, err)
		Reply(ctx, noticeGenericError)
	}
	return nil
}
