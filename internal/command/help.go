package command

import "fmt"

func init() { Register(&helpCommand{}) }

type helpCommand struct{}

func (h *helpCommand) Name() string        { return "h" }
func (h *helpCommand) Aliases() []string   { return nil }
func (h *helpCommand) Description() string { return "ヘルプを表示します。" }

func (h *helpCommand) Run(ctx *Context) error {
	deleteInvocation(ctx)

	botName := ""
	if ctx.Session.State.User != nil {
		botName = ctx.Session.State.User.Username
	}
	prefix := ctx.Config.Prefix

	Reply(ctx, fmt.Sprintf("```\n%sの使い方\n%sc：ボイスチャンネルに接続します。\n%sd：ボイスチャンネルから切断します。\n%sh：ヘルプを表示します。\n```",
		botName, prefix, prefix, prefix))
	return nil
}
