package command

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"yomiage/internal/speaker"
)

func init() { Register(&confCommand{}) }

type confCommand struct{}

func (c *confCommand) Name() string        { return "conf" }
func (c *confCommand) Aliases() []string   { return nil }
func (c *confCommand) Description() string { return "読み上げ許可を設定します。" }

func (c *confCommand) Run(ctx *Context) error {
	if len(ctx.Args) == 0 || ctx.Args[0] != "allow" {
		Reply(ctx, noticeUnknownCommand)
		return nil
	}

	outcome, err := ctx.Coord.Permissions.Apply(ctx.Args[1:])
	if err != nil {
		log.Printf("[WARN] Permission update failed for guild %s: %v", ctx.Message.GuildID, err)
		Reply(ctx, UserMessage(err))
		return nil
	}

	header := "ステータスを更新しました"
	if outcome == speaker.OutcomeShow {
		header = "現在のステータスは以下です"
	}
	Reply(ctx, renderStatus(ctx, header))

	deleteInvocation(ctx)
	return nil
}

// renderStatus lists every rule in insertion order with resolved
// display names, as a code block.
func renderStatus(ctx *Context, header string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n```\n")
	for _, rule := range ctx.Coord.Permissions.Rules() {
		status := "ng"
		if rule.Allowed {
			status = "ok"
		}
		b.WriteString(speakerLabel(ctx.Session, ctx.Message.GuildID, rule.Ref))
		b.WriteString(": ")
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// speakerLabel resolves a human-readable name for a rule target,
// falling back to the raw mention literal when lookups fail.
func speakerLabel(s *discordgo.Session, guildID string, ref speaker.Ref) string {
	switch ref.Kind {
	case speaker.KindUser:
		member, err := s.State.Member(guildID, ref.ID)
		if err != nil {
			member, err = s.GuildMember(guildID, ref.ID)
		}
		if err == nil && member != nil && member.User != nil {
			if member.Nick != "" {
				return member.Nick
			}
			return member.User.Username
		}
	case speaker.KindRole:
		role, err := s.State.Role(guildID, ref.ID)
		if err == nil && role != nil {
			return role.Name
		}
	default:
		return "everyone"
	}
	return ref.Mention()
}
