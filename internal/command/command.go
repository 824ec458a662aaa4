// Package command implements the prefix commands of the bot and their
// registry. Each command self-registers from its file's init.
package command

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"yomiage/internal/config"
	"yomiage/internal/guild"
	"yomiage/internal/storage"
)

// Command is a prefix command.
type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Run(ctx *Context) error
}

// Context is what the runtime hands a command when executing it.
type Context struct {
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Args    []string
	Config  *config.Config
	Coord   *guild.Coordinator
	Storage *storage.Storage
}

var registry = map[string]Command{}

func Register(cmd Command) {
	registry[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		registry[a] = cmd
	}
}

func Get(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

func All() []Command {
	seen := map[string]bool{}
	var list []Command
	for _, cmd := range registry {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	return list
}

// Reply sends a plain message to the invoking channel.
func Reply(ctx *Context, content string) {
	if _, err := ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, content); err != nil {
		log.Printf("[WARN] Failed to send reply: %v", err)
	}
}

// deleteInvocation removes the triggering message, best effort.
func deleteInvocation(ctx *Context) {
	err := ctx.Session.ChannelMessageDelete(ctx.Message.ChannelID, ctx.Message.ID)
	if err != nil {
		log.Printf("[WARN] Failed to delete command message: %v", err)
	}
}
