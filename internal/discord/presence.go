package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// refreshPresence updates the status line with the connection count.
// Best effort, fire and forget.
func (b *Bot) refreshPresence(s *discordgo.Session) {
	status := fmt.Sprintf("%sh | %d/%dサーバー",
		b.cfg.Prefix, b.guilds.ConnectedCount(), len(s.State.Guilds))
	if err := s.UpdateGameStatus(0, status); err != nil {
		log.Printf("[WARN] Failed to update presence: %v", err)
	}
}
