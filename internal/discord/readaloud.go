package discord

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"yomiage/internal/normalize"
)

// readAloud turns a permitted member's message into queued speech.
func (b *Bot) readAloud(s *discordgo.Session, m *discordgo.MessageCreate) {
	coord := b.guilds.Get(m.GuildID)
	sess := coord.Session()
	if sess == nil || !sess.Connected() {
		return
	}

	// Only messages from members sitting in the session's channel are read.
	vs, err := s.State.VoiceState(m.GuildID, m.Author.ID)
	if err != nil || vs == nil || vs.ChannelID != sess.ChannelID() {
		return
	}

	if !coord.Permissions.Resolve(m.Author.ID, b.memberRoles(s, m)) {
		return
	}

	text, ok := normalize.Normalize(m.Content, b.memberResolver(s, m.GuildID))
	if !ok {
		log.Println("[INFO] Nothing to read")
		return
	}

	if tooLongToRead(text, b.cfg.MaxTextLen) {
		msg := fmt.Sprintf("%d文字以上は読み上げできません。", b.cfg.MaxTextLen)
		if _, err := s.ChannelMessageSend(m.ChannelID, msg); err != nil {
			log.Printf("[WARN] Failed to send reply: %v", err)
		}
		return
	}

	log.Printf("[INFO] Reading: %s (%d)", text, utf8.RuneCountInString(text))
	sess.Speak(text)
}

// tooLongToRead gates utterances by Unicode character count, not bytes.
// A text exactly at the cap is rejected.
func tooLongToRead(text string, max int) bool {
	return utf8.RuneCountInString(text) >= max
}

// memberRoles returns the author's role IDs in gateway-supplied order.
func (b *Bot) memberRoles(s *discordgo.Session, m *discordgo.MessageCreate) []string {
	if m.Member != nil {
		return m.Member.Roles
	}
	member, err := s.State.Member(m.GuildID, m.Author.ID)
	if err != nil {
		member, err = s.GuildMember(m.GuildID, m.Author.ID)
		if err != nil {
			return nil
		}
	}
	return member.Roles
}

// memberResolver adapts directory lookups to the normalizer, preferring
// nicknames over usernames.
func (b *Bot) memberResolver(s *discordgo.Session, guildID string) normalize.MemberResolver {
	return func(id string) (string, bool) {
		member, err := s.State.Member(guildID, id)
		if err != nil {
			member, err = s.GuildMember(guildID, id)
			if err != nil {
				return "", false
			}
		}
		if member.Nick != "" {
			return member.Nick, true
		}
		if member.User != nil {
			return member.User.Username, true
		}
		return "", false
	}
}
