package discord

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// settleDelay matches the session's reconnect settle pause; used here
// before the lonely-channel self-disconnect.
const settleDelay = 500 * time.Millisecond

// onVoiceStateUpdate drives announcements and the self-cleanup when the
// bot is left alone in a channel.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == s.State.User.ID {
		b.refreshPresence(s)
		return
	}

	member := b.lookupMember(s, v.GuildID, v.UserID)
	if member == nil || member.User == nil || member.User.Bot {
		return
	}

	sess := b.guilds.Get(v.GuildID).Session()
	if sess == nil || !sess.Connected() {
		return
	}

	sessionChannel := sess.ChannelID()
	before := ""
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}

	switch classifyTransition(before, v.ChannelID, sessionChannel) {
	case transitionJoin:
		sess.Speak(member.User.Username + "が入室")
	case transitionLeave:
		if b.channelOccupants(s, v.GuildID, sessionChannel) > 1 {
			sess.Speak(member.User.Username + "が退室")
			return
		}
		// Left alone; give the channel a moment to settle first.
		go func() {
			time.Sleep(settleDelay)
			b.selfDisconnectIfAlone(s, v.GuildID, sessionChannel)
		}()
	}
}

// selfDisconnectIfAlone leaves the voice channel when the bot is the
// only occupant left. Occupancy is re-read here so a member returning
// during the settle window keeps the session alive.
func (b *Bot) selfDisconnectIfAlone(s *discordgo.Session, guildID, channelID string) {
	if b.channelOccupants(s, guildID, channelID) > 1 {
		return
	}
	if err := b.guilds.Get(guildID).Disconnect(); err != nil {
		log.Printf("[WARN] Self-disconnect failed for guild %s: %v", guildID, err)
	}
	b.refreshPresence(s)
}

type voiceTransition int

const (
	transitionNone voiceTransition = iota
	transitionJoin
	transitionLeave
)

// classifyTransition reports how a member's move relates to the channel
// the session sits in.
func classifyTransition(before, after, sessionChannel string) voiceTransition {
	switch {
	case before != sessionChannel && after == sessionChannel:
		return transitionJoin
	case before == sessionChannel && after != sessionChannel:
		return transitionLeave
	}
	return transitionNone
}

// channelOccupants counts members currently in a voice channel, the bot
// included.
func (b *Bot) channelOccupants(s *discordgo.Session, guildID, channelID string) int {
	g, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}
	return countOccupants(g.VoiceStates, channelID)
}

func countOccupants(states []*discordgo.VoiceState, channelID string) int {
	n := 0
	for _, vs := range states {
		if vs.ChannelID == channelID {
			n++
		}
	}
	return n
}

func (b *Bot) lookupMember(s *discordgo.Session, guildID, userID string) *discordgo.Member {
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
		if err != nil {
			return nil
		}
	}
	return member
}
