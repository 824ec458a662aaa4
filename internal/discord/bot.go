package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"yomiage/internal/command"
	"yomiage/internal/config"
	"yomiage/internal/guild"
	"yomiage/internal/storage"
	"yomiage/internal/tts"
	"yomiage/internal/voice"
)

// Bot is the Discord event router: it owns the gateway session and
// dispatches messages, voice state changes and guild lifecycle events
// into the per-guild coordinators.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	guilds  *guild.Manager
}

// NewBot creates a bot. The gateway session is opened by Run.
func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{cfg: cfg, storage: store}
}

// Run connects to the gateway and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.configureIntents()

	engine := voice.NewEngine(tts.New(b.cfg.TTSEndpoint, b.cfg.Lang), b.cfg.Volume)
	dialer := voice.DiscordDialer(dg)
	b.guilds = guild.NewManager(func(guildID string) *voice.Session {
		return voice.NewSession(ctx, guildID, dialer, engine)
	})

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onGuildDelete)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsAll
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	b.refreshPresence(s)
	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)
	b.refreshPresence(s)
}

// onGuildDelete evicts the guild's state so the coordinator map stays bounded.
func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	log.Printf("[INFO] Bot removed from guild: %s", g.ID)
	b.guilds.Remove(g.ID)
	b.refreshPresence(s)
}

// onMessageCreate routes a message either to the command dispatcher or
// to the read-aloud path.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	if strings.HasPrefix(m.Content, b.cfg.Prefix) {
		b.dispatchCommand(s, m)
		return
	}
	b.readAloud(s, m)
}

func (b *Bot) dispatchCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.Prefix))
	if len(fields) == 0 {
		return
	}

	cmd, ok := command.Get(fields[0])
	if !ok {
		if _, err := s.ChannelMessageSend(m.ChannelID, command.UnknownCommandNotice()); err != nil {
			log.Printf("[WARN] Failed to send reply: %v", err)
		}
		return
	}

	ctx := &command.Context{
		Session: s,
		Message: m,
		Args:    fields[1:],
		Config:  b.cfg,
		Coord:   b.guilds.Get(m.GuildID),
		Storage: b.storage,
	}

	if err := b.storage.AppendCommandToHistory(m.GuildID, storage.CommandHistoryRecord{
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Command:   fields[0],
		Datetime:  time.Now(),
	}); err != nil {
		log.Printf("[WARN] Failed to record command history: %v", err)
	}

	if err := cmd.Run(ctx); err != nil {
		log.Printf("[ERR] Error running command %s: %v", cmd.Name(), err)
		if _, serr := s.ChannelMessageSend(m.ChannelID, command.UserMessage(err)); serr != nil {
			log.Printf("[WARN] Failed to send reply: %v", serr)
		}
	}
}
