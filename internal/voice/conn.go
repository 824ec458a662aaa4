package voice

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// discordConn adapts *discordgo.VoiceConnection to Conn.
type discordConn struct {
	vc *discordgo.VoiceConnection
}

func (c *discordConn) ChannelID() string { return c.vc.ChannelID }

func (c *discordConn) Speaking(b bool) error { return c.vc.Speaking(b) }

// Send honors ctx cancellation. Once a connection is torn down nothing
// drains OpusSend anymore, so a bare channel send could block forever.
func (c *discordConn) Send(ctx context.Context, frame []byte) error {
	select {
	case c.vc.OpusSend <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *discordConn) Disconnect() error { return c.vc.Disconnect() }

// DiscordDialer returns a Dialer backed by the gateway session.
func DiscordDialer(dg *discordgo.Session) Dialer {
	return func(guildID, channelID string) (Conn, error) {
		vc, err := dg.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil {
			return nil, err
		}
		return &discordConn{vc: vc}, nil
	}
}
