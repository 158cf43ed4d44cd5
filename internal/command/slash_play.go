package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streambot/internal/media"
	"streambot/internal/storage"
	"streambot/internal/stream"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type PlayCommand struct {
	Supervisor          *stream.Supervisor
	DefaultVoiceChannel string
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Stream a video by name or link" }

func (c *PlayCommand) Group() string    { return "stream" }
func (c *PlayCommand) Category() string { return "📺 Streaming" }

func (c *PlayCommand) RequireAdmin() bool { return false }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "Library video name, YouTube/Twitch link, or direct URL",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	session := slash.Session
	event := slash.Event

	input, _ := optionMap(event)["input"]
	if input == nil || input.StringValue() == "" {
		return respondEphemeral(session, event, "📺 Error: input is required")
	}

	// Respond immediately to avoid 404 (deferred = "thinking…")
	if err := respondDeferred(session, event); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	voiceID := c.voiceChannel(slash)
	if voiceID == "" {
		return followup(session, event, "📺 Error: no voice channel is configured. Use /set-channels first.")
	}

	ref, err := c.Supervisor.Play(context.Background(), input.StringValue(), event.GuildID, voiceID)
	if err != nil {
		return followup(session, event, playErrorMessage(err))
	}

	rec := storage.PlayHistoryRecord{
		Input:    input.StringValue(),
		Title:    ref.Title,
		Kind:     string(ref.Kind),
		UserID:   event.Member.User.ID,
		Username: event.Member.User.Username,
		Outcome:  "started",
		Datetime: time.Now(),
	}
	if err := slash.Storage.AppendPlayHistory(event.GuildID, rec); err != nil {
		log.Warn().Err(err).Msg("recording play history")
	}

	return followup(session, event, fmt.Sprintf("▶️ Streaming **%s**", ref.Title))
}

func (c *PlayCommand) voiceChannel(slash *SlashContext) string {
	_, voiceID, _, err := slash.Storage.GetChannels(slash.Event.GuildID)
	if err != nil {
		log.Warn().Err(err).Msg("reading channel bindings")
	}
	if voiceID != "" {
		return voiceID
	}
	return c.DefaultVoiceChannel
}

func playErrorMessage(err error) string {
	switch {
	case errors.Is(err, stream.ErrBusy):
		return "📺 A stream is already running. Stop it first with /stop."
	case errors.Is(err, media.ErrNotFound):
		return "📺 No video with that name in the library. Try /search or /list."
	case errors.Is(err, media.ErrMetadataUnavailable):
		return "📺 Couldn't read video info from that link."
	case errors.Is(err, media.ErrUnsupportedReference):
		return "📺 That doesn't look like a video name or a supported link."
	default:
		return fmt.Sprintf("📺 Error: %v", err)
	}
}
