package discord

import (
	"streambot/internal/command"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		log.Warn().Str("command", name).Msg("interaction for unknown command")
		return
	}

	if b.cfg.CommandChannelID != "" && !b.allowedChannel(i) {
		_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "Commands only work in the designated command channel.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	ctx := &command.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}

	go func() {
		if err := cmd.Run(ctx); err != nil {
			log.Error().Err(err).Str("command", name).Msg("command failed")
		}
	}()
}

// allowedChannel checks the per-guild binding first, then the configured
// default.
func (b *Bot) allowedChannel(i *discordgo.InteractionCreate) bool {
	commandID, _, _, err := b.storage.GetChannels(i.GuildID)
	if err == nil && commandID != "" {
		return i.ChannelID == commandID
	}
	return i.ChannelID == b.cfg.CommandChannelID
}
