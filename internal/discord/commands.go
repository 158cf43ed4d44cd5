package discord

import (
	"fmt"

	"streambot/internal/command"

	"github.com/bwmarrin/discordgo"
)

// registerCommands bulk-overwrites the guild's slash commands with the local
// registry. Overwrite is idempotent, so stale commands disappear without
// tracking them individually.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID

	var defs []*discordgo.ApplicationCommand
	for _, c := range command.All() {
		provider, ok := c.(command.SlashProvider)
		if !ok {
			continue
		}
		if def := provider.SlashDefinition(); def != nil {
			defs = append(defs, def)
		}
	}

	if _, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
		return fmt.Errorf("overwriting slash commands for guild %s: %w", guildID, err)
	}
	return nil
}
