package command

import (
	"fmt"

	"streambot/internal/stream"
	"streambot/internal/version"

	"github.com/bwmarrin/discordgo"
)

type StatusCommand struct {
	Supervisor *stream.Supervisor
}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Show what the bot is doing" }

func (c *StatusCommand) Group() string    { return "stream" }
func (c *StatusCommand) Category() string { return "📺 Streaming" }

func (c *StatusCommand) RequireAdmin() bool { return false }

func (c *StatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StatusCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	state, title := c.Supervisor.Status()

	description := "Idle — nothing is streaming."
	if state != stream.StateIdle {
		description = fmt.Sprintf("**%s** — %s", state, title)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📺 Status",
		Description: description,
		Color:       embedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s %s", version.AppName, version.Version),
		},
	}
	return respondEmbed(slash.Session, slash.Event, embed)
}
