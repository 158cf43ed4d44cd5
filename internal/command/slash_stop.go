package command

import (
	"errors"
	"fmt"

	"streambot/internal/stream"

	"github.com/bwmarrin/discordgo"
)

type StopCommand struct {
	Supervisor *stream.Supervisor
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop the current stream" }

func (c *StopCommand) Group() string    { return "stream" }
func (c *StopCommand) Category() string { return "📺 Streaming" }

func (c *StopCommand) RequireAdmin() bool { return false }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	if err := c.Supervisor.Stop(); err != nil {
		if errors.Is(err, stream.ErrNotActive) {
			return respondEphemeral(slash.Session, slash.Event, "📺 Nothing is streaming right now.")
		}
		return respondEphemeral(slash.Session, slash.Event, fmt.Sprintf("📺 Error: %v", err))
	}

	return respond(slash.Session, slash.Event, "⏹ Stopping the stream…")
}
