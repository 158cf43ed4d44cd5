package command

import (
	"context"
	"fmt"

	"streambot/internal/catalog"

	"github.com/bwmarrin/discordgo"
)

type RefreshCommand struct {
	Catalog *catalog.Catalog
}

func (c *RefreshCommand) Name() string        { return "refresh" }
func (c *RefreshCommand) Description() string { return "Rescan the videos directory" }

func (c *RefreshCommand) Group() string    { return "library" }
func (c *RefreshCommand) Category() string { return "🗂 Library" }

func (c *RefreshCommand) RequireAdmin() bool { return true }

func (c *RefreshCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *RefreshCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	// scan can take a while on large libraries, defer first
	if err := respondDeferred(slash.Session, slash.Event); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	n, err := c.Catalog.Refresh(context.Background())
	if err != nil {
		return followup(slash.Session, slash.Event, fmt.Sprintf("🗂 Refresh failed: %v", err))
	}
	return followup(slash.Session, slash.Event, fmt.Sprintf("🗂 Library refreshed: %d videos.", n))
}
