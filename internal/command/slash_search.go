package command

import (
	"fmt"
	"strings"

	"streambot/internal/catalog"

	"github.com/bwmarrin/discordgo"
)

type SearchCommand struct {
	Catalog *catalog.Catalog
}

func (c *SearchCommand) Name() string        { return "search" }
func (c *SearchCommand) Description() string { return "Search the video library" }

func (c *SearchCommand) Group() string    { return "library" }
func (c *SearchCommand) Category() string { return "🗂 Library" }

func (c *SearchCommand) RequireAdmin() bool { return false }

func (c *SearchCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Part of a video name",
				Required:    true,
			},
		},
	}
}

func (c *SearchCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	query, _ := optionMap(slash.Event)["query"]
	if query == nil || query.StringValue() == "" {
		return respondEphemeral(slash.Session, slash.Event, "🗂 Error: query is required")
	}

	hits, err := c.Catalog.Search(query.StringValue(), 15)
	if err != nil {
		return respondEphemeral(slash.Session, slash.Event, fmt.Sprintf("🗂 Error: %v", err))
	}
	if len(hits) == 0 {
		return respondEphemeral(slash.Session, slash.Event,
			fmt.Sprintf("🗂 Nothing matching **%s**.", query.StringValue()))
	}

	var b strings.Builder
	for _, e := range hits {
		fmt.Fprintf(&b, "• %s\n", e.Title)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🗂 Results for “%s”", query.StringValue()),
		Description: b.String(),
		Color:       embedColor,
	}
	return respondEmbed(slash.Session, slash.Event, embed)
}
