package command

import (
	"fmt"
	"strings"

	"streambot/internal/catalog"

	"github.com/bwmarrin/discordgo"
)

const listLimit = 50

type ListCommand struct {
	Catalog *catalog.Catalog
}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "List videos in the library" }

func (c *ListCommand) Group() string    { return "library" }
func (c *ListCommand) Category() string { return "🗂 Library" }

func (c *ListCommand) RequireAdmin() bool { return false }

func (c *ListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ListCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	entries, err := c.Catalog.All()
	if err != nil {
		return respondEphemeral(slash.Session, slash.Event, fmt.Sprintf("🗂 Error: %v", err))
	}
	if len(entries) == 0 {
		return respondEphemeral(slash.Session, slash.Event, "🗂 The library is empty. Try /refresh after adding files.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🗂 Library",
		Description: formatEntries(entries),
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d videos", len(entries))},
	}
	return respondEmbed(slash.Session, slash.Event, embed)
}

// formatEntries groups episodic files under their series and lists the rest
// one per line, capped so the embed stays under Discord's size limits.
func formatEntries(entries []catalog.Entry) string {
	episodes := map[string]int{}
	var singles []string
	var seriesOrder []string

	for _, e := range entries {
		if e.Series != "" {
			if episodes[e.Series] == 0 {
				seriesOrder = append(seriesOrder, e.Series)
			}
			episodes[e.Series]++
			continue
		}
		singles = append(singles, e.Title)
	}

	var b strings.Builder
	shown := 0
	for _, series := range seriesOrder {
		if shown >= listLimit {
			break
		}
		fmt.Fprintf(&b, "📁 **%s** (%d episodes)\n", series, episodes[series])
		shown++
	}
	for _, title := range singles {
		if shown >= listLimit {
			b.WriteString("…\n")
			break
		}
		fmt.Fprintf(&b, "• %s\n", title)
		shown++
	}
	return b.String()
}
