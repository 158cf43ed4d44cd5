package command

import (
	"context"
	"fmt"
	"strings"

	"streambot/internal/hwaccel"

	"github.com/bwmarrin/discordgo"
)

type HWInfoCommand struct {
	FFmpegPath string
}

func (c *HWInfoCommand) Name() string        { return "hwinfo" }
func (c *HWInfoCommand) Description() string { return "Show available hardware encoders" }

func (c *HWInfoCommand) Group() string    { return "maintenance" }
func (c *HWInfoCommand) Category() string { return "⚙️ Maintenance" }

func (c *HWInfoCommand) RequireAdmin() bool { return false }

func (c *HWInfoCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HWInfoCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	devices, err := hwaccel.Detect(context.Background(), c.FFmpegPath)
	if err != nil {
		return respondEphemeral(slash.Session, slash.Event, fmt.Sprintf("⚙️ Error: %v", err))
	}

	description := "No hardware encoders found, streaming uses software encoding."
	if len(devices) > 0 {
		names := make([]string, len(devices))
		for i, d := range devices {
			names[i] = string(d)
		}
		description = "Available: " + strings.Join(names, ", ")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚙️ Hardware Encoders",
		Description: description,
		Color:       embedColor,
	}
	return respondEmbed(slash.Session, slash.Event, embed)
}
