package command

import (
	"fmt"

	"streambot/internal/notify"

	"github.com/bwmarrin/discordgo"
)

type SetChannelsCommand struct {
	Notify *notify.Discord
}

func (c *SetChannelsCommand) Name() string        { return "set-channels" }
func (c *SetChannelsCommand) Description() string { return "Designate special-purpose channels" }

func (c *SetChannelsCommand) Group() string    { return "maintenance" }
func (c *SetChannelsCommand) Category() string { return "⚙️ Maintenance" }

func (c *SetChannelsCommand) RequireAdmin() bool { return true }

func (c *SetChannelsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "What kind of channel are you setting?",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Command Channel", Value: "command"},
					{Name: "Voice Channel", Value: "voice"},
					{Name: "Status Channel", Value: "status"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Pick a channel from this server",
				Required:    true,
			},
		},
	}
}

func (c *SetChannelsCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	s := slash.Session
	i := slash.Event
	opts := optionMap(i)

	kindOpt, channelOpt := opts["type"], opts["channel"]
	if kindOpt == nil || channelOpt == nil {
		return respondEphemeral(s, i, "Missing required parameters.")
	}
	kind := kindOpt.StringValue()
	channelID := channelOpt.ChannelValue(s).ID

	var commandID, voiceID, statusID string
	switch kind {
	case "command":
		commandID = channelID
	case "voice":
		voiceID = channelID
	case "status":
		statusID = channelID
	default:
		return respondEphemeral(s, i, fmt.Sprintf("Unknown channel type %q.", kind))
	}

	if err := slash.Storage.SetChannels(i.GuildID, commandID, voiceID, statusID); err != nil {
		return respondEphemeral(s, i, fmt.Sprintf("Couldn't save it: `%v`", err))
	}
	if kind == "status" && c.Notify != nil {
		c.Notify.SetChannel(channelID)
	}

	return respondEphemeral(s, i, fmt.Sprintf("Saved. The %s channel is now <#%s>.", kind, channelID))
}
