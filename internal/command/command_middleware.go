package command

import "github.com/bwmarrin/discordgo"

type Middleware func(Command) Command

// WithGuildOnly rejects DM invocations before the command runs.
func WithGuildOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx interface{}) error {
			if slash, ok := ctx.(*SlashContext); ok {
				if slash.Event.GuildID == "" {
					return respondEphemeral(slash.Session, slash.Event, "This command only works in a server.")
				}
			}
			return cmd.Run(ctx)
		},
	}
}

// WithAdminOnly enforces RequireAdmin for commands that declare it.
func WithAdminOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx interface{}) error {
			if slash, ok := ctx.(*SlashContext); ok && cmd.RequireAdmin() {
				if !isAdministrator(slash.Session, slash.Event.GuildID, slash.Event.Member) {
					return respondEphemeral(slash.Session, slash.Event, "You need to be an administrator to use this command.")
				}
			}
			return cmd.Run(ctx)
		},
	}
}

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	return w.wrap(ctx)
}

// SlashDefinition passes through the wrapped command's definition so
// middleware does not hide it from registration.
func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if p, ok := w.Command.(SlashProvider); ok {
		return p.SlashDefinition()
	}
	return nil
}
