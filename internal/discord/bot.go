// Package discord owns the gateway session, slash command registration and
// interaction dispatch.
package discord

import (
	"context"
	"fmt"

	"streambot/internal/catalog"
	"streambot/internal/command"
	"streambot/internal/config"
	"streambot/internal/notify"
	"streambot/internal/storage"
	"streambot/internal/stream"
	"streambot/internal/version"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Bot is the Discord side of the streamer.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
}

// Deps carries everything the slash commands need.
type Deps struct {
	Storage    *storage.Storage
	Supervisor *stream.Supervisor
	Catalog    *catalog.Catalog
	Notify     *notify.Discord
}

// NewSession builds the gateway session other components attach to before
// the bot starts.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates
	return dg, nil
}

// StartBot registers commands, opens the gateway and blocks until ctx is
// cancelled.
func StartBot(ctx context.Context, dg *discordgo.Session, cfg *config.Config, deps Deps) error {
	registerAll(cfg, deps)

	b := &Bot{dg: dg, cfg: cfg, storage: deps.Storage}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing gateway")
	return nil
}

// registerAll wires the command set with its dependencies and middleware.
func registerAll(cfg *config.Config, deps Deps) {
	cmds := []command.Command{
		&command.PlayCommand{Supervisor: deps.Supervisor, DefaultVoiceChannel: cfg.VoiceChannelID},
		&command.StopCommand{Supervisor: deps.Supervisor},
		&command.StatusCommand{Supervisor: deps.Supervisor},
		&command.ListCommand{Catalog: deps.Catalog},
		&command.SearchCommand{Catalog: deps.Catalog},
		&command.RefreshCommand{Catalog: deps.Catalog},
		&command.HWInfoCommand{FFmpegPath: cfg.FFmpegPath},
		&command.SetChannelsCommand{Notify: deps.Notify},
	}
	for _, c := range cmds {
		command.Register(command.WithGuildOnly(command.WithAdminOnly(c)))
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("gateway ready")
	_ = s.UpdateWatchStatus(0, fmt.Sprintf("%s %s", version.AppName, version.Version))
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.cfg.GuildID != "" && g.ID != b.cfg.GuildID {
		return
	}
	if err := b.registerCommands(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("registering slash commands")
	}
}
