// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"streambot/internal/catalog"
	"streambot/internal/config"
	"streambot/internal/discord"
	"streambot/internal/downloader"
	"streambot/internal/hwaccel"
	"streambot/internal/logging"
	"streambot/internal/media"
	"streambot/internal/notify"
	"streambot/internal/pipeline"
	"streambot/internal/server"
	"streambot/internal/storage"
	"streambot/internal/stream"
	v "streambot/internal/version"
	"streambot/internal/voice"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFile)
	logger.Info().Str("version", v.Version).Msgf("starting %s", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening datastore")
	}
	defer store.Close()

	var prober *catalog.Prober
	if cfg.FFprobePath != "" {
		prober = catalog.NewProber(cfg.FFprobePath)
	}
	cat, err := catalog.Open(cfg.CatalogPath, cfg.VideosDir, prober)
	if err != nil {
		log.Fatal().Err(err).Msg("opening catalog")
	}
	defer cat.Close()

	if _, err := cat.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog scan failed")
	}

	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("creating Discord session")
	}

	var remote media.ItemResolver
	if cfg.Jellyfin.URL != "" {
		remote = media.NewJellyfinClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey)
	}
	resolver := media.NewResolver(
		cat,
		media.NewYouTubeClient(),
		media.NewTwitchClient(),
		remote,
		cfg.Jellyfin.URL,
		cfg.Stream.Resolution(),
	)
	dl := downloader.New(cfg.TempDir, cfg.Stream.Height)
	transport := voice.NewDiscord(dg)
	sink := notify.NewDiscord(dg, cfg.StatusChannelID)

	opts := pipelineOptions(ctx, cfg)
	start := func(ctx context.Context, locator string, opts pipeline.Options) (stream.Process, error) {
		return pipeline.Start(ctx, cfg.FFmpegPath, locator, opts)
	}

	supervisor := stream.NewSupervisor(stream.NewManager(), resolver, dl, transport, sink, start, opts)

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, cat, supervisor, cfg.VideosDir)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Msg("admin server stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, dg, cfg, discord.Deps{
			Storage:    store,
			Supervisor: supervisor,
			Catalog:    cat,
			Notify:     sink,
		})
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		_ = supervisor.Stop()
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
		}
		cancel()
	}

	log.Info().Msg("exited cleanly")
}

// pipelineOptions applies the configured encoder settings, swapping in a
// hardware encoder when one is present and enabled.
func pipelineOptions(ctx context.Context, cfg *config.Config) pipeline.Options {
	opts := pipeline.Options{
		Width:          cfg.Stream.Width,
		Height:         cfg.Stream.Height,
		FPS:            cfg.Stream.FPS,
		BitrateKbps:    cfg.Stream.BitrateKbps,
		MaxBitrateKbps: cfg.Stream.MaxBitrateKbps,
		Codec:          cfg.Stream.Codec,
		Preset:         cfg.Stream.Preset,
	}
	if !cfg.Stream.HWAccel {
		return opts
	}

	detected, err := hwaccel.Detect(ctx, cfg.FFmpegPath)
	if err != nil {
		log.Warn().Err(err).Msg("hardware encoder probe failed, using software encoding")
		return opts
	}
	dev := hwaccel.Pick(detected, hwaccel.DeviceNone)
	if dev != hwaccel.DeviceNone {
		log.Info().Str("device", string(dev)).Msg("hardware encoder selected")
		opts.HWAccelArgs = hwaccel.Args(dev)
	}
	return opts
}
