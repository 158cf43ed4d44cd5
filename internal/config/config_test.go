package config

import "testing"

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.DiscordToken != "test-token" {
		t.Errorf("DiscordToken = %q", cfg.DiscordToken)
	}
	if cfg.VideosDir != "./videos" {
		t.Errorf("VideosDir = %q, want ./videos", cfg.VideosDir)
	}
	if cfg.Stream.Width != 1280 || cfg.Stream.Height != 720 {
		t.Errorf("stream size = %dx%d, want 1280x720", cfg.Stream.Width, cfg.Stream.Height)
	}
	if cfg.Stream.Preset != "ultrafast" {
		t.Errorf("Preset = %q", cfg.Stream.Preset)
	}
	if cfg.Server.Enabled {
		t.Error("server should be disabled by default")
	}
}

func TestNewMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := New(); err == nil {
		t.Fatal("expected error when DISCORD_TOKEN is unset")
	}
}

func TestStreamResolution(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{1280, 720, "1280x720"},
		{1920, 1080, "1920x1080"},
		{640, 360, "640x360"},
	}
	for _, tt := range tests {
		got := StreamConfig{Width: tt.w, Height: tt.h}.Resolution()
		if got != tt.want {
			t.Errorf("Resolution(%d, %d) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
