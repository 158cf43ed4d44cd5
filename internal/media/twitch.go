package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// TwitchClient is the playlist-resolution collaborator for twitch-*
// references. It shells out to yt-dlp for the master playlist instead of
// parsing HLS manifests itself.
type TwitchClient struct{}

func NewTwitchClient() *TwitchClient {
	return &TwitchClient{}
}

// Renditions lists the video renditions the stream offers, in the order the
// playlist advertises them.
func (c *TwitchClient) Renditions(ctx context.Context, streamURL string) ([]Rendition, error) {
	res, err := ytdlp.New().
		Print("%(formats)j").
		NoWarnings().
		IgnoreConfig().
		Run(ctx, "--skip-download", streamURL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp formats: %w", err)
	}

	var formats []struct {
		Resolution string `json:"resolution"`
		URL        string `json:"url"`
		VCodec     string `json:"vcodec"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Stdout)), &formats); err != nil {
		return nil, fmt.Errorf("parse formats: %w", err)
	}

	var renditions []Rendition
	for _, f := range formats {
		if f.VCodec == "none" || f.Resolution == "" || f.Resolution == "audio only" {
			continue
		}
		renditions = append(renditions, Rendition{
			Resolution: f.Resolution,
			URL:        f.URL,
		})
	}
	return renditions, nil
}
