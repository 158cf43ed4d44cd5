package media

import (
	"context"
	"fmt"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
)

// YouTubeClient is the metadata collaborator for youtube-* references.
type YouTubeClient struct {
	client *youtube.Client
}

func NewYouTubeClient() *YouTubeClient {
	return &YouTubeClient{
		client: &youtube.Client{
			HTTPClient: &http.Client{
				Timeout: 15 * time.Second,
			},
		},
	}
}

// Lookup fetches title and liveness for a video URL. Live streams expose an
// HLS manifest; its presence is what distinguishes live from VOD.
func (c *YouTubeClient) Lookup(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	video, err := c.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("youtube metadata: %w", err)
	}

	return &VideoMetadata{
		Title:   video.Title,
		Live:    video.HLSManifestURL != "",
		LiveURL: video.HLSManifestURL,
	}, nil
}
