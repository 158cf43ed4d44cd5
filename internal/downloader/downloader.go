// Package downloader materializes remote on-demand sources into scoped
// temporary files.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"

	"streambot/internal/media"
)

var ErrFormatUnavailable = errors.New("no downloadable format available")

// Downloader fetches youtube-vod references to disk with yt-dlp. Live
// streams never come here; they play straight off their manifest URL.
type Downloader struct {
	tempDir      string
	targetHeight int
}

func New(tempDir string, targetHeight int) *Downloader {
	return &Downloader{
		tempDir:      tempDir,
		targetHeight: targetHeight,
	}
}

// FormatSelector returns the yt-dlp format ladder for a target height:
// pre-muxed mp4 at or below the target first, then a merged pair, then the
// best at or below the target, finally best available.
func FormatSelector(height int) string {
	return fmt.Sprintf("b[height<=%d][ext=mp4]/bv*[height<=%d]+ba/b[height<=%d]/b", height, height, height)
}

// Materialize downloads the reference into a scoped temp directory and
// returns a PlaybackInput whose cleanup handle removes it. On failure no
// partial file survives.
func (d *Downloader) Materialize(ctx context.Context, ref *media.Reference) (*media.PlaybackInput, error) {
	if !ref.NeedsDownload() {
		return nil, fmt.Errorf("%s reference does not need a download", ref.Kind)
	}

	dir, err := os.MkdirTemp(d.tempDir, "streambot-dl-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	log.Info().Str("url", ref.Input).Str("dir", dir).Msg("downloading video")

	res, err := ytdlp.New().
		Format(FormatSelector(d.targetHeight)).
		Output(filepath.Join(dir, "video.%(ext)s")).
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, ref.Input)
	if err != nil {
		_ = cleanup()
		if res != nil && strings.Contains(strings.ToLower(res.Stderr), "requested format") {
			return nil, fmt.Errorf("%w: %v", ErrFormatUnavailable, err)
		}
		return nil, fmt.Errorf("yt-dlp download: %w", err)
	}

	path, err := downloadedFile(dir)
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	return &media.PlaybackInput{
		Locator:   path,
		Title:     ref.Title,
		Temporary: true,
		Cleanup:   cleanup,
	}, nil
}

// downloadedFile locates the single file yt-dlp wrote; the extension is
// chosen by the selected format.
func downloadedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read temp dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && !strings.HasSuffix(e.Name(), ".part") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.New("download produced no file")
}
