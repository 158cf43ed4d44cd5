// Package media classifies user-supplied references into playable inputs.
package media

import "errors"

// Kind is the classified type of a media reference.
type Kind string

const (
	KindLocal       Kind = "local"
	KindYouTubeVOD  Kind = "youtube-vod"
	KindYouTubeLive Kind = "youtube-live"
	KindTwitchLive  Kind = "twitch-live"
	KindTwitchVOD   Kind = "twitch-vod"
	KindDirectURL   Kind = "direct-url"
	KindRemoteItem  Kind = "remote-item"
)

var (
	ErrNotFound             = errors.New("no matching video found")
	ErrMetadataUnavailable  = errors.New("could not fetch media metadata")
	ErrUnsupportedReference = errors.New("unsupported media reference")
)

// Reference is a classified media reference. Immutable once produced
// by the resolver.
type Reference struct {
	Input string
	Kind  Kind
	Title string

	// StreamURL is the ready-to-feed locator for everything that does not
	// need a download: local path, direct URL, live manifest, selected
	// rendition, remote stream URL. Empty for KindYouTubeVOD, which goes
	// through the downloader first.
	StreamURL string
}

// NeedsDownload reports whether the reference must be materialized to a
// local file before playback.
func (r *Reference) NeedsDownload() bool {
	return r.Kind == KindYouTubeVOD
}

// PlaybackInput is a resolved, ready-to-feed descriptor. Owned exclusively
// by the active session; Cleanup (when present) must be invoked exactly once.
type PlaybackInput struct {
	Locator   string
	Title     string
	Temporary bool
	Cleanup   func() error
}

// Rendition is one resolution variant of a live or on-demand stream.
type Rendition struct {
	Resolution string // "1280x720"
	URL        string
}
