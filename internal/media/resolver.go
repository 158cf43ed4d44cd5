package media

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	youtubeRegex = regexp.MustCompile(`(?:https?://)?(?:www\.|music\.)?(youtube\.com|youtu\.be)/\S+`)
	twitchRegex  = regexp.MustCompile(`(?:https?://)?(?:www\.)?twitch\.tv/\S+`)
)

// CatalogEntry is one known local video, keyed by normalized name.
type CatalogEntry struct {
	Path  string
	Title string
}

// CatalogProvider hands the resolver a read-only snapshot of the local
// catalog per resolution call.
type CatalogProvider interface {
	Snapshot() map[string]CatalogEntry
}

// VideoMetadata is what the YouTube metadata collaborator returns.
type VideoMetadata struct {
	Title   string
	Live    bool
	LiveURL string // live manifest URL, set only when Live
}

// MetadataLookup resolves YouTube liveness and title.
type MetadataLookup interface {
	Lookup(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

// PlaylistResolver lists the renditions a live/VOD stream offers.
type PlaylistResolver interface {
	Renditions(ctx context.Context, streamURL string) ([]Rendition, error)
}

// RemoteItem is a media-server library item.
type RemoteItem struct {
	Name      string
	StreamURL string
}

// ItemResolver resolves media-server item references.
type ItemResolver interface {
	Item(ctx context.Context, ref string) (*RemoteItem, error)
}

// Resolver turns a user-supplied reference into a classified, playable
// Reference. Classification and lightweight metadata lookup only; downloads
// belong to the downloader.
type Resolver struct {
	catalog    CatalogProvider
	youtube    MetadataLookup
	twitch     PlaylistResolver
	remote     ItemResolver
	remoteHost string // hostname of the configured media server, "" when none
	resolution string // target "WxH" for rendition selection
}

// NewResolver wires the resolver's collaborators. remoteURL is the configured
// media-server base URL; links pointing at its host resolve as remote items.
func NewResolver(catalog CatalogProvider, youtube MetadataLookup, twitch PlaylistResolver, remote ItemResolver, remoteURL, resolution string) *Resolver {
	return &Resolver{
		catalog:    catalog,
		youtube:    youtube,
		twitch:     twitch,
		remote:     remote,
		remoteHost: hostOf(remoteURL),
		resolution: resolution,
	}
}

// NormalizeName maps a display name to its catalog key: spaces become
// underscores, case preserved.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// Resolve classifies the input and fills in title plus stream locator where
// no download is needed.
func (r *Resolver) Resolve(ctx context.Context, input string) (*Reference, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrUnsupportedReference
	}

	if !isURL(input) {
		if strings.HasPrefix(input, "jellyfin:") {
			return r.resolveRemote(ctx, strings.TrimPrefix(input, "jellyfin:"))
		}
		return r.resolveLocal(input)
	}

	switch {
	case youtubeRegex.MatchString(input):
		return r.resolveYouTube(ctx, input)
	case twitchRegex.MatchString(input):
		return r.resolveTwitch(ctx, input)
	case r.remoteHost != "" && hostOf(input) == r.remoteHost:
		return r.resolveRemote(ctx, titleFromURL(input))
	default:
		return &Reference{
			Input:     input,
			Kind:      KindDirectURL,
			Title:     titleFromURL(input),
			StreamURL: input,
		}, nil
	}
}

func (r *Resolver) resolveLocal(name string) (*Reference, error) {
	key := NormalizeName(name)
	entry, ok := r.catalog.Snapshot()[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &Reference{
		Input:     name,
		Kind:      KindLocal,
		Title:     entry.Title,
		StreamURL: entry.Path,
	}, nil
}

func (r *Resolver) resolveYouTube(ctx context.Context, input string) (*Reference, error) {
	meta, err := r.youtube.Lookup(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	if meta.Live {
		if meta.LiveURL == "" {
			return nil, fmt.Errorf("%w: live stream has no manifest URL", ErrMetadataUnavailable)
		}
		return &Reference{
			Input:     input,
			Kind:      KindYouTubeLive,
			Title:     meta.Title,
			StreamURL: meta.LiveURL,
		}, nil
	}

	return &Reference{
		Input: input,
		Kind:  KindYouTubeVOD,
		Title: meta.Title,
	}, nil
}

func (r *Resolver) resolveTwitch(ctx context.Context, input string) (*Reference, error) {
	kind := KindTwitchLive
	if strings.Contains(urlPath(input), "/videos/") {
		kind = KindTwitchVOD
	}

	renditions, err := r.twitch.Renditions(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	if len(renditions) == 0 {
		return nil, fmt.Errorf("%w: stream offers no renditions", ErrMetadataUnavailable)
	}

	selected := PickRendition(renditions, r.resolution)
	return &Reference{
		Input:     input,
		Kind:      kind,
		Title:     titleFromURL(input),
		StreamURL: selected.URL,
	}, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, ref string) (*Reference, error) {
	if r.remote == nil {
		return nil, fmt.Errorf("%w: no media server configured", ErrUnsupportedReference)
	}
	item, err := r.remote.Item(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	return &Reference{
		Input:     ref,
		Kind:      KindRemoteItem,
		Title:     item.Name,
		StreamURL: item.StreamURL,
	}, nil
}

// PickRendition selects the rendition whose resolution string exactly equals
// the target, falling back to the first entry. A resolution mismatch alone is
// never an error.
func PickRendition(renditions []Rendition, target string) Rendition {
	for _, rd := range renditions {
		if rd.Resolution == target {
			return rd
		}
	}
	log.Debug().Str("target", target).Msg("no exact rendition match, using first entry")
	return renditions[0]
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return u.Hostname()
}
