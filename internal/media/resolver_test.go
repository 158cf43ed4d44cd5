package media

import (
	"context"
	"errors"
	"testing"
)

type fakeCatalog map[string]CatalogEntry

func (f fakeCatalog) Snapshot() map[string]CatalogEntry { return f }

type fakeYouTube struct {
	meta *VideoMetadata
	err  error
}

func (f *fakeYouTube) Lookup(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	return f.meta, f.err
}

type fakeTwitch struct {
	renditions []Rendition
	err        error
}

func (f *fakeTwitch) Renditions(ctx context.Context, streamURL string) ([]Rendition, error) {
	return f.renditions, f.err
}

type fakeRemote struct {
	refs []string
	item *RemoteItem
	err  error
}

func (f *fakeRemote) Item(ctx context.Context, ref string) (*RemoteItem, error) {
	f.refs = append(f.refs, ref)
	return f.item, f.err
}

func newTestResolver(cat fakeCatalog, yt *fakeYouTube, tw *fakeTwitch) *Resolver {
	if cat == nil {
		cat = fakeCatalog{}
	}
	if yt == nil {
		yt = &fakeYouTube{meta: &VideoMetadata{Title: "video"}}
	}
	if tw == nil {
		tw = &fakeTwitch{renditions: []Rendition{{Resolution: "1280x720", URL: "https://edge/720"}}}
	}
	return NewResolver(cat, yt, tw, nil, "", "1280x720")
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Video", "My_Video"},
		{"My_Video", "My_Video"},
		{"  spaced out  ", "spaced_out"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveLocal(t *testing.T) {
	cat := fakeCatalog{
		"My_Video": {Path: "videos/My_Video.mp4", Title: "My Video"},
	}
	r := newTestResolver(cat, nil, nil)

	ref, err := r.Resolve(context.Background(), "My_Video")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindLocal {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindLocal)
	}
	if ref.StreamURL != "videos/My_Video.mp4" {
		t.Errorf("StreamURL = %q", ref.StreamURL)
	}
	if ref.NeedsDownload() {
		t.Error("local references never need a download")
	}
}

func TestResolveLocalNotFound(t *testing.T) {
	r := newTestResolver(fakeCatalog{}, nil, nil)

	_, err := r.Resolve(context.Background(), "Missing_Video")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveLocalCaseSensitive(t *testing.T) {
	cat := fakeCatalog{"My_Video": {Path: "videos/My_Video.mp4"}}
	r := newTestResolver(cat, nil, nil)

	if _, err := r.Resolve(context.Background(), "my_video"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup must be case sensitive, got err = %v", err)
	}
}

func TestResolveYouTubeVOD(t *testing.T) {
	yt := &fakeYouTube{meta: &VideoMetadata{Title: "Some Video"}}
	r := newTestResolver(nil, yt, nil)

	ref, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc123def45")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindYouTubeVOD {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindYouTubeVOD)
	}
	if !ref.NeedsDownload() {
		t.Error("youtube VOD must go through the downloader")
	}
	if ref.Title != "Some Video" {
		t.Errorf("Title = %q", ref.Title)
	}
}

func TestResolveYouTubeLive(t *testing.T) {
	yt := &fakeYouTube{meta: &VideoMetadata{Title: "Live Show", Live: true, LiveURL: "https://manifest.test/live.m3u8"}}
	r := newTestResolver(nil, yt, nil)

	ref, err := r.Resolve(context.Background(), "https://youtube.com/watch?v=live0000000")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindYouTubeLive {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindYouTubeLive)
	}
	if ref.StreamURL != "https://manifest.test/live.m3u8" {
		t.Errorf("StreamURL = %q, want live manifest URL", ref.StreamURL)
	}
	if ref.NeedsDownload() {
		t.Error("live streams bypass the downloader")
	}
}

func TestResolveYouTubeMetadataFailure(t *testing.T) {
	yt := &fakeYouTube{err: errors.New("boom")}
	r := newTestResolver(nil, yt, nil)

	_, err := r.Resolve(context.Background(), "https://youtu.be/abc123def45")
	if !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("err = %v, want ErrMetadataUnavailable", err)
	}
}

func TestResolveTwitchKinds(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"https://www.twitch.tv/somestreamer", KindTwitchLive},
		{"https://www.twitch.tv/videos/123456789", KindTwitchVOD},
	}
	for _, tt := range tests {
		r := newTestResolver(nil, nil, nil)
		ref, err := r.Resolve(context.Background(), tt.url)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.url, err)
		}
		if ref.Kind != tt.want {
			t.Errorf("Resolve(%q).Kind = %s, want %s", tt.url, ref.Kind, tt.want)
		}
	}
}

func TestResolveDirectURL(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	ref, err := r.Resolve(context.Background(), "https://cdn.example.com/movies/clip.mp4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindDirectURL {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindDirectURL)
	}
	if ref.StreamURL != "https://cdn.example.com/movies/clip.mp4" {
		t.Errorf("StreamURL = %q", ref.StreamURL)
	}
}

func TestPickRenditionExactMatch(t *testing.T) {
	renditions := []Rendition{
		{Resolution: "1280x720", URL: "https://edge/720"},
		{Resolution: "1920x1080", URL: "https://edge/1080"},
	}
	got := PickRendition(renditions, "1280x720")
	if got.URL != "https://edge/720" {
		t.Errorf("picked %q, want the exact 1280x720 entry", got.URL)
	}
}

func TestPickRenditionFallback(t *testing.T) {
	renditions := []Rendition{{Resolution: "640x360", URL: "https://edge/360"}}
	got := PickRendition(renditions, "1280x720")
	if got.URL != "https://edge/360" {
		t.Errorf("picked %q, want fallback to the single entry", got.URL)
	}
}

func TestResolveTwitchSelectsConfiguredRendition(t *testing.T) {
	tw := &fakeTwitch{renditions: []Rendition{
		{Resolution: "1920x1080", URL: "https://edge/1080"},
		{Resolution: "1280x720", URL: "https://edge/720"},
	}}
	r := newTestResolver(nil, nil, tw)

	ref, err := r.Resolve(context.Background(), "https://twitch.tv/somestreamer")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.StreamURL != "https://edge/720" {
		t.Errorf("StreamURL = %q, want the 1280x720 rendition", ref.StreamURL)
	}
}

func TestResolveRemotePrefix(t *testing.T) {
	remote := &fakeRemote{item: &RemoteItem{Name: "Big Buck Bunny", StreamURL: "http://media.local:8096/Videos/42/stream"}}
	r := NewResolver(fakeCatalog{}, nil, nil, remote, "http://media.local:8096", "1280x720")

	ref, err := r.Resolve(context.Background(), "jellyfin:Big Buck Bunny")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindRemoteItem {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindRemoteItem)
	}
	if len(remote.refs) != 1 || remote.refs[0] != "Big Buck Bunny" {
		t.Errorf("remote lookups = %q, want the prefix stripped", remote.refs)
	}
}

func TestResolveRemoteHostURL(t *testing.T) {
	remote := &fakeRemote{item: &RemoteItem{Name: "Big Buck Bunny", StreamURL: "http://media.local:8096/Videos/42/stream"}}
	r := NewResolver(fakeCatalog{}, nil, nil, remote, "http://media.local:8096", "1280x720")

	ref, err := r.Resolve(context.Background(), "http://media.local:8096/Items/Big_Buck_Bunny")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Kind != KindRemoteItem {
		t.Errorf("Kind = %s, want %s", ref.Kind, KindRemoteItem)
	}
	if ref.StreamURL != "http://media.local:8096/Videos/42/stream" {
		t.Errorf("StreamURL = %q, want the item stream URL", ref.StreamURL)
	}
	if len(remote.refs) != 1 || remote.refs[0] != "Big_Buck_Bunny" {
		t.Errorf("remote lookups = %q, want the item name from the link", remote.refs)
	}

	// other hosts still resolve as direct URLs
	direct, err := r.Resolve(context.Background(), "http://cdn.local/clip.mp4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if direct.Kind != KindDirectURL {
		t.Errorf("Kind = %s, want %s", direct.Kind, KindDirectURL)
	}
}

func TestResolveRemoteUnconfigured(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	if _, err := r.Resolve(context.Background(), "jellyfin:anything"); !errors.Is(err, ErrUnsupportedReference) {
		t.Fatalf("err = %v, want ErrUnsupportedReference", err)
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrUnsupportedReference) {
		t.Fatalf("err = %v, want ErrUnsupportedReference", err)
	}
}
