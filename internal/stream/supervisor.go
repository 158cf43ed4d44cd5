// /internal/stream/supervisor.go
package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"streambot/internal/media"
	"streambot/internal/metrics"
	"streambot/internal/pipeline"

	"github.com/rs/zerolog/log"
)

var ErrDisconnected = errors.New("voice transport disconnected")

// Resolver classifies user input into a playable reference.
type Resolver interface {
	Resolve(ctx context.Context, input string) (*media.Reference, error)
}

// Materializer turns download-kind references into local files.
type Materializer interface {
	Materialize(ctx context.Context, ref *media.Reference) (*media.PlaybackInput, error)
}

// Transport is the voice-channel side of playback.
type Transport interface {
	Join(ctx context.Context, guildID, channelID string) error
	Stream(r io.Reader)
	StopStreaming()
	Leave() error
	Disconnected() <-chan struct{}
}

// Notifier receives playback lifecycle events for the status channel.
type Notifier interface {
	NotifyDownloading(title string)
	NotifyPlaying(title string)
	NotifyFinished(title string)
	NotifyStopped(title string)
	NotifyError(title string, err error)
}

// Process is a running transcode pipeline.
type Process interface {
	Output() io.ReadCloser
	Done() <-chan error
	Stop()
}

// StartPipeline launches a transcode process for a locator.
type StartPipeline func(ctx context.Context, locator string, opts pipeline.Options) (Process, error)

// Supervisor drives a session from play request to teardown. Teardown runs
// exactly once per session regardless of which event ends it: natural end,
// pipeline error, transport drop, or an operator stop.
type Supervisor struct {
	sessions  *Manager
	resolver  Resolver
	dl        Materializer
	transport Transport
	notify    Notifier
	start     StartPipeline
	opts      pipeline.Options
}

func NewSupervisor(sessions *Manager, resolver Resolver, dl Materializer, transport Transport, notify Notifier, start StartPipeline, opts pipeline.Options) *Supervisor {
	return &Supervisor{
		sessions:  sessions,
		resolver:  resolver,
		dl:        dl,
		transport: transport,
		notify:    notify,
		start:     start,
		opts:      opts,
	}
}

// Play resolves input and claims the session slot. Resolution errors are
// returned directly; everything after the slot is claimed runs async and is
// reported through the notifier. A busy slot rejects the request before any
// resolution work happens, it is never queued.
func (s *Supervisor) Play(ctx context.Context, input, guildID, channelID string) (*media.Reference, error) {
	// Reject up front so a play against a live session never reaches the
	// resolver; TryAcquire below stays the authoritative gate.
	if s.sessions.State() != StateIdle {
		metrics.SessionsRejected.Inc()
		return nil, ErrBusy
	}

	ref, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.TryAcquire(guildID, channelID, ref.Title)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			metrics.SessionsRejected.Inc()
		}
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(string(ref.Kind)).Inc()
	log.Info().Str("title", ref.Title).Str("kind", string(ref.Kind)).Msg("session acquired")

	go s.run(sess, ref)
	return ref, nil
}

// Stop cancels the live session. The run goroutine observes the cancel and
// performs the teardown itself.
func (s *Supervisor) Stop() error {
	sess, ok := s.sessions.Current()
	if !ok {
		return ErrNotActive
	}
	sess.Cancel(true)
	return nil
}

// Status reports the session state and the title being played, if any.
func (s *Supervisor) Status() (State, string) {
	state := s.sessions.State()
	if sess, ok := s.sessions.Current(); ok {
		return state, sess.Title
	}
	return state, ""
}

func (s *Supervisor) run(sess *Session, ref *media.Reference) {
	started := time.Now()

	locator, err := s.materialize(sess, ref)
	if err != nil {
		s.finish(sess, nil, err, started)
		return
	}

	if err := s.transport.Join(sess.Context(), sess.GuildID, sess.ChannelID); err != nil {
		s.finish(sess, nil, err, started)
		return
	}

	s.sessions.SetPlaying()
	s.notify.NotifyPlaying(ref.Title)

	proc, err := s.start(sess.Context(), locator, s.opts)
	if err != nil {
		s.finish(sess, nil, err, started)
		return
	}

	s.transport.Stream(proc.Output())

	select {
	case err := <-proc.Done():
		s.finish(sess, proc, err, started)
	case <-sess.Done():
		s.finish(sess, proc, nil, started)
	case <-s.transport.Disconnected():
		s.finish(sess, proc, ErrDisconnected, started)
	}
}

// materialize prepares the pipeline locator: a download for VOD sources, the
// manifest or direct URL for live and remote ones, the path itself for local
// files.
func (s *Supervisor) materialize(sess *Session, ref *media.Reference) (string, error) {
	if !ref.NeedsDownload() {
		if ref.StreamURL != "" {
			return ref.StreamURL, nil
		}
		return ref.Input, nil
	}

	s.notify.NotifyDownloading(ref.Title)
	dlStart := time.Now()

	input, err := s.dl.Materialize(sess.Context(), ref)
	if err != nil {
		return "", err
	}
	metrics.DownloadSeconds.Observe(time.Since(dlStart).Seconds())

	if input.Cleanup != nil && !sess.RegisterCleanup(input.Cleanup) {
		_ = input.Cleanup()
		return "", sess.Context().Err()
	}
	return input.Locator, nil
}

// finish is the single teardown path. The session cancel, process kill,
// transport shutdown and cleanup handle all tolerate repeated or early
// invocation, and the cleanup handle itself fires at most once.
func (s *Supervisor) finish(sess *Session, proc Process, cause error, started time.Time) {
	s.sessions.SetStopping()
	sess.Cancel(false)

	if proc != nil {
		proc.Stop()
	}
	s.transport.StopStreaming()
	if err := s.transport.Leave(); err != nil {
		log.Warn().Err(err).Msg("leaving voice channel")
	}

	if fn := sess.takeCleanup(); fn != nil {
		if err := fn(); err != nil {
			log.Warn().Err(err).Str("title", sess.Title).Msg("cleaning up session input")
		}
	}

	s.sessions.Release()
	metrics.SessionSeconds.Observe(time.Since(started).Seconds())

	switch {
	case sess.UserStopped():
		metrics.SessionsEnded.WithLabelValues("stopped").Inc()
		log.Info().Str("title", sess.Title).Msg("session stopped")
		s.notify.NotifyStopped(sess.Title)
	case cause != nil && !errors.Is(cause, context.Canceled):
		metrics.SessionsEnded.WithLabelValues("error").Inc()
		log.Error().Err(cause).Str("title", sess.Title).Msg("session failed")
		s.notify.NotifyError(sess.Title, cause)
	default:
		metrics.SessionsEnded.WithLabelValues("finished").Inc()
		log.Info().Str("title", sess.Title).Msg("session finished")
		s.notify.NotifyFinished(sess.Title)
	}
}
