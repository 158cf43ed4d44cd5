// Package pipeline supervises the external ffmpeg transcode process for one
// playback session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrSpawn = errors.New("failed to start transcode process")

// Options are the encoding parameters for one transcode run.
type Options struct {
	Width          int
	Height         int
	FPS            int
	BitrateKbps    int
	MaxBitrateKbps int
	Codec          string
	Preset         string

	// HWAccelArgs replaces the software codec/preset arguments when set.
	HWAccelArgs []string
}

// BuildArgs assembles the ffmpeg argument list for a locator. Remote inputs
// get reconnect flags; output is matroska on stdout so the voice transport
// can consume it as a byte stream.
func BuildArgs(locator string, opts Options) []string {
	args := []string{"-hide_banner", "-loglevel", "warning"}

	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}

	args = append(args, "-re", "-i", locator)

	if len(opts.HWAccelArgs) > 0 {
		args = append(args, opts.HWAccelArgs...)
	} else {
		args = append(args,
			"-c:v", opts.Codec,
			"-preset", opts.Preset,
			"-tune", "zerolatency",
		)
	}

	args = append(args,
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-b:v", fmt.Sprintf("%dk", opts.BitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", opts.MaxBitrateKbps),
		"-bufsize", fmt.Sprintf("%dk", opts.BitrateKbps*2),
		"-c:a", "aac",
		"-b:a", "128k",
		"-f", "matroska",
		"pipe:1",
	)

	return args
}

// Process is a running transcode pipeline. Exactly one terminal event is
// delivered on Done: nil for a natural end, an error otherwise.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	done   chan error

	stopOnce sync.Once
}

// Start launches ffmpeg bound to ctx; cancelling ctx kills the process.
func Start(ctx context.Context, ffmpegPath, locator string, opts Options) (*Process, error) {
	args := BuildArgs(locator, opts)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	log.Info().Str("locator", locator).Strs("args", args).Msg("starting transcode pipeline")

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	p := &Process{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		done:   make(chan error, 1),
	}

	go func() {
		err := cmd.Wait()
		if err != nil && ctx.Err() == nil {
			p.done <- fmt.Errorf("transcode process: %w (stderr: %s)", err, stderr.String())
		} else {
			p.done <- nil
		}
		close(p.done)
	}()

	return p, nil
}

// Output is the transcoded byte stream for the voice transport.
func (p *Process) Output() io.ReadCloser { return p.stdout }

// Done delivers the terminal pipeline event.
func (p *Process) Done() <-chan error { return p.done }

// Stop kills the process. Safe to call more than once and after exit.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	})
}

// tailBuffer keeps the last limit bytes written, enough stderr context to
// report a crash without holding the whole log.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
