// Package voice is the discordgo-backed transport playback streams into.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	chunkSize  = 8192
	chunkEvery = 20 * time.Millisecond
)

var ErrNotJoined = errors.New("not joined to a voice channel")

// Discord holds at most one live voice connection and pumps a transcoded
// byte stream into it. All methods tolerate being called with no connection.
type Discord struct {
	dg *discordgo.Session

	mu            sync.Mutex
	vc            *discordgo.VoiceConnection
	stop          chan struct{}
	disc          chan struct{}
	removeHandler func()
}

func NewDiscord(dg *discordgo.Session) *Discord {
	return &Discord{dg: dg}
}

// Join connects to the voice channel and watches for forced disconnects.
// Cancelling ctx abandons the join attempt.
func (d *Discord) Join(ctx context.Context, guildID, channelID string) error {
	type result struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	ch := make(chan result, 1)
	go func() {
		vc, err := d.dg.ChannelVoiceJoin(guildID, channelID, false, false)
		ch <- result{vc, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
		return ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("joining voice channel %s: %w", channelID, r.err)
		}

		d.mu.Lock()
		d.vc = r.vc
		d.disc = make(chan struct{})
		disc := d.disc
		var once sync.Once
		d.removeHandler = d.dg.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
			// our own state losing the channel means we were moved or kicked
			if v.UserID == s.State.User.ID && v.GuildID == guildID && v.ChannelID == "" {
				once.Do(func() { close(disc) })
			}
		})
		d.mu.Unlock()

		log.Info().Str("guild", guildID).Str("channel", channelID).Msg("joined voice channel")
		return nil
	}
}

// Stream starts pumping r into the connection in paced chunks. It returns
// immediately; the pump runs until the reader ends or StopStreaming.
func (d *Discord) Stream(r io.Reader) {
	d.mu.Lock()
	vc := d.vc
	d.stop = make(chan struct{})
	stop := d.stop
	d.mu.Unlock()

	if vc == nil {
		return
	}

	go func() {
		_ = vc.Speaking(true)
		defer func() { _ = vc.Speaking(false) }()

		ticker := time.NewTicker(chunkEvery)
		defer ticker.Stop()

		buf := make([]byte, chunkSize)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case vc.OpusSend <- chunk:
				case <-stop:
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					log.Warn().Err(err).Msg("reading playback stream")
				}
				return
			}
		}
	}()
}

// StopStreaming ends the pump. Safe when no pump is running.
func (d *Discord) StopStreaming() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		select {
		case <-d.stop:
		default:
			close(d.stop)
		}
		d.stop = nil
	}
}

// Leave disconnects and drops the connection state.
func (d *Discord) Leave() error {
	d.mu.Lock()
	vc := d.vc
	remove := d.removeHandler
	d.vc = nil
	d.removeHandler = nil
	d.mu.Unlock()

	if remove != nil {
		remove()
	}
	if vc == nil {
		return nil
	}
	if err := vc.Disconnect(); err != nil {
		return fmt.Errorf("leaving voice channel: %w", err)
	}
	return nil
}

// Disconnected reports a forced disconnect of the current connection. The
// channel is replaced on every Join, so callers should grab it after joining.
func (d *Discord) Disconnected() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disc == nil {
		return make(chan struct{})
	}
	return d.disc
}
